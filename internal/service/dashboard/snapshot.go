// internal/service/dashboard/snapshot.go

package dashboard

import (
	"time"

	"ecodash/internal/domain/analytics"
	"ecodash/internal/domain/narrative"
	"ecodash/internal/domain/post"
)

// SampleDataSource labels responses that were not built from live data
const SampleDataSource = "sample"

// LiveDataSource labels responses built from a live provider
const LiveDataSource = "live"

// CannedData returns the fixed snapshot served when no dashboard can be
// assembled. Only last_updated varies between calls.
func CannedData(now time.Time) Data {
	return Data{
		Overview: Overview{
			TotalPosts:         1247,
			TotalNews:          63,
			EffectivenessScore: 82,
			PositiveSentiment:  68,
			LastUpdated:        now.Format(lastUpdatedLayout),
			DataSource:         SampleDataSource,
		},
		SocialMetrics: analytics.SocialMetrics{
			TotalPosts:            1247,
			TotalEngagement:       89200,
			AverageEngagement:     72,
			PositiveSentimentRate: 68.5,
		},
		GroundImpact: analytics.GroundImpact{
			CleanupsTriggered: 28,
			PlasticReducedKg:  520,
			TreesPlanted:      89,
			PeopleEngaged:     1850,
			PolicyDiscussions: 18,
			CarbonOffsetTons:  35,
		},
		TrendingTopics: []string{
			"Climate Change",
			"Plastic Pollution",
			"Renewable Energy",
			"Sustainable Living",
			"Biodiversity",
		},
		TopInfluencers: []analytics.Influencer{
			{Username: "u/climate_scientist", PostsCount: 22, TotalEngagement: 15200, AverageEngagement: 691, ImpactScore: 96},
			{Username: "u/green_innovator", PostsCount: 18, TotalEngagement: 11800, AverageEngagement: 656, ImpactScore: 88},
			{Username: "u/eco_advocate", PostsCount: 25, TotalEngagement: 14200, AverageEngagement: 568, ImpactScore: 85},
		},
		PlatformBreakdown: map[string]analytics.PlatformBucket{
			post.PlatformReddit: {Count: 1247, TotalEngagement: 89200, AvgEngagement: 72},
		},
		AIAnalysis: narrative.Narrative{
			Summary:       "Reddit communities are actively engaged in environmental discussions, with strong focus on practical solutions and community action. The sentiment is largely positive with users sharing success stories and actionable advice.",
			DominantTopic: "Climate Change",
			SentimentBreakdown: narrative.SentimentBreakdown{
				Positive: 68,
				Negative: 15,
				Neutral:  17,
			},
			EngagementTrend: narrative.TrendRising,
			Recommendations: []string{
				"Highlight community-led environmental projects",
				"Create more educational content on practical sustainability",
				"Engage with science-focused subreddits for expert insights",
			},
			AIGenerated: false,
		},
		SamplePosts: []post.Post{
			{
				ID:              "sample_1",
				Title:           "Community beach cleanup removed over 200kg of plastic this weekend!",
				Author:          "u/coastal_cleaner",
				SourceGroup:     "r/environment",
				Timestamp:       now,
				Upvotes:         1247,
				Comments:        89,
				Sentiment:       post.SentimentPositive,
				Topic:           post.TopicPlasticPollution,
				Hashtags:        []string{},
				EngagementScore: 1692,
				Platform:        post.PlatformReddit,
				Flair:           "Success Story",
			},
		},
	}
}
