// internal/service/analytics/engine.go

package analytics

import (
	"math"
	"sort"

	domain "ecodash/internal/domain/analytics"
	"ecodash/internal/domain/post"
)

// Defaults reported when there are no posts to measure
const (
	DefaultEffectivenessScore = 75
	DefaultPositiveRate       = 65.0
)

const (
	maxTrendingTopics = 5
	maxInfluencers    = 3
)

// Report bundles every analytics view of one post set
type Report struct {
	Impact            domain.ImpactMetrics             `json:"impact"`
	TrendingTopics    []string                         `json:"trending_topics"`
	TopInfluencers    []domain.Influencer              `json:"top_influencers"`
	PlatformBreakdown map[string]domain.PlatformBucket `json:"platform_breakdown"`
}

// Engine computes analytics over canonical posts. It holds no state;
// every method is a pure function of its input.
type Engine struct{}

// NewEngine creates a new analytics engine
func NewEngine() *Engine {
	return &Engine{}
}

// Analyze runs all four views over posts
func (e *Engine) Analyze(posts []post.Post) Report {
	return Report{
		Impact:            e.ImpactMetrics(posts),
		TrendingTopics:    e.TrendingTopics(posts),
		TopInfluencers:    e.TopInfluencers(posts),
		PlatformBreakdown: e.PlatformBreakdown(posts),
	}
}

// ImpactMetrics derives the effectiveness score, social metrics and
// ground impact estimates. Integer fields use floor division except the
// effectiveness score, which rounds.
func (e *Engine) ImpactMetrics(posts []post.Post) domain.ImpactMetrics {
	n := len(posts)

	totalEngagement := 0
	positive := 0
	for _, p := range posts {
		totalEngagement += p.EngagementScore
		if p.Sentiment == post.SentimentPositive {
			positive++
		}
	}

	effectiveness := DefaultEffectivenessScore
	average := 0
	positiveRate := DefaultPositiveRate
	if n > 0 {
		effectiveness = int(math.Min(100, math.Round(float64(totalEngagement)/float64(n)*0.5)))
		average = totalEngagement / n
		positiveRate = 100 * float64(positive) / float64(n)
	}

	return domain.ImpactMetrics{
		EffectivenessScore: effectiveness,
		SocialMetrics: domain.SocialMetrics{
			TotalPosts:            n,
			TotalEngagement:       totalEngagement,
			AverageEngagement:     average,
			PositiveSentimentRate: positiveRate,
		},
		GroundImpact: GroundImpact(n),
	}
}

// GroundImpact estimates real-world outcomes from post volume alone
func GroundImpact(n int) domain.GroundImpact {
	return domain.GroundImpact{
		CleanupsTriggered: max(1, n/40),
		PlasticReducedKg:  max(10, n/4),
		TreesPlanted:      max(5, n/80),
		PeopleEngaged:     n * 3,
		PolicyDiscussions: max(1, n/150),
		CarbonOffsetTons:  max(1, n/80),
	}
}

// TrendingTopics returns up to five topics by descending post count.
// Ties keep first-seen order.
func (e *Engine) TrendingTopics(posts []post.Post) []string {
	counts := make(map[post.Topic]int)
	order := make([]post.Topic, 0)

	for _, p := range posts {
		if _, seen := counts[p.Topic]; !seen {
			order = append(order, p.Topic)
		}
		counts[p.Topic]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > maxTrendingTopics {
		order = order[:maxTrendingTopics]
	}

	topics := make([]string, len(order))
	for i, t := range order {
		topics[i] = string(t)
	}
	return topics
}

// TopInfluencers ranks authors by impact score and returns the top three.
// Ties keep first-seen order.
func (e *Engine) TopInfluencers(posts []post.Post) []domain.Influencer {
	index := make(map[string]int)
	influencers := make([]domain.Influencer, 0)

	for _, p := range posts {
		i, seen := index[p.Author]
		if !seen {
			i = len(influencers)
			index[p.Author] = i
			influencers = append(influencers, domain.Influencer{Username: p.Author})
		}
		influencers[i].PostsCount++
		influencers[i].TotalEngagement += p.EngagementScore
	}

	for i := range influencers {
		inf := &influencers[i]
		inf.AverageEngagement = inf.TotalEngagement / inf.PostsCount
		inf.ImpactScore = min(100, inf.AverageEngagement/15)
	}

	sort.SliceStable(influencers, func(i, j int) bool {
		return influencers[i].ImpactScore > influencers[j].ImpactScore
	})

	if len(influencers) > maxInfluencers {
		influencers = influencers[:maxInfluencers]
	}
	return influencers
}

// PlatformBreakdown groups posts by platform. Every platform present is
// reported; nothing is ranked or truncated.
func (e *Engine) PlatformBreakdown(posts []post.Post) map[string]domain.PlatformBucket {
	breakdown := make(map[string]domain.PlatformBucket)

	for _, p := range posts {
		bucket := breakdown[p.Platform]
		bucket.Count++
		bucket.TotalEngagement += p.EngagementScore
		breakdown[p.Platform] = bucket
	}

	for platform, bucket := range breakdown {
		bucket.AvgEngagement = bucket.TotalEngagement / bucket.Count
		breakdown[platform] = bucket
	}

	return breakdown
}
