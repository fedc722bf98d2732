// internal/service/dashboard/response.go

package dashboard

import (
	"ecodash/internal/domain/analytics"
	"ecodash/internal/domain/narrative"
	"ecodash/internal/domain/post"
)

const lastUpdatedLayout = "15:04:05"

// Response is the complete dashboard document
type Response struct {
	Success         bool   `json:"success"`
	DataSource      string `json:"data_source"`
	SourceConnected bool   `json:"source_connected"`
	AIConnected     bool   `json:"ai_connected"`
	Error           string `json:"error,omitempty"`
	Data            Data   `json:"data"`
}

// Overview is the headline block of the dashboard
type Overview struct {
	TotalPosts         int     `json:"total_posts"`
	TotalNews          int     `json:"total_news"`
	EffectivenessScore int     `json:"effectiveness_score"`
	PositiveSentiment  float64 `json:"positive_sentiment"`
	LastUpdated        string  `json:"last_updated"`
	DataSource         string  `json:"data_source"`
}

// Data holds every view of one dashboard
type Data struct {
	Overview          Overview                            `json:"overview"`
	SocialMetrics     analytics.SocialMetrics             `json:"social_metrics"`
	GroundImpact      analytics.GroundImpact              `json:"ground_impact"`
	TrendingTopics    []string                            `json:"trending_topics"`
	TopInfluencers    []analytics.Influencer              `json:"top_influencers"`
	PlatformBreakdown map[string]analytics.PlatformBucket `json:"platform_breakdown"`
	AIAnalysis        narrative.Narrative                 `json:"ai_analysis"`
	SamplePosts       []post.Post                         `json:"sample_posts"`
}

// Status reports collaborator availability, fixed at construction
type Status struct {
	Source          string `json:"source"`
	SourceAvailable bool   `json:"source_available"`
	Backend         string `json:"backend"`
	AIAvailable     bool   `json:"ai_available"`
	NewsAvailable   bool   `json:"news_available"`
}
