// internal/domain/analytics/model.go

package analytics

// SocialMetrics summarizes volume, engagement and sentiment of a post set
type SocialMetrics struct {
	TotalPosts            int     `json:"total_posts"`
	TotalEngagement       int     `json:"total_engagement"`
	AverageEngagement     int     `json:"average_engagement"`
	PositiveSentimentRate float64 `json:"positive_sentiment_rate"`
}

// GroundImpact holds real-world outcome estimates derived from post volume
type GroundImpact struct {
	CleanupsTriggered int `json:"cleanups_triggered"`
	PlasticReducedKg  int `json:"plastic_reduced_kg"`
	TreesPlanted      int `json:"trees_planted"`
	PeopleEngaged     int `json:"people_engaged"`
	PolicyDiscussions int `json:"policy_discussions"`
	CarbonOffsetTons  int `json:"carbon_offset_tons"`
}

// ImpactMetrics is recomputed on every request and never stored
type ImpactMetrics struct {
	EffectivenessScore int           `json:"effectiveness_score"`
	SocialMetrics      SocialMetrics `json:"social_metrics"`
	GroundImpact       GroundImpact  `json:"ground_impact"`
}

// Influencer aggregates the posts of one author
type Influencer struct {
	Username          string `json:"username"`
	PostsCount        int    `json:"posts_count"`
	TotalEngagement   int    `json:"total_engagement"`
	AverageEngagement int    `json:"average_engagement"`
	ImpactScore       int    `json:"impact_score"`
}

// PlatformBucket aggregates the posts of one platform
type PlatformBucket struct {
	Count           int `json:"count"`
	TotalEngagement int `json:"total_engagement"`
	AvgEngagement   int `json:"avg_engagement"`
}
