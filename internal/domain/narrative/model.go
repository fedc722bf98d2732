// internal/domain/narrative/model.go

package narrative

import (
	"context"
	"errors"
)

// Engagement trend labels
const (
	TrendRising  = "rising"
	TrendStable  = "stable"
	TrendFalling = "falling"
)

// ErrBackendUnavailable marks a generative backend that cannot be used for this request
var ErrBackendUnavailable = errors.New("narrative backend unavailable")

// SentimentBreakdown holds raw sentiment counts, not rates
type SentimentBreakdown struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// Narrative is the natural-language layer on top of the analytics
type Narrative struct {
	Summary            string             `json:"summary"`
	DominantTopic      string             `json:"dominant_topic"`
	SentimentBreakdown SentimentBreakdown `json:"sentiment_breakdown"`
	EngagementTrend    string             `json:"engagement_trend"`
	Recommendations    []string           `json:"recommendations"`
	AIGenerated        bool               `json:"ai_generated"`
}

// Backend defines a generative text completion service
type Backend interface {
	// Name returns the backend name used in logs and status output
	Name() string

	// Available reports whether the backend was configured with credentials
	Available() bool

	// Complete sends a single-turn prompt and returns the raw completion text
	Complete(ctx context.Context, prompt string) (string, error)
}
