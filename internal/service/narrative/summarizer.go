// internal/service/narrative/summarizer.go

package narrative

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"

	domain "ecodash/internal/domain/narrative"
	"ecodash/internal/domain/post"
	"ecodash/internal/logging"
	"ecodash/internal/monitoring"
)

// UnavailableSummary replaces an empty completion
const UnavailableSummary = "AI analysis unavailable"

// errCallerGone marks backend failures caused by the caller cancelling; they
// are not held against the backend by the breaker
var errCallerGone = errors.New("narrative caller went away")

var (
	summaryTemplates = []string{
		"Social media shows strong concern about %[1]s, with %.1[2]f%% positive sentiment. The conversation is primarily driven by grassroots activists sharing practical solutions.",
		"Current environmental discourse focuses heavily on %[1]s. Public sentiment is cautiously optimistic, with many users sharing success stories and calling for policy action.",
		"Analysis reveals growing public awareness about %[1]s. Social media engagement correlates with recent news coverage, suggesting media amplification of public concerns.",
	}

	recommendations = []string{
		"Focus on practical solutions rather than just highlighting problems",
		"Collaborate with local influencers to amplify reach",
		"Share success stories to maintain positive momentum",
	}

	trends = []string{domain.TrendRising, domain.TrendStable, domain.TrendFalling}
)

// SummarizerConfig contains configuration for the summarizer
type SummarizerConfig struct {
	Timeout          time.Duration
	FailureThreshold uint
	FailureWindow    uint
	BreakerDelay     time.Duration
	Seed             int64
}

// DefaultSummarizerConfig returns the defaults used when nothing is configured
func DefaultSummarizerConfig() SummarizerConfig {
	return SummarizerConfig{
		Timeout:          10 * time.Second,
		FailureThreshold: 3,
		FailureWindow:    5,
		BreakerDelay:     30 * time.Second,
		Seed:             time.Now().UnixNano(),
	}
}

// Summarizer layers a narrative over a post set. It never fails: any backend
// problem routes to the template path.
type Summarizer struct {
	backend domain.Backend
	breaker circuitbreaker.CircuitBreaker[string]
	timeout time.Duration
	logger  logging.Logger
	metrics *monitoring.Metrics

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSummarizer creates a new summarizer. backend may be nil.
func NewSummarizer(backend domain.Backend, cfg SummarizerConfig, logger logging.Logger, metrics *monitoring.Metrics) *Summarizer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.FailureWindow == 0 {
		cfg.FailureWindow = 5
	}
	if cfg.FailureThreshold == 0 || cfg.FailureThreshold > cfg.FailureWindow {
		cfg.FailureThreshold = cfg.FailureWindow
	}
	if cfg.BreakerDelay <= 0 {
		cfg.BreakerDelay = 30 * time.Second
	}

	breaker := circuitbreaker.NewBuilder[string]().
		HandleIf(func(_ string, err error) bool {
			return err != nil &&
				!errors.Is(err, domain.ErrBackendUnavailable) &&
				!errors.Is(err, errCallerGone) &&
				!errors.Is(err, context.Canceled)
		}).
		WithFailureThresholdRatio(cfg.FailureThreshold, cfg.FailureWindow).
		WithDelay(cfg.BreakerDelay).
		WithSuccessThreshold(1).
		OnStateChanged(func(event circuitbreaker.StateChangedEvent) {
			logger.WithFields(logging.Fields{
				"from_state": stateName(event.OldState),
				"to_state":   stateName(event.NewState),
			}).Warn("Narrative backend circuit breaker state change")
		}).
		Build()

	return &Summarizer{
		backend: backend,
		breaker: breaker,
		timeout: cfg.Timeout,
		logger:  logger,
		metrics: metrics,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
	}
}

// BackendName returns the configured backend name, or "template"
func (s *Summarizer) BackendName() string {
	if s.backend == nil {
		return "template"
	}
	return s.backend.Name()
}

// BackendAvailable reports whether a generative backend is configured
func (s *Summarizer) BackendAvailable() bool {
	return s.backend != nil && s.backend.Available()
}

// Summarize builds the narrative for posts and news
func (s *Summarizer) Summarize(ctx context.Context, posts []post.Post, news []post.NewsArticle) domain.Narrative {
	breakdown := CountSentiments(posts)
	dominant := DominantTopic(posts)

	summary, err := s.complete(ctx, posts, news)
	if err != nil {
		if !errors.Is(err, domain.ErrBackendUnavailable) && ctx.Err() == nil {
			s.logger.WithError(err).WithField("backend", s.BackendName()).Warn("Narrative backend failed, using template")
		}

		n := s.templateNarrative(dominant, breakdown)
		s.metrics.ObserveNarrative(s.BackendName(), false)
		return n
	}

	s.metrics.ObserveNarrative(s.BackendName(), true)
	return domain.Narrative{
		Summary:            summary,
		DominantTopic:      dominant,
		SentimentBreakdown: breakdown,
		EngagementTrend:    s.pickTrend(),
		Recommendations:    defaultRecommendations(),
		AIGenerated:        true,
	}
}

// complete dispatches the prompt through the breaker with a bounded timeout
func (s *Summarizer) complete(ctx context.Context, posts []post.Post, news []post.NewsArticle) (string, error) {
	if !s.BackendAvailable() {
		return "", domain.ErrBackendUnavailable
	}

	prompt := BuildPrompt(posts, news)

	text, err := failsafe.With(s.breaker).WithContext(ctx).Get(func() (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		text, err := s.backend.Complete(callCtx, prompt)
		if err != nil && ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", errCallerGone, err)
		}
		return text, err
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrOpen) {
			return "", fmt.Errorf("%w: circuit open", domain.ErrBackendUnavailable)
		}
		return "", err
	}

	if summary := FirstLine(text); summary != "" {
		return summary, nil
	}
	return UnavailableSummary, nil
}

// templateNarrative fills one of the fixed templates
func (s *Summarizer) templateNarrative(dominant string, breakdown domain.SentimentBreakdown) domain.Narrative {
	s.mu.Lock()
	template := summaryTemplates[s.rng.Intn(len(summaryTemplates))]
	trend := trends[s.rng.Intn(len(trends))]
	s.mu.Unlock()

	return domain.Narrative{
		Summary:            fmt.Sprintf(template, dominant, positiveRate(breakdown)),
		DominantTopic:      dominant,
		SentimentBreakdown: breakdown,
		EngagementTrend:    trend,
		Recommendations:    defaultRecommendations(),
		AIGenerated:        false,
	}
}

func (s *Summarizer) pickTrend() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return trends[s.rng.Intn(len(trends))]
}

func stateName(state circuitbreaker.State) string {
	switch state {
	case circuitbreaker.ClosedState:
		return "closed"
	case circuitbreaker.HalfOpenState:
		return "half-open"
	case circuitbreaker.OpenState:
		return "open"
	default:
		return "unknown"
	}
}

func defaultRecommendations() []string {
	out := make([]string, len(recommendations))
	copy(out, recommendations)
	return out
}
