package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "ecodash/internal/domain/narrative"
	"ecodash/internal/domain/post"
	"ecodash/internal/logging"
)

type fakeBackend struct {
	available bool
	calls     int32
	complete  func(ctx context.Context, prompt string) (string, error)
}

func (f *fakeBackend) Name() string    { return "fake" }
func (f *fakeBackend) Available() bool { return f.available }

func (f *fakeBackend) Complete(ctx context.Context, prompt string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.complete(ctx, prompt)
}

func samplePosts() []post.Post {
	return []post.Post{
		{ID: "1", Title: "a", Author: "x", Topic: post.TopicPlasticPollution, Sentiment: post.SentimentPositive, Platform: post.PlatformReddit},
		{ID: "2", Title: "b", Author: "y", Topic: post.TopicClimateChange, Sentiment: post.SentimentPositive, Platform: post.PlatformReddit},
		{ID: "3", Title: "c", Author: "z", Topic: post.TopicClimateChange, Sentiment: post.SentimentNegative, Platform: post.PlatformReddit},
		{ID: "4", Title: "d", Author: "x", Topic: post.TopicPlasticPollution, Sentiment: post.SentimentNeutral, Platform: post.PlatformReddit},
	}
}

func testConfig() SummarizerConfig {
	return SummarizerConfig{
		Timeout:          50 * time.Millisecond,
		FailureThreshold: 2,
		FailureWindow:    2,
		BreakerDelay:     time.Minute,
		Seed:             11,
	}
}

func TestSummarize_NoBackendUsesTemplate(t *testing.T) {
	s := NewSummarizer(nil, testConfig(), logging.NewNopLogger(), nil)

	n := s.Summarize(context.Background(), samplePosts(), nil)

	assert.False(t, n.AIGenerated)
	assert.Equal(t, "Plastic Pollution", n.DominantTopic)
	assert.Equal(t, domain.SentimentBreakdown{Positive: 2, Negative: 1, Neutral: 1}, n.SentimentBreakdown)
	assert.Contains(t, n.Summary, "Plastic Pollution")
	assert.Contains(t, []string{domain.TrendRising, domain.TrendStable, domain.TrendFalling}, n.EngagementTrend)
	assert.Equal(t, []string{
		"Focus on practical solutions rather than just highlighting problems",
		"Collaborate with local influencers to amplify reach",
		"Share success stories to maintain positive momentum",
	}, n.Recommendations)
	assert.Equal(t, "template", s.BackendName())
	assert.False(t, s.BackendAvailable())
}

func TestSummarize_TemplateIsDeterministicForSeed(t *testing.T) {
	a := NewSummarizer(nil, testConfig(), logging.NewNopLogger(), nil)
	b := NewSummarizer(nil, testConfig(), logging.NewNopLogger(), nil)

	for i := 0; i < 5; i++ {
		assert.Equal(t,
			a.Summarize(context.Background(), samplePosts(), nil),
			b.Summarize(context.Background(), samplePosts(), nil),
		)
	}
}

func TestSummarize_TemplateFormatsPositiveRate(t *testing.T) {
	s := NewSummarizer(nil, testConfig(), logging.NewNopLogger(), nil)

	for i := 0; i < 30; i++ {
		n := s.Summarize(context.Background(), samplePosts(), nil)
		if strings.HasPrefix(n.Summary, "Social media shows strong concern") {
			assert.Contains(t, n.Summary, "with 50.0% positive sentiment")
			return
		}
	}
	t.Fatal("positive-rate template was never selected")
}

func TestSummarize_EmptyPosts(t *testing.T) {
	s := NewSummarizer(nil, testConfig(), logging.NewNopLogger(), nil)

	n := s.Summarize(context.Background(), nil, nil)
	assert.Equal(t, "environment", n.DominantTopic)
	assert.Equal(t, domain.SentimentBreakdown{}, n.SentimentBreakdown)
	assert.NotContains(t, n.Summary, "%!")
}

func TestSummarize_BackendFirstLine(t *testing.T) {
	backend := &fakeBackend{
		available: true,
		complete: func(ctx context.Context, prompt string) (string, error) {
			return "\nDiscourse is shifting toward solutions.\nMore detail here.", nil
		},
	}
	s := NewSummarizer(backend, testConfig(), logging.NewNopLogger(), nil)

	n := s.Summarize(context.Background(), samplePosts(), nil)
	assert.True(t, n.AIGenerated)
	assert.Equal(t, "Discourse is shifting toward solutions.", n.Summary)
	assert.Equal(t, "Plastic Pollution", n.DominantTopic)
	assert.Len(t, n.Recommendations, 3)
}

func TestSummarize_EmptyCompletion(t *testing.T) {
	backend := &fakeBackend{
		available: true,
		complete: func(ctx context.Context, prompt string) (string, error) {
			return "   ", nil
		},
	}
	s := NewSummarizer(backend, testConfig(), logging.NewNopLogger(), nil)

	n := s.Summarize(context.Background(), samplePosts(), nil)
	assert.True(t, n.AIGenerated)
	assert.Equal(t, UnavailableSummary, n.Summary)
}

func TestSummarize_UnavailableBackendIsNotCalled(t *testing.T) {
	backend := &fakeBackend{
		available: false,
		complete: func(ctx context.Context, prompt string) (string, error) {
			return "should not be used", nil
		},
	}
	s := NewSummarizer(backend, testConfig(), logging.NewNopLogger(), nil)

	n := s.Summarize(context.Background(), samplePosts(), nil)
	assert.False(t, n.AIGenerated)
	assert.Equal(t, int32(0), atomic.LoadInt32(&backend.calls))
}

func TestSummarize_BackendErrorFallsBack(t *testing.T) {
	backend := &fakeBackend{
		available: true,
		complete: func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("boom")
		},
	}
	s := NewSummarizer(backend, testConfig(), logging.NewNopLogger(), nil)

	n := s.Summarize(context.Background(), samplePosts(), nil)
	assert.False(t, n.AIGenerated)
	assert.NotEmpty(t, n.Summary)
}

func TestSummarize_TimeoutFallsBack(t *testing.T) {
	backend := &fakeBackend{
		available: true,
		complete: func(ctx context.Context, prompt string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	s := NewSummarizer(backend, testConfig(), logging.NewNopLogger(), nil)

	start := time.Now()
	n := s.Summarize(context.Background(), samplePosts(), nil)
	assert.False(t, n.AIGenerated)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSummarize_CircuitOpensAfterFailures(t *testing.T) {
	backend := &fakeBackend{
		available: true,
		complete: func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("upstream 500")
		},
	}
	s := NewSummarizer(backend, testConfig(), logging.NewNopLogger(), nil)

	for i := 0; i < 5; i++ {
		n := s.Summarize(context.Background(), samplePosts(), nil)
		require.False(t, n.AIGenerated)
	}

	assert.Equal(t, int32(2), atomic.LoadInt32(&backend.calls))
}

func TestSummarize_CredentialErrorsDoNotTripBreaker(t *testing.T) {
	backend := &fakeBackend{
		available: true,
		complete: func(ctx context.Context, prompt string) (string, error) {
			return "", domain.ErrBackendUnavailable
		},
	}
	s := NewSummarizer(backend, testConfig(), logging.NewNopLogger(), nil)

	for i := 0; i < 4; i++ {
		s.Summarize(context.Background(), samplePosts(), nil)
	}

	assert.Equal(t, int32(4), atomic.LoadInt32(&backend.calls))
}

func TestSummarize_CallerCancellationDoesNotTripBreaker(t *testing.T) {
	backend := &fakeBackend{available: true}
	s := NewSummarizer(backend, testConfig(), logging.NewNopLogger(), nil)

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		backend.complete = func(_ context.Context, prompt string) (string, error) {
			cancel()
			return "", fmt.Errorf("groq request: %w", context.Canceled)
		}
		n := s.Summarize(ctx, samplePosts(), nil)
		require.False(t, n.AIGenerated)
		cancel()
	}

	backend.complete = func(ctx context.Context, prompt string) (string, error) {
		return "Recycling dominates the conversation.", nil
	}
	n := s.Summarize(context.Background(), samplePosts(), nil)

	assert.True(t, n.AIGenerated)
	assert.Equal(t, int32(4), atomic.LoadInt32(&backend.calls))
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(samplePosts(), []post.NewsArticle{{ID: "n1"}, {ID: "n2"}})

	assert.Contains(t, prompt, "Social Media Posts: 4 posts")
	assert.Contains(t, prompt, "Dominant Topics: Plastic Pollution, Climate Change")
	assert.Contains(t, prompt, "Positive: 2, Negative: 1, Neutral: 1")
	assert.Contains(t, prompt, "News Articles: 2 articles")
	assert.Contains(t, prompt, "1. A concise summary of current environmental discourse")
	assert.Contains(t, prompt, "4. Sentiment breakdown")
}

func TestDominantTopic_TieGoesToFirstSeen(t *testing.T) {
	posts := []post.Post{
		{Topic: post.TopicBiodiversity},
		{Topic: post.TopicClimateChange},
		{Topic: post.TopicClimateChange},
		{Topic: post.TopicBiodiversity},
	}
	assert.Equal(t, "Biodiversity", DominantTopic(posts))
	assert.Equal(t, "environment", DominantTopic(nil))
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "hello", FirstLine("hello\nworld"))
	assert.Equal(t, "hello", FirstLine("\n\n  hello  \nworld"))
	assert.Equal(t, "", FirstLine(""))
}
