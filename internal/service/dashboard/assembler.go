// internal/service/dashboard/assembler.go

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecodash/internal/domain/post"
	"ecodash/internal/logging"
	"ecodash/internal/monitoring"
	"ecodash/internal/service/analytics"
	"ecodash/internal/service/listening"
	"ecodash/internal/service/narrative"
)

// ErrAggregation marks a failure while computing the dashboard views
var ErrAggregation = errors.New("dashboard aggregation failed")

// errNoSampleSource means the source is unavailable and no generator is configured
var errNoSampleSource = errors.New("no sample source configured")

// PostArchiver persists live posts after a successful build
type PostArchiver interface {
	SavePosts(ctx context.Context, posts []post.Post) error
}

// AssemblerConfig contains configuration for the assembler
type AssemblerConfig struct {
	PostLimit    int
	MaxLimit     int
	NewsLimit    int
	SampleSize   int
	FetchTimeout time.Duration
}

// Dependencies are the collaborators of an Assembler. Source, News, Sample,
// Archive and Publisher may be nil.
type Dependencies struct {
	Source     post.Source
	News       post.NewsSource
	Sample     *listening.Generator
	Normalizer *listening.Normalizer
	Engine     *analytics.Engine
	Summarizer *narrative.Summarizer
	Archive    PostArchiver
	Publisher  *listening.Publisher
	Metrics    *monitoring.Metrics
	Logger     logging.Logger
}

// Assembler composes posts, analytics and narrative into one dashboard.
// Build never returns an error; every failure degrades to a valid document.
type Assembler struct {
	deps   Dependencies
	config AssemblerConfig
	now    func() time.Time
}

// NewAssembler creates a new assembler
func NewAssembler(deps Dependencies, config AssemblerConfig) *Assembler {
	if config.PostLimit <= 0 {
		config.PostLimit = 50
	}
	if config.MaxLimit < config.PostLimit {
		config.MaxLimit = max(500, config.PostLimit)
	}
	if config.NewsLimit <= 0 {
		config.NewsLimit = 20
	}
	if config.SampleSize <= 0 {
		config.SampleSize = 8
	}
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = 15 * time.Second
	}
	if deps.Normalizer == nil {
		deps.Normalizer = listening.NewNormalizer()
	}
	if deps.Engine == nil {
		deps.Engine = analytics.NewEngine()
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	if deps.Summarizer == nil {
		deps.Summarizer = narrative.NewSummarizer(nil, narrative.DefaultSummarizerConfig(), deps.Logger, deps.Metrics)
	}

	return &Assembler{
		deps:   deps,
		config: config,
		now:    time.Now,
	}
}

// Status reports which collaborators are usable
func (a *Assembler) Status() Status {
	status := Status{
		Source:        SampleDataSource,
		Backend:       "template",
		NewsAvailable: a.deps.News != nil && a.deps.News.Available(),
	}
	if a.deps.Source != nil {
		status.Source = a.deps.Source.Name()
		status.SourceAvailable = a.deps.Source.Available()
	}
	if a.deps.Summarizer != nil {
		status.Backend = a.deps.Summarizer.BackendName()
		status.AIAvailable = a.deps.Summarizer.BackendAvailable()
	}
	return status
}

// Build assembles a dashboard from the configured number of posts
func (a *Assembler) Build(ctx context.Context) Response {
	return a.BuildWithLimit(ctx, a.config.PostLimit)
}

// BuildWithLimit assembles a dashboard from up to limit posts, capped at
// the configured maximum
func (a *Assembler) BuildWithLimit(ctx context.Context, limit int) (resp Response) {
	limit = min(limit, a.config.MaxLimit)
	status := a.Status()

	defer func() {
		if r := recover(); r != nil {
			resp = a.failure(status, fmt.Errorf("%w: panic: %v", ErrAggregation, r))
		}
		a.observe(resp)
	}()

	posts, dataSource, err := a.collectPosts(ctx, limit)
	if errors.Is(err, errNoSampleSource) {
		return Response{
			Success:         true,
			DataSource:      SampleDataSource,
			SourceConnected: status.SourceAvailable,
			AIConnected:     status.AIAvailable,
			Data:            CannedData(a.now()),
		}
	}
	if err != nil {
		return a.failure(status, err)
	}

	for _, p := range posts {
		if err := p.Validate(); err != nil {
			return a.failure(status, fmt.Errorf("%w: %v", ErrAggregation, err))
		}
	}

	if dataSource != SampleDataSource {
		a.archive(ctx, posts)
	}

	news := a.collectNews(ctx)
	report := a.deps.Engine.Analyze(posts)
	story := a.deps.Summarizer.Summarize(ctx, posts, news)

	overviewSource := SampleDataSource
	topSource := SampleDataSource
	if dataSource != SampleDataSource {
		overviewSource = dataSource
		topSource = LiveDataSource
	}

	sampleSize := min(a.config.SampleSize, len(posts))
	samplePosts := make([]post.Post, sampleSize)
	copy(samplePosts, posts[:sampleSize])

	return Response{
		Success:         true,
		DataSource:      topSource,
		SourceConnected: status.SourceAvailable,
		AIConnected:     status.AIAvailable,
		Data: Data{
			Overview: Overview{
				TotalPosts:         report.Impact.SocialMetrics.TotalPosts,
				TotalNews:          len(news),
				EffectivenessScore: report.Impact.EffectivenessScore,
				PositiveSentiment:  report.Impact.SocialMetrics.PositiveSentimentRate,
				LastUpdated:        a.now().Format(lastUpdatedLayout),
				DataSource:         overviewSource,
			},
			SocialMetrics:     report.Impact.SocialMetrics,
			GroundImpact:      report.Impact.GroundImpact,
			TrendingTopics:    report.TrendingTopics,
			TopInfluencers:    report.TopInfluencers,
			PlatformBreakdown: report.PlatformBreakdown,
			AIAnalysis:        story,
			SamplePosts:       samplePosts,
		},
	}
}

// collectPosts fetches from the live source, switching to sample posts when
// the source is unavailable
func (a *Assembler) collectPosts(ctx context.Context, limit int) ([]post.Post, string, error) {
	source := a.deps.Source
	if source == nil || !source.Available() {
		return a.samplePosts(limit, "source_unavailable")
	}

	fetchCtx, cancel := context.WithTimeout(ctx, a.config.FetchTimeout)
	defer cancel()

	records, err := source.Fetch(fetchCtx, limit)
	if err != nil {
		if errors.Is(err, post.ErrSourceUnavailable) {
			a.deps.Logger.WithError(err).WithField("source", source.Name()).Warn("Post source unavailable, using sample data")
			return a.samplePosts(limit, "fetch_unavailable")
		}
		return nil, "", fmt.Errorf("fetch from %s: %w", source.Name(), err)
	}

	posts, err := a.deps.Normalizer.Normalize(records)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrAggregation, err)
	}

	return posts, source.Name(), nil
}

func (a *Assembler) samplePosts(limit int, reason string) ([]post.Post, string, error) {
	a.deps.Metrics.ObserveFallback(reason)

	if a.deps.Sample == nil {
		return nil, "", errNoSampleSource
	}

	posts, err := a.deps.Sample.Generate(limit)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrAggregation, err)
	}
	return posts, SampleDataSource, nil
}

// archive stores live posts; failures are logged and otherwise ignored
func (a *Assembler) archive(ctx context.Context, posts []post.Post) {
	if a.deps.Archive == nil {
		return
	}
	if err := a.deps.Archive.SavePosts(ctx, posts); err != nil {
		a.deps.Logger.WithError(err).Warn("Failed to archive posts")
	}
}

// collectNews never fails; a broken news source yields sample or no news
func (a *Assembler) collectNews(ctx context.Context) []post.NewsArticle {
	if a.deps.News != nil && a.deps.News.Available() {
		fetchCtx, cancel := context.WithTimeout(ctx, a.config.FetchTimeout)
		defer cancel()

		news, err := a.deps.News.FetchNews(fetchCtx, a.config.NewsLimit)
		if err == nil {
			return news
		}
		a.deps.Logger.WithError(err).Warn("News source failed")
	}

	if a.deps.Sample != nil {
		return a.deps.Sample.GenerateNews(a.config.NewsLimit)
	}
	return []post.NewsArticle{}
}

// failure builds the canned document reported when aggregation fails
func (a *Assembler) failure(status Status, err error) Response {
	a.deps.Logger.WithError(err).Error("Dashboard assembly failed, serving canned snapshot")

	return Response{
		Success:         false,
		DataSource:      SampleDataSource,
		SourceConnected: status.SourceAvailable,
		AIConnected:     status.AIAvailable,
		Error:           err.Error(),
		Data:            CannedData(a.now()),
	}
}

// observe records metrics and publishes the build event. Neither may affect resp.
func (a *Assembler) observe(resp Response) {
	a.deps.Metrics.ObserveDashboard(resp.DataSource, resp.Success, resp.Data.Overview.TotalPosts)

	err := a.deps.Publisher.PublishDashboardBuilt(listening.DashboardBuilt{
		DataSource:    resp.Data.Overview.DataSource,
		Success:       resp.Success,
		TotalPosts:    resp.Data.Overview.TotalPosts,
		DominantTopic: resp.Data.AIAnalysis.DominantTopic,
		PositiveRate:  resp.Data.Overview.PositiveSentiment,
		AIGenerated:   resp.Data.AIAnalysis.AIGenerated,
	})
	if err != nil {
		a.deps.Logger.WithError(err).Warn("Failed to publish dashboard event")
	}
}
