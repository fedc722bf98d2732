// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/nats-io/nats.go"

	"ecodash/internal/adapter/social"
	"ecodash/internal/adapter/storage"
	"ecodash/internal/config"
	domain "ecodash/internal/domain/narrative"
	"ecodash/internal/domain/post"
	"ecodash/internal/logging"
	"ecodash/internal/monitoring"
	"ecodash/internal/server"
	"ecodash/internal/service/dashboard"
	"ecodash/internal/service/listening"
	"ecodash/internal/service/narrative"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Log.Service, cfg.Log.Level)
	metrics := monitoring.NewMetrics("ecodash")

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Optional infrastructure
	var db *pgxpool.Pool
	if cfg.Database.Enabled {
		db, err = storage.Connect(ctx, cfg.Database.DSN())
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize database")
		}
		defer db.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATS.Enabled {
		natsConn, err = initNATS(cfg.NATS, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to NATS")
		}
		defer natsConn.Close()
	}

	seed := cfg.Dashboard.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// Post and news sources
	postStore := storage.NewPostStore(db)
	source := buildSource(cfg, postStore)
	news := social.NewNewsAPIClient(social.NewsAPIConfig{
		APIKey: cfg.News.APIKey,
		Query:  cfg.News.Query,
	})

	var sample *listening.Generator
	if cfg.Dashboard.SampleData {
		sample = listening.NewGenerator(seed)
	}

	// Narrative backend
	backend, err := buildBackend(ctx, cfg.Narrative)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize narrative backend")
	}

	summarizer := narrative.NewSummarizer(backend, narrative.SummarizerConfig{
		Timeout:          cfg.Narrative.Timeout,
		FailureThreshold: uint(cfg.Narrative.FailureThreshold),
		FailureWindow:    uint(cfg.Narrative.FailureWindow),
		BreakerDelay:     cfg.Narrative.BreakerDelay,
		Seed:             seed,
	}, logger, metrics)

	deps := dashboard.Dependencies{
		Source:     source,
		News:       news,
		Sample:     sample,
		Summarizer: summarizer,
		Publisher:  listening.NewPublisher(natsConn, cfg.NATS.EventsTopic),
		Metrics:    metrics,
		Logger:     logger,
	}
	if db != nil && !onlyArchive(cfg.Dashboard.Sources) {
		deps.Archive = postStore
	}

	assembler := dashboard.NewAssembler(deps, dashboard.AssemblerConfig{
		PostLimit:    cfg.Dashboard.PostLimit,
		MaxLimit:     cfg.Dashboard.MaxLimit,
		NewsLimit:    cfg.Dashboard.NewsLimit,
		SampleSize:   cfg.Dashboard.SampleSize,
		FetchTimeout: cfg.Dashboard.FetchTimeout,
	})

	status := assembler.Status()
	logger.WithFields(logging.Fields{
		"source":           status.Source,
		"source_available": status.SourceAvailable,
		"backend":          status.Backend,
		"ai_available":     status.AIAvailable,
		"news_available":   status.NewsAvailable,
	}).Info("Dashboard collaborators configured")

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, assembler, cfg.Dashboard, metrics, logger)

	// Start HTTP server
	go func() {
		logger.Infof("Starting HTTP server on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	logger.Info("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("HTTP server shutdown error")
	}

	if natsConn != nil {
		if err := natsConn.Drain(); err != nil {
			logger.WithError(err).Warn("NATS drain error")
		}
	}

	logger.Info("Shutdown complete")
}

// buildSource combines the configured sources in configured order
func buildSource(cfg config.Config, archive *storage.PostStore) post.Source {
	sources := make([]post.Source, 0, len(cfg.Dashboard.Sources))
	for _, name := range cfg.Dashboard.Sources {
		switch name {
		case config.SourceReddit:
			sources = append(sources, social.NewRedditClient(social.RedditConfig{
				ClientID:     cfg.Reddit.ClientID,
				ClientSecret: cfg.Reddit.ClientSecret,
				UserAgent:    cfg.Reddit.UserAgent,
				Subreddits:   cfg.Reddit.Subreddits,
			}))
		case config.SourceTwitter:
			sources = append(sources, social.NewTwitterClient(social.TwitterConfig{
				BearerToken: cfg.Twitter.BearerToken,
				Query:       cfg.Twitter.Query,
			}))
		case config.SourceBluesky:
			sources = append(sources, social.NewBlueskyClient(social.BlueskyConfig{
				Handle:      cfg.Bluesky.Handle,
				AppPassword: cfg.Bluesky.AppPassword,
				Query:       cfg.Bluesky.Query,
			}))
		case config.SourceArchive:
			sources = append(sources, archive)
		}
	}

	if len(sources) == 1 {
		return sources[0]
	}
	return social.NewMultiSource(sources...)
}

// buildBackend returns nil for the template backend
func buildBackend(ctx context.Context, cfg config.NarrativeConfig) (domain.Backend, error) {
	switch cfg.Backend {
	case config.BackendGroq:
		return narrative.NewGroqBackend(narrative.GroqConfig{
			APIKey: cfg.GroqAPIKey,
			Model:  cfg.GroqModel,
		}), nil
	case config.BackendGemini:
		gemini, err := narrative.NewGeminiBackend(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return gemini, nil
	default:
		return nil, nil
	}
}

func onlyArchive(sources []string) bool {
	return len(sources) == 1 && sources[0] == config.SourceArchive
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig, logger logging.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.WithError(err).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Infof("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
