// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"ecodash/internal/config"
	"ecodash/internal/logging"
	"ecodash/internal/monitoring"
	"ecodash/internal/server/handlers"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.ServerConfig,
	builder handlers.DashboardBuilder,
	limits config.DashboardConfig,
	metrics *monitoring.Metrics,
	logger logging.Logger,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	if metrics != nil {
		router.Use(metrics.Middleware)
	}

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CorsOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	dashboardHandler := handlers.NewDashboardHandler(builder, limits.StatsLimit, limits.MaxLimit, logger)

	// Routes
	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/health", dashboardHandler.Health)
		r.Get("/dashboard-data", dashboardHandler.GetDashboardData)
		r.Get("/stats", dashboardHandler.GetStats)
		r.Get("/system/status", dashboardHandler.GetSystemStatus)
	})

	// WebSocket live feed
	wsConfig := handlers.DefaultWebSocketConfig()
	wsConfig.PushInterval = cfg.WSPushInterval
	router.Get("/ws/dashboard", handlers.DashboardWebSocketHandler(builder, wsConfig, logger))

	if metrics != nil {
		router.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// Handler returns the root handler, for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
