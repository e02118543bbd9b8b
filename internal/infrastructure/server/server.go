// Package server wires all backend components behind one HTTP server.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/pairpad/backend/internal/api/http"
	"github.com/pairpad/backend/internal/api/middleware"
	"github.com/pairpad/backend/internal/domain/exec"
	"github.com/pairpad/backend/internal/domain/session"
	"github.com/pairpad/backend/internal/infrastructure/config"
	"github.com/pairpad/backend/internal/infrastructure/logging"
	"github.com/pairpad/backend/internal/infrastructure/monitoring"
	"github.com/pairpad/backend/internal/ws"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	router       *gin.Engine
	httpServer   *http.Server
	store        *session.Store
	hub          *ws.Hub
	orchestrator *exec.Orchestrator
	logger       *logging.Logger
	config       *config.Config
	metrics      *monitoring.Metrics
}

// New creates a fully wired server instance.
func New(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing collab editor backend",
		zap.String("port", cfg.Server.Port),
		zap.String("db_path", cfg.Store.Path),
		zap.Duration("retention", cfg.Store.Retention),
	)

	metrics := monitoring.NewMetrics()

	store, err := session.Open(cfg.Store.Path, cfg.Store.Retention, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	store.OnReap(metrics.AddSessionsReaped)
	store.StartReaper(cfg.Store.ReapInterval)
	logger.Info("Session store ready", zap.String("path", cfg.Store.Path))

	runner := exec.NewDockerRunner(cfg.Exec.WorkspaceRoot, cfg.Exec.ImageTag, cfg.Exec.MaxOutputBytes)
	orchestrator := exec.NewOrchestrator(runner, cfg.Exec.Timeout, cfg.Exec.MaxConcurrent, logger,
		exec.WithRunHook(func(language, status string, duration time.Duration) {
			metrics.RecordRun(language, status, duration)
		}),
		exec.WithCleanupFailureHook(metrics.IncCleanupFailures),
	)
	logger.Info("Execution orchestrator ready",
		zap.Int("max_concurrent", cfg.Exec.MaxConcurrent),
		zap.Duration("timeout", cfg.Exec.Timeout),
	)

	hub := ws.NewHub()
	gateway := ws.NewGateway(hub, store, logger).WithMetrics(metrics)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(orchestrator, logger)

	router.GET("/health", handlers.Health)
	router.GET("/api/ping", handlers.Ping)
	router.POST("/api/run", handlers.Run)

	// WebSocket
	router.GET("/socket", gateway.HandleConnection)

	// Metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router:       router,
		store:        store,
		hub:          hub,
		orchestrator: orchestrator,
		logger:       logger,
		config:       cfg,
		metrics:      metrics,
	}, nil
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Close gracefully shuts down the server and its dependencies. In-flight
// requests get a short drain window; in-flight sandbox runs finish on
// their own timeouts.
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP shutdown failed", zap.Error(err))
		}
	}

	if err := s.store.Close(); err != nil {
		s.logger.Error("Failed to close session store", zap.Error(err))
		return fmt.Errorf("failed to close session store: %w", err)
	}
	s.logger.Info("Closed session store")

	s.logger.Sync()
	return nil
}
