// Package server provides the estimator's HTTP surface: the webhook
// trigger endpoint, estimate queries, health probes, and metrics.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"costline-hq/costline/pkg/config"
	"costline-hq/costline/pkg/reconcile"
	"costline-hq/costline/pkg/server/middleware"
	"costline-hq/costline/pkg/takeoff"
)

// HealthReporter exposes the takeoff client's health for the readiness
// probe.
type HealthReporter interface {
	IsHealthy() bool
	GetHealth() takeoff.Health
}

// Deps are the wired components the server routes to.
type Deps struct {
	// Webhook handles POST /api/Conditions/PostConditionsChange.
	Webhook http.Handler

	// Store serves published estimates.
	Store *reconcile.Store

	// Controller reports per-key reconciliation phases.
	Controller *reconcile.Controller

	// TakeoffHealth gates the readiness probe.
	TakeoffHealth HealthReporter

	// MetricsHandler, when non-nil, is mounted at MetricsPath.
	MetricsHandler http.Handler
	MetricsPath    string
}

// Server is the estimator's HTTP server.
type Server struct {
	config       *config.ServerConfig
	deps         Deps
	httpServer   *http.Server
	logger       *slog.Logger
	shutdownOnce sync.Once
	mu           sync.Mutex
	isRunning    bool
}

// NewServer creates an HTTP server over the wired components.
func NewServer(cfg *config.ServerConfig, deps Deps) *Server {
	return &Server{
		config: cfg,
		deps:   deps,
		logger: slog.Default().With("component", "server"),
	}
}

// Start starts the HTTP server and blocks until the context is
// cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        s.setupRoutes(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully drains and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		running := s.isRunning
		s.isRunning = false
		s.mu.Unlock()
		if !running {
			return
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.logger.Info("HTTP server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/api/Conditions/PostConditionsChange", s.deps.Webhook)
	mux.Handle("/api/Estimates", newEstimateHandler(s.deps.Store))
	mux.Handle("/api/Estimates/keys", newKeysHandler(s.deps.Store, s.deps.Controller))
	mux.Handle("/health", newHealthHandler())
	mux.Handle("/ready", newReadyHandler(s.deps.TakeoffHealth))
	mux.HandleFunc("/", s.handleRoot)

	if s.deps.MetricsHandler != nil {
		path := s.deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, s.deps.MetricsHandler)
	}

	var handler http.Handler = mux
	handler = middleware.CORS(s.config.CORS)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Logging(handler)
	handler = middleware.Recovery(handler)
	return handler
}

// handleRoot serves a small service descriptor at /.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "costline-estimator",
		"endpoints": []string{
			"POST /api/Conditions/PostConditionsChange",
			"GET /api/Estimates?documentId=..&pageNumber=..",
			"GET /api/Estimates/keys",
			"GET /health",
			"GET /ready",
		},
	})
}
