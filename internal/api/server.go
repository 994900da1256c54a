package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/amaumene/repertoire/internal/api/handlers"
	"github.com/amaumene/repertoire/internal/api/middleware"
	"github.com/amaumene/repertoire/internal/config"
	"github.com/amaumene/repertoire/internal/metrics"
	"github.com/amaumene/repertoire/internal/models"
	"github.com/sirupsen/logrus"
)

// Server exposes the watch-mode health, status and metrics endpoints
type Server struct {
	server   *http.Server
	source   handlers.EntrySource
	sessions models.SessionStore
	metrics  *metrics.Collector
	logger   *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, source handlers.EntrySource, sessions models.SessionStore, collector *metrics.Collector, logger *logrus.Logger) *Server {
	s := &Server{
		source:   source,
		sessions: sessions,
		metrics:  collector,
		logger:   logger,
	}

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the routed handler wrapped in the logging middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.setupRoutes(mux)
	return middleware.Logging(mux, s.logger)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	healthHandler := handlers.NewHealthHandler(s.sessions, s.logger)
	mux.HandleFunc("/health", healthHandler.ServeHTTP)

	statusHandler := handlers.NewStatusHandler(s.source, s.logger)
	mux.HandleFunc("/status", statusHandler.ServeHTTP)

	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
}

// Start starts the HTTP server and blocks until ctx is done
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
