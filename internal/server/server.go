// Package server wraps http.Server with the timeout and shutdown behavior
// the service uses everywhere it serves HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/LOCALPULSE/localpulse/internal/config"
	"log/slog"
)

// Server hosts the public API.
type Server struct {
	shutdownTimeout time.Duration
	logger          *slog.Logger
	http            *http.Server
}

// New constructs a Server over the given handler.
func New(cfg config.ServerConfig, logger *slog.Logger, handler http.Handler) *Server {
	return &Server{
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
		http: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Start begins serving HTTP traffic and blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests, waiting at most the configured
// shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	s.logger.Info("http server shutting down")
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
