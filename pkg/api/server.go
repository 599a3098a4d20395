package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rahilsk203/islamicai-sub002/config"
	"github.com/rahilsk203/islamicai-sub002/pkg/logger"
)

// HTTPServer wraps the HTTP server with lifecycle management.
type HTTPServer struct {
	server *http.Server
	log    logger.Logger
	cfg    *config.Config
}

// NewHTTPServer creates a new HTTP server with the given router.
func NewHTTPServer(cfg *config.Config, log logger.Logger, handler http.Handler) *HTTPServer {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	return &HTTPServer{
		server: &http.Server{
			Addr:           addr,
			Handler:        handler,
			ReadTimeout:    cfg.Server.HTTP.ReadTimeout,
			WriteTimeout:   cfg.Server.HTTP.WriteTimeout,
			IdleTimeout:    cfg.Server.HTTP.IdleTimeout,
			MaxHeaderBytes: cfg.Server.HTTP.MaxHeaderBytes,
		},
		log: log,
		cfg: cfg,
	}
}

// Start begins serving HTTP requests. It blocks until the server stops.
func (s *HTTPServer) Start() error {
	s.log.Info("Starting HTTP server", "addr", s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.Server.HTTP.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	return nil
}

// Addr returns the server's configured address.
func (s *HTTPServer) Addr() string {
	return s.server.Addr
}
