// Package api wires the HTTP surface: routing, middleware, and the
// handlers translating service errors into status codes.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ignite/newsletter/internal/pkg/ratelimit"
)

// Server wraps the HTTP server and its handler graph.
type Server struct {
	handler http.Handler
	server  *http.Server
}

// NewServer builds the router around the given handlers. limiter may be
// nil.
func NewServer(h *Handlers, limiter *ratelimit.Limiter) *Server {
	return &Server{handler: SetupRoutes(h, limiter)}
}

// ListenAndServe starts the HTTP server on addr and blocks.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// Dispatch runs synchronously inside the admin request, so the
		// write timeout has to cover a full newsletter run.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}
