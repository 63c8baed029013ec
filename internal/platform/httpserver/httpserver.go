// Package httpserver wraps http.Server with the timeouts and lifecycle
// hooks main needs, keeping cmd/server small.
package httpserver

import (
	"context"
	"net/http"
	"time"
)

// Server wraps http.Server with production timeouts.
type Server struct {
	srv *http.Server
}

// New builds a Server bound to addr serving handler.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// ListenAndServe blocks serving requests until Shutdown or failure.
func (s *Server) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
