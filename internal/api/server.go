// Package api serves the classified chats over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Server wraps the HTTP server of the chat API.
type Server struct {
	http *http.Server
}

// NewServer creates a server listening on port.
func NewServer(port int, handler http.Handler) *Server {
	return &Server{
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.http.Addr
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}
	return nil
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
