// Package web serves the fleetroster JSON API over HTTP.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/inovacc/fleetroster/internal/report"
	"github.com/inovacc/fleetroster/internal/store"
)

// Server is the HTTP API server.
type Server struct {
	store    store.Store
	sessions *Registry
	sseHub   *SSEHub
	timeout  time.Duration
	text     report.Renderer
	handler  http.Handler
	http     *http.Server
	cancel   context.CancelFunc
}

// Option configures a Server.
type Option func(*Server)

// WithRequestTimeout bounds the time a request may spend in a handler.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.timeout = d
	}
}

// WithTextRenderer replaces the renderer used for text reports.
func WithTextRenderer(r report.Renderer) Option {
	return func(s *Server) {
		s.text = r
	}
}

// New creates a Server backed by st.
func New(st store.Store, opts ...Option) *Server {
	s := &Server{
		store:    st,
		sessions: NewRegistry(st),
		sseHub:   NewSSEHub(),
		timeout:  30 * time.Second,
		text:     report.NewTextRenderer(),
	}

	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	s.handler = chain(mux, recoveryMiddleware, loggingMiddleware, timeoutMiddleware(s.timeout))

	return s
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Sessions returns the session registry.
func (s *Server) Sessions() *Registry {
	return s.sessions
}

// Serve accepts connections on lis until Shutdown is called.
func (s *Server) Serve(lis net.Listener) error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go s.sseHub.Run(ctx)

	s.http = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http server listening", "addr", lis.Addr().String())

	if err := s.http.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	if s.http == nil {
		return nil
	}

	return s.http.Shutdown(ctx)
}
