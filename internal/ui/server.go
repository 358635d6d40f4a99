// Package ui provides the web dashboard for exploring the dataset.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapeda/internal/eda"
	"github.com/leapstack-labs/leapeda/internal/ui/features/dashboard"
	"github.com/leapstack-labs/leapeda/internal/ui/livereload"
	"github.com/leapstack-labs/leapeda/internal/ui/resources"
	"github.com/leapstack-labs/leapeda/internal/ui/router"
	"github.com/leapstack-labs/leapeda/internal/warehouse"
)

// DefaultShutdownTimeout bounds graceful shutdown when Config leaves it unset.
const DefaultShutdownTimeout = 5 * time.Second

// Server is the main UI server.
type Server struct {
	handler         http.Handler
	port            int
	shutdownTimeout time.Duration
	logger          *slog.Logger
	reload          *livereload.Hub

	mu      sync.Mutex
	addr    string
	started chan struct{}
}

// Config holds configuration for the UI server.
type Config struct {
	Source     dashboard.DatasetSource
	Controller *eda.Controller
	// Warehouse enables the SQL console when set.
	Warehouse       *warehouse.Warehouse
	Port            int
	SessionSecret   string
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// NewServer creates a new UI server instance with its routes mounted.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	s := &Server{
		port:            cfg.Port,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          cfg.Logger,
		started:         make(chan struct{}),
	}
	if resources.IsDev {
		s.reload = livereload.NewHub()
	}

	deps := router.Deps{
		Source:       cfg.Source,
		Controller:   cfg.Controller,
		SessionStore: sessionStore,
		Reload:       s.reload,
		Logger:       cfg.Logger,
	}
	// Keep the interface nil when there is no warehouse.
	if cfg.Warehouse != nil {
		deps.Querier = cfg.Warehouse
	}

	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)
	if err := router.SetupRoutes(r, deps); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	s.handler = r

	return s, nil
}

// Handler returns the routed handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Started is closed once Serve is listening or has failed to listen.
func (s *Server) Started() <-chan struct{} {
	return s.started
}

// Addr returns the address Serve is listening on, or "" before it starts.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// URL returns the browser address of the dashboard.
func (s *Server) URL() string {
	if addr := s.Addr(); addr != "" {
		if _, port, err := net.SplitHostPort(addr); err == nil {
			return "http://localhost:" + port
		}
	}
	return fmt.Sprintf("http://localhost:%d", s.port)
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	s.mu.Lock()
	if err == nil {
		s.addr = ln.Addr().String()
	}
	s.mu.Unlock()
	close(s.started)
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}

	s.logger.Info("starting UI server", "addr", s.URL())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Reload pages when assets change on disk
	if s.reload != nil {
		eg.Go(func() error {
			if err := s.reload.Watch(egctx, resources.Dir(), s.logger); err != nil {
				s.logger.Error("live reload disabled", "error", err)
			}
			return nil
		})
	}

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
