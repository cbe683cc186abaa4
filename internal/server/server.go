// Package server provides the HTTP API for formatting and highlighting SQL.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/leapstack-labs/sqlprism/internal/cache"
	"github.com/leapstack-labs/sqlprism/pkg/format"
	"github.com/leapstack-labs/sqlprism/pkg/highlight"
	"github.com/leapstack-labs/sqlprism/pkg/token"
	"golang.org/x/sync/errgroup"
)

const (
	defaultReadHeaderTimeout = 10 * time.Second
	shutdownTimeout          = 5 * time.Second

	// maxBodyBytes bounds request bodies.
	maxBodyBytes = 1 << 20

	// Results for inputs longer than maxCachedSQLBytes are never cached, and
	// the cache holds at most maxCachedResults entries.
	maxCachedSQLBytes = 64 << 10
	maxCachedResults  = 1024
)

// Config holds configuration for the API server.
type Config struct {
	Port              int
	ReadHeaderTimeout time.Duration
	CacheTTL          time.Duration
	Indent            string
	ClassPrefix       string
	Vocabulary        *token.Vocabulary
	Logger            *slog.Logger
}

// Server serves the formatting and highlighting API.
type Server struct {
	port              int
	readHeaderTimeout time.Duration
	indent            string
	vocab             *token.Vocabulary
	highlighter       *highlight.Highlighter
	results           *cache.Cache[string]
	logger            *slog.Logger
}

// New creates a new API server instance.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	vocab := cfg.Vocabulary
	if vocab == nil {
		vocab = token.Default
	}
	indent := cfg.Indent
	if indent == "" {
		indent = format.DefaultIndent
	}
	prefix := cfg.ClassPrefix
	if prefix == "" {
		prefix = highlight.DefaultClassPrefix
	}
	timeout := cfg.ReadHeaderTimeout
	if timeout <= 0 {
		timeout = defaultReadHeaderTimeout
	}

	return &Server{
		port:              cfg.Port,
		readHeaderTimeout: timeout,
		indent:            indent,
		vocab:             vocab,
		highlighter: highlight.New(
			highlight.WithVocabulary(vocab),
			highlight.WithRenderer(highlight.HTMLRenderer{Prefix: prefix}),
		),
		results: cache.New[string]("results", cfg.CacheTTL, logger, cache.WithMaxEntries(maxCachedResults)),
		logger:  logger,
	}
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		requestID,
		s.requestLogger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/vocabulary", s.handleVocabulary)
		r.Post("/format", s.handleFormat)
		r.Post("/highlight", s.handleHighlight)
	})
	return r
}

// Serve starts the server on the configured port and blocks until the
// context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until the context is cancelled, then shuts
// down gracefully.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting API server", "addr", "http://"+ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: s.readHeaderTimeout,
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down API server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
