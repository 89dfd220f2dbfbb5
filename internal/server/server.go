// Package server provides the HTTP API for fortytech.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/fortytech/internal/config"
	"github.com/hyperjump/fortytech/internal/models"
	"github.com/hyperjump/fortytech/internal/rag"
	"github.com/hyperjump/fortytech/internal/reference"
	"github.com/hyperjump/fortytech/internal/sp500"
	"github.com/hyperjump/fortytech/internal/workouts"
	"go.uber.org/zap"
)

// StockHistory fetches daily price history for a symbol.
type StockHistory interface {
	History(ctx context.Context, symbol string, start, end time.Time) (*models.History, error)
}

// Deps are the services behind the API. Nil services answer 501.
type Deps struct {
	Pipeline *rag.Pipeline
	Sessions *rag.Sessions
	Workouts *workouts.Source
	Stocks   StockHistory
	SP500    *sp500.Service
}

// Option configures a Server.
type Option func(*Server)

// WithStreamDelay sets the pause between streamed words.
func WithStreamDelay(d time.Duration) Option {
	return func(s *Server) {
		if d >= 0 {
			s.streamDelay = d
		}
	}
}

// Server is the HTTP server for the fortytech API.
type Server struct {
	config      *config.Config
	pipeline    *rag.Pipeline
	sessions    *rag.Sessions
	workouts    *workouts.Source
	stocks      StockHistory
	sp500       *sp500.Service
	logger      *zap.Logger
	streamDelay time.Duration

	mu     sync.Mutex
	server *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(cfg *config.Config, deps Deps, logger *zap.Logger, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	sessions := deps.Sessions
	if sessions == nil {
		sessions = rag.NewSessions()
	}
	s := &Server{
		config:      cfg,
		pipeline:    deps.Pipeline,
		sessions:    sessions,
		workouts:    deps.Workouts,
		stocks:      deps.Stocks,
		sp500:       deps.SP500,
		logger:      logger,
		streamDelay: reference.DefaultStreamDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the API routes with the standard middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)

		r.Post("/rag/sessions", s.handleCreateSession)
		r.Put("/rag/sessions/{id}", s.handleRebuildSession)
		r.Post("/rag/sessions/{id}/ask", s.handleAsk)
		r.Delete("/rag/sessions/{id}", s.handleDeleteSession)

		r.Get("/workouts/options", s.handleWorkoutOptions)
		r.Get("/workouts/data", s.handleWorkoutData)
		r.Get("/workouts/report", s.handleWorkoutReport)

		r.Get("/stocks/{symbol}", s.handleStockHistory)

		r.Get("/sp500/sectors", s.handleSP500Sectors)
		r.Get("/sp500/companies", s.handleSP500Companies)
		r.Get("/sp500/download", s.handleSP500Download)
		r.Get("/sp500/prices", s.handleSP500Prices)

		r.Get("/reference", s.handleReferencePages)
		r.Get("/reference/basics/stream", s.handleReferenceStream)
		r.Get("/reference/data-elements/download", s.handleReferenceDownload)
		r.Get("/reference/{page}", s.handleReferencePage)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()
	s.logger.Info("Starting server", zap.String("addr", addr))
	return srv.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}
