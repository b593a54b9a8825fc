// Package api serves analysis reports as JSON over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/date"
	"github.com/etnz/tradebook/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Config holds server configuration
type Config struct {
	Port     int
	Log      zerolog.Logger
	Source   store.Source
	Analyzer *tradebook.Analyzer
	Defaults tradebook.Options // Today is set on each request.
	Today    func() date.Date  // defaults to date.Today
	DevMode  bool
}

// Server represents the HTTP server
type Server struct {
	router   *chi.Mux
	server   *http.Server
	log      zerolog.Logger
	source   store.Source
	analyzer *tradebook.Analyzer
	defaults tradebook.Options
	today    func() date.Date
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		log:      cfg.Log.With().Str("component", "api").Logger(),
		source:   cfg.Source,
		analyzer: cfg.Analyzer,
		defaults: cfg.Defaults,
		today:    cfg.Today,
	}
	if s.today == nil {
		s.today = date.Today
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/report", s.handleReport)
		r.Get("/owners", s.handleOwners)
		r.Get("/capital", s.handleCapital)
		r.Get("/curve", s.handleCurve)
		r.Get("/breakdown", s.handleBreakdown)
		r.Get("/income", s.handleIncome)

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleTransactions)
			r.Post("/", s.handleAdd)
			r.Post("/{id}/close", s.handleClose)
		})
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
