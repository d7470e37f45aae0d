// Package web serves the JSON API: the emotion taxonomy, text scoring,
// label normalizing, song recommendations and per-screen capture flows.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/justestif/moodtunes/internal/capture"
	"github.com/justestif/moodtunes/internal/catalog"
)

// DefaultAddr is the default server address.
const DefaultAddr = "127.0.0.1:8080"

// sweepInterval is how often expired screens are closed.
const sweepInterval = time.Minute

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr      string
	Catalog   *catalog.Service
	Analyzer  capture.Analyzer
	Camera    capture.Camera // shared capture device; nil means clients upload frames
	MediaRoot string         // served under /musicData/ when set
	ScreenTTL time.Duration
	Logger    *slog.Logger
}

// Server is the HTTP server for the API.
type Server struct {
	router   chi.Router
	server   *http.Server
	screens  *ScreenStore
	handlers *Handlers
	logger   *slog.Logger
}

// NewServer creates a new web server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("catalog service is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	screens := NewScreenStore(cfg.Analyzer, cfg.Camera, cfg.ScreenTTL, logger)
	handlers := NewHandlers(cfg.Catalog, screens, logger)

	s := &Server{
		router:   chi.NewRouter(),
		screens:  screens,
		handlers: handlers,
		logger:   logger,
	}

	// Configure middleware
	s.setupMiddleware()

	// Configure routes
	s.setupRoutes(cfg.MediaRoot)

	// Create HTTP server
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5, "application/json"))
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes(mediaRoot string) {
	h := s.handlers

	if mediaRoot != "" {
		fileServer := http.FileServer(http.Dir(mediaRoot))
		s.router.Handle("/musicData/*", fileServer)
	}

	s.router.Get("/healthz", h.Health)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/emotions", h.Emotions)
		r.Post("/score", h.Score)
		r.Post("/normalize", h.Normalize)

		r.Get("/music/recommendations", h.Recommendations)
		r.Get("/music/songs", h.Songs)

		r.Post("/screens", h.CreateScreen)
		r.Route("/screens/{id}", func(r chi.Router) {
			r.Get("/", h.GetScreen)
			r.Delete("/", h.DeleteScreen)
			r.Post("/start", h.Start)
			r.Put("/text", h.EditText)
			r.Post("/glyph", h.AppendGlyph)
			r.Post("/frame", h.PushFrame)
			r.Post("/submit", h.Submit)
			r.Post("/reset", h.Reset)
			r.Post("/proceed", h.Proceed)
		})
	})
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Screens returns the live screen store.
func (s *Server) Screens() *ScreenStore {
	return s.screens
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", "http://"+s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server and closes every screen.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	s.screens.Close()
	return err
}

// Run starts the server and shuts it down gracefully when ctx is done.
func (s *Server) Run(ctx context.Context) error {
	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	// Wait for cancellation or error
loop:
	for {
		select {
		case err := <-errCh:
			s.screens.Close()
			return err
		case <-ticker.C:
			s.screens.Sweep()
		case <-ctx.Done():
			break loop
		}
	}

	s.logger.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
