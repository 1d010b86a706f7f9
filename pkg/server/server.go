// Package server exposes the generated site and the authoring console over HTTP.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/introspection"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	fsadapter "github.com/aretw0/ploog/pkg/adapters/fs"
)

// ShutdownTimeout bounds the graceful shutdown once the context ends.
const ShutdownTimeout = 5 * time.Second

//go:embed console
var consoleAssets embed.FS

// Component is something whose state the console can show.
type Component interface {
	introspection.Introspectable
	introspection.Component
}

// Config selects which surfaces the server mounts.
type Config struct {
	Addr       string
	OutputRoot string
	SourceRoot string
	// Preview mounts the output root under /preview/.
	Preview bool
	// Console mounts the editor shell and its API under /console/.
	Console bool
	// Metrics is mounted at /metrics when set.
	Metrics    http.Handler
	Components []Component
	Logger     *slog.Logger
}

// Server is the preview and console HTTP server.
type Server struct {
	Addr   string
	cfg    Config
	router *chi.Mux
	logger *slog.Logger
}

// New creates a server for cfg. Nothing listens until Start or Serve.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		Addr:   cfg.Addr,
		cfg:    cfg,
		router: chi.NewRouter(),
		logger: logger.With("component", "server"),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	if s.cfg.Preview {
		s.router.Get("/preview", redirectSlash)
		s.router.Handle("/preview/*", http.StripPrefix("/preview", http.FileServer(http.Dir(s.cfg.OutputRoot))))
	}

	if s.cfg.Console {
		s.router.Route("/console/api", func(r chi.Router) {
			r.Get("/dir", s.handleDir)
			r.Get("/state", s.handleState)
			r.Handle("/source/*", http.StripPrefix("/console/api/source", http.FileServer(http.Dir(s.cfg.SourceRoot))))
		})
		s.router.Get("/console", redirectSlash)
		s.router.Handle("/console/*", http.FileServerFS(consoleAssets))
	}

	if s.cfg.Metrics != nil {
		s.router.Handle("/metrics", s.cfg.Metrics)
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on Addr and serves until ctx ends.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx ends, then shuts down within
// ShutdownTimeout. In-flight requests past the timeout are dropped.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("listening", "addr", ln.Addr().String(), "preview", s.cfg.Preview, "console", s.cfg.Console)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("stopped")
	return nil
}

func (s *Server) handleDir(w http.ResponseWriter, r *http.Request) {
	tree, err := fsadapter.Walk(s.cfg.OutputRoot)
	if err != nil {
		s.logger.Error("walk output", "path", s.cfg.OutputRoot, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	states := make(map[string]any, len(s.cfg.Components))
	for _, c := range s.cfg.Components {
		states[c.ComponentType()] = c.State()
	}
	writeJSON(w, http.StatusOK, states)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func redirectSlash(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, r.URL.Path+"/", http.StatusMovedPermanently)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
