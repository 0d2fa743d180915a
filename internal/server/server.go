// Package server serves a built homepage for local preview and drives its
// interactive parts (filter buttons, abstract toggles, the about switch)
// over HTTP.
package server

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/matsen/labpage/internal/dom"
	"github.com/matsen/labpage/internal/publications"
	"github.com/matsen/labpage/internal/site"
)

// Config holds server configuration.
type Config struct {
	Addr     string
	Root     string   // site root holding the static asset directories
	Assets   []string // asset directories served as-is, e.g. "img"
	AllowAll bool     // allow all CORS origins
}

// Server serves one document owned by a publications controller.
type Server struct {
	cfg        Config
	ctrl       *publications.Controller
	logger     *zap.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server for the document owned by ctrl. A nil logger
// disables logging.
func New(cfg Config, ctrl *publications.Controller, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{cfg: cfg, ctrl: ctrl, logger: logger}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/", s.handleIndex)
	r.Get("/"+site.ScriptPath, site.ServeScript)
	r.Get("/state", s.handleState)
	r.Post("/pubs/{keyword}", s.handleSelect)
	r.Post("/abstract/{id}", s.handleAbstract)
	r.Post("/about", s.handleAbout)

	for _, dir := range s.cfg.Assets {
		prefix := "/" + dir + "/"
		fs := http.FileServer(http.Dir(filepath.Join(s.cfg.Root, dir)))
		r.Handle(prefix+"*", http.StripPrefix(prefix, fs))
	}

	return r
}

// Router returns the configured router.
func (s *Server) Router() chi.Router { return s.router }

// Replace swaps in a rebuilt document together with the loader and renderer
// its filter clicks use from now on.
func (s *Server) Replace(doc *dom.Document, loader *publications.Loader, renderer publications.Renderer) {
	s.ctrl.Replace(doc, loader, renderer)
	s.logger.Info("page reloaded", zap.String("bibliography", loader.Source()))
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.logger.Info("serving homepage", zap.String("addr", s.cfg.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// requestLogger logs each request through zap.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
