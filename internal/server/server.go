package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/thinkscotty/postcraft/internal/ai"
	"github.com/thinkscotty/postcraft/internal/config"
	"github.com/thinkscotty/postcraft/internal/metrics"
)

type Server struct {
	cfg     config.Config
	ai      *ai.Client
	version string
	httpSrv *http.Server
}

func New(cfg config.Config, aiClient *ai.Client, version string) *Server {
	s := &Server{
		cfg:     cfg,
		ai:      aiClient,
		version: version,
	}
	s.httpSrv = &http.Server{
		Addr:         s.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}
	return s
}

func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
}

// Handler builds the router with all middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)

	s.routes(r)
	return r
}

// Start serves until Shutdown is called, then returns http.ErrServerClosed.
func (s *Server) Start() error {
	slog.Info("Starting server", "addr", s.httpSrv.Addr)
	return s.httpSrv.ListenAndServe()
}

// Shutdown stops accepting connections and waits for active requests to
// finish or ctx to expire. It is safe to call from another goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) routes(r chi.Router) {
	r.Post("/api/generate", s.handleGenerate)
	r.Get("/healthz", s.handleHealth)

	if s.cfg.Metrics.Enabled {
		path := s.cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, metrics.Handler())
	}
}
