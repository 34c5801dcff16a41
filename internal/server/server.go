package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/azstat/report-cli/internal/config"
	"github.com/azstat/report-cli/internal/normalize"
	"github.com/azstat/report-cli/internal/store"
	"github.com/azstat/report-cli/internal/validate"
)

// Server exposes the report pipeline over HTTP.
type Server struct {
	cfg        config.Config
	store      store.Store
	normalizer *normalize.Normalizer
	engine     *validate.Engine
	httpServer *http.Server
	uploads    *rate.Limiter
}

// New builds a Server around the given store.
func New(cfg config.Config, st store.Store) (*Server, error) {
	normalizer, err := normalize.New()
	if err != nil {
		return nil, eris.Wrap(err, "server: create normalizer")
	}

	s := &Server{
		cfg:        cfg,
		store:      st,
		normalizer: normalizer,
		engine:     validate.New(cfg.Validation),
		uploads:    rate.NewLimiter(rate.Limit(cfg.Server.UploadRateLimit), cfg.Server.UploadBurst),
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleRoot)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.With(s.uploadLimit).Post("/upload", s.handleUpload)
		r.Get("/reports", s.handleReports)
		r.Get("/reports/compare", s.handleCompare)
		r.Get("/reports/{id}", s.handleGetReport)
		r.Delete("/reports/{id}", s.handleDeleteReport)
		r.Get("/stats", s.handleStats)
		r.Get("/search", s.handleSearch)
	})

	return r
}

// Handler returns the routed handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("http server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return eris.Wrap(err, "server: listen")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	zap.L().Info("http server shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server: shutdown")
	}
	return nil
}
