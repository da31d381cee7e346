// Package api exposes the verification engine over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/provenant/clipverify/internal/engine"
	"github.com/provenant/clipverify/internal/model"
)

// Server serves the verification API.
type Server struct {
	cfg      *model.Config
	engine   *engine.Engine
	gatherer prometheus.Gatherer
	log      zerolog.Logger
	httpSrv  *http.Server
}

// NewServer builds the server and its routes.
func NewServer(cfg *model.Config, eng *engine.Engine, gatherer prometheus.Gatherer, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		engine:   eng,
		gatherer: gatherer,
		log:      logger.With().Str("component", "api").Logger(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.handleInfo)
	r.Get("/health", s.handleHealth)
	r.Post("/verify", s.handleVerify)
	r.Get("/verify/{id}", s.handleGetResult)
	r.Get("/videos", s.handleListVideos)
	r.Post("/videos/add", s.handleAddVideo)
	r.Post("/videos/preprocess", s.handlePreprocess)
	r.Delete("/videos/{sourceID}", s.handleDeleteVideo)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s.httpSrv = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
	}
	return s
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Server.Addr).Msg("http server listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.log.Info().Msg("shutting down http server")
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
