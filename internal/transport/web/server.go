// Package web is the browser-facing verification flow: an id form, a
// questions page and a grading result page.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sandevgo/verifid/internal/config"
	"github.com/sandevgo/verifid/internal/core"
	"github.com/sandevgo/verifid/pkg/log"
)

// QuestionEngine is the part of the engine the web flow needs.
type QuestionEngine interface {
	Ask(ctx context.Context, userID string, record core.Record, k int) []core.Question
	GradeAndLearn(ctx context.Context, userID, field, template, answer string, correctValues []string) core.GradedAnswer
}

// RecordSource resolves an employee id to its record.
type RecordSource interface {
	Lookup(id string) (core.Record, error)
}

type Server struct {
	cfg     *config.AppConfig
	httpSrv *http.Server
}

func NewServer(ctx context.Context, cfg *config.AppConfig, engine QuestionEngine, records RecordSource) *Server {
	h := newHandler(cfg, engine, records)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	// Attach the process logger to every request context.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(log.FromCtx(ctx).WithContext(req.Context())))
		})
	})
	r.Get("/", h.index)
	r.Post("/verify-id", h.verifyID)
	r.Post("/submit-answers", h.submitAnswers)

	return &Server{
		cfg: cfg,
		httpSrv: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.cfg.ListenAddr).Msg("starting web server")
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}
