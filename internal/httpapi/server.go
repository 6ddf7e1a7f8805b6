package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/dashboard"
	"github.com/hamed0406/uptimeboard/internal/domain"
	apimw "github.com/hamed0406/uptimeboard/internal/httpapi/middleware"
	"github.com/hamed0406/uptimeboard/internal/probe"
	"github.com/hamed0406/uptimeboard/internal/repo"
)

// Refresher recomputes and publishes a dashboard snapshot on demand.
type Refresher interface {
	RefreshOnce(ctx context.Context) (dashboard.Snapshot, error)
}

type Server struct {
	Logger    *zap.Logger
	Targets   repo.TargetStore
	Results   repo.ResultStore
	Checker   probe.Checker
	Board     *dashboard.Board
	Refresher Refresher
	Hub       *Hub

	now func() time.Time
}

func NewServer(
	l *zap.Logger,
	ts repo.TargetStore,
	rs repo.ResultStore,
	c probe.Checker,
	board *dashboard.Board,
	ref Refresher,
) *Server {
	return &Server{
		Logger:    l,
		Targets:   ts,
		Results:   rs,
		Checker:   c,
		Board:     board,
		Refresher: ref,
		Hub:       NewHub(l, board),
		now:       time.Now,
	}
}

// Router builds the HTTP API. Reads need a public or admin key, mutations
// need an admin key; each group has its own per-client rate limit.
func (s *Server) Router(keys apimw.Keys, origins []string, pubRPM, pubBurst, admRPM, admBurst int) http.Handler {
	s.Hub.SetOrigins(origins)

	r := chi.NewRouter()
	r.Use(corsHandler(origins))

	r.Get("/health", s.handleHealth)
	r.Get("/healthz", s.handleHealth)

	// The websocket upgrade needs a hijackable writer, so it stays outside gzip.
	r.With(apimw.RateLimit(pubRPM, pubBurst), apimw.RequireAny(keys)).
		Get("/api/v1/ws", s.Hub.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(gziphandler.GzipHandler)

		r.Group(func(r chi.Router) {
			r.Use(apimw.RateLimit(pubRPM, pubBurst))
			r.Use(apimw.RequireAny(keys))

			r.Get("/metrics", s.handleMetrics)
			r.Get("/api/v1/websites", s.handleListWebsites)
			r.Get("/api/v1/websites/{id}", s.handleGetWebsite)
			r.Get("/api/v1/stats", s.handleStats)
			r.Get("/api/v1/results/latest", s.handleLatest)
		})

		r.Group(func(r chi.Router) {
			r.Use(apimw.RateLimit(admRPM, admBurst))
			r.Use(apimw.RequireAdmin(keys))

			r.Post("/api/v1/website", s.handleAddWebsite)
		})
	})

	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return cors.AllowAll().Handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key"},
		MaxAge:         300,
	})
}

// snapshot returns the board's current snapshot, refreshing once if no
// refresh has completed yet.
func (s *Server) snapshot(ctx context.Context) (dashboard.Snapshot, error) {
	if snap, ok := s.Board.Current(); ok {
		return snap, nil
	}
	if s.Refresher == nil {
		return dashboard.Snapshot{}, fmt.Errorf("no snapshot yet: %w", domain.ErrServiceUnavailable)
	}
	snap, err := s.Refresher.RefreshOnce(ctx)
	if err != nil {
		return dashboard.Snapshot{}, fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	}
	return snap, nil
}
