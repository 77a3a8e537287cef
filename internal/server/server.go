// Package server exposes the aggregation engine over a read-only HTTP API.
// Both indexes are immutable after load, so handlers share the engine
// without locking.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/sells-group/georadius/internal/config"
	"github.com/sells-group/georadius/internal/engine"
	"github.com/sells-group/georadius/internal/source"
)

// Server holds the dependencies of the HTTP API.
type Server struct {
	cfg *config.Config
	eng *engine.Engine
	ds  *source.Datasets
}

// New creates a server over fully loaded datasets.
func New(cfg *config.Config, eng *engine.Engine, ds *source.Datasets) *Server {
	return &Server{cfg: cfg, eng: eng, ds: ds}
}

// Router builds the handler tree. The rate limiter is one shared token
// bucket for the whole server, not per client.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(s.cfg.Server.RequestTimeoutSecs) * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	limiter := rate.NewLimiter(rate.Limit(s.cfg.Server.RateLimitPerSec), s.cfg.Server.RateLimitBurst)
	r.Use(rateLimit(limiter))

	r.Get("/healthz", s.handleHealthz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/statistics", s.handleStatistics)
		r.Get("/counties/{state}/{county}", s.handleCounty)
		r.Get("/aggregate", s.handleAggregate)
	})

	return r
}
