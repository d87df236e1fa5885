// Package web provides the HTTP API for prayer-time lookups.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/config"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/solat"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/source"
	webmw "github.com/abdullahzubairwan/waktu-solat-ampang/internal/web/middleware"
)

// LookupLister returns recent lookup log entries.
type LookupLister interface {
	RecentLookups(ctx context.Context, zone string, limit int) ([]solat.LookupEntry, error)
}

// Fetcher downloads timetables from the e-solat API.
type Fetcher interface {
	Fetch(ctx context.Context, req source.Request) ([]source.Record, error)
}

// Pinger reports database health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the server needs. Service is required; a nil
// Lookups or Fetcher disables the matching endpoint.
type Deps struct {
	Service *solat.Service
	Lookups LookupLister
	Fetcher Fetcher
	DB      Pinger
}

// Server is the HTTP server for the prayer-time API.
type Server struct {
	cfg     *config.Config
	deps    Deps
	router  *chi.Mux
	server  *http.Server
	limiter *rateLimiter
	fetches *rateLimiter
}

// NewServer creates a Server with middleware and routes installed.
func NewServer(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		cfg:    cfg,
		deps:   deps,
		router: chi.NewRouter(),
	}
	if cfg.Rate.Enabled {
		s.limiter = newRateLimiter(cfg.Rate.RequestsPerMinute, cfg.Rate.Burst)
		s.fetches = newRateLimiter(cfg.Rate.FetchPerMinute, 1)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(webmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(webmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)

	if s.limiter != nil {
		s.router.Use(s.limiter.middleware)
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/zones", s.handleListZones)
		r.Get("/zones/{code}", s.handleGetZone)

		r.Get("/times", s.handleTimes)
		r.Get("/times/today", s.handleToday)
		r.Get("/times/{date}", s.handleTimesForDate)

		// Operator endpoints
		r.Group(func(r chi.Router) {
			r.Use(webmw.APIKeyAuth(&s.cfg.Security))

			r.Get("/lookups", s.handleLookups)

			if s.fetches != nil {
				r.With(s.fetches.middleware).Post("/fetch", s.handleFetch)
			} else {
				r.Post("/fetch", s.handleFetch)
			}
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its background cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.stop()
	}
	if s.fetches != nil {
		s.fetches.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
