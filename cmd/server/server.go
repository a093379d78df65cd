package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Simplici0/logicalc/internal/apperr"
	"github.com/Simplici0/logicalc/internal/logger"
	"github.com/Simplici0/logicalc/internal/metrics"
	"github.com/Simplici0/logicalc/internal/simulation"
	"github.com/Simplici0/logicalc/internal/store"
)

type server struct {
	repo     store.Repository
	sim      *simulation.Service
	auth     *authService
	log      logger.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	health   func(ctx context.Context) error
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)
	r.Post("/register", s.handleRegister)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireSession)

		r.Get("/me", s.handleMe)

		r.Get("/branches", s.handleBranchesList)
		r.Post("/branches", s.handleBranchCreate)
		r.Put("/branches/{id}", s.handleBranchUpdate)
		r.Delete("/branches/{id}", s.handleBranchDelete)

		r.Get("/carriers", s.handleCarriersList)
		r.Post("/carriers", s.handleCarrierCreate)
		r.Put("/carriers/{id}", s.handleCarrierUpdate)
		r.Delete("/carriers/{id}", s.handleCarrierDelete)

		r.Get("/config", s.handleConfigGet)
		r.Put("/config", s.handleConfigUpdate)

		r.Post("/simulations", s.handleSimulate)
		r.Get("/history", s.handleHistory)
		r.Get("/dashboard", s.handleDashboard)
	})

	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		s.log.Debug("http request", map[string]interface{}{
			"request_id":  middleware.GetReqID(r.Context()),
			"method":      r.Method,
			"route":       route,
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	})
}

func (s *server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := s.auth.sessionUser(r)
		if !ok {
			s.writeError(w, r, apperr.NewAuthenticationError("missing or invalid session"))
			return
		}
		ctx := context.WithValue(r.Context(), userCtxKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
