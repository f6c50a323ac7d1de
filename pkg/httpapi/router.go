// Package httpapi assembles the request pipeline around the business
// handlers: identity resolution, rate limiting, route dispatch, and the
// per-route idempotency guard on mutating-and-retriable routes.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Middleware is a standard net/http middleware stage.
type Middleware = func(http.Handler) http.Handler

// RouterConfig wires the pipeline stages. The rate limiter and the
// idempotency guard come in as plain middleware so this package stays a
// plain route table: guarded routes are wrapped explicitly here, with no
// auto-detection.
type RouterConfig struct {
	Handlers *Handlers

	// OptionalAuth resolves caller identity before rate limiting.
	OptionalAuth Middleware

	// RateLimit throttles every API request. It must run before the
	// idempotency guard so replayed requests still consume quota.
	RateLimit Middleware

	// Idempotency deduplicates retried mutating requests. Applied only
	// to the routes marked below.
	Idempotency Middleware
}

// NewRouter builds the HTTP routing table.
//
// Stage order is load-bearing: optional auth -> rate limit -> dispatch
// -> (guarded routes only) idempotency -> handler. Health and metrics
// sit outside the rate-limited pipeline.
func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handlers

	r := chi.NewRouter()
	r.Get("/health", h.health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if cfg.OptionalAuth != nil {
			r.Use(cfg.OptionalAuth)
		}
		if cfg.RateLimit != nil {
			r.Use(cfg.RateLimit)
		}

		guard := func(next http.Handler) http.Handler { return next }
		if cfg.Idempotency != nil {
			guard = cfg.Idempotency
		}

		r.Get("/courses/{courseID}", h.getCourse)
		r.Get("/lessons/{lessonID}", h.getLesson)

		r.With(RequireRole("creator", "admin"), guard).Post("/courses", h.createCourse)
		r.With(RequireRole("creator", "admin"), guard).Post("/courses/{courseID}/lessons", h.createLesson)
		r.With(RequireAuth, guard).Post("/creator/apply", h.applyCreator)
		r.With(RequireAuth, guard).Post("/courses/{courseID}/enroll", h.enroll)
	})

	return r
}
