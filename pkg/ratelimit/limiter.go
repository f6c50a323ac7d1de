// Package ratelimit implements per-identity fixed-window request
// throttling backed by the shared Redis counter keyspace.
//
// The window is fixed, not sliding: the counter's expiry is attached by
// the increment that creates it and never extended, so a burst can admit
// up to the limit at the end of one window and again right after
// rollover. That approximation is accepted; the atomic INCR+EXPIRE pair
// is the only concurrency primitive in use.
package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/kumarsatyam444/Learning-Management-System/pkg/cache"
	"github.com/kumarsatyam444/Learning-Management-System/pkg/httpapi"
	"github.com/kumarsatyam444/Learning-Management-System/pkg/metrics"
)

// Defaults match the production policy: 60 requests per identity per
// 60-second window.
const (
	DefaultLimit  = 60
	DefaultWindow = 60 * time.Second
)

const keyPrefix = "ratelimit:"

var rejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: metrics.Namespace,
	Name:      "rate_limit_rejections_total",
	Help:      "Total number of requests rejected with 429",
})

// KeyFunc resolves the identity a request is counted against.
type KeyFunc func(r *http.Request) string

// DefaultKeyFunc prefers the authenticated user id resolved by the
// optional-auth stage and falls back to the caller's network address.
func DefaultKeyFunc(r *http.Request) string {
	if userID := httpapi.UserID(r.Context()); userID != "" {
		return userID
	}
	if host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr)); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

// Options configures the limiter middleware.
type Options struct {
	Cache  *cache.Client
	Limit  int
	Window time.Duration
	KeyFn  KeyFunc
	Logger zerolog.Logger
}

// Middleware returns the rate limiting stage. It runs on every request
// before route dispatch; when the cache backing store is unavailable it
// forwards everything unchanged.
func Middleware(opts Options) func(http.Handler) http.Handler {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !opts.Cache.Available() {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := keyPrefix + opts.KeyFn(r)

			current, exists, err := opts.Cache.Get(ctx, key)
			if err != nil {
				// Soft failure: never reject on a broken counter read.
				opts.Logger.Warn().Err(err).Msg("Rate limit check failed, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			if exists {
				count, parseErr := strconv.Atoi(current)
				if parseErr == nil && count >= opts.Limit {
					rejectionsTotal.Inc()
					httpapi.WriteError(w, http.StatusTooManyRequests, httpapi.CodeRateLimit, "",
						"Too many requests. Please try again later.")
					return
				}
			}

			// The expiry rides on the increment that creates the
			// window; the request is forwarded regardless of the
			// post-increment value (the check above decided).
			if _, err := opts.Cache.IncrWindow(ctx, key, opts.Window, !exists); err != nil {
				opts.Logger.Warn().Err(err).Msg("Rate limit increment failed")
			}

			next.ServeHTTP(w, r)
		})
	}
}
