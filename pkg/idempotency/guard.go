// Package idempotency deduplicates retried mutating requests.
//
// Routes marked mutating-and-retriable are wrapped by the guard: the
// caller supplies an Idempotency-Key header, the first completed
// response is captured and stored under idempotency:<token> for 24
// hours, and every later request bearing the same token replays that
// response verbatim without invoking the handler again.
//
// The guard takes no lock around its check-then-act sequence: two
// concurrent requests with the same fresh token can both execute the
// handler and both store a matching response. That benign race is
// accepted; see the package tests for the serialized guarantee.
package idempotency

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/kumarsatyam444/Learning-Management-System/pkg/cache"
	"github.com/kumarsatyam444/Learning-Management-System/pkg/httpapi"
	"github.com/kumarsatyam444/Learning-Management-System/pkg/metrics"
)

const (
	// Header is the caller-supplied deduplication token header.
	Header = "Idempotency-Key"

	// DefaultTTL is how long a captured response is replayable.
	DefaultTTL = 24 * time.Hour
)

const keyPrefix = "idempotency:"

var (
	replaysTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "idempotency_replays_total",
		Help:      "Total number of responses replayed from the idempotency cache",
	})

	storedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "idempotency_stored_total",
		Help:      "Total number of responses captured into the idempotency cache",
	})
)

// record is the stored {statusCode, body} pair. The body is kept as the
// exact captured bytes, never re-encoded: json.Marshal compacts a
// json.RawMessage, which would strip insignificant whitespace such as
// the trailing newline json.Encoder emits and break byte-identical
// replay.
type record struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Options configures the guard middleware.
type Options struct {
	Cache  *cache.Client
	TTL    time.Duration
	Logger zerolog.Logger
}

// Middleware returns the idempotency guard stage. The route table
// applies it per-route; the guard has no notion of which routes are
// mutating. When the cache backing store is unavailable the guard is a
// pass-through and requests run unprotected.
func Middleware(opts Options) func(http.Handler) http.Handler {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !opts.Cache.Available() {
				next.ServeHTTP(w, r)
				return
			}

			token := r.Header.Get(Header)
			if token == "" {
				httpapi.WriteError(w, http.StatusBadRequest, httpapi.CodeFieldRequired,
					Header, "Idempotency-Key header is required")
				return
			}

			ctx := r.Context()
			key := keyPrefix + token

			stored, ok, err := opts.Cache.Get(ctx, key)
			if err != nil {
				// Soft failure: run the handler unprotected rather
				// than failing the request.
				opts.Logger.Warn().Err(err).Msg("Idempotency lookup failed, running handler unguarded")
				next.ServeHTTP(w, r)
				return
			}

			if ok {
				var rec record
				if err := json.Unmarshal([]byte(stored), &rec); err == nil {
					replaysTotal.Inc()
					opts.Logger.Debug().Str("idempotency_key", token).Msg("Replaying cached response")
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(rec.StatusCode)
					_, _ = w.Write([]byte(rec.Body))
					return
				}
				opts.Logger.Warn().Str("idempotency_key", token).
					Msg("Corrupt idempotency record, treating as miss")
			}

			recorder := newResponseRecorder(w)
			next.ServeHTTP(recorder, r)

			// The response has already reached the caller; a failed
			// capture is logged and swallowed, never surfaced.
			opts.Logger.Debug().Str("idempotency_key", token).Msg("Capturing response")
			persist(ctx, opts, key, token, recorder)
		})
	}
}

func persist(ctx context.Context, opts Options, key, token string, recorder *responseRecorder) {
	body := recorder.body.Bytes()
	if !json.Valid(body) {
		opts.Logger.Warn().Str("idempotency_key", token).
			Msg("Non-JSON response body, skipping idempotency capture")
		return
	}

	data, err := json.Marshal(record{StatusCode: recorder.status, Body: string(body)})
	if err != nil {
		opts.Logger.Warn().Err(err).Str("idempotency_key", token).
			Msg("Failed to encode idempotency record")
		return
	}

	if err := opts.Cache.SetWithTTL(ctx, key, string(data), opts.TTL); err != nil {
		opts.Logger.Warn().Err(err).Str("idempotency_key", token).
			Msg("Failed to store idempotency record")
		return
	}
	storedTotal.Inc()
}

// responseRecorder tees the handler's status and body into a buffer
// while writing through to the caller, so the pipeline captures the
// response without delaying it.
type responseRecorder struct {
	http.ResponseWriter
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *responseRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
