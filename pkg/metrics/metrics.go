// Package metrics documents the Prometheus metrics exposed by the service.
//
// Metrics are registered in the package that owns the instrumented code
// using promauto, so importing those packages is enough to have their
// metrics appear on the /metrics endpoint. This package only carries the
// shared namespace and the catalog below.
//
// Cache (pkg/cache):
//   - lms_cache_available (gauge): 1 when Redis is reachable, 0 in
//     degraded pass-through mode.
//   - lms_cache_errors_total{operation} (counter): failed Redis commands
//     by operation (get, set, incr).
//
// Rate limiting (pkg/ratelimit):
//   - lms_rate_limit_rejections_total (counter): requests rejected with
//     429 because the fixed window was exhausted.
//
// Idempotency (pkg/idempotency):
//   - lms_idempotency_replays_total (counter): responses served from a
//     stored record without invoking the handler.
//   - lms_idempotency_stored_total (counter): responses captured and
//     persisted under an idempotency key.
//
// Transcript queue (pkg/queue):
//   - lms_transcript_jobs_total{outcome} (counter): job attempts by
//     outcome (completed, failed, rejected).
//   - lms_transcript_enqueue_skipped_total (counter): lessons created
//     without a queued transcript job because the queue was unavailable.
package metrics

// Namespace is the prefix shared by all metrics exposed by the service.
const Namespace = "lms"
