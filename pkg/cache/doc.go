// Package cache wraps the shared Redis connection used by the
// idempotency guard, the rate limiter and the transcript queue producer.
//
// The adapter's one design rule is that Redis is optional: a failed
// startup connection produces a disabled client, and every dependent
// feature degrades to pass-through instead of failing requests.
//
// # Basic Usage
//
//	client := cache.Connect(ctx, "redis://localhost:6379", logger)
//	defer client.Close()
//
//	if client.Available() {
//		val, ok, err := client.Get(ctx, "idempotency:abc")
//		...
//	}
//
// # Availability Semantics
//
//   - Connect pings Redis exactly once; on failure the client is
//     permanently disabled for this process lifetime.
//   - Available() is the single capability query consumed by all
//     dependent components; the pass-through policy is defined here once.
//   - Operation errors after a successful connect are returned to the
//     caller, which logs and continues (soft failure, never fatal).
//
// # Metrics
//
//   - lms_cache_available - 1 when Redis is connected, 0 when disabled
//   - lms_cache_errors_total{operation} - soft operation failures
package cache
