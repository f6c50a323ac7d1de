// Package queue implements the durable transcript generation queue.
//
// The producer (API process) and the worker (separate process) share the
// same Redis backing store through asynq. Jobs carry {lessonId, videoUrl},
// are attempted at most three times, and back off exponentially between
// attempts (2s, 4s, 8s). Transcript generation is best-effort relative to
// lesson creation: a dead queue makes Enqueue a logged no-op, never an
// error for the caller.
package queue

import (
	"strings"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TypeTranscriptGenerate is the asynq task type for transcript jobs.
	TypeTranscriptGenerate = "transcript:generate"

	// QueueName is the asynq queue shared by producer and worker.
	QueueName = "transcripts"

	// DefaultMaxAttempts bounds how many times a job runs, including
	// the first attempt.
	DefaultMaxAttempts = 3

	// DefaultBackoffBase is the delay before the first retry; each
	// further retry doubles it.
	DefaultBackoffBase = 2000 * time.Millisecond
)

// TranscriptPayload is the job payload schema.
type TranscriptPayload struct {
	LessonID string `json:"lessonId"`
	VideoURL string `json:"videoUrl"`
}

// redisConnOpt accepts both redis:// URIs and bare host:port addresses,
// mirroring the cache adapter's URL handling.
func redisConnOpt(url string) (asynq.RedisConnOpt, error) {
	if strings.Contains(url, "://") {
		return asynq.ParseRedisURI(url)
	}
	return asynq.RedisClientOpt{Addr: url}, nil
}

// retryDelay computes the exponential backoff for the n-th retry
// (n starts at 0 for the first retry): base, 2*base, 4*base, ...
func retryDelay(base time.Duration, n int) time.Duration {
	if n < 0 {
		n = 0
	}
	return base << uint(n)
}
