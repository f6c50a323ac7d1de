package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Producer enqueues transcript generation jobs. A producer whose backing
// store failed to initialize stays usable: Enqueue becomes a logged no-op
// so lesson creation still succeeds without transcript generation.
type Producer struct {
	client      *asynq.Client
	maxAttempts int
	logger      zerolog.Logger
}

// ProducerConfig tunes job retry behavior.
type ProducerConfig struct {
	// MaxAttempts is the total number of attempts per job, including
	// the first. Zero means DefaultMaxAttempts.
	MaxAttempts int
}

// NewProducer creates a transcript job producer against the Redis queue
// at the given URL. An unparseable URL yields a disabled producer.
func NewProducer(redisURL string, cfg ProducerConfig, logger zerolog.Logger) *Producer {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	opt, err := redisConnOpt(redisURL)
	if err != nil {
		logger.Warn().Err(err).Str("redis_url", redisURL).
			Msg("Failed to initialize transcript queue, jobs will be skipped")
		return &Producer{maxAttempts: attempts, logger: logger}
	}

	logger.Info().Msg("Transcript queue initialized")
	return &Producer{
		client:      asynq.NewClient(opt),
		maxAttempts: attempts,
		logger:      logger,
	}
}

// Enabled reports whether the queue backing store was initialized.
func (p *Producer) Enabled() bool {
	return p != nil && p.client != nil
}

// Enqueue adds a transcript job for the given lesson. It never fails the
// caller: when the queue is unavailable or the enqueue errors, the job is
// skipped with a log entry and a nil handle is returned.
func (p *Producer) Enqueue(ctx context.Context, payload TranscriptPayload) *asynq.TaskInfo {
	if !p.Enabled() {
		p.logger.Warn().Str("lesson_id", payload.LessonID).
			Msg("Transcript queue not available, skipping job")
		EnqueueSkipped.Inc()
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error().Err(err).Str("lesson_id", payload.LessonID).
			Msg("Failed to marshal transcript job payload")
		EnqueueSkipped.Inc()
		return nil
	}

	task := asynq.NewTask(TypeTranscriptGenerate, data)
	info, err := p.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueName),
		// MaxRetry counts retries after the first attempt.
		asynq.MaxRetry(p.maxAttempts-1),
	)
	if err != nil {
		p.logger.Error().Err(err).Str("lesson_id", payload.LessonID).
			Msg("Failed to add transcript job")
		EnqueueSkipped.Inc()
		return nil
	}

	p.logger.Debug().Str("lesson_id", payload.LessonID).Str("task_id", info.ID).
		Msg("Transcript job enqueued")
	return info
}

// Close releases the underlying queue connection. Safe when disabled.
func (p *Producer) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}
