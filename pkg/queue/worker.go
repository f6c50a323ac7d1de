package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/kumarsatyam444/Learning-Management-System/pkg/store"
)

// Transcriber produces transcript text for a lesson. The default
// implementation simulates fixed-latency transcription; tests inject
// fast or failing implementations.
type Transcriber func(lesson *store.Lesson) (string, error)

// defaultTranscriber mimics a real transcription service with a fixed
// processing delay and templated output.
func defaultTranscriber(lesson *store.Lesson) (string, error) {
	time.Sleep(2 * time.Second)
	text := fmt.Sprintf("This is an auto-generated transcript for the lesson: %s. "+
		"The video covers important concepts and provides detailed explanations. "+
		"In this lesson, we explore the topic in depth with practical examples and real-world applications.",
		lesson.Title)
	return text, nil
}

// WorkerConfig tunes the transcript worker.
type WorkerConfig struct {
	// Concurrency is the number of concurrent job handlers (default 10).
	Concurrency int

	// BackoffBase is the delay before the first retry; doubled on each
	// further retry. Zero means DefaultBackoffBase.
	BackoffBase time.Duration

	// Transcriber overrides the default simulated transcription.
	Transcriber Transcriber
}

// Worker consumes transcript jobs from the shared Redis queue and
// mutates the referenced lesson's transcript as a side effect.
type Worker struct {
	server  *asynq.Server
	handler *TranscriptHandler
}

// NewWorker creates a worker bound to the Redis queue at the given URL.
// Unlike the producer, the worker exists only to consume the queue, so an
// unreachable backing store is a hard error here.
func NewWorker(redisURL string, lessons store.LessonStore, cfg WorkerConfig, logger zerolog.Logger) (*Worker, error) {
	opt, err := redisConnOpt(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse queue redis url: %w", err)
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	base := cfg.BackoffBase
	if base <= 0 {
		base = DefaultBackoffBase
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{QueueName: 1},
		RetryDelayFunc: func(n int, _ error, _ *asynq.Task) time.Duration {
			return retryDelay(base, n)
		},
	})

	return &Worker{
		server:  server,
		handler: NewTranscriptHandler(lessons, cfg.Transcriber, logger),
	}, nil
}

// Run processes jobs until the process receives a termination signal.
func (w *Worker) Run() error {
	mux := asynq.NewServeMux()
	mux.Handle(TypeTranscriptGenerate, w.handler)
	return w.server.Run(mux)
}

// Start begins processing without blocking. Tests pair it with Shutdown.
func (w *Worker) Start() error {
	mux := asynq.NewServeMux()
	mux.Handle(TypeTranscriptGenerate, w.handler)
	return w.server.Start(mux)
}

// Shutdown stops the worker and waits for in-flight jobs.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

// TranscriptHandler executes a single transcript job attempt.
type TranscriptHandler struct {
	lessons    store.LessonStore
	transcribe Transcriber
	logger     zerolog.Logger
}

// NewTranscriptHandler builds the job handler. A nil transcriber selects
// the simulated default.
func NewTranscriptHandler(lessons store.LessonStore, transcribe Transcriber, logger zerolog.Logger) *TranscriptHandler {
	if transcribe == nil {
		transcribe = defaultTranscriber
	}
	return &TranscriptHandler{lessons: lessons, transcribe: transcribe, logger: logger}
}

// ProcessTask implements asynq.Handler.
//
// Status writes are not transactional against partial execution: a crash
// after "processing" leaves the lesson there until the next attempt, and
// the "failed" written on a retryable error is provisional until attempts
// are exhausted. Returning the error hands scheduling of the next attempt
// to the queue's retry policy.
func (h *TranscriptHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload TranscriptPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		// A payload that never parsed cannot succeed on retry.
		return fmt.Errorf("unmarshal transcript payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := h.process(ctx, payload); err != nil {
		h.logger.Error().Err(err).Str("lesson_id", payload.LessonID).
			Msg("Transcript generation failed")
		h.markFailed(ctx, payload.LessonID)
		JobsTotal.WithLabelValues("failed").Inc()
		return err
	}

	h.logger.Info().Str("lesson_id", payload.LessonID).Msg("Transcript generated")
	JobsTotal.WithLabelValues("completed").Inc()
	return nil
}

func (h *TranscriptHandler) process(ctx context.Context, payload TranscriptPayload) error {
	lesson, err := h.lessons.GetLesson(ctx, payload.LessonID)
	if err != nil {
		return fmt.Errorf("load lesson %s: %w", payload.LessonID, err)
	}

	if err := h.lessons.SetTranscriptStatus(ctx, lesson.ID, store.TranscriptProcessing); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	text, err := h.transcribe(lesson)
	if err != nil {
		return fmt.Errorf("transcribe lesson %s: %w", lesson.ID, err)
	}

	if err := h.lessons.CompleteTranscript(ctx, lesson.ID, text); err != nil {
		return fmt.Errorf("store transcript: %w", err)
	}
	return nil
}

// markFailed records the failed status best-effort. The lesson may be
// missing entirely, in which case there is nothing to record.
func (h *TranscriptHandler) markFailed(ctx context.Context, lessonID string) {
	if err := h.lessons.SetTranscriptStatus(ctx, lessonID, store.TranscriptFailed); err != nil {
		h.logger.Debug().Err(err).Str("lesson_id", lessonID).
			Msg("Could not record failed transcript status")
	}
}
