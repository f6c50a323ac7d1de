// Command transcript-worker consumes transcript generation jobs from the
// Redis queue and writes results back to the lesson documents in MongoDB.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kumarsatyam444/Learning-Management-System/pkg/config"
	"github.com/kumarsatyam444/Learning-Management-System/pkg/logging"
	"github.com/kumarsatyam444/Learning-Management-System/pkg/queue"
	"github.com/kumarsatyam444/Learning-Management-System/pkg/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
	})
	logger := logging.NewLogger("transcript-worker")

	ctx := context.Background()
	st, err := store.ConnectMongo(ctx, cfg.MongoURL, cfg.MongoDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer st.Close(context.Background())
	logger.Info().Str("database", cfg.MongoDB).Msg("Connected to MongoDB")

	worker, err := queue.NewWorker(cfg.RedisURL, st, queue.WorkerConfig{
		Concurrency: cfg.WorkerConcurrency,
		BackoffBase: cfg.QueueBackoffBase,
	}, logging.NewLogger("queue"))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create worker")
	}

	logger.Info().
		Int("concurrency", cfg.WorkerConcurrency).
		Str("queue", queue.QueueName).
		Msg("Starting transcript worker")

	// Run blocks until SIGINT/SIGTERM and drains in-flight jobs.
	if err := worker.Run(); err != nil {
		logger.Fatal().Err(err).Msg("Worker failed")
	}
}
