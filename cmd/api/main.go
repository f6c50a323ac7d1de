// Command api runs the course marketplace HTTP server: business routes
// behind optional auth, a shared fixed-window rate limiter, and a
// per-route idempotency guard, with transcript jobs handed off to the
// Redis-backed queue.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kumarsatyam444/Learning-Management-System/pkg/cache"
	"github.com/kumarsatyam444/Learning-Management-System/pkg/config"
	"github.com/kumarsatyam444/Learning-Management-System/pkg/httpapi"
	"github.com/kumarsatyam444/Learning-Management-System/pkg/idempotency"
	"github.com/kumarsatyam444/Learning-Management-System/pkg/logging"
	"github.com/kumarsatyam444/Learning-Management-System/pkg/queue"
	"github.com/kumarsatyam444/Learning-Management-System/pkg/ratelimit"
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
	logger := logging.NewLogger("api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis is optional: without it the guards become pass-throughs and
	// transcript jobs are skipped.
	cacheClient := cache.Connect(ctx, cfg.RedisURL, logging.NewLogger("cache"))
	defer cacheClient.Close()

	// MongoDB is not: the API cannot serve without its documents.
	st, err := store.ConnectMongo(ctx, cfg.MongoURL, cfg.MongoDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer st.Close(context.Background())
	logger.Info().Str("database", cfg.MongoDB).Msg("Connected to MongoDB")

	producer := queue.NewProducer(cfg.RedisURL, queue.ProducerConfig{
		MaxAttempts: cfg.QueueMaxAttempts,
	}, logging.NewLogger("queue"))
	defer producer.Close()

	handlers := httpapi.NewHandlers(st, producer, logger)
	router := httpapi.NewRouter(httpapi.RouterConfig{
		Handlers:     handlers,
		OptionalAuth: httpapi.OptionalAuth([]byte(cfg.JWTSecret)),
		RateLimit: ratelimit.Middleware(ratelimit.Options{
			Cache:  cacheClient,
			Limit:  cfg.RateLimit,
			Window: cfg.RateWindow,
			Logger: logging.NewLogger("ratelimit"),
		}),
		Idempotency: idempotency.Middleware(idempotency.Options{
			Cache:  cacheClient,
			TTL:    cfg.IdempotencyTTL,
			Logger: logging.NewLogger("idempotency"),
		}),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
