// Package config resolves runtime configuration for the API server and
// the transcript worker in priority order: defaults -> optional YAML
// file -> environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration shared by both binaries.
type Config struct {
	Port int

	// RedisURL backs the cache keyspace and the job queue. Empty or
	// unreachable is non-fatal: dependent features degrade.
	RedisURL string

	// MongoURL backs the document store and is required.
	MongoURL string
	MongoDB  string

	JWTSecret string

	RateLimit  int
	RateWindow time.Duration

	IdempotencyTTL time.Duration

	QueueMaxAttempts  int
	QueueBackoffBase  time.Duration
	WorkerConcurrency int

	LogLevel  string
	LogPretty bool
}

// configFile mirrors the optional YAML schema. Runtime-only fields stay
// out of it on purpose.
type configFile struct {
	Service struct {
		Port int `yaml:"port"`
	} `yaml:"service"`
	Dependencies struct {
		RedisURL string `yaml:"redis_url"`
		MongoURL string `yaml:"mongo_url"`
		MongoDB  string `yaml:"mongo_db"`
	} `yaml:"dependencies"`
	RateLimit struct {
		Limit         int `yaml:"limit"`
		WindowSeconds int `yaml:"window_seconds"`
	} `yaml:"rate_limit"`
	Queue struct {
		MaxAttempts    int `yaml:"max_attempts"`
		BackoffBaseMS  int `yaml:"backoff_base_ms"`
		WorkerRoutines int `yaml:"worker_routines"`
	} `yaml:"queue"`
}

// Load resolves configuration. The file path comes from CONFIG_FILE and
// is optional; a missing file is not an error, a malformed or unreadable
// one is.
func Load() (Config, error) {
	cfg := Config{
		Port:              5000,
		RedisURL:          "redis://localhost:6379",
		MongoURL:          "mongodb://localhost:27017",
		MongoDB:           "lms",
		RateLimit:         60,
		RateWindow:        60 * time.Second,
		IdempotencyTTL:    24 * time.Hour,
		QueueMaxAttempts:  3,
		QueueBackoffBase:  2000 * time.Millisecond,
		WorkerConcurrency: 10,
		LogLevel:          "info",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// A missing file falls through to env and defaults.
		case err != nil:
			return Config{}, fmt.Errorf("read config file: %w", err)
		default:
			var f configFile
			if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
				return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
			}
			applyFile(&cfg, f)
		}
	}

	cfg.Port = envInt("PORT", cfg.Port)
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.MongoURL = envOrDefault("MONGO_URL", cfg.MongoURL)
	cfg.MongoDB = envOrDefault("MONGO_DB", cfg.MongoDB)
	cfg.JWTSecret = envOrDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.RateLimit = envInt("RATE_LIMIT", cfg.RateLimit)
	cfg.RateWindow = time.Duration(envInt("RATE_WINDOW_SECONDS", int(cfg.RateWindow.Seconds()))) * time.Second
	cfg.IdempotencyTTL = time.Duration(envInt("IDEMPOTENCY_TTL_SECONDS", int(cfg.IdempotencyTTL.Seconds()))) * time.Second
	cfg.QueueMaxAttempts = envInt("QUEUE_MAX_ATTEMPTS", cfg.QueueMaxAttempts)
	cfg.QueueBackoffBase = time.Duration(envInt("QUEUE_BACKOFF_BASE_MS", int(cfg.QueueBackoffBase.Milliseconds()))) * time.Millisecond
	cfg.WorkerConcurrency = envInt("WORKER_CONCURRENCY", cfg.WorkerConcurrency)
	cfg.LogLevel = envOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogPretty = envBool("LOG_PRETTY", cfg.LogPretty)

	if cfg.MongoURL == "" {
		return Config{}, fmt.Errorf("missing MONGO_URL")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("missing JWT_SECRET")
	}

	return cfg, nil
}

func applyFile(cfg *Config, f configFile) {
	if f.Service.Port > 0 {
		cfg.Port = f.Service.Port
	}
	if f.Dependencies.RedisURL != "" {
		cfg.RedisURL = f.Dependencies.RedisURL
	}
	if f.Dependencies.MongoURL != "" {
		cfg.MongoURL = f.Dependencies.MongoURL
	}
	if f.Dependencies.MongoDB != "" {
		cfg.MongoDB = f.Dependencies.MongoDB
	}
	if f.RateLimit.Limit > 0 {
		cfg.RateLimit = f.RateLimit.Limit
	}
	if f.RateLimit.WindowSeconds > 0 {
		cfg.RateWindow = time.Duration(f.RateLimit.WindowSeconds) * time.Second
	}
	if f.Queue.MaxAttempts > 0 {
		cfg.QueueMaxAttempts = f.Queue.MaxAttempts
	}
	if f.Queue.BackoffBaseMS > 0 {
		cfg.QueueBackoffBase = time.Duration(f.Queue.BackoffBaseMS) * time.Millisecond
	}
	if f.Queue.WorkerRoutines > 0 {
		cfg.WorkerConcurrency = f.Queue.WorkerRoutines
	}
}

// envOrDefault returns an env var when present, otherwise the fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envBool parses common boolean env forms with a deterministic fallback.
func envBool(name string, fallback bool) bool {
	switch os.Getenv(name) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}
