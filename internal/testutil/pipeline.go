package testutil

import (
	"context"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kumarsatyam444/Learning-Management-System/pkg/cache"
	"github.com/kumarsatyam444/Learning-Management-System/pkg/httpapi"
	"github.com/kumarsatyam444/Learning-Management-System/pkg/idempotency"
	"github.com/kumarsatyam444/Learning-Management-System/pkg/queue"
	"github.com/kumarsatyam444/Learning-Management-System/pkg/ratelimit"
	"github.com/kumarsatyam444/Learning-Management-System/pkg/store"
)

// Pipeline wires the full request path against a real Redis instance:
// optional auth, rate limiting, per-route idempotency, and the job
// producer, over an in-memory document store.
type Pipeline struct {
	Router   http.Handler
	Store    *store.MemoryStore
	Cache    *cache.Client
	Producer *queue.Producer
	Secret   []byte
	RedisURL string
}

// PipelineConfig tweaks the pipeline's guard policies.
type PipelineConfig struct {
	// RateLimit overrides the per-window request limit. Zero keeps the
	// production default.
	RateLimit int
}

// NewPipeline assembles a Pipeline on the given Redis address. Resources
// are released via t.Cleanup.
func NewPipeline(t *testing.T, redisURL string, cfg PipelineConfig) *Pipeline {
	t.Helper()

	logger := zerolog.Nop()

	c := cache.Connect(context.Background(), redisURL, logger)
	t.Cleanup(func() { _ = c.Close() })

	producer := queue.NewProducer(redisURL, queue.ProducerConfig{}, logger)
	t.Cleanup(func() { _ = producer.Close() })

	st := store.NewMemoryStore()
	secret := []byte("integration-secret")

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Handlers:     httpapi.NewHandlers(st, producer, logger),
		OptionalAuth: httpapi.OptionalAuth(secret),
		RateLimit: ratelimit.Middleware(ratelimit.Options{
			Cache:  c,
			Limit:  cfg.RateLimit,
			Logger: logger,
		}),
		Idempotency: idempotency.Middleware(idempotency.Options{
			Cache:  c,
			Logger: logger,
		}),
	})

	return &Pipeline{
		Router:   router,
		Store:    st,
		Cache:    c,
		Producer: producer,
		Secret:   secret,
		RedisURL: redisURL,
	}
}

// Token mints a signed bearer token accepted by the pipeline.
func (p *Pipeline) Token(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := httpapi.MintToken(p.Secret, userID, role)
	if err != nil {
		t.Fatalf("Failed to mint token: %v", err)
	}
	return token
}
