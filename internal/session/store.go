package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carebyte/carebot/internal/log"
)

// Backend names a session storage backend.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendRedis  Backend = "redis"
)

// DefaultTTL is the session lifetime applied when none is configured.
const DefaultTTL = 24 * time.Hour

// Store persists conversation states.
//
// All implementations are safe for concurrent use.
type Store interface {
	// Create stores a new state. The store stamps CreatedAt, UpdatedAt and
	// Version=1 on the submitted state.
	Create(ctx context.Context, st *State) error

	// Get retrieves a state by ID. Returns ErrNotFound if it does not exist
	// or has expired.
	Get(ctx context.Context, id string) (*State, error)

	// Update persists a modified state under optimistic locking: the
	// submitted Version must match the stored one. On success the store
	// increments Version and stamps UpdatedAt on the submitted state.
	// Returns ErrVersionConflict when another writer won, ErrNotFound when
	// the session is gone.
	Update(ctx context.Context, st *State) error

	// Delete removes a state. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources. The store must not be used after.
	Close() error
}

// Option configures a store created by NewStore.
type Option func(*storeConfig)

type storeConfig struct {
	redisClient *redis.Client
	ttl         time.Duration
	logger      log.Logger
}

// WithRedisClient sets the client backing the Redis store. Required for
// BackendRedis.
func WithRedisClient(client *redis.Client) Option {
	return func(c *storeConfig) { c.redisClient = client }
}

// WithTTL sets the session lifetime for backends that expire. Non-positive
// values fall back to DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *storeConfig) { c.ttl = ttl }
}

// WithLogger sets the store logger. Defaults to a nop logger.
func WithLogger(logger log.Logger) Option {
	return func(c *storeConfig) { c.logger = logger }
}

// NewStore creates a store for the named backend.
func NewStore(backend Backend, opts ...Option) (Store, error) {
	cfg := &storeConfig{
		ttl:    DefaultTTL,
		logger: log.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.ttl <= 0 {
		cfg.ttl = DefaultTTL
	}

	switch backend {
	case BackendMemory:
		return newMemoryStore(cfg.logger), nil
	case BackendRedis:
		if cfg.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		return newRedisStore(cfg.redisClient, cfg.ttl, cfg.logger), nil
	default:
		return nil, ErrInvalidBackend
	}
}
