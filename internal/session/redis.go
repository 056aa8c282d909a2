package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carebyte/carebot/internal/log"
)

// keyPrefix namespaces session keys so the store can share a Redis database
// with other consumers.
const keyPrefix = "carebot:session:"

// redisStore persists states as JSON values with a TTL. Optimistic locking
// uses WATCH/MULTI/EXEC: the version check and the write happen inside a
// transaction guarded by the session key.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger log.Logger
}

func newRedisStore(client *redis.Client, ttl time.Duration, logger log.Logger) *redisStore {
	return &redisStore{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *redisStore) Create(ctx context.Context, st *State) error {
	now := time.Now()
	st.CreatedAt = now
	st.UpdatedAt = now
	st.Version = 1

	val, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", st.ID, err)
	}

	if err := s.client.Set(ctx, s.key(st.ID), val, s.ttl).Err(); err != nil {
		return fmt.Errorf("storing session %s: %w", st.ID, err)
	}
	s.logger.Debug("session created", "session_id", st.ID, "ttl", s.ttl)
	return nil
}

func (s *redisStore) Get(ctx context.Context, id string) (*State, error) {
	key := s.key(id)
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}

	var st State
	if err := json.Unmarshal([]byte(val), &st); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", id, err)
	}

	// Reads keep the conversation alive. A failed refresh is not worth
	// failing the read over.
	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		s.logger.Debug("ttl refresh failed", "session_id", id, "error", err)
	}

	return &st, nil
}

func (s *redisStore) Update(ctx context.Context, st *State) error {
	key := s.key(st.ID)

	// The submitted state is only stamped once the transaction committed, so
	// a conflicting update leaves it untouched.
	updated := st.Clone()
	updated.Version = st.Version + 1
	updated.UpdatedAt = time.Now()

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var stored State
		if err := json.Unmarshal([]byte(val), &stored); err != nil {
			return fmt.Errorf("decoding session %s: %w", st.ID, err)
		}
		if stored.Version != st.Version {
			return ErrVersionConflict
		}

		newVal, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("encoding session %s: %w", st.ID, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newVal, s.ttl)
			return nil
		})
		return err
	}, key)

	// The watched key changed between read and commit: another writer won.
	if errors.Is(err, redis.TxFailedErr) {
		return ErrVersionConflict
	}
	if err != nil {
		return err
	}

	st.Version = updated.Version
	st.UpdatedAt = updated.UpdatedAt
	s.logger.Debug("session updated", "session_id", st.ID, "version", st.Version)
	return nil
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	s.logger.Debug("session deleted", "session_id", id)
	return nil
}

func (s *redisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}

func (s *redisStore) key(id string) string {
	return keyPrefix + id
}
