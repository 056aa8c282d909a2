//go:build integration

package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebyte/carebot/internal/log"
	"github.com/carebyte/carebot/internal/testutil"
)

func setupRedisStore(t *testing.T, ttl time.Duration) (Store, func()) {
	t.Helper()
	rd, cleanup := testutil.SetupRedis(t)

	store, err := NewStore(BackendRedis,
		WithRedisClient(rd.Client),
		WithTTL(ttl),
		WithLogger(log.NewNop()),
	)
	require.NoError(t, err, "NewStore should succeed with a live client")

	// The container cleanup closes the client; Close on the store would
	// double-close it.
	return store, cleanup
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, cleanup := setupRedisStore(t, time.Minute)
	defer cleanup()
	ctx := context.Background()

	st := NewState(testSeed())
	st.UseOverrides = true
	st.Overrides.JWT = "eyJhbGciOiJIUzI1NiJ9.payload.signature"
	st.Append(RoleUser, "How much data is left?")
	st.Append(RoleAssistant, "You have 12 GB remaining.")

	require.NoError(t, store.Create(ctx, st))
	assert.EqualValues(t, 1, st.Version)

	got, err := store.Get(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, st.ID, got.ID)
	assert.Len(t, got.Messages, 2)
	assert.Equal(t, "How much data is left?", got.Messages[0].Content)
	assert.True(t, got.UseOverrides)
	// Tokens are stored verbatim; only display surfaces redact.
	assert.Equal(t, st.Overrides.JWT, got.Overrides.JWT)
}

func TestRedisStoreGetMissing(t *testing.T) {
	store, cleanup := setupRedisStore(t, time.Minute)
	defer cleanup()

	_, err := store.Get(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreVersionConflict(t *testing.T) {
	store, cleanup := setupRedisStore(t, time.Minute)
	defer cleanup()
	ctx := context.Background()

	st := NewState(testSeed())
	require.NoError(t, store.Create(ctx, st))

	first, err := store.Get(ctx, st.ID)
	require.NoError(t, err)
	second, err := store.Get(ctx, st.ID)
	require.NoError(t, err)

	first.Append(RoleUser, "first writer")
	require.NoError(t, store.Update(ctx, first))
	assert.EqualValues(t, 2, first.Version)

	second.Append(RoleUser, "second writer")
	assert.ErrorIs(t, store.Update(ctx, second), ErrVersionConflict)

	// Re-read and retry succeeds.
	fresh, err := store.Get(ctx, st.ID)
	require.NoError(t, err)
	fresh.Append(RoleUser, "second writer, retried")
	assert.NoError(t, store.Update(ctx, fresh))
}

func TestRedisStoreUpdateMissing(t *testing.T) {
	store, cleanup := setupRedisStore(t, time.Minute)
	defer cleanup()

	st := NewState(testSeed())
	st.Version = 1
	assert.ErrorIs(t, store.Update(context.Background(), st), ErrNotFound)
}

func TestRedisStoreDelete(t *testing.T) {
	store, cleanup := setupRedisStore(t, time.Minute)
	defer cleanup()
	ctx := context.Background()

	st := NewState(testSeed())
	require.NoError(t, store.Create(ctx, st))
	require.NoError(t, store.Delete(ctx, st.ID))

	_, err := store.Get(ctx, st.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, store.Delete(ctx, st.ID), "repeated delete should be a no-op")
}

func TestRedisStoreExpiry(t *testing.T) {
	store, cleanup := setupRedisStore(t, time.Second)
	defer cleanup()
	ctx := context.Background()

	st := NewState(testSeed())
	require.NoError(t, store.Create(ctx, st))

	_, err := store.Get(ctx, st.ID)
	require.NoError(t, err, "session should be readable before the TTL elapses")

	time.Sleep(1500 * time.Millisecond)

	_, err = store.Get(ctx, st.ID)
	assert.ErrorIs(t, err, ErrNotFound, "session should expire after the TTL")
}

func TestRedisStorePing(t *testing.T) {
	store, cleanup := setupRedisStore(t, time.Minute)
	defer cleanup()

	assert.NoError(t, store.Ping(context.Background()))
}
