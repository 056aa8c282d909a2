// Package testutil provides shared testing utilities for the carebot project.
//
// This package contains reusable test infrastructure used across multiple
// packages, following the pattern of standard library packages like
// net/http/httptest and testing/iotest.
package testutil

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestRedis wraps a Redis test container with a connected client.
//
// Usage:
//
//	rd, cleanup := testutil.SetupRedis(t)
//	defer cleanup()
//	store, _ := session.NewStore(session.BackendRedis, session.WithRedisClient(rd.Client))
type TestRedis struct {
	Container *tcredis.RedisContainer
	Client    *goredis.Client
	URL       string
}

// SetupRedis starts a Redis container and returns a verified client.
//
// Returns the container wrapper and a cleanup function that must be called
// to close the client and terminate the container.
func SetupRedis(t *testing.T) (*TestRedis, func()) {
	t.Helper()

	ctx := context.Background()

	container, err := tcredis.Run(ctx,
		"redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	url, err := container.ConnectionString(ctx)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		t.Fatalf("Failed to get connection string: %v", err)
	}

	opts, err := goredis.ParseURL(url)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		t.Fatalf("Failed to parse Redis URL %q: %v", url, err)
	}
	client := goredis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		_ = testcontainers.TerminateContainer(container)
		t.Fatalf("Failed to ping Redis: %v", err)
	}

	rd := &TestRedis{
		Container: container,
		Client:    client,
		URL:       url,
	}

	cleanup := func() {
		_ = client.Close()
		_ = testcontainers.TerminateContainer(container)
	}

	return rd, cleanup
}
