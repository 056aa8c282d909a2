package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carebyte/carebot/internal/attrs"
	"github.com/carebyte/carebot/internal/chat"
	"github.com/carebyte/carebot/internal/log"
	"github.com/carebyte/carebot/internal/session"
)

func testSeed() attrs.Seed {
	return attrs.Seed{
		CustomerOUID:   "CUST-1",
		GoodwillSizeGB: 2,
		GoodwillReason: "boosterOrPassRefund",
		Language:       "en",
		Brand:          "carebot",
		Channel:        "chat",
	}
}

// newTestServer builds a server on a memory store with the given invoker
// behind the runner. The store is returned so tests can seed and inspect
// sessions directly.
func newTestServer(t *testing.T, inv chat.Invoker) (*Server, session.Store) {
	t.Helper()

	store, err := session.NewStore(session.BackendMemory)
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	runner, err := chat.NewRunner(chat.RunnerConfig{
		Invoker:  inv,
		Baseline: attrs.Baseline("carebot", "chat", "en"),
		Logger:   log.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewRunner() error: %v", err)
	}

	srv, err := NewServer(ServerConfig{
		Logger: log.NewNop(),
		Store:  store,
		Runner: runner,
		Seed:   testSeed(),
	})
	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}
	return srv, store
}

// createTestSession seeds a session through the store, bypassing HTTP.
func createTestSession(t *testing.T, store session.Store) *session.State {
	t.Helper()
	st := session.NewState(testSeed())
	if err := store.Create(context.Background(), st); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	return st
}

func TestNewServer(t *testing.T) {
	srv, _ := newTestServer(t, &fakeInvoker{stream: &fakeStream{}})

	if srv.Handler() == nil {
		t.Fatal("NewServer().Handler() returned nil")
	}
}

func TestNewServer_MissingStore(t *testing.T) {
	runner, err := chat.NewRunner(chat.RunnerConfig{Invoker: &fakeInvoker{}})
	if err != nil {
		t.Fatalf("NewRunner() error: %v", err)
	}

	_, err = NewServer(ServerConfig{Runner: runner})
	if err == nil {
		t.Fatal("NewServer(nil store) expected error, got nil")
	}
}

func TestNewServer_MissingRunner(t *testing.T) {
	store, err := session.NewStore(session.BackendMemory)
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	defer store.Close()

	_, err = NewServer(ServerConfig{Store: store})
	if err == nil {
		t.Fatal("NewServer(nil runner) expected error, got nil")
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t, &fakeInvoker{stream: &fakeStream{}})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	srv.Handler().ServeHTTP(w, r)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestServer_RateLimitApplied(t *testing.T) {
	store, err := session.NewStore(session.BackendMemory)
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	runner, err := chat.NewRunner(chat.RunnerConfig{Invoker: &fakeInvoker{stream: &fakeStream{}}})
	if err != nil {
		t.Fatalf("NewRunner() error: %v", err)
	}

	srv, err := NewServer(ServerConfig{
		Store:     store,
		Runner:    runner,
		RateRPS:   0.001,
		RateBurst: 1,
	})
	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}

	// First request consumes the only token.
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("first request status = %d, want %d", w.Code, http.StatusCreated)
	}

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	// Health probes sit outside the middleware stack and stay reachable.
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("/health status = %d, want %d", w.Code, http.StatusOK)
	}
}
