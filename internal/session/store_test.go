package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/carebyte/carebot/internal/log"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	store, err := NewStore(BackendMemory, WithLogger(log.NewNop()))
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewStoreBackends(t *testing.T) {
	tests := []struct {
		name    string
		backend Backend
		opts    []Option
		wantErr error
	}{
		{"memory", BackendMemory, nil, nil},
		{"redis without client", BackendRedis, nil, ErrInvalidConfig},
		{"unknown backend", Backend("etcd"), nil, ErrInvalidBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(tt.backend, tt.opts...)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("NewStore() = %v, want nil", err)
				}
				_ = store.Close()
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewStore() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStoreCreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	st := NewState(testSeed())
	st.Append(RoleUser, "hello")

	if err := store.Create(ctx, st); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if st.Version != 1 {
		t.Errorf("Version = %d after create, want 1", st.Version)
	}
	if st.CreatedAt.IsZero() || st.UpdatedAt.IsZero() {
		t.Error("timestamps not stamped on create")
	}

	got, err := store.Get(ctx, st.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.ID != st.ID {
		t.Errorf("ID = %q, want %q", got.ID, st.ID)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "hello" {
		t.Errorf("Messages = %+v, want the stored transcript", got.Messages)
	}
	if got.Overrides.CustomerOUID != "CUST-1" {
		t.Error("override record did not survive the round trip")
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "no-such-session")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() = %v, want ErrNotFound", err)
	}
}

func TestStoreGetReturnsCopy(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	st := NewState(testSeed())
	st.Append(RoleUser, "stored")
	if err := store.Create(ctx, st); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	// Mutating what Get hands out must not leak into the store.
	got, err := store.Get(ctx, st.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	got.Messages[0].Content = "mutated"
	got.Append(RoleAssistant, "extra")

	fresh, err := store.Get(ctx, st.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if fresh.Messages[0].Content != "stored" || len(fresh.Messages) != 1 {
		t.Errorf("stored state was mutated through a Get copy: %+v", fresh.Messages)
	}
}

func TestStoreUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	st := NewState(testSeed())
	if err := store.Create(ctx, st); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	st.Append(RoleUser, "turn one")
	st.UseOverrides = true
	if err := store.Update(ctx, st); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if st.Version != 2 {
		t.Errorf("Version = %d after update, want 2", st.Version)
	}

	got, err := store.Get(ctx, st.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if len(got.Messages) != 1 || !got.UseOverrides {
		t.Errorf("updated state not persisted: %+v", got)
	}
}

func TestStoreUpdateVersionConflict(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	st := NewState(testSeed())
	if err := store.Create(ctx, st); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	// Two handles on version 1. The first writer wins.
	first, _ := store.Get(ctx, st.ID)
	second, _ := store.Get(ctx, st.ID)

	first.Append(RoleUser, "from first")
	if err := store.Update(ctx, first); err != nil {
		t.Fatalf("first Update() failed: %v", err)
	}

	second.Append(RoleUser, "from second")
	if err := store.Update(ctx, second); !errors.Is(err, ErrVersionConflict) {
		t.Errorf("second Update() = %v, want ErrVersionConflict", err)
	}

	// Retry after re-reading succeeds.
	fresh, _ := store.Get(ctx, st.ID)
	fresh.Append(RoleUser, "from second, retried")
	if err := store.Update(ctx, fresh); err != nil {
		t.Errorf("retried Update() = %v, want nil", err)
	}
}

func TestStoreUpdateMissing(t *testing.T) {
	store := newTestStore(t)

	st := NewState(testSeed())
	st.Version = 1
	if err := store.Update(context.Background(), st); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() = %v, want ErrNotFound", err)
	}
}

func TestStoreDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	st := NewState(testSeed())
	if err := store.Create(ctx, st); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if err := store.Delete(ctx, st.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := store.Get(ctx, st.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete = %v, want ErrNotFound", err)
	}

	// Deleting again is fine.
	if err := store.Delete(ctx, st.ID); err != nil {
		t.Errorf("repeated Delete() = %v, want nil", err)
	}
}

func TestStoreConcurrentUpdates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	st := NewState(testSeed())
	if err := store.Create(ctx, st); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	// All writers start from the same version; exactly one may win.
	const writers = 8
	var wg sync.WaitGroup
	results := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			handle := st.Clone()
			handle.Append(RoleUser, "racing")
			results <- store.Update(ctx, handle)
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrVersionConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("%d writers won, want exactly 1", wins)
	}
	if conflicts != writers-1 {
		t.Errorf("%d conflicts, want %d", conflicts, writers-1)
	}
}

func TestStorePing(t *testing.T) {
	store := newTestStore(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping() = %v, want nil", err)
	}
}

func TestStoreClosed(t *testing.T) {
	store, err := NewStore(BackendMemory)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	ctx := context.Background()
	if err := store.Create(ctx, NewState(testSeed())); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Create() after close = %v, want ErrStoreClosed", err)
	}
	if _, err := store.Get(ctx, "id"); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Get() after close = %v, want ErrStoreClosed", err)
	}
	if err := store.Ping(ctx); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Ping() after close = %v, want ErrStoreClosed", err)
	}
}
