package httpcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// setupTestRedis creates a Redis client against a local instance and
// skips the test when none is available. The testcontainers-backed
// integration suite under tests/integration covers the same paths
// against a real container.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // separate DB for tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func TestNewManager_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewManager should panic with nil redis client")
		}
	}()
	NewManager(nil)
}

func TestManager_GetSet(t *testing.T) {
	manager := NewManager(setupTestRedis(t))
	ctx := context.Background()

	key := Key{Endpoint: "/photos/abc"}
	if _, err := manager.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get on empty cache = %v, want ErrCacheMiss", err)
	}

	entry := NewEntry([]byte(`{"id":"abc"}`), 200, time.Minute)
	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := manager.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get after Set: %v", err)
	}
	if string(got.Data) != `{"id":"abc"}` {
		t.Errorf("cached data = %s", got.Data)
	}
	if got.StatusCode != 200 {
		t.Errorf("cached status = %d, want 200", got.StatusCode)
	}
}

func TestManager_ExpiredEntryNotCached(t *testing.T) {
	manager := NewManager(setupTestRedis(t))
	ctx := context.Background()

	key := Key{Endpoint: "/photos/expired"}
	entry := NewEntry([]byte("{}"), 200, time.Minute)
	entry.Expires = time.Now().Add(-time.Minute)

	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := manager.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get = %v, want ErrCacheMiss for expired entry", err)
	}
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager(setupTestRedis(t))
	ctx := context.Background()

	key := Key{Endpoint: "/photos/gone"}
	if err := manager.Set(ctx, key, NewEntry([]byte("{}"), 200, time.Minute)); err != nil {
		t.Fatal(err)
	}
	if err := manager.Delete(ctx, key); err != nil {
		t.Fatal(err)
	}
	if _, err := manager.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after Delete = %v, want ErrCacheMiss", err)
	}
}
