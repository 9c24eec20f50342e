package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pawradise/backend/internal/domain"
)

func newTestCache(t *testing.T) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(time.Minute)
	t.Cleanup(c.Close)
	return c
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	t.Run("store and retrieve string", func(t *testing.T) {
		if err := cache.Set(ctx, "str", "test-value", time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		var got string
		if err := cache.Get(ctx, "str", &got); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got != "test-value" {
			t.Errorf("Get() = %q, want %q", got, "test-value")
		}
	})

	t.Run("store and retrieve messages", func(t *testing.T) {
		messages := []domain.ChatMessage{
			{Role: domain.ChatRoleUser, Text: "hi"},
			{Role: domain.ChatRoleModel, Text: "woof", RecommendedProductIDs: []string{"1", "4"}},
		}
		if err := cache.Set(ctx, "chat", messages, time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		var got []domain.ChatMessage
		if err := cache.Get(ctx, "chat", &got); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("len(Get()) = %d, want 2", len(got))
		}
		if got[1].RecommendedProductIDs[1] != "4" {
			t.Errorf("RecommendedProductIDs = %v, want [1 4]", got[1].RecommendedProductIDs)
		}
	})

	t.Run("returned value is an independent copy", func(t *testing.T) {
		items := []domain.CartItem{{Product: domain.Product{ID: "1"}, Quantity: 2}}
		if err := cache.Set(ctx, "cart", items, time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		items[0].Quantity = 99

		var got []domain.CartItem
		if err := cache.Get(ctx, "cart", &got); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got[0].Quantity != 2 {
			t.Errorf("Quantity = %d, want 2", got[0].Quantity)
		}
	})

	t.Run("expires after TTL", func(t *testing.T) {
		if err := cache.Set(ctx, "short", "expires-soon", time.Millisecond); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		time.Sleep(10 * time.Millisecond)

		var got string
		if err := cache.Get(ctx, "short", &got); err != domain.ErrCacheMiss {
			t.Errorf("Expected cache miss after expiration, got error = %v", err)
		}
	})
}

func TestMemoryCache_Set_Unencodable(t *testing.T) {
	cache := newTestCache(t)

	if err := cache.Set(context.Background(), "bad", make(chan int), time.Minute); err == nil {
		t.Error("Set() error = nil, want encode error")
	}
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	cache := newTestCache(t)

	var got string
	err := cache.Get(context.Background(), "non-existent-key", &got)
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Get_TypeMismatch(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "n", 42, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got []domain.ChatMessage
	err := cache.Get(ctx, "n", &got)
	if !errors.Is(err, domain.ErrCorruptData) {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrCorruptData)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	key := "delete-test"
	if err := cache.Set(ctx, key, "value", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := cache.Delete(ctx, key); err != nil {
		t.Errorf("Delete() error = %v", err)
	}

	var got string
	if err := cache.Get(ctx, key, &got); err != domain.ErrCacheMiss {
		t.Errorf("Get() after delete error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Exists(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	exists, err := cache.Exists(ctx, "exists-test")
	if err != nil {
		t.Errorf("Exists() error = %v", err)
	}
	if exists {
		t.Errorf("Exists() = true, want false for non-existent key")
	}

	if err := cache.Set(ctx, "exists-test", "value", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	exists, _ = cache.Exists(ctx, "exists-test")
	if !exists {
		t.Errorf("Exists() = false, want true after setting value")
	}

	if err := cache.Set(ctx, "short-ttl", "value", time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	exists, _ = cache.Exists(ctx, "short-ttl")
	if exists {
		t.Errorf("Exists() = true, want false after expiration")
	}
}

func TestMemoryCache_RemoveExpired(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	_ = cache.Set(ctx, "stale", "v", time.Millisecond)
	_ = cache.Set(ctx, "fresh", "v", time.Hour)

	cache.removeExpired(time.Now().Add(time.Second))

	if size := cache.Size(); size != 1 {
		t.Errorf("Size() = %d, want 1 after sweep", size)
	}
}

func TestMemoryCache_SizeAndClear(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		key := string(rune('a' + i))
		if err := cache.Set(ctx, key, i, time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	if size := cache.Size(); size != 5 {
		t.Errorf("Size() = %d, want 5", size)
	}

	_ = cache.Delete(ctx, "a")
	if size := cache.Size(); size != 4 {
		t.Errorf("Size() = %d, want 4 after delete", size)
	}

	cache.Clear()
	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 after clear", size)
	}
}

func TestMemoryCache_CloseIsIdempotent(t *testing.T) {
	cache := NewMemoryCache(0)
	cache.Close()
	cache.Close()
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := string(rune('a' + id))
			if err := cache.Set(ctx, key, id, time.Minute); err != nil {
				t.Errorf("Concurrent Set() error = %v", err)
			}
			var got int
			if err := cache.Get(ctx, key, &got); err != nil {
				t.Errorf("Concurrent Get() error = %v", err)
			}
		}(i)
	}
	wg.Wait()
}
