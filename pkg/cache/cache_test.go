package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGenerateKey(t *testing.T) {
	if got := GenerateKey("sentiment", "KRW-BTC"); got != "sentiment:KRW-BTC" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestGenerateKeyWithParams(t *testing.T) {
	if got := GenerateKeyWithParams("snapshot", "KRW-BTC", 200); got != "snapshot:KRW-BTC:200" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := GenerateKeyWithParams("snapshot"); got != "snapshot" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var out string
	if err := mc.Get(context.Background(), "absent", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCacheTypedGet(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "score", 0.42, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var score float64
	if err := mc.Get(ctx, "score", &score); err != nil {
		t.Fatalf("get: %v", err)
	}
	if score != 0.42 {
		t.Fatalf("expected 0.42, got %v", score)
	}
}

type cachedThing struct {
	Market string
	Price  float64
}

func TestMemoryCacheStructGet(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "thing", &cachedThing{Market: "KRW-BTC", Price: 100.5}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got cachedThing
	if err := mc.Get(ctx, "thing", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Market != "KRW-BTC" || got.Price != 100.5 {
		t.Fatalf("unexpected value %+v", got)
	}
}

func TestMemoryCacheMismatchedDest(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "score", 0.42, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var wrong cachedThing
	if err := mc.Get(ctx, "score", &wrong); err == nil {
		t.Fatalf("expected assignment error")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "blink", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	var out string
	if err := mc.Get(ctx, "blink", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss after expiry, got %v", err)
	}
}
