package cache

import (
	"context"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, ok, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || data != nil {
		t.Errorf("expected miss, got ok=%v data=%q", ok, data)
	}
	if err := c.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
}

func TestRedisCacheKey(t *testing.T) {
	c := &RedisCache{}
	a := c.key("https://example.com/a.jpg")
	b := c.key("https://example.com/b.jpg")
	if a == b {
		t.Error("expected distinct keys for distinct URLs")
	}
	if a != c.key("https://example.com/a.jpg") {
		t.Error("expected stable key for the same URL")
	}
	if len(a) != len(keyPrefix)+64 {
		t.Errorf("expected prefixed sha256 key, got %q", a)
	}
}
