// Package cache stores fetched image bytes between renders.
package cache

import (
	"context"
	"time"
)

// Cache is a byte cache keyed by resolved asset URL.
type Cache interface {
	// Get returns the cached bytes and whether they were found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key for ttl.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Close releases the underlying connection, if any.
	Close() error
}

// NullCache never stores anything.
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache {
	return NullCache{}
}

func (NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

func (NullCache) Close() error { return nil }
