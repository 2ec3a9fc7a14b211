package database

import (
	"context"
	"errors"
	"sync"
)

var (
	providerMu          sync.RWMutex
	postgresAlbumStore  func() AlbumStore
	postgresInitialized bool
)

// ErrNotInitialized is returned when no storage backend has been registered.
var ErrNotInitialized = errors.New("PostgreSQL backend not initialized: DATABASE_URL is required")

// RegisterAlbumStore registers the album store constructor.
// This is called by the serve command to avoid import cycles.
func RegisterAlbumStore(store func() AlbumStore) {
	providerMu.Lock()
	defer providerMu.Unlock()
	postgresAlbumStore = store
	postgresInitialized = store != nil
}

// IsInitialized returns whether a backend has been registered.
func IsInitialized() bool {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return postgresInitialized
}

// GetAlbumReader returns an AlbumReader from the registered backend
func GetAlbumReader(ctx context.Context) (AlbumReader, error) {
	return GetAlbumStore(ctx)
}

// GetDeliveryWriter returns a DeliveryWriter from the registered backend
func GetDeliveryWriter(ctx context.Context) (DeliveryWriter, error) {
	return GetAlbumStore(ctx)
}

// GetAlbumStore returns the registered AlbumStore
func GetAlbumStore(ctx context.Context) (AlbumStore, error) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	if !postgresInitialized || postgresAlbumStore == nil {
		return nil, ErrNotInitialized
	}
	return postgresAlbumStore(), nil
}

// ResetForTesting clears all registered backends.
func ResetForTesting() {
	providerMu.Lock()
	defer providerMu.Unlock()
	postgresAlbumStore = nil
	postgresInitialized = false
}
