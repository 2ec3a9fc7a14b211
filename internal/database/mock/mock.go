// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/album-render/internal/database"
)

// MockAlbumStore is a mock implementation of database.AlbumStore
type MockAlbumStore struct {
	mu         sync.RWMutex
	albums     map[string]*database.Album
	covers     map[string]*database.BaseCover
	pages      map[string][]database.AlbumPage
	deliveries []database.PDFDelivery

	// Error injection
	GetAlbumError       error
	GetCoverError       error
	GetPagesError       error
	InsertDeliveryError error
}

// NewMockAlbumStore creates a new mock album store
func NewMockAlbumStore() *MockAlbumStore {
	return &MockAlbumStore{
		albums: make(map[string]*database.Album),
		covers: make(map[string]*database.BaseCover),
		pages:  make(map[string][]database.AlbumPage),
	}
}

// AddAlbum adds an album together with its pages
func (m *MockAlbumStore) AddAlbum(album database.Album, pages ...database.AlbumPage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.albums[album.ID] = &album
	m.pages[album.ID] = pages
}

// AddCover adds a stock cover
func (m *MockAlbumStore) AddCover(cover database.BaseCover) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.covers[cover.ID] = &cover
}

// GetAlbum retrieves an album by ID
func (m *MockAlbumStore) GetAlbum(ctx context.Context, id string) (*database.Album, error) {
	if m.GetAlbumError != nil {
		return nil, m.GetAlbumError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.albums[id]
	if !ok {
		return nil, nil
	}
	album := *a
	return &album, nil
}

// GetCover retrieves a stock cover by ID
func (m *MockAlbumStore) GetCover(ctx context.Context, id string) (*database.BaseCover, error) {
	if m.GetCoverError != nil {
		return nil, m.GetCoverError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.covers[id]
	if !ok {
		return nil, nil
	}
	cover := *c
	return &cover, nil
}

// GetPages returns the pages of an album as stored
func (m *MockAlbumStore) GetPages(ctx context.Context, albumID string) ([]database.AlbumPage, error) {
	if m.GetPagesError != nil {
		return nil, m.GetPagesError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]database.AlbumPage(nil), m.pages[albumID]...), nil
}

// InsertDelivery records a delivery
func (m *MockAlbumStore) InsertDelivery(ctx context.Context, d *database.PDFDelivery) error {
	if m.InsertDeliveryError != nil {
		return fmt.Errorf("insert delivery: %w", m.InsertDeliveryError)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	m.deliveries = append(m.deliveries, *d)
	return nil
}

// Deliveries returns a copy of all recorded deliveries
func (m *MockAlbumStore) Deliveries() []database.PDFDelivery {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]database.PDFDelivery(nil), m.deliveries...)
}

// Verify interface compliance
var _ database.AlbumStore = (*MockAlbumStore)(nil)
