//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kozaktomas/album-render/internal/config"
	"github.com/kozaktomas/album-render/internal/database"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.DatabaseConfig{
		URL:          fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port()),
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}
	return pool, cleanup
}

func seedAlbum(t *testing.T, pool *Pool) (albumID, coverID string) {
	t.Helper()
	ctx := context.Background()
	albumID = uuid.NewString()
	coverID = uuid.NewString()
	page1, page2, empty := uuid.NewString(), uuid.NewString(), uuid.NewString()

	stmts := []struct {
		query string
		args  []any
	}{
		{`INSERT INTO base_covers (id, storage_path) VALUES ($1, 'blue.png')`, []any{coverID}},
		{`INSERT INTO albums (id, cover_id, cover_config) VALUES ($1, $2, $3)`, []any{
			albumID, coverID, `{"texts":[{"content":"Summer","fontSize":"big"}],"userEmail":"a@example.com"}`,
		}},
		{`INSERT INTO album_pages (id, album_id, page_order, page_config) VALUES ($1, $2, 2, '{"backgroundColor":"#112233"}')`, []any{page2, albumID}},
		{`INSERT INTO album_pages (id, album_id, page_order) VALUES ($1, $2, 1)`, []any{page1, albumID}},
		{`INSERT INTO album_pages (id, album_id, page_order) VALUES ($1, $2, 3)`, []any{empty, albumID}},
		{`INSERT INTO album_photos (id, page_id, storage_path, photo_order, layout) VALUES ($1, $2, 'b.jpg', 2, '{"x":10,"y":"oops"}')`, []any{uuid.NewString(), page1}},
		{`INSERT INTO album_photos (id, page_id, storage_path, photo_order, layout) VALUES ($1, $2, 'a.jpg', 1, '{"x":10,"y":20,"w":30}')`, []any{uuid.NewString(), page1}},
		{`INSERT INTO album_photos (id, page_id, storage_path, photo_order) VALUES ($1, $2, 'c.jpg', 1)`, []any{uuid.NewString(), page2}},
	}
	for _, s := range stmts {
		if _, err := pool.Exec(ctx, s.query, s.args...); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
	return albumID, coverID
}

func TestAlbumRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewAlbumRepository(pool)
	albumID, coverID := seedAlbum(t, pool)

	t.Run("GetAlbum", func(t *testing.T) {
		album, err := repo.GetAlbum(ctx, albumID)
		if err != nil {
			t.Fatalf("Failed to get album: %v", err)
		}
		if album == nil {
			t.Fatal("Expected album, got nil")
		}
		if album.CoverID == nil || *album.CoverID != coverID {
			t.Errorf("Expected cover ID %s, got %v", coverID, album.CoverID)
		}
		if len(album.CoverConfig.Texts) != 1 || album.CoverConfig.Texts[0].FontSize != nil {
			t.Errorf("Expected one text with absent font size, got %+v", album.CoverConfig.Texts)
		}
		if album.CoverConfig.UserEmail != "a@example.com" {
			t.Errorf("Expected user email, got '%s'", album.CoverConfig.UserEmail)
		}
	})

	t.Run("GetAlbumNotFound", func(t *testing.T) {
		for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
			album, err := repo.GetAlbum(ctx, id)
			if err != nil {
				t.Fatalf("Unexpected error for %q: %v", id, err)
			}
			if album != nil {
				t.Errorf("Expected nil album for %q", id)
			}
		}
	})

	t.Run("GetCover", func(t *testing.T) {
		cover, err := repo.GetCover(ctx, coverID)
		if err != nil {
			t.Fatalf("Failed to get cover: %v", err)
		}
		if cover == nil || cover.StoragePath != "blue.png" {
			t.Errorf("Expected cover blue.png, got %+v", cover)
		}
	})

	t.Run("GetPages", func(t *testing.T) {
		pages, err := repo.GetPages(ctx, albumID)
		if err != nil {
			t.Fatalf("Failed to get pages: %v", err)
		}
		if len(pages) != 3 {
			t.Fatalf("Expected 3 pages, got %d", len(pages))
		}
		if pages[0].PageOrder != 1 || pages[1].PageOrder != 2 || pages[2].PageOrder != 3 {
			t.Errorf("Pages not ordered: %d, %d, %d", pages[0].PageOrder, pages[1].PageOrder, pages[2].PageOrder)
		}
		if len(pages[0].Photos) != 2 || pages[0].Photos[0].StoragePath != "a.jpg" {
			t.Errorf("Expected photos ordered a.jpg first, got %+v", pages[0].Photos)
		}
		if !pages[0].Photos[0].Layout.Valid() {
			t.Error("Expected first photo layout to be valid")
		}
		if pages[0].Photos[1].Layout.Valid() {
			t.Error("Expected layout with non-numeric y to be invalid")
		}
		if pages[1].PageConfig.BackgroundColor != "#112233" {
			t.Errorf("Expected background color, got '%s'", pages[1].PageConfig.BackgroundColor)
		}
		if len(pages[2].Photos) != 0 {
			t.Errorf("Expected empty page, got %d photos", len(pages[2].Photos))
		}
	})

	t.Run("LoadRenderRequest", func(t *testing.T) {
		req, err := database.LoadRenderRequest(ctx, repo, albumID)
		if err != nil {
			t.Fatalf("Failed to load render request: %v", err)
		}
		if req.Cover == nil || req.Cover.ID != coverID {
			t.Errorf("Expected cover to be resolved, got %+v", req.Cover)
		}
		if len(req.Pages) != 3 {
			t.Errorf("Expected 3 pages, got %d", len(req.Pages))
		}
	})

	t.Run("InsertDelivery", func(t *testing.T) {
		d := &database.PDFDelivery{DocumentReference: "https://store.example/pdfs/x.pdf", Recipient: "a@example.com"}
		if err := repo.InsertDelivery(ctx, d); err != nil {
			t.Fatalf("Failed to insert delivery: %v", err)
		}
		if d.ID == "" || d.CreatedAt.IsZero() {
			t.Errorf("Expected ID and CreatedAt to be filled, got %+v", d)
		}

		var count int
		if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM pdf_deliveries WHERE mail = $1", "a@example.com").Scan(&count); err != nil {
			t.Fatalf("Failed to count deliveries: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected 1 delivery, got %d", count)
		}
	})
}

func TestMigrate_Idempotent(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	if err := pool.Migrate(ctx); err != nil {
		t.Fatalf("Second migration run failed: %v", err)
	}

	versions, err := pool.MigrationsApplied(ctx)
	if err != nil {
		t.Fatalf("Failed to list migrations: %v", err)
	}
	if len(versions) != 1 || versions[0] != "001_albums.sql" {
		t.Errorf("Expected [001_albums.sql], got %v", versions)
	}
}
