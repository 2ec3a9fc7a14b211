package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/kozaktomas/album-render/internal/database"
)

// AlbumRepository reads albums and appends PDF deliveries.
type AlbumRepository struct {
	pool *Pool
}

// NewAlbumRepository creates a new PostgreSQL album repository
func NewAlbumRepository(pool *Pool) *AlbumRepository {
	return &AlbumRepository{pool: pool}
}

// GetAlbum retrieves an album by ID, returns nil if not found.
// IDs that are not UUIDs cannot exist and are reported as not found.
func (r *AlbumRepository) GetAlbum(ctx context.Context, id string) (*database.Album, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	query := `SELECT id, cover_id, cover_config FROM albums WHERE id = $1`

	var (
		a          database.Album
		coverID    sql.NullString
		coverBytes []byte
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &coverID, &coverBytes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get album: %w", err)
	}

	if coverID.Valid {
		a.CoverID = &coverID.String
	}
	cfg, err := database.ParseCoverConfig(coverBytes)
	if err != nil {
		log.Warn("ignoring malformed cover_config", "album", a.ID, "err", err)
	}
	a.CoverConfig = cfg
	return &a, nil
}

// GetCover retrieves a stock cover by ID, returns nil if not found
func (r *AlbumRepository) GetCover(ctx context.Context, id string) (*database.BaseCover, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	var c database.BaseCover
	err := r.pool.QueryRow(ctx, `SELECT id, storage_path FROM base_covers WHERE id = $1`, id).Scan(&c.ID, &c.StoragePath)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cover: %w", err)
	}
	return &c, nil
}

// GetPages retrieves all pages of an album with their photos, ordered by
// page_order and photo_order. Pages without photos are included.
func (r *AlbumRepository) GetPages(ctx context.Context, albumID string) ([]database.AlbumPage, error) {
	if _, err := uuid.Parse(albumID); err != nil {
		return nil, nil
	}

	query := `
		SELECT p.id, p.album_id, p.page_order, p.page_config,
		       ph.id, ph.storage_path, ph.photo_order, ph.layout
		FROM album_pages p
		LEFT JOIN album_photos ph ON ph.page_id = p.id
		WHERE p.album_id = $1
		ORDER BY p.page_order, p.id, ph.photo_order, ph.id
	`

	rows, err := r.pool.Query(ctx, query, albumID)
	if err != nil {
		return nil, fmt.Errorf("get pages: %w", err)
	}
	defer rows.Close()

	var pages []database.AlbumPage
	for rows.Next() {
		var (
			page        database.AlbumPage
			pageConfig  []byte
			photoID     sql.NullString
			storagePath sql.NullString
			photoOrder  sql.NullInt64
			layout      []byte
		)
		if err := rows.Scan(
			&page.ID, &page.AlbumID, &page.PageOrder, &pageConfig,
			&photoID, &storagePath, &photoOrder, &layout,
		); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}

		if n := len(pages); n == 0 || pages[n-1].ID != page.ID {
			page.PageConfig = database.ParsePageConfig(pageConfig)
			pages = append(pages, page)
		}
		if !photoID.Valid {
			continue
		}
		last := &pages[len(pages)-1]
		last.Photos = append(last.Photos, database.AlbumPhoto{
			ID:          photoID.String,
			PageID:      last.ID,
			StoragePath: storagePath.String,
			PhotoOrder:  int(photoOrder.Int64),
			Layout:      database.ParsePhotoLayout(layout),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pages: %w", err)
	}
	return pages, nil
}

// InsertDelivery appends a delivery record, filling in ID and CreatedAt.
func (r *AlbumRepository) InsertDelivery(ctx context.Context, d *database.PDFDelivery) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}

	query := `
		INSERT INTO pdf_deliveries (id, pdf, mail)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	if err := r.pool.QueryRow(ctx, query, d.ID, d.DocumentReference, d.Recipient).Scan(&d.CreatedAt); err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ database.AlbumStore = (*AlbumRepository)(nil)
