package database

import (
	"context"
)

// AlbumReader provides read-only access to the album aggregate. Album CRUD is
// owned by the editor backend; the renderer only reads.
type AlbumReader interface {
	// GetAlbum retrieves an album row, returns nil if not found
	GetAlbum(ctx context.Context, id string) (*Album, error)
	// GetCover retrieves a stock cover by ID, returns nil if not found
	GetCover(ctx context.Context, id string) (*BaseCover, error)
	// GetPages retrieves all pages of an album with their photos,
	// ordered by page_order and photo_order
	GetPages(ctx context.Context, albumID string) ([]AlbumPage, error)
}

// DeliveryWriter appends generated-document delivery records.
type DeliveryWriter interface {
	// InsertDelivery appends a delivery record; ID and CreatedAt are filled in
	InsertDelivery(ctx context.Context, d *PDFDelivery) error
}

// AlbumStore combines the reader and the delivery writer, which is what the
// PostgreSQL backend provides.
type AlbumStore interface {
	AlbumReader
	DeliveryWriter
}

// LoadRenderRequest reads the full aggregate for one album. It returns
// (nil, nil) when the album does not exist.
func LoadRenderRequest(ctx context.Context, r AlbumReader, albumID string) (*AlbumRenderRequest, error) {
	album, err := r.GetAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if album == nil {
		return nil, nil
	}

	req := &AlbumRenderRequest{Album: *album}
	if album.CoverID != nil && *album.CoverID != "" {
		cover, err := r.GetCover(ctx, *album.CoverID)
		if err != nil {
			return nil, err
		}
		req.Cover = cover
	}

	pages, err := r.GetPages(ctx, albumID)
	if err != nil {
		return nil, err
	}
	req.Pages = pages
	return req, nil
}
