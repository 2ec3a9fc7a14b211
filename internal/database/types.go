package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Album is an album row as stored upstream. The renderer never mutates it.
type Album struct {
	ID          string      `json:"id"`
	CoverID     *string     `json:"cover_id,omitempty"` // base_covers.id
	CoverConfig CoverConfig `json:"cover_config"`
}

// BaseCover is a stock cover image selectable by albums.cover_id.
type BaseCover struct {
	ID          string `json:"id"`
	StoragePath string `json:"storage_path"` // relative to the covers bucket
}

// CoverConfig is the albums.cover_config JSON document.
// Texts takes precedence over the legacy single-header fields.
type CoverConfig struct {
	CoverURL       string     `json:"coverUrl,omitempty"`
	Texts          []TextSpec `json:"texts,omitempty"`
	HeaderText     string     `json:"headerText,omitempty"`
	HeaderX        *float64   `json:"headerX,omitempty"`
	HeaderY        *float64   `json:"headerY,omitempty"`
	HeaderFontSize *float64   `json:"headerFontSize,omitempty"`
	UserEmail      string     `json:"userEmail,omitempty"`
}

// TextSpec is one styled cover label. X and Y are percentages of the page
// measured from the top-left corner. Nil numbers fall back to renderer defaults.
type TextSpec struct {
	Content  string   `json:"content"`
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	FontSize *float64 `json:"fontSize,omitempty"`
	Color    string   `json:"color,omitempty"`
}

// PageConfig is the album_pages.page_config JSON document.
type PageConfig struct {
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

// AlbumPage is one album page with its photos.
type AlbumPage struct {
	ID         string       `json:"id"`
	AlbumID    string       `json:"album_id,omitempty"`
	PageOrder  int          `json:"page_order"`
	PageConfig PageConfig   `json:"page_config"`
	Photos     []AlbumPhoto `json:"photos"`
}

// AlbumPhoto is one photo placed on a page. StoragePath is either an absolute
// URL or a path relative to the photos bucket.
type AlbumPhoto struct {
	ID          string       `json:"id"`
	PageID      string       `json:"page_id,omitempty"`
	StoragePath string       `json:"storage_path"`
	PhotoOrder  int          `json:"photo_order"`
	Layout      *PhotoLayout `json:"layout,omitempty"`
}

// PhotoLayout is a manual placement rectangle in page percentages.
type PhotoLayout struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
	W *float64 `json:"w,omitempty"`
	H *float64 `json:"h,omitempty"`
}

// Valid reports whether the layout carries a usable position. Width and
// height are optional.
func (l *PhotoLayout) Valid() bool {
	return l != nil && l.X != nil && l.Y != nil
}

// AlbumRenderRequest is the aggregate read from upstream for one render.
// Pages and photos may arrive unordered; the renderer sorts them.
type AlbumRenderRequest struct {
	Album Album       `json:"album"`
	Cover *BaseCover  `json:"cover,omitempty"` // resolved from Album.CoverID
	Pages []AlbumPage `json:"pages"`
}

// PDFDelivery is an append-only record pairing a generated document with
// its recipient.
type PDFDelivery struct {
	ID                string
	DocumentReference string
	Recipient         string
	CreatedAt         time.Time
}

// --- lenient JSON decoding ---
//
// The JSON columns are written by a browser editor, so numbers occasionally
// arrive as strings or nulls. Anything that is not a JSON number decodes as
// absent instead of failing the whole document.

// rawFloat decodes a JSON number, returning nil for anything else.
// A JSON null is absent, not zero.
func rawFloat(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

// rawString decodes a JSON string, returning "" for anything else.
func rawString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func rawObject(data []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// UnmarshalJSON decodes a text spec, ignoring non-numeric coordinates.
func (t *TextSpec) UnmarshalJSON(data []byte) error {
	raw, err := rawObject(data)
	if err != nil {
		return fmt.Errorf("unmarshal text spec: %w", err)
	}
	*t = TextSpec{
		Content:  rawString(raw["content"]),
		X:        rawFloat(raw["x"]),
		Y:        rawFloat(raw["y"]),
		FontSize: rawFloat(raw["fontSize"]),
		Color:    rawString(raw["color"]),
	}
	return nil
}

// UnmarshalJSON decodes a layout; a malformed layout decodes as empty.
func (l *PhotoLayout) UnmarshalJSON(data []byte) error {
	raw, err := rawObject(data)
	if err != nil {
		*l = PhotoLayout{}
		return nil //nolint:nilerr // malformed layouts fall back to the grid
	}
	*l = PhotoLayout{
		X: rawFloat(raw["x"]),
		Y: rawFloat(raw["y"]),
		W: rawFloat(raw["w"]),
		H: rawFloat(raw["h"]),
	}
	return nil
}

// UnmarshalJSON decodes the cover config, tolerating malformed entries.
func (c *CoverConfig) UnmarshalJSON(data []byte) error {
	raw, err := rawObject(data)
	if err != nil {
		return fmt.Errorf("unmarshal cover config: %w", err)
	}
	*c = CoverConfig{
		CoverURL:       rawString(raw["coverUrl"]),
		HeaderText:     rawString(raw["headerText"]),
		HeaderX:        rawFloat(raw["headerX"]),
		HeaderY:        rawFloat(raw["headerY"]),
		HeaderFontSize: rawFloat(raw["headerFontSize"]),
		UserEmail:      rawString(raw["userEmail"]),
	}
	if texts, ok := raw["texts"]; ok {
		var items []json.RawMessage
		if json.Unmarshal(texts, &items) == nil {
			// A malformed entry still counts as a text so a non-empty
			// array never falls back to the legacy header.
			for _, item := range items {
				var t TextSpec
				if t.UnmarshalJSON(item) != nil {
					t = TextSpec{}
				}
				c.Texts = append(c.Texts, t)
			}
		}
	}
	return nil
}

// ParseCoverConfig decodes a cover_config column. NULL and empty documents
// yield the zero config.
func ParseCoverConfig(data []byte) (CoverConfig, error) {
	var c CoverConfig
	if len(data) == 0 || string(data) == "null" {
		return c, nil
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return CoverConfig{}, err
	}
	return c, nil
}

// ParsePageConfig decodes a page_config column, tolerating NULL and junk.
func ParsePageConfig(data []byte) PageConfig {
	if len(data) == 0 {
		return PageConfig{}
	}
	raw, err := rawObject(data)
	if err != nil {
		return PageConfig{}
	}
	return PageConfig{BackgroundColor: rawString(raw["backgroundColor"])}
}

// ParsePhotoLayout decodes a layout column, returning nil for NULL or junk.
func ParsePhotoLayout(data []byte) *PhotoLayout {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	var l PhotoLayout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil
	}
	return &l
}
