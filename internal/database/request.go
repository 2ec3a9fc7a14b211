package database

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DecodeRenderRequest reads an album aggregate from a JSON or YAML document
// shaped like AlbumRenderRequest. YAML is converted to JSON first so the
// lenient column decoders apply to both.
func DecodeRenderRequest(data []byte) (*AlbumRenderRequest, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse render request: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("parse render request: empty document")
	}

	// JSON is a subset of YAML, so this also normalizes JSON input.
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("normalize render request: %w", err)
	}

	var req AlbumRenderRequest
	if err := json.Unmarshal(normalized, &req); err != nil {
		return nil, fmt.Errorf("decode render request: %w", err)
	}
	if req.Album.ID == "" {
		return nil, fmt.Errorf("decode render request: album.id is required")
	}
	return &req, nil
}
