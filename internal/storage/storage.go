// Package storage is a client for a Supabase-compatible object storage REST API.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client talks to the object storage service.
type Client struct {
	parsedURL  *url.URL
	serviceKey string
	httpClient *http.Client
}

// New creates a storage client for the service at baseURL. A nil httpClient
// uses http.DefaultClient.
func New(baseURL, serviceKey string, httpClient *http.Client) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("storage URL is required")
	}
	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid storage URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid storage URL scheme %q", parsed.Scheme)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{parsedURL: parsed, serviceKey: serviceKey, httpClient: httpClient}, nil
}

// resolveURL joins path segments onto the storage API root. The object path
// may contain slashes and is appended segment by segment.
func (c *Client) resolveURL(segments ...string) string {
	parts := []string{"storage", "v1", "object"}
	for _, s := range segments {
		parts = append(parts, strings.Split(strings.Trim(s, "/"), "/")...)
	}
	return c.parsedURL.JoinPath(parts...).String()
}

// PublicBaseURL returns the base URL under which a public bucket's objects are served.
func (c *Client) PublicBaseURL(bucket string) string {
	return c.resolveURL("public", bucket)
}

// PublicURL returns the public URL of an object.
func (c *Client) PublicURL(bucket, path string) string {
	return c.resolveURL("public", bucket, path)
}

// Upload stores data at bucket/path and returns the object's public URL.
// Existing objects are not overwritten.
func (c *Client) Upload(ctx context.Context, bucket, path, contentType string, data []byte) (string, error) {
	u := c.resolveURL(bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL constructed from configured base via resolveURL
	if err != nil {
		return "", fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	return c.PublicURL(bucket, path), nil
}

// readErrorBody reads the response body for error messages.
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return "(could not read error body)"
	}
	return string(body)
}
