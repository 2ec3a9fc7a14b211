package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/kozaktomas/album-render/internal/cache"
	"github.com/kozaktomas/album-render/internal/config"
	"github.com/kozaktomas/album-render/internal/database"
	"github.com/kozaktomas/album-render/internal/delivery"
	"github.com/kozaktomas/album-render/internal/render"
	"github.com/kozaktomas/album-render/internal/storage"
)

// newAssetCache connects to Redis when REDIS_URL is set. Without it, or when
// Redis is unreachable, images are fetched on every render.
func newAssetCache(ctx context.Context, cfg *config.Config) cache.Cache {
	if cfg.Redis.URL == "" {
		return cache.NewNullCache()
	}
	c, err := cache.NewRedisCache(ctx, cfg.Redis.URL)
	if err != nil {
		log.Warn("redis unavailable, asset cache disabled", "err", err)
		return cache.NewNullCache()
	}
	log.Info("asset cache enabled (Redis)")
	return c
}

// newStorageClient returns nil when no storage URL is configured.
func newStorageClient(cfg *config.Config) (*storage.Client, error) {
	if cfg.Storage.URL == "" {
		return nil, nil
	}
	sc, err := storage.New(cfg.Storage.URL, cfg.Storage.ServiceKey, &http.Client{Timeout: cfg.Render.FetchTimeout})
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return sc, nil
}

// fetcherConfig resolves bucket base URLs: explicit STORAGE_*_URL values win
// over the storage service's public object URLs.
func fetcherConfig(cfg *config.Config, sc *storage.Client) render.FetcherConfig {
	fc := render.FetcherConfig{
		PhotosBaseURL: cfg.Storage.PhotosURL,
		CoversBaseURL: cfg.Storage.CoversURL,
		Timeout:       cfg.Render.FetchTimeout,
		Concurrency:   cfg.Render.FetchConcurrency,
		MaxImagePx:    cfg.Render.MaxImagePx,
		CacheTTL:      cfg.Redis.AssetTTL,
	}
	if sc != nil {
		if fc.PhotosBaseURL == "" {
			fc.PhotosBaseURL = sc.PublicBaseURL(cfg.Storage.PhotosBucket)
		}
		if fc.CoversBaseURL == "" {
			fc.CoversBaseURL = sc.PublicBaseURL(cfg.Storage.CoversBucket)
		}
	}
	return fc
}

func newRenderer(cfg *config.Config, c cache.Cache, sc *storage.Client) *render.Renderer {
	fetcher := render.NewFetcher(fetcherConfig(cfg, sc), nil, c)
	return render.NewRenderer(fetcher, render.NewFileFontCache(cfg.Render.FontPath))
}

// newSidecar returns nil, which disables delivery, unless both object
// storage and the database are available.
func newSidecar(ctx context.Context, cfg *config.Config, sc *storage.Client) *delivery.Sidecar {
	if sc == nil || !cfg.Storage.DeliveryEnabled() {
		log.Info("PDF delivery disabled (STORAGE_URL and STORAGE_SERVICE_KEY not set)")
		return nil
	}
	writer, err := database.GetDeliveryWriter(ctx)
	if err != nil {
		log.Warn("PDF delivery disabled", "err", err)
		return nil
	}
	log.Info("PDF delivery enabled", "bucket", cfg.Storage.PDFBucket)
	return delivery.New(sc, writer, cfg.Storage.PDFBucket, cfg.Render.DeliveryTimeout)
}
