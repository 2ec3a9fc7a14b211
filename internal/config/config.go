package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Default bucket names in object storage.
const (
	DefaultPhotosBucket = "album-photos"
	DefaultCoversBucket = "covers"
	DefaultPDFBucket    = "pdfs"
)

type Config struct {
	Storage  StorageConfig
	Database DatabaseConfig
	Render   RenderConfig
	Redis    RedisConfig
	Web      WebConfig
}

type StorageConfig struct {
	URL          string // object storage base URL (e.g., https://xyz.supabase.co)
	ServiceKey   string // service role key used for uploads
	PhotosBucket string
	CoversBucket string
	PDFBucket    string
	PhotosURL    string // overrides the public photos base (defaults to <URL>/storage/v1/object/public/<PhotosBucket>)
	CoversURL    string // overrides the public covers base
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type RenderConfig struct {
	FontPath         string        // TTF/OTF font able to render the label scripts
	FetchTimeout     time.Duration // per-image fetch timeout (default 20s)
	FetchConcurrency int           // parallel image fetches per render (default 5)
	MaxImagePx       int           // downscale images whose longest side exceeds this (0 = off)
	DeliveryTimeout  time.Duration // upload + record timeout for the delivery sidecar (default 60s)
}

type RedisConfig struct {
	URL      string        // redis://host:6379/0; empty disables the asset cache
	AssetTTL time.Duration // lifetime of cached image bytes (default 24h)
}

type WebConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envDuration reads an environment variable as a time.Duration ("20s", "1h").
// Returns the default value if the env var is unset, empty, invalid, or not positive.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envList splits a comma-separated environment variable, dropping empty items.
func envList(key string) []string {
	var out []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func Load() *Config {
	return &Config{
		Storage: StorageConfig{
			URL:          os.Getenv("STORAGE_URL"),
			ServiceKey:   os.Getenv("STORAGE_SERVICE_KEY"),
			PhotosBucket: envString("STORAGE_PHOTOS_BUCKET", DefaultPhotosBucket),
			CoversBucket: envString("STORAGE_COVERS_BUCKET", DefaultCoversBucket),
			PDFBucket:    envString("STORAGE_PDF_BUCKET", DefaultPDFBucket),
			PhotosURL:    os.Getenv("STORAGE_PHOTOS_URL"),
			CoversURL:    os.Getenv("STORAGE_COVERS_URL"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Render: RenderConfig{
			FontPath:         os.Getenv("RENDER_FONT_PATH"),
			FetchTimeout:     envDuration("RENDER_FETCH_TIMEOUT", 20*time.Second),
			FetchConcurrency: envInt("RENDER_FETCH_CONCURRENCY", 5),
			MaxImagePx:       envInt("RENDER_MAX_IMAGE_PX", 0),
			DeliveryTimeout:  envDuration("RENDER_DELIVERY_TIMEOUT", 60*time.Second),
		},
		Redis: RedisConfig{
			URL:      os.Getenv("REDIS_URL"),
			AssetTTL: envDuration("REDIS_ASSET_TTL", 24*time.Hour),
		},
		Web: WebConfig{
			Host:           envString("WEB_HOST", "0.0.0.0"),
			Port:           envInt("WEB_PORT", 8080),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
	}
}

// DeliveryEnabled reports whether generated documents can be uploaded.
func (c *StorageConfig) DeliveryEnabled() bool {
	return c.URL != "" && c.ServiceKey != ""
}
