package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	xdraw "golang.org/x/image/draw"

	"github.com/kozaktomas/album-render/internal/cache"
)

const (
	imageTypeJPEG = "JPG"
	imageTypePNG  = "PNG"

	defaultFetchTimeout     = 20 * time.Second
	defaultFetchConcurrency = 5
	defaultAssetTTL         = 24 * time.Hour
	maxAssetBytes           = 64 << 20
	downscaleJPEGQuality    = 90
)

// ErrAssetUnavailable marks an image that could not be fetched or decoded.
// Callers skip the element and keep rendering.
var ErrAssetUnavailable = errors.New("asset unavailable")

// Asset is a decoded image ready to embed.
type Asset struct {
	Data   []byte // encoded bytes in Type's format
	Type   string // "JPG" or "PNG"
	Width  int
	Height int
}

// AssetKind selects which storage base a relative reference resolves against.
type AssetKind int

const (
	AssetPhoto AssetKind = iota
	AssetCover
)

// FetcherConfig configures image acquisition.
type FetcherConfig struct {
	PhotosBaseURL string
	CoversBaseURL string
	Timeout       time.Duration
	Concurrency   int
	MaxImagePx    int   // 0 disables downscaling
	MaxBytes      int64 // larger responses are rejected
	CacheTTL      time.Duration
}

// Fetcher acquires and decodes images referenced by albums.
type Fetcher struct {
	cfg    FetcherConfig
	client *http.Client
	cache  cache.Cache
}

// NewFetcher creates a fetcher. A nil client uses http.DefaultClient and a
// nil cache disables caching.
func NewFetcher(cfg FetcherConfig, client *http.Client, c cache.Cache) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultFetchTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultFetchConcurrency
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultAssetTTL
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = maxAssetBytes
	}
	if client == nil {
		client = http.DefaultClient
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Fetcher{cfg: cfg, client: client, cache: c}
}

// ResolveURL returns ref unchanged when it is an absolute http(s) URL and
// joins it to the base for kind otherwise.
func (f *Fetcher) ResolveURL(ref string, kind AssetKind) string {
	if isAbsoluteURL(ref) {
		return ref
	}
	base := f.cfg.PhotosBaseURL
	if kind == AssetCover {
		base = f.cfg.CoversBaseURL
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(ref, "/")
}

func isAbsoluteURL(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.IsAbs() && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Acquire fetches the raw bytes for ref. Non-2xx responses, transport
// errors and timeouts all wrap ErrAssetUnavailable.
func (f *Fetcher) Acquire(ctx context.Context, ref string, kind AssetKind) ([]byte, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrAssetUnavailable)
	}
	u := f.ResolveURL(ref, kind)

	if data, ok, err := f.cache.Get(ctx, u); err != nil {
		log.Warn("asset cache read failed", "url", u, "err", err)
	} else if ok {
		return data, nil
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: could not create request: %w", ErrAssetUnavailable, err)
	}
	resp, err := f.client.Do(req) //nolint:gosec // URL built from album data and configured bases
	if err != nil {
		return nil, fmt.Errorf("%w: could not send request: %w", ErrAssetUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: request failed with status %d", ErrAssetUnavailable, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: could not read response body: %w", ErrAssetUnavailable, err)
	}
	if int64(len(data)) > f.cfg.MaxBytes {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrAssetUnavailable, f.cfg.MaxBytes)
	}

	if err := f.cache.Set(ctx, u, data, f.cfg.CacheTTL); err != nil {
		log.Warn("asset cache write failed", "url", u, "err", err)
	}
	return data, nil
}

// Load acquires and decodes one image.
func (f *Fetcher) Load(ctx context.Context, ref string, kind AssetKind) (*Asset, error) {
	data, err := f.Acquire(ctx, ref, kind)
	if err != nil {
		return nil, err
	}
	asset, err := DecodeAsset(data)
	if err != nil {
		return nil, err
	}
	if f.cfg.MaxImagePx > 0 {
		return downscale(asset, f.cfg.MaxImagePx)
	}
	return asset, nil
}

// assetJob is one image to load; results land at the same index.
type assetJob struct {
	ref  string
	kind AssetKind
}

type assetResult struct {
	asset *Asset
	err   error
}

// loadAll fetches and decodes jobs concurrently with a bounded worker pool.
// Results are returned in job order. onDone, if set, is called once per job.
func (f *Fetcher) loadAll(ctx context.Context, jobs []assetJob, onDone func()) []assetResult {
	results := make([]assetResult, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	queue := make(chan int, len(jobs))
	for i := range jobs {
		queue <- i
	}
	close(queue)

	var wg sync.WaitGroup
	for range min(f.cfg.Concurrency, len(jobs)) {
		wg.Go(func() {
			for i := range queue {
				if err := ctx.Err(); err != nil {
					results[i] = assetResult{err: fmt.Errorf("%w: %w", ErrAssetUnavailable, err)}
				} else {
					asset, err := f.Load(ctx, jobs[i].ref, jobs[i].kind)
					results[i] = assetResult{asset: asset, err: err}
				}
				if onDone != nil {
					onDone()
				}
			}
		})
	}
	wg.Wait()
	return results
}

// DecodeAsset decodes JPEG first and PNG second. PNGs are re-encoded as
// 8-bit non-interlaced images so the PDF writer accepts every variant.
func DecodeAsset(data []byte) (*Asset, error) {
	if img, err := jpeg.Decode(bytes.NewReader(data)); err == nil {
		b := img.Bounds()
		return &Asset{Data: data, Type: imageTypeJPEG, Width: b.Dx(), Height: b.Dy()}, nil
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: not a JPEG or PNG image", ErrAssetUnavailable)
	}
	return encodePNG(toNRGBA(img))
}

func encodePNG(img *image.NRGBA) (*Asset, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: re-encode png: %w", ErrAssetUnavailable, err)
	}
	b := img.Bounds()
	return &Asset{Data: buf.Bytes(), Type: imageTypePNG, Width: b.Dx(), Height: b.Dy()}, nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// downscale resamples an asset whose longest side exceeds maxPx.
func downscale(a *Asset, maxPx int) (*Asset, error) {
	longest := max(a.Width, a.Height)
	if longest <= maxPx {
		return a, nil
	}
	var src image.Image
	var err error
	if a.Type == imageTypeJPEG {
		src, err = jpeg.Decode(bytes.NewReader(a.Data))
	} else {
		src, err = png.Decode(bytes.NewReader(a.Data))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode for downscale: %w", ErrAssetUnavailable, err)
	}

	scale := float64(maxPx) / float64(longest)
	w := max(1, int(float64(a.Width)*scale))
	h := max(1, int(float64(a.Height)*scale))
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)

	if a.Type == imageTypePNG {
		return encodePNG(dst)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: downscaleJPEGQuality}); err != nil {
		return nil, fmt.Errorf("%w: re-encode jpeg: %w", ErrAssetUnavailable, err)
	}
	return &Asset{Data: buf.Bytes(), Type: imageTypeJPEG, Width: w, Height: h}, nil
}
