// Package delivery stores generated documents and records who they are for.
// It runs after a render has already produced its bytes and never affects them.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kozaktomas/album-render/internal/database"
)

const (
	contentTypePDF = "application/pdf"
	defaultTimeout = 60 * time.Second
)

// Uploader stores an object and returns the URL it is served from.
type Uploader interface {
	Upload(ctx context.Context, bucket, path, contentType string, data []byte) (string, error)
}

// Sidecar uploads documents and appends delivery records.
type Sidecar struct {
	uploader Uploader
	writer   database.DeliveryWriter
	bucket   string
	timeout  time.Duration
	now      func() time.Time

	wg sync.WaitGroup
}

// New creates a sidecar that uploads into bucket.
func New(uploader Uploader, writer database.DeliveryWriter, bucket string, timeout time.Duration) *Sidecar {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Sidecar{
		uploader: uploader,
		writer:   writer,
		bucket:   bucket,
		timeout:  timeout,
		now:      time.Now,
	}
}

// ObjectPath returns the storage path for a document generated at t.
func ObjectPath(albumID string, t time.Time) string {
	return sanitizeSegment(albumID) + "/" + strconv.FormatInt(t.UnixMilli(), 10) + ".pdf"
}

func sanitizeSegment(s string) string {
	s = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(strings.TrimSpace(s))
	if s == "" {
		return "unknown"
	}
	return s
}

// Deliver uploads data and records the delivery. It blocks until both steps
// finish or fail.
func (s *Sidecar) Deliver(ctx context.Context, albumID string, data []byte, recipient string) (*database.PDFDelivery, error) {
	if s.uploader == nil || s.writer == nil {
		return nil, errors.New("delivery is not configured")
	}

	ref, err := s.uploader.Upload(ctx, s.bucket, ObjectPath(albumID, s.now()), contentTypePDF, data)
	if err != nil {
		return nil, fmt.Errorf("upload document: %w", err)
	}

	d := &database.PDFDelivery{DocumentReference: ref, Recipient: recipient}
	if err := s.writer.InsertDelivery(ctx, d); err != nil {
		return nil, fmt.Errorf("record delivery: %w", err)
	}
	return d, nil
}

// Dispatch delivers in the background. The request context's values are
// kept but its cancellation is not, so delivery outlives the response.
// Failures are logged only. A nil Sidecar does nothing.
func (s *Sidecar) Dispatch(ctx context.Context, albumID string, data []byte, recipient string) {
	if s == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	s.wg.Go(func() {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		d, err := s.Deliver(ctx, albumID, data, recipient)
		if err != nil {
			log.Error("pdf delivery failed", "album", albumID, "err", err)
			return
		}
		log.Info("pdf delivered", "album", albumID, "ref", d.DocumentReference, "delivery", d.ID)
	})
}

// Wait blocks until all dispatched deliveries have finished.
func (s *Sidecar) Wait() {
	if s == nil {
		return
	}
	s.wg.Wait()
}
