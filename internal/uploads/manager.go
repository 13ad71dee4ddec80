package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"assessment-backend/internal/shared/errs"
	"assessment-backend/internal/shared/metrics"
	"assessment-backend/internal/shared/storage/object"
	"assessment-backend/internal/shared/telemetry"
	"assessment-backend/internal/shared/util"
)

const (
	defaultReleaseTimeout  = 10 * time.Second
	defaultReleaseAttempts = 4
	defaultReleaseBackoff  = 200 * time.Millisecond
)

// ErrReleaseFailed marks an upload whose storage could not be freed after
// every retry. The object is left for the store's sweep.
var ErrReleaseFailed = errors.New("upload release failed")

// Manager owns the lifecycle of temporary uploads.
type Manager struct {
	Store          object.ObjectStore
	MaxBytes       int64
	ReleaseTimeout time.Duration

	// ReleaseAttempts and ReleaseBackoff bound the delete retries in With.
	ReleaseAttempts int
	ReleaseBackoff  time.Duration

	allowed map[string]struct{}
}

// NewManager constructs a Manager accepting the given media types.
func NewManager(store object.ObjectStore, maxBytes int64, allowedTypes []string) *Manager {
	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		if clean := util.NormalizeMediaType(t, ""); clean != "" {
			allowed[clean] = struct{}{}
		}
	}
	return &Manager{
		Store:           store,
		MaxBytes:        maxBytes,
		ReleaseTimeout:  defaultReleaseTimeout,
		ReleaseAttempts: defaultReleaseAttempts,
		ReleaseBackoff:  defaultReleaseBackoff,
		allowed:         allowed,
	}
}

// Acquire validates the upload and writes it to temporary storage. Size and
// type are checked before any storage is allocated; a body that turns out to
// exceed the limit is deleted before returning.
func (m *Manager) Acquire(ctx context.Context, in AcquireInput) (*Document, error) {
	if strings.TrimSpace(in.OwnerID) == "" {
		return nil, fmt.Errorf("%w: owner is required", errs.ErrValidation)
	}
	if in.Body == nil {
		return nil, fmt.Errorf("%w: file is required", errs.ErrValidation)
	}
	if in.SizeBytes > m.MaxBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", errs.ErrValidation, m.MaxBytes)
	}
	mediaType := util.NormalizeMediaType(in.MediaType, in.FileName)
	if _, ok := m.allowed[mediaType]; !ok {
		return nil, fmt.Errorf("%w: media type %q is not allowed", errs.ErrValidation, mediaType)
	}
	if _, err := util.SanitizeFileName(in.FileName); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}

	key, size, _, err := m.Store.Save(ctx, in.OwnerID, in.FileName, io.LimitReader(in.Body, m.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	doc := &Document{
		ID:         uuid.NewString(),
		OwnerID:    in.OwnerID,
		StorageKey: key,
		FileName:   in.FileName,
		MediaType:  mediaType,
		SizeBytes:  size,
		CreatedAt:  time.Now().UTC(),
	}
	metrics.IncUploadAcquired()

	if size > m.MaxBytes {
		_ = m.releaseDetached(ctx, doc)
		return nil, fmt.Errorf("%w: file exceeds %d bytes", errs.ErrValidation, m.MaxBytes)
	}
	return doc, nil
}

// Release frees the document's storage. It is safe to call more than once and
// after a failed attempt; only the first successful call deletes.
func (m *Manager) Release(ctx context.Context, doc *Document) error {
	if doc == nil {
		return nil
	}
	if !doc.released.CompareAndSwap(false, true) {
		return nil
	}
	if err := m.Store.Delete(ctx, doc.StorageKey); err != nil {
		doc.released.Store(false)
		return fmt.Errorf("release upload %s: %w", doc.ID, err)
	}
	metrics.IncUploadReleased()
	return nil
}

// With acquires an upload, runs fn, and releases the upload on every exit
// path: success, error, panic and cancellation. A release that still fails
// after retries is joined to fn's result as ErrReleaseFailed.
func (m *Manager) With(ctx context.Context, in AcquireInput, fn func(context.Context, *Document) error) (err error) {
	doc, err := m.Acquire(ctx, in)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := m.releaseDetached(ctx, doc); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()
	return fn(ctx, doc)
}

// releaseDetached releases under a context that survives caller cancellation,
// retrying transient store failures with exponential backoff.
func (m *Manager) releaseDetached(ctx context.Context, doc *Document) error {
	timeout := m.ReleaseTimeout
	if timeout <= 0 {
		timeout = defaultReleaseTimeout
	}
	attempts := m.ReleaseAttempts
	if attempts <= 0 {
		attempts = defaultReleaseAttempts
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = m.ReleaseBackoff
	if b.InitialInterval <= 0 {
		b.InitialInterval = defaultReleaseBackoff
	}
	b.MaxInterval = timeout
	b.Reset()

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	_, err := backoff.Retry(rctx, func() (struct{}, error) {
		return struct{}{}, m.Release(rctx, doc)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			telemetry.Warn("upload.release.retry", map[string]any{
				"document_id": doc.ID,
				"delay_ms":    next.Milliseconds(),
				"err":         err,
			})
		}),
	)
	if err != nil {
		metrics.IncUploadReleaseFailed()
		telemetry.Error("upload.release.failed", map[string]any{
			"document_id": doc.ID,
			"attempts":    attempts,
			"err":         err,
		})
		return fmt.Errorf("%w: document %s: %w", ErrReleaseFailed, doc.ID, err)
	}
	return nil
}
