package object

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Open when the key holds no object, typically
// because the upload was already released.
var ErrNotFound = errors.New("object not found")

// ObjectStore saves, reads and deletes temporary upload bodies.
// Delete must treat a missing object as already deleted.
type ObjectStore interface {
	Save(ctx context.Context, ownerID string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}
