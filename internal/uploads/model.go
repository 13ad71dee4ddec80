package uploads

import (
	"io"
	"sync/atomic"
	"time"
)

// Document is a temporarily stored upload. It is owned by the pipeline
// invocation that acquired it and is never persisted.
type Document struct {
	ID         string
	OwnerID    string
	StorageKey string
	FileName   string
	MediaType  string
	SizeBytes  int64
	CreatedAt  time.Time

	released atomic.Bool
}

// Released reports whether the document's storage has been freed.
func (d *Document) Released() bool {
	return d.released.Load()
}

// AcquireInput describes an incoming upload.
type AcquireInput struct {
	OwnerID   string
	FileName  string
	MediaType string
	// SizeBytes is the declared size; negative when unknown.
	SizeBytes int64
	Body      io.Reader
}
