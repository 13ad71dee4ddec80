package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"assessment-backend/internal/shared/storage/object"
	"assessment-backend/internal/shared/util"
)

// Store keeps temporary uploads on the local filesystem, one directory per owner.
type Store struct {
	baseDir string
}

// New creates a new local object store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Save writes the reader to disk under the owner's namespace with a random prefix.
// A failed write removes the partial file.
func (s *Store) Save(ctx context.Context, ownerID string, fileName string, r io.Reader) (key string, size int64, mimeType string, err error) {
	sanitizedName, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", 0, "", fmt.Errorf("sanitize file name: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", 0, "", err
	}

	ownerKey := util.OwnerKey(ownerID)
	finalName := uuid.NewString() + "_" + sanitizedName

	dirPath := filepath.Join(s.baseDir, ownerKey)
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return "", 0, "", fmt.Errorf("mkdir: %w", err)
	}

	fullPath := filepath.Join(dirPath, finalName)
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if errors.Is(err, fs.ErrNotExist) {
		// A concurrent Delete pruned the owner directory.
		if err = os.MkdirAll(dirPath, 0o755); err == nil {
			f, err = os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		}
	}
	if err != nil {
		return "", 0, "", fmt.Errorf("open file: %w", err)
	}
	defer func() {
		closeErr := f.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("close file: %w", closeErr)
		}
		if err != nil {
			_ = os.Remove(fullPath)
		}
	}()

	var sniff [512]byte
	n, readErr := io.ReadFull(r, sniff[:])
	if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
		return "", 0, "", fmt.Errorf("read sniff: %w", readErr)
	}

	mimeType = http.DetectContentType(sniff[:n])

	if n > 0 {
		if _, err := f.Write(sniff[:n]); err != nil {
			return "", 0, "", fmt.Errorf("write sniff: %w", err)
		}
		size += int64(n)
	}

	written, err := io.Copy(f, &ctxReader{ctx: ctx, r: r})
	if err != nil {
		return "", 0, "", fmt.Errorf("write body: %w", err)
	}
	size += written

	return filepath.Join(ownerKey, finalName), size, mimeType, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath, err := s.resolve(storageKey)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("open %s: %w", storageKey, object.ErrNotFound)
	}
	return f, err
}

// Delete removes a stored object and prunes the owner directory once it is
// empty. Deleting a missing object succeeds.
func (s *Store) Delete(ctx context.Context, storageKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath, err := s.resolve(storageKey)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", storageKey, err)
	}
	// Fails while the owner has other uploads in flight.
	_ = os.Remove(filepath.Dir(fullPath))
	return nil
}

// Sweep removes uploads last modified more than maxAge ago, along with owner
// directories left empty. It backstops releases that failed at request time.
func (s *Store) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	var dirs []string
	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.baseDir {
				dirs = append(dirs, path)
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("sweep %s: %w", path, err)
		}
		removed++
		return nil
	})
	// Deepest first; non-empty directories fail to remove and are kept.
	for i := len(dirs) - 1; i >= 0; i-- {
		_ = os.Remove(dirs[i])
	}
	return removed, err
}

func (s *Store) resolve(storageKey string) (string, error) {
	clean := filepath.Clean(storageKey)
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key")
	}
	return filepath.Join(s.baseDir, clean), nil
}

// ctxReader stops a long copy once the context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

var _ object.ObjectStore = (*Store)(nil)
