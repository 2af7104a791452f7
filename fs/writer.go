// Package fs provides file-based storage for generated feeds.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/smach/authorfeed"
)

// Ensure Writer implements authorfeed.FeedWriter at compile time.
var _ authorfeed.FeedWriter = (*Writer)(nil)

// Writer writes feed documents to disk. Each document is written to a
// temporary file in the destination directory and renamed over the target,
// so readers see either the previous feed or the new one.
type Writer struct {
	baseDir string
	perm    os.FileMode
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithBaseDir resolves relative output paths against dir.
func WithBaseDir(dir string) WriterOption {
	return func(w *Writer) {
		w.baseDir = dir
	}
}

// WithFileMode sets the permissions of written files. Defaults to 0644.
func WithFileMode(perm os.FileMode) WriterOption {
	return func(w *Writer) {
		w.perm = perm
	}
}

// NewWriter creates a new Writer.
func NewWriter(opts ...WriterOption) *Writer {
	w := &Writer{perm: 0644}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Checksum returns the hex xxhash digest of body.
func Checksum(body []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(body))
}

// WriteFeed replaces the file at path with body, creating parent
// directories as needed.
func (w *Writer) WriteFeed(ctx context.Context, path string, body []byte) (*authorfeed.WriteResult, error) {
	if path == "" {
		return nil, authorfeed.Errorf(authorfeed.EINVALID, "output path required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath := path
	if w.baseDir != "" && !filepath.IsAbs(path) {
		fullPath = filepath.Join(w.baseDir, path)
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*.tmp")
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	defer func() {
		// No-op after a successful rename.
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return nil, err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	if err := os.Chmod(tmpPath, w.perm); err != nil {
		return nil, err
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		return nil, err
	}

	return &authorfeed.WriteResult{
		Path:     fullPath,
		Bytes:    len(body),
		Checksum: Checksum(body),
	}, nil
}
