// Package storage stores uploaded files (GCash QR images) on a named disk.
// The "local" disk keeps files under STORAGE_LOCAL_ROOT and serves them back
// at STORAGE_URL. The "s3" disk writes to any S3-compatible bucket.
//
//	storage.Connect(ctx)
//	url, err := storage.Default().Put(ctx, "gcash/qr.png", r, "image/png")
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get for a missing object.
var ErrNotFound = errors.New("storage: file not found")

// Disk is the driver interface.
type Disk interface {
	// Put writes r to path and returns the public URL.
	Put(ctx context.Context, path string, r io.Reader, contentType string) (string, error)

	// Get opens the object at path. Caller must close it.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	Exists(ctx context.Context, path string) bool

	// Delete removes a file. Returns nil if it did not exist.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for path.
	URL(path string) string
}
