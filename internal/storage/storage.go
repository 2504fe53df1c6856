package storage

import (
	"context"
	"io"
)

// ObjectStorage is the blob-store boundary for the importer: bulk trail
// dumps are read from it and full failure reports are written back to it.
type ObjectStorage interface {
	// Upload uploads an object to storage
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download downloads an object from storage
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetURL returns the URL for accessing an object
	GetURL(key string) string

	// Exists checks if an object exists
	Exists(ctx context.Context, key string) (bool, error)

	// Delete deletes an object from storage
	Delete(ctx context.Context, key string) error
}
