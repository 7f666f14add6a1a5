package storage

import (
	"context"
	"io"
)

// ObjectStorage defines the operations the meme archive needs from a bucket.
type ObjectStorage interface {
	// EnsureBucket creates the bucket when the backend allows it.
	EnsureBucket(ctx context.Context) error

	// Upload uploads an object to storage
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download opens an object for reading; callers close the reader.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetURL returns the URL for accessing an object
	GetURL(key string) string

	// Delete deletes an object from storage
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists
	Exists(ctx context.Context, key string) (bool, error)
}
