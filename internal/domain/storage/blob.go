package storage

import (
	"context"
	"io"
)

// BlobStore is the boundary contract for blob storage collaborators.
// Keys are opaque, scoped per user by the caller; implementations must
// not interpret them beyond treating "/" as a separator.
type BlobStore interface {
	// Put writes the full content under key, overwriting any previous value.
	Put(ctx context.Context, key string, content io.Reader, size int64) error

	// Get returns a reader over the content. The caller must close it.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the content. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether content is stored under key.
	Exists(ctx context.Context, key string) (bool, error)
}
