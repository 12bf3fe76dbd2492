package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filevault/internal/domain"
	"filevault/internal/domain/storage"
)

// FileSystemStore keeps blobs on the local filesystem under a base
// directory. Storage keys map to relative paths; "/" in a key becomes a
// subdirectory.
type FileSystemStore struct {
	basePath string
}

// NewFileSystemStore creates a new filesystem storage backend.
func NewFileSystemStore(basePath string) (*FileSystemStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &FileSystemStore{basePath: basePath}, nil
}

var _ storage.BlobStore = (*FileSystemStore)(nil)

// Put writes the full content under key, overwriting any previous value.
func (fs *FileSystemStore) Put(ctx context.Context, key string, content io.Reader, size int64) error {
	path, err := fs.blobPath(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &domain.StorageError{Op: "put", Key: key, Err: err}
	}

	file, err := os.Create(path)
	if err != nil {
		return &domain.StorageError{Op: "put", Key: key, Err: err}
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		// Clean up partial file on error
		os.Remove(path)
		return &domain.StorageError{Op: "put", Key: key, Err: err}
	}

	return nil
}

// Get returns a reader over the stored content.
func (fs *FileSystemStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := fs.blobPath(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob %s: %w", key, domain.ErrNotFound)
		}
		return nil, &domain.StorageError{Op: "get", Key: key, Err: err}
	}

	return file, nil
}

// Delete removes the stored content. Deleting a missing key is not an error.
func (fs *FileSystemStore) Delete(ctx context.Context, key string) error {
	path, err := fs.blobPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return &domain.StorageError{Op: "delete", Key: key, Err: err}
	}

	return nil
}

// Exists reports whether content is stored under key.
func (fs *FileSystemStore) Exists(ctx context.Context, key string) (bool, error) {
	path, err := fs.blobPath(key)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &domain.StorageError{Op: "exists", Key: key, Err: err}
	}

	return true, nil
}

// blobPath maps a storage key to a filesystem path and rejects keys that
// would escape the base directory.
func (fs *FileSystemStore) blobPath(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == "." || cleaned == ".." || filepath.IsAbs(cleaned) ||
		cleaned == "" || len(cleaned) >= 3 && cleaned[:3] == ".."+string(filepath.Separator) {
		return "", &domain.StorageError{Op: "resolve", Key: key, Err: fmt.Errorf("invalid storage key")}
	}
	return filepath.Join(fs.basePath, cleaned), nil
}
