package repositories

import (
	"context"

	"filevault/internal/domain/models"
)

// FileRepository persists file metadata. Blob content is owned by the
// storage.BlobStore collaborator, keyed by File.StorageKey.
type FileRepository interface {
	// Create inserts a file row. The caller assigns the ID up front so
	// the storage key can embed it before the blob write.
	Create(ctx context.Context, file *models.File) error

	// GetByID retrieves a file owned by the user.
	GetByID(ctx context.Context, id, userID string) (*models.File, error)

	// ListByFolder lists files directly inside a folder, ordered by name.
	ListByFolder(ctx context.Context, userID, folderID string) ([]models.File, error)

	// ListByFolderIDs lists every file contained in any of the given
	// folders. Used by the cascade delete to collect blobs to remove.
	ListByFolderIDs(ctx context.Context, userID string, folderIDs []string) ([]models.File, error)

	// ListRecent lists the user's files ordered by creation time
	// descending, newest first.
	ListRecent(ctx context.Context, userID string, limit int) ([]models.File, error)

	// ListAll returns every file owned by the user.
	ListAll(ctx context.Context, userID string) ([]models.File, error)

	// Move updates folder_id and updated_at for a file owned by the user.
	// A targeted partial update: concurrent metadata writes to other
	// columns are never overwritten.
	Move(ctx context.Context, id, userID, folderID string) error

	// Delete removes the metadata row. Blob deletion is the caller's
	// responsibility and is best effort.
	Delete(ctx context.Context, id, userID string) error

	// DeleteByFolderIDs removes every file row in the given folders.
	// Returns the number of rows removed.
	DeleteByFolderIDs(ctx context.Context, userID string, folderIDs []string) (int64, error)
}
