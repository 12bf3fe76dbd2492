package repositories

import (
	"context"

	"filevault/internal/domain/models"
)

// FolderRepository persists the per-user folder tree. All queries are
// scoped by user ID; a mismatch surfaces as ErrNotFound rather than
// leaking another user's rows.
type FolderRepository interface {
	// Create inserts a folder and fills in the generated ID.
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder owned by the user.
	GetByID(ctx context.Context, id, userID string) (*models.Folder, error)

	// GetRoot retrieves the user's root folder (parent_id IS NULL).
	GetRoot(ctx context.Context, userID string) (*models.Folder, error)

	// GetByParentAndName retrieves a folder by its parent and name.
	// Returns (nil, nil) when no such folder exists. Every non-root
	// folder has a concrete parent row, the root folder included, so
	// parentID is never empty.
	GetByParentAndName(ctx context.Context, userID, parentID, name string) (*models.Folder, error)

	// ListChildren lists direct children of parentID, ordered by name,
	// paginated.
	ListChildren(ctx context.Context, userID, parentID string, limit, offset int) ([]models.Folder, error)

	// ListSubtree returns the folder and every descendant, matched by
	// materialized-path prefix, ordered by path.
	ListSubtree(ctx context.Context, userID string, pathPrefix string) ([]models.Folder, error)

	// ListAll returns every folder owned by the user, ordered by creation time.
	ListAll(ctx context.Context, userID string) ([]models.Folder, error)

	// DeleteSubtree deletes the folder at pathPrefix and every descendant.
	// Returns the number of folders removed.
	DeleteSubtree(ctx context.Context, userID string, pathPrefix string) (int64, error)
}
