package services

import (
	"context"

	"filevault/internal/domain/models"
)

// CreateFolderRequest carries the input for folder creation. UserID is
// always filled in from the authenticated context, never from the client.
type CreateFolderRequest struct {
	UserID   string  `json:"-"`
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"` // nil = directly under the root folder
}

// ListChildrenRequest selects one level of a folder's contents.
type ListChildrenRequest struct {
	UserID   string
	FolderID *string // nil = the root folder
	Limit    int
	Offset   int
}

// FolderContents is one level of the tree: the folder itself plus its
// direct child folders and files.
type FolderContents struct {
	Folder  *models.Folder  `json:"folder"`
	Folders []models.Folder `json:"folders"`
	Files   []models.File   `json:"files"`
}

// FolderService owns the authoritative folder tree per user: path
// construction, root bootstrapping and cascade deletion.
type FolderService interface {
	// EnsureRoot returns the user's root folder, creating it on first use.
	EnsureRoot(ctx context.Context, userID string) (*models.Folder, error)

	// CreateFolder creates a folder under the given parent (root when
	// nil). Sibling names must be unique within a parent.
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)

	// GetFolder retrieves a folder owned by the user.
	GetFolder(ctx context.Context, userID, folderID string) (*models.Folder, error)

	// ListChildren lists direct children only (one level), ordered by
	// name, paginated.
	ListChildren(ctx context.Context, req *ListChildrenRequest) (*FolderContents, error)

	// DeleteFolder deletes a folder and its whole subtree, including all
	// files contained in it, in one transaction. Deleting the root folder
	// is rejected.
	DeleteFolder(ctx context.Context, userID, folderID string) error

	// Breadcrumbs resolves the folder's path into the chain of ancestor
	// folders, root first, ending with the folder itself.
	Breadcrumbs(ctx context.Context, userID, folderID string) ([]models.Breadcrumb, error)
}
