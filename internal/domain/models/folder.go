package models

import (
	"strings"
	"time"
)

// RootPath is the stored path of every user's root folder.
const RootPath = "/"

// RootFolderName is the display name given to the auto-created root folder.
const RootFolderName = "Root"

// Folder is a node in a user's folder tree. Path materializes the full
// ancestor chain including the folder's own name ("/Docs/Reports/" for a
// folder "Reports" under "/Docs/"), so subtree queries are prefix matches
// instead of recursive traversals.
type Folder struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	ParentID  *string   `json:"parent_id" db:"parent_id"` // NULL = root folder
	Name      string    `json:"name" db:"name"`
	Path      string    `json:"path" db:"path"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsRoot reports whether the folder is the user's root folder.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// ChildPath returns the materialized path of a child named name.
func (f *Folder) ChildPath(name string) string {
	return f.Path + name + "/"
}

// PathSegments splits a materialized path into its folder names, root first.
// The root folder itself contributes no segment ("/" → nil).
func PathSegments(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// Breadcrumb is one entry of a root-to-folder breadcrumb trail.
type Breadcrumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}
