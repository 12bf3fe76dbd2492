package models

import (
	"fmt"
	"time"
)

// File is the metadata row for an uploaded file. The content itself lives
// in blob storage under StorageKey; Checksum is the SHA-256 hex digest of
// the full content, computed server-side during upload.
type File struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	FolderID   string    `json:"folder_id" db:"folder_id"`
	Name       string    `json:"name" db:"name"`
	Size       int64     `json:"size" db:"size"`
	Checksum   string    `json:"checksum" db:"checksum"`
	StorageKey string    `json:"-" db:"storage_key"`
	MimeType   string    `json:"mime_type" db:"mime_type"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// BuildStorageKey returns the blob storage key for a file. Keys are scoped
// per user so identically named uploads from different users never collide.
func BuildStorageKey(userID, fileID, name string) string {
	return fmt.Sprintf("%s/%s_%s", userID, fileID, name)
}
