package services

import (
	"context"
	"io"

	"filevault/internal/domain/models"
)

// UploadFileRequest carries the input for file creation. Content is
// streamed; Size is the declared byte size used for policy checks.
type UploadFileRequest struct {
	UserID   string
	FolderID string
	Name     string
	Size     int64
	MimeType string
	Content  io.Reader
}

// MoveFileRequest moves a file into another folder owned by the same user.
type MoveFileRequest struct {
	UserID   string
	FileID   string
	FolderID string `json:"folder_id"`
}

// FileService owns file metadata and the blob content behind it.
type FileService interface {
	// Upload validates the request against the upload policy, writes the
	// blob, computes the content checksum and persists the metadata row.
	Upload(ctx context.Context, req *UploadFileRequest) (*models.File, error)

	// GetFile retrieves file metadata owned by the user.
	GetFile(ctx context.Context, userID, fileID string) (*models.File, error)

	// Open returns the file's metadata and a reader over its content.
	// The caller must close the reader.
	Open(ctx context.Context, userID, fileID string) (*models.File, io.ReadCloser, error)

	// Move re-homes a file into another folder.
	Move(ctx context.Context, req *MoveFileRequest) (*models.File, error)

	// Delete removes the metadata row (authoritative) and then the blob
	// (best effort).
	Delete(ctx context.Context, userID, fileID string) error

	// ListRecent lists the user's newest files, creation time descending.
	ListRecent(ctx context.Context, userID string, limit int) ([]models.File, error)
}
