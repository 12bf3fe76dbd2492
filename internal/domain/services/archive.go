package services

import (
	"context"
	"io"

	"filevault/internal/domain/models"
)

// SubmitArchiveRequest asks for the given files to be bundled into one
// downloadable zip. File order in the archive follows request order.
type SubmitArchiveRequest struct {
	UserID  string
	FileIDs []string `json:"file_ids"`
}

// ArchiveService accepts archive jobs and exposes their state. Job
// execution happens asynchronously on a single background worker;
// submission never blocks on archive construction.
type ArchiveService interface {
	// Submit enqueues a new job in pending state and returns immediately.
	Submit(ctx context.Context, req *SubmitArchiveRequest) (*models.ArchiveJob, error)

	// GetStatus is a pure read of the job record, safe to poll.
	GetStatus(ctx context.Context, userID, jobID string) (*models.ArchiveJob, error)

	// OpenArchive resolves a completed job's download handle into the
	// archive bytes. The caller must close the reader.
	OpenArchive(ctx context.Context, userID, jobID string) (*models.ArchiveJob, io.ReadCloser, int64, error)
}
