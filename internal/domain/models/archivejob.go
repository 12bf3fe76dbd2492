package models

import (
	"time"
)

// JobStatus is the lifecycle state of an archive job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status permits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransitionTo reports whether the transition s → next is allowed.
// Transitions are monotonic: pending → processing → completed|failed.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	switch s {
	case JobStatusPending:
		return next == JobStatusProcessing
	case JobStatusProcessing:
		return next == JobStatusCompleted || next == JobStatusFailed
	default:
		return false
	}
}

// ArchiveJob is an asynchronous request to bundle a set of files into a
// single zip archive. Only the worker mutates a job after creation;
// clients observe progress by polling.
type ArchiveJob struct {
	ID             string     `json:"id" db:"id"`
	UserID         string     `json:"user_id" db:"user_id"`
	FileIDs        []string   `json:"file_ids" db:"file_ids"`
	Status         JobStatus  `json:"status" db:"status"`
	DownloadHandle string     `json:"download_handle,omitempty" db:"download_handle"`
	// EntryCount is the number of files actually written to the archive.
	// A completed job with EntryCount < len(FileIDs) delivered a partial
	// result (missing or foreign files are skipped, not fatal).
	EntryCount   int        `json:"entry_count" db:"entry_count"`
	ErrorMessage string     `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}
