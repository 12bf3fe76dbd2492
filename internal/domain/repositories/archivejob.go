package repositories

import (
	"context"
	"time"

	"filevault/internal/domain/models"
)

// ArchiveJobRepository persists archive jobs. Status updates are
// conditional on the current status so the pending → processing →
// completed|failed state machine stays monotonic even if two workers
// were ever pointed at the same database.
type ArchiveJobRepository interface {
	// Create inserts a job in pending state and fills in the generated ID.
	Create(ctx context.Context, job *models.ArchiveJob) error

	// GetByID retrieves a job owned by the user.
	GetByID(ctx context.Context, id, userID string) (*models.ArchiveJob, error)

	// Get retrieves a job without an ownership scope. Only the worker
	// calls this.
	Get(ctx context.Context, id string) (*models.ArchiveJob, error)

	// Claim transitions a pending job to processing. Returns ErrConflict
	// if the job is not pending.
	Claim(ctx context.Context, id string) error

	// Complete transitions a processing job to completed, recording the
	// download handle and the number of archive entries written.
	Complete(ctx context.Context, id, downloadHandle string, entryCount int) error

	// Fail transitions a processing job to failed with a reason.
	Fail(ctx context.Context, id, errorMessage string) error

	// ListPending returns pending jobs in submission order (FIFO).
	ListPending(ctx context.Context, limit int) ([]models.ArchiveJob, error)

	// ResetProcessing moves every processing job back to pending and
	// returns how many rows changed. Only worker startup calls this:
	// with a single worker per process, a processing row at that point
	// can only be a dead run's leftover.
	ResetProcessing(ctx context.Context) (int64, error)

	// ListTerminalBefore returns completed/failed jobs whose terminal
	// timestamp is older than the cutoff. Used by the retention sweeper.
	ListTerminalBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ArchiveJob, error)

	// Delete removes a job row regardless of owner. Only the retention
	// sweeper calls this.
	Delete(ctx context.Context, id string) error
}
