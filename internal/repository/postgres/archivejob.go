package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"
)

// ArchiveJobRepository implements repositories.ArchiveJobRepository on
// Postgres. Every transition is a conditional UPDATE on the current
// status, so terminal states can never be left again.
type ArchiveJobRepository struct {
	pool *pgxpool.Pool
}

// NewArchiveJobRepository creates a new archive job repository
func NewArchiveJobRepository(config *RepositoryConfig) repositories.ArchiveJobRepository {
	return &ArchiveJobRepository{pool: config.Pool}
}

const jobColumns = `id, user_id, file_ids, status, download_handle, entry_count, error_message, created_at, completed_at`

// Create inserts a job in pending state
func (r *ArchiveJobRepository) Create(ctx context.Context, job *models.ArchiveJob) error {
	query := `
		INSERT INTO archive_jobs (user_id, file_ids, status, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		job.UserID,
		job.FileIDs,
		models.JobStatusPending,
		job.CreatedAt,
	).Scan(&job.ID, &job.CreatedAt)

	if err != nil {
		return fmt.Errorf("create archive job: %w", err)
	}

	job.Status = models.JobStatusPending
	return nil
}

// GetByID retrieves a job owned by the user
func (r *ArchiveJobRepository) GetByID(ctx context.Context, id, userID string) (*models.ArchiveJob, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM archive_jobs
		WHERE id = $1 AND user_id = $2
	`

	var job models.ArchiveJob
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, userID).Scan(
		&job.ID,
		&job.UserID,
		&job.FileIDs,
		&job.Status,
		&job.DownloadHandle,
		&job.EntryCount,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.CompletedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("archive job %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get archive job: %w", err)
	}

	return &job, nil
}

// Get retrieves a job without an ownership scope
func (r *ArchiveJobRepository) Get(ctx context.Context, id string) (*models.ArchiveJob, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM archive_jobs
		WHERE id = $1
	`

	jobs, err := r.list(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("archive job %s: %w", id, domain.ErrNotFound)
	}

	return &jobs[0], nil
}

// Claim transitions a pending job to processing
func (r *ArchiveJobRepository) Claim(ctx context.Context, id string) error {
	return r.transition(ctx, id, models.JobStatusPending, `
		UPDATE archive_jobs
		SET status = $1
		WHERE id = $2 AND status = $3
	`, models.JobStatusProcessing, id, models.JobStatusPending)
}

// Complete transitions a processing job to completed
func (r *ArchiveJobRepository) Complete(ctx context.Context, id, downloadHandle string, entryCount int) error {
	return r.transition(ctx, id, models.JobStatusProcessing, `
		UPDATE archive_jobs
		SET status = $1, download_handle = $2, entry_count = $3, completed_at = $4
		WHERE id = $5 AND status = $6
	`, models.JobStatusCompleted, downloadHandle, entryCount, time.Now(), id, models.JobStatusProcessing)
}

// Fail transitions a processing job to failed
func (r *ArchiveJobRepository) Fail(ctx context.Context, id, errorMessage string) error {
	return r.transition(ctx, id, models.JobStatusProcessing, `
		UPDATE archive_jobs
		SET status = $1, error_message = $2, completed_at = $3
		WHERE id = $4 AND status = $5
	`, models.JobStatusFailed, errorMessage, time.Now(), id, models.JobStatusProcessing)
}

func (r *ArchiveJobRepository) transition(ctx context.Context, id string, from models.JobStatus, query string, args ...interface{}) error {
	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update archive job: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("archive job %s is not %s", id, from),
			ResourceType: "archive_job",
			ResourceID:   id,
		}
	}

	return nil
}

// ListPending returns pending jobs in submission order (FIFO)
func (r *ArchiveJobRepository) ListPending(ctx context.Context, limit int) ([]models.ArchiveJob, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM archive_jobs
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	return r.list(ctx, query, models.JobStatusPending, limit)
}

// ResetProcessing moves every processing job back to pending
func (r *ArchiveJobRepository) ResetProcessing(ctx context.Context) (int64, error) {
	query := `
		UPDATE archive_jobs
		SET status = $1
		WHERE status = $2
	`

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, models.JobStatusPending, models.JobStatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("reset processing jobs: %w", err)
	}

	return result.RowsAffected(), nil
}

// ListTerminalBefore returns completed/failed jobs finished before cutoff
func (r *ArchiveJobRepository) ListTerminalBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ArchiveJob, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM archive_jobs
		WHERE status = ANY($1) AND completed_at < $2
		ORDER BY completed_at ASC
		LIMIT $3
	`

	terminal := []models.JobStatus{models.JobStatusCompleted, models.JobStatusFailed}
	return r.list(ctx, query, terminal, cutoff, limit)
}

// Delete removes a job row
func (r *ArchiveJobRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM archive_jobs
		WHERE id = $1
	`

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id); err != nil {
		return fmt.Errorf("delete archive job: %w", err)
	}

	return nil
}

func (r *ArchiveJobRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.ArchiveJob, error) {
	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list archive jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.ArchiveJob
	for rows.Next() {
		var job models.ArchiveJob
		err := rows.Scan(
			&job.ID,
			&job.UserID,
			&job.FileIDs,
			&job.Status,
			&job.DownloadHandle,
			&job.EntryCount,
			&job.ErrorMessage,
			&job.CreatedAt,
			&job.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan archive job: %w", err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archive jobs: %w", err)
	}

	return jobs, nil
}
