package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"filevault/internal/config"
	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"
	"filevault/internal/domain/services"
	"filevault/internal/storage"
)

type archiveService struct {
	jobRepo repositories.ArchiveJobRepository
	store   *storage.ArchiveStore
	worker  *Worker
	logger  *slog.Logger
}

// NewArchiveService creates a new archive service
func NewArchiveService(
	jobRepo repositories.ArchiveJobRepository,
	store *storage.ArchiveStore,
	worker *Worker,
	logger *slog.Logger,
) services.ArchiveService {
	return &archiveService{
		jobRepo: jobRepo,
		store:   store,
		worker:  worker,
		logger:  logger,
	}
}

// Submit persists the job in pending state and hands it to the worker.
// The durable row is the source of truth: if the queue is full the
// worker's pending scan picks the job up later, so submission never
// blocks and never loses a job.
func (s *archiveService) Submit(ctx context.Context, req *services.SubmitArchiveRequest) (*models.ArchiveJob, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.FileIDs,
			validation.Required.Error("at least one file is required"),
			validation.Length(1, config.MaxArchiveFiles),
			validation.Each(validation.Required),
		),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	job := &models.ArchiveJob{
		UserID:    req.UserID,
		FileIDs:   req.FileIDs,
		Status:    models.JobStatusPending,
		CreatedAt: time.Now(),
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	if !s.worker.Enqueue(job.ID) {
		s.logger.Warn("archive queue full, job deferred to pending scan", "job_id", job.ID)
	}

	s.logger.Info("archive job submitted",
		"job_id", job.ID,
		"user_id", req.UserID,
		"files", len(req.FileIDs),
	)

	return job, nil
}

// GetStatus is a pure read of the job record
func (s *archiveService) GetStatus(ctx context.Context, userID, jobID string) (*models.ArchiveJob, error) {
	return s.jobRepo.GetByID(ctx, jobID, userID)
}

// OpenArchive resolves a completed job into its archive bytes
func (s *archiveService) OpenArchive(ctx context.Context, userID, jobID string) (*models.ArchiveJob, io.ReadCloser, int64, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID, userID)
	if err != nil {
		return nil, nil, 0, err
	}

	if job.Status != models.JobStatusCompleted {
		return nil, nil, 0, &domain.ConflictError{
			Message:      fmt.Sprintf("archive job is %s, not completed", job.Status),
			ResourceType: "archive_job",
			ResourceID:   job.ID,
		}
	}

	reader, size, err := s.store.Open(job.ID)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}

	return job, reader, size, nil
}
