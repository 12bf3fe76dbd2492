package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memJobRepo enforces the same conditional transitions as the Postgres
// implementation so the worker's state machine can be tested in memory.
type memJobRepo struct {
	mu     sync.Mutex
	jobs   map[string]*models.ArchiveJob
	nextID int

	// claims records the order in which jobs were claimed
	claims []string
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: map[string]*models.ArchiveJob{}}
}

func (r *memJobRepo) Create(ctx context.Context, job *models.ArchiveJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	job.ID = fmt.Sprintf("job-%d", r.nextID)
	job.Status = models.JobStatusPending
	clone := *job
	r.jobs[job.ID] = &clone
	return nil
}

func (r *memJobRepo) GetByID(ctx context.Context, id, userID string) (*models.ArchiveJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || job.UserID != userID {
		return nil, fmt.Errorf("archive job %s: %w", id, domain.ErrNotFound)
	}
	clone := *job
	return &clone, nil
}

func (r *memJobRepo) Get(ctx context.Context, id string) (*models.ArchiveJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("archive job %s: %w", id, domain.ErrNotFound)
	}
	clone := *job
	return &clone, nil
}

func (r *memJobRepo) Claim(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("archive job %s: %w", id, domain.ErrNotFound)
	}
	if job.Status != models.JobStatusPending {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("archive job %s is not pending", id),
			ResourceType: "archive_job",
			ResourceID:   id,
		}
	}
	job.Status = models.JobStatusProcessing
	r.claims = append(r.claims, id)
	return nil
}

func (r *memJobRepo) Complete(ctx context.Context, id, downloadHandle string, entryCount int) error {
	return r.finish(id, models.JobStatusCompleted, downloadHandle, entryCount, "")
}

func (r *memJobRepo) Fail(ctx context.Context, id, errorMessage string) error {
	return r.finish(id, models.JobStatusFailed, "", 0, errorMessage)
}

func (r *memJobRepo) finish(id string, status models.JobStatus, handle string, entryCount int, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("archive job %s: %w", id, domain.ErrNotFound)
	}
	if job.Status != models.JobStatusProcessing {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("archive job %s is not processing", id),
			ResourceType: "archive_job",
			ResourceID:   id,
		}
	}
	now := time.Now()
	job.Status = status
	job.DownloadHandle = handle
	job.EntryCount = entryCount
	job.ErrorMessage = errMsg
	job.CompletedAt = &now
	return nil
}

func (r *memJobRepo) ListPending(ctx context.Context, limit int) ([]models.ArchiveJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pending []models.ArchiveJob
	for _, job := range r.jobs {
		if job.Status == models.JobStatusPending {
			pending = append(pending, *job)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	if limit < len(pending) {
		pending = pending[:limit]
	}
	return pending, nil
}

func (r *memJobRepo) ResetProcessing(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var reset int64
	for _, job := range r.jobs {
		if job.Status == models.JobStatusProcessing {
			job.Status = models.JobStatusPending
			reset++
		}
	}
	return reset, nil
}

func (r *memJobRepo) ListTerminalBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ArchiveJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []models.ArchiveJob
	for _, job := range r.jobs {
		if job.Status.Terminal() && job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			expired = append(expired, *job)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].CompletedAt.Before(*expired[j].CompletedAt) })
	if limit < len(expired) {
		expired = expired[:limit]
	}
	return expired, nil
}

func (r *memJobRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
	return nil
}

func (r *memJobRepo) claimOrder() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.claims...)
}

var _ repositories.ArchiveJobRepository = (*memJobRepo)(nil)

// memFileRepo holds file metadata; only the lookups the worker uses are
// meaningful here.
type memFileRepo struct {
	mu    sync.Mutex
	files map[string]*models.File
}

func newMemFileRepo() *memFileRepo {
	return &memFileRepo{files: map[string]*models.File{}}
}

func (r *memFileRepo) add(file *models.File) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *file
	r.files[file.ID] = &clone
}

func (r *memFileRepo) Create(ctx context.Context, file *models.File) error {
	r.add(file)
	return nil
}

func (r *memFileRepo) GetByID(ctx context.Context, id, userID string) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[id]
	if !ok || f.UserID != userID {
		return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	clone := *f
	return &clone, nil
}

func (r *memFileRepo) ListByFolder(ctx context.Context, userID, folderID string) ([]models.File, error) {
	return nil, nil
}

func (r *memFileRepo) ListByFolderIDs(ctx context.Context, userID string, folderIDs []string) ([]models.File, error) {
	return nil, nil
}

func (r *memFileRepo) ListRecent(ctx context.Context, userID string, limit int) ([]models.File, error) {
	return nil, nil
}

func (r *memFileRepo) ListAll(ctx context.Context, userID string) ([]models.File, error) {
	return nil, nil
}

func (r *memFileRepo) Move(ctx context.Context, id, userID, folderID string) error {
	return nil
}

func (r *memFileRepo) Delete(ctx context.Context, id, userID string) error {
	return nil
}

func (r *memFileRepo) DeleteByFolderIDs(ctx context.Context, userID string, folderIDs []string) (int64, error) {
	return 0, nil
}

var _ repositories.FileRepository = (*memFileRepo)(nil)

type memBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{blobs: map[string][]byte{}}
}

func (s *memBlobStore) Put(ctx context.Context, key string, content io.Reader, size int64) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return nil
}

func (s *memBlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("blob %s: %w", key, domain.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memBlobStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func (s *memBlobStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[key]
	return ok, nil
}
