package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"
	"filevault/internal/domain/storage"
	localstorage "filevault/internal/storage"
)

const pendingScanBatch = 32

// Worker builds zip archives for submitted jobs, one at a time, in
// submission order. A single goroutine owns all status transitions past
// pending, so jobs can never regress or run twice concurrently.
type Worker struct {
	jobRepo  repositories.ArchiveJobRepository
	fileRepo repositories.FileRepository
	blobs    storage.BlobStore
	store    *localstorage.ArchiveStore
	logger   *slog.Logger

	jobs         chan string
	scanInterval time.Duration

	stopOnce sync.Once
	done     chan struct{}
	finished chan struct{}
}

// NewWorker creates an archive worker with the given queue capacity.
func NewWorker(
	jobRepo repositories.ArchiveJobRepository,
	fileRepo repositories.FileRepository,
	blobs storage.BlobStore,
	store *localstorage.ArchiveStore,
	queueSize int,
	scanInterval time.Duration,
	logger *slog.Logger,
) *Worker {
	if queueSize <= 0 {
		queueSize = 64
	}
	if scanInterval <= 0 {
		scanInterval = 30 * time.Second
	}
	return &Worker{
		jobRepo:      jobRepo,
		fileRepo:     fileRepo,
		blobs:        blobs,
		store:        store,
		logger:       logger,
		jobs:         make(chan string, queueSize),
		scanInterval: scanInterval,
		done:         make(chan struct{}),
		finished:     make(chan struct{}),
	}
}

// Enqueue offers a job to the worker without blocking. A false return
// means the queue is full; the pending scan will pick the job up.
func (w *Worker) Enqueue(jobID string) bool {
	select {
	case w.jobs <- jobID:
		return true
	default:
		return false
	}
}

// Start launches the worker goroutine. Jobs a previous run was killed
// inside are reset from processing to pending first, then everything
// pending is re-enqueued, so a restart never strands a job.
func (w *Worker) Start(ctx context.Context) {
	if reset, err := w.jobRepo.ResetProcessing(ctx); err != nil {
		w.logger.Error("failed to reset interrupted jobs", "error", err)
	} else if reset > 0 {
		w.logger.Info("reset interrupted jobs to pending", "count", reset)
	}
	w.recoverPending(ctx)
	go w.run(ctx)
}

// Stop shuts the worker down and waits for the in-flight job to finish.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.done) })
	<-w.finished
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.finished)

	ticker := time.NewTicker(w.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ctx.Done():
			return
		case jobID := <-w.jobs:
			w.process(ctx, jobID)
		case <-ticker.C:
			// Fallback for jobs whose enqueue was dropped (full queue)
			w.recoverPending(ctx)
		}
	}
}

// recoverPending scans the database for pending jobs and processes them
// in submission order, oldest first.
func (w *Worker) recoverPending(ctx context.Context) {
	for {
		pending, err := w.jobRepo.ListPending(ctx, pendingScanBatch)
		if err != nil {
			w.logger.Error("pending scan failed", "error", err)
			return
		}
		if len(pending) == 0 {
			return
		}

		for _, job := range pending {
			select {
			case <-w.done:
				return
			case <-ctx.Done():
				return
			default:
			}
			w.process(ctx, job.ID)
		}

		if len(pending) < pendingScanBatch {
			return
		}
	}
}

// process claims a job and builds its archive. Missing or foreign files
// are skipped silently per entry; only container-level failures fail
// the job.
func (w *Worker) process(ctx context.Context, jobID string) {
	if err := w.jobRepo.Claim(ctx, jobID); err != nil {
		// Already claimed or terminal; nothing to do
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) {
			return
		}
		w.logger.Error("failed to claim archive job", "job_id", jobID, "error", err)
		return
	}

	job, err := w.jobRepo.Get(ctx, jobID)
	if err != nil {
		w.logger.Error("failed to load claimed job", "job_id", jobID, "error", err)
		// The claim already moved the job to processing; fail it rather
		// than leave it stuck there with no one working on it.
		if failErr := w.jobRepo.Fail(ctx, jobID, "could not load job after claim"); failErr != nil {
			w.logger.Error("failed to mark unloadable job failed", "job_id", jobID, "error", failErr)
		}
		return
	}

	started := time.Now()
	entryCount, err := w.build(ctx, job)
	if err != nil {
		w.logger.Error("archive build failed", "job_id", jobID, "error", err)
		if rmErr := w.store.Remove(jobID); rmErr != nil {
			w.logger.Warn("failed to remove partial archive", "job_id", jobID, "error", rmErr)
		}
		if failErr := w.jobRepo.Fail(ctx, jobID, err.Error()); failErr != nil {
			w.logger.Error("failed to mark job failed", "job_id", jobID, "error", failErr)
		}
		return
	}

	handle := DownloadHandle(jobID)
	if err := w.jobRepo.Complete(ctx, jobID, handle, entryCount); err != nil {
		w.logger.Error("failed to mark job completed", "job_id", jobID, "error", err)
		return
	}

	w.logger.Info("archive job completed",
		"job_id", jobID,
		"entries", entryCount,
		"requested", len(job.FileIDs),
		"duration", time.Since(started),
	)
}

// build streams the job's files into a zip container on disk and
// returns the number of entries actually written.
func (w *Worker) build(ctx context.Context, job *models.ArchiveJob) (int, error) {
	out, err := w.store.Create(job.ID)
	if err != nil {
		return 0, err
	}

	zw := zip.NewWriter(out)
	entryCount := 0
	names := map[string]int{}

	for _, fileID := range job.FileIDs {
		file, err := w.fileRepo.GetByID(ctx, fileID, job.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				w.logger.Warn("skipping archive entry, file not found",
					"job_id", job.ID, "file_id", fileID)
				continue
			}
			zw.Close()
			out.Close()
			return 0, err
		}

		reader, err := w.blobs.Get(ctx, file.StorageKey)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				w.logger.Warn("skipping archive entry, blob missing",
					"job_id", job.ID, "file_id", fileID, "storage_key", file.StorageKey)
				continue
			}
			zw.Close()
			out.Close()
			return 0, err
		}

		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:     uniqueEntryName(names, file.Name),
			Method:   zip.Deflate,
			Modified: file.UpdatedAt,
		})
		if err != nil {
			reader.Close()
			zw.Close()
			out.Close()
			return 0, fmt.Errorf("create archive entry for file %s: %w", fileID, err)
		}

		if _, err := io.Copy(entry, reader); err != nil {
			reader.Close()
			zw.Close()
			out.Close()
			return 0, fmt.Errorf("write archive entry for file %s: %w", fileID, err)
		}
		reader.Close()
		entryCount++
	}

	if err := zw.Close(); err != nil {
		out.Close()
		return 0, fmt.Errorf("finalize archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("flush archive: %w", err)
	}

	return entryCount, nil
}

// DownloadHandle returns the stable download path recorded on a
// completed job.
func DownloadHandle(jobID string) string {
	return "/api/archives/" + jobID + "/download"
}

// uniqueEntryName disambiguates duplicate file names inside one archive
// by suffixing " (n)" before the extension.
func uniqueEntryName(seen map[string]int, name string) string {
	n := seen[name]
	seen[name] = n + 1
	if n == 0 {
		return name
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s (%d)%s", base, n, ext)
}
