package archive

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"filevault/internal/domain/repositories"
	"filevault/internal/storage"
)

const sweepBatch = 64

// Sweeper removes terminal archive jobs and their zip files once they
// age past the retention window. Archives are disposable build output,
// not stored data, so expiry deletes both the container and the row.
type Sweeper struct {
	jobRepo   repositories.ArchiveJobRepository
	store     *storage.ArchiveStore
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger

	stopOnce sync.Once
	done     chan struct{}
	finished chan struct{}
}

// NewSweeper creates a retention sweeper. A retention of zero disables it.
func NewSweeper(
	jobRepo repositories.ArchiveJobRepository,
	store *storage.ArchiveStore,
	retention, interval time.Duration,
	logger *slog.Logger,
) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		jobRepo:   jobRepo,
		store:     store,
		retention: retention,
		interval:  interval,
		logger:    logger,
		done:      make(chan struct{}),
		finished:  make(chan struct{}),
	}
}

// Start launches the sweep loop
func (s *Sweeper) Start(ctx context.Context) {
	if s.retention <= 0 {
		close(s.finished)
		return
	}
	go s.run(ctx)
}

// Stop shuts the sweeper down
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
	<-s.finished
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.finished)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.retention)

	expired, err := s.jobRepo.ListTerminalBefore(ctx, cutoff, sweepBatch)
	if err != nil {
		s.logger.Error("retention sweep failed", "error", err)
		return
	}

	for _, job := range expired {
		if err := s.store.Remove(job.ID); err != nil {
			s.logger.Warn("failed to remove expired archive", "job_id", job.ID, "error", err)
			continue
		}
		if err := s.jobRepo.Delete(ctx, job.ID); err != nil {
			s.logger.Warn("failed to delete expired job", "job_id", job.ID, "error", err)
			continue
		}
	}

	if len(expired) > 0 {
		s.logger.Info("retention sweep removed expired archives", "count", len(expired))
	}
}
