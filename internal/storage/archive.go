package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ArchiveStore keeps finished archive containers on the local filesystem,
// one {jobID}.zip per job. Jobs are discoverable for serving solely by
// their ID.
type ArchiveStore struct {
	basePath string
}

// NewArchiveStore creates an archive store rooted at basePath.
func NewArchiveStore(basePath string) (*ArchiveStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory %s: %w", basePath, err)
	}
	return &ArchiveStore{basePath: basePath}, nil
}

// Create opens a writer for the job's archive file. The worker writes the
// zip stream into it and must Close it before publishing the job as done.
func (as *ArchiveStore) Create(jobID string) (io.WriteCloser, error) {
	file, err := os.Create(as.archivePath(jobID))
	if err != nil {
		return nil, fmt.Errorf("failed to create archive for job %s: %w", jobID, err)
	}
	return file, nil
}

// Open returns a reader over a finished archive and its size in bytes.
func (as *ArchiveStore) Open(jobID string) (io.ReadCloser, int64, error) {
	path := as.archivePath(jobID)

	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, fmt.Errorf("archive for job %s: %w", jobID, err)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("archive for job %s: %w", jobID, err)
	}

	return file, info.Size(), nil
}

// Remove discards the job's archive file. Used both for retention and to
// drop partial output after a failed build. Missing files are ignored.
func (as *ArchiveStore) Remove(jobID string) error {
	if err := os.Remove(as.archivePath(jobID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete archive for job %s: %w", jobID, err)
	}
	return nil
}

func (as *ArchiveStore) archivePath(jobID string) string {
	return filepath.Join(as.basePath, jobID+".zip")
}
