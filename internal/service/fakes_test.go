package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"
)

// In-memory repository fakes. They mirror the database constraints the
// real implementations rely on (one root per user, unique sibling
// names) so service behavior can be tested without Postgres.

type memFolderRepo struct {
	mu      sync.Mutex
	folders map[string]*models.Folder
	nextID  int
}

func newMemFolderRepo() *memFolderRepo {
	return &memFolderRepo{folders: map[string]*models.Folder{}}
}

func (r *memFolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.folders {
		if f.UserID != folder.UserID {
			continue
		}
		if folder.ParentID == nil && f.ParentID == nil {
			return &domain.ConflictError{Message: "root already exists", ResourceType: "folder"}
		}
		if folder.ParentID != nil && f.ParentID != nil &&
			*f.ParentID == *folder.ParentID && f.Name == folder.Name {
			return &domain.ConflictError{Message: "duplicate name", ResourceType: "folder"}
		}
	}

	r.nextID++
	folder.ID = fmt.Sprintf("folder-%d", r.nextID)
	clone := *folder
	r.folders[folder.ID] = &clone
	return nil
}

func (r *memFolderRepo) GetByID(ctx context.Context, id, userID string) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.folders[id]
	if !ok || f.UserID != userID {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	clone := *f
	return &clone, nil
}

func (r *memFolderRepo) GetRoot(ctx context.Context, userID string) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.folders {
		if f.UserID == userID && f.ParentID == nil {
			clone := *f
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("root folder: %w", domain.ErrNotFound)
}

func (r *memFolderRepo) GetByParentAndName(ctx context.Context, userID, parentID, name string) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.folders {
		if f.UserID == userID && f.ParentID != nil && *f.ParentID == parentID && f.Name == name {
			clone := *f
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memFolderRepo) ListChildren(ctx context.Context, userID, parentID string, limit, offset int) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var children []models.Folder
	for _, f := range r.folders {
		if f.UserID == userID && f.ParentID != nil && *f.ParentID == parentID {
			children = append(children, *f)
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })

	if offset >= len(children) {
		return nil, nil
	}
	children = children[offset:]
	if limit < len(children) {
		children = children[:limit]
	}
	return children, nil
}

func (r *memFolderRepo) ListSubtree(ctx context.Context, userID string, pathPrefix string) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var subtree []models.Folder
	for _, f := range r.folders {
		if f.UserID == userID && strings.HasPrefix(f.Path, pathPrefix) {
			subtree = append(subtree, *f)
		}
	}
	sort.Slice(subtree, func(i, j int) bool { return subtree[i].Path < subtree[j].Path })
	return subtree, nil
}

func (r *memFolderRepo) ListAll(ctx context.Context, userID string) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []models.Folder
	for _, f := range r.folders {
		if f.UserID == userID {
			all = append(all, *f)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return all, nil
}

func (r *memFolderRepo) DeleteSubtree(ctx context.Context, userID string, pathPrefix string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, f := range r.folders {
		if f.UserID == userID && strings.HasPrefix(f.Path, pathPrefix) {
			delete(r.folders, id)
			deleted++
		}
	}
	return deleted, nil
}

var _ repositories.FolderRepository = (*memFolderRepo)(nil)

type memFileRepo struct {
	mu    sync.Mutex
	files map[string]*models.File
}

func newMemFileRepo() *memFileRepo {
	return &memFileRepo{files: map[string]*models.File{}}
}

func (r *memFileRepo) Create(ctx context.Context, file *models.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *file
	r.files[file.ID] = &clone
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
	return r.ListByFolderIDs(ctx, userID, []string{folderID})
}

func (r *memFileRepo) ListByFolderIDs(ctx context.Context, userID string, folderIDs []string) ([]models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := map[string]bool{}
	for _, id := range folderIDs {
		wanted[id] = true
	}

	var files []models.File
	for _, f := range r.files {
		if f.UserID == userID && wanted[f.FolderID] {
			files = append(files, *f)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (r *memFileRepo) ListRecent(ctx context.Context, userID string, limit int) ([]models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var files []models.File
	for _, f := range r.files {
		if f.UserID == userID {
			files = append(files, *f)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].CreatedAt.After(files[j].CreatedAt) })
	if limit < len(files) {
		files = files[:limit]
	}
	return files, nil
}

func (r *memFileRepo) ListAll(ctx context.Context, userID string) ([]models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var files []models.File
	for _, f := range r.files {
		if f.UserID == userID {
			files = append(files, *f)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (r *memFileRepo) Move(ctx context.Context, id, userID, folderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[id]
	if !ok || f.UserID != userID {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	f.FolderID = folderID
	f.UpdatedAt = time.Now()
	return nil
}

func (r *memFileRepo) Delete(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[id]
	if !ok || f.UserID != userID {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	delete(r.files, id)
	return nil
}

func (r *memFileRepo) DeleteByFolderIDs(ctx context.Context, userID string, folderIDs []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := map[string]bool{}
	for _, id := range folderIDs {
		wanted[id] = true
	}

	var deleted int64
	for id, f := range r.files {
		if f.UserID == userID && wanted[f.FolderID] {
			delete(r.files, id)
			deleted++
		}
	}
	return deleted, nil
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

func (s *memBlobStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

type memTxManager struct{}

func (memTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}
