package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"filevault/internal/config"
	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"
	"filevault/internal/domain/services"
	"filevault/internal/domain/storage"
)

var folderNamePattern = regexp.MustCompile(`^[^/]+$`)

type folderService struct {
	folderRepo repositories.FolderRepository
	fileRepo   repositories.FileRepository
	blobs      storage.BlobStore
	txManager  repositories.TransactionManager
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo repositories.FolderRepository,
	fileRepo repositories.FileRepository,
	blobs storage.BlobStore,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		blobs:      blobs,
		txManager:  txManager,
		logger:     logger,
	}
}

// EnsureRoot returns the user's root folder, creating it on first use.
// The partial unique index on (user_id) WHERE parent_id IS NULL makes the
// bootstrap idempotent under concurrent first requests.
func (s *folderService) EnsureRoot(ctx context.Context, userID string) (*models.Folder, error) {
	root, err := s.folderRepo.GetRoot(ctx, userID)
	if err == nil {
		return root, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	root = &models.Folder{
		UserID:    userID,
		ParentID:  nil,
		Name:      models.RootFolderName,
		Path:      models.RootPath,
		CreatedAt: time.Now(),
	}

	if err := s.folderRepo.Create(ctx, root); err != nil {
		// Lost the bootstrap race; the winner's root is the one to use
		if errors.Is(err, domain.ErrConflict) {
			return s.folderRepo.GetRoot(ctx, userID)
		}
		return nil, err
	}

	s.logger.Info("root folder created", "user_id", userID, "folder_id", root.ID)

	return root, nil
}

// CreateFolder creates a folder under the given parent (root when nil)
func (s *folderService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	parent, err := s.resolveParent(ctx, req.UserID, req.ParentID)
	if err != nil {
		return nil, err
	}

	// Check for duplicate name under the parent before inserting; the
	// partial unique index catches the remaining race.
	sibling, err := s.folderRepo.GetByParentAndName(ctx, req.UserID, parent.ID, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate names: %w", err)
	}
	if sibling != nil {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("a folder named %q already exists in this location", req.Name),
			ResourceType: "folder",
			ResourceID:   sibling.ID,
		}
	}

	folder := &models.Folder{
		UserID:    req.UserID,
		ParentID:  &parent.ID,
		Name:      req.Name,
		Path:      parent.ChildPath(req.Name),
		CreatedAt: time.Now(),
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"user_id", req.UserID,
		"parent_id", parent.ID,
		"path", folder.Path,
	)

	return folder, nil
}

// GetFolder retrieves a folder owned by the user
func (s *folderService) GetFolder(ctx context.Context, userID, folderID string) (*models.Folder, error) {
	return s.folderRepo.GetByID(ctx, folderID, userID)
}

// ListChildren lists direct children only (one level), ordered by name, paginated
func (s *folderService) ListChildren(ctx context.Context, req *services.ListChildrenRequest) (*services.FolderContents, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = config.DefaultListLimit
	}
	if limit > config.MaxListLimit {
		limit = config.MaxListLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	folder, err := s.resolveParent(ctx, req.UserID, req.FolderID)
	if err != nil {
		return nil, err
	}

	childFolders, err := s.folderRepo.ListChildren(ctx, req.UserID, folder.ID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list child folders: %w", err)
	}

	files, err := s.fileRepo.ListByFolder(ctx, req.UserID, folder.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return &services.FolderContents{
		Folder:  folder,
		Folders: childFolders,
		Files:   files,
	}, nil
}

// DeleteFolder deletes a folder and its whole subtree in one transaction.
// Blob deletion happens after commit and is best effort; the metadata
// rows are the authoritative record.
func (s *folderService) DeleteFolder(ctx context.Context, userID, folderID string) error {
	folder, err := s.folderRepo.GetByID(ctx, folderID, userID)
	if err != nil {
		return err
	}

	if folder.IsRoot() {
		return fmt.Errorf("%w: the root folder cannot be deleted", domain.ErrValidation)
	}

	var doomed []models.File
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		subtree, err := s.folderRepo.ListSubtree(txCtx, userID, folder.Path)
		if err != nil {
			return err
		}

		folderIDs := make([]string, 0, len(subtree))
		for _, f := range subtree {
			folderIDs = append(folderIDs, f.ID)
		}

		doomed, err = s.fileRepo.ListByFolderIDs(txCtx, userID, folderIDs)
		if err != nil {
			return err
		}

		filesDeleted, err := s.fileRepo.DeleteByFolderIDs(txCtx, userID, folderIDs)
		if err != nil {
			return err
		}

		foldersDeleted, err := s.folderRepo.DeleteSubtree(txCtx, userID, folder.Path)
		if err != nil {
			return err
		}

		s.logger.Info("folder subtree deleted",
			"id", folderID,
			"name", folder.Name,
			"user_id", userID,
			"folders", foldersDeleted,
			"files", filesDeleted,
		)
		return nil
	})
	if err != nil {
		return err
	}

	for _, file := range doomed {
		if err := s.blobs.Delete(ctx, file.StorageKey); err != nil {
			s.logger.Warn("failed to delete blob after cascade",
				"file_id", file.ID,
				"storage_key", file.StorageKey,
				"error", err,
			)
		}
	}

	return nil
}

// Breadcrumbs resolves the folder's path into the chain of ancestor
// folders, root first, ending with the folder itself.
func (s *folderService) Breadcrumbs(ctx context.Context, userID, folderID string) ([]models.Breadcrumb, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID, userID)
	if err != nil {
		return nil, err
	}

	root, err := s.folderRepo.GetRoot(ctx, userID)
	if err != nil {
		return nil, err
	}

	crumbs := []models.Breadcrumb{{ID: root.ID, Name: root.Name, Path: root.Path}}

	current := root
	for _, segment := range models.PathSegments(folder.Path) {
		next, err := s.folderRepo.GetByParentAndName(ctx, userID, current.ID, segment)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, fmt.Errorf("path segment %q: %w", segment, domain.ErrNotFound)
		}
		crumbs = append(crumbs, models.Breadcrumb{ID: next.ID, Name: next.Name, Path: next.Path})
		current = next
	}

	return crumbs, nil
}

// resolveParent fetches the parent folder, defaulting to the user's root
// when parentID is nil. A nil parentID bootstraps the root on first use.
func (s *folderService) resolveParent(ctx context.Context, userID string, parentID *string) (*models.Folder, error) {
	if parentID == nil || *parentID == "" {
		return s.EnsureRoot(ctx, userID)
	}
	return s.folderRepo.GetByID(ctx, *parentID, userID)
}

// validateCreateRequest validates a folder creation request
func (s *folderService) validateCreateRequest(req *services.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
			validation.Match(folderNamePattern).Error("folder name cannot contain slashes"),
		),
	)
}
