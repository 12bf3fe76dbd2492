package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"filevault/internal/config"
	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"
	"filevault/internal/domain/services"
	"filevault/internal/domain/storage"
	"filevault/internal/policy"
)

var fileNamePattern = regexp.MustCompile(`^[^/]+$`)

type fileService struct {
	fileRepo   repositories.FileRepository
	folderRepo repositories.FolderRepository
	blobs      storage.BlobStore
	policies   *policy.Registry
	logger     *slog.Logger
}

// NewFileService creates a new file service
func NewFileService(
	fileRepo repositories.FileRepository,
	folderRepo repositories.FolderRepository,
	blobs storage.BlobStore,
	policies *policy.Registry,
	logger *slog.Logger,
) services.FileService {
	return &fileService{
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		blobs:      blobs,
		policies:   policies,
		logger:     logger,
	}
}

// Upload writes the blob while hashing it, then persists the metadata
// row. On a metadata failure the already-written blob is removed so no
// orphan is left behind.
func (s *fileService) Upload(ctx context.Context, req *services.UploadFileRequest) (*models.File, error) {
	if err := s.validateUploadRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	uploadPolicy := s.policies.Upload()
	if !uploadPolicy.Allows(req.MimeType) {
		return nil, fmt.Errorf("%w: content type %q is not accepted", domain.ErrValidation, req.MimeType)
	}
	if uploadPolicy.MaxUploadBytes > 0 && req.Size > uploadPolicy.MaxUploadBytes {
		return nil, fmt.Errorf("%w: file exceeds the %d byte upload limit", domain.ErrValidation, uploadPolicy.MaxUploadBytes)
	}

	// Ownership check before touching storage
	if _, err := s.folderRepo.GetByID(ctx, req.FolderID, req.UserID); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	key := models.BuildStorageKey(req.UserID, id, req.Name)

	hasher := sha256.New()
	if err := s.blobs.Put(ctx, key, io.TeeReader(req.Content, hasher), req.Size); err != nil {
		return nil, err
	}

	now := time.Now()
	file := &models.File{
		ID:         id,
		UserID:     req.UserID,
		FolderID:   req.FolderID,
		Name:       req.Name,
		Size:       req.Size,
		Checksum:   hex.EncodeToString(hasher.Sum(nil)),
		StorageKey: key,
		MimeType:   req.MimeType,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove blob after metadata failure",
				"storage_key", key,
				"error", delErr,
			)
		}
		return nil, err
	}

	s.logger.Info("file uploaded",
		"id", file.ID,
		"name", file.Name,
		"user_id", file.UserID,
		"folder_id", file.FolderID,
		"size", file.Size,
		"checksum", file.Checksum,
	)

	return file, nil
}

// GetFile retrieves file metadata owned by the user
func (s *fileService) GetFile(ctx context.Context, userID, fileID string) (*models.File, error) {
	return s.fileRepo.GetByID(ctx, fileID, userID)
}

// Open returns the file's metadata and a reader over its content
func (s *fileService) Open(ctx context.Context, userID, fileID string) (*models.File, io.ReadCloser, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID, userID)
	if err != nil {
		return nil, nil, err
	}

	reader, err := s.blobs.Get(ctx, file.StorageKey)
	if err != nil {
		return nil, nil, err
	}

	return file, reader, nil
}

// Move re-homes a file into another folder owned by the same user
func (s *fileService) Move(ctx context.Context, req *services.MoveFileRequest) (*models.File, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.FileID, validation.Required),
		validation.Field(&req.FolderID, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// The target folder must exist and belong to the user
	if _, err := s.folderRepo.GetByID(ctx, req.FolderID, req.UserID); err != nil {
		return nil, err
	}

	if err := s.fileRepo.Move(ctx, req.FileID, req.UserID, req.FolderID); err != nil {
		return nil, err
	}

	s.logger.Info("file moved", "id", req.FileID, "user_id", req.UserID, "folder_id", req.FolderID)

	return s.fileRepo.GetByID(ctx, req.FileID, req.UserID)
}

// Delete removes the metadata row first, then the blob best effort
func (s *fileService) Delete(ctx context.Context, userID, fileID string) error {
	file, err := s.fileRepo.GetByID(ctx, fileID, userID)
	if err != nil {
		return err
	}

	if err := s.fileRepo.Delete(ctx, fileID, userID); err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, file.StorageKey); err != nil {
		s.logger.Warn("failed to delete blob",
			"file_id", fileID,
			"storage_key", file.StorageKey,
			"error", err,
		)
	}

	s.logger.Info("file deleted", "id", fileID, "user_id", userID)

	return nil
}

// ListRecent lists the user's newest files
func (s *fileService) ListRecent(ctx context.Context, userID string, limit int) ([]models.File, error) {
	if limit <= 0 {
		limit = config.DefaultListLimit
	}
	if limit > config.MaxListLimit {
		limit = config.MaxListLimit
	}

	return s.fileRepo.ListRecent(ctx, userID, limit)
}

// validateUploadRequest validates an upload request
func (s *fileService) validateUploadRequest(req *services.UploadFileRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.FolderID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFileNameLength),
			validation.Match(fileNamePattern).Error("file name cannot contain slashes"),
		),
		validation.Field(&req.Size, validation.Required, validation.Min(int64(1))),
		validation.Field(&req.MimeType, validation.Required),
	)
}
