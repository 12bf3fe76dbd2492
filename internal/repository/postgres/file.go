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

// FileRepository implements repositories.FileRepository on Postgres.
type FileRepository struct {
	pool *pgxpool.Pool
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *RepositoryConfig) repositories.FileRepository {
	return &FileRepository{pool: config.Pool}
}

const fileColumns = `id, user_id, folder_id, name, size, checksum, storage_key, mime_type, created_at, updated_at`

// Create inserts a new file row. The ID is assigned by the caller before
// the blob write so the storage key can embed it.
func (r *FileRepository) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (id, user_id, folder_id, name, size, checksum, storage_key, mime_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		file.ID,
		file.UserID,
		file.FolderID,
		file.Name,
		file.Size,
		file.Checksum,
		file.StorageKey,
		file.MimeType,
		file.CreatedAt,
		file.UpdatedAt,
	).Scan(&file.ID, &file.CreatedAt, &file.UpdatedAt)

	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("folder %s: %w", file.FolderID, domain.ErrNotFound)
		}
		return fmt.Errorf("create file: %w", err)
	}

	return nil
}

// GetByID retrieves a file owned by the user
func (r *FileRepository) GetByID(ctx context.Context, id, userID string) (*models.File, error) {
	query := `
		SELECT ` + fileColumns + `
		FROM files
		WHERE id = $1 AND user_id = $2
	`

	var file models.File
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, userID).Scan(
		&file.ID,
		&file.UserID,
		&file.FolderID,
		&file.Name,
		&file.Size,
		&file.Checksum,
		&file.StorageKey,
		&file.MimeType,
		&file.CreatedAt,
		&file.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}

	return &file, nil
}

// ListByFolder lists files directly inside a folder, ordered by name
func (r *FileRepository) ListByFolder(ctx context.Context, userID, folderID string) ([]models.File, error) {
	query := `
		SELECT ` + fileColumns + `
		FROM files
		WHERE user_id = $1 AND folder_id = $2
		ORDER BY name ASC
	`

	return r.list(ctx, query, userID, folderID)
}

// ListByFolderIDs lists every file contained in any of the given folders
func (r *FileRepository) ListByFolderIDs(ctx context.Context, userID string, folderIDs []string) ([]models.File, error) {
	if len(folderIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + fileColumns + `
		FROM files
		WHERE user_id = $1 AND folder_id = ANY($2)
		ORDER BY name ASC
	`

	return r.list(ctx, query, userID, folderIDs)
}

// ListRecent lists the user's files ordered by creation time descending
func (r *FileRepository) ListRecent(ctx context.Context, userID string, limit int) ([]models.File, error) {
	query := `
		SELECT ` + fileColumns + `
		FROM files
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	return r.list(ctx, query, userID, limit)
}

// ListAll returns every file owned by the user
func (r *FileRepository) ListAll(ctx context.Context, userID string) ([]models.File, error) {
	query := `
		SELECT ` + fileColumns + `
		FROM files
		WHERE user_id = $1
		ORDER BY name ASC
	`

	return r.list(ctx, query, userID)
}

// Move updates folder_id and updated_at for a file owned by the user.
// Intentionally a targeted partial update, not a full-row upsert, so a
// concurrent rename is never silently overwritten.
func (r *FileRepository) Move(ctx context.Context, id, userID, folderID string) error {
	query := `
		UPDATE files
		SET folder_id = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4
	`

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, folderID, time.Now(), id, userID)
	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("folder %s: %w", folderID, domain.ErrNotFound)
		}
		return fmt.Errorf("move file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a file row
func (r *FileRepository) Delete(ctx context.Context, id, userID string) error {
	query := `
		DELETE FROM files
		WHERE id = $1 AND user_id = $2
	`

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteByFolderIDs removes every file row in the given folders
func (r *FileRepository) DeleteByFolderIDs(ctx context.Context, userID string, folderIDs []string) (int64, error) {
	if len(folderIDs) == 0 {
		return 0, nil
	}

	query := `
		DELETE FROM files
		WHERE user_id = $1 AND folder_id = ANY($2)
	`

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, userID, folderIDs)
	if err != nil {
		return 0, fmt.Errorf("delete files by folder: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *FileRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.File, error) {
	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []models.File
	for rows.Next() {
		var file models.File
		err := rows.Scan(
			&file.ID,
			&file.UserID,
			&file.FolderID,
			&file.Name,
			&file.Size,
			&file.Checksum,
			&file.StorageKey,
			&file.MimeType,
			&file.CreatedAt,
			&file.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	return files, nil
}
