package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"
)

// FolderRepository implements repositories.FolderRepository on Postgres.
// The stored materialized path makes subtree selection and deletion a
// single prefix-matched statement each.
type FolderRepository struct {
	pool *pgxpool.Pool
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &FolderRepository{pool: config.Pool}
}

const folderColumns = `id, user_id, parent_id, name, path, created_at`

// Create inserts a new folder
func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := `
		INSERT INTO folders (user_id, parent_id, name, path, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		folder.UserID,
		folder.ParentID,
		folder.Name,
		folder.Path,
		folder.CreatedAt,
	).Scan(&folder.ID, &folder.CreatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this location", folder.Name),
				ResourceType: "folder",
			}
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder owned by the user
func (r *FolderRepository) GetByID(ctx context.Context, id, userID string) (*models.Folder, error) {
	query := `
		SELECT ` + folderColumns + `
		FROM folders
		WHERE id = $1 AND user_id = $2
	`

	folder, err := r.scanOne(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, userID))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return folder, nil
}

// GetRoot retrieves the user's root folder
func (r *FolderRepository) GetRoot(ctx context.Context, userID string) (*models.Folder, error) {
	query := `
		SELECT ` + folderColumns + `
		FROM folders
		WHERE user_id = $1 AND parent_id IS NULL
	`

	folder, err := r.scanOne(GetExecutor(ctx, r.pool).QueryRow(ctx, query, userID))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("root folder: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get root folder: %w", err)
	}

	return folder, nil
}

// GetByParentAndName retrieves a folder by parent and name.
// Returns (nil, nil) when no such folder exists.
func (r *FolderRepository) GetByParentAndName(ctx context.Context, userID, parentID, name string) (*models.Folder, error) {
	query := `
		SELECT ` + folderColumns + `
		FROM folders
		WHERE user_id = $1 AND parent_id = $2 AND name = $3
	`

	folder, err := r.scanOne(GetExecutor(ctx, r.pool).QueryRow(ctx, query, userID, parentID, name))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, nil // Not found, not an error
		}
		return nil, fmt.Errorf("get folder by parent and name: %w", err)
	}

	return folder, nil
}

// ListChildren lists immediate child folders, ordered by name, paginated
func (r *FolderRepository) ListChildren(ctx context.Context, userID, parentID string, limit, offset int) ([]models.Folder, error) {
	query := `
		SELECT ` + folderColumns + `
		FROM folders
		WHERE user_id = $1 AND parent_id = $2
		ORDER BY name ASC
		LIMIT $3 OFFSET $4
	`

	return r.list(ctx, query, userID, parentID, limit, offset)
}

// ListSubtree returns the folder and all descendants by path prefix, ordered by path
func (r *FolderRepository) ListSubtree(ctx context.Context, userID string, pathPrefix string) ([]models.Folder, error) {
	query := `
		SELECT ` + folderColumns + `
		FROM folders
		WHERE user_id = $1 AND path LIKE $2
		ORDER BY path ASC
	`

	return r.list(ctx, query, userID, escapeLike(pathPrefix)+"%")
}

// ListAll returns every folder owned by the user, ordered by creation time
func (r *FolderRepository) ListAll(ctx context.Context, userID string) ([]models.Folder, error) {
	query := `
		SELECT ` + folderColumns + `
		FROM folders
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	return r.list(ctx, query, userID)
}

// DeleteSubtree deletes the folder at pathPrefix and every descendant
func (r *FolderRepository) DeleteSubtree(ctx context.Context, userID string, pathPrefix string) (int64, error) {
	query := `
		DELETE FROM folders
		WHERE user_id = $1 AND path LIKE $2
	`

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, userID, escapeLike(pathPrefix)+"%")
	if err != nil {
		return 0, fmt.Errorf("delete folder subtree: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *FolderRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Folder, error) {
	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.UserID,
			&folder.ParentID,
			&folder.Name,
			&folder.Path,
			&folder.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *FolderRepository) scanOne(row rowScanner) (*models.Folder, error) {
	var folder models.Folder
	err := row.Scan(
		&folder.ID,
		&folder.UserID,
		&folder.ParentID,
		&folder.Name,
		&folder.Path,
		&folder.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}
