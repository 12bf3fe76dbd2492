package services

import (
	"context"

	"filevault/internal/domain/models"
)

// TreeService builds the nested folder/file tree for a user
type TreeService interface {
	// GetTree returns the full tree, folders nested by parent reference.
	GetTree(ctx context.Context, userID string) (*models.TreeNode, error)
}
