package service

import (
	"context"
	"fmt"
	"log/slog"

	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"
	"filevault/internal/domain/services"
)

type treeService struct {
	folderRepo repositories.FolderRepository
	fileRepo   repositories.FileRepository
	logger     *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	folderRepo repositories.FolderRepository,
	fileRepo repositories.FileRepository,
	logger *slog.Logger,
) services.TreeService {
	return &treeService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		logger:     logger,
	}
}

// GetTree loads all folders and files in two queries, then assembles the
// nested structure in memory: build nodes, attach files, link children.
func (s *treeService) GetTree(ctx context.Context, userID string) (*models.TreeNode, error) {
	folders, err := s.folderRepo.ListAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	files, err := s.fileRepo.ListAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	// First pass: a node per folder
	nodes := make(map[string]*models.FolderTreeNode, len(folders))
	for _, folder := range folders {
		nodes[folder.ID] = &models.FolderTreeNode{
			ID:        folder.ID,
			Name:      folder.Name,
			ParentID:  folder.ParentID,
			Path:      folder.Path,
			CreatedAt: folder.CreatedAt,
			Folders:   []*models.FolderTreeNode{},
			Files:     []models.FileTreeNode{},
		}
	}

	// Second pass: hang files off their folders
	tree := &models.TreeNode{
		Folders: []*models.FolderTreeNode{},
		Files:   []models.FileTreeNode{},
	}
	for _, file := range files {
		entry := models.FileTreeNode{
			ID:        file.ID,
			Name:      file.Name,
			FolderID:  file.FolderID,
			Size:      file.Size,
			MimeType:  file.MimeType,
			UpdatedAt: file.UpdatedAt,
		}
		if node, ok := nodes[file.FolderID]; ok {
			node.Files = append(node.Files, entry)
		} else {
			tree.Files = append(tree.Files, entry)
		}
	}

	// Third pass: link children to parents
	var root *models.FolderTreeNode
	for _, folder := range folders {
		node := nodes[folder.ID]
		if folder.ParentID == nil {
			root = node
			continue
		}
		if parent, ok := nodes[*folder.ParentID]; ok {
			parent.Folders = append(parent.Folders, node)
		} else {
			tree.Folders = append(tree.Folders, node)
		}
	}

	// The root node itself is not nested under anything; its children
	// become the tree's top level.
	if root != nil {
		tree.Folders = append(tree.Folders, root.Folders...)
		tree.Files = append(tree.Files, root.Files...)
	}

	return tree, nil
}
