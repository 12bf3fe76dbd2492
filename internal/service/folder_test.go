package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/services"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFolderFixture() (services.FolderService, *memFolderRepo, *memFileRepo, *memBlobStore) {
	folderRepo := newMemFolderRepo()
	fileRepo := newMemFileRepo()
	blobs := newMemBlobStore()
	svc := NewFolderService(folderRepo, fileRepo, blobs, memTxManager{}, discardLogger())
	return svc, folderRepo, fileRepo, blobs
}

func TestEnsureRootBootstrap(t *testing.T) {
	svc, _, _, _ := newFolderFixture()
	ctx := context.Background()

	root, err := svc.EnsureRoot(ctx, "user-1")
	if err != nil {
		t.Fatalf("EnsureRoot: %v", err)
	}
	if root.Path != models.RootPath {
		t.Errorf("root path = %q, want %q", root.Path, models.RootPath)
	}
	if root.Name != models.RootFolderName {
		t.Errorf("root name = %q, want %q", root.Name, models.RootFolderName)
	}
	if !root.IsRoot() {
		t.Error("root folder should have no parent")
	}

	// A second call returns the same folder, not a new one
	again, err := svc.EnsureRoot(ctx, "user-1")
	if err != nil {
		t.Fatalf("EnsureRoot second call: %v", err)
	}
	if again.ID != root.ID {
		t.Errorf("second EnsureRoot returned %q, want %q", again.ID, root.ID)
	}
}

func TestCreateFolderPaths(t *testing.T) {
	svc, _, _, _ := newFolderFixture()
	ctx := context.Background()

	docs, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{
		UserID: "user-1",
		Name:   "Docs",
	})
	if err != nil {
		t.Fatalf("create Docs: %v", err)
	}
	if docs.Path != "/Docs/" {
		t.Errorf("Docs path = %q, want %q", docs.Path, "/Docs/")
	}

	reports, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{
		UserID:   "user-1",
		Name:     "Reports",
		ParentID: &docs.ID,
	})
	if err != nil {
		t.Fatalf("create Reports: %v", err)
	}
	if reports.Path != "/Docs/Reports/" {
		t.Errorf("Reports path = %q, want %q", reports.Path, "/Docs/Reports/")
	}
	if reports.ParentID == nil || *reports.ParentID != docs.ID {
		t.Error("Reports should be parented to Docs")
	}
}

func TestCreateFolderValidation(t *testing.T) {
	svc, _, _, _ := newFolderFixture()
	ctx := context.Background()

	tests := []struct {
		name    string
		reqName string
	}{
		{name: "empty name", reqName: ""},
		{name: "slash in name", reqName: "a/b"},
		{name: "name too long", reqName: strings.Repeat("x", 256)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{
				UserID: "user-1",
				Name:   tt.reqName,
			})
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateFolderDuplicateSibling(t *testing.T) {
	svc, _, _, _ := newFolderFixture()
	ctx := context.Background()

	if _, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{UserID: "user-1", Name: "Docs"}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{UserID: "user-1", Name: "Docs"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected conflict for duplicate sibling, got %v", err)
	}

	// The same name is fine for another user
	if _, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{UserID: "user-2", Name: "Docs"}); err != nil {
		t.Errorf("same name for another user should succeed, got %v", err)
	}
}

func TestDeleteFolderCascade(t *testing.T) {
	svc, folderRepo, fileRepo, blobs := newFolderFixture()
	ctx := context.Background()

	docs, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{UserID: "user-1", Name: "Docs"})
	if err != nil {
		t.Fatalf("create Docs: %v", err)
	}
	reports, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{UserID: "user-1", Name: "Reports", ParentID: &docs.ID})
	if err != nil {
		t.Fatalf("create Reports: %v", err)
	}
	sibling, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{UserID: "user-1", Name: "Keep"})
	if err != nil {
		t.Fatalf("create Keep: %v", err)
	}

	// One file deep in the subtree, one outside it
	inside := &models.File{ID: "file-1", UserID: "user-1", FolderID: reports.ID, Name: "q3.pdf", StorageKey: "user-1/file-1_q3.pdf"}
	outside := &models.File{ID: "file-2", UserID: "user-1", FolderID: sibling.ID, Name: "keep.pdf", StorageKey: "user-1/file-2_keep.pdf"}
	fileRepo.Create(ctx, inside)
	fileRepo.Create(ctx, outside)
	blobs.Put(ctx, inside.StorageKey, strings.NewReader("inside"), 6)
	blobs.Put(ctx, outside.StorageKey, strings.NewReader("outside"), 7)

	if err := svc.DeleteFolder(ctx, "user-1", docs.ID); err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}

	if _, err := folderRepo.GetByID(ctx, docs.ID, "user-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("Docs should be gone")
	}
	if _, err := folderRepo.GetByID(ctx, reports.ID, "user-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("Reports should be cascade-deleted")
	}
	if _, err := folderRepo.GetByID(ctx, sibling.ID, "user-1"); err != nil {
		t.Error("sibling folder should survive")
	}

	if _, err := fileRepo.GetByID(ctx, inside.ID, "user-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("file inside the subtree should be gone")
	}
	if _, err := fileRepo.GetByID(ctx, outside.ID, "user-1"); err != nil {
		t.Error("file outside the subtree should survive")
	}

	if ok, _ := blobs.Exists(ctx, inside.StorageKey); ok {
		t.Error("blob inside the subtree should be deleted")
	}
	if ok, _ := blobs.Exists(ctx, outside.StorageKey); !ok {
		t.Error("blob outside the subtree should survive")
	}
}

func TestDeleteFolderPrefixIsNotSibling(t *testing.T) {
	svc, folderRepo, _, _ := newFolderFixture()
	ctx := context.Background()

	docs, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{UserID: "user-1", Name: "Docs"})
	if err != nil {
		t.Fatalf("create Docs: %v", err)
	}
	docsOld, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{UserID: "user-1", Name: "Docs-old"})
	if err != nil {
		t.Fatalf("create Docs-old: %v", err)
	}

	if err := svc.DeleteFolder(ctx, "user-1", docs.ID); err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}

	// "/Docs/" must not match "/Docs-old/"
	if _, err := folderRepo.GetByID(ctx, docsOld.ID, "user-1"); err != nil {
		t.Error("folder whose name shares a prefix should survive")
	}
}

func TestDeleteRootRejected(t *testing.T) {
	svc, _, _, _ := newFolderFixture()
	ctx := context.Background()

	root, err := svc.EnsureRoot(ctx, "user-1")
	if err != nil {
		t.Fatalf("EnsureRoot: %v", err)
	}

	err = svc.DeleteFolder(ctx, "user-1", root.ID)
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("deleting the root should be rejected, got %v", err)
	}
}

func TestBreadcrumbs(t *testing.T) {
	svc, _, _, _ := newFolderFixture()
	ctx := context.Background()

	docs, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{UserID: "user-1", Name: "Docs"})
	if err != nil {
		t.Fatalf("create Docs: %v", err)
	}
	reports, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{UserID: "user-1", Name: "Reports", ParentID: &docs.ID})
	if err != nil {
		t.Fatalf("create Reports: %v", err)
	}

	crumbs, err := svc.Breadcrumbs(ctx, "user-1", reports.ID)
	if err != nil {
		t.Fatalf("Breadcrumbs: %v", err)
	}

	want := []string{models.RootFolderName, "Docs", "Reports"}
	if len(crumbs) != len(want) {
		t.Fatalf("got %d crumbs, want %d", len(crumbs), len(want))
	}
	for i, name := range want {
		if crumbs[i].Name != name {
			t.Errorf("crumb %d = %q, want %q", i, crumbs[i].Name, name)
		}
	}
	if crumbs[len(crumbs)-1].ID != reports.ID {
		t.Error("last crumb should be the folder itself")
	}
}

func TestListChildrenOneLevel(t *testing.T) {
	svc, _, fileRepo, _ := newFolderFixture()
	ctx := context.Background()

	docs, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{UserID: "user-1", Name: "Docs"})
	if err != nil {
		t.Fatalf("create Docs: %v", err)
	}
	if _, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{UserID: "user-1", Name: "Reports", ParentID: &docs.ID}); err != nil {
		t.Fatalf("create Reports: %v", err)
	}

	fileRepo.Create(ctx, &models.File{ID: "file-1", UserID: "user-1", FolderID: docs.ID, Name: "a.pdf"})

	contents, err := svc.ListChildren(ctx, &services.ListChildrenRequest{UserID: "user-1", FolderID: &docs.ID})
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	if len(contents.Folders) != 1 || contents.Folders[0].Name != "Reports" {
		t.Errorf("expected one child folder Reports, got %+v", contents.Folders)
	}
	if len(contents.Files) != 1 || contents.Files[0].Name != "a.pdf" {
		t.Errorf("expected one file a.pdf, got %+v", contents.Files)
	}

	// Nil folder ID lists the root level
	top, err := svc.ListChildren(ctx, &services.ListChildrenRequest{UserID: "user-1"})
	if err != nil {
		t.Fatalf("ListChildren root: %v", err)
	}
	if len(top.Folders) != 1 || top.Folders[0].Name != "Docs" {
		t.Errorf("expected Docs at top level, got %+v", top.Folders)
	}
}
