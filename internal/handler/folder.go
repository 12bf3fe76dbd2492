package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"filevault/internal/domain/services"
	"filevault/internal/httputil"
)

// FolderHandler serves the folder hierarchy endpoints
type FolderHandler struct {
	folders services.FolderService
	logger  *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folders services.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{folders: folders, logger: logger}
}

// Create handles POST /api/folders
func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.UserID = httputil.GetUserID(r)

	folder, err := h.folders.CreateFolder(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// Get handles GET /api/folders/{id}
func (h *FolderHandler) Get(w http.ResponseWriter, r *http.Request) {
	folder, err := h.folders.GetFolder(r.Context(), httputil.GetUserID(r), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// ListChildren handles GET /api/folders/{id}/children and, with "root"
// as the id, the top level of the hierarchy.
func (h *FolderHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	req := services.ListChildrenRequest{
		UserID: httputil.GetUserID(r),
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}

	if id := r.PathValue("id"); id != "" && id != "root" {
		req.FolderID = &id
	}

	contents, err := h.folders.ListChildren(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, contents)
}

// Delete handles DELETE /api/folders/{id}
func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.folders.DeleteFolder(r.Context(), httputil.GetUserID(r), r.PathValue("id")); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Breadcrumbs handles GET /api/folders/{id}/breadcrumbs
func (h *FolderHandler) Breadcrumbs(w http.ResponseWriter, r *http.Request) {
	crumbs, err := h.folders.Breadcrumbs(r.Context(), httputil.GetUserID(r), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"breadcrumbs": crumbs})
}

// queryInt parses an integer query parameter, zero when absent or invalid
func queryInt(r *http.Request, name string) int {
	value := r.URL.Query().Get(name)
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}
