package handler

import (
	"log/slog"
	"net/http"

	"filevault/internal/domain/services"
	"filevault/internal/httputil"
)

// TreeHandler serves the full-tree endpoint
type TreeHandler struct {
	tree   services.TreeService
	logger *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(tree services.TreeService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{tree: tree, logger: logger}
}

// Get handles GET /api/tree
func (h *TreeHandler) Get(w http.ResponseWriter, r *http.Request) {
	tree, err := h.tree.GetTree(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}
