package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"filevault/internal/domain/services"
	"filevault/internal/httputil"
)

// ArchiveHandler serves the archive job endpoints
type ArchiveHandler struct {
	archives services.ArchiveService
	logger   *slog.Logger
}

// NewArchiveHandler creates a new archive handler
func NewArchiveHandler(archives services.ArchiveService, logger *slog.Logger) *ArchiveHandler {
	return &ArchiveHandler{archives: archives, logger: logger}
}

// Submit handles POST /api/archives. Returns 202 with the pending job;
// clients poll the status endpoint for completion.
func (h *ArchiveHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req services.SubmitArchiveRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.UserID = httputil.GetUserID(r)

	job, err := h.archives.Submit(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusAccepted, job)
}

// GetStatus handles GET /api/archives/{id}
func (h *ArchiveHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	job, err := h.archives.GetStatus(r.Context(), httputil.GetUserID(r), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, job)
}

// Download handles GET /api/archives/{id}/download
func (h *ArchiveHandler) Download(w http.ResponseWriter, r *http.Request) {
	job, reader, size, err := h.archives.OpenArchive(r.Context(), httputil.GetUserID(r), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", job.ID+".zip"))

	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("archive download interrupted", "job_id", job.ID, "error", err)
	}
}
