package handler

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"filevault/internal/domain/services"
	"filevault/internal/httputil"
)

// maxMultipartMemory bounds the in-memory portion of multipart parsing;
// larger parts spill to temp files.
const maxMultipartMemory = 10 << 20

// FileHandler serves the file upload/download endpoints
type FileHandler struct {
	files  services.FileService
	logger *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(files services.FileService, logger *slog.Logger) *FileHandler {
	return &FileHandler{files: files, logger: logger}
}

// Upload handles POST /api/files. Expects a multipart form with a
// "file" part and a "folder_id" field.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	part, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "missing file part")
		return
	}
	defer part.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	} else if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = parsed
	}

	file, err := h.files.Upload(r.Context(), &services.UploadFileRequest{
		UserID:   httputil.GetUserID(r),
		FolderID: r.FormValue("folder_id"),
		Name:     header.Filename,
		Size:     header.Size,
		MimeType: mimeType,
		Content:  part,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, file)
}

// Get handles GET /api/files/{id}
func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	file, err := h.files.GetFile(r.Context(), httputil.GetUserID(r), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// Download handles GET /api/files/{id}/download, streaming the blob
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	file, reader, err := h.files.Open(r.Context(), httputil.GetUserID(r), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", file.MimeType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", file.Size))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))

	if _, err := io.Copy(w, reader); err != nil {
		// Headers are already sent; all we can do is log
		h.logger.Warn("file download interrupted", "file_id", file.ID, "error", err)
	}
}

// Move handles PATCH /api/files/{id}
func (h *FileHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req services.MoveFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.UserID = httputil.GetUserID(r)
	req.FileID = r.PathValue("id")

	file, err := h.files.Move(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// Delete handles DELETE /api/files/{id}
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.files.Delete(r.Context(), httputil.GetUserID(r), r.PathValue("id")); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListRecent handles GET /api/files/recent
func (h *FileHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	files, err := h.files.ListRecent(r.Context(), httputil.GetUserID(r), queryInt(r, "limit"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"files": files})
}
