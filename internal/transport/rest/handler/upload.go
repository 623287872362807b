package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"formpulse/internal/service"
)

// UploadHandler accepts files for file-upload questions
type UploadHandler struct {
	uploadSvc *service.UploadService
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadSvc *service.UploadService) *UploadHandler {
	return &UploadHandler{uploadSvc: uploadSvc}
}

// Upload handles POST /v1/forms/{formId}/questions/{questionId}/uploads (multipart field "file")
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if limit := h.uploadSvc.MaxBytes(); limit > 0 {
		// room for the multipart envelope
		r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field \"file\" required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	res, err := h.uploadSvc.Upload(r.Context(), vars["formId"], vars["questionId"], header.Filename, file, header.Size, contentType)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}
