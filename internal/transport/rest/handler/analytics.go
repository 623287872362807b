package handler

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"formpulse/internal/export"
	"formpulse/internal/service"
	"formpulse/internal/transport/rest/middleware"
)

// AnalyticsHandler serves dashboards and exports
type AnalyticsHandler struct {
	analyticsSvc *service.AnalyticsService
	exportSvc    *service.ExportService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsSvc *service.AnalyticsService, exportSvc *service.ExportService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsSvc: analyticsSvc,
		exportSvc:    exportSvc,
	}
}

// Summary handles GET /v1/forms/{formId}/analytics
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	formID := mux.Vars(r)["formId"]

	summary, err := h.analyticsSvc.Summary(r.Context(), middleware.GetOwnerID(r.Context()), formID, parseFilter(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Export handles GET /v1/forms/{formId}/export?format=csv|json|pdf
func (h *AnalyticsHandler) Export(w http.ResponseWriter, r *http.Request) {
	formID := mux.Vars(r)["formId"]

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, err := h.exportSvc.Export(r.Context(), middleware.GetOwnerID(r.Context()), formID, parseFilter(r), format)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(file.Data)
}
