package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"formpulse/internal/model"
	"formpulse/internal/service"
	"formpulse/internal/transport/rest/middleware"
)

// ResponseHandler handles submission endpoints
type ResponseHandler struct {
	responseSvc *service.ResponseService
}

// NewResponseHandler creates a new response handler
func NewResponseHandler(responseSvc *service.ResponseService) *ResponseHandler {
	return &ResponseHandler{responseSvc: responseSvc}
}

// Submit handles POST /v1/forms/{formId}/responses
func (h *ResponseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	formID := mux.Vars(r)["formId"]

	var req model.SubmitResponseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.responseSvc.Submit(r.Context(), formID, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

// List handles GET /v1/forms/{formId}/responses
func (h *ResponseHandler) List(w http.ResponseWriter, r *http.Request) {
	formID := mux.Vars(r)["formId"]

	responses, err := h.responseSvc.List(r.Context(), middleware.GetOwnerID(r.Context()), formID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"responses": responses, "count": len(responses)})
}
