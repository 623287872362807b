package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"formpulse/internal/analytics"
	"formpulse/internal/service"
	"formpulse/pkg/logger"
)

const maxBodyBytes = 1 << 20

// filterPrefix marks analytics filter entries in the query string: filter.<questionId>=<value>
const filterPrefix = "filter."

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps service errors onto HTTP statuses. Anything that is
// not a *service.Error is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	se, ok := service.AsError(err)
	if !ok {
		logger.Log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status := http.StatusInternalServerError
	switch se.Code {
	case service.ErrorInvalid:
		status = http.StatusBadRequest
	case service.ErrorUnauthorized:
		status = http.StatusUnauthorized
	case service.ErrorForbidden:
		status = http.StatusForbidden
	case service.ErrorNotFound:
		status = http.StatusNotFound
	case service.ErrorTooManyRequests:
		status = http.StatusTooManyRequests
	}
	writeError(w, status, se.Message)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// parseFilter reads filter.<questionId>=<value> query parameters. The value
// "all" (any case) or an empty value leaves the question unconstrained.
func parseFilter(r *http.Request) analytics.Filter {
	f := analytics.Filter{}
	for key, values := range r.URL.Query() {
		if !strings.HasPrefix(key, filterPrefix) || len(values) == 0 {
			continue
		}
		qid := strings.TrimPrefix(key, filterPrefix)
		if qid == "" {
			continue
		}
		v := values[0]
		if strings.EqualFold(v, "all") {
			v = ""
		}
		f[qid] = v
	}
	return f
}
