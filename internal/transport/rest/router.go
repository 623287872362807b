package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"formpulse/internal/service"
	"formpulse/internal/storage"
	"formpulse/internal/transport/rest/handler"
	"formpulse/internal/transport/rest/middleware"
	"formpulse/internal/transport/ws"
	"formpulse/pkg/monitoring"
	"formpulse/pkg/tracing"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService      *service.AuthService
	FormService      *service.FormService
	ResponseService  *service.ResponseService
	AnalyticsService *service.AnalyticsService
	ExportService    *service.ExportService
	UploadService    *service.UploadService
	WSHub            *ws.Hub
	SubmitLimiter    *middleware.RateLimiter
	AllowedOrigins   []string
	LocalUploadDir   string // served under /uploads/ when set
	Tracing          bool
	HealthCheck      func(r *http.Request) error
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	formHandler := handler.NewFormHandler(c.FormService)
	responseHandler := handler.NewResponseHandler(c.ResponseService)
	analyticsHandler := handler.NewAnalyticsHandler(c.AnalyticsService, c.ExportService)
	uploadHandler := handler.NewUploadHandler(c.UploadService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.FormService, c.AllowedOrigins)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS first so preflight never reaches auth
	r.Use(middleware.CORS(c.AllowedOrigins))
	r.Use(middleware.Secure)
	r.Use(monitoring.MetricsMiddleware)
	if c.Tracing {
		r.Use(tracing.Middleware)
	}

	// Health and metrics
	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if c.HealthCheck != nil {
			if err := c.HealthCheck(req); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	r.Handle("/metrics", monitoring.PrometheusHandler()).Methods("GET")

	if c.LocalUploadDir != "" {
		files := http.StripPrefix(storage.LocalURLPrefix, http.FileServer(http.Dir(c.LocalUploadDir)))
		r.PathPrefix(storage.LocalURLPrefix).Handler(middleware.Download(files)).Methods("GET")
	}

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// WebSocket route (token in query param)
	v1.HandleFunc("/ws/forms/{formId}", wsHandler.FormWS).Methods("GET")

	// Public respondent routes
	v1.HandleFunc("/forms/{formId}/public", formHandler.GetPublic).Methods("GET", "OPTIONS")
	limited := func(h http.HandlerFunc) http.Handler {
		if c.SubmitLimiter == nil {
			return h
		}
		return c.SubmitLimiter.Middleware(h)
	}
	v1.Handle("/forms/{formId}/questions/{questionId}/uploads", limited(uploadHandler.Upload)).Methods("POST", "OPTIONS")
	v1.Handle("/forms/{formId}/responses", limited(responseHandler.Submit)).Methods("POST", "OPTIONS")

	// Owner routes (require owner auth)
	ownerRoutes := v1.NewRoute().Subrouter()
	ownerRoutes.Use(authMW.RequireOwner)

	ownerRoutes.HandleFunc("/forms", formHandler.Create).Methods("POST", "OPTIONS")
	ownerRoutes.HandleFunc("/forms", formHandler.List).Methods("GET", "OPTIONS")
	ownerRoutes.HandleFunc("/forms/{formId}", formHandler.Get).Methods("GET", "OPTIONS")
	ownerRoutes.HandleFunc("/forms/{formId}", formHandler.Update).Methods("PUT", "OPTIONS")
	ownerRoutes.HandleFunc("/forms/{formId}", formHandler.Delete).Methods("DELETE", "OPTIONS")
	ownerRoutes.HandleFunc("/forms/{formId}/responses", responseHandler.List).Methods("GET", "OPTIONS")
	ownerRoutes.HandleFunc("/forms/{formId}/analytics", analyticsHandler.Summary).Methods("GET", "OPTIONS")
	ownerRoutes.HandleFunc("/forms/{formId}/export", analyticsHandler.Export).Methods("GET", "OPTIONS")

	return r
}
