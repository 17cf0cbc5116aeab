package routes

import (
	"net/http"

	"github.com/offerfunnel/offerfunnel/backend/internal/api/handlers"
	"github.com/offerfunnel/offerfunnel/backend/internal/api/middleware"
	"github.com/offerfunnel/offerfunnel/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	surveyHandler   *handlers.SurveyHandler
	responseHandler *handlers.ResponseHandler
	statsHandler    *handlers.StatsHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	surveyHandler *handlers.SurveyHandler,
	responseHandler *handlers.ResponseHandler,
	statsHandler *handlers.StatsHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		surveyHandler:   surveyHandler,
		responseHandler: responseHandler,
		statsHandler:    statsHandler,
		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Survey submission
	r.mux.HandleFunc("POST /api/survey", r.surveyHandler.SubmitSurvey)

	// Response endpoints
	r.mux.HandleFunc("GET /api/responses", r.responseHandler.ListResponses)
	r.mux.HandleFunc("GET /api/responses/export", r.responseHandler.ExportResponses)

	// Statistics endpoints
	r.mux.HandleFunc("GET /api/stats", r.statsHandler.GetStats)
	r.mux.HandleFunc("GET /api/filters", r.statsHandler.GetFilterOptions)

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	handler = middleware.CacheControl(middleware.Compression(handler))

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(handler)

	return handler
}
