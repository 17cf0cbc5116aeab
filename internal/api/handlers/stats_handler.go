package handlers

import (
	"context"
	"net/http"

	"github.com/offerfunnel/offerfunnel/backend/internal/domain/entities"
	apperrors "github.com/offerfunnel/offerfunnel/backend/pkg/errors"
)

// StatsProvider defines the aggregate operations used by the stats handler.
type StatsProvider interface {
	Aggregate(ctx context.Context, filters entities.DashboardFilters) (*entities.AggregatedStats, error)
	FilterOptions(ctx context.Context) (*entities.FilterOptions, error)
}

// StatsHandler serves dashboard statistics and the filter catalog.
type StatsHandler struct {
	service StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(service StatsProvider) *StatsHandler {
	return &StatsHandler{service: service}
}

// GetStats handles GET /api/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			respondWithValidationError(w, appErr)
			return
		}
		respondWithError(w, http.StatusBadRequest, "invalid filter parameters")
		return
	}

	stats, err := h.service.Aggregate(r.Context(), filters)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to compute statistics")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    stats,
	})
}

// GetFilterOptions handles GET /api/filters
func (h *StatsHandler) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	options, err := h.service.FilterOptions(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to load filter options")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    options,
	})
}
