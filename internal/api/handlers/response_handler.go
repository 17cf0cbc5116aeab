package handlers

import (
	"context"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/offerfunnel/offerfunnel/backend/internal/domain/entities"
	apperrors "github.com/offerfunnel/offerfunnel/backend/pkg/errors"
)

// ResponseLister defines the read operations used by the response handler.
type ResponseLister interface {
	List(ctx context.Context, filters entities.DashboardFilters) ([]*entities.SurveyResponse, error)
}

// ResponseHandler serves the stored survey responses.
type ResponseHandler struct {
	service ResponseLister
}

// NewResponseHandler creates a new response handler.
func NewResponseHandler(service ResponseLister) *ResponseHandler {
	return &ResponseHandler{service: service}
}

// ListResponses handles GET /api/responses
func (h *ResponseHandler) ListResponses(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			respondWithValidationError(w, appErr)
			return
		}
		respondWithError(w, http.StatusBadRequest, "invalid filter parameters")
		return
	}

	responses, err := h.service.List(r.Context(), filters)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list responses")
		return
	}
	if responses == nil {
		responses = []*entities.SurveyResponse{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"data":  responses,
		"count": len(responses),
	})
}

var exportHeader = []string{
	"id",
	"total_applications",
	"total_responses",
	"total_first_round",
	"total_final_round",
	"total_offers",
	"major",
	"degree",
	"school_tier",
	"gpa_range",
	"graduating_time",
	"internship_count",
	"has_return_offer",
	"needs_sponsorship",
	"when_started_applying",
	"timestamp",
}

// ExportResponses handles GET /api/responses/export, streaming the filtered
// rows as CSV in the same order the list endpoint returns them.
func (h *ResponseHandler) ExportResponses(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			respondWithValidationError(w, appErr)
			return
		}
		respondWithError(w, http.StatusBadRequest, "invalid filter parameters")
		return
	}

	responses, err := h.service.List(r.Context(), filters)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to export responses")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="survey_responses.csv"`)

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return
	}
	for _, resp := range responses {
		record := []string{
			strconv.FormatInt(resp.ID, 10),
			strconv.Itoa(resp.TotalApplications),
			strconv.Itoa(resp.TotalResponses),
			strconv.Itoa(resp.TotalFirstRound),
			strconv.Itoa(resp.TotalFinalRound),
			strconv.Itoa(resp.TotalOffers),
			resp.Major,
			resp.Degree,
			resp.SchoolTier,
			resp.GPARange,
			resp.GraduatingTime,
			strconv.Itoa(resp.InternshipCount),
			resp.HasReturnOffer,
			resp.NeedsSponsorship,
			resp.WhenStartedApplying,
			resp.Timestamp.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return
		}
	}
	writer.Flush()
}
