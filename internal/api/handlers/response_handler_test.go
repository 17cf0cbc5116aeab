package handlers_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offerfunnel/offerfunnel/backend/internal/api/handlers"
	"github.com/offerfunnel/offerfunnel/backend/internal/domain/entities"
)

type stubLister struct {
	filters   entities.DashboardFilters
	responses []*entities.SurveyResponse
}

func (s *stubLister) List(ctx context.Context, filters entities.DashboardFilters) ([]*entities.SurveyResponse, error) {
	s.filters = filters
	return s.responses, nil
}

func sampleResponses() []*entities.SurveyResponse {
	return []*entities.SurveyResponse{
		{
			ID:                  2,
			TotalApplications:   80,
			TotalResponses:      15,
			TotalFirstRound:     10,
			TotalFinalRound:     4,
			TotalOffers:         1,
			Major:               "Physics",
			Degree:              "Master's",
			SchoolTier:          "Top 20",
			GPARange:            "3.0-3.5",
			GraduatingTime:      "Fall 2026",
			InternshipCount:     1,
			HasReturnOffer:      entities.ReturnOfferNone,
			NeedsSponsorship:    entities.SponsorshipRequired,
			WhenStartedApplying: "September 2025",
			Timestamp:           time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC),
		},
	}
}

func TestResponseHandler_ListResponses_ParsesFilters(t *testing.T) {
	service := &stubLister{responses: sampleResponses()}
	handler := handlers.NewResponseHandler(service)

	req := httptest.NewRequest("GET", "/api/responses?major=Physics&internship_count=1", nil)
	w := httptest.NewRecorder()

	handler.ListResponses(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Physics", service.filters.Major)
	require.NotNil(t, service.filters.InternshipCount)
	assert.Equal(t, 1, *service.filters.InternshipCount)

	var response struct {
		Data  []entities.SurveyResponse `json:"data"`
		Count int                       `json:"count"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 1, response.Count)
	assert.Equal(t, "Physics", response.Data[0].Major)
}

func TestResponseHandler_ListResponses_EmptyIsNotNull(t *testing.T) {
	handler := handlers.NewResponseHandler(&stubLister{})

	req := httptest.NewRequest("GET", "/api/responses", nil)
	w := httptest.NewRecorder()

	handler.ListResponses(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestResponseHandler_ListResponses_BadInternshipCount(t *testing.T) {
	handler := handlers.NewResponseHandler(&stubLister{})

	req := httptest.NewRequest("GET", "/api/responses?internship_count=two", nil)
	w := httptest.NewRecorder()

	handler.ListResponses(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "internship_count", response["field"])
}

func TestResponseHandler_ExportResponses_CSV(t *testing.T) {
	service := &stubLister{responses: sampleResponses()}
	handler := handlers.NewResponseHandler(service)

	req := httptest.NewRequest("GET", "/api/responses/export?degree=Master%27s", nil)
	w := httptest.NewRecorder()

	handler.ExportResponses(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "survey_responses.csv")
	assert.Equal(t, "Master's", service.filters.Degree)

	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "id", records[0][0])
	assert.Equal(t, "2", records[1][0])
	assert.Equal(t, "Physics", records[1][6])
	assert.Equal(t, entities.SponsorshipRequired, records[1][13])
	assert.Equal(t, "2026-02-10T08:00:00Z", records[1][15])
}
