package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offerfunnel/offerfunnel/backend/internal/api/handlers"
	"github.com/offerfunnel/offerfunnel/backend/internal/domain/entities"
	apperrors "github.com/offerfunnel/offerfunnel/backend/pkg/errors"
)

type stubSubmitter struct {
	submitted map[string]interface{}
	err       error
}

func (s *stubSubmitter) Submit(ctx context.Context, payload map[string]interface{}) (*entities.SurveyResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.submitted = payload
	return &entities.SurveyResponse{
		ID:        17,
		Major:     "Computer Science",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}, nil
}

const surveyBody = `{
	"total_applications": 120,
	"total_responses": 30,
	"total_first_round": 20,
	"total_final_round": 8,
	"total_offers": 2,
	"major": "Computer Science",
	"degree": "Bachelor's",
	"school_tier": "Top 50",
	"gpa_range": "3.5-4.0",
	"graduating_time": "Spring 2026",
	"internship_count": 2,
	"has_return_offer": "Yes, but I'm still searching...",
	"needs_sponsorship": "No, US citizen",
	"when_started_applying": "August 2025"
}`

func TestSurveyHandler_SubmitSurvey_Success(t *testing.T) {
	service := &stubSubmitter{}
	handler := handlers.NewSurveyHandler(service)

	req := httptest.NewRequest("POST", "/api/survey", strings.NewReader(surveyBody))
	w := httptest.NewRecorder()

	handler.SubmitSurvey(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, service.submitted)

	var response struct {
		Success bool                    `json:"success"`
		Data    entities.SurveyResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.True(t, response.Success)
	assert.Equal(t, int64(17), response.Data.ID)
}

func TestSurveyHandler_SubmitSurvey_ValidationErrorNamesField(t *testing.T) {
	service := &stubSubmitter{
		err: apperrors.NewFieldValidationError("gpa_range", "Missing required field: gpa_range"),
	}
	handler := handlers.NewSurveyHandler(service)

	req := httptest.NewRequest("POST", "/api/survey", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	handler.SubmitSurvey(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, false, response["success"])
	assert.Equal(t, "Missing required field: gpa_range", response["error"])
	assert.Equal(t, "gpa_range", response["field"])
}

func TestSurveyHandler_SubmitSurvey_MalformedJSON(t *testing.T) {
	handler := handlers.NewSurveyHandler(&stubSubmitter{})

	req := httptest.NewRequest("POST", "/api/survey", strings.NewReader(`{"major":`))
	w := httptest.NewRecorder()

	handler.SubmitSurvey(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSurveyHandler_SubmitSurvey_StoreFailure(t *testing.T) {
	service := &stubSubmitter{err: errors.New("connection refused")}
	handler := handlers.NewSurveyHandler(service)

	req := httptest.NewRequest("POST", "/api/survey", strings.NewReader(surveyBody))
	w := httptest.NewRecorder()

	handler.SubmitSurvey(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
