package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/offerfunnel/offerfunnel/backend/internal/domain/entities"
	apperrors "github.com/offerfunnel/offerfunnel/backend/pkg/errors"
)

// SurveySubmitter defines the submission operation used by the handler.
type SurveySubmitter interface {
	Submit(ctx context.Context, payload map[string]interface{}) (*entities.SurveyResponse, error)
}

// SurveyHandler handles survey submissions.
type SurveyHandler struct {
	service SurveySubmitter
}

// NewSurveyHandler creates a new survey handler.
func NewSurveyHandler(service SurveySubmitter) *SurveyHandler {
	return &SurveyHandler{service: service}
}

// SubmitSurvey handles POST /api/survey
func (h *SurveyHandler) SubmitSurvey(w http.ResponseWriter, r *http.Request) {
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()

	var payload map[string]interface{}
	if err := decoder.Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	stored, err := h.service.Submit(r.Context(), payload)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok && appErr.Type == apperrors.ErrorTypeValidation {
			respondWithValidationError(w, appErr)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to store survey response")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    stored,
	})
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

func respondWithValidationError(w http.ResponseWriter, appErr *apperrors.AppError) {
	body := map[string]interface{}{
		"success": false,
		"error":   appErr.Message,
	}
	if appErr.Field != "" {
		body["field"] = appErr.Field
	}
	respondWithJSON(w, http.StatusBadRequest, body)
}
