package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/offerfunnel/offerfunnel/backend/internal/domain/entities"
	"github.com/offerfunnel/offerfunnel/backend/internal/domain/repositories"
	"github.com/offerfunnel/offerfunnel/backend/pkg/errors"
)

// submissionFields lists every required field of a survey submission in the
// order they are validated. The first missing or invalid field is the one
// named in the rejection.
var submissionFields = []string{
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
}

var integerFields = map[string]bool{
	"total_applications": true,
	"total_responses":    true,
	"total_first_round":  true,
	"total_final_round":  true,
	"total_offers":       true,
	"internship_count":   true,
}

// SurveyService coordinates survey reads and submissions.
type SurveyService struct {
	repo repositories.SurveyRepository
}

// NewSurveyService creates a new survey service.
func NewSurveyService(repo repositories.SurveyRepository) *SurveyService {
	return &SurveyService{repo: repo}
}

// List returns the stored responses matching the filters, newest first.
func (s *SurveyService) List(ctx context.Context, filters entities.DashboardFilters) ([]*entities.SurveyResponse, error) {
	return s.repo.List(ctx, filters)
}

// Aggregate computes dashboard statistics over the filtered responses.
func (s *SurveyService) Aggregate(ctx context.Context, filters entities.DashboardFilters) (*entities.AggregatedStats, error) {
	return s.repo.Aggregate(ctx, filters)
}

// FilterOptions returns the catalog of distinct filterable values.
func (s *SurveyService) FilterOptions(ctx context.Context) (*entities.FilterOptions, error) {
	return s.repo.FilterOptions(ctx)
}

// Submit validates a raw survey submission and stores it. The stored row,
// including its assigned id and server timestamp, is returned.
func (s *SurveyService) Submit(ctx context.Context, payload map[string]interface{}) (*entities.SurveyResponse, error) {
	response, err := parseSubmission(payload)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, response)
}

// parseSubmission checks every required field in order and builds the typed
// response. Numeric fields accept JSON numbers or numeric strings.
func parseSubmission(payload map[string]interface{}) (*entities.SurveyResponse, error) {
	values := make(map[string]string, len(submissionFields))
	ints := make(map[string]int, len(integerFields))

	for _, field := range submissionFields {
		raw, ok := payload[field]
		if !ok || raw == nil {
			return nil, errors.NewFieldValidationError(field, fmt.Sprintf("Missing required field: %s", field))
		}

		if integerFields[field] {
			n, err := parseIntValue(raw)
			if err != nil {
				return nil, errors.NewFieldValidationError(field, fmt.Sprintf("Field must be a non-negative integer: %s", field))
			}
			ints[field] = n
			continue
		}

		str, ok := raw.(string)
		if !ok || strings.TrimSpace(str) == "" {
			return nil, errors.NewFieldValidationError(field, fmt.Sprintf("Missing required field: %s", field))
		}
		values[field] = strings.TrimSpace(str)
	}

	return &entities.SurveyResponse{
		TotalApplications:   ints["total_applications"],
		TotalResponses:      ints["total_responses"],
		TotalFirstRound:     ints["total_first_round"],
		TotalFinalRound:     ints["total_final_round"],
		TotalOffers:         ints["total_offers"],
		Major:               values["major"],
		Degree:              values["degree"],
		SchoolTier:          values["school_tier"],
		GPARange:            values["gpa_range"],
		GraduatingTime:      values["graduating_time"],
		InternshipCount:     ints["internship_count"],
		HasReturnOffer:      values["has_return_offer"],
		NeedsSponsorship:    values["needs_sponsorship"],
		WhenStartedApplying: values["when_started_applying"],
	}, nil
}

func parseIntValue(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case json.Number:
		n, err := strconv.Atoi(v.String())
		if err != nil || n < 0 {
			return 0, fmt.Errorf("not a non-negative integer: %v", raw)
		}
		return n, nil
	case float64:
		n := int(v)
		if float64(n) != v || n < 0 {
			return 0, fmt.Errorf("not a non-negative integer: %v", raw)
		}
		return n, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return 0, fmt.Errorf("not a non-negative integer: %v", raw)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("not a non-negative integer: %v", raw)
	}
}
