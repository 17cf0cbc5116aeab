package handlers

import (
	"net/http"
	"strconv"

	"github.com/offerfunnel/offerfunnel/backend/internal/domain/entities"
	apperrors "github.com/offerfunnel/offerfunnel/backend/pkg/errors"
)

// parseFilters reads the shared dashboard filter parameters from the query
// string. Absent parameters leave their filter unset.
func parseFilters(r *http.Request) (entities.DashboardFilters, error) {
	q := r.URL.Query()

	filters := entities.DashboardFilters{
		Major:               q.Get("major"),
		Degree:              q.Get("degree"),
		SchoolTier:          q.Get("school_tier"),
		GPARange:            q.Get("gpa_range"),
		GraduatingTime:      q.Get("graduating_time"),
		WhenStartedApplying: q.Get("when_started_applying"),
		HasReturnOffer:      q.Get("has_return_offer"),
		NeedsSponsorship:    q.Get("needs_sponsorship"),
	}

	if raw := q.Get("internship_count"); raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil || count < 0 {
			return entities.DashboardFilters{}, apperrors.NewFieldValidationError(
				"internship_count", "internship_count must be a non-negative integer")
		}
		filters.InternshipCount = &count
	}

	return filters, nil
}
