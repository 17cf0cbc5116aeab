package repositories

import (
	"context"

	"github.com/offerfunnel/offerfunnel/backend/internal/domain/entities"
)

// SurveyRepository defines the interface for survey response storage.
// Every operation is a pure function of the store contents and its inputs;
// no state is carried between calls.
type SurveyRepository interface {
	// List returns all responses matching the filters, newest first
	// (timestamp descending, id descending as the stable tie-breaker).
	List(ctx context.Context, filters entities.DashboardFilters) ([]*entities.SurveyResponse, error)

	// Aggregate computes the dashboard statistics over the filtered set
	// in a single query.
	Aggregate(ctx context.Context, filters entities.DashboardFilters) (*entities.AggregatedStats, error)

	// Create inserts one response and returns the stored row including the
	// store-assigned id and timestamp.
	Create(ctx context.Context, response *entities.SurveyResponse) (*entities.SurveyResponse, error)

	// FilterOptions returns the distinct stored values per filterable column.
	FilterOptions(ctx context.Context) (*entities.FilterOptions, error)
}
