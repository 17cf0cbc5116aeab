package database

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/offerfunnel/offerfunnel/backend/internal/domain/entities"
	"github.com/offerfunnel/offerfunnel/backend/internal/domain/repositories"
	"github.com/offerfunnel/offerfunnel/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/offerfunnel/offerfunnel/backend/pkg/errors"
)

const surveyTable = "survey_responses"

var surveyColumns = []interface{}{
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

// SurveyAdapter implements SurveyRepository on Postgres
type SurveyAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSurveyAdapter creates a new survey adapter
func NewSurveyAdapter(client *postgres.Client) repositories.SurveyRepository {
	return &SurveyAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// filterExpressions translates the optional filter fields into an ordered
// list of predicates, all combined with AND by the caller. Categorical
// fields match exactly; the two descriptive-phrase fields match by
// case-insensitive substring, since the filter value is usually a shorter
// canonical label contained within the stored phrase. Values are always
// bound parameters.
func filterExpressions(f entities.DashboardFilters) []goqu.Expression {
	var exprs []goqu.Expression

	if f.Major != "" {
		exprs = append(exprs, goqu.C("major").Eq(f.Major))
	}
	if f.Degree != "" {
		exprs = append(exprs, goqu.C("degree").Eq(f.Degree))
	}
	if f.SchoolTier != "" {
		exprs = append(exprs, goqu.C("school_tier").Eq(f.SchoolTier))
	}
	if f.GPARange != "" {
		exprs = append(exprs, goqu.C("gpa_range").Eq(f.GPARange))
	}
	if f.GraduatingTime != "" {
		exprs = append(exprs, goqu.C("graduating_time").Eq(f.GraduatingTime))
	}
	if f.WhenStartedApplying != "" {
		exprs = append(exprs, goqu.C("when_started_applying").Eq(f.WhenStartedApplying))
	}
	if f.InternshipCount != nil {
		exprs = append(exprs, goqu.C("internship_count").Eq(*f.InternshipCount))
	}
	if f.NeedsSponsorship != "" {
		exprs = append(exprs, goqu.C("needs_sponsorship").ILike("%"+f.NeedsSponsorship+"%"))
	}
	if f.HasReturnOffer != "" {
		exprs = append(exprs, goqu.C("has_return_offer").ILike("%"+f.HasReturnOffer+"%"))
	}

	return exprs
}

// List retrieves survey responses matching the filters, newest first.
// The id tie-breaker keeps ordering stable for rows sharing a timestamp.
func (a *SurveyAdapter) List(ctx context.Context, filters entities.DashboardFilters) ([]*entities.SurveyResponse, error) {
	ds := a.db.From(surveyTable).Prepared(true).Select(surveyColumns...)
	if exprs := filterExpressions(filters); len(exprs) > 0 {
		ds = ds.Where(exprs...)
	}
	ds = ds.Order(goqu.I("timestamp").Desc(), goqu.I("id").Desc())

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list survey responses", err)
	}
	defer rows.Close()

	responses := []*entities.SurveyResponse{}
	for rows.Next() {
		response := &entities.SurveyResponse{}
		err := rows.Scan(
			&response.ID,
			&response.TotalApplications,
			&response.TotalResponses,
			&response.TotalFirstRound,
			&response.TotalFinalRound,
			&response.TotalOffers,
			&response.Major,
			&response.Degree,
			&response.SchoolTier,
			&response.GPARange,
			&response.GraduatingTime,
			&response.InternshipCount,
			&response.HasReturnOffer,
			&response.NeedsSponsorship,
			&response.WhenStartedApplying,
			&response.Timestamp,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan survey response", err)
		}
		responses = append(responses, response)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating survey responses", err)
	}

	return responses, nil
}

// Aggregate computes the dashboard statistics over the filtered set in one
// query. The three funnel rates are means of per-row ratios with CASE
// guards on the denominators; COALESCE turns the empty-set NULLs into 0 so
// an unmatched filter never yields NaN.
func (a *SurveyAdapter) Aggregate(ctx context.Context, filters entities.DashboardFilters) (*entities.AggregatedStats, error) {
	ds := a.db.From(surveyTable).Prepared(true).Select(
		goqu.COUNT(goqu.Star()).As("total_survey_count"),
		goqu.L("COALESCE(AVG(total_applications), 0)::NUMERIC(10,2)").As("avg_applications"),
		goqu.L("COALESCE(AVG(total_responses), 0)::NUMERIC(10,2)").As("avg_responses"),
		goqu.L("COALESCE(AVG(total_first_round), 0)::NUMERIC(10,2)").As("avg_first_round"),
		goqu.L("COALESCE(AVG(total_final_round), 0)::NUMERIC(10,2)").As("avg_final_round"),
		goqu.L("COALESCE(AVG(total_offers), 0)::NUMERIC(10,2)").As("avg_offers"),
		goqu.L("COALESCE(AVG(CASE WHEN total_responses > 0 THEN 1.0 ELSE 0.0 END) * 100, 0)::NUMERIC(10,2)").As("response_rate"),
		goqu.L("COALESCE(AVG(CASE WHEN total_applications > 0 THEN total_first_round::NUMERIC / total_applications ELSE 0 END) * 100, 0)::NUMERIC(10,2)").As("first_round_rate"),
		goqu.L("COALESCE(AVG(CASE WHEN total_first_round > 0 THEN total_final_round::NUMERIC / total_first_round ELSE 0 END) * 100, 0)::NUMERIC(10,2)").As("final_round_rate"),
		goqu.L("COALESCE(AVG(CASE WHEN total_final_round > 0 THEN total_offers::NUMERIC / total_final_round ELSE 0 END) * 100, 0)::NUMERIC(10,2)").As("offer_rate"),
	)
	if exprs := filterExpressions(filters); len(exprs) > 0 {
		ds = ds.Where(exprs...)
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build aggregate query", err)
	}

	stats := &entities.AggregatedStats{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&stats.TotalSurveyCount,
		&stats.AvgApplications,
		&stats.AvgResponses,
		&stats.AvgFirstRound,
		&stats.AvgFinalRound,
		&stats.AvgOffers,
		&stats.ResponseRate,
		&stats.FirstRoundRate,
		&stats.FinalRoundRate,
		&stats.OfferRate,
	)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to aggregate survey responses", err)
	}

	return stats, nil
}

// Create inserts one survey response and returns the stored row with the
// store-assigned id and timestamp.
func (a *SurveyAdapter) Create(ctx context.Context, response *entities.SurveyResponse) (*entities.SurveyResponse, error) {
	if response == nil {
		return nil, apperrors.NewInternalError("survey response is nil", fmt.Errorf("survey response is nil"))
	}

	record := goqu.Record{
		"total_applications":    response.TotalApplications,
		"total_responses":       response.TotalResponses,
		"total_first_round":     response.TotalFirstRound,
		"total_final_round":     response.TotalFinalRound,
		"total_offers":          response.TotalOffers,
		"major":                 response.Major,
		"degree":                response.Degree,
		"school_tier":           response.SchoolTier,
		"gpa_range":             response.GPARange,
		"graduating_time":       response.GraduatingTime,
		"internship_count":      response.InternshipCount,
		"has_return_offer":      response.HasReturnOffer,
		"needs_sponsorship":     response.NeedsSponsorship,
		"when_started_applying": response.WhenStartedApplying,
	}

	query, args, err := a.db.Insert(surveyTable).Prepared(true).Rows(record).Returning(surveyColumns...).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build survey insert query", err)
	}

	stored := &entities.SurveyResponse{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&stored.ID,
		&stored.TotalApplications,
		&stored.TotalResponses,
		&stored.TotalFirstRound,
		&stored.TotalFinalRound,
		&stored.TotalOffers,
		&stored.Major,
		&stored.Degree,
		&stored.SchoolTier,
		&stored.GPARange,
		&stored.GraduatingTime,
		&stored.InternshipCount,
		&stored.HasReturnOffer,
		&stored.NeedsSponsorship,
		&stored.WhenStartedApplying,
		&stored.Timestamp,
	)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to create survey response", err)
	}

	return stored, nil
}

// FilterOptions returns the distinct stored values for each filterable
// categorical column, ascending. Only values actually submitted appear;
// canonical option lists live in the UI layer.
func (a *SurveyAdapter) FilterOptions(ctx context.Context) (*entities.FilterOptions, error) {
	options := &entities.FilterOptions{}

	targets := []struct {
		column string
		dest   *[]string
	}{
		{"major", &options.Majors},
		{"degree", &options.Degrees},
		{"school_tier", &options.SchoolTiers},
		{"gpa_range", &options.GPARanges},
		{"graduating_time", &options.GraduatingTimes},
		{"when_started_applying", &options.WhenStartedApplying},
	}

	for _, target := range targets {
		values, err := a.distinctValues(ctx, target.column)
		if err != nil {
			return nil, err
		}
		*target.dest = values
	}

	return options, nil
}

func (a *SurveyAdapter) distinctValues(ctx context.Context, column string) ([]string, error) {
	query, args, err := a.db.From(surveyTable).
		Prepared(true).
		SelectDistinct(goqu.C(column)).
		Order(goqu.C(column).Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to build distinct query for %s", column), err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to get distinct values for %s", column), err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, apperrors.NewInternalError(fmt.Sprintf("failed to scan distinct value for %s", column), err)
		}
		values = append(values, value)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("error iterating distinct values for %s", column), err)
	}

	return values, nil
}
