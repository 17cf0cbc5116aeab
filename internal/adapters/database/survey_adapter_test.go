package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offerfunnel/offerfunnel/backend/internal/domain/entities"
	"github.com/offerfunnel/offerfunnel/backend/internal/infrastructure/clients/postgres"
)

func newMockAdapter(t *testing.T) (*SurveyAdapter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	adapter := NewSurveyAdapter(postgres.NewClientFromDB(db)).(*SurveyAdapter)
	return adapter, mock
}

func surveyColumnNames() []string {
	names := make([]string, len(surveyColumns))
	for i, col := range surveyColumns {
		names[i] = col.(string)
	}
	return names
}

func TestFilterExpressions_Empty(t *testing.T) {
	exprs := filterExpressions(entities.DashboardFilters{})
	assert.Empty(t, exprs)
}

func TestFilterExpressions_AllFieldsPresent(t *testing.T) {
	count := 3
	filters := entities.DashboardFilters{
		Major:               "Computer Science",
		Degree:              "Bachelor's",
		SchoolTier:          "Target",
		GPARange:            "3.5-3.7",
		GraduatingTime:      "May 2024",
		WhenStartedApplying: "August 2023",
		InternshipCount:     &count,
		NeedsSponsorship:    "sponsorship",
		HasReturnOffer:      "searching",
	}

	exprs := filterExpressions(filters)
	assert.Len(t, exprs, 9)
}

func TestSurveyAdapter_List_NoFilters(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	now := time.Now()
	earlier := now.Add(-time.Hour)

	rows := sqlmock.NewRows(surveyColumnNames()).
		AddRow(2, 50, 0, 0, 0, 0, "Economics", "Master's", "Reach", "3.7-4.0", "May 2024", 0, entities.ReturnOfferNone, entities.SponsorshipCitizen, "January 2024", now).
		AddRow(1, 100, 10, 5, 2, 1, "Computer Science", "Bachelor's", "Target", "3.5-3.7", "May 2024", 2, entities.ReturnOfferStillSearching, entities.SponsorshipRequired, "August 2023", earlier)

	mock.ExpectQuery(`SELECT .+ FROM "survey_responses" ORDER BY "timestamp" DESC, "id" DESC`).
		WillReturnRows(rows)

	responses, err := adapter.List(context.Background(), entities.DashboardFilters{})
	require.NoError(t, err)
	require.Len(t, responses, 2)

	assert.Equal(t, int64(2), responses[0].ID)
	assert.Equal(t, "Economics", responses[0].Major)
	assert.Equal(t, int64(1), responses[1].ID)
	assert.Equal(t, 100, responses[1].TotalApplications)
	assert.Equal(t, entities.ReturnOfferStillSearching, responses[1].HasReturnOffer)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSurveyAdapter_List_ExactMatchAndSubstringFilters(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	rows := sqlmock.NewRows(surveyColumnNames()).
		AddRow(1, 100, 10, 5, 2, 1, "Computer Science", "Bachelor's", "Target", "3.5-3.7", "May 2024", 2, entities.ReturnOfferStillSearching, entities.SponsorshipRequired, "August 2023", time.Now())

	// major is exact equality; has_return_offer matches case-insensitively
	// on substring, so "searching" hits the full stored phrase
	mock.ExpectQuery(`SELECT .+ FROM "survey_responses" WHERE \(\("major" = \$1\) AND \("has_return_offer" ILIKE \$2\)\) ORDER BY "timestamp" DESC, "id" DESC`).
		WithArgs("Computer Science", "%searching%").
		WillReturnRows(rows)

	responses, err := adapter.List(context.Background(), entities.DashboardFilters{
		Major:          "Computer Science",
		HasReturnOffer: "searching",
	})
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSurveyAdapter_List_EmptyResult(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(`SELECT .+ FROM "survey_responses"`).
		WillReturnRows(sqlmock.NewRows(surveyColumnNames()))

	responses, err := adapter.List(context.Background(), entities.DashboardFilters{})
	require.NoError(t, err)
	assert.NotNil(t, responses)
	assert.Empty(t, responses)
}

var aggregateColumns = []string{
	"total_survey_count",
	"avg_applications",
	"avg_responses",
	"avg_first_round",
	"avg_final_round",
	"avg_offers",
	"response_rate",
	"first_round_rate",
	"final_round_rate",
	"offer_rate",
}

func TestSurveyAdapter_Aggregate_RatesAreMeansOfPerRowRatios(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	// Two stored rows: (100 apps, 10 responses, 5, 2, 1) and (50, 0, 0, 0, 0).
	// The per-row ratio definition gives first_round_rate
	// mean(5/100, 0/50)*100 = 2.5, not 5/150*100.
	rows := sqlmock.NewRows(aggregateColumns).
		AddRow(2, 75.00, 5.00, 2.50, 1.00, 0.50, 50.00, 2.50, 20.00, 25.00)

	mock.ExpectQuery(`SELECT COUNT\(\*\) AS "total_survey_count", .*CASE WHEN total_responses > 0 THEN 1\.0 ELSE 0\.0 END.*CASE WHEN total_applications > 0 THEN total_first_round::NUMERIC / total_applications ELSE 0 END.*CASE WHEN total_first_round > 0 THEN total_final_round::NUMERIC / total_first_round ELSE 0 END.*CASE WHEN total_final_round > 0 THEN total_offers::NUMERIC / total_final_round ELSE 0 END.* FROM "survey_responses"`).
		WillReturnRows(rows)

	stats, err := adapter.Aggregate(context.Background(), entities.DashboardFilters{})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalSurveyCount)
	assert.InDelta(t, 75.0, stats.AvgApplications, 0.001)
	assert.InDelta(t, 50.0, stats.ResponseRate, 0.001)
	assert.InDelta(t, 2.5, stats.FirstRoundRate, 0.001)
	assert.InDelta(t, 20.0, stats.FinalRoundRate, 0.001)
	assert.InDelta(t, 25.0, stats.OfferRate, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSurveyAdapter_Aggregate_EmptySetYieldsZeros(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	// COALESCE in the query turns the empty-set NULL averages into 0
	rows := sqlmock.NewRows(aggregateColumns).
		AddRow(0, 0, 0, 0, 0, 0, 0, 0, 0, 0)

	mock.ExpectQuery(`SELECT COUNT\(\*\) AS "total_survey_count", .*COALESCE\(AVG\(total_applications\), 0\).* FROM "survey_responses" WHERE \("major" = \$1\)`).
		WithArgs("Underwater Basket Weaving").
		WillReturnRows(rows)

	stats, err := adapter.Aggregate(context.Background(), entities.DashboardFilters{Major: "Underwater Basket Weaving"})
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalSurveyCount)
	assert.Zero(t, stats.AvgApplications)
	assert.Zero(t, stats.ResponseRate)
	assert.Zero(t, stats.OfferRate)
}

func TestSurveyAdapter_Aggregate_SameFiltersSameQuery(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	for i := 0; i < 2; i++ {
		rows := sqlmock.NewRows(aggregateColumns).
			AddRow(3, 80.00, 6.00, 3.00, 1.00, 0.33, 66.67, 4.00, 18.00, 12.00)
		mock.ExpectQuery(`SELECT .+ FROM "survey_responses" WHERE \("degree" = \$1\)`).
			WithArgs("PhD").
			WillReturnRows(rows)
	}

	filters := entities.DashboardFilters{Degree: "PhD"}
	first, err := adapter.Aggregate(context.Background(), filters)
	require.NoError(t, err)
	second, err := adapter.Aggregate(context.Background(), filters)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSurveyAdapter_Create_ReturnsStoredRow(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	returned := sqlmock.NewRows(surveyColumnNames()).
		AddRow(42, 100, 10, 5, 2, 1, "Computer Science", "Bachelor's", "Target", "3.5-3.7", "May 2024", 2, entities.ReturnOfferStillSearching, entities.SponsorshipRequired, "August 2023", ts)

	mock.ExpectQuery(`INSERT INTO "survey_responses" .+ RETURNING "id"`).
		WillReturnRows(returned)

	input := &entities.SurveyResponse{
		TotalApplications:   100,
		TotalResponses:      10,
		TotalFirstRound:     5,
		TotalFinalRound:     2,
		TotalOffers:         1,
		Major:               "Computer Science",
		Degree:              "Bachelor's",
		SchoolTier:          "Target",
		GPARange:            "3.5-3.7",
		GraduatingTime:      "May 2024",
		InternshipCount:     2,
		HasReturnOffer:      entities.ReturnOfferStillSearching,
		NeedsSponsorship:    entities.SponsorshipRequired,
		WhenStartedApplying: "August 2023",
	}

	stored, err := adapter.Create(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, int64(42), stored.ID)
	assert.Equal(t, ts, stored.Timestamp)
	assert.Equal(t, input.TotalApplications, stored.TotalApplications)
	assert.Equal(t, input.WhenStartedApplying, stored.WhenStartedApplying)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSurveyAdapter_Create_NilResponse(t *testing.T) {
	adapter, _ := newMockAdapter(t)

	_, err := adapter.Create(context.Background(), nil)
	assert.Error(t, err)
}

func TestSurveyAdapter_FilterOptions(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	distinct := map[string][]string{
		"major":                 {"Computer Science", "Economics"},
		"degree":                {"Bachelor's", "Master's", "PhD"},
		"school_tier":           {"Reach", "Safety", "Target"},
		"gpa_range":             {"3.5-3.7", "3.7-4.0"},
		"graduating_time":       {"December 2024", "May 2024"},
		"when_started_applying": {"August 2023", "January 2024"},
	}

	// one DISTINCT query per filterable column, in declaration order
	for _, column := range []string{"major", "degree", "school_tier", "gpa_range", "graduating_time", "when_started_applying"} {
		rows := sqlmock.NewRows([]string{column})
		for _, value := range distinct[column] {
			rows.AddRow(value)
		}
		mock.ExpectQuery(`SELECT DISTINCT "` + column + `" FROM "survey_responses" ORDER BY "` + column + `" ASC`).
			WillReturnRows(rows)
	}

	options, err := adapter.FilterOptions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, distinct["major"], options.Majors)
	assert.Equal(t, distinct["degree"], options.Degrees)
	assert.Equal(t, distinct["school_tier"], options.SchoolTiers)
	assert.Equal(t, distinct["gpa_range"], options.GPARanges)
	assert.Equal(t, distinct["graduating_time"], options.GraduatingTimes)
	assert.Equal(t, distinct["when_started_applying"], options.WhenStartedApplying)
	assert.NoError(t, mock.ExpectationsWereMet())
}
