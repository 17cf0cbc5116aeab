package services

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/offerfunnel/offerfunnel/backend/internal/domain/entities"
	"github.com/offerfunnel/offerfunnel/backend/internal/domain/repositories"
	"github.com/offerfunnel/offerfunnel/backend/internal/infrastructure/clients/sheets"
	"github.com/offerfunnel/offerfunnel/backend/pkg/retry"
)

// Sheet column layout, zero-based. Column 0 holds the form timestamp, which
// the store replaces with its own insert timestamp.
const (
	colTotalApplications = 1
	colTotalResponses    = 2
	colTotalFirstRound   = 3
	colTotalFinalRound   = 4
	colTotalOffers       = 5
	colMajor             = 6
	colSchoolTier        = 7
	colDegree            = 8
	colInternships       = 9
	colHasReturnOffer    = 10
	colNeedsSponsorship  = 11
	colGraduatingTime    = 12
	colGPARange          = 13
	colWhenStarted       = 14
)

var leadingNumber = regexp.MustCompile(`\d+`)

// ImportReport summarizes one import run.
type ImportReport struct {
	BatchID  string
	Fetched  int
	Imported int
	Failed   int
}

// ImportService loads survey rows from the published spreadsheet and stores
// them as survey responses.
type ImportService struct {
	repo       repositories.SurveyRepository
	source     sheets.Client
	fetchRetry retry.Config
}

// NewImportService creates a new import service.
func NewImportService(repo repositories.SurveyRepository, source sheets.Client) *ImportService {
	return &ImportService{
		repo:   repo,
		source: source,
		fetchRetry: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  time.Second,
			MaxDelay:      10 * time.Second,
			BackoffFactor: 2.0,
		},
	}
}

// Run fetches every sheet row, normalizes it, and inserts it. A row that
// fails to insert is logged and counted but does not stop the run.
func (s *ImportService) Run(ctx context.Context) (*ImportReport, error) {
	var rows [][]string
	err := retry.Do(ctx, s.fetchRetry, "Google Sheets", func() error {
		var fetchErr error
		rows, fetchErr = s.source.FetchRows(ctx)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}

	report := &ImportReport{BatchID: uuid.New().String(), Fetched: len(rows)}
	for i, row := range rows {
		response := normalizeSheetRow(row)
		if _, err := s.repo.Create(ctx, response); err != nil {
			report.Failed++
			log.Error().Err(err).Str("batch_id", report.BatchID).Int("row", i+2).Msg("failed to import sheet row")
			continue
		}
		report.Imported++
	}

	log.Info().
		Str("batch_id", report.BatchID).
		Int("fetched", report.Fetched).
		Int("imported", report.Imported).
		Int("failed", report.Failed).
		Msg("sheet import finished")

	return report, nil
}

// normalizeSheetRow maps one raw spreadsheet row onto a survey response.
// Blank categorical cells become "Unknown" and unparseable counts become 0,
// so a partially filled form still yields a storable row.
func normalizeSheetRow(row []string) *entities.SurveyResponse {
	return &entities.SurveyResponse{
		TotalApplications:   cellInt(row, colTotalApplications),
		TotalResponses:      cellInt(row, colTotalResponses),
		TotalFirstRound:     cellInt(row, colTotalFirstRound),
		TotalFinalRound:     cellInt(row, colTotalFinalRound),
		TotalOffers:         cellInt(row, colTotalOffers),
		Major:               cellText(row, colMajor),
		Degree:              cellText(row, colDegree),
		SchoolTier:          cellText(row, colSchoolTier),
		GPARange:            cellText(row, colGPARange),
		GraduatingTime:      cellText(row, colGraduatingTime),
		InternshipCount:     cellInternships(row),
		HasReturnOffer:      normalizeReturnOffer(cell(row, colHasReturnOffer)),
		NeedsSponsorship:    normalizeSponsorship(cell(row, colNeedsSponsorship)),
		WhenStartedApplying: cellText(row, colWhenStarted),
	}
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func cellText(row []string, idx int) string {
	if v := cell(row, idx); v != "" {
		return v
	}
	return "Unknown"
}

// cellInt parses the leading integer of a cell, so "120 applications" and
// "120" both read as 120. Anything else reads as 0.
func cellInt(row []string, idx int) int {
	v := cell(row, idx)
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		return n
	}
	if match := leadingNumber.FindString(v); match != "" {
		n, _ := strconv.Atoi(match)
		return n
	}
	return 0
}

// cellInternships parses answers like "0 internships", "1 internship" or
// "2+ internships" down to their count.
func cellInternships(row []string) int {
	if match := leadingNumber.FindString(cell(row, colInternships)); match != "" {
		n, _ := strconv.Atoi(match)
		return n
	}
	return 0
}

// normalizeReturnOffer keeps descriptive form answers as written and maps
// bare yes/no style answers onto the canonical phrases.
func normalizeReturnOffer(v string) string {
	switch strings.ToLower(v) {
	case "", "no", "false", "f":
		return entities.ReturnOfferNone
	case "yes", "true", "t":
		return entities.ReturnOfferStillSearching
	default:
		return v
	}
}

func normalizeSponsorship(v string) string {
	switch strings.ToLower(v) {
	case "", "no", "false", "f":
		return entities.SponsorshipCitizen
	case "yes", "true", "t":
		return entities.SponsorshipRequired
	default:
		return v
	}
}
