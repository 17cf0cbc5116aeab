package entities

import "time"

// SurveyResponse is one anonymous job-search survey submission.
// Rows are immutable after insert; id and timestamp are assigned by the store.
type SurveyResponse struct {
	ID int64 `json:"id" db:"id"`

	// Application funnel counts
	TotalApplications int `json:"total_applications" db:"total_applications"`
	TotalResponses    int `json:"total_responses" db:"total_responses"`
	TotalFirstRound   int `json:"total_first_round" db:"total_first_round"`
	TotalFinalRound   int `json:"total_final_round" db:"total_final_round"`
	TotalOffers       int `json:"total_offers" db:"total_offers"`

	// Academic background
	Major          string `json:"major" db:"major"`
	Degree         string `json:"degree" db:"degree"`
	SchoolTier     string `json:"school_tier" db:"school_tier"`
	GPARange       string `json:"gpa_range" db:"gpa_range"`
	GraduatingTime string `json:"graduating_time" db:"graduating_time"`

	// Experience
	InternshipCount int    `json:"internship_count" db:"internship_count"`
	HasReturnOffer  string `json:"has_return_offer" db:"has_return_offer"`

	// Job search details
	NeedsSponsorship    string `json:"needs_sponsorship" db:"needs_sponsorship"`
	WhenStartedApplying string `json:"when_started_applying" db:"when_started_applying"`

	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// Canonical descriptive phrases for the two enum-like columns. Legacy rows
// imported from the spreadsheet era stored raw booleans; the migrate command
// rewrites those into these phrases and the API only ever deals in phrases.
const (
	ReturnOfferStillSearching = "Yes, but I'm still searching..."
	ReturnOfferNone           = "No, I don't have a return offer"

	SponsorshipRequired  = "Yes, I need sponsorship"
	SponsorshipCitizen   = "No, US citizen"
	SponsorshipPermanent = "No, permanent resident"
)

// DashboardFilters is a transient query object. Zero values mean
// "no restriction"; InternshipCount is a pointer since 0 is a valid filter.
type DashboardFilters struct {
	Major               string
	Degree              string
	SchoolTier          string
	GPARange            string
	GraduatingTime      string
	WhenStartedApplying string
	InternshipCount     *int
	NeedsSponsorship    string
	HasReturnOffer      string
}

// IsEmpty reports whether no filter is set.
func (f DashboardFilters) IsEmpty() bool {
	return f.Major == "" &&
		f.Degree == "" &&
		f.SchoolTier == "" &&
		f.GPARange == "" &&
		f.GraduatingTime == "" &&
		f.WhenStartedApplying == "" &&
		f.InternshipCount == nil &&
		f.NeedsSponsorship == "" &&
		f.HasReturnOffer == ""
}

// AggregatedStats is the derived dashboard view over the filtered set.
// Rates are means of per-row conversion ratios expressed as percentages,
// never ratios of column sums, and every division is zero-guarded so an
// empty set yields zeros rather than NULL or NaN.
type AggregatedStats struct {
	TotalSurveyCount int     `json:"total_survey_count"`
	AvgApplications  float64 `json:"avg_applications"`
	AvgResponses     float64 `json:"avg_responses"`
	AvgFirstRound    float64 `json:"avg_first_round"`
	AvgFinalRound    float64 `json:"avg_final_round"`
	AvgOffers        float64 `json:"avg_offers"`
	ResponseRate     float64 `json:"response_rate"`
	FirstRoundRate   float64 `json:"first_round_rate"`
	FinalRoundRate   float64 `json:"final_round_rate"`
	OfferRate        float64 `json:"offer_rate"`
}

// FilterOptions lists the distinct stored values per filterable column,
// each in ascending lexical order, for populating dashboard dropdowns.
type FilterOptions struct {
	Majors              []string `json:"majors"`
	Degrees             []string `json:"degrees"`
	SchoolTiers         []string `json:"schoolTiers"`
	GPARanges           []string `json:"gpaRanges"`
	GraduatingTimes     []string `json:"graduatingTimes"`
	WhenStartedApplying []string `json:"whenStartedApplying"`
}
