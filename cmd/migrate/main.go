package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/offerfunnel/offerfunnel/backend/internal/infrastructure/clients/postgres"
	"github.com/offerfunnel/offerfunnel/backend/internal/infrastructure/observability"
	"github.com/offerfunnel/offerfunnel/backend/pkg/config"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS survey_responses (
	id SERIAL PRIMARY KEY,
	total_applications INTEGER NOT NULL,
	total_responses INTEGER NOT NULL,
	total_first_round INTEGER NOT NULL,
	total_final_round INTEGER NOT NULL,
	total_offers INTEGER NOT NULL,
	major VARCHAR(100) NOT NULL,
	degree VARCHAR(100) NOT NULL,
	school_tier VARCHAR(150) NOT NULL,
	gpa_range VARCHAR(50) NOT NULL,
	graduating_time VARCHAR(100) NOT NULL,
	internship_count INTEGER NOT NULL,
	has_return_offer VARCHAR(100) NOT NULL,
	needs_sponsorship VARCHAR(100) NOT NULL,
	when_started_applying VARCHAR(100) NOT NULL,
	timestamp TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
	created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
)`

// One index per filterable column, plus timestamp for the newest-first listing.
var createIndexSQL = []string{
	`CREATE INDEX IF NOT EXISTS idx_survey_major ON survey_responses(major)`,
	`CREATE INDEX IF NOT EXISTS idx_survey_degree ON survey_responses(degree)`,
	`CREATE INDEX IF NOT EXISTS idx_survey_school_tier ON survey_responses(school_tier)`,
	`CREATE INDEX IF NOT EXISTS idx_survey_gpa_range ON survey_responses(gpa_range)`,
	`CREATE INDEX IF NOT EXISTS idx_survey_needs_sponsorship ON survey_responses(needs_sponsorship)`,
	`CREATE INDEX IF NOT EXISTS idx_survey_has_return_offer ON survey_responses(has_return_offer)`,
	`CREATE INDEX IF NOT EXISTS idx_survey_timestamp ON survey_responses(timestamp DESC)`,
}

// Older exports stored bare booleans in the categorical answer columns. The
// API serves the descriptive phrases, so rewrite any leftovers in place.
var normalizeLegacySQL = []string{
	`UPDATE survey_responses
	SET has_return_offer = CASE
		WHEN has_return_offer IN ('true', 't', 'yes') THEN 'Yes, but I''m still searching...'
		WHEN has_return_offer IN ('false', 'f', 'no') THEN 'No, I don''t have a return offer'
		ELSE has_return_offer
	END
	WHERE has_return_offer IN ('true', 'false', 't', 'f', 'yes', 'no')`,
	`UPDATE survey_responses
	SET needs_sponsorship = CASE
		WHEN needs_sponsorship IN ('true', 't', 'yes') THEN 'Yes, I need sponsorship'
		WHEN needs_sponsorship IN ('false', 'f', 'no') THEN 'No, US citizen'
		ELSE needs_sponsorship
	END
	WHERE needs_sponsorship IN ('true', 'false', 't', 'f', 'yes', 'no')`,
}

func main() {
	var checkOnly bool
	flag.BoolVar(&checkOnly, "check", false, "Print the answer distribution without migrating")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	observability.InitLogger("offerfunnel-migrate", cfg.Server.Env)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db := pgClient.DB()

	if checkOnly {
		if err := printDistribution(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("distribution check failed")
		}
		return
	}

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		log.Fatal().Err(err).Msg("failed to create survey_responses table")
	}
	log.Info().Msg("survey_responses table ready")

	for _, stmt := range createIndexSQL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Fatal().Err(err).Str("statement", stmt).Msg("failed to create index")
		}
	}
	log.Info().Int("indexes", len(createIndexSQL)).Msg("indexes ready")

	for _, stmt := range normalizeLegacySQL {
		result, err := db.ExecContext(ctx, stmt)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to normalize legacy answers")
		}
		if rows, err := result.RowsAffected(); err == nil && rows > 0 {
			log.Info().Int64("rows", rows).Msg("rewrote legacy boolean answers")
		}
	}

	if err := printDistribution(ctx, db); err != nil {
		log.Warn().Err(err).Msg("failed to print answer distribution")
	}

	log.Info().Msg("migration complete")
}

// printDistribution logs how the return-offer and sponsorship answers are
// distributed, which makes leftover legacy values easy to spot.
func printDistribution(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `
		SELECT has_return_offer, needs_sponsorship, COUNT(*) AS count
		FROM survey_responses
		GROUP BY has_return_offer, needs_sponsorship
		ORDER BY count DESC`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var returnOffer, sponsorship string
		var count int
		if err := rows.Scan(&returnOffer, &sponsorship, &count); err != nil {
			return err
		}
		log.Info().
			Str("has_return_offer", returnOffer).
			Str("needs_sponsorship", sponsorship).
			Int("count", count).
			Msg("answer distribution")
	}
	return rows.Err()
}
