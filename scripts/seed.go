package main

import (
	"context"
	"log"
	"math/rand"
	"os"

	"github.com/offerfunnel/offerfunnel/backend/internal/adapters/database"
	"github.com/offerfunnel/offerfunnel/backend/internal/domain/entities"
	"github.com/offerfunnel/offerfunnel/backend/internal/infrastructure/clients/postgres"
	"github.com/offerfunnel/offerfunnel/backend/pkg/config"
)

var (
	majors = []string{
		"Computer Science", "Electrical Engineering", "Mechanical Engineering",
		"Mathematics", "Physics", "Economics", "Biology",
	}
	degrees     = []string{"Bachelor's", "Master's", "PhD"}
	schoolTiers = []string{"Top 10", "Top 20", "Top 50", "Top 100", "Other"}
	gpaRanges   = []string{"Below 3.0", "3.0-3.5", "3.5-4.0"}
	gradTimes   = []string{"Fall 2025", "Spring 2026", "Fall 2026", "Spring 2027"}
	whenStarted = []string{"June 2025", "July 2025", "August 2025", "September 2025", "October 2025"}
	returnOffer = []string{
		entities.ReturnOfferStillSearching,
		entities.ReturnOfferNone,
		"Yes, and I'm taking it",
	}
	sponsorship = []string{
		entities.SponsorshipRequired,
		entities.SponsorshipCitizen,
		entities.SponsorshipPermanent,
	}
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating survey_responses before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE survey_responses RESTART IDENTITY
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	repo := database.NewSurveyAdapter(pgClient)

	rng := rand.New(rand.NewSource(42))

	const rows = 200
	created := 0
	for i := 0; i < rows; i++ {
		applications := 20 + rng.Intn(280)
		responses := rng.Intn(applications + 1)
		firstRound := rng.Intn(responses + 1)
		finalRound := rng.Intn(firstRound + 1)
		offers := rng.Intn(finalRound + 1)

		response := &entities.SurveyResponse{
			TotalApplications:   applications,
			TotalResponses:      responses,
			TotalFirstRound:     firstRound,
			TotalFinalRound:     finalRound,
			TotalOffers:         offers,
			Major:               majors[rng.Intn(len(majors))],
			Degree:              degrees[rng.Intn(len(degrees))],
			SchoolTier:          schoolTiers[rng.Intn(len(schoolTiers))],
			GPARange:            gpaRanges[rng.Intn(len(gpaRanges))],
			GraduatingTime:      gradTimes[rng.Intn(len(gradTimes))],
			InternshipCount:     rng.Intn(4),
			HasReturnOffer:      returnOffer[rng.Intn(len(returnOffer))],
			NeedsSponsorship:    sponsorship[rng.Intn(len(sponsorship))],
			WhenStartedApplying: whenStarted[rng.Intn(len(whenStarted))],
		}

		if _, err := repo.Create(ctx, response); err != nil {
			log.Printf("Failed to create response %d: %v", i, err)
			continue
		}
		created++
	}

	log.Printf("Seeded %d survey responses", created)
}
