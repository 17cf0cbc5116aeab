package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/offerfunnel/offerfunnel/backend/internal/adapters/database"
	"github.com/offerfunnel/offerfunnel/backend/internal/application/services"
	"github.com/offerfunnel/offerfunnel/backend/internal/infrastructure/clients/postgres"
	"github.com/offerfunnel/offerfunnel/backend/internal/infrastructure/clients/sheets"
	"github.com/offerfunnel/offerfunnel/backend/internal/infrastructure/observability"
	"github.com/offerfunnel/offerfunnel/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	observability.InitLogger("offerfunnel-importer", cfg.Server.Env)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	sheetsClient, err := sheets.NewClient(&cfg.Sheets)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create sheets client")
	}

	repo := database.NewSurveyAdapter(pgClient)
	svc := services.NewImportService(repo, sheetsClient)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	start := time.Now()
	report, err := svc.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}

	log.Info().
		Dur("elapsed", time.Since(start)).
		Str("batch_id", report.BatchID).
		Int("fetched", report.Fetched).
		Int("imported", report.Imported).
		Int("failed", report.Failed).
		Msg("import complete")

	if report.Failed > 0 {
		os.Exit(1)
	}
}
