// Package main is the schema migration tool for the review service.
//
// Database settings come from the same REVIEWQ_* environment variables
// the server reads, so the tool can run against any environment the
// server can. Exactly one action flag must be given per invocation.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/datasetforge/review-service/internal/config"
	"github.com/datasetforge/review-service/internal/database"
	"github.com/datasetforge/review-service/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	up := flag.Bool("up", false, "Apply all pending schema migrations")
	down := flag.Bool("down", false, "Roll back every applied migration")
	steps := flag.Int("steps", 0, "Apply N migrations (negative rolls back)")
	version := flag.Bool("version", false, "Report the applied schema version")
	force := flag.Int("force", -1, "Mark the schema as being at version V without running anything")
	dir := flag.String("path", "", "Migrations directory (defaults to REVIEWQ_DATABASE_MIGRATION_PATH)")
	flag.Parse()

	actions := 0
	for _, set := range []bool{*up, *down, *steps != 0, *version, *force >= 0} {
		if set {
			actions++
		}
	}
	if actions != 1 {
		flag.Usage()
		fmt.Fprintln(os.Stderr, "\nProvide exactly one of: -up, -down, -steps N, -version, -force V")
		return fmt.Errorf("expected one action, got %d", actions)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Console output regardless of the configured server format; this
	// tool is run by hand.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	})
	logger = logger.With().Str("component", "migrate").Logger()

	migrationDir := cfg.Database.MigrationPath
	if *dir != "" {
		migrationDir = *dir
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	migrator, err := database.NewMigrator(db, migrationDir, logger)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Error().Err(closeErr).Msg("failed to close migrator")
		}
	}()

	switch {
	case *up:
		if err := migrator.Up(); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
	case *down:
		logger.Warn().Msg("rolling back the entire review schema")
		if err := migrator.Down(); err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
	case *steps != 0:
		if err := migrator.Steps(*steps); err != nil {
			return fmt.Errorf("migrate steps: %w", err)
		}
	case *force >= 0:
		logger.Warn().Int("version", *force).Msg("overriding recorded schema version")
		if err := migrator.Force(*force); err != nil {
			return fmt.Errorf("force version: %w", err)
		}
	}

	reportVersion(migrator, logger)
	return nil
}

func reportVersion(migrator *database.Migrator, logger zerolog.Logger) {
	v, dirty, err := migrator.Version()
	if err != nil {
		logger.Warn().Err(err).Msg("schema version unknown")
		return
	}
	logger.Info().
		Uint("version", v).
		Bool("dirty", dirty).
		Msg("review schema version")
}
