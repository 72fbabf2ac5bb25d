package review

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/datasetforge/review-service/internal/config"
	"github.com/datasetforge/review-service/internal/database"
)

// DB is the database handle the services operate on. It combines direct
// query execution with the ability to open transactions. Satisfied by
// *database.DB and by pgxmock pools.
type DB interface {
	database.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Fallbacks applied when the corresponding configuration value is unset.
const (
	defaultLockTimeout              = 3 * time.Minute
	defaultSkipThreshold            = 5
	defaultFinalizeReviewCount      = 3
	defaultGoldSkipCorrectThreshold = 5
	defaultPayoutRate               = 0.002
	defaultMinPayoutThreshold       = 10.0
	defaultBackfillBatch            = 500
)

// lockTimeout returns the configured stale-lock cutoff age.
func lockTimeout(cfg config.ReviewConfig) time.Duration {
	if cfg.LockTimeout > 0 {
		return cfg.LockTimeout
	}
	return defaultLockTimeout
}

// skipThreshold returns the skip count at which an item finalizes.
func skipThreshold(cfg config.ReviewConfig) int {
	if cfg.SkipThresholdDefault > 0 {
		return cfg.SkipThresholdDefault
	}
	return defaultSkipThreshold
}

// finalizeReviewCount returns the review count at which an item finalizes.
func finalizeReviewCount(cfg config.ReviewConfig) int {
	if cfg.FinalizeReviewCount > 0 {
		return cfg.FinalizeReviewCount
	}
	return defaultFinalizeReviewCount
}

// goldSkipCorrectThreshold returns the correct-skip count at which an item
// is promoted to gold.
func goldSkipCorrectThreshold(cfg config.ReviewConfig) int {
	if cfg.GoldSkipCorrectThreshold > 0 {
		return cfg.GoldSkipCorrectThreshold
	}
	return defaultGoldSkipCorrectThreshold
}

// fallbackPayoutRate returns the per-decision credit used when the dataset
// type has no configured rate.
func fallbackPayoutRate(cfg config.ReviewConfig) float64 {
	if cfg.PayoutRateDefault > 0 {
		return cfg.PayoutRateDefault
	}
	return defaultPayoutRate
}
