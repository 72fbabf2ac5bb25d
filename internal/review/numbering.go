package review

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/datasetforge/review-service/internal/database"
	"github.com/datasetforge/review-service/internal/repository"
)

// NumberingService assigns sequential item numbers to items created
// before numbering existed. A transaction-scoped advisory lock keyed on
// the dataset type serializes backfills, so two runs never hand out the
// same number.
type NumberingService struct {
	db     DB
	logger zerolog.Logger
}

// NewNumberingService creates a new numbering service.
func NewNumberingService(db DB, logger zerolog.Logger) *NumberingService {
	return &NumberingService{
		db:     db,
		logger: logger.With().Str("component", "numbering_service").Logger(),
	}
}

// BackfillNumbers assigns numbers 1..N in creation order to every
// unnumbered item of the given dataset type, resets the type's counter to
// N, and returns N. Intended as a one-time migration for items ingested
// before numbering existed.
func (s *NumberingService) BackfillNumbers(ctx context.Context, datasetTypeID uuid.UUID) (int, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin backfill transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := database.AcquireAdvisoryLockTx(ctx, tx, numberingLockKey(datasetTypeID)); err != nil {
		return 0, err
	}

	items := repository.NewPgItemRepository(tx)

	assigned := 0
	for {
		ids, err := items.ListUnnumbered(ctx, datasetTypeID, defaultBackfillBatch)
		if err != nil {
			return 0, err
		}
		if len(ids) == 0 {
			break
		}

		for _, id := range ids {
			assigned++
			if err := items.SetItemNumber(ctx, id, assigned); err != nil {
				return 0, err
			}
		}

		if len(ids) < defaultBackfillBatch {
			break
		}
	}

	if assigned > 0 {
		counters := repository.NewPgCounterRepository(tx)
		current, err := counters.Current(ctx, datasetTypeID)
		if err != nil {
			return 0, err
		}
		// Never move the counter backwards past numbers it already issued.
		if assigned > current {
			if err := counters.Set(ctx, datasetTypeID, assigned); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit backfill: %w", err)
	}

	s.logger.Info().
		Str("dataset_type_id", datasetTypeID.String()).
		Int("assigned", assigned).
		Msg("item numbers backfilled")

	return assigned, nil
}

// numberingLockKey derives a stable advisory lock key from the dataset
// type ID.
func numberingLockKey(datasetTypeID uuid.UUID) int64 {
	h := fnv.New64a()
	_, _ = h.Write(datasetTypeID[:])
	return int64(h.Sum64())
}
