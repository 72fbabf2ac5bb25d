package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/datasetforge/review-service/internal/domain"
	"github.com/datasetforge/review-service/internal/observability"
	"github.com/datasetforge/review-service/internal/repository"
)

// CreateItemRequest carries the fields needed to register one item.
type CreateItemRequest struct {
	DatasetTypeID uuid.UUID
	Language      string
	Content       map[string]interface{}
	Meta          map[string]interface{}
}

// ItemService registers items into the review queue and serves reads.
// Every created item receives a per-type sequential number from the
// counter table, so numbers are dense and unique within a dataset type
// even under concurrent ingestion.
type ItemService struct {
	db      DB
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewItemService creates a new item service.
func NewItemService(db DB, logger zerolog.Logger, metrics *observability.Metrics) *ItemService {
	return &ItemService{
		db:      db,
		logger:  logger.With().Str("component", "item_service").Logger(),
		metrics: metrics,
	}
}

// Create registers one item under an existing dataset type.
func (s *ItemService) Create(ctx context.Context, req CreateItemRequest) (*domain.DatasetItem, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin item transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	dt, err := repository.NewPgDatasetTypeRepository(tx).Get(ctx, req.DatasetTypeID)
	if err != nil {
		return nil, err
	}

	number, err := repository.NewPgCounterRepository(tx).Next(ctx, dt.ID)
	if err != nil {
		return nil, err
	}

	item := domain.NewDatasetItem(dt.ID, req.Language, req.Content)
	item.ItemNumber = number
	item.Modality = dt.Modality
	item.Meta = req.Meta

	if err := repository.NewPgItemRepository(tx).Create(ctx, item); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit item: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordItemsCreated(item.Modality, 1)
	}
	itemLogger := observability.WithItemContext(s.logger, item.ID.String(), dt.ID.String())
	itemLogger.Info().
		Int("item_number", item.ItemNumber).
		Msg("item created")

	return item, nil
}

// BulkError records one failed row of a bulk creation batch.
type BulkError struct {
	Index int
	Err   error
}

// BulkResult is the outcome of a bulk creation batch.
type BulkResult struct {
	Created []*domain.DatasetItem
	Errors  []BulkError
}

// BulkCreate registers a batch of items. Each row commits independently;
// a failed row is reported in the result and does not abort the rest of
// the batch.
func (s *ItemService) BulkCreate(ctx context.Context, reqs []CreateItemRequest) (*BulkResult, error) {
	if len(reqs) == 0 {
		return nil, domain.NewValidationError("items", "at least one item is required")
	}

	result := &BulkResult{Created: make([]*domain.DatasetItem, 0, len(reqs))}
	for i, req := range reqs {
		item, err := s.Create(ctx, req)
		if err != nil {
			result.Errors = append(result.Errors, BulkError{Index: i, Err: err})
			continue
		}
		result.Created = append(result.Created, item)
	}
	return result, nil
}

// Get returns one item by ID.
func (s *ItemService) Get(ctx context.Context, id uuid.UUID) (*domain.DatasetItem, error) {
	return repository.NewPgItemRepository(s.db).Get(ctx, id)
}

// ListFlagged returns flagged items for operator triage, newest first.
func (s *ItemService) ListFlagged(ctx context.Context, limit, offset int) ([]*domain.DatasetItem, int64, error) {
	return repository.NewPgItemRepository(s.db).ListFlagged(ctx, limit, offset)
}

// CreateDatasetType registers a new dataset type.
func (s *ItemService) CreateDatasetType(ctx context.Context, name, modality string, payoutRate float64) (*domain.DatasetType, error) {
	now := time.Now().UTC()
	dt := &domain.DatasetType{
		ID:         uuid.New(),
		Name:       name,
		Modality:   modality,
		PayoutRate: payoutRate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := repository.NewPgDatasetTypeRepository(s.db).Create(ctx, dt); err != nil {
		return nil, err
	}

	s.logger.Info().Str("dataset_type_id", dt.ID.String()).Str("name", name).Msg("dataset type created")
	return dt, nil
}

// GetDatasetType returns one dataset type by ID.
func (s *ItemService) GetDatasetType(ctx context.Context, id uuid.UUID) (*domain.DatasetType, error) {
	return repository.NewPgDatasetTypeRepository(s.db).Get(ctx, id)
}

// ListDatasetTypes returns all dataset types ordered by name.
func (s *ItemService) ListDatasetTypes(ctx context.Context) ([]*domain.DatasetType, error) {
	return repository.NewPgDatasetTypeRepository(s.db).List(ctx)
}
