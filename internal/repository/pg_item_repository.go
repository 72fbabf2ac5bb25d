package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/datasetforge/review-service/internal/domain"
)

// itemColumns is the canonical column list for dataset item scans.
const itemColumns = `id, item_number, dataset_type_id, language, modality,
		content, meta, status,
		review_count, skip_count, correct_skips, unchecked_skips,
		finalized, reviewed_by, lock_owner, lock_time,
		is_gold, flagged, flags, skip_feedback,
		created_at, updated_at`

// Compile-time interface verification.
var _ ItemRepository = (*PgItemRepository)(nil)

// PgItemRepository is a PostgreSQL implementation of ItemRepository.
type PgItemRepository struct {
	db DBTX
}

// NewPgItemRepository creates a new PostgreSQL item repository.
func NewPgItemRepository(db DBTX) *PgItemRepository {
	return &PgItemRepository{db: db}
}

// Create inserts a new dataset item.
func (r *PgItemRepository) Create(ctx context.Context, item *domain.DatasetItem) error {
	if item == nil {
		return domain.NewValidationError("item", "item cannot be nil")
	}
	if item.ID == uuid.Nil {
		return domain.NewValidationError("id", "item ID is required")
	}
	if item.DatasetTypeID == uuid.Nil {
		return domain.NewValidationError("dataset_type_id", "dataset type ID is required")
	}
	if item.Language == "" {
		return domain.NewValidationError("language", "language is required")
	}

	contentJSON, metaJSON, flagsJSON, feedbackJSON, err := marshalItemJSON(item)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO dataset_items (
			id, item_number, dataset_type_id, language, modality,
			content, meta, status,
			review_count, skip_count, correct_skips, unchecked_skips,
			finalized, reviewed_by, lock_owner, lock_time,
			is_gold, flagged, flags, skip_feedback,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8,
			$9, $10, $11, $12,
			$13, $14, $15, $16,
			$17, $18, $19, $20,
			$21, $22
		)`

	_, err = r.db.Exec(ctx, query,
		item.ID, nullInt(item.ItemNumber), item.DatasetTypeID, item.Language, nullString(item.Modality),
		contentJSON, metaJSON, item.ReviewState.Status,
		item.ReviewState.ReviewCount, item.ReviewState.SkipCount, item.ReviewState.CorrectSkips, item.ReviewState.UncheckedSkips,
		item.ReviewState.Finalized, item.ReviewState.ReviewedBy, nullString(item.ReviewState.LockOwner), item.ReviewState.LockTime,
		item.IsGold, item.Flagged, flagsJSON, feedbackJSON,
		item.CreatedAt, item.UpdatedAt,
	)

	if err != nil {
		if isPgUniqueViolation(err) {
			return domain.NewAlreadyExistsError("item", item.ID.String())
		}
		if isPgForeignKeyViolation(err) {
			return domain.NewNotFoundError("dataset type", item.DatasetTypeID.String())
		}
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

// Get retrieves a dataset item by its ID.
func (r *PgItemRepository) Get(ctx context.Context, id uuid.UUID) (*domain.DatasetItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM dataset_items WHERE id = $1`, itemColumns)

	item, err := scanItemRow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("item", id.String())
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return item, nil
}

// GetForUpdate retrieves a dataset item with a SELECT FOR UPDATE row lock.
// Must be called within a transaction.
func (r *PgItemRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.DatasetItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM dataset_items WHERE id = $1 FOR UPDATE`, itemColumns)

	item, err := scanItemRow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("item", id.String())
		}
		return nil, fmt.Errorf("failed to get item for update: %w", err)
	}

	return item, nil
}

// Update persists all mutable fields of the item.
func (r *PgItemRepository) Update(ctx context.Context, item *domain.DatasetItem) error {
	if item == nil {
		return domain.NewValidationError("item", "item cannot be nil")
	}

	contentJSON, metaJSON, flagsJSON, feedbackJSON, err := marshalItemJSON(item)
	if err != nil {
		return err
	}

	item.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE dataset_items SET
			item_number = $1,
			language = $2,
			modality = $3,
			content = $4,
			meta = $5,
			status = $6,
			review_count = $7,
			skip_count = $8,
			correct_skips = $9,
			unchecked_skips = $10,
			finalized = $11,
			reviewed_by = $12,
			lock_owner = $13,
			lock_time = $14,
			is_gold = $15,
			flagged = $16,
			flags = $17,
			skip_feedback = $18,
			updated_at = $19
		WHERE id = $20`

	result, err := r.db.Exec(ctx, query,
		nullInt(item.ItemNumber),
		item.Language,
		nullString(item.Modality),
		contentJSON,
		metaJSON,
		item.ReviewState.Status,
		item.ReviewState.ReviewCount,
		item.ReviewState.SkipCount,
		item.ReviewState.CorrectSkips,
		item.ReviewState.UncheckedSkips,
		item.ReviewState.Finalized,
		item.ReviewState.ReviewedBy,
		nullString(item.ReviewState.LockOwner),
		item.ReviewState.LockTime,
		item.IsGold,
		item.Flagged,
		flagsJSON,
		feedbackJSON,
		item.UpdatedAt,
		item.ID,
	)

	if err != nil {
		if isPgUniqueViolation(err) {
			return domain.NewAlreadyExistsError("item number", fmt.Sprintf("%d", item.ItemNumber))
		}
		return fmt.Errorf("failed to update item: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("item", item.ID.String())
	}

	return nil
}

// ClaimNext atomically selects and locks the next eligible item.
//
// The candidate selection and the lock assignment happen in a single
// statement so that two concurrent claimers can never receive the same
// row: the inner SELECT takes a row lock with SKIP LOCKED and the outer
// UPDATE stamps the claimer before the lock is released.
func (r *PgItemRepository) ClaimNext(ctx context.Context, claim ClaimFilter) (*ClaimedItem, error) {
	if err := claim.Validate(); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		WITH candidate AS (
			SELECT id, status AS prev_status
			FROM dataset_items
			WHERE finalized = false
			  AND NOT (reviewed_by @> ARRAY[$1]::text[])
			  AND (COALESCE(cardinality($2::text[]), 0) = 0 OR language = ANY($2::text[]))
			  AND ($3::uuid IS NULL OR dataset_type_id = $3)
			  AND ($4::text = '' OR modality = $4)
			  AND (status = 'pending'
			       OR (status = 'in_review' AND (lock_time IS NULL OR lock_time < $5)))
			ORDER BY created_at, id
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE dataset_items AS d
		SET status = 'in_review',
			lock_owner = $1,
			lock_time = $6,
			updated_at = $6
		FROM candidate c
		WHERE d.id = c.id
		RETURNING %s, c.prev_status`, prefixColumns("d", itemColumns))

	rows, err := r.db.Query(ctx, query,
		claim.ReviewerID,
		claim.Languages,
		claim.DatasetTypeID,
		claim.Modality,
		claim.StaleBefore,
		claim.Now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to claim item: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to claim item: %w", err)
		}
		return nil, nil
	}

	var dest itemScanDest
	var prevStatus string
	if err := rows.Scan(append(dest.destinations(), &prevStatus)...); err != nil {
		return nil, fmt.Errorf("failed to scan claimed item: %w", err)
	}

	item, err := dest.finalize()
	if err != nil {
		return nil, err
	}

	return &ClaimedItem{
		Item:      item,
		Reclaimed: domain.ItemStatus(prevStatus) == domain.StatusInReview,
	}, nil
}

// Stats returns queue depth counts for non-finalized items matching the filter.
func (r *PgItemRepository) Stats(ctx context.Context, filter StatsFilter) (*domain.QueueStats, error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'in_review')
		FROM dataset_items
		WHERE finalized = false
		  AND (COALESCE(cardinality($1::text[]), 0) = 0 OR language = ANY($1::text[]))
		  AND ($2::uuid IS NULL OR dataset_type_id = $2)
		  AND ($3::text = '' OR modality = $3)`

	var stats domain.QueueStats
	err := r.db.QueryRow(ctx, query, filter.Languages, filter.DatasetTypeID, filter.Modality).
		Scan(&stats.Total, &stats.Pending, &stats.InReview)
	if err != nil {
		return nil, fmt.Errorf("failed to get queue stats: %w", err)
	}

	return &stats, nil
}

// ListFlagged returns flagged items with the total flagged count.
func (r *PgItemRepository) ListFlagged(ctx context.Context, limit, offset int) ([]*domain.DatasetItem, int64, error) {
	applyPaginationDefaults(&limit, &offset)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM dataset_items WHERE flagged = true`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count flagged items: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM dataset_items
		WHERE flagged = true
		ORDER BY updated_at DESC
		LIMIT $1 OFFSET $2`, itemColumns)

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list flagged items: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.DatasetItem, 0, limit)
	for rows.Next() {
		item, err := scanItemFromRows(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan flagged item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating flagged items: %w", err)
	}

	return items, total, nil
}

// ListUnnumbered returns IDs of items in the dataset type without an item number.
func (r *PgItemRepository) ListUnnumbered(ctx context.Context, datasetTypeID uuid.UUID, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = defaultFilterLimit
	}

	query := `
		SELECT id FROM dataset_items
		WHERE dataset_type_id = $1 AND item_number IS NULL
		ORDER BY created_at, id
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, datasetTypeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unnumbered items: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan item ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unnumbered items: %w", err)
	}

	return ids, nil
}

// SetItemNumber assigns a sequential number to an item.
func (r *PgItemRepository) SetItemNumber(ctx context.Context, id uuid.UUID, number int) error {
	if number <= 0 {
		return domain.NewValidationError("item_number", "item number must be positive")
	}

	query := `UPDATE dataset_items SET item_number = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(ctx, query, number, time.Now().UTC(), id)
	if err != nil {
		if isPgUniqueViolation(err) {
			return domain.NewAlreadyExistsError("item number", fmt.Sprintf("%d", number))
		}
		return fmt.Errorf("failed to set item number: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("item", id.String())
	}

	return nil
}

// SetModality sets the denormalized modality of an item.
func (r *PgItemRepository) SetModality(ctx context.Context, id uuid.UUID, modality string) error {
	query := `UPDATE dataset_items SET modality = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(ctx, query, nullString(modality), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set item modality: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("item", id.String())
	}

	return nil
}

// marshalItemJSON serializes the item's JSON columns.
func marshalItemJSON(item *domain.DatasetItem) (content, meta, flags, feedback []byte, err error) {
	content, err = json.Marshal(item.Content)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal content: %w", err)
	}

	meta, err = json.Marshal(item.Meta)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal meta: %w", err)
	}

	flags, err = json.Marshal(item.Flags)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal flags: %w", err)
	}

	feedback, err = json.Marshal(item.SkipFeedback)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal skip feedback: %w", err)
	}

	return content, meta, flags, feedback, nil
}

// prefixColumns qualifies each column in a comma-separated list with a
// table alias, for use in RETURNING clauses with joined CTEs.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// itemScanDest holds the destination pointers for scanning a DatasetItem row.
// This eliminates code duplication between pgx.Row and pgx.Rows scanning.
type itemScanDest struct {
	item         domain.DatasetItem
	itemNumber   *int
	modality     *string
	contentJSON  []byte
	metaJSON     []byte
	status       string
	lockOwner    *string
	flagsJSON    []byte
	feedbackJSON []byte
}

// destinations returns the slice of pointers for Scan operations.
func (d *itemScanDest) destinations() []interface{} {
	return []interface{}{
		&d.item.ID, &d.itemNumber, &d.item.DatasetTypeID, &d.item.Language, &d.modality,
		&d.contentJSON, &d.metaJSON, &d.status,
		&d.item.ReviewState.ReviewCount, &d.item.ReviewState.SkipCount,
		&d.item.ReviewState.CorrectSkips, &d.item.ReviewState.UncheckedSkips,
		&d.item.ReviewState.Finalized, &d.item.ReviewState.ReviewedBy, &d.lockOwner, &d.item.ReviewState.LockTime,
		&d.item.IsGold, &d.item.Flagged, &d.flagsJSON, &d.feedbackJSON,
		&d.item.CreatedAt, &d.item.UpdatedAt,
	}
}

// finalize performs post-scan processing: sets nullable fields, normalizes
// the persisted status, and unmarshals JSON columns.
func (d *itemScanDest) finalize() (*domain.DatasetItem, error) {
	if d.itemNumber != nil {
		d.item.ItemNumber = *d.itemNumber
	}
	if d.modality != nil {
		d.item.Modality = *d.modality
	}
	if d.lockOwner != nil {
		d.item.ReviewState.LockOwner = *d.lockOwner
	}

	// Legacy status values normalize to pending.
	d.item.ReviewState.Status, _ = domain.ParseStatus(d.status)

	if d.item.ReviewState.ReviewedBy == nil {
		d.item.ReviewState.ReviewedBy = []string{}
	}

	if len(d.contentJSON) > 0 {
		if err := json.Unmarshal(d.contentJSON, &d.item.Content); err != nil {
			return nil, fmt.Errorf("failed to unmarshal content: %w", err)
		}
	}
	if len(d.metaJSON) > 0 {
		if err := json.Unmarshal(d.metaJSON, &d.item.Meta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal meta: %w", err)
		}
	}
	if len(d.flagsJSON) > 0 {
		if err := json.Unmarshal(d.flagsJSON, &d.item.Flags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal flags: %w", err)
		}
	}
	if len(d.feedbackJSON) > 0 {
		if err := json.Unmarshal(d.feedbackJSON, &d.item.SkipFeedback); err != nil {
			return nil, fmt.Errorf("failed to unmarshal skip feedback: %w", err)
		}
	}

	return &d.item, nil
}

// scanItemRow scans a single pgx.Row into a DatasetItem.
func scanItemRow(row pgx.Row) (*domain.DatasetItem, error) {
	var dest itemScanDest
	if err := row.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize()
}

// scanItemFromRows scans the current pgx.Rows position into a DatasetItem.
func scanItemFromRows(rows pgx.Rows) (*domain.DatasetItem, error) {
	var dest itemScanDest
	if err := rows.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize()
}
