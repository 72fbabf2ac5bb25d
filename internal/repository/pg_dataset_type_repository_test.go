package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datasetforge/review-service/internal/domain"
)

func newTestDatasetType() *domain.DatasetType {
	now := time.Now().UTC()
	return &domain.DatasetType{
		ID:         uuid.New(),
		Name:       "translation-pairs",
		Modality:   "text",
		PayoutRate: 0.003,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func datasetTypeMockRows(dt *domain.DatasetType) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "modality", "payout_rate", "created_at", "updated_at",
	}).AddRow(dt.ID, dt.Name, nullString(dt.Modality), dt.PayoutRate, dt.CreatedAt, dt.UpdatedAt)
}

func TestPgDatasetTypeRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates dataset type", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgDatasetTypeRepository(mock)
		dt := newTestDatasetType()

		mock.ExpectExec("INSERT INTO dataset_types").
			WithArgs(dt.ID, dt.Name, pgxmock.AnyArg(), dt.PayoutRate, dt.CreatedAt, dt.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.Create(ctx, dt))
	})

	t.Run("maps name collision to already exists", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgDatasetTypeRepository(mock)
		dt := newTestDatasetType()

		mock.ExpectExec("INSERT INTO dataset_types").
			WithArgs(anyArgs(6)...).
			WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

		err = repo.Create(ctx, dt)
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	})

	t.Run("rejects negative payout rate", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgDatasetTypeRepository(mock)
		dt := newTestDatasetType()
		dt.PayoutRate = -0.001

		err = repo.Create(ctx, dt)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestPgDatasetTypeRepository_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("returns dataset type", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgDatasetTypeRepository(mock)
		dt := newTestDatasetType()

		mock.ExpectQuery("SELECT .* FROM dataset_types WHERE id = \\$1").
			WithArgs(dt.ID).
			WillReturnRows(datasetTypeMockRows(dt))

		got, err := repo.Get(ctx, dt.ID)
		require.NoError(t, err)
		assert.Equal(t, dt.Name, got.Name)
		assert.Equal(t, dt.PayoutRate, got.PayoutRate)
	})

	t.Run("returns not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgDatasetTypeRepository(mock)

		mock.ExpectQuery("SELECT .* FROM dataset_types WHERE id = \\$1").
			WithArgs(pgxmock.AnyArg()).
			WillReturnError(pgx.ErrNoRows)

		_, err = repo.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestPgDatasetTypeRepository_GetByName(t *testing.T) {
	ctx := context.Background()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgDatasetTypeRepository(mock)
	dt := newTestDatasetType()

	mock.ExpectQuery("SELECT .* FROM dataset_types WHERE name = \\$1").
		WithArgs(dt.Name).
		WillReturnRows(datasetTypeMockRows(dt))

	got, err := repo.GetByName(ctx, dt.Name)
	require.NoError(t, err)
	assert.Equal(t, dt.ID, got.ID)
}
