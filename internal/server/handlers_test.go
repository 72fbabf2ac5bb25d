package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datasetforge/review-service/internal/config"
	"github.com/datasetforge/review-service/internal/database"
	"github.com/datasetforge/review-service/internal/domain"
	"github.com/datasetforge/review-service/internal/repository"
	"github.com/datasetforge/review-service/internal/review"
)

// Stub services for handler tests.

type stubQueue struct {
	claimFunc  func(ctx context.Context, req review.ClaimRequest) (*domain.DatasetItem, error)
	unlockFunc func(ctx context.Context, itemID uuid.UUID, reviewerID string) error
	flagFunc   func(ctx context.Context, itemID uuid.UUID, reviewerID, reason, note string) error
	statsFunc  func(ctx context.Context, filter repository.StatsFilter) (*domain.QueueStats, error)
}

func (s *stubQueue) ClaimNext(ctx context.Context, req review.ClaimRequest) (*domain.DatasetItem, error) {
	return s.claimFunc(ctx, req)
}

func (s *stubQueue) Unlock(ctx context.Context, itemID uuid.UUID, reviewerID string) error {
	return s.unlockFunc(ctx, itemID, reviewerID)
}

func (s *stubQueue) Flag(ctx context.Context, itemID uuid.UUID, reviewerID, reason, note string) error {
	return s.flagFunc(ctx, itemID, reviewerID, reason, note)
}

func (s *stubQueue) Stats(ctx context.Context, filter repository.StatsFilter) (*domain.QueueStats, error) {
	return s.statsFunc(ctx, filter)
}

type stubEngine struct {
	submitFunc func(ctx context.Context, sub domain.Submission) (*domain.SubmissionResult, error)
}

func (s *stubEngine) Submit(ctx context.Context, sub domain.Submission) (*domain.SubmissionResult, error) {
	return s.submitFunc(ctx, sub)
}

type stubItems struct {
	createFunc      func(ctx context.Context, req review.CreateItemRequest) (*domain.DatasetItem, error)
	bulkFunc        func(ctx context.Context, reqs []review.CreateItemRequest) (*review.BulkResult, error)
	getFunc         func(ctx context.Context, id uuid.UUID) (*domain.DatasetItem, error)
	listFlaggedFunc func(ctx context.Context, limit, offset int) ([]*domain.DatasetItem, int64, error)
	createTypeFunc  func(ctx context.Context, name, modality string, payoutRate float64) (*domain.DatasetType, error)
	getTypeFunc     func(ctx context.Context, id uuid.UUID) (*domain.DatasetType, error)
	listTypesFunc   func(ctx context.Context) ([]*domain.DatasetType, error)
}

func (s *stubItems) Create(ctx context.Context, req review.CreateItemRequest) (*domain.DatasetItem, error) {
	return s.createFunc(ctx, req)
}

func (s *stubItems) BulkCreate(ctx context.Context, reqs []review.CreateItemRequest) (*review.BulkResult, error) {
	return s.bulkFunc(ctx, reqs)
}

func (s *stubItems) Get(ctx context.Context, id uuid.UUID) (*domain.DatasetItem, error) {
	return s.getFunc(ctx, id)
}

func (s *stubItems) ListFlagged(ctx context.Context, limit, offset int) ([]*domain.DatasetItem, int64, error) {
	return s.listFlaggedFunc(ctx, limit, offset)
}

func (s *stubItems) CreateDatasetType(ctx context.Context, name, modality string, payoutRate float64) (*domain.DatasetType, error) {
	return s.createTypeFunc(ctx, name, modality, payoutRate)
}

func (s *stubItems) GetDatasetType(ctx context.Context, id uuid.UUID) (*domain.DatasetType, error) {
	return s.getTypeFunc(ctx, id)
}

func (s *stubItems) ListDatasetTypes(ctx context.Context) ([]*domain.DatasetType, error) {
	return s.listTypesFunc(ctx)
}

type stubNumbering struct {
	backfillFunc func(ctx context.Context, datasetTypeID uuid.UUID) (int, error)
}

func (s *stubNumbering) BackfillNumbers(ctx context.Context, datasetTypeID uuid.UUID) (int, error) {
	return s.backfillFunc(ctx, datasetTypeID)
}

type stubPayouts struct {
	requestFunc    func(ctx context.Context, reviewerID string, amount float64, paymentMethod string) (*domain.Payout, error)
	resolveFunc    func(ctx context.Context, payoutID uuid.UUID, status domain.PayoutStatus, note string) (*domain.Payout, error)
	listFunc       func(ctx context.Context, reviewerID string, limit, offset int) ([]*domain.Payout, int64, error)
	listPendFunc   func(ctx context.Context, limit, offset int) ([]*domain.Payout, int64, error)
	reviewerFunc   func(ctx context.Context, reviewerID string) (*domain.Reviewer, error)
	statsFunc      func(ctx context.Context, reviewerID string) (*domain.ReviewerStats, error)
	listRevFunc    func(ctx context.Context, reviewerID string, limit, offset int) ([]*domain.ReviewLog, int64, error)
}

func (s *stubPayouts) Request(ctx context.Context, reviewerID string, amount float64, paymentMethod string) (*domain.Payout, error) {
	return s.requestFunc(ctx, reviewerID, amount, paymentMethod)
}

func (s *stubPayouts) Resolve(ctx context.Context, payoutID uuid.UUID, status domain.PayoutStatus, note string) (*domain.Payout, error) {
	return s.resolveFunc(ctx, payoutID, status, note)
}

func (s *stubPayouts) ListByReviewer(ctx context.Context, reviewerID string, limit, offset int) ([]*domain.Payout, int64, error) {
	return s.listFunc(ctx, reviewerID, limit, offset)
}

func (s *stubPayouts) ListPending(ctx context.Context, limit, offset int) ([]*domain.Payout, int64, error) {
	return s.listPendFunc(ctx, limit, offset)
}

func (s *stubPayouts) GetReviewer(ctx context.Context, reviewerID string) (*domain.Reviewer, error) {
	return s.reviewerFunc(ctx, reviewerID)
}

func (s *stubPayouts) ReviewerStats(ctx context.Context, reviewerID string) (*domain.ReviewerStats, error) {
	return s.statsFunc(ctx, reviewerID)
}

func (s *stubPayouts) ListReviews(ctx context.Context, reviewerID string, limit, offset int) ([]*domain.ReviewLog, int64, error) {
	return s.listRevFunc(ctx, reviewerID, limit, offset)
}

type stubHealth struct {
	status database.HealthStatus
}

func (s *stubHealth) Health(ctx context.Context) database.HealthStatus {
	return s.status
}

type testDeps struct {
	queue     *stubQueue
	engine    *stubEngine
	items     *stubItems
	numbering *stubNumbering
	payouts   *stubPayouts
	health    *stubHealth
}

func newTestServer(t *testing.T) (*Server, *testDeps) {
	t.Helper()
	deps := &testDeps{
		queue:     &stubQueue{},
		engine:    &stubEngine{},
		items:     &stubItems{},
		numbering: &stubNumbering{},
		payouts:   &stubPayouts{},
		health:    &stubHealth{status: database.HealthStatus{Status: "healthy"}},
	}
	srv := NewServer(
		config.ServerConfig{ClaimRateLimit: 1000, ClaimRateBurst: 1000},
		deps.queue, deps.engine, deps.items, deps.numbering, deps.payouts, deps.health,
		zerolog.Nop(),
	)
	return srv, deps
}

func doRequest(t *testing.T, srv *Server, method, path, reviewerID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if reviewerID != "" {
		req.Header.Set(reviewerIDHeader, reviewerID)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func sampleItem() *domain.DatasetItem {
	item := domain.NewDatasetItem(uuid.New(), "en", map[string]interface{}{"prompt": "hello"})
	item.ItemNumber = 3
	item.Modality = "text"
	return item
}

func TestClaimNextHandler(t *testing.T) {
	t.Run("returns claimed item", func(t *testing.T) {
		srv, deps := newTestServer(t)
		item := sampleItem()
		deps.queue.claimFunc = func(_ context.Context, req review.ClaimRequest) (*domain.DatasetItem, error) {
			assert.Equal(t, "reviewer-1", req.ReviewerID)
			assert.Equal(t, []string{"en", "de"}, req.Languages)
			return item, nil
		}

		rec := doRequest(t, srv, http.MethodGet, "/api/v1/queue/next?languages=en,de", "reviewer-1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp itemResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, item.ID.String(), resp.ID)
		assert.Equal(t, "en", resp.Language)
	})

	t.Run("returns 204 on empty queue", func(t *testing.T) {
		srv, deps := newTestServer(t)
		deps.queue.claimFunc = func(context.Context, review.ClaimRequest) (*domain.DatasetItem, error) {
			return nil, nil
		}

		rec := doRequest(t, srv, http.MethodGet, "/api/v1/queue/next", "reviewer-1", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("requires reviewer header", func(t *testing.T) {
		srv, _ := newTestServer(t)

		rec := doRequest(t, srv, http.MethodGet, "/api/v1/queue/next", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects malformed dataset_type", func(t *testing.T) {
		srv, _ := newTestServer(t)

		rec := doRequest(t, srv, http.MethodGet, "/api/v1/queue/next?dataset_type=nope", "reviewer-1", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSubmitReviewHandler(t *testing.T) {
	itemID := uuid.New()

	t.Run("returns submission result", func(t *testing.T) {
		srv, deps := newTestServer(t)
		deps.engine.submitFunc = func(_ context.Context, sub domain.Submission) (*domain.SubmissionResult, error) {
			assert.Equal(t, itemID, sub.ItemID)
			assert.Equal(t, "reviewer-1", sub.ReviewerID)
			assert.Equal(t, domain.ActionApprove, sub.Action)
			return &domain.SubmissionResult{
				ReviewLogID:  uuid.New(),
				Action:       domain.ActionApprove,
				PayoutAmount: 0.002,
				ReviewCount:  1,
			}, nil
		}

		rec := doRequest(t, srv, http.MethodPost, "/api/v1/reviews", "reviewer-1", map[string]interface{}{
			"item_id": itemID.String(),
			"action":  "approve",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp submissionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "approve", resp.Action)
		assert.Equal(t, 0.002, resp.PayoutAmount)
	})

	t.Run("maps duplicate review to 409", func(t *testing.T) {
		srv, deps := newTestServer(t)
		deps.engine.submitFunc = func(context.Context, domain.Submission) (*domain.SubmissionResult, error) {
			return nil, domain.NewDuplicateReviewError(itemID.String(), "reviewer-1")
		}

		rec := doRequest(t, srv, http.MethodPost, "/api/v1/reviews", "reviewer-1", map[string]interface{}{
			"item_id": itemID.String(),
			"action":  "approve",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("maps finalized item to 409", func(t *testing.T) {
		srv, deps := newTestServer(t)
		deps.engine.submitFunc = func(context.Context, domain.Submission) (*domain.SubmissionResult, error) {
			return nil, domain.NewAlreadyFinalizedError(itemID.String())
		}

		rec := doRequest(t, srv, http.MethodPost, "/api/v1/reviews", "reviewer-1", map[string]interface{}{
			"item_id": itemID.String(),
			"action":  "skip",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("maps missing item to 404", func(t *testing.T) {
		srv, deps := newTestServer(t)
		deps.engine.submitFunc = func(context.Context, domain.Submission) (*domain.SubmissionResult, error) {
			return nil, domain.NewNotFoundError("item", itemID.String())
		}

		rec := doRequest(t, srv, http.MethodPost, "/api/v1/reviews", "reviewer-1", map[string]interface{}{
			"item_id": itemID.String(),
			"action":  "approve",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("rejects unknown action", func(t *testing.T) {
		srv, _ := newTestServer(t)

		rec := doRequest(t, srv, http.MethodPost, "/api/v1/reviews", "reviewer-1", map[string]interface{}{
			"item_id": itemID.String(),
			"action":  "promote",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects invalid JSON body", func(t *testing.T) {
		srv, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", bytes.NewBufferString("{"))
		req.Header.Set(reviewerIDHeader, "reviewer-1")
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestFlagAndUnlockHandlers(t *testing.T) {
	itemID := uuid.New()

	t.Run("flags item", func(t *testing.T) {
		srv, deps := newTestServer(t)
		deps.queue.flagFunc = func(_ context.Context, id uuid.UUID, reviewerID, reason, note string) error {
			assert.Equal(t, itemID, id)
			assert.Equal(t, "pii", reason)
			return nil
		}

		rec := doRequest(t, srv, http.MethodPost, "/api/v1/reviews/flag", "reviewer-1", map[string]interface{}{
			"item_id": itemID.String(),
			"reason":  "pii",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unlocks item", func(t *testing.T) {
		srv, deps := newTestServer(t)
		deps.queue.unlockFunc = func(_ context.Context, id uuid.UUID, reviewerID string) error {
			assert.Equal(t, itemID, id)
			assert.Equal(t, "reviewer-1", reviewerID)
			return nil
		}

		rec := doRequest(t, srv, http.MethodPost, "/api/v1/reviews/unlock", "reviewer-1", map[string]interface{}{
			"item_id": itemID.String(),
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("maps non-owner unlock to 400", func(t *testing.T) {
		srv, deps := newTestServer(t)
		deps.queue.unlockFunc = func(context.Context, uuid.UUID, string) error {
			return domain.NewValidationError("reviewer_id", "item is not locked by this reviewer")
		}

		rec := doRequest(t, srv, http.MethodPost, "/api/v1/reviews/unlock", "reviewer-2", map[string]interface{}{
			"item_id": itemID.String(),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestQueueStatsHandler(t *testing.T) {
	srv, deps := newTestServer(t)
	deps.queue.statsFunc = func(_ context.Context, filter repository.StatsFilter) (*domain.QueueStats, error) {
		assert.Equal(t, []string{"en"}, filter.Languages)
		return &domain.QueueStats{Total: 12, Pending: 9, InReview: 3}, nil
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/queue/stats?languages=en", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp queueStatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(12), resp.Total)
	assert.Equal(t, int64(9), resp.Pending)
}

func TestItemHandlers(t *testing.T) {
	t.Run("creates item", func(t *testing.T) {
		srv, deps := newTestServer(t)
		item := sampleItem()
		deps.items.createFunc = func(_ context.Context, req review.CreateItemRequest) (*domain.DatasetItem, error) {
			assert.Equal(t, "en", req.Language)
			return item, nil
		}

		rec := doRequest(t, srv, http.MethodPost, "/api/v1/items", "", map[string]interface{}{
			"dataset_type_id": item.DatasetTypeID.String(),
			"language":        "en",
			"content":         map[string]interface{}{"prompt": "hello"},
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("bulk create reports partial failure with 207", func(t *testing.T) {
		srv, deps := newTestServer(t)
		item := sampleItem()
		deps.items.bulkFunc = func(_ context.Context, reqs []review.CreateItemRequest) (*review.BulkResult, error) {
			require.Len(t, reqs, 2)
			return &review.BulkResult{
				Created: []*domain.DatasetItem{item},
				Errors:  []review.BulkError{{Index: 1, Err: domain.NewValidationError("language", "language is required")}},
			}, nil
		}

		rec := doRequest(t, srv, http.MethodPost, "/api/v1/items/bulk", "", map[string]interface{}{
			"items": []map[string]interface{}{
				{
					"dataset_type_id": item.DatasetTypeID.String(),
					"language":        "en",
					"content":         map[string]interface{}{"prompt": "one"},
				},
				{
					"dataset_type_id": item.DatasetTypeID.String(),
					"language":        "de",
					"content":         map[string]interface{}{"prompt": "two"},
				},
			},
		})
		require.Equal(t, http.StatusMultiStatus, rec.Code)

		var resp bulkCreateResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Created, 1)
		require.Len(t, resp.Errors, 1)
		assert.Equal(t, 1, resp.Errors[0].Index)
	})

	t.Run("gets item by ID", func(t *testing.T) {
		srv, deps := newTestServer(t)
		item := sampleItem()
		deps.items.getFunc = func(_ context.Context, id uuid.UUID) (*domain.DatasetItem, error) {
			assert.Equal(t, item.ID, id)
			return item, nil
		}

		rec := doRequest(t, srv, http.MethodGet, "/api/v1/items/"+item.ID.String(), "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("maps missing item to 404", func(t *testing.T) {
		srv, deps := newTestServer(t)
		id := uuid.New()
		deps.items.getFunc = func(context.Context, uuid.UUID) (*domain.DatasetItem, error) {
			return nil, domain.NewNotFoundError("item", id.String())
		}

		rec := doRequest(t, srv, http.MethodGet, "/api/v1/items/"+id.String(), "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("lists flagged items", func(t *testing.T) {
		srv, deps := newTestServer(t)
		item := sampleItem()
		item.Flagged = true
		deps.items.listFlaggedFunc = func(context.Context, int, int) ([]*domain.DatasetItem, int64, error) {
			return []*domain.DatasetItem{item}, 1, nil
		}

		rec := doRequest(t, srv, http.MethodGet, "/api/v1/items/flagged", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp listResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.TotalCount)
	})
}

func TestDatasetTypeHandlers(t *testing.T) {
	now := time.Now().UTC()
	dt := &domain.DatasetType{
		ID:         uuid.New(),
		Name:       "translation-en",
		Modality:   "text",
		PayoutRate: 0.004,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	t.Run("creates dataset type", func(t *testing.T) {
		srv, deps := newTestServer(t)
		deps.items.createTypeFunc = func(_ context.Context, name, modality string, rate float64) (*domain.DatasetType, error) {
			assert.Equal(t, "translation-en", name)
			assert.Equal(t, 0.004, rate)
			return dt, nil
		}

		rec := doRequest(t, srv, http.MethodPost, "/api/v1/dataset-types", "", map[string]interface{}{
			"name":        "translation-en",
			"modality":    "text",
			"payout_rate": 0.004,
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("maps name collision to 409", func(t *testing.T) {
		srv, deps := newTestServer(t)
		deps.items.createTypeFunc = func(context.Context, string, string, float64) (*domain.DatasetType, error) {
			return nil, domain.NewAlreadyExistsError("dataset type", "translation-en")
		}

		rec := doRequest(t, srv, http.MethodPost, "/api/v1/dataset-types", "", map[string]interface{}{
			"name":        "translation-en",
			"modality":    "text",
			"payout_rate": 0.004,
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("runs number backfill", func(t *testing.T) {
		srv, deps := newTestServer(t)
		deps.numbering.backfillFunc = func(_ context.Context, typeID uuid.UUID) (int, error) {
			assert.Equal(t, dt.ID, typeID)
			return 17, nil
		}

		rec := doRequest(t, srv, http.MethodPost, "/api/v1/dataset-types/"+dt.ID.String()+"/backfill-numbers", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]int
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 17, resp["assigned"])
	})
}

func TestPayoutHandlers(t *testing.T) {
	t.Run("requests payout", func(t *testing.T) {
		srv, deps := newTestServer(t)
		deps.payouts.requestFunc = func(_ context.Context, reviewerID string, amount float64, method string) (*domain.Payout, error) {
			assert.Equal(t, "reviewer-1", reviewerID)
			assert.Equal(t, 25.0, amount)
			return &domain.Payout{
				ID:            uuid.New(),
				ReviewerID:    reviewerID,
				Amount:        amount,
				PaymentMethod: method,
				Status:        domain.PayoutStatusPending,
				RequestedAt:   time.Now().UTC(),
			}, nil
		}

		rec := doRequest(t, srv, http.MethodPost, "/api/v1/payouts", "reviewer-1", map[string]interface{}{
			"amount":         25.0,
			"payment_method": "paypal",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("maps insufficient balance to 422", func(t *testing.T) {
		srv, deps := newTestServer(t)
		deps.payouts.requestFunc = func(context.Context, string, float64, string) (*domain.Payout, error) {
			return nil, &domain.InsufficientBalanceError{ReviewerID: "reviewer-1", Available: 5, Requested: 25}
		}

		rec := doRequest(t, srv, http.MethodPost, "/api/v1/payouts", "reviewer-1", map[string]interface{}{
			"amount":         25.0,
			"payment_method": "paypal",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("resolves payout", func(t *testing.T) {
		srv, deps := newTestServer(t)
		payoutID := uuid.New()
		deps.payouts.resolveFunc = func(_ context.Context, id uuid.UUID, status domain.PayoutStatus, note string) (*domain.Payout, error) {
			assert.Equal(t, payoutID, id)
			assert.Equal(t, domain.PayoutStatusApproved, status)
			now := time.Now().UTC()
			return &domain.Payout{ID: id, Status: status, ResolvedAt: &now}, nil
		}

		rec := doRequest(t, srv, http.MethodPost, "/api/v1/payouts/"+payoutID.String()+"/resolve", "", map[string]interface{}{
			"status": "approved",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("returns reviewer profile", func(t *testing.T) {
		srv, deps := newTestServer(t)
		deps.payouts.reviewerFunc = func(_ context.Context, reviewerID string) (*domain.Reviewer, error) {
			return &domain.Reviewer{ID: reviewerID, PayoutBalance: 3.5, ReviewsDone: 7}, nil
		}

		rec := doRequest(t, srv, http.MethodGet, "/api/v1/reviewers/me", "reviewer-1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp reviewerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 3.5, resp.PayoutBalance)
	})

	t.Run("returns reviewer stats", func(t *testing.T) {
		srv, deps := newTestServer(t)
		deps.payouts.statsFunc = func(context.Context, string) (*domain.ReviewerStats, error) {
			return &domain.ReviewerStats{TotalReviews: 10, Approvals: 7, Skips: 3, TotalEarned: 0.014}, nil
		}

		rec := doRequest(t, srv, http.MethodGet, "/api/v1/reviews/stats", "reviewer-1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp reviewerStatsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 10, resp.TotalReviews)
	})
}

func TestHealthEndpoints(t *testing.T) {
	t.Run("healthz is always ok", func(t *testing.T) {
		srv, _ := newTestServer(t)

		rec := doRequest(t, srv, http.MethodGet, "/healthz", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("readyz reflects database health", func(t *testing.T) {
		srv, deps := newTestServer(t)
		deps.health.status = database.HealthStatus{Status: "unhealthy", Error: "connection refused"}

		rec := doRequest(t, srv, http.MethodGet, "/readyz", "", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
