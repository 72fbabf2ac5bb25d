// Package server provides the HTTP REST API for the review queue service.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/datasetforge/review-service/internal/config"
	"github.com/datasetforge/review-service/internal/database"
	"github.com/datasetforge/review-service/internal/domain"
	"github.com/datasetforge/review-service/internal/repository"
	"github.com/datasetforge/review-service/internal/review"
)

// QueueService hands out and releases review work.
type QueueService interface {
	ClaimNext(ctx context.Context, req review.ClaimRequest) (*domain.DatasetItem, error)
	Unlock(ctx context.Context, itemID uuid.UUID, reviewerID string) error
	Flag(ctx context.Context, itemID uuid.UUID, reviewerID, reason, note string) error
	Stats(ctx context.Context, filter repository.StatsFilter) (*domain.QueueStats, error)
}

// SubmissionEngine applies reviewer decisions.
type SubmissionEngine interface {
	Submit(ctx context.Context, sub domain.Submission) (*domain.SubmissionResult, error)
}

// ItemService registers items and dataset types and serves reads.
type ItemService interface {
	Create(ctx context.Context, req review.CreateItemRequest) (*domain.DatasetItem, error)
	BulkCreate(ctx context.Context, reqs []review.CreateItemRequest) (*review.BulkResult, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.DatasetItem, error)
	ListFlagged(ctx context.Context, limit, offset int) ([]*domain.DatasetItem, int64, error)
	CreateDatasetType(ctx context.Context, name, modality string, payoutRate float64) (*domain.DatasetType, error)
	GetDatasetType(ctx context.Context, id uuid.UUID) (*domain.DatasetType, error)
	ListDatasetTypes(ctx context.Context) ([]*domain.DatasetType, error)
}

// NumberingService runs item number backfills.
type NumberingService interface {
	BackfillNumbers(ctx context.Context, datasetTypeID uuid.UUID) (int, error)
}

// PayoutService manages reviewer balances and payout requests.
type PayoutService interface {
	Request(ctx context.Context, reviewerID string, amount float64, paymentMethod string) (*domain.Payout, error)
	Resolve(ctx context.Context, payoutID uuid.UUID, status domain.PayoutStatus, note string) (*domain.Payout, error)
	ListByReviewer(ctx context.Context, reviewerID string, limit, offset int) ([]*domain.Payout, int64, error)
	ListPending(ctx context.Context, limit, offset int) ([]*domain.Payout, int64, error)
	GetReviewer(ctx context.Context, reviewerID string) (*domain.Reviewer, error)
	ReviewerStats(ctx context.Context, reviewerID string) (*domain.ReviewerStats, error)
	ListReviews(ctx context.Context, reviewerID string, limit, offset int) ([]*domain.ReviewLog, int64, error)
}

// HealthChecker reports database health for the readiness endpoints.
type HealthChecker interface {
	Health(ctx context.Context) database.HealthStatus
}

var (
	_ QueueService     = (*review.QueueService)(nil)
	_ SubmissionEngine = (*review.Engine)(nil)
	_ ItemService      = (*review.ItemService)(nil)
	_ NumberingService = (*review.NumberingService)(nil)
	_ PayoutService    = (*review.PayoutService)(nil)
	_ HealthChecker    = (*database.DB)(nil)
)

// Server is the HTTP REST API server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	queue      QueueService
	engine     SubmissionEngine
	items      ItemService
	numbering  NumberingService
	payouts    PayoutService
	health     HealthChecker
	validate   *validator.Validate
	limiter    *claimLimiter
	logger     zerolog.Logger
}

// NewServer creates a new HTTP server with all dependencies.
func NewServer(
	cfg config.ServerConfig,
	queue QueueService,
	engine SubmissionEngine,
	items ItemService,
	numbering NumberingService,
	payouts PayoutService,
	health HealthChecker,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		queue:     queue,
		engine:    engine,
		items:     items,
		numbering: numbering,
		payouts:   payouts,
		health:    health,
		validate:  validator.New(),
		limiter:   newClaimLimiter(cfg.ClaimRateLimit, cfg.ClaimRateBurst),
		logger:    logger.With().Str("component", "http_server").Logger(),
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.HTTPPort),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Router exposes the underlying router, mainly for tests.
func (s *Server) Router() chi.Router {
	return s.router
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(reviewerIDMiddleware)

			r.With(s.limiter.middleware).Get("/queue/next", s.claimNext)
			r.Post("/reviews", s.submitReview)
			r.Post("/reviews/flag", s.flagItem)
			r.Post("/reviews/unlock", s.unlockItem)
			r.Get("/reviews/stats", s.reviewerStats)
			r.Get("/reviews", s.listReviews)

			r.Post("/payouts", s.requestPayout)
			r.Get("/payouts", s.listPayouts)
			r.Get("/reviewers/me", s.getReviewer)
		})

		r.Get("/queue/stats", s.queueStats)

		r.Post("/items", s.createItem)
		r.Post("/items/bulk", s.bulkCreateItems)
		r.Get("/items/flagged", s.listFlaggedItems)
		r.Get("/items/{itemID}", s.getItem)

		r.Post("/dataset-types", s.createDatasetType)
		r.Get("/dataset-types", s.listDatasetTypes)
		r.Get("/dataset-types/{typeID}", s.getDatasetType)
		r.Post("/dataset-types/{typeID}/backfill-numbers", s.backfillNumbers)

		r.Get("/payouts/pending", s.listPendingPayouts)
		r.Post("/payouts/{payoutID}/resolve", s.resolvePayout)
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readinessHandler returns readiness status including database connectivity.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	health := s.health.Health(r.Context())
	if health.Status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": health.Status,
			"error":    health.Error,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": "healthy",
	})
}

// parsePagination reads limit/offset query params with sane bounds.
func parsePagination(r *http.Request) (limit, offset int) {
	limit = 100
	offset = 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := parsePositiveInt(raw); err == nil {
			limit = v
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := parsePositiveInt(raw); err == nil {
			offset = v
		}
	}
	return limit, offset
}

func parsePositiveInt(raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value")
	}
	return v, nil
}
