// Package repository provides data access interfaces and implementations
// for the review queue service.
//
// # Overview
//
// This package defines repository interfaces and their PostgreSQL implementations
// following the repository pattern to abstract data persistence from business logic.
//
// # Repository Interfaces
//
// The package provides the following repository interfaces:
//
//   - ItemRepository: Manages dataset item persistence, claiming, and review state
//   - ReviewerRepository: Manages reviewer balances and counters
//   - ReviewLogRepository: Manages the append-only review audit log
//   - DatasetTypeRepository: Manages dataset type schemas
//   - CounterRepository: Manages per-type sequential item numbering
//   - PayoutRepository: Manages payout request lifecycle
//
// # Thread Safety
//
// All repository implementations are safe for concurrent use by multiple goroutines.
// The underlying pgxpool handles connection pooling and synchronization.
//
// # Error Handling
//
// All methods return domain-specific errors from the domain package.
// Wrap database errors with context using fmt.Errorf with %w verb.
// Common errors include:
//
//   - domain.ErrNotFound: Resource does not exist
//   - domain.ErrAlreadyExists: Unique constraint violation
//   - domain.ErrInvalidInput: Invalid parameters provided
//
// # Transactions
//
// Use the DBTX interface to support both pool and transaction contexts.
// For atomic multi-repository operations, begin a transaction with
// database.DB.Begin and construct per-transaction repositories from the pgx.Tx.
//
// # Usage Pattern
//
// Repositories are typically created at application startup and passed to services:
//
//	db, _ := database.New(ctx, cfg, logger)
//	itemRepo := repository.NewPgItemRepository(db)
//	reviewerRepo := repository.NewPgReviewerRepository(db)
//	logRepo := repository.NewPgReviewLogRepository(db)
package repository

import (
	"github.com/datasetforge/review-service/internal/database"
)

// DBTX is the database interface supporting both pool and transaction contexts.
// This allows repositories to work with both direct pool connections and transactions.
//
// Repository implementations follow a constructor pattern that accepts DBTX:
//
//	type PgItemRepository struct {
//	    db DBTX
//	}
//
//	func NewPgItemRepository(db DBTX) *PgItemRepository {
//	    return &PgItemRepository{db: db}
//	}
//
// This design enables:
//   - Direct usage with a connection pool for standard operations
//   - Transaction support by passing a transaction (pgx.Tx) instead
//   - Easy testing with mock implementations of DBTX
type DBTX = database.DBTX

// Filter pagination defaults and limits.
const (
	defaultFilterLimit = 100
	maxFilterLimit     = 1000
)

// applyPaginationDefaults normalizes limit and offset values for filter queries.
// It clamps limit to [1, maxFilterLimit] and ensures offset >= 0.
func applyPaginationDefaults(limit, offset *int) {
	if *limit <= 0 {
		*limit = defaultFilterLimit
	}
	if *limit > maxFilterLimit {
		*limit = maxFilterLimit
	}
	if *offset < 0 {
		*offset = 0
	}
}
