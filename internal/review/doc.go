// Package review implements the review queue core: claiming, submission,
// item lifecycle, sequential numbering, and payouts.
//
// # Overview
//
// The package provides five services over the repository layer:
//
//   - Engine: Atomically applies one reviewer decision (approve, edit,
//     skip) to a claimed item, credits the reviewer, writes the audit log,
//     and emits outbox events, all in one transaction
//   - QueueService: Hands out the next eligible item to a reviewer,
//     reclaims stale locks, releases locks, records flags, and reports
//     queue depth
//   - ItemService: Creates items and dataset types, assigning sequential
//     numbers from the per-type counter
//   - NumberingService: Backfills numbers for pre-existing items
//   - PayoutService: Handles payout requests against reviewer balances
//
// # Concurrency
//
// All item mutations happen under PostgreSQL row locks. Claiming uses a
// single UPDATE with FOR UPDATE SKIP LOCKED so concurrent claimers never
// receive the same item; submissions lock the item row first and the
// reviewer row second.
package review
