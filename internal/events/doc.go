// Package events implements the transactional outbox pattern for publishing
// review lifecycle events to Kafka.
//
// # Overview
//
// State changes and the events describing them are written in the same
// database transaction: the review core inserts rows into the review_events
// table through OutboxRepository, and a background Publisher relays pending
// rows to Kafka. A row is marked published only after the broker accepts it,
// so delivery is at-least-once and consumers must deduplicate on event ID.
//
// # Components
//
//   - Emitter: Builds outbox events from review context and a payload
//   - OutboxRepository: Persists and claims outbox rows
//   - Publisher: Polls pending rows and relays them to Kafka
//
// # Event Types
//
// The service publishes events for key item lifecycle stages:
//
//   - item.claimed: An item was handed to a reviewer
//   - review.submitted: A reviewer decision was recorded
//   - item.finalized: An item reached the terminal state
//   - item.gold: An item was promoted to gold standard
//
// # Usage
//
// Insert an event inside the same transaction as the state change:
//
//	event, err := emitter.Emit(itemID.String(), domain.EventTypeReviewSubmitted, payload)
//	if err != nil {
//	    return err
//	}
//	if err := events.NewPgOutboxRepository(tx).Insert(ctx, event); err != nil {
//	    return err
//	}
//
// Run the publisher as a background worker:
//
//	publisher := events.NewPublisher(db, writer, cfg, logger, metrics)
//	go publisher.Run(ctx)
package events
