package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/datasetforge/review-service/internal/domain"
)

// Emitter builds outbox events from review context and a payload.
type Emitter struct {
	serviceName string
}

// NewEmitter creates a new Emitter. The service name is recorded in every
// event payload envelope as the source.
func NewEmitter(serviceName string) *Emitter {
	if serviceName == "" {
		serviceName = "review-service"
	}
	return &Emitter{serviceName: serviceName}
}

// envelope wraps event payloads with delivery metadata.
type envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	Source     string          `json:"source"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// Emit builds an outbox event for the aggregate. The payload is
// JSON-serialized into a metadata envelope.
func (e *Emitter) Emit(aggregateID, eventType string, payload interface{}) (*domain.OutboxEvent, error) {
	if aggregateID == "" {
		return nil, fmt.Errorf("aggregate_id is required")
	}
	if eventType == "" {
		return nil, fmt.Errorf("event_type is required")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	id := uuid.New()
	now := time.Now().UTC()

	body, err := json.Marshal(envelope{
		EventID:    id.String(),
		EventType:  eventType,
		Source:     e.serviceName,
		OccurredAt: now,
		Data:       data,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}

	return &domain.OutboxEvent{
		ID:          id,
		AggregateID: aggregateID,
		EventType:   eventType,
		Payload:     body,
		Status:      domain.OutboxStatusPending,
		CreatedAt:   now,
	}, nil
}
