// Package outbox implements the transactional outbox: lifecycle events are
// appended in the same transaction as the record change they describe and a
// worker publishes them to Kafka afterwards.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entry is one pending event.
type Entry struct {
	ID            uuid.UUID
	AggregateType string // "citizen"
	AggregateID   string // record id
	EventType     string // e.g. "citizen.status_changed"
	Payload       []byte // JSON-encoded event
	CreatedAt     time.Time
	ProcessedAt   *time.Time // nil while pending
}

// IsPending reports whether the entry still awaits publication.
func (e *Entry) IsPending() bool {
	return e.ProcessedAt == nil
}

// NewEntry creates an entry with a generated id.
func NewEntry(aggregateType, aggregateID, eventType string, payload []byte, createdAt time.Time) *Entry {
	return &Entry{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     createdAt,
	}
}

// NewEventEntry JSON-encodes event and wraps it in an entry.
func NewEventEntry(aggregateType, aggregateID, eventType string, event any, createdAt time.Time) (*Entry, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", eventType, err)
	}
	return NewEntry(aggregateType, aggregateID, eventType, payload, createdAt), nil
}

// Store persists outbox entries. Implementations must be safe for concurrent use.
type Store interface {
	// Append adds an entry. Call it inside the transaction of the business change.
	Append(ctx context.Context, entry *Entry) error

	// FetchUnprocessed returns up to limit pending entries, oldest first.
	FetchUnprocessed(ctx context.Context, limit int) ([]*Entry, error)

	// MarkProcessed records successful publication.
	MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) error

	// CountPending returns the number of unpublished entries.
	CountPending(ctx context.Context) (int64, error)

	// DeleteProcessedBefore removes published entries older than before.
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}
