package service

import (
	"context"

	"idcard/internal/citizen/models"
	"idcard/internal/citizen/policy"
	id "idcard/pkg/domain"
	"idcard/pkg/platform/outbox"
)

// Store is the persistence contract for citizen records.
// Error contract:
//   - finders and mutators return sentinel.ErrNotFound for unknown ids
//   - Create returns sentinel.ErrAlreadyUsed for taken or retired business ids
//   - Update returns sentinel.ErrConflict on a stale version and
//     sentinel.ErrInvalidState when an immutable field or the history would be rewritten
//   - UpdateWithHistory has Update's contract and appends entry in the same
//     atomic step, so no reader sees the new status without its history row
type Store interface {
	Create(ctx context.Context, c *models.Citizen) error
	FindByID(ctx context.Context, recordID id.CitizenID) (*models.Citizen, error)
	FindByIDForUpdate(ctx context.Context, recordID id.CitizenID) (*models.Citizen, error)
	FindByIDs(ctx context.Context, ids []id.CitizenID) (map[id.CitizenID]*models.Citizen, error)
	FindByBusinessKey(ctx context.Context, key string) (*models.Citizen, error)
	List(ctx context.Context, filter models.Filter) ([]*models.Citizen, error)
	Update(ctx context.Context, c *models.Citizen) error
	UpdateWithHistory(ctx context.Context, c *models.Citizen, entry models.HistoryEntry) error
	Delete(ctx context.Context, recordID id.CitizenID) error
	CountByStatus(ctx context.Context) (models.Counts, error)
}

// StoreTx runs fn atomically. The context passed to fn carries the transaction.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Authorizer decides whether actor holds capability.
type Authorizer interface {
	Authorize(ctx context.Context, actor id.Actor, capability policy.Capability) error
}

// StatsCache holds the last computed dashboard summary.
type StatsCache interface {
	Get(ctx context.Context) (*models.Stats, bool, error)
	Set(ctx context.Context, stats *models.Stats) error
	Invalidate(ctx context.Context) error
}

// EventStore receives lifecycle events inside the mutation's transaction.
type EventStore interface {
	Append(ctx context.Context, entry *outbox.Entry) error
}
