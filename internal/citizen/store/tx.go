package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	dErrors "idcard/pkg/domain-errors"
	platformsync "idcard/pkg/platform/sync"
	txcontext "idcard/pkg/platform/tx"
)

// DefaultTxTimeout bounds a transaction when the caller set no deadline.
const DefaultTxTimeout = 5 * time.Second

type lockKey struct{}

// WithLockKey names the record a transaction is about to mutate. The
// in-memory runner serialises transactions sharing a key; Postgres ignores it
// and relies on row locks.
func WithLockKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, lockKey{}, key)
}

func lockKeyFrom(ctx context.Context) string {
	if key, ok := ctx.Value(lockKey{}).(string); ok {
		return key
	}
	return ""
}

func boundContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout == 0 {
		timeout = DefaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return nil
}

// PostgresTx runs a function inside a database transaction carried on the context.
type PostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

// NewPostgresTx creates a transaction runner. A zero timeout means DefaultTxTimeout.
func NewPostgresTx(db *sql.DB, timeout time.Duration) *PostgresTx {
	return &PostgresTx{db: db, timeout: timeout}
}

func (t *PostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := cancelled(ctx); err != nil {
		return err
	}
	// Nested calls join the outer transaction.
	if _, ok := txcontext.From(ctx); ok {
		return fn(ctx)
	}

	ctx, cancel := boundContext(ctx, t.timeout)
	defer cancel()

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is a no-op
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit()
}

// ShardedTx serialises in-memory mutations per record using a sharded mutex.
// Writes to different records proceed in parallel.
type ShardedTx struct {
	mu           *platformsync.ShardedMutex
	timeout      time.Duration
	lockWait     prometheus.Histogram
	acquisitions prometheus.Counter
}

// NewShardedTx creates an in-memory transaction runner whose lock metrics
// register with reg. A nil reg leaves the collectors unregistered.
func NewShardedTx(reg prometheus.Registerer) *ShardedTx {
	factory := promauto.With(reg)
	return &ShardedTx{
		mu: platformsync.NewShardedMutex(),
		lockWait: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "idcard_citizen_shard_lock_wait_seconds",
			Help:    "Time spent waiting to acquire a citizen shard lock",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		acquisitions: factory.NewCounter(prometheus.CounterOpts{
			Name: "idcard_citizen_shard_lock_acquisitions_total",
			Help: "Total number of citizen shard lock acquisitions",
		}),
	}
}

type heldKey struct{}

func (t *ShardedTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := cancelled(ctx); err != nil {
		return err
	}
	key := lockKeyFrom(ctx)
	if held, ok := ctx.Value(heldKey{}).(string); ok && held == key {
		return fn(ctx)
	}

	ctx, cancel := boundContext(ctx, t.timeout)
	defer cancel()

	lockStart := time.Now()
	t.mu.Lock(key)
	t.lockWait.Observe(time.Since(lockStart).Seconds())
	t.acquisitions.Inc()
	defer t.mu.Unlock(key)

	if err := cancelled(ctx); err != nil {
		return err
	}
	return fn(context.WithValue(ctx, heldKey{}, key))
}
