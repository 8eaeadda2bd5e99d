// Package service owns the citizen lifecycle: record operations, the status
// transition engine, bulk operations and the dashboard aggregation.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	citizenmetrics "idcard/internal/citizen/metrics"
	"idcard/internal/citizen/models"
	"idcard/internal/citizen/policy"
	"idcard/internal/citizen/store"
	id "idcard/pkg/domain"
	dErrors "idcard/pkg/domain-errors"
	"idcard/pkg/platform/outbox"
	"idcard/pkg/platform/sentinel"
	"idcard/pkg/platform/validation"
	"idcard/pkg/requestcontext"
)

const (
	defaultBulkConcurrency = 8
	tracerName             = "idcard/citizen"
)

// Service is the single writer of status, print status and history.
type Service struct {
	store           Store
	gate            Authorizer
	tx              StoreTx
	statsCache      StatsCache
	events          EventStore
	logger          *slog.Logger
	metrics         *citizenmetrics.Metrics
	tracer          trace.Tracer
	prefix          string
	normalizer      models.BusinessKeyNormalizer
	bulkConcurrency int
	maxBatch        int
}

func New(st Store, gate Authorizer, opts ...Option) *Service {
	s := &Service{
		store:           st,
		gate:            gate,
		prefix:          models.DefaultBusinessIDPrefix,
		bulkConcurrency: defaultBulkConcurrency,
		maxBatch:        validation.MaxBulkIDs,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = directTx{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	s.normalizer = models.NewBusinessKeyNormalizer(s.prefix)
	return s
}

// directTx runs fn without a transaction.
type directTx struct{}

func (directTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// inRecordTx runs fn in a transaction scoped to one record.
func (s *Service) inRecordTx(ctx context.Context, recordID id.CitizenID, fn func(ctx context.Context) error) error {
	return s.tx.RunInTx(store.WithLockKey(ctx, recordID.String()), fn)
}

func (s *Service) authorize(ctx context.Context, actor id.Actor, capability policy.Capability) error {
	if s.gate == nil {
		return nil
	}
	if err := s.gate.Authorize(ctx, actor, capability); err != nil {
		s.logger.WarnContext(ctx, "citizen_access_denied",
			"actor", actor.Identity(),
			"role", string(actor.Role),
			"capability", string(capability),
			"request_id", requestcontext.RequestID(ctx),
		)
		return err
	}
	return nil
}

// translate maps store sentinels to domain errors. Errors that already carry a
// domain code pass through untouched.
func translate(err error, action string) error {
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "citizen not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.Wrap(err, dErrors.CodeDuplicateKey, "citizen_id already registered")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "citizen was modified concurrently; reload and retry")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "citizen_id and status history cannot be rewritten")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, action)
	default:
		return dErrors.Wrap(err, dErrors.CodeStorageFailure, action)
	}
}

// emit appends a lifecycle event to the outbox inside the caller's transaction.
func (s *Service) emit(ctx context.Context, recordID id.CitizenID, eventType string, event any) error {
	if s.events == nil {
		return nil
	}
	entry, err := outbox.NewEventEntry(models.AggregateCitizen, recordID.String(), eventType, event, requestcontext.Now(ctx))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode citizen event")
	}
	if err := s.events.Append(ctx, entry); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorageFailure, fmt.Sprintf("failed to record %s event", eventType))
	}
	return nil
}

// invalidateStats drops the cached dashboard after a committed mutation. A
// failure only widens staleness up to the cache TTL.
func (s *Service) invalidateStats(ctx context.Context) {
	if s.statsCache == nil {
		return
	}
	if err := s.statsCache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "citizen_stats_invalidate_failed", "error", err)
		if s.metrics != nil {
			s.metrics.IncrementCacheFailure()
		}
	}
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
