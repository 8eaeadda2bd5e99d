package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"idcard/internal/citizen/models"
	"idcard/internal/citizen/policy"
	id "idcard/pkg/domain"
	dErrors "idcard/pkg/domain-errors"
	"idcard/pkg/platform/validation"
	"idcard/pkg/requestcontext"
)

func (s *Service) checkBatch(ids []string) error {
	if len(ids) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "ids must not be empty")
	}
	return validation.CheckSliceCount("ids", len(ids), s.maxBatch)
}

// fanOut runs fn for every index with bounded parallelism. fn records its own
// outcome; nothing it does cancels its siblings.
func (s *Service) fanOut(n int, fn func(i int)) {
	var g errgroup.Group
	g.SetLimit(s.bulkConcurrency)
	for i := range n {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}

// pinTime gives every write in one bulk request the same timestamp.
func pinTime(ctx context.Context) context.Context {
	return requestcontext.WithTime(ctx, requestcontext.Now(ctx))
}

// BulkTransition applies TransitionStatus to each id independently. Results
// follow input order and successful writes are kept when siblings fail.
func (s *Service) BulkTransition(ctx context.Context, actor id.Actor, ids []string, target models.Status) (_ *models.BulkResult, err error) {
	ctx, span := s.startSpan(ctx, "citizen.bulk_transition",
		attribute.Int("ids", len(ids)),
		attribute.String("target", string(target)),
	)
	defer func() { endSpan(span, err) }()
	if s.metrics != nil {
		defer s.metrics.ObserveLatency("bulk_transition", time.Now())
	}

	if err := s.checkBatch(ids); err != nil {
		return nil, err
	}
	if !target.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("invalid status: %q", target))
	}
	action, _ := models.ActionFor(target)
	if err := s.authorize(ctx, actor, policy.CapabilityFor(action)); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveBulkBatch("transition", len(ids))
	}

	ctx = pinTime(ctx)
	items := make([]models.ItemResult, len(ids))
	s.fanOut(len(ids), func(i int) {
		items[i] = models.ItemResult{ID: ids[i]}
		recordID, err := id.ParseCitizenID(ids[i])
		if err != nil {
			items[i].Err = err
			return
		}
		c, _, err := s.transition(ctx, actor, recordID, target, transitionOptions{})
		if s.metrics != nil {
			s.metrics.RecordTransition(string(target), err == nil)
		}
		items[i].Citizen, items[i].Err, items[i].Success = c, err, err == nil
	})

	result := models.NewBulkResult(items)
	s.finishBulk(ctx, "citizen_bulk_transition", actor, result, "to", string(target))
	return result, nil
}

// SendForProcessing moves the waiting records among ids to pending. Records
// in any other status and unknown ids are skipped, not failed.
func (s *Service) SendForProcessing(ctx context.Context, actor id.Actor, ids []string) (_ *models.BulkResult, err error) {
	ctx, span := s.startSpan(ctx, "citizen.send_for_processing", attribute.Int("ids", len(ids)))
	defer func() { endSpan(span, err) }()

	if err := s.checkBatch(ids); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, policy.CapSend); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveBulkBatch("send", len(ids))
	}

	items := make([]models.ItemResult, len(ids))
	parsed := make([]id.CitizenID, 0, len(ids))
	for i, raw := range ids {
		items[i] = models.ItemResult{ID: raw}
		recordID, err := id.ParseCitizenID(raw)
		if err != nil {
			items[i].Err = err
			continue
		}
		parsed = append(parsed, recordID)
	}

	current, err := s.store.FindByIDs(ctx, parsed)
	if err != nil {
		return nil, translate(err, "failed to load citizens")
	}

	ctx = pinTime(ctx)
	s.fanOut(len(ids), func(i int) {
		if items[i].Err != nil {
			return
		}
		recordID, _ := id.ParseCitizenID(ids[i])
		c, ok := current[recordID]
		if !ok || c.Status != models.StatusWaiting {
			items[i].Skipped = true
			return
		}
		updated, _, err := s.transition(ctx, actor, recordID, models.StatusPending, transitionOptions{})
		switch {
		case err == nil:
			items[i].Citizen, items[i].Success = updated, true
		case dErrors.HasCode(err, dErrors.CodeInvalidTransition), dErrors.HasCode(err, dErrors.CodeNotFound):
			// moved or deleted since the filter read
			items[i].Skipped = true
		default:
			items[i].Err = err
		}
		if s.metrics != nil && !items[i].Skipped {
			s.metrics.RecordTransition(string(models.StatusPending), err == nil)
		}
	})

	result := models.NewBulkResult(items)
	s.finishBulk(ctx, "citizen_bulk_send", actor, result)
	return result, nil
}

// BulkPrintStatusUpdate validates every id before writing anything: a
// malformed id rejects the whole batch, as does a failed pre-load. Writes are
// then applied per record with no cross-record rollback.
func (s *Service) BulkPrintStatusUpdate(ctx context.Context, actor id.Actor, ids []string, target models.PrintStatus) (_ *models.BulkResult, err error) {
	ctx, span := s.startSpan(ctx, "citizen.bulk_print_status",
		attribute.Int("ids", len(ids)),
		attribute.String("target", string(target)),
	)
	defer func() { endSpan(span, err) }()

	if err := s.checkBatch(ids); err != nil {
		return nil, err
	}
	if !target.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("invalid print status: %q", target))
	}
	if err := s.authorize(ctx, actor, policy.CapPrint); err != nil {
		return nil, err
	}

	recordIDs := make([]id.CitizenID, len(ids))
	for i, raw := range ids {
		recordID, err := id.ParseCitizenID(raw)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("invalid citizen id at position %d: %q", i, raw))
		}
		recordIDs[i] = recordID
	}
	if s.metrics != nil {
		s.metrics.ObserveBulkBatch("print_status", len(ids))
	}

	existing, err := s.store.FindByIDs(ctx, recordIDs)
	if err != nil {
		return nil, translate(err, "failed to load citizens")
	}

	ctx = pinTime(ctx)
	items := make([]models.ItemResult, len(ids))
	s.fanOut(len(ids), func(i int) {
		items[i] = models.ItemResult{ID: ids[i]}
		if _, ok := existing[recordIDs[i]]; !ok {
			items[i].Err = dErrors.New(dErrors.CodeNotFound, "citizen not found")
			return
		}
		c, err := s.printTransition(ctx, actor, recordIDs[i], target)
		items[i].Citizen, items[i].Err, items[i].Success = c, err, err == nil
	})

	result := models.NewBulkResult(items)
	s.finishBulk(ctx, "citizen_bulk_print_status", actor, result, "to", string(target))
	return result, nil
}

func (s *Service) finishBulk(ctx context.Context, event string, actor id.Actor, result *models.BulkResult, attrs ...any) {
	if result.Succeeded > 0 {
		s.invalidateStats(ctx)
	}
	args := append([]any{
		"actor", actor.Identity(),
		"total", len(result.Items),
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"request_id", requestcontext.RequestID(ctx),
	}, attrs...)
	if result.Failed > 0 {
		args = append(args, "first_error", firstError(result))
	}
	s.logger.InfoContext(ctx, event, args...)
}

func firstError(result *models.BulkResult) string {
	for _, it := range result.Items {
		if it.Err != nil {
			var de *dErrors.Error
			if errors.As(it.Err, &de) {
				return string(de.Code)
			}
			return it.Err.Error()
		}
	}
	return ""
}
