package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"idcard/internal/citizen/models"
	"idcard/internal/citizen/policy"
	id "idcard/pkg/domain"
	dErrors "idcard/pkg/domain-errors"
	"idcard/pkg/requestcontext"
)

// TransitionOption tunes a single-record mutation.
type TransitionOption func(*transitionOptions)

type transitionOptions struct {
	expectedVersion int64
}

// WithExpectedVersion rejects the write with CodeConflict unless the stored
// record is still at version v.
func WithExpectedVersion(v int64) TransitionOption {
	return func(o *transitionOptions) {
		o.expectedVersion = v
	}
}

func applyTransitionOptions(opts []TransitionOption) transitionOptions {
	var o transitionOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o transitionOptions) checkVersion(c *models.Citizen) error {
	if o.expectedVersion > 0 && c.Version != o.expectedVersion {
		return dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("citizen %s is at version %d, expected %d", c.CitizenID, c.Version, o.expectedVersion))
	}
	return nil
}

// TransitionStatus moves one record along a legal status edge. The status
// write and its history entry commit together or not at all.
func (s *Service) TransitionStatus(ctx context.Context, actor id.Actor, recordID id.CitizenID, target models.Status, opts ...TransitionOption) (_ *models.Citizen, err error) {
	ctx, span := s.startSpan(ctx, "citizen.transition_status",
		attribute.String("record_id", recordID.String()),
		attribute.String("target", string(target)),
	)
	defer func() { endSpan(span, err) }()
	if s.metrics != nil {
		defer s.metrics.ObserveLatency("transition_status", time.Now())
	}

	if !target.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("invalid status: %q", target))
	}
	action, _ := models.ActionFor(target)
	if err := s.authorize(ctx, actor, policy.CapabilityFor(action)); err != nil {
		return nil, err
	}

	c, from, err := s.transition(ctx, actor, recordID, target, applyTransitionOptions(opts))
	if s.metrics != nil {
		s.metrics.RecordTransition(string(target), err == nil)
	}
	if err != nil {
		s.logger.InfoContext(ctx, "citizen_transition_rejected",
			"record_id", recordID.String(),
			"to", string(target),
			"actor", actor.Identity(),
			"reason", string(dErrors.CodeOf(err)),
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, err
	}

	s.invalidateStats(ctx)
	s.logger.InfoContext(ctx, "citizen_transitioned",
		"record_id", c.ID.String(),
		"citizen_id", c.CitizenID,
		"from", string(from),
		"to", string(target),
		"actor", actor.Identity(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return c, nil
}

// transition is the authorised core shared by single and bulk paths.
func (s *Service) transition(ctx context.Context, actor id.Actor, recordID id.CitizenID, target models.Status, o transitionOptions) (*models.Citizen, models.Status, error) {
	var (
		updated *models.Citizen
		from    models.Status
	)
	err := s.inRecordTx(ctx, recordID, func(ctx context.Context) error {
		c, err := s.store.FindByIDForUpdate(ctx, recordID)
		if err != nil {
			return translate(err, "failed to load citizen")
		}
		if err := o.checkVersion(c); err != nil {
			return err
		}
		from = c.Status
		now := requestcontext.Now(ctx)
		if err := c.TransitionTo(target, actor.Identity(), now); err != nil {
			return err
		}
		entry, _ := c.LastHistory()
		if err := s.store.UpdateWithHistory(ctx, c, entry); err != nil {
			return translate(err, "failed to update citizen status")
		}
		if err := s.emit(ctx, c.ID, models.EventCitizenStatusChanged, models.CitizenStatusChanged{
			RecordID:  c.ID,
			CitizenID: c.CitizenID,
			From:      from,
			To:        target,
			ChangedBy: entry.ChangedBy,
			At:        now,
		}); err != nil {
			return err
		}
		updated = c
		return nil
	})
	return updated, from, err
}

// MarkPrinted records a card print. Printing from any state but unprinted is a reprint.
func (s *Service) MarkPrinted(ctx context.Context, actor id.Actor, recordID id.CitizenID) (*models.Citizen, error) {
	return s.SetPrintStatus(ctx, actor, recordID, models.PrintStatusPrinted)
}

// MarkDelivered records hand-over of a printed card.
func (s *Service) MarkDelivered(ctx context.Context, actor id.Actor, recordID id.CitizenID) (*models.Citizen, error) {
	return s.SetPrintStatus(ctx, actor, recordID, models.PrintStatusDelivered)
}

// MarkFailed records a failed print run.
func (s *Service) MarkFailed(ctx context.Context, actor id.Actor, recordID id.CitizenID) (*models.Citizen, error) {
	return s.SetPrintStatus(ctx, actor, recordID, models.PrintStatusFailed)
}

// SetPrintStatus moves an approved record's card along a legal print edge.
// Status history is not touched.
func (s *Service) SetPrintStatus(ctx context.Context, actor id.Actor, recordID id.CitizenID, target models.PrintStatus) (_ *models.Citizen, err error) {
	ctx, span := s.startSpan(ctx, "citizen.set_print_status",
		attribute.String("record_id", recordID.String()),
		attribute.String("target", string(target)),
	)
	defer func() { endSpan(span, err) }()

	if !target.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("invalid print status: %q", target))
	}
	if err := s.authorize(ctx, actor, policy.CapPrint); err != nil {
		return nil, err
	}
	c, err := s.printTransition(ctx, actor, recordID, target)
	if err != nil {
		return nil, err
	}
	s.invalidateStats(ctx)
	return c, nil
}

// printTransition applies one print change under the record lock.
func (s *Service) printTransition(ctx context.Context, actor id.Actor, recordID id.CitizenID, target models.PrintStatus) (*models.Citizen, error) {
	var updated *models.Citizen
	var from models.PrintStatus
	err := s.inRecordTx(ctx, recordID, func(ctx context.Context) error {
		c, err := s.store.FindByIDForUpdate(ctx, recordID)
		if err != nil {
			return translate(err, "failed to load citizen")
		}
		from = c.PrintStatus
		now := requestcontext.Now(ctx)
		if err := c.SetPrintStatus(target, now); err != nil {
			return err
		}
		if err := s.store.Update(ctx, c); err != nil {
			return translate(err, "failed to update print status")
		}
		if err := s.emit(ctx, c.ID, models.EventCitizenPrintStatusChanged, models.CitizenPrintStatusChanged{
			RecordID:  c.ID,
			CitizenID: c.CitizenID,
			From:      from,
			To:        target,
			Reprint:   target == models.PrintStatusPrinted && models.IsReprint(from),
			ChangedBy: actor.Identity(),
			At:        now,
		}); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if s.metrics != nil {
		s.metrics.RecordPrintUpdate(string(target), err == nil)
	}
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "citizen_print_status_changed",
		"record_id", updated.ID.String(),
		"citizen_id", updated.CitizenID,
		"from", string(from),
		"to", string(target),
		"actor", actor.Identity(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return updated, nil
}
