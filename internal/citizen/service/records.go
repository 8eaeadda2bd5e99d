package service

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"idcard/internal/citizen/models"
	"idcard/internal/citizen/policy"
	id "idcard/pkg/domain"
	dErrors "idcard/pkg/domain-errors"
	"idcard/pkg/requestcontext"
)

// CreateCommand is a registrar's submission of a new applicant.
type CreateCommand struct {
	CitizenID  string
	Profile    models.Profile
	Biometrics models.Biometrics
	GivenDate  *time.Time
}

// Create registers a record in waiting/unprinted with one history entry.
func (s *Service) Create(ctx context.Context, actor id.Actor, cmd CreateCommand) (_ *models.Citizen, err error) {
	ctx, span := s.startSpan(ctx, "citizen.create")
	defer func() { endSpan(span, err) }()
	if s.metrics != nil {
		defer s.metrics.ObserveLatency("create", time.Now())
	}

	if err := s.authorize(ctx, actor, policy.CapCreate); err != nil {
		return nil, err
	}
	citizenID := strings.TrimSpace(cmd.CitizenID)
	key := s.normalizer.Normalize(citizenID)
	if key == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "citizen_id is required")
	}

	now := requestcontext.Now(ctx)
	c, err := models.NewCitizen(id.NewCitizenID(), citizenID, key, cmd.Profile, cmd.Biometrics, cmd.GivenDate, actor.Identity(), now)
	if err != nil {
		return nil, err
	}

	err = s.inRecordTx(ctx, c.ID, func(ctx context.Context) error {
		if err := s.store.Create(ctx, c); err != nil {
			return translate(err, "failed to create citizen")
		}
		return s.emit(ctx, c.ID, models.EventCitizenRegistered, models.CitizenRegistered{
			RecordID:     c.ID,
			CitizenID:    c.CitizenID,
			RegisteredBy: c.RegisteredBy,
			At:           now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx)
	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	s.logger.InfoContext(ctx, "citizen_created",
		"record_id", c.ID.String(),
		"citizen_id", c.CitizenID,
		"actor", actor.Identity(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return c, nil
}

// Get returns one record including biometric references.
func (s *Service) Get(ctx context.Context, actor id.Actor, recordID id.CitizenID) (*models.Citizen, error) {
	if err := s.authorize(ctx, actor, policy.CapRead); err != nil {
		return nil, err
	}
	c, err := s.store.FindByID(ctx, recordID)
	if err != nil {
		return nil, translate(err, "failed to load citizen")
	}
	return c, nil
}

// GetBiometrics returns only the biometric references of a record.
func (s *Service) GetBiometrics(ctx context.Context, actor id.Actor, recordID id.CitizenID) (models.Biometrics, error) {
	c, err := s.Get(ctx, actor, recordID)
	if err != nil {
		return models.Biometrics{}, err
	}
	return c.Biometrics, nil
}

// List returns records newest first. Biometrics are blanked unless the filter asks for them.
func (s *Service) List(ctx context.Context, actor id.Actor, filter models.Filter) ([]*models.Citizen, error) {
	if err := s.authorize(ctx, actor, policy.CapRead); err != nil {
		return nil, err
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "limit and offset must not be negative")
	}
	records, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, translate(err, "failed to list citizens")
	}
	return records, nil
}

// Update applies a partial edit. Only waiting and rejected records are
// editable; editing a rejected record resubmits it to waiting.
func (s *Service) Update(ctx context.Context, actor id.Actor, recordID id.CitizenID, patch models.Patch, opts ...TransitionOption) (_ *models.Citizen, err error) {
	ctx, span := s.startSpan(ctx, "citizen.update", attribute.String("record_id", recordID.String()))
	defer func() { endSpan(span, err) }()

	if err := s.authorize(ctx, actor, policy.CapUpdate); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "no fields to update")
	}
	o := applyTransitionOptions(opts)
	now := requestcontext.Now(ctx)

	var updated *models.Citizen
	var resubmitted bool
	err = s.inRecordTx(ctx, recordID, func(ctx context.Context) error {
		c, err := s.store.FindByIDForUpdate(ctx, recordID)
		if err != nil {
			return translate(err, "failed to load citizen")
		}
		if err := o.checkVersion(c); err != nil {
			return err
		}
		if !c.IsEditable() {
			return dErrors.New(dErrors.CodeInvalidTransition, "citizen "+c.CitizenID+" is "+string(c.Status)+" and can no longer be edited")
		}

		patch.Profile.Apply(&c.Profile)
		if patch.Biometrics.Apply(&c.Biometrics) {
			if missing := c.Biometrics.Missing(); len(missing) > 0 {
				return dErrors.New(dErrors.CodeInvalidInput, "biometrics cannot be cleared: "+strings.Join(missing, ", "))
			}
		}
		if patch.GivenDate != nil {
			c.SetGivenDate(patch.GivenDate)
		}
		c.UpdatedAt = now

		var entry *models.HistoryEntry
		if c.Status == models.StatusRejected {
			if err := s.authorize(ctx, actor, policy.CapResubmit); err != nil {
				return err
			}
			if err := c.TransitionTo(models.StatusWaiting, actor.Identity(), now); err != nil {
				return err
			}
			last, _ := c.LastHistory()
			entry = &last
			resubmitted = true
		}

		if entry != nil {
			err = s.store.UpdateWithHistory(ctx, c, *entry)
		} else {
			err = s.store.Update(ctx, c)
		}
		if err != nil {
			return translate(err, "failed to update citizen")
		}
		if entry != nil {
			if err := s.emit(ctx, c.ID, models.EventCitizenStatusChanged, models.CitizenStatusChanged{
				RecordID:  c.ID,
				CitizenID: c.CitizenID,
				From:      models.StatusRejected,
				To:        models.StatusWaiting,
				ChangedBy: entry.ChangedBy,
				At:        now,
			}); err != nil {
				return err
			}
		}
		if err := s.emit(ctx, c.ID, models.EventCitizenProfileUpdated, models.CitizenProfileUpdated{
			RecordID:  c.ID,
			CitizenID: c.CitizenID,
			UpdatedBy: actor.Identity(),
			At:        now,
		}); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	if resubmitted {
		s.invalidateStats(ctx)
		if s.metrics != nil {
			s.metrics.RecordTransition(string(models.StatusWaiting), true)
		}
	}
	s.logger.InfoContext(ctx, "citizen_updated",
		"record_id", updated.ID.String(),
		"citizen_id", updated.CitizenID,
		"resubmitted", resubmitted,
		"actor", actor.Identity(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return updated, nil
}

// Delete destroys a waiting or rejected record and retires its citizen_id.
func (s *Service) Delete(ctx context.Context, actor id.Actor, recordID id.CitizenID) (err error) {
	ctx, span := s.startSpan(ctx, "citizen.delete", attribute.String("record_id", recordID.String()))
	defer func() { endSpan(span, err) }()

	if err := s.authorize(ctx, actor, policy.CapDelete); err != nil {
		return err
	}
	var citizenID string
	err = s.inRecordTx(ctx, recordID, func(ctx context.Context) error {
		c, err := s.store.FindByIDForUpdate(ctx, recordID)
		if err != nil {
			return translate(err, "failed to load citizen")
		}
		if !c.IsDeletable() {
			return dErrors.New(dErrors.CodeInvalidTransition, "citizen "+c.CitizenID+" is "+string(c.Status)+" and cannot be deleted")
		}
		if err := s.store.Delete(ctx, recordID); err != nil {
			return translate(err, "failed to delete citizen")
		}
		citizenID = c.CitizenID
		return s.emit(ctx, recordID, models.EventCitizenDeleted, models.CitizenDeleted{
			RecordID:  recordID,
			CitizenID: c.CitizenID,
			DeletedBy: actor.Identity(),
			At:        requestcontext.Now(ctx),
		})
	})
	if err != nil {
		return err
	}

	s.invalidateStats(ctx)
	if s.metrics != nil {
		s.metrics.IncrementDeleted()
	}
	s.logger.InfoContext(ctx, "citizen_deleted",
		"record_id", recordID.String(),
		"citizen_id", citizenID,
		"actor", actor.Identity(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}
