package service

import (
	"context"
	"time"

	"idcard/internal/citizen/models"
	"idcard/internal/citizen/policy"
	id "idcard/pkg/domain"
	dErrors "idcard/pkg/domain-errors"
	"idcard/pkg/requestcontext"
)

// DashboardStats returns the zero-defaulted status and print-status counts.
// Cache failures fall back to the store and never fail the call.
func (s *Service) DashboardStats(ctx context.Context, actor id.Actor) (*models.Stats, error) {
	if err := s.authorize(ctx, actor, policy.CapStats); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		defer s.metrics.ObserveLatency("dashboard_stats", time.Now())
	}

	if s.statsCache != nil {
		cached, ok, err := s.statsCache.Get(ctx)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "citizen_stats_cache_read_failed", "error", err)
			if s.metrics != nil {
				s.metrics.IncrementCacheFailure()
			}
		case ok:
			if s.metrics != nil {
				s.metrics.IncrementCacheHit()
			}
			return cached, nil
		}
	}
	if s.metrics != nil {
		s.metrics.IncrementCacheMiss()
	}

	counts, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, translate(err, "failed to count citizens")
	}
	stats := models.NewStats(counts, requestcontext.Now(ctx).UTC())

	if s.statsCache != nil {
		if err := s.statsCache.Set(ctx, stats); err != nil {
			s.logger.WarnContext(ctx, "citizen_stats_cache_write_failed", "error", err)
			if s.metrics != nil {
				s.metrics.IncrementCacheFailure()
			}
		}
	}
	return stats, nil
}

// FindByFuzzyBusinessID resolves a citizen_id typed with or without the
// national prefix, in any case. It is the citizens' self-service lookup and
// needs no capability.
func (s *Service) FindByFuzzyBusinessID(ctx context.Context, input string) (*models.Citizen, error) {
	key := s.normalizer.Normalize(input)
	if key == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "citizen_id is required")
	}
	c, err := s.store.FindByBusinessKey(ctx, key)
	if err != nil {
		return nil, translate(err, "failed to look up citizen")
	}
	return c, nil
}
