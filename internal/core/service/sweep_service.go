package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/zentale/story-system/internal/api/metrics"
	"github.com/zentale/story-system/internal/core/domain"
	"github.com/zentale/story-system/internal/core/ports"
)

// TaskRunner fans per-account tasks out to a worker pool. Tasks for the same
// account run in order; Run blocks until all tasks finish and returns the
// number that failed.
type TaskRunner interface {
	Run(ctx context.Context, ids []string, task func(ctx context.Context, id string) error) int
}

type sweepService struct {
	repo ports.AccountRepository
	pool TaskRunner
	log  zerolog.Logger
}

// NewSweepService returns a SweepService implementation.
func NewSweepService(repo ports.AccountRepository, pool TaskRunner, log zerolog.Logger) ports.SweepService {
	return &sweepService{repo: repo, pool: pool, log: log}
}

// Run executes the scheduled credit maintenance pass: floor depleted metered
// text balances, then grant the monthly yearly-plan bonus. Each account is an
// independent atomic update, so a partially failed run leaves no account half
// done and a rerun picks up exactly the remainder.
func (s *sweepService) Run(ctx context.Context, now time.Time) (*ports.SweepSummary, error) {
	period := now.UTC().Format("2006-01")
	summary := &ports.SweepSummary{}

	resetIDs, err := s.repo.ListTextCreditsBelow(ctx, domain.TextResetThreshold)
	if err != nil {
		return nil, fmt.Errorf("sweep: list reset candidates: %w", err)
	}

	var reset int64
	summary.Failed += s.pool.Run(ctx, resetIDs, func(ctx context.Context, userID string) error {
		applied, err := s.repo.FloorTextCredits(ctx, userID, domain.TextResetThreshold, domain.TextResetFloor)
		if err != nil {
			metrics.SweepAccountsTotal.WithLabelValues("text_reset", "error").Inc()
			s.log.Error().Err(err).Str("user_id", userID).Msg("text reset failed")
			return err
		}
		if applied {
			atomic.AddInt64(&reset, 1)
			metrics.SweepAccountsTotal.WithLabelValues("text_reset", "applied").Inc()
		} else {
			metrics.SweepAccountsTotal.WithLabelValues("text_reset", "skipped").Inc()
		}
		return nil
	})
	summary.TextReset = int(atomic.LoadInt64(&reset))

	bonusIDs, err := s.repo.ListBonusCandidates(ctx, domain.PlanLiteYearly, period)
	if err != nil {
		return summary, fmt.Errorf("sweep: list bonus candidates: %w", err)
	}

	var granted int64
	summary.Failed += s.pool.Run(ctx, bonusIDs, func(ctx context.Context, userID string) error {
		applied, err := s.repo.GrantPeriodBonus(ctx, userID, domain.PlanLiteYearly, domain.YearlyBonusText, domain.YearlyBonusAudio, period)
		if err != nil {
			metrics.SweepAccountsTotal.WithLabelValues("yearly_bonus", "error").Inc()
			s.log.Error().Err(err).Str("user_id", userID).Msg("bonus grant failed")
			return err
		}
		if applied {
			atomic.AddInt64(&granted, 1)
			metrics.SweepAccountsTotal.WithLabelValues("yearly_bonus", "applied").Inc()
		} else {
			metrics.SweepAccountsTotal.WithLabelValues("yearly_bonus", "skipped").Inc()
		}
		return nil
	})
	summary.BonusGranted = int(atomic.LoadInt64(&granted))

	s.log.Info().
		Str("period", period).
		Int("text_reset", summary.TextReset).
		Int("bonus_granted", summary.BonusGranted).
		Int("failed", summary.Failed).
		Msg("credit sweep finished")

	return summary, nil
}
