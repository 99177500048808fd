package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/zentale/story-system/internal/api/metrics"
	"github.com/zentale/story-system/internal/core/domain"
	"github.com/zentale/story-system/internal/core/ports"
)

// IdempotencyLedger abstracts the billing replay guard (Redis).
type IdempotencyLedger interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Record(ctx context.Context, eventID string) error
}

type billingService struct {
	repo  ports.AccountRepository
	dedup IdempotencyLedger
	log   zerolog.Logger
}

// NewBillingService returns a BillingService implementation.
func NewBillingService(repo ports.AccountRepository, dedup IdempotencyLedger, log zerolog.Logger) ports.BillingService {
	return &billingService{repo: repo, dedup: dedup, log: log}
}

// ProcessEvent reconciles one billing lifecycle event into the account.
// Delivery is at-least-once, so events with an upstream ID pass through the
// replay guard before their (non-idempotent) credit grants apply. A missing
// account surfaces domain.ErrAccountNotFound so the webhook can answer 404
// and the source retries after provisioning.
func (s *billingService) ProcessEvent(ctx context.Context, in ports.BillingEventInput) error {
	eventType := domain.BillingEventType(in.Type)

	// Replay guard. Guard errors are non-fatal: processing anyway risks a
	// double grant, dropping the event risks losing a purchase. The grant is
	// the safer loss.
	if in.EventID != "" {
		seen, err := s.dedup.Seen(ctx, in.EventID)
		if err != nil {
			s.log.Warn().Err(err).Str("event_id", in.EventID).Msg("replay check failed, processing anyway")
		} else if seen {
			metrics.BillingDedupTotal.WithLabelValues("hit").Inc()
			metrics.BillingEventsTotal.WithLabelValues(in.Type, "duplicate").Inc()
			s.log.Info().Str("event_id", in.EventID).Str("type", in.Type).Msg("duplicate billing event skipped")
			return nil
		} else {
			metrics.BillingDedupTotal.WithLabelValues("miss").Inc()
		}
	}

	transition, err := domain.ResolveTransition(eventType, in.ProductID)
	if err != nil {
		// Unknown event types are acknowledged, not bounced: the source would
		// retry forever and this build has nothing to apply for them.
		metrics.BillingEventsTotal.WithLabelValues(in.Type, "ignored").Inc()
		s.log.Warn().Str("event_id", in.EventID).Str("type", in.Type).Msg("unknown billing event type ignored")
		return nil
	}

	var sub *domain.Subscription
	if transition.SetState {
		sub, err = s.repo.ApplyTransition(ctx, in.AppUserID, transition)
	} else {
		sub, err = s.repo.AddCredits(ctx, in.AppUserID, transition.TextDelta, transition.AudioDelta)
	}
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			metrics.BillingEventsTotal.WithLabelValues(in.Type, "error").Inc()
			return err
		}
		metrics.BillingEventsTotal.WithLabelValues(in.Type, "error").Inc()
		return fmt.Errorf("process billing event: %w", err)
	}

	// Mark after the write commits; a crash in between re-applies the event,
	// which at-least-once delivery already forces us to tolerate.
	if in.EventID != "" {
		if markErr := s.dedup.Record(ctx, in.EventID); markErr != nil {
			s.log.Warn().Err(markErr).Str("event_id", in.EventID).Msg("failed to record replay key")
		}
	}

	metrics.BillingEventsTotal.WithLabelValues(in.Type, "applied").Inc()
	s.log.Info().
		Str("event_id", in.EventID).
		Str("user_id", in.AppUserID).
		Str("type", in.Type).
		Str("product", in.ProductID).
		Str("status", string(sub.Status)).
		Int("text_credits", sub.TextCredits).
		Int("audio_credits", sub.AudioCredits).
		Msg("billing event applied")

	return nil
}
