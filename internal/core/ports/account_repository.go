package ports

import (
	"context"

	"github.com/zentale/story-system/internal/core/domain"
)

// AccountRepository is the entitlement store plus the credit ledger.
//
// Every mutating method is a single atomic read-modify-write against one
// account record: a fresh read and a conditional write commit as one unit,
// so two concurrent debits can never both consume the same credit.
// Implementations retry internal write conflicts a bounded number of times
// and surface domain.ErrTransactionConflict once the bound is exhausted.
type AccountRepository interface {
	// Get returns the latest committed state of the account, or
	// domain.ErrAccountNotFound.
	Get(ctx context.Context, userID string) (*domain.Account, error)

	// Create inserts a new account record. Returns domain.ErrAccountExists
	// when the ID has already been provisioned; it never overwrites.
	Create(ctx context.Context, account *domain.Account) error

	// TryDebit conditionally decrements a pool per domain.Subscription.Debit:
	// a no-op for unmetered accounts, domain.ErrInsufficientCredits when the
	// balance is too low, a decrement otherwise. The record is never created
	// here; an absent user is domain.ErrAccountNotFound.
	TryDebit(ctx context.Context, userID string, pool domain.CreditPool, amount int) (*domain.DebitOutcome, error)

	// AddCredits adds deltas to both pools and returns the updated
	// subscription. The primitive itself is not idempotent.
	AddCredits(ctx context.Context, userID string, textDelta, audioDelta int) (*domain.Subscription, error)

	// ApplyTransition writes a resolved billing transition (status/type plus
	// credit deltas) in one atomic update.
	ApplyTransition(ctx context.Context, userID string, t domain.Transition) (*domain.Subscription, error)

	// FloorTextCredits tops the text pool up to an absolute floor when below
	// threshold. Returns whether a write happened. Safe to re-run.
	FloorTextCredits(ctx context.Context, userID string, threshold, floor int) (bool, error)

	// GrantPeriodBonus applies the recurring plan bonus once per period,
	// gated by the account's bonus-period marker. Returns whether the bonus
	// was granted.
	GrantPeriodBonus(ctx context.Context, userID, planType string, textBonus, audioBonus int, period string) (bool, error)

	// ListTextCreditsBelow returns IDs of accounts whose text pool is below
	// threshold (reset-sweep candidates).
	ListTextCreditsBelow(ctx context.Context, threshold int) ([]string, error)

	// ListBonusCandidates returns IDs of active accounts on planType that
	// have not yet received the bonus for period.
	ListBonusCandidates(ctx context.Context, planType, period string) ([]string, error)
}
