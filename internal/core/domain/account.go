package domain

import (
	"errors"
	"time"
)

// SubscriptionStatus represents the billing state of an account.
type SubscriptionStatus string

const (
	StatusActive  SubscriptionStatus = "active"
	StatusExpired SubscriptionStatus = "expired"
)

// CreditPool names one of the two independent consumable balances on an account.
type CreditPool string

const (
	PoolText  CreditPool = "text"
	PoolAudio CreditPool = "audio"
)

// Default balances granted when an account is first provisioned.
const (
	DefaultTextCredits  = 2
	DefaultAudioCredits = 0
)

var ErrAccountNotFound = errors.New("account not found")
var ErrAccountExists = errors.New("account already exists")
var ErrInsufficientCredits = errors.New("insufficient credits")
var ErrTransactionConflict = errors.New("transaction conflict")
var ErrUnknownPool = errors.New("unknown credit pool")
var ErrInvalidToken = errors.New("invalid token")

// Subscription holds the billing status and the two credit pools.
// Status and Type are only ever written together, by a billing event or at
// account creation.
type Subscription struct {
	Status       SubscriptionStatus `json:"status" bson:"status"`
	Type         string             `json:"type" bson:"type"`
	TextCredits  int                `json:"text_credits" bson:"text_credits"`
	AudioCredits int                `json:"audio_credits" bson:"audio_credits"`
	// BonusPeriod is the last YYYY-MM period the yearly bonus was applied in.
	BonusPeriod string `json:"-" bson:"bonus_period,omitempty"`
}

// Account is the durable per-user entitlement record, the single source of
// truth for every credit decision.
type Account struct {
	ID           string       `json:"id" bson:"_id"`
	Email        string       `json:"email,omitempty" bson:"email,omitempty"`
	DisplayName  string       `json:"display_name,omitempty" bson:"display_name,omitempty"`
	APIKeyHash   string       `json:"-" bson:"api_key_hash"`
	Subscription Subscription `json:"subscription" bson:"subscription"`
	// Version is the optimistic-concurrency counter; every committed
	// mutation increments it.
	Version   int64     `json:"-" bson:"version"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// NewDefaultSubscription is the entitlement state of a freshly provisioned
// account: a metered free tier with a couple of text credits.
func NewDefaultSubscription() Subscription {
	return Subscription{
		Status:       StatusExpired,
		Type:         "",
		TextCredits:  DefaultTextCredits,
		AudioCredits: DefaultAudioCredits,
	}
}

// Metered reports whether actions consume credits. Only expired (non-paying)
// accounts are metered; active subscribers are never debited.
func (s Subscription) Metered() bool {
	return s.Status == StatusExpired
}

// Balance returns the current balance of the named pool.
func (s Subscription) Balance(pool CreditPool) int {
	if pool == PoolAudio {
		return s.AudioCredits
	}
	return s.TextCredits
}

// CanGenerateText reports whether a text-story generation may start.
// Text is gated only for metered accounts: active subscribers always pass.
func (s Subscription) CanGenerateText() bool {
	return s.Status == StatusActive || s.TextCredits > 0
}

// CanGenerateAudio reports whether an audio-story generation may start.
// The audio pool is checked regardless of subscription status. The asymmetry
// with CanGenerateText is intentional: audio credits gate entry for every
// account, even though TryDebit still skips active ones.
func (s Subscription) CanGenerateAudio() bool {
	return s.AudioCredits > 0
}

// DebitOutcome is the result of a TryDebit attempt.
type DebitOutcome struct {
	// Debited is false when the account was not metered and the call was a no-op.
	Debited   bool
	Remaining int
}

// Debit applies the conditional decrement rules to the subscription in place:
//   - unmetered (active) account → no-op, Debited=false;
//   - balance below amount → ErrInsufficientCredits, subscription untouched;
//   - otherwise the pool is decremented.
//
// Callers must run this inside an atomic read-modify-write; the rules here
// are pure and carry no concurrency protection of their own.
func (s *Subscription) Debit(pool CreditPool, amount int) (DebitOutcome, error) {
	if pool != PoolText && pool != PoolAudio {
		return DebitOutcome{}, ErrUnknownPool
	}
	if !s.Metered() {
		return DebitOutcome{Debited: false, Remaining: s.Balance(pool)}, nil
	}
	balance := s.Balance(pool)
	if balance < amount {
		return DebitOutcome{}, ErrInsufficientCredits
	}
	if pool == PoolAudio {
		s.AudioCredits -= amount
	} else {
		s.TextCredits -= amount
	}
	return DebitOutcome{Debited: true, Remaining: balance - amount}, nil
}

// AddCredits applies additive deltas to both pools. Not idempotent; replay
// protection belongs to the caller.
func (s *Subscription) AddCredits(textDelta, audioDelta int) {
	s.TextCredits += textDelta
	s.AudioCredits += audioDelta
}

// Apply reconciles a resolved billing transition into the subscription.
// Credit deltas are additive against the current balances, never absolute.
func (s *Subscription) Apply(t Transition) {
	if t.SetState {
		s.Status = t.Status
		s.Type = t.Type
	}
	s.AddCredits(t.TextDelta, t.AudioDelta)
}

// FloorText tops the text pool up to floor when it has fallen below
// threshold. Returns true when a write is needed. Re-running is idempotent:
// the pool is set to an absolute floor, not incremented.
func (s *Subscription) FloorText(threshold, floor int) bool {
	if s.TextCredits >= threshold {
		return false
	}
	s.TextCredits = floor
	return true
}

// GrantPeriodBonus applies the recurring plan bonus to both pools once per
// period. The bonus is additive, so idempotency comes from the BonusPeriod
// marker: a repeated run within the same period is a no-op.
func (s *Subscription) GrantPeriodBonus(planType string, textBonus, audioBonus int, period string) bool {
	if s.Status != StatusActive || s.Type != planType || s.BonusPeriod == period {
		return false
	}
	s.AddCredits(textBonus, audioBonus)
	s.BonusPeriod = period
	return true
}
