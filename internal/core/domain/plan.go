package domain

import "errors"

// BillingEventType identifies a subscription lifecycle event delivered by the
// billing webhook source.
type BillingEventType string

const (
	EventInitialPurchase     BillingEventType = "INITIAL_PURCHASE"
	EventRenewal             BillingEventType = "RENEWAL"
	EventExpiration          BillingEventType = "EXPIRATION"
	EventNonRenewingPurchase BillingEventType = "NON_RENEWING_PURCHASE"
)

var ErrUnknownEventType = errors.New("unknown billing event type")

// PlanTypeUnknown is recorded when the billing source reports a product this
// build does not recognise. The event still applies its status change with a
// zero credit delta instead of being rejected.
const PlanTypeUnknown = "unknown"

// PlanLiteYearly is the plan eligible for the monthly bonus sweep.
const PlanLiteYearly = "lite-yearly"

// Plan describes a purchasable product: the plan identifier stored on the
// account and the credits granted per purchase or renewal.
type Plan struct {
	Type       string
	TextGrant  int
	AudioGrant int
}

// planTable maps billing product IDs to plans. Subscription tiers grant
// audio credits per cadence; the yearly tier and the one-off packs grant
// both pools.
var planTable = map[string]Plan{
	"stories.lite.weekly":  {Type: "lite-weekly", AudioGrant: 2},
	"stories.lite.monthly": {Type: "lite-monthly", AudioGrant: 10},
	"stories.lite.yearly":  {Type: PlanLiteYearly, TextGrant: 50, AudioGrant: 130},
	"stories.pack.small":   {Type: "pack-small", TextGrant: 10, AudioGrant: 5},
	"stories.pack.large":   {Type: "pack-large", TextGrant: 30, AudioGrant: 20},
}

// Scheduled sweep constants.
const (
	TextResetThreshold = 2
	TextResetFloor     = 4
	YearlyBonusText    = 5
	YearlyBonusAudio   = 10
)

// Transition is the fully resolved effect of one billing event on an
// account: the optional status/type change plus additive credit deltas.
type Transition struct {
	// SetState is false for one-off purchases, which leave status and type
	// untouched. Status and Type are always written together.
	SetState   bool
	Status     SubscriptionStatus
	Type       string
	TextDelta  int
	AudioDelta int
}

// ResolveTransition is the single transition table for the subscription
// state machine, keyed by event type and product. Every webhook handler and
// sweep goes through it; no status/type/credit rule lives anywhere else.
//
//	INITIAL_PURCHASE, RENEWAL  → active, plan type, plan grants
//	EXPIRATION                 → expired, plan type, no grants
//	NON_RENEWING_PURCHASE      → status/type untouched, pack grants
//
// Unknown products degrade to PlanTypeUnknown with zero grants so new plans
// introduced upstream never bounce events.
func ResolveTransition(eventType BillingEventType, productID string) (Transition, error) {
	plan, known := planTable[productID]
	planType := plan.Type
	if !known {
		planType = PlanTypeUnknown
	}

	switch eventType {
	case EventInitialPurchase, EventRenewal:
		t := Transition{SetState: true, Status: StatusActive, Type: planType}
		if known {
			t.TextDelta = plan.TextGrant
			t.AudioDelta = plan.AudioGrant
		}
		return t, nil

	case EventExpiration:
		return Transition{SetState: true, Status: StatusExpired, Type: planType}, nil

	case EventNonRenewingPurchase:
		t := Transition{}
		if known {
			t.TextDelta = plan.TextGrant
			t.AudioDelta = plan.AudioGrant
		}
		return t, nil

	default:
		return Transition{}, ErrUnknownEventType
	}
}
