package ports

import "context"

// BillingEventInput is one webhook-delivered subscription lifecycle event.
// EventID is the upstream delivery identifier when the source provides one;
// it keys the replay guard. Delivery is at-least-once and unordered.
type BillingEventInput struct {
	EventID   string
	AppUserID string
	ProductID string
	Type      string
}

// BillingService reconciles billing lifecycle events into the entitlement
// store.
type BillingService interface {
	ProcessEvent(ctx context.Context, in BillingEventInput) error
}
