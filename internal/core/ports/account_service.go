package ports

import (
	"context"

	"github.com/zentale/story-system/internal/core/domain"
)

// ProvisionAccountInput carries the profile fields captured at first sign-in.
type ProvisionAccountInput struct {
	UserID      string
	Email       string
	DisplayName string
}

// ProvisionedAccount is returned once, at creation: the plaintext API key is
// never recoverable afterwards (only its hash is stored).
type ProvisionedAccount struct {
	Account *domain.Account
	APIKey  string
}

// AccountService provisions accounts and serves entitlement snapshots.
type AccountService interface {
	// Provision creates the default account record exactly once per user.
	// A second call fails with domain.ErrAccountExists.
	Provision(ctx context.Context, in ProvisionAccountInput) (*ProvisionedAccount, error)

	// Snapshot returns a fresh point-in-time read of the account, used to
	// authorize an action and then act without an intervening re-read.
	Snapshot(ctx context.Context, userID string) (*domain.Account, error)
}
