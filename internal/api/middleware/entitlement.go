package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zentale/story-system/internal/core/domain"
)

// EntitlementKey is the echo context key holding the subscription snapshot
// taken at authorization time.
const EntitlementKey = "entitlement"

// EntitlementLoader reads the account the guards authorize against.
type EntitlementLoader interface {
	Snapshot(ctx context.Context, userID string) (*domain.Account, error)
}

// RequireTextEntitlement admits the request when the account may start a
// text-story generation: active subscribers always pass, metered accounts
// need a positive text balance.
func RequireTextEntitlement(loader EntitlementLoader) echo.MiddlewareFunc {
	return requireEntitlement(loader, domain.Subscription.CanGenerateText)
}

// RequireAudioEntitlement admits the request when the audio balance is
// positive. Unlike text, the check applies to every account regardless of
// subscription status.
func RequireAudioEntitlement(loader EntitlementLoader) echo.MiddlewareFunc {
	return requireEntitlement(loader, domain.Subscription.CanGenerateAudio)
}

// requireEntitlement loads the account, applies the admission predicate, and
// stashes the subscription snapshot for the handler. The snapshot is the
// authorization-time view; the ledger re-checks at debit time, so a stale
// snapshot can only lose the race, never double-spend.
func requireEntitlement(loader EntitlementLoader, allowed func(domain.Subscription) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get(UserIDKey).(string)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
			}

			account, err := loader.Snapshot(c.Request().Context(), userID)
			if err != nil {
				return err
			}

			if !allowed(account.Subscription) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient credits")
			}

			c.Set(EntitlementKey, account.Subscription)
			return next(c)
		}
	}
}
