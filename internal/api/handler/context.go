package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zentale/story-system/internal/api/middleware"
	"github.com/zentale/story-system/internal/core/domain"
)

// ctxUserID extracts the user ID injected by the Auth middleware. An empty
// value means the middleware did not run on this route; reject with 401.
func ctxUserID(c echo.Context) (string, error) {
	userID, _ := c.Get(middleware.UserIDKey).(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return userID, nil
}

// ctxEntitlement extracts the subscription snapshot stashed by the
// entitlement guard alongside the user ID.
func ctxEntitlement(c echo.Context) (string, domain.Subscription, error) {
	userID, err := ctxUserID(c)
	if err != nil {
		return "", domain.Subscription{}, err
	}

	sub, ok := c.Get(middleware.EntitlementKey).(domain.Subscription)
	if !ok {
		return "", domain.Subscription{}, echo.NewHTTPError(http.StatusUnauthorized, "missing entitlement snapshot")
	}
	return userID, sub, nil
}
