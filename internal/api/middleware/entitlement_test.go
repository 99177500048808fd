package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/zentale/story-system/internal/core/domain"
)

type stubLoader struct {
	account *domain.Account
	err     error
}

func (l *stubLoader) Snapshot(_ context.Context, _ string) (*domain.Account, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.account, nil
}

func runGuard(t *testing.T, mw echo.MiddlewareFunc, userID string) (*httptest.ResponseRecorder, domain.Subscription, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set(UserIDKey, userID)
	}

	var snapshot domain.Subscription
	called := false
	handler := mw(func(c echo.Context) error {
		called = true
		snapshot, _ = c.Get(EntitlementKey).(domain.Subscription)
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, snapshot, called
}

func TestRequireTextEntitlement_MeteredWithCredits(t *testing.T) {
	loader := &stubLoader{account: &domain.Account{
		ID:           "u1",
		Subscription: domain.Subscription{Status: domain.StatusExpired, TextCredits: 2},
	}}

	rec, snapshot, called := runGuard(t, RequireTextEntitlement(loader), "u1")

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected pass, got %d", rec.Code)
	}
	if snapshot.TextCredits != 2 {
		t.Errorf("expected snapshot stashed, got: %+v", snapshot)
	}
}

func TestRequireTextEntitlement_DrainedMeteredRejected(t *testing.T) {
	loader := &stubLoader{account: &domain.Account{
		ID:           "u1",
		Subscription: domain.Subscription{Status: domain.StatusExpired, TextCredits: 0},
	}}

	rec, _, called := runGuard(t, RequireTextEntitlement(loader), "u1")

	if called {
		t.Fatal("drained metered account must not pass")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireTextEntitlement_ActiveBypassesBalance(t *testing.T) {
	loader := &stubLoader{account: &domain.Account{
		ID:           "u1",
		Subscription: domain.Subscription{Status: domain.StatusActive, TextCredits: 0},
	}}

	rec, _, called := runGuard(t, RequireTextEntitlement(loader), "u1")

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("active subscriber must pass, got %d", rec.Code)
	}
}

func TestRequireAudioEntitlement_ActiveWithoutCreditsRejected(t *testing.T) {
	// Audio is gated on balance for every account, active or not.
	loader := &stubLoader{account: &domain.Account{
		ID:           "u1",
		Subscription: domain.Subscription{Status: domain.StatusActive, AudioCredits: 0},
	}}

	rec, _, called := runGuard(t, RequireAudioEntitlement(loader), "u1")

	if called {
		t.Fatal("active account without audio credits must not pass")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireAudioEntitlement_MeteredWithCredits(t *testing.T) {
	loader := &stubLoader{account: &domain.Account{
		ID:           "u1",
		Subscription: domain.Subscription{Status: domain.StatusExpired, AudioCredits: 1},
	}}

	rec, _, called := runGuard(t, RequireAudioEntitlement(loader), "u1")

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected pass, got %d", rec.Code)
	}
}

func TestRequireEntitlement_MissingAccount(t *testing.T) {
	loader := &stubLoader{err: domain.ErrAccountNotFound}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(UserIDKey, "ghost")

	handler := RequireTextEntitlement(loader)(func(c echo.Context) error {
		t.Fatal("should not reach next")
		return nil
	})

	// The domain error propagates so the central error handler can map it.
	err := handler(c)
	if err != domain.ErrAccountNotFound {
		t.Fatalf("expected ErrAccountNotFound to propagate, got: %v", err)
	}
}

func TestRequireEntitlement_MissingUserID(t *testing.T) {
	loader := &stubLoader{account: &domain.Account{}}

	rec, _, called := runGuard(t, RequireTextEntitlement(loader), "")

	if called {
		t.Fatal("unauthenticated request must not pass")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
