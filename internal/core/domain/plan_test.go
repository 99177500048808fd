package domain

import (
	"errors"
	"testing"
)

func TestResolveTransition_Purchases(t *testing.T) {
	tests := []struct {
		name      string
		eventType BillingEventType
		productID string
		want      Transition
	}{
		{
			name:      "weekly initial purchase",
			eventType: EventInitialPurchase,
			productID: "stories.lite.weekly",
			want:      Transition{SetState: true, Status: StatusActive, Type: "lite-weekly", AudioDelta: 2},
		},
		{
			name:      "monthly renewal",
			eventType: EventRenewal,
			productID: "stories.lite.monthly",
			want:      Transition{SetState: true, Status: StatusActive, Type: "lite-monthly", AudioDelta: 10},
		},
		{
			name:      "yearly grants both pools",
			eventType: EventInitialPurchase,
			productID: "stories.lite.yearly",
			want:      Transition{SetState: true, Status: StatusActive, Type: PlanLiteYearly, TextDelta: 50, AudioDelta: 130},
		},
		{
			name:      "expiration carries no grants",
			eventType: EventExpiration,
			productID: "stories.lite.monthly",
			want:      Transition{SetState: true, Status: StatusExpired, Type: "lite-monthly"},
		},
		{
			name:      "small pack leaves state alone",
			eventType: EventNonRenewingPurchase,
			productID: "stories.pack.small",
			want:      Transition{TextDelta: 10, AudioDelta: 5},
		},
		{
			name:      "large pack",
			eventType: EventNonRenewingPurchase,
			productID: "stories.pack.large",
			want:      Transition{TextDelta: 30, AudioDelta: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTransition(tt.eventType, tt.productID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("transition = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveTransition_UnknownProduct(t *testing.T) {
	// An unrecognised product still applies the status change with zero
	// grants, so a newly introduced plan never bounces events.
	got, err := ResolveTransition(EventInitialPurchase, "stories.premium.monthly")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Transition{SetState: true, Status: StatusActive, Type: PlanTypeUnknown}
	if got != want {
		t.Errorf("transition = %+v, want %+v", got, want)
	}

	// Unknown pack purchase grants nothing and touches nothing.
	got, err = ResolveTransition(EventNonRenewingPurchase, "stories.pack.mystery")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (Transition{}) {
		t.Errorf("expected empty transition, got %+v", got)
	}
}

func TestResolveTransition_UnknownEventType(t *testing.T) {
	_, err := ResolveTransition(BillingEventType("BILLING_ISSUE"), "stories.lite.monthly")
	if !errors.Is(err, ErrUnknownEventType) {
		t.Errorf("expected ErrUnknownEventType, got: %v", err)
	}
}

func TestVoiceForLanguage(t *testing.T) {
	for _, lang := range []string{"English", "Spanish", "Romanian"} {
		if _, err := VoiceForLanguage(lang); err != nil {
			t.Errorf("expected voice for %s, got: %v", lang, err)
		}
	}

	if _, err := VoiceForLanguage("Klingon"); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("expected ErrUnsupportedLanguage, got: %v", err)
	}
}
