//go:build !integration

package model

import (
	"testing"
	"time"
)

// --- Order Model Tests ---

func TestOrderViewToken(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	cases := []struct {
		name  string
		order Order
		want  bool
	}{
		{"no token", Order{}, false},
		{"token without expiry", Order{ViewToken: "tok"}, true},
		{"unexpired token", Order{ViewToken: "tok", ViewTokenExpiresAt: &future}, true},
		{"expired token", Order{ViewToken: "tok", ViewTokenExpiresAt: &past}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.order.HasValidViewToken(now); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestOrderIsPaid(t *testing.T) {
	if (&Order{PaymentStatus: PaymentStatusPaid}).IsPaid() != true {
		t.Error("expected paid order to report paid")
	}
	if (&Order{PaymentStatus: PaymentStatusPending}).IsPaid() {
		t.Error("expected pending order to report unpaid")
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if a == "" || a == b {
		t.Fatalf("expected distinct non-empty ids, got %q and %q", a, b)
	}
	if len(a) != 26 {
		t.Errorf("expected 26-char id, got %d", len(a))
	}
}

// --- Payment Intent Tests ---

func TestPaymentIntentCapturedAmount(t *testing.T) {
	if got := (&PaymentIntent{Amount: 5000, AmountReceived: 4500}).CapturedAmount(); got != 4500 {
		t.Errorf("expected received amount to win, got %d", got)
	}
	if got := (&PaymentIntent{Amount: 5000}).CapturedAmount(); got != 5000 {
		t.Errorf("expected requested amount fallback, got %d", got)
	}
}

func TestPaymentIntentMeta(t *testing.T) {
	pi := &PaymentIntent{Metadata: map[string]string{"userId": "  u_1 "}}
	if got := pi.Meta("userId"); got != "u_1" {
		t.Errorf("expected trimmed value, got %q", got)
	}
	if got := pi.Meta("missing"); got != "" {
		t.Errorf("expected empty value, got %q", got)
	}
	var nilPI *PaymentIntent
	if got := nilPI.Meta("userId"); got != "" {
		t.Errorf("expected nil intent to be safe, got %q", got)
	}
}

// --- Subscription Tests ---

func TestSubscriptionPatchApply(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	paid := start.Add(24 * time.Hour)
	s := &Subscription{UserID: "u_1", PlanID: "price_1", Status: SubscriptionStatusActive, CurrentPeriodStart: &start}

	status := SubscriptionStatusPastDue
	SubscriptionPatch{Status: &status, LastPaymentFailedDate: &paid}.Apply(s)

	if s.Status != SubscriptionStatusPastDue {
		t.Errorf("expected past_due, got %s", s.Status)
	}
	if s.LastPaymentFailedDate == nil || !s.LastPaymentFailedDate.Equal(paid) {
		t.Errorf("expected failed date to be set, got %v", s.LastPaymentFailedDate)
	}
	if s.PlanID != "price_1" || s.CurrentPeriodStart == nil || !s.CurrentPeriodStart.Equal(start) {
		t.Error("expected unpatched fields to be kept")
	}
}
