//go:build !integration

package usecase

import (
	"context"
	"errors"
	"testing"

	"ticket-marketplace/internal/domain"
	"ticket-marketplace/internal/domain/model"
)

func TestNotificationDispatcher_Notify(t *testing.T) {
	ctx := context.Background()

	newOrder := func() *model.Order {
		return &model.Order{
			ID:              "ord-1",
			SellerID:        "seller-1",
			ProductionID:    "prod-1",
			PerformanceID:   "perf-1",
			CustomerEmail:   "buyer@x.com",
			PerformanceDate: "2026-11-02",
			PerformanceTime: "19:30",
			Venue:           model.VenueSnapshot{Name: "Grand Hall", City: "Springfield"},
		}
	}

	t.Run("sends with catalog records", func(t *testing.T) {
		// --- Arrange ---
		tickets := newMemTicketRepo()
		_ = tickets.Save(ctx, "ord-1", &model.Ticket{ID: "t1", OrderID: "ord-1"})
		catalog := newMemCatalog()
		catalog.performances["perf-1"] = &model.Performance{ID: "perf-1", VenueID: "venue-9", Date: "2026-11-02"}
		catalog.venues["venue-9"] = &model.Venue{ID: "venue-9", Name: "Performance Venue"}
		catalog.productions["prod-1"] = &model.Production{ID: "prod-1", Title: "Hamlet"}
		catalog.sellers["seller-1"] = &model.Seller{ID: "seller-1", Name: "Box Office", Email: "box@x.com"}
		sender := &MockTicketSender{}
		recipients := NewRecipientResolver(newMemUserRepo(), &MockPaymentProvider{}, newTestLogger())
		uc := NewNotificationDispatcher(tickets, catalog, recipients, sender, nil, newTestLogger())

		// --- Act ---
		order := newOrder()
		order.Venue = model.VenueSnapshot{}
		res := uc.Notify(ctx, paidEvent("e1", nil), order)

		// --- Assert ---
		if res.Status != NotificationSent || res.Recipient != "buyer@x.com" {
			t.Fatalf("expected sent to buyer@x.com, got %+v", res)
		}
		if sender.count() != 1 {
			t.Fatalf("expected one message, got %d", sender.count())
		}
		msg := sender.Sent[0]
		if msg.Subject != "Your tickets for Hamlet" {
			t.Errorf("unexpected subject %q", msg.Subject)
		}
		if len(msg.Tickets) != 1 || msg.Seller.Email != "box@x.com" {
			t.Errorf("unexpected message contents %+v", msg)
		}
		if msg.Venue.Name != "Performance Venue" {
			t.Errorf("expected venue from the performance reference, got %q", msg.Venue.Name)
		}
	})

	t.Run("falls back to the order snapshot when catalog records are missing", func(t *testing.T) {
		sender := &MockTicketSender{}
		recipients := NewRecipientResolver(newMemUserRepo(), &MockPaymentProvider{}, newTestLogger())
		uc := NewNotificationDispatcher(newMemTicketRepo(), newMemCatalog(), recipients, sender, nil, newTestLogger())

		res := uc.Notify(ctx, paidEvent("e2", nil), newOrder())

		if res.Status != NotificationSent {
			t.Fatalf("expected sent, got %+v", res)
		}
		msg := sender.Sent[0]
		if msg.Performance.Date != "2026-11-02" || msg.Performance.Time != "19:30" {
			t.Errorf("expected synthesized performance, got %+v", msg.Performance)
		}
		if msg.Venue.Name != "Grand Hall" {
			t.Errorf("expected venue snapshot, got %+v", msg.Venue)
		}
		if msg.Subject != "Your tickets" {
			t.Errorf("expected generic subject, got %q", msg.Subject)
		}
	})

	t.Run("skips without a recipient", func(t *testing.T) {
		sender := &MockTicketSender{}
		recipients := NewRecipientResolver(newMemUserRepo(), &MockPaymentProvider{}, newTestLogger())
		uc := NewNotificationDispatcher(newMemTicketRepo(), newMemCatalog(), recipients, sender, nil, newTestLogger())

		res := uc.Notify(ctx, paidEvent("e3", nil), &model.Order{ID: "ord-2", HolderID: "user-404"})

		if res.Status != NotificationSkipped {
			t.Fatalf("expected skipped, got %+v", res)
		}
		if len(res.Checked) != 4 {
			t.Errorf("expected all sources checked, got %v", res.Checked)
		}
		if sender.count() != 0 {
			t.Error("sender must not be called")
		}
	})

	t.Run("sender failure becomes a failed result and a ledger record", func(t *testing.T) {
		sender := &MockTicketSender{Err: errors.New("smtp 421")}
		ledger := &memLedger{}
		recipients := NewRecipientResolver(newMemUserRepo(), &MockPaymentProvider{}, newTestLogger())
		uc := NewNotificationDispatcher(newMemTicketRepo(), newMemCatalog(), recipients, sender, ledger, newTestLogger())

		res := uc.Notify(ctx, paidEvent("e4", nil), newOrder())

		if res.Status != NotificationFailed {
			t.Fatalf("expected failed, got %+v", res)
		}
		var derr *domain.TransientDeliveryError
		if !errors.As(res.Err, &derr) || derr.Recipient != "buyer@x.com" || derr.OrderID != "ord-1" {
			t.Errorf("expected TransientDeliveryError with context, got %v", res.Err)
		}
		if ledger.len() != 1 || ledger.records[0].Step != "notify" || ledger.records[0].EventID != "e4" {
			t.Errorf("expected one notify ledger record, got %+v", ledger.records)
		}
	})

	t.Run("ticket listing failure is reported, not raised", func(t *testing.T) {
		tickets := newMemTicketRepo()
		tickets.listErr = errors.New("deadline exceeded")
		sender := &MockTicketSender{}
		recipients := NewRecipientResolver(newMemUserRepo(), &MockPaymentProvider{}, newTestLogger())
		uc := NewNotificationDispatcher(tickets, newMemCatalog(), recipients, sender, nil, newTestLogger())

		res := uc.Notify(ctx, paidEvent("e5", nil), newOrder())

		if res.Status != NotificationFailed || res.Err == nil {
			t.Fatalf("expected failed result, got %+v", res)
		}
		if sender.count() != 0 {
			t.Error("sender must not be called")
		}
	})
}
