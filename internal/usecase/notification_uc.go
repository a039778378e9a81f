package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticket-marketplace/internal/domain"
	"ticket-marketplace/internal/domain/model"
	"ticket-marketplace/internal/domain/ports/adapter"
	"ticket-marketplace/internal/domain/ports/repository"
	"ticket-marketplace/internal/infra/logging"
	"ticket-marketplace/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ NotificationDispatcher = (*notificationUC)(nil)

type NotificationStatus string

const (
	NotificationSent    NotificationStatus = "sent"
	NotificationSkipped NotificationStatus = "skipped"
	NotificationFailed  NotificationStatus = "failed"
)

// NotificationResult is the outcome of one ticket email. Failures are reported here,
// never returned as errors.
type NotificationResult struct {
	Status    NotificationStatus
	Recipient string
	Checked   []string // recipient sources consulted
	Err       error
}

type NotificationDispatcher interface {
	Notify(ctx context.Context, ev *model.Event, order *model.Order) NotificationResult
}

type notificationUC struct {
	tickets    repository.TicketRepository
	catalog    repository.CatalogRepository
	recipients RecipientResolver
	sender     adapter.TicketSender
	ledger     repository.FailureLedger // optional
	log        *zerolog.Logger
}

func NewNotificationDispatcher(
	tickets repository.TicketRepository,
	catalog repository.CatalogRepository,
	recipients RecipientResolver,
	sender adapter.TicketSender,
	ledger repository.FailureLedger,
	logger *zerolog.Logger,
) *notificationUC {
	l := logger.With().Str("component", "notification_dispatcher").Logger()
	return &notificationUC{
		tickets:    tickets,
		catalog:    catalog,
		recipients: recipients,
		sender:     sender,
		ledger:     ledger,
		log:        &l,
	}
}

func (n *notificationUC) Notify(ctx context.Context, ev *model.Event, order *model.Order) NotificationResult {
	to, checked, ok := n.recipients.ResolveRecipient(ctx, ev, order)
	if !ok {
		metrics.IncNotification(string(NotificationSkipped))
		return NotificationResult{Status: NotificationSkipped, Checked: checked}
	}

	msg, err := n.assemble(ctx, order)
	if err != nil {
		return n.fail(ctx, ev, order, to, checked, err)
	}
	msg.To = to

	if err := n.sender.Send(ctx, msg); err != nil {
		derr := &domain.TransientDeliveryError{Recipient: to, OrderID: order.ID, Err: err}
		return n.fail(ctx, ev, order, to, checked, derr)
	}
	metrics.IncNotification(string(NotificationSent))
	return NotificationResult{Status: NotificationSent, Recipient: to, Checked: checked}
}

func (n *notificationUC) fail(ctx context.Context, ev *model.Event, order *model.Order, to string, checked []string, err error) NotificationResult {
	metrics.IncNotification(string(NotificationFailed))
	recordFailure(ctx, n.ledger, n.log, &model.FailedStep{
		EventID:   ev.ID,
		EventType: string(ev.Type),
		Step:      "notify",
		OrderID:   order.ID,
		Recipient: to,
		Error:     err.Error(),
	})
	return NotificationResult{Status: NotificationFailed, Recipient: to, Checked: checked, Err: err}
}

// assemble gathers the message view model. Only the ticket list is mandatory;
// catalog records fall back to what the order itself carries.
func (n *notificationUC) assemble(ctx context.Context, o *model.Order) (*model.TicketMessage, error) {
	tickets, err := n.tickets.ListByOrder(ctx, o.ID)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	perf := n.performance(ctx, o)
	production := n.production(ctx, o)
	seller := n.seller(ctx, o)

	subject := "Your tickets"
	if production.Title != "" {
		subject = "Your tickets for " + production.Title
	}
	return &model.TicketMessage{
		Subject:     subject,
		Order:       o,
		Tickets:     tickets,
		Performance: perf,
		Venue:       n.venue(ctx, o, perf),
		Production:  production,
		Seller:      seller,
	}, nil
}

func (n *notificationUC) performance(ctx context.Context, o *model.Order) *model.Performance {
	if o.PerformanceID != "" {
		p, err := n.catalog.FindPerformance(ctx, o.PerformanceID)
		if err == nil {
			return p
		}
		n.lookupFailed(ctx, "performance", o.PerformanceID, err)
	}
	return &model.Performance{
		ID:           o.PerformanceID,
		ProductionID: o.ProductionID,
		VenueID:      o.Venue.VenueID,
		Date:         o.PerformanceDate,
		Time:         o.PerformanceTime,
	}
}

func (n *notificationUC) venue(ctx context.Context, o *model.Order, perf *model.Performance) *model.Venue {
	if o.Venue.VenueID != "" {
		v, err := n.catalog.FindVenue(ctx, o.Venue.VenueID)
		if err == nil {
			return v
		}
		n.lookupFailed(ctx, "venue", o.Venue.VenueID, err)
	}
	snapshot := &model.Venue{
		ID:      o.Venue.VenueID,
		Name:    o.Venue.Name,
		Address: o.Venue.Address,
		City:    o.Venue.City,
		State:   o.Venue.State,
		Zip:     o.Venue.Zip,
	}
	if snapshot.Name != "" {
		return snapshot
	}
	if perf.VenueID != "" && perf.VenueID != o.Venue.VenueID {
		v, err := n.catalog.FindVenue(ctx, perf.VenueID)
		if err == nil {
			return v
		}
		n.lookupFailed(ctx, "venue", perf.VenueID, err)
	}
	return snapshot
}

func (n *notificationUC) production(ctx context.Context, o *model.Order) *model.Production {
	if o.ProductionID != "" {
		p, err := n.catalog.FindProduction(ctx, o.ProductionID)
		if err == nil {
			return p
		}
		n.lookupFailed(ctx, "production", o.ProductionID, err)
	}
	return &model.Production{ID: o.ProductionID}
}

func (n *notificationUC) seller(ctx context.Context, o *model.Order) *model.Seller {
	if o.SellerID != "" {
		s, err := n.catalog.FindSeller(ctx, o.SellerID)
		if err == nil {
			return s
		}
		n.lookupFailed(ctx, "seller", o.SellerID, err)
	}
	return &model.Seller{ID: o.SellerID}
}

func (n *notificationUC) lookupFailed(ctx context.Context, kind, id string, err error) {
	l := logging.With(ctx, n.log)
	if errors.Is(err, domain.ErrNotFound) {
		l.Debug().Str("kind", kind).Str("id", id).Msg("record not found, using order snapshot")
		return
	}
	l.Warn().Err(err).Str("kind", kind).Str("id", id).Msg("record lookup failed, using order snapshot")
}

// recordFailure writes a dead-letter record when a ledger is configured.
func recordFailure(ctx context.Context, ledger repository.FailureLedger, log *zerolog.Logger, f *model.FailedStep) {
	if ledger == nil {
		return
	}
	if f.ID == "" {
		f.ID = model.NewID()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	if err := ledger.Record(ctx, f); err != nil {
		logging.With(ctx, log).Error().Err(err).Str("step", f.Step).Msg("failure ledger write failed")
		return
	}
	metrics.IncFailureRecorded(f.Step)
}
