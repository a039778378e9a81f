// File: internal/usecase/dispatcher_uc.go
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
var _ EventDispatcher = (*dispatcherUC)(nil)

// EventDispatcher routes one verified event to its handler. Unknown types are ignored.
type EventDispatcher interface {
	Dispatch(ctx context.Context, ev *model.Event) error
}

// DispatcherDeps wires the dispatcher. Claims and Locker are optional.
type DispatcherDeps struct {
	Orders        OrderMaterializer
	Tickets       TicketIssuer
	Notifications NotificationDispatcher
	Subscriptions SubscriptionSynchronizer
	OrderRepo     repository.OrderRepository
	Provider      adapter.PaymentProvider

	Claims   adapter.EventClaims
	ClaimTTL time.Duration
	Locker   adapter.Locker
	LockTTL  time.Duration
	LockPoll time.Duration // retry interval while another worker holds the lock
}

type handlerFunc func(ctx context.Context, log *zerolog.Logger, ev *model.Event) error

type dispatcherUC struct {
	deps     DispatcherDeps
	handlers map[model.EventType]handlerFunc
	log      *zerolog.Logger
}

func NewEventDispatcher(deps DispatcherDeps, logger *zerolog.Logger) *dispatcherUC {
	if deps.ClaimTTL <= 0 {
		deps.ClaimTTL = 72 * time.Hour
	}
	if deps.LockTTL <= 0 {
		deps.LockTTL = 30 * time.Second
	}
	if deps.LockPoll <= 0 {
		deps.LockPoll = 100 * time.Millisecond
	}
	l := logger.With().Str("component", "event_dispatcher").Logger()
	d := &dispatcherUC{deps: deps, log: &l}
	d.handlers = map[model.EventType]handlerFunc{
		model.EventPaymentIntentSucceeded:     d.handlePaymentSucceeded,
		model.EventPaymentIntentPaymentFailed: d.handlePaymentFailed,
		model.EventSubscriptionCreated:        d.handleSubscription,
		model.EventSubscriptionUpdated:        d.handleSubscription,
		model.EventSubscriptionDeleted:        d.handleSubscription,
		model.EventInvoicePaymentSucceeded:    d.handleInvoice,
		model.EventInvoicePaymentFailed:       d.handleInvoice,
	}
	return d
}

func (d *dispatcherUC) Dispatch(ctx context.Context, ev *model.Event) (err error) {
	if ev == nil {
		return fmt.Errorf("%w: nil event", domain.ErrInvalidArgument)
	}
	ctx = logging.WithEventID(ctx, ev.ID)
	log := logging.With(ctx, d.log).With().Str("event_type", string(ev.Type)).Logger()

	handler, ok := d.handlers[ev.Type]
	if !ok {
		metrics.IncEvent(string(ev.Type), "ignored")
		log.Debug().Msg("unhandled event type, ignoring")
		return nil
	}

	if !d.claim(ctx, &log, ev) {
		metrics.IncDuplicate(string(ev.Type))
		log.Info().Msg("event already claimed, skipping duplicate delivery")
		return nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic handling %s: %v", ev.Type, rec)
		}
		if err != nil {
			metrics.IncEvent(string(ev.Type), "failed")
			return
		}
		metrics.IncEvent(string(ev.Type), "handled")
	}()
	return handler(ctx, &log, ev)
}

func (d *dispatcherUC) handlePaymentSucceeded(ctx context.Context, log *zerolog.Logger, ev *model.Event) error {
	if ev.PaymentIntent == nil {
		return fmt.Errorf("%w: event %s carries no payment intent", domain.ErrInvalidArgument, ev.ID)
	}
	full := *ev
	full.PaymentIntent = d.completePaymentIntent(ctx, log, ev)
	pi := full.PaymentIntent

	unlock, err := d.lock(ctx, log, "lock:payment_intent:"+pi.ID)
	if err != nil {
		log.Error().Err(err).Str("payment_intent", pi.ID).Msg("payment intent lock not acquired, dropping event")
		d.release(ctx, log, ev)
		return err
	}
	defer unlock()

	var (
		order   *model.Order
		paidNow bool
	)
	err = d.runStep(ctx, log, "ensure_order", func(ctx context.Context) error {
		var err error
		order, paidNow, err = d.deps.Orders.EnsureOrder(ctx, &full)
		return err
	})
	if err != nil {
		var missing *domain.MissingMetadataError
		if errors.As(err, &missing) {
			log.Error().Strs("missing", missing.Fields).Str("payment_intent", pi.ID).Msg("cannot materialize order, dropping event")
		}
		d.release(ctx, log, ev)
		return err
	}

	ctx = logging.WithOrderID(ctx, order.ID)
	olog := log.With().Str("order_id", order.ID).Logger()

	if len(order.TicketIDs) == 0 {
		_ = d.runStep(ctx, &olog, "issue_tickets", func(ctx context.Context) error {
			reqs, err := ParseTicketRequests(pi.Meta(model.MetaTickets))
			if err != nil {
				return err
			}
			_, err = d.deps.Tickets.IssueTickets(ctx, order, reqs)
			return err
		})
	}

	if !paidNow {
		olog.Info().Msg("order already paid, skipping notification")
		return nil
	}

	var res NotificationResult
	_ = d.runStep(ctx, &olog, "notify", func(ctx context.Context) error {
		res = d.deps.Notifications.Notify(ctx, &full, order)
		return nil
	})
	logNotification(&olog, res)
	return nil
}

func (d *dispatcherUC) handlePaymentFailed(ctx context.Context, log *zerolog.Logger, ev *model.Event) error {
	orderID := ev.PaymentIntent.Meta(model.MetaOrderID)
	if orderID == "" {
		return nil
	}
	return d.runStep(ctx, log, "mark_payment_failed", func(ctx context.Context) error {
		o, err := d.deps.OrderRepo.FindByID(ctx, orderID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if o.IsPaid() {
			log.Info().Str("order_id", orderID).Msg("order already paid, ignoring failed attempt")
			return nil
		}
		failed := model.PaymentStatusFailed
		return d.deps.OrderRepo.Update(ctx, orderID, model.OrderPatch{PaymentStatus: &failed})
	})
}

func (d *dispatcherUC) handleSubscription(ctx context.Context, log *zerolog.Logger, ev *model.Event) error {
	return d.runStep(ctx, log, "sync_subscription", func(ctx context.Context) error {
		return d.deps.Subscriptions.HandleSubscriptionEvent(ctx, ev)
	})
}

func (d *dispatcherUC) handleInvoice(ctx context.Context, log *zerolog.Logger, ev *model.Event) error {
	return d.runStep(ctx, log, "sync_invoice", func(ctx context.Context) error {
		return d.deps.Subscriptions.HandleInvoiceEvent(ctx, ev)
	})
}

// completePaymentIntent re-reads a connected-account payment intent from the platform
// account when its metadata lacks the order reference.
func (d *dispatcherUC) completePaymentIntent(ctx context.Context, log *zerolog.Logger, ev *model.Event) *model.PaymentIntent {
	pi := *ev.PaymentIntent
	pi.AccountContext = ev.Account
	if ev.Account == "" || pi.Meta(model.MetaOrderID) != "" || pi.ID == "" {
		return &pi
	}

	fetched, err := d.deps.Provider.GetPaymentIntent(ctx, pi.ID, "")
	if err != nil {
		log.Warn().Err(err).Str("payment_intent", pi.ID).Str("account", ev.Account).
			Msg("platform re-fetch failed, continuing with event payload")
		return &pi
	}
	merged := make(map[string]string, len(pi.Metadata)+len(fetched.Metadata))
	for k, v := range pi.Metadata {
		merged[k] = v
	}
	for k, v := range fetched.Metadata {
		merged[k] = v
	}
	fetched.Metadata = merged
	fetched.AccountContext = ""
	if fetched.CustomerID == "" {
		fetched.CustomerID = pi.CustomerID
	}
	return fetched
}

// runStep isolates one named step: errors and panics are logged and counted, never propagated
// beyond the returned error.
func (d *dispatcherUC) runStep(ctx context.Context, log *zerolog.Logger, step string, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in %s: %v", step, rec)
			metrics.IncStep(step, "panic")
			log.Error().Str("step", step).Str("panic", fmt.Sprint(rec)).Msg("step panicked")
		}
	}()
	if err = fn(ctx); err != nil {
		metrics.IncStep(step, "error")
		log.Error().Err(err).Str("step", step).Msg("step failed")
		return err
	}
	metrics.IncStep(step, "ok")
	return nil
}

func (d *dispatcherUC) claim(ctx context.Context, log *zerolog.Logger, ev *model.Event) bool {
	if d.deps.Claims == nil || ev.ID == "" {
		return true
	}
	ok, err := d.deps.Claims.Claim(ctx, ev.ID, d.deps.ClaimTTL)
	if err != nil {
		log.Warn().Err(err).Msg("event claim unavailable, processing anyway")
		return true
	}
	return ok
}

func (d *dispatcherUC) release(ctx context.Context, log *zerolog.Logger, ev *model.Event) {
	if d.deps.Claims == nil || ev.ID == "" {
		return
	}
	if err := d.deps.Claims.Release(ctx, ev.ID); err != nil {
		log.Warn().Err(err).Msg("event claim release failed")
	}
}

// lock takes the per-key lock when a locker is configured. A lock held by another worker
// is waited for up to LockTTL, after which the holder's key has expired. Locker transport
// failures fall through unlocked: the order fast path keeps concurrent deliveries idempotent.
func (d *dispatcherUC) lock(ctx context.Context, log *zerolog.Logger, key string) (func(), error) {
	noop := func() {}
	if d.deps.Locker == nil {
		return noop, nil
	}
	deadline := time.Now().Add(d.deps.LockTTL)
	for {
		token, err := d.deps.Locker.TryLock(ctx, key, d.deps.LockTTL)
		switch {
		case err == nil:
			return func() {
				if err := d.deps.Locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
					log.Warn().Err(err).Str("key", key).Msg("unlock failed")
				}
			}, nil
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case !errors.Is(err, domain.ErrLockHeld):
			log.Warn().Err(err).Str("key", key).Msg("locker unavailable, continuing unlocked")
			return noop, nil
		case !time.Now().Before(deadline):
			return nil, fmt.Errorf("wait for %s: %w", key, err)
		}
		log.Debug().Str("key", key).Msg("lock held, waiting")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d.deps.LockPoll):
		}
	}
}

func logNotification(log *zerolog.Logger, res NotificationResult) {
	switch res.Status {
	case NotificationSent:
		log.Info().Str("recipient", res.Recipient).Msg("ticket email sent")
	case NotificationSkipped:
		log.Warn().Strs("checked", res.Checked).Msg("no recipient found, ticket email skipped")
	case NotificationFailed:
		log.Error().Err(res.Err).Str("recipient", res.Recipient).Msg("ticket email failed")
	}
}
