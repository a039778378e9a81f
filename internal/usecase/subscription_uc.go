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
var _ SubscriptionSynchronizer = (*subscriptionUC)(nil)

// User id sources, in priority order.
const (
	SourceCustomerMetadata = "customer_metadata"
	SourceEventMetadata    = "event_metadata"
	SourceDirectory        = "directory"
)

// SubscriptionSynchronizer mirrors provider subscription state into local records.
// Unresolvable events are logged and dropped; only store errors are returned.
type SubscriptionSynchronizer interface {
	HandleSubscriptionEvent(ctx context.Context, ev *model.Event) error
	HandleInvoiceEvent(ctx context.Context, ev *model.Event) error
}

type subscriptionUC struct {
	subs     repository.SubscriptionRepository
	users    repository.UserRepository
	provider adapter.PaymentProvider
	ledger   repository.FailureLedger // optional
	log      *zerolog.Logger
	now      func() time.Time
}

func NewSubscriptionSynchronizer(
	subs repository.SubscriptionRepository,
	users repository.UserRepository,
	provider adapter.PaymentProvider,
	ledger repository.FailureLedger,
	logger *zerolog.Logger,
) *subscriptionUC {
	l := logger.With().Str("component", "subscription_sync").Logger()
	return &subscriptionUC{subs: subs, users: users, provider: provider, ledger: ledger, log: &l, now: time.Now}
}

func (u *subscriptionUC) HandleSubscriptionEvent(ctx context.Context, ev *model.Event) error {
	s := ev.Subscription
	if s == nil {
		return fmt.Errorf("%w: event %s carries no subscription", domain.ErrInvalidArgument, ev.ID)
	}
	log := logging.With(ctx, u.log).With().Str("subscription", s.ID).Str("event_type", string(ev.Type)).Logger()

	userID, ok := u.resolveUser(ctx, &log, ev, s.CustomerID, s.Metadata)
	if !ok {
		return nil
	}
	log = log.With().Str("user_id", userID).Logger()
	now := u.now()

	var err error
	switch ev.Type {
	case model.EventSubscriptionCreated:
		err = u.subs.Upsert(ctx, &model.Subscription{
			UserID:                 userID,
			PlanID:                 s.PlanID,
			PlanName:               s.PlanName,
			ExternalSubscriptionID: s.ID,
			ExternalCustomerID:     s.CustomerID,
			Status:                 s.Status,
			CurrentPeriodStart:     timePtr(s.CurrentPeriodStart),
			CurrentPeriodEnd:       timePtr(s.CurrentPeriodEnd),
			CancelAtPeriodEnd:      s.CancelAtPeriodEnd,
			UpdatedAt:              now,
		})
	case model.EventSubscriptionUpdated:
		status, cancel := s.Status, s.CancelAtPeriodEnd
		err = u.subs.Patch(ctx, userID, model.SubscriptionPatch{
			Status:             &status,
			CurrentPeriodStart: timePtr(s.CurrentPeriodStart),
			CurrentPeriodEnd:   timePtr(s.CurrentPeriodEnd),
			CancelAtPeriodEnd:  &cancel,
		})
	case model.EventSubscriptionDeleted:
		canceled := model.SubscriptionStatusCanceled
		err = u.overlayExisting(ctx, &log, userID, model.SubscriptionPatch{Status: &canceled, CanceledAt: &now})
	default:
		return nil
	}
	if err != nil {
		metrics.IncSubscriptionSync(string(ev.Type), "error")
		return fmt.Errorf("sync subscription %s for user %s: %w", s.ID, userID, err)
	}
	metrics.IncSubscriptionSync(string(ev.Type), "ok")
	log.Info().Str("status", string(s.Status)).Msg("subscription mirrored")
	return nil
}

func (u *subscriptionUC) HandleInvoiceEvent(ctx context.Context, ev *model.Event) error {
	inv := ev.Invoice
	if inv == nil {
		return fmt.Errorf("%w: event %s carries no invoice", domain.ErrInvalidArgument, ev.ID)
	}
	log := logging.With(ctx, u.log).With().Str("invoice", inv.ID).Str("event_type", string(ev.Type)).Logger()
	if inv.SubscriptionID == "" {
		log.Debug().Msg("invoice not tied to a subscription, ignoring")
		return nil
	}

	customerID := inv.CustomerID
	meta := map[string]string{}
	sub, err := u.provider.GetSubscription(ctx, inv.SubscriptionID, ev.Account)
	if err != nil {
		log.Warn().Err(err).Str("subscription", inv.SubscriptionID).Msg("subscription fetch failed, resolving from invoice")
	} else {
		if sub.CustomerID != "" {
			customerID = sub.CustomerID
		}
		for k, v := range sub.Metadata {
			meta[k] = v
		}
	}
	for k, v := range inv.Metadata {
		if _, set := meta[k]; !set {
			meta[k] = v
		}
	}

	userID, ok := u.resolveUser(ctx, &log, ev, customerID, meta)
	if !ok {
		return nil
	}
	log = log.With().Str("user_id", userID).Logger()

	now := u.now()
	var patch model.SubscriptionPatch
	switch ev.Type {
	case model.EventInvoicePaymentSucceeded:
		active := model.SubscriptionStatusActive
		patch = model.SubscriptionPatch{Status: &active, LastPaymentDate: &now}
	case model.EventInvoicePaymentFailed:
		pastDue := model.SubscriptionStatusPastDue
		patch = model.SubscriptionPatch{Status: &pastDue, LastPaymentFailedDate: &now}
	default:
		return nil
	}
	if err := u.overlayExisting(ctx, &log, userID, patch); err != nil {
		metrics.IncSubscriptionSync(string(ev.Type), "error")
		return fmt.Errorf("apply invoice %s for user %s: %w", inv.ID, userID, err)
	}
	metrics.IncSubscriptionSync(string(ev.Type), "ok")
	return nil
}

// overlayExisting patches the user's record, doing nothing when there is none.
func (u *subscriptionUC) overlayExisting(ctx context.Context, log *zerolog.Logger, userID string, patch model.SubscriptionPatch) error {
	if _, err := u.subs.FindByUser(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Info().Msg("no local subscription record, nothing to overlay")
			return nil
		}
		return err
	}
	return u.subs.Patch(ctx, userID, patch)
}

func (u *subscriptionUC) resolveUser(ctx context.Context, log *zerolog.Logger, ev *model.Event, customerID string, meta map[string]string) (string, bool) {
	userID, checked, ok := firstMatch(ctx,
		link[string]{SourceCustomerMetadata, func(ctx context.Context) (string, bool) {
			if customerID == "" {
				return "", false
			}
			c, err := u.provider.GetCustomer(ctx, customerID, ev.Account)
			if err != nil {
				log.Warn().Err(err).Str("customer_id", customerID).Msg("customer fetch failed")
				return "", false
			}
			return firstNonEmpty(c.Metadata[model.MetaUserID])
		}},
		link[string]{SourceEventMetadata, func(context.Context) (string, bool) {
			return firstNonEmpty(meta[model.MetaUserID])
		}},
		link[string]{SourceDirectory, func(ctx context.Context) (string, bool) {
			if customerID == "" {
				return "", false
			}
			user, err := u.users.FindOneByField(ctx, model.UserFieldStripeCustomerID, customerID)
			if err != nil {
				if !errors.Is(err, domain.ErrNotFound) {
					log.Warn().Err(err).Str("customer_id", customerID).Msg("directory lookup failed")
				}
				return "", false
			}
			return firstNonEmpty(user.ID)
		}},
	)
	if ok {
		return userID, true
	}

	metrics.IncSubscriptionSync(string(ev.Type), "unresolved")
	log.Warn().Str("customer_id", customerID).Strs("checked", checked).Msg("user id unresolved, dropping event")
	recordFailure(ctx, u.ledger, u.log, &model.FailedStep{
		EventID:   ev.ID,
		EventType: string(ev.Type),
		Step:      "resolve_user",
		Error:     fmt.Sprintf("no user for customer %q (checked %v)", customerID, checked),
	})
	return "", false
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
