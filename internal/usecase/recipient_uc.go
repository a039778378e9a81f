package usecase

import (
	"context"
	"errors"
	"strings"

	"ticket-marketplace/internal/domain"
	"ticket-marketplace/internal/domain/model"
	"ticket-marketplace/internal/domain/ports/adapter"
	"ticket-marketplace/internal/domain/ports/repository"
	"ticket-marketplace/internal/infra/logging"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ RecipientResolver = (*recipientUC)(nil)

// Recipient sources, in priority order.
const (
	SourcePaymentMetadata  = "payment_metadata"
	SourceOrderEmail       = "order_email"
	SourceOrderHolder      = "order_holder"
	SourceProviderCustomer = "provider_customer"
)

type RecipientResolver interface {
	// ResolveRecipient returns the best address for the order's ticket email.
	// checked lists the sources consulted; ok=false means none produced an address.
	ResolveRecipient(ctx context.Context, ev *model.Event, order *model.Order) (email string, checked []string, ok bool)
}

type recipientUC struct {
	users    repository.UserRepository
	provider adapter.PaymentProvider
	log      *zerolog.Logger
}

func NewRecipientResolver(users repository.UserRepository, provider adapter.PaymentProvider, logger *zerolog.Logger) *recipientUC {
	l := logger.With().Str("component", "recipient_resolver").Logger()
	return &recipientUC{users: users, provider: provider, log: &l}
}

func (u *recipientUC) ResolveRecipient(ctx context.Context, ev *model.Event, order *model.Order) (string, []string, bool) {
	return firstMatch(ctx,
		link[string]{SourcePaymentMetadata, func(context.Context) (string, bool) { return fromPaymentMetadata(ev) }},
		link[string]{SourceOrderEmail, func(context.Context) (string, bool) { return fromOrderEmail(order) }},
		link[string]{SourceOrderHolder, func(ctx context.Context) (string, bool) { return u.fromHolder(ctx, order) }},
		link[string]{SourceProviderCustomer, func(ctx context.Context) (string, bool) { return u.fromCustomer(ctx, ev) }},
	)
}

func fromPaymentMetadata(ev *model.Event) (string, bool) {
	pi := ev.PaymentIntent
	if pi == nil {
		return "", false
	}
	return firstNonEmpty(pi.Meta(model.MetaCustomerEmail), pi.Meta(model.MetaEmail), pi.ReceiptEmail)
}

func fromOrderEmail(o *model.Order) (string, bool) {
	if o == nil {
		return "", false
	}
	return firstNonEmpty(o.CustomerEmail, o.LegacyEmail)
}

func (u *recipientUC) fromHolder(ctx context.Context, o *model.Order) (string, bool) {
	if o == nil {
		return "", false
	}
	holder := strings.TrimSpace(o.HolderID)
	if holder == "" {
		return "", false
	}
	if looksLikeEmail(holder) {
		return holder, true
	}
	user, err := u.users.FindByID(ctx, holder)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logging.With(ctx, u.log).Warn().Err(err).Str("user_id", holder).Msg("holder lookup failed")
		}
		return "", false
	}
	return firstNonEmpty(user.Email)
}

func (u *recipientUC) fromCustomer(ctx context.Context, ev *model.Event) (string, bool) {
	pi := ev.PaymentIntent
	if pi == nil || pi.CustomerID == "" {
		return "", false
	}
	c, err := u.provider.GetCustomer(ctx, pi.CustomerID, pi.AccountContext)
	if err != nil {
		logging.With(ctx, u.log).Warn().Err(err).Str("customer_id", pi.CustomerID).Msg("customer lookup failed")
		return "", false
	}
	return firstNonEmpty(c.Email)
}

func firstNonEmpty(values ...string) (string, bool) {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v, true
		}
	}
	return "", false
}

var validate = validator.New()

// looksLikeEmail accepts a bare address such as a@b.co, not "Name <a@b.co>".
func looksLikeEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}
