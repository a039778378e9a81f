package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ticket-marketplace/internal/domain"
	"ticket-marketplace/internal/domain/model"
	"ticket-marketplace/internal/infra/metrics"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
)

// StripeVerifier implements adapter.EventVerifier with Stripe's signed webhook scheme.
type StripeVerifier struct {
	secret          string
	allowUnverified bool
	log             *zerolog.Logger
}

// NewStripeVerifier creates a verifier for secret. allowUnverified enables the
// unsigned-body fallback and must only be set outside production.
func NewStripeVerifier(secret string, allowUnverified bool, logger *zerolog.Logger) *StripeVerifier {
	l := logger.With().Str("component", "stripe_verifier").Logger()
	return &StripeVerifier{secret: secret, allowUnverified: allowUnverified, log: &l}
}

func (v *StripeVerifier) Verify(payload []byte, signature string) (*model.Event, error) {
	start := time.Now()
	defer func() { metrics.ObserveVerify(time.Since(start)) }()

	ev, err := v.construct(payload, signature)
	if err == nil {
		return ToModelEvent(ev)
	}
	if !v.allowUnverified {
		return nil, err
	}

	v.log.Warn().Err(err).Msg("signature verification failed, accepting unverified body")
	var raw stripe.Event
	if jerr := json.Unmarshal(payload, &raw); jerr != nil || raw.ID == "" || raw.Type == "" {
		return nil, &domain.AuthenticationError{Reason: "unverified body is not an event", Err: err}
	}
	return ToModelEvent(raw)
}

func (v *StripeVerifier) construct(payload []byte, signature string) (stripe.Event, error) {
	if v.secret == "" {
		return stripe.Event{}, &domain.AuthenticationError{Reason: "webhook secret not configured"}
	}
	if signature == "" {
		return stripe.Event{}, &domain.AuthenticationError{Reason: "missing signature header"}
	}
	ev, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		Tolerance:                webhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, &domain.AuthenticationError{Reason: "invalid signature", Err: err}
	}
	return ev, nil
}

// ToModelEvent converts a Stripe envelope into the domain event, decoding the
// object for the handled types.
func ToModelEvent(ev stripe.Event) (*model.Event, error) {
	out := &model.Event{
		ID:      ev.ID,
		Type:    model.EventType(ev.Type),
		Account: ev.Account,
		Created: time.Unix(ev.Created, 0).UTC(),
	}
	if ev.Data == nil || len(ev.Data.Raw) == 0 {
		return out, nil
	}

	switch out.Type {
	case model.EventPaymentIntentSucceeded, model.EventPaymentIntentPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent of %s: %w", ev.ID, err)
		}
		out.PaymentIntent = toPaymentIntent(&pi)
	case model.EventSubscriptionCreated, model.EventSubscriptionUpdated, model.EventSubscriptionDeleted:
		var s stripe.Subscription
		if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("decode subscription of %s: %w", ev.ID, err)
		}
		out.Subscription = toSubscription(&s)
	case model.EventInvoicePaymentSucceeded, model.EventInvoicePaymentFailed:
		var inv stripe.Invoice
		if err := json.Unmarshal(ev.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("decode invoice of %s: %w", ev.ID, err)
		}
		out.Invoice = toInvoice(&inv)
	}
	return out, nil
}

// IsAuthenticationError reports whether err came from signature verification.
func IsAuthenticationError(err error) bool {
	var aerr *domain.AuthenticationError
	return errors.As(err, &aerr)
}

func toPaymentIntent(pi *stripe.PaymentIntent) *model.PaymentIntent {
	out := &model.PaymentIntent{
		ID:             pi.ID,
		Amount:         pi.Amount,
		AmountReceived: pi.AmountReceived,
		Currency:       string(pi.Currency),
		ReceiptEmail:   pi.ReceiptEmail,
		Metadata:       pi.Metadata,
	}
	if pi.Customer != nil {
		out.CustomerID = pi.Customer.ID
	}
	return out
}

func toSubscription(s *stripe.Subscription) *model.SubscriptionSnapshot {
	out := &model.SubscriptionSnapshot{
		ID:                 s.ID,
		Status:             model.SubscriptionStatus(s.Status),
		CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
		CurrentPeriodStart: unixTime(s.CurrentPeriodStart),
		CurrentPeriodEnd:   unixTime(s.CurrentPeriodEnd),
		Metadata:           s.Metadata,
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	if s.Items != nil && len(s.Items.Data) > 0 && s.Items.Data[0].Price != nil {
		price := s.Items.Data[0].Price
		out.PlanID, out.PlanName = price.ID, price.Nickname
		if out.PlanName == "" && price.Product != nil {
			out.PlanName = price.Product.Name
		}
	} else if s.Plan != nil {
		out.PlanID, out.PlanName = s.Plan.ID, s.Plan.Nickname
	}
	if name := s.Metadata["planName"]; out.PlanName == "" && name != "" {
		out.PlanName = name
	}
	return out
}

func toInvoice(inv *stripe.Invoice) *model.InvoiceSnapshot {
	out := &model.InvoiceSnapshot{ID: inv.ID, Metadata: inv.Metadata}
	if inv.Customer != nil {
		out.CustomerID = inv.Customer.ID
	}
	if inv.Subscription != nil {
		out.SubscriptionID = inv.Subscription.ID
	}
	return out
}

func unixTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
