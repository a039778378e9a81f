package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"ticket-marketplace/internal/domain"
	"ticket-marketplace/internal/domain/model"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
)

// StripeProvider implements adapter.PaymentProvider over the Stripe API.
type StripeProvider struct {
	api *client.API
}

// NewStripeProvider creates a provider for secretKey. backends may be nil to use
// Stripe's default endpoints.
func NewStripeProvider(secretKey string, backends *stripe.Backends) *StripeProvider {
	return &StripeProvider{api: client.New(secretKey, backends)}
}

func (p *StripeProvider) GetPaymentIntent(ctx context.Context, id, account string) (*model.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	scope(&params.Params, ctx, account)
	pi, err := p.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, mapStripeError("payment_intent", id, err)
	}
	out := toPaymentIntent(pi)
	out.AccountContext = account
	return out, nil
}

func (p *StripeProvider) UpdatePaymentIntentMetadata(ctx context.Context, id string, fields map[string]string, account string) error {
	params := &stripe.PaymentIntentParams{}
	scope(&params.Params, ctx, account)
	for k, v := range fields {
		params.AddMetadata(k, v)
	}
	if _, err := p.api.PaymentIntents.Update(id, params); err != nil {
		return mapStripeError("payment_intent", id, err)
	}
	return nil
}

func (p *StripeProvider) GetCustomer(ctx context.Context, id, account string) (*model.Customer, error) {
	params := &stripe.CustomerParams{}
	scope(&params.Params, ctx, account)
	c, err := p.api.Customers.Get(id, params)
	if err != nil {
		return nil, mapStripeError("customer", id, err)
	}
	return &model.Customer{ID: c.ID, Email: c.Email, Metadata: c.Metadata}, nil
}

func (p *StripeProvider) GetSubscription(ctx context.Context, id, account string) (*model.SubscriptionSnapshot, error) {
	params := &stripe.SubscriptionParams{}
	scope(&params.Params, ctx, account)
	s, err := p.api.Subscriptions.Get(id, params)
	if err != nil {
		return nil, mapStripeError("subscription", id, err)
	}
	return toSubscription(s), nil
}

func scope(params *stripe.Params, ctx context.Context, account string) {
	params.Context = ctx
	if account != "" {
		params.SetStripeAccount(account)
	}
}

func mapStripeError(kind, id string, err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) && (serr.HTTPStatusCode == http.StatusNotFound || serr.Code == stripe.ErrorCodeResourceMissing) {
		return domain.NewNotFound(kind, id)
	}
	return fmt.Errorf("stripe %s %s: %w", kind, id, err)
}
