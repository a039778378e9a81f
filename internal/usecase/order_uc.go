// File: internal/usecase/order_uc.go
package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
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
var _ OrderMaterializer = (*orderUC)(nil)

type OrderMaterializer interface {
	// EnsureOrder returns the order paid for by a payment_intent.succeeded event, creating it
	// from the payment metadata when none exists. paidNow reports whether this call created
	// the order or moved an existing one to paid.
	EnsureOrder(ctx context.Context, ev *model.Event) (order *model.Order, paidNow bool, err error)
}

var requiredOrderMeta = []string{
	model.MetaSellerID,
	model.MetaProductionID,
	model.MetaPerformanceID,
	model.MetaAmount,
}

type orderUC struct {
	orders   repository.OrderRepository
	provider adapter.PaymentProvider
	log      *zerolog.Logger
	now      func() time.Time
}

func NewOrderMaterializer(orders repository.OrderRepository, provider adapter.PaymentProvider, logger *zerolog.Logger) *orderUC {
	l := logger.With().Str("component", "order_materializer").Logger()
	return &orderUC{orders: orders, provider: provider, log: &l, now: time.Now}
}

func (u *orderUC) EnsureOrder(ctx context.Context, ev *model.Event) (*model.Order, bool, error) {
	pi := ev.PaymentIntent
	if pi == nil {
		return nil, false, fmt.Errorf("%w: event %s carries no payment intent", domain.ErrInvalidArgument, ev.ID)
	}
	log := logging.With(ctx, u.log).With().Str("payment_intent", pi.ID).Logger()
	defer logging.TraceDuration(&log, "orderUC.EnsureOrder")()

	refID := pi.Meta(model.MetaOrderID)
	if refID != "" {
		o, err := u.orders.FindByID(ctx, refID)
		switch {
		case err == nil:
			metrics.IncOrder("existing")
			return u.settle(ctx, o, pi)
		case errors.Is(err, domain.ErrNotFound):
			log.Warn().Str("order_id", refID).Msg("referenced order missing, materializing under the same id")
		default:
			return nil, false, fmt.Errorf("load order %s: %w", refID, err)
		}
	}

	if pi.ID != "" {
		o, err := u.orders.FindByPaymentIntent(ctx, pi.ID)
		switch {
		case err == nil:
			metrics.IncOrder("joined")
			return u.settle(ctx, o, pi)
		case !errors.Is(err, domain.ErrNotFound):
			return nil, false, fmt.Errorf("find order by payment intent %s: %w", pi.ID, err)
		}
	}

	order, err := u.synthesize(pi, refID)
	if err != nil {
		return nil, false, err
	}
	if err := u.orders.Save(ctx, order); err != nil {
		return nil, false, fmt.Errorf("save order: %w", err)
	}
	metrics.IncOrder("created")
	log.Info().Str("order_id", order.ID).Int64("total", order.TotalAmount).Msg("order materialized")

	u.writeBack(ctx, &log, pi, order.ID)
	return order, true, nil
}

// settle marks an existing order paid, minting a view token when it has none.
// A paid order keeps its token, even an expired one: issued ticket links embed it.
func (u *orderUC) settle(ctx context.Context, o *model.Order, pi *model.PaymentIntent) (*model.Order, bool, error) {
	now := u.now()
	if o.IsPaid() && o.ViewToken != "" {
		return o, false, nil
	}

	paid := model.PaymentStatusPaid
	patch := model.OrderPatch{PaymentStatus: &paid}
	if o.ViewToken == "" || (!o.IsPaid() && !o.HasValidViewToken(now)) {
		token, err := newViewToken()
		if err != nil {
			return nil, false, err
		}
		exp := now.Add(model.ViewTokenTTL)
		patch.ViewToken, patch.ViewTokenExpiresAt = &token, &exp
	}
	if o.PaymentIntentID == "" && pi.ID != "" {
		patch.PaymentIntentID = &pi.ID
	}
	if err := u.orders.Update(ctx, o.ID, patch); err != nil {
		return nil, false, fmt.Errorf("mark order %s paid: %w", o.ID, err)
	}

	wasPaid := o.IsPaid()
	o.PaymentStatus = paid
	if patch.ViewToken != nil {
		o.ViewToken, o.ViewTokenExpiresAt = *patch.ViewToken, patch.ViewTokenExpiresAt
	}
	if patch.PaymentIntentID != nil {
		o.PaymentIntentID = *patch.PaymentIntentID
	}
	o.UpdatedAt = now
	return o, !wasPaid, nil
}

func (u *orderUC) synthesize(pi *model.PaymentIntent, id string) (*model.Order, error) {
	var missing []string
	for _, k := range requiredOrderMeta {
		if pi.Meta(k) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.MissingMetadataError{Fields: missing}
	}

	total := pi.CapturedAmount()
	if claimed, err := strconv.ParseInt(pi.Meta(model.MetaAmount), 10, 64); err != nil || claimed != total {
		u.log.Warn().Str("payment_intent", pi.ID).Str("metadata_amount", pi.Meta(model.MetaAmount)).
			Int64("captured", total).Msg("metadata amount differs from captured amount, using captured")
	}

	token, err := newViewToken()
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = model.NewID()
	}
	now := u.now()
	exp := now.Add(model.ViewTokenTTL)

	currency := strings.ToLower(pi.Currency)
	if currency == "" {
		currency = strings.ToLower(pi.Meta(model.MetaCurrency))
	}
	email := pi.Meta(model.MetaCustomerEmail)
	if email == "" {
		email = pi.Meta(model.MetaEmail)
	}

	venue := model.VenueSnapshot{
		VenueID: pi.Meta(model.MetaVenueID),
		Name:    pi.Meta(model.MetaVenueName),
		Address: pi.Meta(model.MetaVenueAddress),
		City:    pi.Meta(model.MetaVenueCity),
		State:   pi.Meta(model.MetaVenueState),
		Zip:     pi.Meta(model.MetaVenueZip),
	}
	if venue.Address == "" {
		venue.Address = addressLine(venue.City, venue.State, venue.Zip)
	}

	return &model.Order{
		ID:                 id,
		SellerID:           pi.Meta(model.MetaSellerID),
		ProductionID:       pi.Meta(model.MetaProductionID),
		PerformanceID:      pi.Meta(model.MetaPerformanceID),
		TotalAmount:        total,
		Currency:           currency,
		Status:             model.OrderStatusPending,
		PaymentStatus:      model.PaymentStatusPaid,
		CustomerEmail:      email,
		HolderID:           pi.Meta(model.MetaUserID),
		ViewToken:          token,
		ViewTokenExpiresAt: &exp,
		Venue:              venue,
		PerformanceDate:    pi.Meta(model.MetaPerformanceDate),
		PerformanceTime:    pi.Meta(model.MetaPerformanceTime),
		PaymentIntentID:    pi.ID,
		ConnectedAccountID: pi.AccountContext,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// writeBack records the order id on the payment intent. Failure is logged only:
// the order is durable and later deliveries find it through the payment intent join.
func (u *orderUC) writeBack(ctx context.Context, log *zerolog.Logger, pi *model.PaymentIntent, orderID string) {
	if pi.ID == "" || pi.Meta(model.MetaOrderID) == orderID {
		return
	}
	err := u.provider.UpdatePaymentIntentMetadata(ctx, pi.ID, map[string]string{model.MetaOrderID: orderID}, pi.AccountContext)
	if err != nil {
		metrics.IncStep("writeback", "error")
		log.Warn().Err(err).Str("order_id", orderID).Msg("order id write-back failed")
		return
	}
	metrics.IncStep("writeback", "ok")
}

// addressLine renders "City, ST 12345", skipping empty parts.
func addressLine(city, state, zip string) string {
	tail := strings.TrimSpace(state + " " + zip)
	switch {
	case city == "":
		return tail
	case tail == "":
		return city
	default:
		return city + ", " + tail
	}
}

// newViewToken returns 256 random bits, base64url encoded without padding.
func newViewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate view token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
