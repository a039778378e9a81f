package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"ticket-marketplace/internal/domain/model"
	"ticket-marketplace/internal/domain/ports/repository"
	"ticket-marketplace/internal/infra/logging"
	"ticket-marketplace/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ TicketIssuer = (*ticketUC)(nil)

type TicketIssuer interface {
	// IssueTickets persists one ticket per request and sets the order's ticket ids to the
	// ones that were saved. A failed ticket is logged and skipped.
	IssueTickets(ctx context.Context, order *model.Order, requests []model.TicketRequest) ([]string, error)
}

type ticketUC struct {
	tickets repository.TicketRepository
	orders  repository.OrderRepository
	baseURL string
	log     *zerolog.Logger
	now     func() time.Time
}

func NewTicketIssuer(tickets repository.TicketRepository, orders repository.OrderRepository, baseURL string, logger *zerolog.Logger) *ticketUC {
	l := logger.With().Str("component", "ticket_issuer").Logger()
	return &ticketUC{
		tickets: tickets,
		orders:  orders,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     &l,
		now:     time.Now,
	}
}

func (u *ticketUC) IssueTickets(ctx context.Context, order *model.Order, requests []model.TicketRequest) ([]string, error) {
	log := logging.With(ctx, u.log).With().Str("order_id", order.ID).Logger()
	if len(requests) == 0 {
		log.Warn().Msg("no ticket requests on order, leaving it without tickets")
		return nil, nil
	}

	link := AccessLink(u.baseURL, order.ID, order.ViewToken)
	ids := make([]string, 0, len(requests))
	for i, req := range requests {
		t := &model.Ticket{
			ID:         model.NewID(),
			OrderID:    order.ID,
			SeatID:     req.SeatID,
			Section:    req.Section,
			Row:        req.Row,
			SeatNumber: req.SeatNumber,
			Status:     model.TicketStatusValid,
			AccessLink: link,
			CreatedAt:  u.now(),
		}
		if req.Price != nil {
			t.Price = *req.Price
		}
		if err := u.tickets.Save(ctx, order.ID, t); err != nil {
			log.Error().Err(err).Int("index", i).Str("seat_id", req.SeatID).Msg("ticket not issued")
			continue
		}
		ids = append(ids, t.ID)
	}
	metrics.AddTickets("ok", len(ids))
	metrics.AddTickets("error", len(requests)-len(ids))

	if err := u.orders.Update(ctx, order.ID, model.OrderPatch{TicketIDs: &ids}); err != nil {
		return ids, fmt.Errorf("record ticket ids on order %s: %w", order.ID, err)
	}
	order.TicketIDs = ids
	log.Info().Int("issued", len(ids)).Int("requested", len(requests)).Msg("tickets issued")
	return ids, nil
}

// AccessLink is the customer-facing order URL carried by every ticket.
func AccessLink(baseURL, orderID, viewToken string) string {
	return fmt.Sprintf("%s/orders/%s?token=%s", baseURL, url.PathEscape(orderID), url.QueryEscape(viewToken))
}

// ParseTicketRequests decodes the JSON seat list stored in payment metadata.
func ParseTicketRequests(raw string) ([]model.TicketRequest, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var reqs []model.TicketRequest
	if err := json.Unmarshal([]byte(raw), &reqs); err != nil {
		return nil, fmt.Errorf("decode ticket requests: %w", err)
	}
	return reqs, nil
}
