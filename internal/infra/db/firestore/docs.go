package firestore

import (
	"time"

	"ticket-marketplace/internal/domain/model"
)

type venueDoc struct {
	VenueID string `firestore:"venueId,omitempty"`
	Name    string `firestore:"name,omitempty"`
	Address string `firestore:"address,omitempty"`
	City    string `firestore:"city,omitempty"`
	State   string `firestore:"state,omitempty"`
	Zip     string `firestore:"zip,omitempty"`
}

type orderDoc struct {
	SellerID           string     `firestore:"sellerId"`
	ProductionID       string     `firestore:"productionId"`
	PerformanceID      string     `firestore:"performanceId"`
	TotalAmount        int64      `firestore:"totalAmount"`
	Currency           string     `firestore:"currency"`
	Status             string     `firestore:"status"`
	PaymentStatus      string     `firestore:"paymentStatus"`
	CustomerEmail      string     `firestore:"customerEmail,omitempty"`
	LegacyEmail        string     `firestore:"email,omitempty"`
	HolderID           string     `firestore:"userId,omitempty"`
	ViewToken          string     `firestore:"viewToken,omitempty"`
	ViewTokenExpiresAt *time.Time `firestore:"viewTokenExpiresAt,omitempty"`
	Venue              venueDoc   `firestore:"venue"`
	PerformanceDate    string     `firestore:"performanceDate,omitempty"`
	PerformanceTime    string     `firestore:"performanceTime,omitempty"`
	PaymentIntentID    string     `firestore:"paymentIntentId,omitempty"`
	ConnectedAccountID string     `firestore:"connectedAccountId,omitempty"`
	TicketIDs          []string   `firestore:"ticketIds"`
	CreatedAt          time.Time  `firestore:"createdAt"`
	UpdatedAt          time.Time  `firestore:"updatedAt"`
}

func toOrderDoc(o *model.Order) orderDoc {
	ids := o.TicketIDs
	if ids == nil {
		ids = []string{}
	}
	return orderDoc{
		SellerID:           o.SellerID,
		ProductionID:       o.ProductionID,
		PerformanceID:      o.PerformanceID,
		TotalAmount:        o.TotalAmount,
		Currency:           o.Currency,
		Status:             string(o.Status),
		PaymentStatus:      string(o.PaymentStatus),
		CustomerEmail:      o.CustomerEmail,
		LegacyEmail:        o.LegacyEmail,
		HolderID:           o.HolderID,
		ViewToken:          o.ViewToken,
		ViewTokenExpiresAt: o.ViewTokenExpiresAt,
		Venue: venueDoc{
			VenueID: o.Venue.VenueID,
			Name:    o.Venue.Name,
			Address: o.Venue.Address,
			City:    o.Venue.City,
			State:   o.Venue.State,
			Zip:     o.Venue.Zip,
		},
		PerformanceDate:    o.PerformanceDate,
		PerformanceTime:    o.PerformanceTime,
		PaymentIntentID:    o.PaymentIntentID,
		ConnectedAccountID: o.ConnectedAccountID,
		TicketIDs:          ids,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

func (d orderDoc) toModel(id string) *model.Order {
	return &model.Order{
		ID:                 id,
		SellerID:           d.SellerID,
		ProductionID:       d.ProductionID,
		PerformanceID:      d.PerformanceID,
		TotalAmount:        d.TotalAmount,
		Currency:           d.Currency,
		Status:             model.OrderStatus(d.Status),
		PaymentStatus:      model.PaymentStatus(d.PaymentStatus),
		CustomerEmail:      d.CustomerEmail,
		LegacyEmail:        d.LegacyEmail,
		HolderID:           d.HolderID,
		ViewToken:          d.ViewToken,
		ViewTokenExpiresAt: d.ViewTokenExpiresAt,
		Venue: model.VenueSnapshot{
			VenueID: d.Venue.VenueID,
			Name:    d.Venue.Name,
			Address: d.Venue.Address,
			City:    d.Venue.City,
			State:   d.Venue.State,
			Zip:     d.Venue.Zip,
		},
		PerformanceDate:    d.PerformanceDate,
		PerformanceTime:    d.PerformanceTime,
		PaymentIntentID:    d.PaymentIntentID,
		ConnectedAccountID: d.ConnectedAccountID,
		TicketIDs:          d.TicketIDs,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

type ticketDoc struct {
	OrderID    string    `firestore:"orderId"`
	SeatID     string    `firestore:"seatId,omitempty"`
	Section    string    `firestore:"section,omitempty"`
	Row        string    `firestore:"row,omitempty"`
	SeatNumber string    `firestore:"seatNumber,omitempty"`
	Price      int64     `firestore:"price"`
	Status     string    `firestore:"status"`
	AccessLink string    `firestore:"qrCode"`
	CreatedAt  time.Time `firestore:"createdAt"`
}

func toTicketDoc(t *model.Ticket) ticketDoc {
	return ticketDoc{
		OrderID:    t.OrderID,
		SeatID:     t.SeatID,
		Section:    t.Section,
		Row:        t.Row,
		SeatNumber: t.SeatNumber,
		Price:      t.Price,
		Status:     string(t.Status),
		AccessLink: t.AccessLink,
		CreatedAt:  t.CreatedAt,
	}
}

func (d ticketDoc) toModel(id string) *model.Ticket {
	return &model.Ticket{
		ID:         id,
		OrderID:    d.OrderID,
		SeatID:     d.SeatID,
		Section:    d.Section,
		Row:        d.Row,
		SeatNumber: d.SeatNumber,
		Price:      d.Price,
		Status:     model.TicketStatus(d.Status),
		AccessLink: d.AccessLink,
		CreatedAt:  d.CreatedAt,
	}
}

type userDoc struct {
	Email            string    `firestore:"email"`
	DisplayName      string    `firestore:"displayName"`
	StripeCustomerID string    `firestore:"stripeCustomerId"`
	CreatedAt        time.Time `firestore:"createdAt"`
}

type subscriptionDoc struct {
	UserID                 string     `firestore:"userId"`
	PlanID                 string     `firestore:"planId"`
	PlanName               string     `firestore:"planName"`
	ExternalSubscriptionID string     `firestore:"stripeSubscriptionId"`
	ExternalCustomerID     string     `firestore:"stripeCustomerId"`
	Status                 string     `firestore:"status"`
	CurrentPeriodStart     *time.Time `firestore:"currentPeriodStart"`
	CurrentPeriodEnd       *time.Time `firestore:"currentPeriodEnd"`
	CancelAtPeriodEnd      bool       `firestore:"cancelAtPeriodEnd"`
	CanceledAt             *time.Time `firestore:"canceledAt"`
	LastPaymentDate        *time.Time `firestore:"lastPaymentDate"`
	LastPaymentFailedDate  *time.Time `firestore:"lastPaymentFailedDate"`
	UpdatedAt              time.Time  `firestore:"updatedAt"`
}

func toSubscriptionDoc(s *model.Subscription) subscriptionDoc {
	return subscriptionDoc{
		UserID:                 s.UserID,
		PlanID:                 s.PlanID,
		PlanName:               s.PlanName,
		ExternalSubscriptionID: s.ExternalSubscriptionID,
		ExternalCustomerID:     s.ExternalCustomerID,
		Status:                 string(s.Status),
		CurrentPeriodStart:     s.CurrentPeriodStart,
		CurrentPeriodEnd:       s.CurrentPeriodEnd,
		CancelAtPeriodEnd:      s.CancelAtPeriodEnd,
		CanceledAt:             s.CanceledAt,
		LastPaymentDate:        s.LastPaymentDate,
		LastPaymentFailedDate:  s.LastPaymentFailedDate,
		UpdatedAt:              s.UpdatedAt,
	}
}

func (d subscriptionDoc) toModel(userID string) *model.Subscription {
	return &model.Subscription{
		UserID:                 userID,
		PlanID:                 d.PlanID,
		PlanName:               d.PlanName,
		ExternalSubscriptionID: d.ExternalSubscriptionID,
		ExternalCustomerID:     d.ExternalCustomerID,
		Status:                 model.SubscriptionStatus(d.Status),
		CurrentPeriodStart:     d.CurrentPeriodStart,
		CurrentPeriodEnd:       d.CurrentPeriodEnd,
		CancelAtPeriodEnd:      d.CancelAtPeriodEnd,
		CanceledAt:             d.CanceledAt,
		LastPaymentDate:        d.LastPaymentDate,
		LastPaymentFailedDate:  d.LastPaymentFailedDate,
		UpdatedAt:              d.UpdatedAt,
	}
}

type performanceDoc struct {
	ProductionID string     `firestore:"productionId"`
	VenueID      string     `firestore:"venueId"`
	Date         string     `firestore:"date"`
	Time         string     `firestore:"time"`
	StartsAt     *time.Time `firestore:"startsAt"`
}

type venueRecordDoc struct {
	Name    string `firestore:"name"`
	Address string `firestore:"address"`
	City    string `firestore:"city"`
	State   string `firestore:"state"`
	Zip     string `firestore:"zip"`
}

type productionDoc struct {
	Title string `firestore:"title"`
}

type sellerDoc struct {
	Name    string `firestore:"name"`
	Email   string `firestore:"email"`
	LogoURL string `firestore:"logoUrl"`
}
