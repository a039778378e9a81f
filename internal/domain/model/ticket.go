package model

import "time"

type TicketStatus string

const (
	TicketStatusValid TicketStatus = "valid"
	TicketStatusVoid  TicketStatus = "void"
)

// Ticket belongs to exactly one order.
type Ticket struct {
	ID         string
	OrderID    string
	SeatID     string
	Section    string
	Row        string
	SeatNumber string
	Price      int64
	Status     TicketStatus
	AccessLink string // encoded into the ticket QR code
	CreatedAt  time.Time
}

// TicketRequest is one seat allocation requested at checkout.
type TicketRequest struct {
	SeatID     string `json:"seatId"`
	Section    string `json:"section"`
	Row        string `json:"row"`
	SeatNumber string `json:"seatNumber"`
	Price      *int64 `json:"price,omitempty"`
}
