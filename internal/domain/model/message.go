package model

// TicketMessage is everything a sender needs to deliver a receipt with tickets.
type TicketMessage struct {
	To          string
	Subject     string
	Order       *Order
	Tickets     []*Ticket
	Performance *Performance
	Venue       *Venue
	Production  *Production
	Seller      *Seller
}
