package model

import "time"

// User is a marketplace account holder.
type User struct {
	ID               string
	Email            string
	DisplayName      string
	StripeCustomerID string
	CreatedAt        time.Time
}

// Directory field names accepted by UserRepository.FindOneByField.
const (
	UserFieldEmail            = "email"
	UserFieldStripeCustomerID = "stripeCustomerId"
)
