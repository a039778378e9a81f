package model

import "time"

type Production struct {
	ID    string
	Title string
}

type Venue struct {
	ID      string
	Name    string
	Address string
	City    string
	State   string
	Zip     string
}

type Performance struct {
	ID           string
	ProductionID string
	VenueID      string
	Date         string
	Time         string
	StartsAt     *time.Time
}

// Seller is the storefront that sold the order; used for branding and reply routing.
type Seller struct {
	ID      string
	Name    string
	Email   string
	LogoURL string
}
