// FILE: internal/entity/customer_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	Id                uuid.UUID
	GatewayCustomerId *string
	FirstName         string
	LastName          string
	Email             string
	Phone             string
	AddressLine       string
	City              string
	CountryCode       string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Card struct {
	Id            uuid.UUID
	CustomerId    uuid.UUID
	GatewayCardId *string
	Brand         string
	LastFour      string
	ExpMonth      int
	ExpYear       int
	IsDefault     bool
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Expired reports whether the card's expiry has passed relative to now.
func (c *Card) Expired(now time.Time) bool {
	if c.ExpYear == 0 {
		return false
	}
	// A card stays valid through the last day of its expiry month.
	endOfMonth := time.Date(c.ExpYear, time.Month(c.ExpMonth), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 1, 0)
	return !now.Before(endOfMonth)
}
