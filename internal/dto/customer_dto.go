// FILE: internal/dto/customer_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateCustomerRequest struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	CountryCode string `json:"country_code" validate:"omitempty,len=2"`
}

type CustomerResponse struct {
	Id          uuid.UUID `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name,omitempty"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	AddressLine string    `json:"address_line,omitempty"`
	City        string    `json:"city,omitempty"`
	CountryCode string    `json:"country_code,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateCardRequest struct {
	CustomerId uuid.UUID `json:"customer_id" validate:"required"`
	TokenId    string    `json:"token_id" validate:"required"`
	SetDefault bool      `json:"set_default"`
}

type CardResponse struct {
	Id        uuid.UUID `json:"id"`
	Brand     string    `json:"brand"`
	LastFour  string    `json:"last_four"`
	ExpMonth  int       `json:"exp_month"`
	ExpYear   int       `json:"exp_year"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}
