// FILE: internal/dto/plan_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreatePlanRequest struct {
	Name          string     `json:"name" validate:"required,min=3"`
	Code          string     `json:"code" validate:"required,min=2"`
	Description   string     `json:"description"`
	AmountCents   int64      `json:"amount_cents" validate:"required,gt=0"`
	Currency      string     `json:"currency" validate:"required,len=3"`
	IntervalUnit  string     `json:"interval_unit" validate:"required,oneof=day week month year"`
	IntervalCount int        `json:"interval_count" validate:"omitempty,gte=1"`
	TrialDays     int        `json:"trial_days" validate:"omitempty,gte=0"`
	ProductId     *uuid.UUID `json:"product_id"`
	// Zero disables the cap.
	MaxCycles      int `json:"max_cycles" validate:"omitempty,gte=0"`
	MaxSubscribers int `json:"max_subscribers" validate:"omitempty,gte=0"`
}

type UpdatePlanRequest struct {
	Name        string `json:"name" validate:"omitempty,min=3"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

type PlanResponse struct {
	Id             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Code           string     `json:"code"`
	Description    string     `json:"description,omitempty"`
	AmountCents    int64      `json:"amount_cents"`
	Currency       string     `json:"currency"`
	IntervalUnit   string     `json:"interval_unit"`
	IntervalCount  int        `json:"interval_count"`
	TrialDays      int        `json:"trial_days"`
	ProductId      *uuid.UUID `json:"product_id,omitempty"`
	MaxCycles      int        `json:"max_cycles,omitempty"`
	MaxSubscribers int        `json:"max_subscribers,omitempty"`
	Active         bool       `json:"active"`
	CreatedAt      time.Time  `json:"created_at"`
}
