// FILE: internal/model/invoice_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type Invoice struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number         string     `gorm:"type:varchar(50);uniqueIndex;not null"`
	Kind           string     `gorm:"type:varchar(20);not null"`
	State          string     `gorm:"type:varchar(20);not null"`
	CustomerId     uuid.UUID  `gorm:"type:uuid;not null;index"`
	SubscriptionId *uuid.UUID `gorm:"type:uuid;index"`
	ReversedId     *uuid.UUID `gorm:"type:uuid"`
	Currency       string     `gorm:"type:varchar(3);not null"`
	TotalCents     int64      `gorm:"not null"`
	IssuedAt       time.Time
	PeriodStart    *time.Time
	PeriodEnd      *time.Time
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`

	Lines []InvoiceLine `gorm:"foreignKey:InvoiceId"`
}

func (Invoice) TableName() string {
	return "payment_invoices"
}

type InvoiceLine struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceId      uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductId      *uuid.UUID `gorm:"type:uuid"`
	Description    string     `gorm:"type:text"`
	Quantity       float64    `gorm:"type:decimal(12,4);default:1"`
	UnitPriceCents int64      `gorm:"not null"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
}

func (InvoiceLine) TableName() string {
	return "payment_invoice_lines"
}
