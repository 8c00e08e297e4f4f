// FILE: internal/model/transaction_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Transaction struct {
	Id              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Reference       string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	ProviderCode    string     `gorm:"type:varchar(50);not null;index"`
	GatewayChargeId *string    `gorm:"type:varchar(255);uniqueIndex"`
	CustomerId      *uuid.UUID `gorm:"type:uuid;index"`
	CardId          *uuid.UUID `gorm:"type:uuid"`
	SubscriptionId  *uuid.UUID `gorm:"type:uuid;index"`
	InvoiceId       *uuid.UUID `gorm:"type:uuid"`
	AmountCents     int64      `gorm:"not null"`
	Currency        string     `gorm:"type:varchar(3);not null"`
	FeeCents        int64      `gorm:"default:0"`
	NetCents        int64      `gorm:"default:0"`
	RefundedCents   int64      `gorm:"default:0"`
	Installments    int        `gorm:"default:0"`
	PaymentMethod   string     `gorm:"type:varchar(50)"`
	State           string     `gorm:"type:varchar(50);not null;index"`
	StateMessage    string     `gorm:"type:text"`
	CheckoutURL     string     `gorm:"type:text"`
	Email           string     `gorm:"type:varchar(255)"`
	Metadata        datatypes.JSON
	LastStateChange time.Time
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (Transaction) TableName() string {
	return "payment_transactions"
}
