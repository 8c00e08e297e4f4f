// FILE: internal/model/refund_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type Refund struct {
	Id              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TransactionId   uuid.UUID  `gorm:"type:uuid;not null;index"`
	GatewayRefundId *string    `gorm:"type:varchar(255);uniqueIndex"`
	AmountCents     int64      `gorm:"not null"`
	Currency        string     `gorm:"type:varchar(3);not null"`
	Reason          string     `gorm:"type:varchar(50);not null"`
	Kind            string     `gorm:"type:varchar(20);not null;default:manual"`
	State           string     `gorm:"type:varchar(50);not null;index"`
	FailureMessage  string     `gorm:"type:text"`
	CreditNoteId    *uuid.UUID `gorm:"type:uuid"`
	RequestedBy     string     `gorm:"type:varchar(255)"`
	ProcessedAt     *time.Time
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`

	Transaction Transaction `gorm:"foreignKey:TransactionId"`
}

func (Refund) TableName() string {
	return "payment_refunds"
}
