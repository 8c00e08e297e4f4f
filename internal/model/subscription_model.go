// FILE: internal/model/subscription_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type Subscription struct {
	Id                 uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Reference          string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	CustomerId         uuid.UUID  `gorm:"type:uuid;not null;index"`
	PlanId             uuid.UUID  `gorm:"type:uuid;not null;index"`
	CardId             *uuid.UUID `gorm:"type:uuid"`
	GatewaySubId       *string    `gorm:"type:varchar(255);uniqueIndex"`
	State              string     `gorm:"type:varchar(50);not null;index"`
	Quantity           int        `gorm:"default:1"`
	CurrentPeriodStart time.Time  `gorm:"not null"`
	CurrentPeriodEnd   time.Time  `gorm:"not null;index"`
	TrialEnd           *time.Time
	BillCount          int   `gorm:"default:0"`
	TotalPaidCents     int64 `gorm:"default:0"`
	FailedChargeCount  int   `gorm:"default:0"`
	PastDueSince       *time.Time
	CancelAtPeriodEnd  bool `gorm:"default:false"`
	CancelledAt        *time.Time
	CancellationReason string `gorm:"type:varchar(255)"`
	LastChargeAttempt  *time.Time
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`

	Plan     Plan     `gorm:"foreignKey:PlanId"`
	Customer Customer `gorm:"foreignKey:CustomerId"`
}

func (Subscription) TableName() string {
	return "payment_subscriptions"
}
