// FILE: internal/model/plan_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type Plan struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name           string     `gorm:"type:varchar(255);not null"`
	Code           string     `gorm:"type:varchar(100);uniqueIndex;not null"`
	Description    string     `gorm:"type:text"`
	GatewayPlanId  *string    `gorm:"type:varchar(255);uniqueIndex"`
	AmountCents    int64      `gorm:"not null"`
	Currency       string     `gorm:"type:varchar(3);not null"`
	IntervalUnit   string     `gorm:"type:varchar(10);not null"`
	IntervalCount  int        `gorm:"default:1"`
	TrialDays      int        `gorm:"default:0"`
	ProductId      *uuid.UUID `gorm:"type:uuid"`
	MaxCycles      int        `gorm:"default:0"`
	MaxSubscribers int        `gorm:"default:0"`
	Active         bool       `gorm:"default:true"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime"`
}

func (Plan) TableName() string {
	return "payment_plans"
}
