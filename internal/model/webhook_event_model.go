// FILE: internal/model/webhook_event_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type WebhookEvent struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProviderCode   string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_webhook_provider_event"`
	EventId        string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_webhook_provider_event"`
	EventType      string     `gorm:"type:varchar(100)"`
	TransactionId  *uuid.UUID `gorm:"type:uuid;index"`
	Status         string     `gorm:"type:varchar(20);not null"`
	FailureMessage string     `gorm:"type:text"`
	Payload        datatypes.JSON
	ReceivedAt     time.Time `gorm:"autoCreateTime"`
}

func (WebhookEvent) TableName() string {
	return "payment_webhook_events"
}
