// FILE: internal/model/customer_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	Id                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GatewayCustomerId *string   `gorm:"type:varchar(255);uniqueIndex"`
	FirstName         string    `gorm:"type:varchar(255);not null"`
	LastName          string    `gorm:"type:varchar(255)"`
	Email             string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Phone             string    `gorm:"type:varchar(50)"`
	AddressLine       string    `gorm:"type:varchar(255)"`
	City              string    `gorm:"type:varchar(100)"`
	CountryCode       string    `gorm:"type:varchar(2)"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

func (Customer) TableName() string {
	return "payment_customers"
}

type Card struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CustomerId    uuid.UUID `gorm:"type:uuid;not null;index"`
	GatewayCardId *string   `gorm:"type:varchar(255);uniqueIndex"`
	Brand         string    `gorm:"type:varchar(50)"`
	LastFour      string    `gorm:"type:varchar(4)"`
	ExpMonth      int
	ExpYear       int
	IsDefault     bool      `gorm:"default:false"`
	Active        bool      `gorm:"default:true"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`

	Customer Customer `gorm:"foreignKey:CustomerId"`
}

func (Card) TableName() string {
	return "payment_cards"
}
