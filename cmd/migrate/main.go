package main

import (
	"log"

	"culqi-payments-be/internal/config"
	"culqi-payments-be/internal/model"
	"culqi-payments-be/pkg/database"
)

func main() {
	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	err = gormDB.AutoMigrate(
		&model.Customer{},
		&model.Card{},
		&model.Plan{},
		&model.Subscription{},
		&model.Transaction{},
		&model.Refund{},
		&model.Invoice{},
		&model.InvoiceLine{},
		&model.WebhookEvent{},
	)
	if err != nil {
		log.Panicf("Migration failed: %v", err)
	}

	log.Println("Migration complete")
}
