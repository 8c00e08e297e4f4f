package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"culqi-payments-be/internal/bootstrap"
	"culqi-payments-be/internal/config"
	"culqi-payments-be/pkg/database"
)

// Runs the billing, deferred-cancellation and reconciliation sweeps as a
// standalone process so the REST pods can stay stateless.
func main() {
	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := container.MailConsumer.Start(ctx); err != nil {
		log.Printf("Background mail consumer error: %v", err)
	}

	log.Println("Billing scheduler started")
	container.Scheduler.Run(ctx)
	log.Println("Billing scheduler stopped")
}
