package main

import (
	"context"
	"log"

	"culqi-payments-be/internal/bootstrap"
	"culqi-payments-be/internal/config"
	"culqi-payments-be/internal/server"
	"culqi-payments-be/internal/tracer"
	"culqi-payments-be/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	ctx := context.Background()
	if err := container.MailConsumer.Start(ctx); err != nil {
		log.Printf("Background mail consumer error: %v", err)
	}
	if err := container.AuditTrail.Start(); err != nil {
		log.Printf("Audit trail consumer error: %v", err)
	}

	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
