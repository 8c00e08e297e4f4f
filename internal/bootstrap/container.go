// FILE: internal/bootstrap/container.go
package bootstrap

import (
	"context"
	"log"
	"time"

	"culqi-payments-be/internal/config"
	"culqi-payments-be/internal/controller"
	"culqi-payments-be/internal/pkg/logger"
	"culqi-payments-be/internal/pkg/mailer"
	"culqi-payments-be/internal/repository/unitofwork"
	"culqi-payments-be/internal/scheduler"
	"culqi-payments-be/internal/service"
	"culqi-payments-be/pkg/culqi"
	"culqi-payments-be/pkg/gateway"
	"culqi-payments-be/pkg/midtrans"
	pktNats "culqi-payments-be/pkg/nats"
	"culqi-payments-be/pkg/rates"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	PaymentController      controller.IPaymentController
	SubscriptionController controller.ISubscriptionController
	RefundController       controller.IRefundController
	PlanController         controller.IPlanController
	CustomerController     controller.ICustomerController

	// Background workers (exposed for main.go to run)
	MailConsumer *service.MailConsumer
	AuditTrail   *service.AuditTrail
	Scheduler    *scheduler.Scheduler

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
	)

	// 2. Event infrastructure
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		natsSub = nil
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	emitter := service.NewEventEmitter(natsPub, pubSub, sysLogger)

	// 3. Payment gateways
	environment := "test"
	if cfg.App.Environment == "production" {
		environment = "live"
	}
	gateways := map[string]gateway.PaymentGateway{}
	culqiClient, err := culqi.NewClient(culqi.Config{
		PublicKey:     cfg.Culqi.PublicKey,
		SecretKey:     cfg.Culqi.SecretKey,
		Environment:   environment,
		WebhookSecret: cfg.Culqi.WebhookSecret,
	})
	if err != nil {
		log.Panicf("Unable to initialize Culqi gateway: %v", err)
	}
	gateways[culqiClient.ProviderCode()] = culqiClient

	if cfg.Midtrans.ServerKey != "" {
		midtransProvider := midtrans.NewProvider(cfg.Midtrans.ServerKey, cfg.Midtrans.Production)
		gateways[midtransProvider.ProviderCode()] = midtransProvider
	}

	// 4. Currency rates for proration across currencies
	rateProvider := rates.NewCachedProvider(
		rates.NewStaticProvider(nil),
		12*time.Hour,
	)

	// 5. Services
	transactionService := service.NewTransactionService(uowFactory, gateways, cfg, emitter, sysLogger)
	refundService := service.NewRefundService(uowFactory, gateways, emitter, sysLogger)
	webhookService := service.NewWebhookService(uowFactory, gateways, cfg.Culqi.WebhookSecret, rdb, refundService, emitter, sysLogger)
	subscriptionService := service.NewSubscriptionService(uowFactory, gateways, cfg.Billing.Provider, rateProvider, emitter, sysLogger)
	planService := service.NewPlanService(uowFactory, gateways, cfg.Billing.Provider, sysLogger)
	customerService := service.NewCustomerService(uowFactory, gateways, cfg.Billing.Provider, sysLogger)

	// 6. Background workers
	mailConsumer := service.NewMailConsumer(pubSub, emailService, sysLogger)
	auditTrail := service.NewAuditTrail(natsSub, sysLogger)
	billingScheduler := scheduler.NewScheduler(subscriptionService, transactionService, cfg, sysLogger)

	return &Container{
		PaymentController:      controller.NewPaymentController(transactionService, webhookService),
		SubscriptionController: controller.NewSubscriptionController(subscriptionService),
		RefundController:       controller.NewRefundController(refundService),
		PlanController:         controller.NewPlanController(planService),
		CustomerController:     controller.NewCustomerController(customerService),
		MailConsumer:           mailConsumer,
		AuditTrail:             auditTrail,
		Scheduler:              billingScheduler,
		Logger:                 sysLogger,
	}
}
