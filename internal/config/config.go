// FILE: internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Culqi    CulqiConfig
	Midtrans MidtransConfig
	Billing  BillingConfig
	SMTP     SMTPConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type CulqiConfig struct {
	PublicKey      string
	SecretKey      string
	WebhookSecret  string
	CheckoutMode   string // "inline" or "hosted"
	MaxInstallments int
	Enable3DS      bool
	// Comma separated method toggles: card,wallet,cash_network,bank_transfer
	EnabledMethods []string
}

type MidtransConfig struct {
	ServerKey  string
	Production bool
}

type BillingConfig struct {
	// Provider selects the default gateway: "culqi" or "midtrans".
	Provider           string
	SchedulerInterval  int // seconds between billing sweeps
	ReconcileAfterMins int // age before a pending transaction is re-checked
	DunningSender      string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Culqi: CulqiConfig{
			PublicKey:       getEnv("CULQI_PUBLIC_KEY", ""),
			SecretKey:       getEnv("CULQI_SECRET_KEY", ""),
			WebhookSecret:   getEnv("CULQI_WEBHOOK_SECRET", ""),
			CheckoutMode:    getEnv("CULQI_CHECKOUT_MODE", "inline"),
			MaxInstallments: getEnvAsInt("CULQI_MAX_INSTALLMENTS", 12),
			Enable3DS:       getEnvAsBool("CULQI_ENABLE_3DS", false),
			EnabledMethods:  getEnvAsSlice("CULQI_ENABLED_METHODS", "card,wallet,cash_network"),
		},
		Midtrans: MidtransConfig{
			ServerKey:  getEnv("MIDTRANS_SERVER_KEY", ""),
			Production: getEnvAsBool("MIDTRANS_PRODUCTION", false),
		},
		Billing: BillingConfig{
			Provider:           getEnv("PAYMENT_PROVIDER", "culqi"),
			SchedulerInterval:  getEnvAsInt("BILLING_SCHEDULER_INTERVAL_SECONDS", 3600),
			ReconcileAfterMins: getEnvAsInt("RECONCILE_PENDING_AFTER_MINUTES", 60),
			DunningSender:      getEnv("DUNNING_SENDER_EMAIL", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Payments"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsSlice(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
