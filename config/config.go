package config

import (
	"flag"
	"os"
	"sync"
	"time"
)

const (
	defaultServerAddress  = ":8080"
	defaultDatabaseDSN    = ""
	defaultLogLevel       = "debug"
	defaultPaymentAPIAddr = "https://api.mercadopago.com"
	defaultCarrierAPIAddr = "https://api.mercadolibre.com/sites/MLB/shipping_options"
	defaultMailAPIAddr    = "https://api.resend.com"
	defaultFrontendURL    = "http://localhost:5173"
	defaultRedisAddr      = "localhost:6379"
	defaultSweepInterval  = 2 * time.Minute
)

type Config struct {
	ServerAddr     string
	DatabaseDSN    string
	LogLevel       string
	TokenKey       string
	PaymentAPIAddr string
	PaymentToken   string
	WebhookToken   string
	WebhookURL     string
	CarrierAPIAddr string
	CarrierToken   string
	MailAPIAddr    string
	MailAPIKey     string
	MailFrom       string
	AdminEmail     string
	FrontendURL    string
	RedisAddr      string
	SweepInterval  time.Duration
}

var (
	once      sync.Once
	singleton *Config
)

// New returns new Config. It parses command line and environment variables only once.
func New() (*Config, error) {
	once.Do(func() {
		cfg := Config{
			PaymentAPIAddr: defaultPaymentAPIAddr,
			CarrierAPIAddr: defaultCarrierAPIAddr,
			MailAPIAddr:    defaultMailAPIAddr,
			FrontendURL:    defaultFrontendURL,
		}

		// initialize flags
		flag.StringVar(&cfg.ServerAddr, "a", defaultServerAddress, "storefront server address")
		flag.StringVar(&cfg.DatabaseDSN, "d", defaultDatabaseDSN, "storefront database DSN")
		flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")
		flag.StringVar(&cfg.RedisAddr, "r", defaultRedisAddr, "redis address")
		flag.DurationVar(&cfg.SweepInterval, "s", defaultSweepInterval, "pending payment sweep interval")

		flag.Parse()

		// if environment variable is set, then using it
		if runAddrEnv := os.Getenv("RUN_ADDRESS"); runAddrEnv != "" {
			cfg.ServerAddr = runAddrEnv
		}
		if dataBaseURIEnv := os.Getenv("DATABASE_URI"); dataBaseURIEnv != "" {
			cfg.DatabaseDSN = dataBaseURIEnv
		}
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			cfg.LogLevel = logLevelEnv
		}
		if tokenKeyEnv := os.Getenv("AUTH_TOKEN_KEY"); tokenKeyEnv != "" {
			cfg.TokenKey = tokenKeyEnv
		}
		if paymentAddrEnv := os.Getenv("MERCADO_PAGO_API_URL"); paymentAddrEnv != "" {
			cfg.PaymentAPIAddr = paymentAddrEnv
		}
		if paymentTokenEnv := os.Getenv("MERCADO_PAGO_ACCESS_TOKEN"); paymentTokenEnv != "" {
			cfg.PaymentToken = paymentTokenEnv
		}
		if webhookTokenEnv := os.Getenv("MERCADO_PAGO_WEBHOOK_TOKEN"); webhookTokenEnv != "" {
			cfg.WebhookToken = webhookTokenEnv
		}
		if webhookURLEnv := os.Getenv("MERCADO_PAGO_WEBHOOK_URL"); webhookURLEnv != "" {
			cfg.WebhookURL = webhookURLEnv
		}
		if carrierAddrEnv := os.Getenv("MERCADO_ENVIOS_API_URL"); carrierAddrEnv != "" {
			cfg.CarrierAPIAddr = carrierAddrEnv
		}
		if carrierTokenEnv := os.Getenv("MERCADO_ENVIOS_ACCESS_TOKEN"); carrierTokenEnv != "" {
			cfg.CarrierToken = carrierTokenEnv
		}
		if mailAddrEnv := os.Getenv("RESEND_API_URL"); mailAddrEnv != "" {
			cfg.MailAPIAddr = mailAddrEnv
		}
		if mailKeyEnv := os.Getenv("RESEND_API_KEY"); mailKeyEnv != "" {
			cfg.MailAPIKey = mailKeyEnv
		}
		if mailFromEnv := os.Getenv("MAIL_FROM"); mailFromEnv != "" {
			cfg.MailFrom = mailFromEnv
		}
		if adminEmailEnv := os.Getenv("ADMIN_EMAIL"); adminEmailEnv != "" {
			cfg.AdminEmail = adminEmailEnv
		}
		if frontendURLEnv := os.Getenv("FRONTEND_URL"); frontendURLEnv != "" {
			cfg.FrontendURL = frontendURLEnv
		}
		if redisAddrEnv := os.Getenv("REDIS_ADDRESS"); redisAddrEnv != "" {
			cfg.RedisAddr = redisAddrEnv
		}

		singleton = &cfg
	})

	return singleton, nil
}
