package config

import (
	"log"
	"time"

	"github.com/sangkips/tableside-api/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	RabbitMQ  RabbitMQConfig
	Payment   PaymentConfig
	Billing   BillingConfig
	Printer   PrinterConfig
	Log       LogConfig
	Seed      SeedConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
	LogLevel string
}

// StorageConfig selects the repository backend: postgres or memory
type StorageConfig struct {
	Driver string
}

// JWTConfig holds the secret shared with the auth service that issues staff tokens
type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// RateLimitConfig allows Requests per Duration seconds for each outlet
type RateLimitConfig struct {
	Requests int
	Duration int
}

// Window returns Duration as a time.Duration
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.Duration) * time.Second
}

// RabbitMQConfig is optional; an empty URL disables event publishing and the payment consumer
type RabbitMQConfig struct {
	URL           string
	Exchange      string
	PaymentsQueue string
	Prefetch      int
}

type PaymentConfig struct {
	Provider      string
	WebhookSecret string
	PollInterval  time.Duration
	PollAttempts  int
	SweepInterval time.Duration
	SweepAfter    time.Duration
}

type BillingConfig struct {
	DefaultTaxPercent decimal.Decimal
	Currency          string
	IdempotencyTTL    time.Duration
}

type PrinterConfig struct {
	Type    string
	USBPath string
	Address string
	Width   int
}

// SeedConfig describes the outlet created by the migrate command and by the
// memory store on start
type SeedConfig struct {
	OutletSlug       string
	OutletName       string
	OutletTaxPercent string
	TableCount       int
}

// Slug returns OutletSlug, or one derived from OutletName
func (c SeedConfig) Slug() string {
	if c.OutletSlug != "" {
		return c.OutletSlug
	}
	return utils.Slugify(c.OutletName)
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "tableside-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "tableside")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "UTC")
	viper.SetDefault("DB_LOG_LEVEL", "warn")
	viper.SetDefault("STORAGE_DRIVER", "postgres")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_ISSUER", "tableside-auth")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("RABBITMQ_EXCHANGE", "restaurant_events")
	viper.SetDefault("RABBITMQ_PAYMENTS_QUEUE", "payments")
	viper.SetDefault("RABBITMQ_PREFETCH", 10)
	viper.SetDefault("PAYMENT_PROVIDER", "sandbox")
	viper.SetDefault("PAYMENT_WEBHOOK_SECRET", "")
	viper.SetDefault("PAYMENT_POLL_INTERVAL", "10s")
	viper.SetDefault("PAYMENT_POLL_ATTEMPTS", 30)
	viper.SetDefault("PAYMENT_SWEEP_INTERVAL", "1m")
	viper.SetDefault("PAYMENT_SWEEP_AFTER", "5m")
	viper.SetDefault("BILLING_DEFAULT_TAX_PERCENT", "0")
	viper.SetDefault("BILLING_CURRENCY", "USD")
	viper.SetDefault("IDEMPOTENCY_TTL", "24h")
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_USB_PATH", "/dev/usb/lp0")
	viper.SetDefault("PRINTER_ADDRESS", "")
	viper.SetDefault("PRINTER_WIDTH", 32)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("OUTLET_SLUG", "")
	viper.SetDefault("OUTLET_NAME", "")
	viper.SetDefault("OUTLET_TAX_PERCENT", "")
	viper.SetDefault("TABLE_COUNT", 10)

	taxPercent, err := decimal.NewFromString(viper.GetString("BILLING_DEFAULT_TAX_PERCENT"))
	if err != nil {
		log.Printf("Warning: invalid BILLING_DEFAULT_TAX_PERCENT, using 0: %v", err)
		taxPercent = decimal.Zero
	}

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
			LogLevel: viper.GetString("DB_LOG_LEVEL"),
		},
		Storage: StorageConfig{
			Driver: viper.GetString("STORAGE_DRIVER"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
			Issuer: viper.GetString("JWT_ISSUER"),
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:           viper.GetString("RABBITMQ_URL"),
			Exchange:      viper.GetString("RABBITMQ_EXCHANGE"),
			PaymentsQueue: viper.GetString("RABBITMQ_PAYMENTS_QUEUE"),
			Prefetch:      viper.GetInt("RABBITMQ_PREFETCH"),
		},
		Payment: PaymentConfig{
			Provider:      viper.GetString("PAYMENT_PROVIDER"),
			WebhookSecret: viper.GetString("PAYMENT_WEBHOOK_SECRET"),
			PollInterval:  viper.GetDuration("PAYMENT_POLL_INTERVAL"),
			PollAttempts:  viper.GetInt("PAYMENT_POLL_ATTEMPTS"),
			SweepInterval: viper.GetDuration("PAYMENT_SWEEP_INTERVAL"),
			SweepAfter:    viper.GetDuration("PAYMENT_SWEEP_AFTER"),
		},
		Billing: BillingConfig{
			DefaultTaxPercent: taxPercent,
			Currency:          viper.GetString("BILLING_CURRENCY"),
			IdempotencyTTL:    viper.GetDuration("IDEMPOTENCY_TTL"),
		},
		Printer: PrinterConfig{
			Type:    viper.GetString("PRINTER_TYPE"),
			USBPath: viper.GetString("PRINTER_USB_PATH"),
			Address: viper.GetString("PRINTER_ADDRESS"),
			Width:   viper.GetInt("PRINTER_WIDTH"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
		Seed: SeedConfig{
			OutletSlug:       viper.GetString("OUTLET_SLUG"),
			OutletName:       viper.GetString("OUTLET_NAME"),
			OutletTaxPercent: viper.GetString("OUTLET_TAX_PERCENT"),
			TableCount:       viper.GetInt("TABLE_COUNT"),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
