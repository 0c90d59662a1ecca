package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tivrax/storefront/database"
	"github.com/tivrax/storefront/events"
	aws_pkg "github.com/tivrax/storefront/pkg/aws"
)

const (
	secretDBCredentials = "storefront/DB_CREDENTIALS"
	secretStripe        = "storefront/STRIPE"
	secretJWT           = "storefront/JWT_SECRET"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Env  string
	Port string

	DB       database.DBConfig
	RedisURL string

	JWTSecret   string
	AdminEmails []string

	EventsBackend string
	KafkaBrokers  []string
	KafkaTopic    string
	SNSTopicARN   string

	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string
	UPIPayeeVPA         string
	UPIPayeeName        string

	ClearCartOnOrder   bool
	CheckoutSessionTTL time.Duration
	ConfirmPerMinute   int
	ProductCacheTTL    time.Duration

	S3Bucket           string
	CloudWatchEnabled  bool
	CloudWatchLogGroup string
	MetricsEnabled     bool
	MetricsNamespace   string

	AllowedOrigins []string
}

// LoadConfig reads configuration from the environment (and .env when
// present), with an optional Secrets Manager override.
func LoadConfig(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	cfg := configFromEnv()

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		awsCfg, err := aws_pkg.LoadAWSConfig(ctx)
		if err != nil {
			return nil, err
		}
		applySecrets(ctx, cfg, aws_pkg.NewSecretsClient(awsCfg))
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configFromEnv() *Config {
	return &Config{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnv("PORT", "8080"),
		DB: database.DBConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Name:     os.Getenv("POSTGRES_DB"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: getEnv("POSTGRES_TIMEZONE", "Asia/Kolkata"),
		},
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		AdminEmails: splitList(os.Getenv("ADMIN_EMAILS")),

		EventsBackend: strings.ToLower(getEnv("EVENTS_BACKEND", events.BackendNone)),
		KafkaBrokers:  events.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "storefront.orders"),
		SNSTopicARN:   os.Getenv("ORDER_SNS_TOPIC_ARN"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		Currency:            getEnv("CURRENCY", "inr"),
		UPIPayeeVPA:         os.Getenv("UPI_VPA"),
		UPIPayeeName:        getEnv("UPI_PAYEE_NAME", "Tivrax"),

		ClearCartOnOrder:   getEnvBool("CLEAR_CART_ON_ORDER", true),
		CheckoutSessionTTL: getEnvDuration("CHECKOUT_SESSION_TTL", 30*time.Minute),
		ConfirmPerMinute:   getEnvInt("CONFIRM_RATE_PER_MINUTE", 10),
		ProductCacheTTL:    getEnvDuration("PRODUCT_CACHE_TTL", 10*time.Minute),

		S3Bucket:           os.Getenv("S3_BUCKET"),
		CloudWatchEnabled:  getEnvBool("CLOUDWATCH_ENABLED", false),
		CloudWatchLogGroup: getEnv("CLOUDWATCH_LOG_GROUP", "/tivrax/storefront"),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", false),
		MetricsNamespace:   getEnv("METRICS_NAMESPACE", "Storefront"),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
	}
}

// applySecrets overrides DB credentials, Stripe keys and the JWT secret.
// Missing or unreadable secrets leave the env values in place.
func applySecrets(ctx context.Context, cfg *Config, sm aws_pkg.SecretReader) {
	if m, err := aws_pkg.ReadJSONSecret(ctx, sm, secretDBCredentials); err == nil {
		override(&cfg.DB.User, m["POSTGRES_USER"])
		override(&cfg.DB.Password, m["POSTGRES_PASSWORD"])
		override(&cfg.DB.Name, m["POSTGRES_DB"])
		override(&cfg.DB.Host, m["POSTGRES_HOST"])
		override(&cfg.DB.Port, m["POSTGRES_PORT"])
	}
	if m, err := aws_pkg.ReadJSONSecret(ctx, sm, secretStripe); err == nil {
		override(&cfg.StripeSecretKey, m["STRIPE_SECRET_KEY"])
		override(&cfg.StripeWebhookSecret, m["STRIPE_WEBHOOK_SECRET"])
	}
	if v, err := sm.GetSecret(ctx, secretJWT); err == nil {
		override(&cfg.JWTSecret, strings.TrimSpace(v))
	}
}

func (c *Config) validate() error {
	if c.DB.User == "" || c.DB.Password == "" || c.DB.Name == "" || c.DB.Host == "" {
		return fmt.Errorf("database config incomplete")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.EventsBackend {
	case events.BackendNone:
	case events.BackendSNS:
		if c.SNSTopicARN == "" {
			return fmt.Errorf("ORDER_SNS_TOPIC_ARN is required when EVENTS_BACKEND=sns")
		}
	case events.BackendKafka:
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required when EVENTS_BACKEND=kafka")
		}
	default:
		return fmt.Errorf("unknown EVENTS_BACKEND %q", c.EventsBackend)
	}
	if c.StripeSecretKey != "" && c.StripeWebhookSecret == "" {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET is required when STRIPE_SECRET_KEY is set")
	}
	return nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
