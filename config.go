package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Hosanna-Mosa/c-t-sub002/database"
	"github.com/Hosanna-Mosa/c-t-sub002/models"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Port           string
	AppEnv         string
	JWTSecret      string
	AllowedOrigins []string

	// TrustGatewayHeaders accepts X-User-* headers and cookies as identity.
	// Only enable behind a gateway that strips them from client requests.
	TrustGatewayHeaders bool
	TrustedProxies      []string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	ShippoAPIKey       string
	ShippoBaseURL      string
	SquareAccessToken  string
	SquareBaseURL      string
	StripeSecretKey    string
	StripeBackendURL   string
	CloudinaryName     string
	CloudinaryAPIKey   string
	CloudinarySecret   string
	LabelStore         string
	LabelBucket        string
	LabelPrefix        string
	LabelURLTTL        time.Duration
	TemplatesTable     string
	ShipmentSNSTopic   string
	TrackingQueueURL   string
	KafkaBrokers       []string
	TrackingTopic      string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	CatalogCacheTTL    time.Duration
	RateCacheTTL       time.Duration
	TrackingRateLimit  float64
	TrackingRateBurst  int
	OutboxPollInterval time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	CloudWatchEnabled  bool
	CloudWatchLogGroup string
	MetricsNamespace   string

	// Warehouse / origin address
	OriginName       string
	OriginStreet1    string
	OriginCity       string
	OriginState      string
	OriginPostalCode string
	OriginCountry    string
	OriginPhone      string
	OriginEmail      string
}

// OriginAddress builds the ship-from address.
func (c *Config) OriginAddress() models.Address {
	return models.Address{
		Name:       c.OriginName,
		Street1:    c.OriginStreet1,
		City:       c.OriginCity,
		State:      c.OriginState,
		PostalCode: c.OriginPostalCode,
		Country:    c.OriginCountry,
		Phone:      c.OriginPhone,
		Email:      c.OriginEmail,
	}
}

func (c *Config) Database() database.Settings {
	return database.Settings{
		Host:     c.PostgresHost,
		Port:     c.PostgresPort,
		User:     c.PostgresUser,
		Password: c.PostgresPassword,
		DBName:   c.PostgresDB,
		SSLMode:  c.PostgresSSLMode,
		TimeZone: c.PostgresTimeZone,
	}
}

type secretGetter interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// LoadConfig reads configuration from .env and the environment. When secrets
// is non-nil, credentials stored in Secrets Manager take precedence.
func LoadConfig(ctx context.Context, secrets secretGetter) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		AppEnv:         getEnv("APP_ENV", "development"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		TrustGatewayHeaders: os.Getenv("TRUST_GATEWAY_HEADERS") == "true",
		TrustedProxies:      splitList(os.Getenv("TRUSTED_PROXIES")),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),

		ShippoAPIKey:       os.Getenv("SHIPPO_API_KEY"),
		ShippoBaseURL:      os.Getenv("SHIPPO_BASE_URL"),
		SquareAccessToken:  os.Getenv("SQUARE_ACCESS_TOKEN"),
		SquareBaseURL:      os.Getenv("SQUARE_BASE_URL"),
		StripeSecretKey:    os.Getenv("STRIPE_SECRET_KEY"),
		StripeBackendURL:   os.Getenv("STRIPE_BACKEND_URL"),
		CloudinaryName:     os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:   os.Getenv("CLOUDINARY_API_KEY"),
		CloudinarySecret:   os.Getenv("CLOUDINARY_API_SECRET"),
		LabelStore:         strings.ToLower(getEnv("LABEL_STORE", "cloudinary")),
		LabelBucket:        os.Getenv("LABEL_BUCKET"),
		LabelPrefix:        getEnv("LABEL_PREFIX", "labels"),
		LabelURLTTL:        getDuration("LABEL_URL_TTL", 7*24*time.Hour),
		TemplatesTable:     getEnv("DDB_TABLE_TEMPLATES", "templates"),
		ShipmentSNSTopic:   os.Getenv("SHIPMENT_SNS_TOPIC_ARN"),
		TrackingQueueURL:   os.Getenv("TRACKING_SYNC_QUEUE_URL"),
		KafkaBrokers:       splitList(os.Getenv("KAFKA_BROKERS")),
		TrackingTopic:      getEnv("TRACKING_TOPIC", "tracking-updates"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            getInt("REDIS_DB", 0),
		CatalogCacheTTL:    getDuration("CATALOG_CACHE_TTL", 5*time.Minute),
		RateCacheTTL:       getDuration("RATE_CACHE_TTL", 15*time.Minute),
		TrackingRateLimit:  getFloat("TRACKING_RATE_LIMIT", 1),
		TrackingRateBurst:  getInt("TRACKING_RATE_BURST", 10),
		OutboxPollInterval: getDuration("OUTBOX_POLL_INTERVAL", 30*time.Second),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),

		CloudWatchEnabled:  os.Getenv("CLOUDWATCH_ENABLED") == "true",
		CloudWatchLogGroup: getEnv("CLOUDWATCH_LOG_GROUP", "/storefront/api"),
		MetricsNamespace:   getEnv("METRICS_NAMESPACE", "Storefront"),

		OriginName:       getEnv("ORIGIN_NAME", "Storefront Warehouse"),
		OriginStreet1:    getEnv("ORIGIN_STREET1", "123 Warehouse Blvd"),
		OriginCity:       getEnv("ORIGIN_CITY", "San Francisco"),
		OriginState:      getEnv("ORIGIN_STATE", "CA"),
		OriginPostalCode: getEnv("ORIGIN_POSTAL_CODE", "94105"),
		OriginCountry:    getEnv("ORIGIN_COUNTRY", "US"),
		OriginPhone:      getEnv("ORIGIN_PHONE", "+14155550100"),
		OriginEmail:      os.Getenv("ORIGIN_EMAIL"),
	}

	if secrets != nil {
		applySecrets(ctx, cfg, secrets)
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" || cfg.PostgresHost == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}
	return cfg, nil
}

// applySecrets overrides credentials with values from Secrets Manager. Missing
// or empty secrets leave the environment value in place.
func applySecrets(ctx context.Context, cfg *Config, sm secretGetter) {
	if dbjson, err := sm.GetSecret(ctx, "storefront/DB_CREDENTIALS"); err == nil && dbjson != "" {
		var m map[string]string
		if err := json.Unmarshal([]byte(dbjson), &m); err == nil {
			override(&cfg.PostgresUser, m["POSTGRES_USER"])
			override(&cfg.PostgresPassword, m["POSTGRES_PASSWORD"])
			override(&cfg.PostgresDB, m["POSTGRES_DB"])
			override(&cfg.PostgresHost, m["POSTGRES_HOST"])
			override(&cfg.PostgresPort, m["POSTGRES_PORT"])
		}
	}
	for name, field := range map[string]*string{
		"storefront/SHIPPO_API_KEY":      &cfg.ShippoAPIKey,
		"storefront/SQUARE_ACCESS_TOKEN": &cfg.SquareAccessToken,
		"storefront/STRIPE_SECRET_KEY":   &cfg.StripeSecretKey,
		"storefront/JWT_SECRET":          &cfg.JWTSecret,
	} {
		if v, err := sm.GetSecret(ctx, name); err == nil {
			override(field, v)
		}
	}
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

func getInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && f > 0 {
		return f
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
