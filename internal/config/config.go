package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTables DynamoTables

	S3BucketName string // avatar images

	// External identity provider admin API.
	IdentityBaseURL string
	IdentityToken   string

	// SNS topic for fire-and-forget new-customer events.
	SNSRegion          string
	CustomerEventTopic string

	JWTPublicKeyPath string

	VerificationTTL time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Profiles      string
	Verifications string
	Addresses     string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			Profiles:      getEnv("DYNAMO_TABLE_PROFILES", "customer_profiles"),
			Verifications: getEnv("DYNAMO_TABLE_VERIFICATIONS", "verifications"),
			Addresses:     getEnv("DYNAMO_TABLE_ADDRESSES", "shipping_addresses"),
		},

		S3BucketName: getEnv("S3_BUCKET_NAME", "customer-avatars"),

		IdentityBaseURL: getEnv("IDENTITY_BASE_URL", "http://localhost:8080"),
		IdentityToken:   getEnv("IDENTITY_ADMIN_TOKEN", ""),

		SNSRegion:          getEnv("SNS_REGION", "us-east-1"),
		CustomerEventTopic: getEnv("SNS_CUSTOMER_EVENT_TOPIC", ""),

		JWTPublicKeyPath: getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),

		VerificationTTL: time.Duration(getEnvInt("VERIFICATION_TTL_MINUTES", 15)) * time.Minute,

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
