package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	MailProvider   string // "sendgrid" | "smtp"
	SendGridAPIKey string
	SendGridHost   string
	SenderEmail    string
	SenderName     string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string

	OTPTTL             time.Duration
	OTPStore           string // "memory" | "redis" | "dynamo"
	OTPRetention       time.Duration
	OTPCleanupInterval time.Duration
	OTPLogCodes        bool

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoOTPTable string

	AllowedOrigins []string // CORS allowed origins
	RateLimitRPS   float64  // 0 disables the limiter
	RateLimitBurst int
	TrustProxy     bool // take the client IP from X-Forwarded-For / X-Real-IP
}

// Load reads all configuration from environment variables.
func Load() *Config {
	appEnv := getEnv("APP_ENV", "development")
	return &Config{
		AppPort: getEnv("PORT", getEnv("APP_PORT", "3000")),
		AppEnv:  appEnv,

		MailProvider:   strings.ToLower(getEnv("MAIL_PROVIDER", "sendgrid")),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		SendGridHost:   getEnv("SENDGRID_HOST", "https://api.sendgrid.com"),
		SenderEmail:    getEnv("SENDER_EMAIL", ""),
		SenderName:     getEnv("SENDER_NAME", "B-Buddy"),
		SMTPHost:       getEnv("SMTP_HOST", "localhost"),
		SMTPPort:       getEnvInt("SMTP_PORT", 1025),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),

		OTPTTL:             getEnvDuration("OTP_TTL", 10*time.Minute),
		OTPStore:           strings.ToLower(getEnv("OTP_STORE", "memory")),
		OTPRetention:       getEnvDuration("OTP_RETENTION", 0),
		OTPCleanupInterval: getEnvDuration("OTP_CLEANUP_INTERVAL", 0),
		OTPLogCodes:        getEnvBool("OTP_LOG_CODES", appEnv == "development"),

		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "otp:"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoOTPTable: getEnv("DYNAMO_TABLE_OTPS", "otp_records"),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 0),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
		TrustProxy:     getEnvBool("TRUST_PROXY", false),
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.OTPStore {
	case "memory", "redis", "dynamo":
	default:
		return fmt.Errorf("unknown OTP_STORE %q", c.OTPStore)
	}
	switch c.MailProvider {
	case "sendgrid", "smtp":
	default:
		return fmt.Errorf("unknown MAIL_PROVIDER %q", c.MailProvider)
	}
	if c.OTPTTL <= 0 {
		return fmt.Errorf("OTP_TTL must be positive, got %s", c.OTPTTL)
	}
	return nil
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

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("10m") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
