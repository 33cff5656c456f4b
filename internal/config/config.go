package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	DatabaseURL        string
	RedisAddr          string
	RedisPassword      string
	RedisTLS           bool
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	// Identity
	AuthJWTSecret string
	AuthTokenTTL  time.Duration

	// Chat
	ChatReplyProvider   string
	ChatReplyMinDelay   time.Duration
	ChatReplyMaxDelay   time.Duration
	ChatSessionIdleTTL  time.Duration
	ChatTranscriptLimit int64
	GeminiAPIKey        string
	GeminiModelID       string

	// Booking
	BookingDateWindowDays int
	BookingTimezone       string
	WizardIdleTTL         time.Duration

	// SendGrid Email Configuration
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SendGridReplyTo   string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisTLS:           getEnvAsBool("REDIS_TLS", false),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),

		AuthJWTSecret: getEnv("AUTH_JWT_SECRET", ""),
		AuthTokenTTL:  getEnvAsDuration("AUTH_TOKEN_TTL", 12*time.Hour),

		ChatReplyProvider:   strings.ToLower(strings.TrimSpace(getEnv("CHAT_REPLY_PROVIDER", "canned"))),
		ChatReplyMinDelay:   getEnvAsDuration("CHAT_REPLY_MIN_DELAY", 1500*time.Millisecond),
		ChatReplyMaxDelay:   getEnvAsDuration("CHAT_REPLY_MAX_DELAY", 2500*time.Millisecond),
		ChatSessionIdleTTL:  getEnvAsDuration("CHAT_SESSION_IDLE_TTL", 30*time.Minute),
		ChatTranscriptLimit: int64(getEnvAsInt("CHAT_TRANSCRIPT_LIMIT", 200)),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:       getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),

		BookingDateWindowDays: getEnvAsInt("BOOKING_DATE_WINDOW_DAYS", 14),
		BookingTimezone:       getEnv("BOOKING_TIMEZONE", "UTC"),
		WizardIdleTTL:         getEnvAsDuration("WIZARD_IDLE_TTL", time.Hour),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "MindfulU Counseling"),
		SendGridReplyTo:   getEnv("SENDGRID_REPLY_TO", ""),
	}
}

// Location resolves BookingTimezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	if c == nil || strings.TrimSpace(c.BookingTimezone) == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.BookingTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
