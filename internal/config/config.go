// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Public site
	SiteURL       string // absolute base URL, no trailing slash
	DefaultLocale string // locale for unprefixed legacy routes

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache + session store)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// External identity service (token exchange + user lookup)
	IdentityURL        string
	IdentityServiceKey string

	// Admin allow-list: user IDs permitted into the Nutra console.
	AdminUserIDs []string

	// S3-compatible object storage for recipe photos
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	// AI provider settings
	AIProvider    string // "openai" or "gemini"
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiKey     string
	GeminiModel   string
	GeminiBaseURL string

	// Waitlist rate limiting (requests per minute per IP)
	WaitlistRateLimit int

	// Mobile deep-link identifiers for .well-known verification files
	AppleAppID         string // "TEAMID.bundle.identifier"
	AndroidPackage     string
	AndroidFingerprint string // SHA-256 cert fingerprint
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		SiteURL:       envOrDefault("SITE_URL", "http://localhost:8080"),
		DefaultLocale: envOrDefault("DEFAULT_LOCALE", "cs"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "nutra"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "nutra"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		IdentityURL:        os.Getenv("IDENTITY_URL"),
		IdentityServiceKey: os.Getenv("IDENTITY_SERVICE_KEY"),

		AdminUserIDs: splitList(os.Getenv("ADMIN_USER_IDS")),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "eu-central-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "recipe-photos"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		AIProvider:    envOrDefault("AI_PROVIDER", "openai"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   envOrDefault("OPENAI_MODEL", "gpt-image-1"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		GeminiKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   envOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL: os.Getenv("GEMINI_BASE_URL"),

		WaitlistRateLimit: envInt("WAITLIST_RATE_LIMIT", 5),

		AppleAppID:         os.Getenv("APPLE_APP_ID"),
		AndroidPackage:     os.Getenv("ANDROID_PACKAGE"),
		AndroidFingerprint: os.Getenv("ANDROID_CERT_FINGERPRINT"),
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.IdentityURL == "" {
			return nil, fmt.Errorf("IDENTITY_URL must be set in production")
		}
		if len(cfg.AdminUserIDs) == 0 {
			return nil, fmt.Errorf("ADMIN_USER_IDS must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt reads an integer environment variable with a fallback.
func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// splitList parses a comma-separated list, trimming whitespace and
// dropping empty entries.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
