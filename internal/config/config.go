package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Courier  CourierConfig
	Gateway  GatewayConfig
	Auth     AuthConfig
	Secrets  SecretsConfig
	Logger   LoggerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int
	Host        string
	MetricsPort int
	RateLimit   float64
	RateBurst   int
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// CourierConfig holds the shipping aggregator settings. WebhookKey is the
// shared secret the courier sends back in the x-api-key header; when empty it
// is loaded from the secret manager.
type CourierConfig struct {
	BaseURL    string
	Email      string
	Password   string
	WebhookKey string
	Timeout    time.Duration
}

// GatewayConfig holds the payment gateway settings. WebhookSecret signs
// inbound webhook bodies; when empty it is loaded from the secret manager.
type GatewayConfig struct {
	BaseURL       string
	KeyID         string
	KeySecret     string
	WebhookSecret string
	Timeout       time.Duration
}

// AuthConfig holds session token settings. JWTSecret is loaded from the
// secret manager when empty.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
	TokenTTL  time.Duration
}

// SecretsConfig selects and configures the secret manager backend:
// "env", "aws", or "vault"
type SecretsConfig struct {
	Backend      string
	PathPrefix   string
	AWSRegion    string
	AWSEndpoint  string
	VaultAddress string
	VaultToken   string
	VaultMount   string
	CacheTTL     time.Duration
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnvAsInt("SERVER_PORT", 8080),
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			MetricsPort: getEnvAsInt("METRICS_PORT", 9090),
			RateLimit:   getEnvAsFloat("RATE_LIMIT_RPS", 50),
			RateBurst:   getEnvAsInt("RATE_LIMIT_BURST", 100),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "commerce"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			MaxConns: int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns: int32(getEnvAsInt("DB_MIN_CONNS", 5)),
		},
		Courier: CourierConfig{
			BaseURL:    getEnv("SHIPROCKET_BASE_URL", "https://apiv2.shiprocket.in"),
			Email:      getEnv("SHIPROCKET_EMAIL", ""),
			Password:   getEnv("SHIPROCKET_PASSWORD", ""),
			WebhookKey: getEnv("SHIPROCKET_WEBHOOK_KEY", ""),
			Timeout:    getEnvAsDuration("SHIPROCKET_TIMEOUT", 30*time.Second),
		},
		Gateway: GatewayConfig{
			BaseURL:       getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
			KeyID:         getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret:     getEnv("RAZORPAY_KEY_SECRET", ""),
			WebhookSecret: getEnv("RAZORPAY_WEBHOOK_SECRET", ""),
			Timeout:       getEnvAsDuration("RAZORPAY_TIMEOUT", 30*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			Issuer:    getEnv("JWT_ISSUER", "commerce-service"),
			TokenTTL:  getEnvAsDuration("JWT_TOKEN_TTL", 24*time.Hour),
		},
		Secrets: SecretsConfig{
			Backend:      getEnv("SECRETS_BACKEND", "env"),
			PathPrefix:   getEnv("SECRETS_PATH_PREFIX", "commerce-service"),
			AWSRegion:    getEnv("AWS_REGION", "ap-south-1"),
			AWSEndpoint:  getEnv("AWS_SECRETS_ENDPOINT", ""),
			VaultAddress: getEnv("VAULT_ADDR", ""),
			VaultToken:   getEnv("VAULT_TOKEN", ""),
			VaultMount:   getEnv("VAULT_MOUNT", "secret"),
			CacheTTL:     getEnvAsDuration("SECRETS_CACHE_TTL", 5*time.Minute),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	// Validate required fields
	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	switch cfg.Secrets.Backend {
	case "env", "aws":
	case "vault":
		if cfg.Secrets.VaultAddress == "" {
			return nil, fmt.Errorf("VAULT_ADDR is required for the vault secrets backend")
		}
	default:
		return nil, fmt.Errorf("unknown SECRETS_BACKEND %q", cfg.Secrets.Backend)
	}

	return cfg, nil
}

// ConnectionString returns PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
