package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Market    MarketConfig
	CRM       CRMConfig
	Auth      AuthConfig
	Search    SearchConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	RequestTimeout int // seconds, bounds worst-case query latency
}

// MarketConfig holds configuration for the market data file (SQLite)
type MarketConfig struct {
	DatabasePath string
}

// CRMConfig holds configuration for the CRM database (PostgreSQL)
type CRMConfig struct {
	DSN                string
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// Enabled reports whether a CRM database is configured.
func (c CRMConfig) Enabled() bool {
	return c.DSN != "" || c.Password != ""
}

// AuthConfig holds identity provider configuration
type AuthConfig struct {
	ProviderURL string // base URL of the auth provider (e.g. https://xyz.supabase.co)
	ServiceKey  string // service key for admin operations (magic link send)
	JWTSecret   string // HS256 secret the provider signs access tokens with
	Timeout     int
}

// Enabled reports whether the auth provider is configured.
func (c AuthConfig) Enabled() bool {
	return c.ProviderURL != "" && c.JWTSecret != ""
}

// SearchConfig holds search-related configuration
type SearchConfig struct {
	DefaultPerPage int
	MaxPerPage     int
}

// RateLimitConfig holds per-client rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	Burst             int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json, text, or tint
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			RequestTimeout: getEnvAsInt("REQUEST_TIMEOUT", 15),
		},
		Market: MarketConfig{
			DatabasePath: getEnv("DATABASE_PATH", "BNASFR02.DB"),
		},
		CRM: CRMConfig{
			DSN:                getEnv("CRM_DATABASE_URL", getEnv("DATABASE_URL", "")),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "bna_market"),
			SSLMode:            getEnv("PG_SSLMODE", "require"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Auth: AuthConfig{
			ProviderURL: getEnv("AUTH_PROVIDER_URL", getEnv("SUPABASE_URL", "")),
			ServiceKey:  getEnv("AUTH_SERVICE_KEY", getEnv("SUPABASE_SERVICE_KEY", "")),
			JWTSecret:   getEnv("AUTH_JWT_SECRET", getEnv("SUPABASE_JWT_SECRET", "")),
			Timeout:     getEnvAsInt("AUTH_TIMEOUT", 10),
		},
		Search: SearchConfig{
			DefaultPerPage: getEnvAsInt("SEARCH_DEFAULT_PER_PAGE", 20),
			MaxPerPage:     getEnvAsInt("SEARCH_MAX_PER_PAGE", 100),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if cfg.Search.MaxPerPage <= 0 {
		return nil, fmt.Errorf("SEARCH_MAX_PER_PAGE must be positive, got %d", cfg.Search.MaxPerPage)
	}
	if cfg.Search.DefaultPerPage <= 0 || cfg.Search.DefaultPerPage > cfg.Search.MaxPerPage {
		return nil, fmt.Errorf("SEARCH_DEFAULT_PER_PAGE must be in (0, %d], got %d",
			cfg.Search.MaxPerPage, cfg.Search.DefaultPerPage)
	}

	return cfg, nil
}

// GetCRMDSN returns the PostgreSQL connection string for the CRM database
func (c *Config) GetCRMDSN() string {
	if c.CRM.DSN != "" {
		return c.CRM.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.CRM.Host,
		c.CRM.Port,
		c.CRM.User,
		c.CRM.Password,
		c.CRM.Database,
		c.CRM.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
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
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}
