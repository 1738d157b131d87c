package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port     string
	GinMode  string
	LogLevel string
	LogJSON  bool

	// Static bearer token protecting the API surface
	TokenAPI string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Connection pool settings
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime int // minutes
	DBConnMaxIdleTime int // minutes

	// Requests per minute allowed per client IP
	RateLimitPerMinute int

	// TTL in seconds for cached rate maps and settings
	CacheTTLSeconds int
}

// ErrMissingToken indicates a required token was not configured
var ErrMissingToken = errors.New("required token not configured")

// Load reads configuration from the environment
func Load() (*Config, error) {
	// Try .env in the working dir and the project root
	_ = godotenv.Load()
	_ = godotenv.Load("../.env")

	cfg := &Config{
		Port:     os.Getenv("PORT"),
		GinMode:  os.Getenv("GIN_MODE"),
		LogLevel: os.Getenv("LOG_LEVEL"),
		LogJSON:  envBool("LOG_JSON", true),

		TokenAPI: os.Getenv("TOKEN_API"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  os.Getenv("DB_SSLMODE"),

		DBMaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxLifetime: envInt("DB_CONN_MAX_LIFETIME_MIN", 5),
		DBConnMaxIdleTime: envInt("DB_CONN_MAX_IDLE_TIME_MIN", 2),

		RateLimitPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 120),
		CacheTTLSeconds:    envInt("CACHE_TTL_SECONDS", 60),
	}

	if cfg.TokenAPI == "" {
		return nil, errors.New("TOKEN_API not configured")
	}

	if cfg.DBHost == "" {
		return nil, errors.New("DB_HOST not configured")
	}
	if cfg.DBUser == "" {
		return nil, errors.New("DB_USER not configured")
	}
	if cfg.DBName == "" {
		return nil, errors.New("DB_NAME not configured")
	}

	// Defaults
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.GinMode == "" {
		cfg.GinMode = "debug"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DBPort == "" {
		cfg.DBPort = "5432"
	}
	if cfg.DBSSLMode == "" {
		cfg.DBSSLMode = "disable"
	}

	return cfg, nil
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
