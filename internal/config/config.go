package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port            string
	AllowedOrigins  []string
	LogLevel        string
	CacheTTL        time.Duration
	RefreshInterval time.Duration
	ScoringConfig   string

	// Auth
	SkipAuth           bool
	Env                string
	OIDCIssuer         string
	VerifyJWTSignature bool

	// WebSocket
	WSReadTimeout  time.Duration
	WSWriteTimeout time.Duration
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Port:               getEnv("PORT", "8080"),
		AllowedOrigins:     strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		ScoringConfig:      getEnv("SCORING_CONFIG", ""),
		SkipAuth:           getEnv("SKIP_AUTH", "false") == "true",
		Env:                getEnv("ENV", "development"),
		OIDCIssuer:         getEnv("OIDC_ISSUER", ""),
		VerifyJWTSignature: getEnv("VERIFY_JWT_SIGNATURE", "false") == "true",
	}

	cacheTTL, err := strconv.Atoi(getEnv("CACHE_TTL", "600"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	if cacheTTL < 0 {
		return nil, fmt.Errorf("invalid CACHE_TTL: must not be negative")
	}
	config.CacheTTL = time.Duration(cacheTTL) * time.Second

	refresh, err := strconv.Atoi(getEnv("REFRESH_INTERVAL", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	config.RefreshInterval = time.Duration(refresh) * time.Second

	// Parse WebSocket timeouts
	wsReadTimeout, err := strconv.Atoi(getEnv("WS_READ_TIMEOUT", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_READ_TIMEOUT: %w", err)
	}
	config.WSReadTimeout = time.Duration(wsReadTimeout) * time.Second

	wsWriteTimeout, err := strconv.Atoi(getEnv("WS_WRITE_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_WRITE_TIMEOUT: %w", err)
	}
	config.WSWriteTimeout = time.Duration(wsWriteTimeout) * time.Second

	config.PongWait = config.WSReadTimeout
	config.PingPeriod = (config.PongWait * 9) / 10 // Must be less than pongWait
	config.WriteWait = config.WSWriteTimeout
	config.MaxMessageSize = 512

	// Production always verifies token signatures
	if config.Env != "development" && config.Env != "" {
		config.VerifyJWTSignature = true
	}

	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return config, nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
