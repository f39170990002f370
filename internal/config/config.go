package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/model"
)

// Share link modes.
const (
	ShareModeStored = "stored"
	ShareModeToken  = "token"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Log      LogConfig
	Yahoo    YahooConfig
	Window   model.HistoryWindow
	Refresh  RefreshConfig
	Share    ShareConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig controls the zerolog output
type LogConfig struct {
	Level  string
	Pretty bool
}

// YahooConfig holds the finance API endpoints and the per-request timeout
type YahooConfig struct {
	BaseURL   string
	SearchURL string
	Timeout   time.Duration
}

// RefreshConfig controls scheduled quote refreshes and fetch fan-out.
// An empty Schedule disables the scheduler.
type RefreshConfig struct {
	Schedule    string
	Concurrency int
}

// ShareConfig selects the share-link codec.
// Key is a base64 fernet key and is required in token mode.
type ShareConfig struct {
	Mode string
	Key  string
	TTL  time.Duration
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/portfolio_allocation.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		},
		Yahoo: YahooConfig{
			BaseURL:   strings.TrimRight(getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"), "/"),
			SearchURL: strings.TrimRight(getEnv("YAHOO_SEARCH_URL", "https://query2.finance.yahoo.com"), "/"),
		},
		Window: model.HistoryWindow{
			Period:   model.Period(getEnv("DEFAULT_PERIOD", string(model.PeriodYear))),
			Interval: model.Interval(getEnv("DEFAULT_INTERVAL", string(model.IntervalWeek))),
		},
		Refresh: RefreshConfig{
			Schedule: getEnv("REFRESH_SCHEDULE", ""),
		},
		Share: ShareConfig{
			Mode: strings.ToLower(getEnv("SHARE_LINK_MODE", ShareModeStored)),
			Key:  getEnv("SHARE_LINK_KEY", ""),
		},
	}

	var err error
	if config.Log.Pretty, err = strconv.ParseBool(getEnv("LOG_PRETTY", "false")); err != nil {
		return nil, fmt.Errorf("invalid LOG_PRETTY: %w", err)
	}
	if config.Yahoo.Timeout, err = time.ParseDuration(getEnv("YAHOO_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("invalid YAHOO_TIMEOUT: %w", err)
	}
	if config.Share.TTL, err = time.ParseDuration(getEnv("SHARE_LINK_TTL", "0s")); err != nil {
		return nil, fmt.Errorf("invalid SHARE_LINK_TTL: %w", err)
	}
	if config.Refresh.Concurrency, err = strconv.Atoi(getEnv("REFRESH_CONCURRENCY", "4")); err != nil || config.Refresh.Concurrency < 1 {
		return nil, fmt.Errorf("invalid REFRESH_CONCURRENCY: must be a positive integer")
	}

	if err := config.Window.Validate(); err != nil {
		return nil, fmt.Errorf("invalid default history window: %w", err)
	}

	switch config.Share.Mode {
	case ShareModeStored:
	case ShareModeToken:
		if config.Share.Key == "" {
			return nil, fmt.Errorf("SHARE_LINK_KEY is required when SHARE_LINK_MODE=%s", ShareModeToken)
		}
	default:
		return nil, fmt.Errorf("invalid SHARE_LINK_MODE %q", config.Share.Mode)
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
