// Package config provides configuration management with environment variable support
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Analytics AnalyticsConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// AnalyticsConfig holds sales aggregation configuration
type AnalyticsConfig struct {
	// DefaultLimit is used when a request does not carry a limit.
	DefaultLimit int
	// StatsTopN is the length of the top product list embedded in admin stats.
	StatsTopN int
	// Period is the length of one growth period.
	Period time.Duration
	// RefreshInterval is how often the snapshot is re-fetched from the database.
	RefreshInterval time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables with sensible defaults.
// A .env file in the working directory is read first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "isaraya"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			MaxConns: getIntEnv("DB_MAX_CONNS", 25),
			MaxIdle:  getIntEnv("DB_MAX_IDLE", 5),
		},
		Analytics: AnalyticsConfig{
			DefaultLimit:    getIntEnv("ANALYTICS_DEFAULT_LIMIT", 5),
			StatsTopN:       getIntEnv("ANALYTICS_STATS_TOP_N", 5),
			Period:          getDurationEnv("ANALYTICS_PERIOD", 30*24*time.Hour),
			RefreshInterval: getDurationEnv("ANALYTICS_REFRESH_INTERVAL", 5*time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects values the analytics engine cannot work with
func (c *Config) Validate() error {
	if c.Analytics.DefaultLimit <= 0 {
		return fmt.Errorf("ANALYTICS_DEFAULT_LIMIT must be positive, got %d", c.Analytics.DefaultLimit)
	}
	if c.Analytics.StatsTopN <= 0 {
		return fmt.Errorf("ANALYTICS_STATS_TOP_N must be positive, got %d", c.Analytics.StatsTopN)
	}
	if c.Analytics.Period <= 0 {
		return fmt.Errorf("ANALYTICS_PERIOD must be positive, got %s", c.Analytics.Period)
	}
	if c.Analytics.RefreshInterval <= 0 {
		return fmt.Errorf("ANALYTICS_REFRESH_INTERVAL must be positive, got %s", c.Analytics.RefreshInterval)
	}
	return nil
}

// ConnectionString returns the PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
