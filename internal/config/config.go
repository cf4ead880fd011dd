// Package config provides configuration management for the Telescope MCP server.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Config holds all configuration for the MCP server
type Config struct {
	// Telescope Database Configuration
	DBHost     string `json:"db_host"`
	DBPort     int    `json:"db_port"`
	DBName     string `json:"db_name"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"db_password,omitempty"` // Not stored in files, from env only
	Table      string `json:"table"`                 // Telescope entries table name

	// Connection Pool Configuration
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnectTimeout  time.Duration `json:"connect_timeout"`
	QueryTimeout    time.Duration `json:"query_timeout"`

	// Rate Limiting
	RateLimit       int  `json:"rate_limit"` // queries per second
	RateLimitBurst  int  `json:"rate_limit_burst"`
	EnableRateLimit bool `json:"enable_rate_limit"`

	// Observability
	EnableTracing   bool   `json:"enable_tracing"`
	MetricsEndpoint bool   `json:"metrics_endpoint"`
	HealthPort      int    `json:"health_port"` // 0 disables the health HTTP server
	HealthBindAddr  string `json:"health_bind_addr"`

	// Shutdown
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`

	// Logging
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"` // json or console
}

// identifierPattern restricts the table name to a plain SQL identifier.
// The table name is the only configuration value interpolated into SQL text.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Load configuration from environment variables and config file
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults suit local development only; production must set the env vars.
		DBHost:          "127.0.0.1",
		DBPort:          3306,
		DBName:          "laravel",
		DBUser:          "root",
		DBPassword:      "",
		Table:           "telescope_entries",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		ConnectTimeout:  10 * time.Second,
		QueryTimeout:    30 * time.Second,
		RateLimit:       50,
		RateLimitBurst:  10,
		EnableRateLimit: true,
		EnableTracing:   false,
		MetricsEndpoint: false,
		HealthPort:      0,
		HealthBindAddr:  "127.0.0.1",
		ShutdownTimeout: 10 * time.Second,
		LogLevel:        "info",
		LogFormat:       "json",
	}

	// Try to load from config file if specified
	if configFile := os.Getenv("CONFIG_FILE"); configFile != "" {
		if err := loadFromFile(cfg, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Override with environment variables (these take precedence)
	loadFromEnv(cfg)

	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	cleanPath := filepath.Clean(path)

	// Prevent path traversal by checking for ".." components
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("invalid file path: path traversal detected")
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 -- path is validated above
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return json.Unmarshal(data, cfg)
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TELESCOPE_DB_HOST"); v != "" {
		cfg.DBHost = v
	}
	if v := os.Getenv("TELESCOPE_DB_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.DBPort = port
		}
	}
	if v := os.Getenv("TELESCOPE_DB_NAME"); v != "" {
		cfg.DBName = v
	}
	if v := os.Getenv("TELESCOPE_DB_USER"); v != "" {
		cfg.DBUser = v
	}
	if v := os.Getenv("TELESCOPE_DB_PASSWORD"); v != "" {
		cfg.DBPassword = v
	}
	if v := os.Getenv("TELESCOPE_DB_TABLE"); v != "" {
		cfg.Table = v
	}
	if v := os.Getenv("TELESCOPE_QUERY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.QueryTimeout = d
		}
	}
	if v := os.Getenv("TELESCOPE_CONNECT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ConnectTimeout = d
		}
	}
	if v := os.Getenv("TELESCOPE_MAX_OPEN_CONNS"); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			cfg.MaxOpenConns = n
		}
	}
	if v := os.Getenv("TELESCOPE_RATE_LIMIT"); v != "" {
		var limit int
		if _, err := fmt.Sscanf(v, "%d", &limit); err == nil {
			cfg.RateLimit = limit
		}
	}
	if v := os.Getenv("TELESCOPE_RATE_LIMIT_BURST"); v != "" {
		var burst int
		if _, err := fmt.Sscanf(v, "%d", &burst); err == nil {
			cfg.RateLimitBurst = burst
		}
	}
	if v := os.Getenv("TELESCOPE_ENABLE_RATE_LIMIT"); v != "" {
		cfg.EnableRateLimit = v == "true" || v == "1"
	}
	if v := os.Getenv("TELESCOPE_ENABLE_TRACING"); v != "" {
		cfg.EnableTracing = v == "true" || v == "1"
	}
	if v := os.Getenv("TELESCOPE_METRICS_ENDPOINT"); v != "" {
		cfg.MetricsEndpoint = v == "true" || v == "1"
	}
	if v := os.Getenv("TELESCOPE_HEALTH_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.HealthPort = port
		}
	}
	if v := os.Getenv("TELESCOPE_HEALTH_BIND_ADDR"); v != "" {
		cfg.HealthBindAddr = v
	}
	if v := os.Getenv("TELESCOPE_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ShutdownTimeout = d
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DBHost == "" {
		return errors.New("TELESCOPE_DB_HOST is required")
	}
	if c.DBPort <= 0 || c.DBPort > 65535 {
		return fmt.Errorf("invalid database port: %d", c.DBPort)
	}
	if c.DBName == "" {
		return errors.New("TELESCOPE_DB_NAME is required")
	}
	if c.DBUser == "" {
		return errors.New("TELESCOPE_DB_USER is required")
	}
	if !identifierPattern.MatchString(c.Table) {
		return fmt.Errorf("invalid table name: %q", c.Table)
	}
	if c.QueryTimeout <= 0 {
		return errors.New("query timeout must be positive")
	}
	if c.RateLimit <= 0 && c.EnableRateLimit {
		return errors.New("rate_limit must be positive when rate limiting is enabled")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}

// DSN returns the go-sql-driver data source name for the Telescope database.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&timeout=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.ConnectTimeout)
}

// Descriptor returns a human-readable connection descriptor with no credentials.
func (c *Config) Descriptor() string {
	return fmt.Sprintf("mysql://%s@%s:%d/%s (table %s)", c.DBUser, c.DBHost, c.DBPort, c.DBName, c.Table)
}

// Redact returns a copy of the config with sensitive data removed
func (c *Config) Redact() *Config {
	redacted := *c
	if redacted.DBPassword != "" {
		redacted.DBPassword = "***REDACTED***"
	}
	return &redacted
}
