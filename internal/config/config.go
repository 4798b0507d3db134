package config

import (
	"fmt"
)

type Config struct {
	Server ServerConfig `json:"server"`

	// Database Configuration
	Database DatabaseConfig `json:"database"`

	// Mongo Configuration (media payloads)
	Mongo MongoConfig `json:"mongo"`

	// Check-in Configuration
	Checkin CheckinConfig `json:"checkin"`

	// Delivery Configuration
	Delivery DeliveryConfig `json:"delivery"`

	// Email Configuration (optional)
	Email EmailConfig `json:"email"`

	// Admin API Configuration
	Admin AdminConfig `json:"admin"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port         string `json:"port"`
	Host         string `json:"host"`
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
	Environment  string `json:"environment"` // development, staging, production
	BaseURL      string `json:"base_url"`    // public URL used in confirmation links
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"database_name"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

// MongoConfig contains GridFS media storage configuration
type MongoConfig struct {
	URI          string `json:"uri"`
	DatabaseName string `json:"database_name"`
	Enabled      bool   `json:"enabled"`
}

// CheckinConfig contains defaults for the liveness cycle. Per-rule values
// on checkin-mode delivery rules override these when more restrictive.
type CheckinConfig struct {
	DefaultIntervalDays  int `json:"default_interval_days"`
	DefaultAttemptsLimit int `json:"default_attempts_limit"`
}

// DeliveryConfig contains the sweeper and dispatcher configuration
type DeliveryConfig struct {
	Workers           int  `json:"workers"`             // Number of worker goroutines
	ChannelBufferSize int  `json:"channel_buffer_size"` // Channel buffer size
	SweepInterval     int  `json:"sweep_interval"`      // Minutes between sweeps
	Enabled           bool `json:"enabled"`
}

// EmailConfig contains email service configuration (optional)
type EmailConfig struct {
	SMTPHost  string `json:"smtp_host"`
	SMTPPort  int    `json:"smtp_port"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FromEmail string `json:"from_email"`
	FromName  string `json:"from_name"`
	Enabled   bool   `json:"enabled"`
}

// AdminConfig contains the admin API rate limit window
type AdminConfig struct {
	RateLimit      int `json:"rate_limit"`       // requests per window
	RateWindowSecs int `json:"rate_window_secs"` // fixed window length
}

func (cfg *Config) DSN() string {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}
