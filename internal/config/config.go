// Package config provides configuration management for the options-edge engine.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Scanner   ScannerConfig   `mapstructure:"scanner" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Health    HealthConfig    `mapstructure:"health"`
	Secrets   SecretsConfig   `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
	BootstrapSchema    bool   `mapstructure:"bootstrap_schema"`
}

// ScannerConfig controls detector selection and scan inputs
type ScannerConfig struct {
	RiskFreeRate           float64            `mapstructure:"risk_free_rate" validate:"gte=0,lte=1"`
	MinScore               float64            `mapstructure:"min_score" validate:"gte=0,lte=100"`
	Generations            []string           `mapstructure:"generations" validate:"required,min=1,dive,generation"`
	DetectorMinScores      map[string]float64 `mapstructure:"detector_min_scores" validate:"dive,gte=0,lte=100"`
	VolatilityHistoryLimit int                `mapstructure:"volatility_history_limit" validate:"required,gt=0"`
	AverageVolumeDays      int                `mapstructure:"average_volume_days" validate:"required,gt=0"`
	CacheTTLSeconds        int                `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	Persist                bool               `mapstructure:"persist"`
}

// SchedulerConfig controls the periodic volatility refresh and universe scan
type SchedulerConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	ScanCron          string `mapstructure:"scan_cron" validate:"required,cronspec"`
	VolatilityCron    string `mapstructure:"volatility_cron" validate:"omitempty,cronspec"`
	Timezone          string `mapstructure:"timezone" validate:"required,timezone"`
	MarketOpen        string `mapstructure:"market_open" validate:"required,clock"`
	MarketClose       string `mapstructure:"market_close" validate:"required,clock"`
	MarketHoursOnly   bool   `mapstructure:"market_hours_only"`
	JobTimeoutSeconds int    `mapstructure:"job_timeout_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents metrics exposure configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// HealthConfig represents the health server configuration
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
}

// SecretsConfig locates the optional AWS Secrets Manager overlay
type SecretsConfig struct {
	AWSRegion  string `mapstructure:"aws_region"`
	SecretName string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return c.Database.DSN()
}

// DSN returns a PostgreSQL connection string for the pool
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Name,
		d.SSLMode,
		d.MaxConnections,
	)
}

// CacheTTL returns the volatility cache lifetime
func (s ScannerConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// JobTimeout returns the per-job deadline
func (s SchedulerConfig) JobTimeout() time.Duration {
	return time.Duration(s.JobTimeoutSeconds) * time.Second
}

// Location resolves the configured timezone
func (s SchedulerConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}
