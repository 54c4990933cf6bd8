package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `envconfig:"SERVER"`
	Database  DatabaseConfig  `envconfig:"DB"`
	JWT       JWTConfig       `envconfig:"JWT"`
	App       AppConfig       `envconfig:"APP"`
	Log       LogConfig       `envconfig:"LOG"`
	Scheduler SchedulerConfig `envconfig:"SCHEDULER"`
	Bootstrap BootstrapConfig `envconfig:"BOOTSTRAP_ADMIN"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host         string        `default:"localhost"`
	Port         string        `default:"8080"`
	TimeoutRead  time.Duration `split_words:"true" default:"15s"`
	TimeoutWrite time.Duration `split_words:"true" default:"15s"`
	TimeoutIdle  time.Duration `split_words:"true" default:"60s"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Host            string        `default:"localhost"`
	Port            string        `default:"5432"`
	User            string        `default:"qaforum"`
	Password        string        `default:""`
	Name            string        `default:"qaforum_db"`
	SSLMode         string        `split_words:"true" default:"prefer"`
	MaxOpenConns    int           `split_words:"true" default:"25"`
	MaxIdleConns    int           `split_words:"true" default:"5"`
	ConnMaxLifetime time.Duration `split_words:"true" default:"5m"`
	MigrationsPath  string        `split_words:"true" default:"migrations"`
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	// Secret may hold a PEM encoded EC private key; anything else yields an ephemeral key
	Secret     string        `default:""`
	Expiration time.Duration `default:"24h"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	Env     string `default:"development"`
	Name    string `default:"QAForum"`
	Version string `default:"1.0.0"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `default:"info"`
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	PendingDigestCron   string `split_words:"true" default:"0 8 * * *"` // daily 8 AM
	EnablePendingDigest bool   `split_words:"true" default:"true"`
}

// BootstrapConfig holds the account created when the user table is empty
type BootstrapConfig struct {
	Username string `default:""`
	Password string `default:""`
}

// Load loads configuration from .env files and environment variables
func Load() (*Config, error) {
	// godotenv doesn't override already-set variables, so order matters
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Database.Password == "" && c.App.Env == "production" {
		return fmt.Errorf("DB_PASSWORD is required in production")
	}
	if c.Scheduler.EnablePendingDigest {
		if _, err := cron.ParseStandard(c.Scheduler.PendingDigestCron); err != nil {
			return fmt.Errorf("invalid SCHEDULER_PENDING_DIGEST_CRON %q: %w", c.Scheduler.PendingDigestCron, err)
		}
	}
	if (c.Bootstrap.Username == "") != (c.Bootstrap.Password == "") {
		return fmt.Errorf("BOOTSTRAP_ADMIN_USERNAME and BOOTSTRAP_ADMIN_PASSWORD must be set together")
	}
	return nil
}

// DSN returns the lib/pq connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Name,
		c.SSLMode,
	)
}
