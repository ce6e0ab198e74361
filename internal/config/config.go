package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port        string `env:"PORT" envDefault:"4000"`
	APIPrefix   string `env:"API_PREFIX" envDefault:"/api"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// JWTSecret has no default: the service refuses to start without one
	JWTSecret     string        `env:"JWT_SECRET"`
	JWTExpiration time.Duration `env:"JWT_EXPIRATION" envDefault:"12h"`

	SeedDemoData bool `env:"SEED_DEMO_DATA" envDefault:"true"`

	// ReminderSchedule is a cron expression for the overdue reminder job; empty disables it
	ReminderSchedule string `env:"REMINDER_SCHEDULE" envDefault:"@every 1h"`
	SMTPHost         string `env:"SMTP_HOST"`
	SMTPPort         string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername     string `env:"SMTP_USERNAME"`
	SMTPPassword     string `env:"SMTP_PASSWORD"`
	SenderEmail      string `env:"SENDER_EMAIL" envDefault:"todo-service@localhost"`
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.JWTExpiration <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRATION must be positive, got %s", cfg.JWTExpiration)
	}
	if cfg.Port == "" {
		return nil, fmt.Errorf("PORT is required")
	}
	if cfg.APIPrefix != "" && !strings.HasPrefix(cfg.APIPrefix, "/") {
		return nil, fmt.Errorf("API_PREFIX must start with '/', got %q", cfg.APIPrefix)
	}
	cfg.APIPrefix = strings.TrimSuffix(cfg.APIPrefix, "/")

	return cfg, nil
}

// LoadDotEnv loads variables from a .env file without overriding the environment.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// SMTPEnabled reports whether reminder e-mails can be delivered
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}
