package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains all backend configuration. Every variable is prefixed with
// ESF_ (e.g. ESF_ADDR, ESF_DATABASE_URL, ESF_SMTP_HOST). The secret key and
// store settings are read once at startup and injected into components; no
// package reads the environment on its own after that.
type Config struct {
	Addr     string `env:"ADDR" envDefault:":8080"`
	BaseURL  string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	LogLevel int    `env:"LOG_LEVEL" envDefault:"0"`

	// SecretKey signs session tokens and, through a distinct derivation,
	// keys the download capability cipher.
	SecretKey  string        `env:"SECRET_KEY"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"30m"`

	// BypassVerification lets signup succeed even when the verification
	// mail could not be sent. Development escape hatch, off by default.
	BypassVerification bool `env:"BYPASS_EMAIL_VERIFICATION" envDefault:"false"`

	MaxUploadBytes    int64    `env:"MAX_UPLOAD_BYTES" envDefault:"52428800"`
	AllowedExtensions []string `env:"ALLOWED_EXTENSIONS" envSeparator:"," envDefault:"pptx,docx,xlsx"`

	Database Database `envPrefix:"DATABASE_"`
	SMTP     SMTP     `envPrefix:"SMTP_"`
	Storage  Storage  `envPrefix:"S3_"`
}

// Database contains connection parameters for the identity and file stores.
type Database struct {
	URL string `env:"URL"`
}

// SMTP contains the notifier's relay parameters. When Enabled is false the
// notifier logs the verification link instead of sending it.
type SMTP struct {
	Enabled  bool          `env:"ENABLED" envDefault:"false"`
	Host     string        `env:"HOST"`
	Port     string        `env:"PORT" envDefault:"587"`
	User     string        `env:"USER"`
	Password string        `env:"PASSWORD"`
	From     string        `env:"FROM"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// Storage contains object storage parameters.
type Storage struct {
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET" envDefault:"ez-secure-files"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	cfg := Config{}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "ESF_"}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings without which the backend refuses to start.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("ESF_SECRET_KEY is required")
	}
	if c.Database.URL == "" {
		return errors.New("ESF_DATABASE_URL is required")
	}
	if c.SessionTTL <= 0 {
		return errors.New("ESF_SESSION_TTL must be positive")
	}
	return nil
}
