package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// ErrMissingSigningSecret is returned when APP_SECRET is not configured.
var ErrMissingSigningSecret = errors.New("APP_SECRET is required")

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `env:"APP_NAME" envDefault:"storefront-api"`
	Env                   string `env:"APP_ENV" envDefault:"development"`
	Host                  string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port                  string `env:"APP_PORT" envDefault:"4444"`
	Version               string `env:"APP_VERSION" envDefault:"dev"`
	FrontendURL           string `env:"FRONTEND_URL" envDefault:"http://localhost:7777"`
	RequestTimeoutSeconds int    `env:"HTTP_REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string `env:"POSTGRES_DSN"`
	MaxConns       int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns       int32  `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	RunMigrations  bool   `env:"POSTGRES_RUN_MIGRATIONS" envDefault:"true"`
	ConnMaxIdleSec int32  `env:"POSTGRES_CONN_MAX_IDLE_SECONDS" envDefault:"30"`
	ConnMaxLifeSec int32  `env:"POSTGRES_CONN_MAX_LIFE_SECONDS" envDefault:"300"`
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// AuthConfig defines authentication parameters. SigningSecret and HashCost
// are process-wide and immutable once loaded.
type AuthConfig struct {
	SigningSecret        string `env:"APP_SECRET"`
	HashCost             int    `env:"AUTH_HASH_COST" envDefault:"10"`
	ResetWindowSeconds   int    `env:"AUTH_RESET_WINDOW_SECONDS" envDefault:"3600"`
	SessionMaxAgeSeconds int    `env:"AUTH_SESSION_MAX_AGE_SECONDS" envDefault:"31536000"`
	CookieName           string `env:"AUTH_COOKIE_NAME" envDefault:"token"`
	CookieSecure         bool   `env:"AUTH_COOKIE_SECURE" envDefault:"false"`
	HardenedSignin       bool   `env:"HARDENED_SIGNIN" envDefault:"false"`
	SweepIntervalSeconds int    `env:"AUTH_RESET_SWEEP_INTERVAL_SECONDS" envDefault:"600"`
}

// NotificationConfig controls the hand-off of reset requests to an external mailer.
type NotificationConfig struct {
	ResetQueue string `env:"NOTIFY_RESET_QUEUE" envDefault:"password_reset_requests"`
	ResetURL   string `env:"NOTIFY_RESET_URL" envDefault:"http://localhost:7777/reset"`
}

// Load reads configuration from environment variables, applying defaults where possible.
// A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadPostgres reads only the database settings. The migrate command uses it
// so schema changes do not require the signing secret.
func LoadPostgres() (PostgresConfig, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[PostgresConfig]()
	if err != nil {
		return PostgresConfig{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DSN == "" {
		return PostgresConfig{}, errors.New("POSTGRES_DSN is required")
	}
	return cfg, nil
}

// Validate checks invariants that env tags cannot express.
func (c *Config) Validate() error {
	if c.Auth.SigningSecret == "" {
		return ErrMissingSigningSecret
	}
	if c.Auth.HashCost < bcrypt.MinCost || c.Auth.HashCost > bcrypt.MaxCost {
		return fmt.Errorf("AUTH_HASH_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.Auth.HashCost)
	}
	if c.Auth.ResetWindowSeconds <= 0 {
		return fmt.Errorf("AUTH_RESET_WINDOW_SECONDS must be positive, got %d", c.Auth.ResetWindowSeconds)
	}
	if c.Auth.SessionMaxAgeSeconds <= 0 {
		return fmt.Errorf("AUTH_SESSION_MAX_AGE_SECONDS must be positive, got %d", c.Auth.SessionMaxAgeSeconds)
	}
	if c.Auth.CookieName == "" {
		return errors.New("AUTH_COOKIE_NAME must not be empty")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ResetWindow returns how long a password reset token stays valid.
func (a AuthConfig) ResetWindow() time.Duration {
	return time.Duration(a.ResetWindowSeconds) * time.Second
}

// SessionMaxAge returns the lifetime of the session cookie and token.
func (a AuthConfig) SessionMaxAge() time.Duration {
	return time.Duration(a.SessionMaxAgeSeconds) * time.Second
}

// SweepInterval returns how often lapsed reset tokens are cleared.
func (a AuthConfig) SweepInterval() time.Duration {
	return time.Duration(a.SweepIntervalSeconds) * time.Second
}
