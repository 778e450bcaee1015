package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Reconcile ReconcileConfig
	Payroll   PayrollConfig
	Prana     PranaConfig
	Biometric BiometricConfig
	Geocoder  GeocoderConfig
	OTel      OTelConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int    `env:"APP_PORT" envDefault:"8080"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Timezone string `env:"APP_TIMEZONE" envDefault:"Asia/Kolkata"`
}

type DatabaseConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" envDefault:"workforce"`
	SSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`
	MaxConns int32  `env:"DB_MAX_CONNS" envDefault:"25"`
	MinConns int32  `env:"DB_MIN_CONNS" envDefault:"5"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string `env:"JWT_SECRET_KEY"`
	AccessExpiration string `env:"JWT_ACCESS_EXPIRATION_TIME" envDefault:"1h"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
}

// ReconcileConfig drives punch reconciliation and day status derivation.
type ReconcileConfig struct {
	ToleranceMinutes int     `env:"RECONCILE_TOLERANCE_MINUTES" envDefault:"20"`
	TieBreak         string  `env:"RECONCILE_TIE_BREAK" envDefault:"biometric"`
	ShiftStart       string  `env:"SHIFT_START" envDefault:"09:00"`
	LateGraceMinutes int     `env:"LATE_GRACE_MINUTES" envDefault:"15"`
	HalfDayHours     float64 `env:"HALF_DAY_HOURS" envDefault:"4.5"`
}

type PayrollConfig struct {
	StandardDailyHours  float64 `env:"STANDARD_DAILY_HOURS" envDefault:"8"`
	DefaultHolidayHours float64 `env:"DEFAULT_HOLIDAY_HOURS" envDefault:"8"`
	ComputeConcurrency  int     `env:"PAYROLL_COMPUTE_CONCURRENCY" envDefault:"4"`
}

type PranaConfig struct {
	LiveWindow time.Duration `env:"PRANA_LIVE_WINDOW" envDefault:"30s"`
}

type BiometricConfig struct {
	DayFirst      bool  `env:"BIOMETRIC_DAY_FIRST" envDefault:"true"`
	MaxUploadSize int64 `env:"BIOMETRIC_MAX_UPLOAD_BYTES" envDefault:"10485760"`
}

type GeocoderConfig struct {
	URL       string        `env:"GEOCODER_URL"`
	Timeout   time.Duration `env:"GEOCODER_TIMEOUT" envDefault:"2s"`
	UserAgent string        `env:"GEOCODER_USER_AGENT" envDefault:"workforce-backend"`
}

type OTelConfig struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	Endpoint    string `env:"OTEL_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"workforce-api"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
		slog.Debug("No .env file found, using process environment")
	}

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	if c.Reconcile.ToleranceMinutes < 0 {
		return fmt.Errorf("RECONCILE_TOLERANCE_MINUTES must not be negative")
	}
	switch strings.ToLower(c.Reconcile.TieBreak) {
	case "biometric", "app":
	default:
		return fmt.Errorf("RECONCILE_TIE_BREAK must be one of: biometric, app")
	}
	if _, err := time.Parse("15:04", c.Reconcile.ShiftStart); err != nil {
		return fmt.Errorf("SHIFT_START must be in HH:MM format")
	}
	if c.Payroll.StandardDailyHours <= 0 {
		return fmt.Errorf("STANDARD_DAILY_HOURS must be positive")
	}
	if c.Payroll.DefaultHolidayHours < 0 {
		return fmt.Errorf("DEFAULT_HOLIDAY_HOURS must not be negative")
	}
	if c.Prana.LiveWindow <= 0 {
		return fmt.Errorf("PRANA_LIVE_WINDOW must be positive")
	}
	if c.OTel.Enabled && c.OTel.Endpoint == "" {
		return fmt.Errorf("OTEL_ENDPOINT is required when OTEL_ENABLED is true")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location returns the company time zone used to resolve calendar days.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
