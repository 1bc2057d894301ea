package infra

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5432"`
	PGUser      string `env:"PGUSER" envDefault:"playwatch"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"playwatch"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"playwatch"`

	// JWT
	JWTSecret       string `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTParentExpiry string `env:"JWT_PARENT_EXPIRY" envDefault:"24h"`
	JWTAdminExpiry  string `env:"JWT_ADMIN_EXPIRY" envDefault:"8h"`

	// Server
	APIPort int `env:"API_PORT" envDefault:"3000"`

	// Steam
	SteamAPIKey  string `env:"STEAM_API_KEY"`
	SteamBaseURL string `env:"STEAM_API_BASE_URL" envDefault:"https://api.steampowered.com"`

	// Sweep
	SweepInterval string `env:"SWEEP_INTERVAL" envDefault:"6h"`

	// SMTP (email notifications)
	SMTPHost     string `env:"EMAIL_HOST"`
	SMTPPort     int    `env:"EMAIL_PORT" envDefault:"587"`
	SMTPUser     string `env:"EMAIL_USER"`
	SMTPPassword string `env:"EMAIL_PASS"`
	MailFrom     string `env:"EMAIL_FROM"`

	// Kafka (optional limit-exceeded event stream)
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled bool   `env:"KAFKA_ENABLED" envDefault:"false"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Admin bootstrap
	AdminBootstrapPassword string `env:"ADMIN_BOOTSTRAP_PASSWORD" envDefault:"password"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks for insecure configuration that must not run in production.
// Set ALLOW_INSECURE_DEFAULTS=true to bypass (local dev only).
func (c *Config) Validate() error {
	if c.AllowInsecureDefaults {
		return nil
	}
	if c.JWTSecret == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required", len(c.JWTSecret))
	}
	if c.AdminBootstrapPassword == "password" {
		return fmt.Errorf("ADMIN_BOOTSTRAP_PASSWORD is set to the insecure default")
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}
