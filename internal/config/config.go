package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

// DefaultJWTSecret is only meant for local development.
const DefaultJWTSecret = "ewaste-ai-secret-key-2024"

// Config holds the application configuration.
type Config struct {
	ServerPort     int           `envconfig:"PORT" default:"5000"`
	AppEnv         string        `envconfig:"APP_ENV" default:"development"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	JWTSecret      string        `envconfig:"JWT_SECRET" default:"ewaste-ai-secret-key-2024"`
	TokenTTL       time.Duration `envconfig:"TOKEN_TTL" default:"168h"`
	AllowedOrigins []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	MaxUploadBytes int64         `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`
	BcryptCost     int           `envconfig:"BCRYPT_COST" default:"10"`
	StatsCron      string        `envconfig:"STATS_CRON" default:"@every 5m"`

	Admin AdminConfig `envconfig:"ADMIN"`
}

// AdminConfig describes the account seeded at startup.
type AdminConfig struct {
	Name     string `envconfig:"NAME" default:"Admin User"`
	Email    string `envconfig:"EMAIL" default:"admin@ewaste.com"`
	Password string `envconfig:"PASSWORD" default:"admin123"`
}

// Load reads an optional .env file, then environment variables, applying defaults.
func Load() (*Config, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProd reports whether the service runs in production mode.
func (c *Config) IsProd() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// UsesDefaultSecret reports whether JWT_SECRET was left at its development value.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

func (c *Config) validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if _, err := cron.ParseStandard(c.StatsCron); err != nil {
		return fmt.Errorf("invalid STATS_CRON %q: %w", c.StatsCron, err)
	}
	return nil
}
