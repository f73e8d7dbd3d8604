package main

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, fully env-driven. Secrets are
// required; everything else falls back to development defaults.
type Config struct {
	Port        string `env:"PORT" envDefault:"8000"`
	Environment string `env:"APP_ENV" envDefault:"development"`

	AccessSecret  string        `env:"SECRET_KEY,required"`
	RefreshSecret string        `env:"REFRESH_SECRET_KEY,required"`
	AccessExpiry  time.Duration `env:"JWT_EXPIRES_IN" envDefault:"15m"`
	RefreshExpiry time.Duration `env:"REFRESH_JWT_EXPIRES_IN" envDefault:"168h"`

	BcryptCost int    `env:"BCRYPT_COST" envDefault:"12"`
	ClientURL  string `env:"CLIENT_URL" envDefault:"http://localhost:3000"`

	ResendAPIKey string `env:"RESEND_API_KEY"`
	MailFrom     string `env:"MAIL_FROM"`

	DatabaseDSN string `env:"DATABASE_DSN" envDefault:"file:unilink.db?cache=shared&_pragma=foreign_keys(1)"`
}

// LoadConfig parses the environment into a Config
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) GetAccessSigningKey() string { return c.AccessSecret }

func (c *Config) GetRefreshSigningKey() string { return c.RefreshSecret }

func (c *Config) GetAccessTokenExpiration() time.Duration { return c.AccessExpiry }

func (c *Config) GetRefreshTokenExpiration() time.Duration { return c.RefreshExpiry }

func (c *Config) GetBcryptCost() int { return c.BcryptCost }

func (c *Config) GetClientURL() string { return c.ClientURL }

func (c *Config) IsProduction() bool { return c.Environment == "production" }
