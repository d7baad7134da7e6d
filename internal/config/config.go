package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Tally"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"tally"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		JWTSecret string `envconfig:"AUTH_JWT_SECRET"`
		JWTIssuer string `envconfig:"AUTH_JWT_ISSUER"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	// Redis is optional; when Addr is empty deletion tombstones live in Postgres.
	Redis struct {
		Addr     string `envconfig:"REDIS_ADDR"`
		Password string `envconfig:"REDIS_PASSWORD"`
		DB       int    `envconfig:"REDIS_DB" default:"0"`
	}

	Billing struct {
		WebhookSecret      string        `envconfig:"BILLING_WEBHOOK_SECRET"`
		SignatureTolerance time.Duration `envconfig:"BILLING_SIGNATURE_TOLERANCE" default:"5m"`
		PriceBasic         string        `envconfig:"BILLING_PRICE_BASIC"`
		PricePro           string        `envconfig:"BILLING_PRICE_PRO"`
		APIKey             string        `envconfig:"BILLING_API_KEY"`
		APIURL             string        `envconfig:"BILLING_API_URL" default:"https://api.stripe.com"`
		APITimeout         time.Duration `envconfig:"BILLING_API_TIMEOUT" default:"10s"`
		APIRatePerSecond   float64       `envconfig:"BILLING_API_RPS" default:"20"`
	}

	TUI struct {
		UserID string `envconfig:"TALLY_USER_ID" default:"local"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Prices maps billing price ids to plan names.
func (c *Config) Prices() map[string]string {
	prices := make(map[string]string, 2)

	if p := strings.TrimSpace(c.Billing.PriceBasic); p != "" {
		prices[p] = "basic"
	}

	if p := strings.TrimSpace(c.Billing.PricePro); p != "" {
		prices[p] = "pro"
	}

	return prices
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
