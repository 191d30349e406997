package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"TaxRight"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"taxright"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		// JWTSecret empty disables auth; useful for local development.
		JWTSecret string `envconfig:"AUTH_JWT_SECRET"`
	}

	AWS struct {
		Region string `envconfig:"AWS_REGION" default:"us-east-1"`
	}

	OCR struct {
		ModelID string `envconfig:"OCR_MODEL_ID" default:"anthropic.claude-3-5-sonnet-20241022-v2:0"`
	}

	KB struct {
		// ModelARN is the generation model used by RetrieveAndGenerate.
		ModelARN string `envconfig:"KB_MODEL_ARN" default:"arn:aws:bedrock:us-east-1::foundation-model/anthropic.claude-3-5-sonnet-20241022-v2:0"`
		// ModelID keys the pricing lookup for knowledge base calls.
		ModelID string `envconfig:"KB_MODEL_ID" default:"anthropic.claude-3-5-sonnet-20241022-v2:0"`
	}

	Pricing struct {
		// Fallback per-1K costs for models without a configured pricing row.
		DefaultInputPer1K  string `envconfig:"PRICING_DEFAULT_INPUT_PER_1K" default:"0.003"`
		DefaultOutputPer1K string `envconfig:"PRICING_DEFAULT_OUTPUT_PER_1K" default:"0.015"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
