package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"8000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database (optional, evaluation run history)
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Provider
	ProviderType       string        `envconfig:"PROVIDER_TYPE" default:"insightface"`
	InsightFaceURL     string        `envconfig:"INSIGHTFACE_URL" default:"http://localhost:5005"`
	InsightFaceTimeout time.Duration `envconfig:"INSIGHTFACE_TIMEOUT" default:"30s"`
	InsightFaceRetries int           `envconfig:"INSIGHTFACE_RETRIES" default:"2"`
	ArcFaceModelPath   string        `envconfig:"ARCFACE_MODEL_PATH" default:"models/buffalo_l/w600k_r50.onnx"`
	ONNXRuntimeLib     string        `envconfig:"ONNXRUNTIME_LIB"`

	// Verification
	SamePersonThreshold float64 `envconfig:"SAME_PERSON_THRESHOLD" default:"65"`

	// Rate limiting (0 disables)
	RateLimitMax int `envconfig:"RATE_LIMIT_MAX" default:"0"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.SamePersonThreshold < 0 || cfg.SamePersonThreshold > 100 {
		return nil, fmt.Errorf("load config: SAME_PERSON_THRESHOLD must be within [0,100], got %v", cfg.SamePersonThreshold)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasDatabase reports whether evaluation runs should be persisted.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}
