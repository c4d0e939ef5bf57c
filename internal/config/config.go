package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every environment driven setting of the stylist server and the
// reference predictor.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"development"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`

	PredictURL          string        `envconfig:"PREDICT_URL" default:"http://127.0.0.1:5000/api/predict"`
	PredictTimeout      time.Duration `envconfig:"PREDICT_TIMEOUT" default:"2m"`
	PlaceholderImageURL string        `envconfig:"PLACEHOLDER_IMAGE_URL" default:"https://placehold.co/200x300/CCCCCC/FFFFFF?text=Image+Error"`
	MaxUploadBytes      int64         `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`

	// Empty RedisAddr keeps previews in process memory.
	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	PreviewTTL     time.Duration `envconfig:"PREVIEW_TTL" default:"30m"`
	SessionIdleTTL time.Duration `envconfig:"SESSION_IDLE_TTL" default:"1h"`
	SweepInterval  time.Duration `envconfig:"SWEEP_INTERVAL" default:"5m"`

	// Empty DatabaseDSN disables the submission log.
	DatabaseDSN string `envconfig:"DATABASE_DSN"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	PredictorAddr   string        `envconfig:"PREDICTOR_ADDR" default:":5000"`
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.PredictURL == "" {
		return errors.New("PREDICT_URL must not be empty")
	}
	if c.PredictTimeout <= 0 {
		return errors.New("PREDICT_TIMEOUT must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	if c.SessionIdleTTL <= 0 || c.SweepInterval <= 0 {
		return errors.New("SESSION_IDLE_TTL and SWEEP_INTERVAL must be positive")
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
