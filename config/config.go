package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime settings, loaded from environment variables
// with the VIPKEY prefix. A .env file in the working directory is
// loaded first if present.
type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	DBDriver string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBDSN    string `envconfig:"DB_DSN" default:"./keys.db"`

	LogDir   string `envconfig:"LOG_DIR" default:"logs"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	JWTSecret string `envconfig:"JWT_SECRET" default:"change-me-in-production"`

	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1h"`

	// WebhookURL, if set, receives event notifications as Discord
	// compatible {"content": ...} POSTs.
	WebhookURL string `envconfig:"WEBHOOK_URL"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("vipkey", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
