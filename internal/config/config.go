// Package config loads call-logd's runtime configuration from a .env
// file, environment variables, and CLI overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`

	ConfdURL     string        `env:"CONFD_URL" envDefault:"http://localhost:9486"`
	ConfdToken   string        `env:"CONFD_TOKEN"`
	ConfdTimeout time.Duration `env:"CONFD_TIMEOUT" envDefault:"5s"`
	ConfdRateRPS float64       `env:"CONFD_RATE_RPS" envDefault:"20"`

	MQTTBrokerURL string `env:"MQTT_BROKER_URL"`
	MQTTClientID  string `env:"MQTT_CLIENT_ID" envDefault:"call-logd"`
	MQTTUsername  string `env:"MQTT_USERNAME"`
	MQTTPassword  string `env:"MQTT_PASSWORD"`
	TriggerTopic  string `env:"TRIGGER_TOPIC" envDefault:"collectd/cdr/linkedid_end"`

	// File-based trigger source, used alone or alongside the MQTT broker:
	// a directory the switch drops one trigger file into per finished call.
	WatchDir string `env:"WATCH_DIR"`

	RecordingsDir string `env:"RECORDINGS_DIR" envDefault:"/var/lib/wazo/sounds/recordings"`
	S3Bucket      string `env:"RECORDINGS_S3_BUCKET"`
	S3Region      string `env:"RECORDINGS_S3_REGION" envDefault:"us-east-1"`

	ServiceTenantUUID string `env:"SERVICE_TENANT_UUID,required"`

	HTTPAddr       string        `env:"HTTP_ADDR" envDefault:":9298"`
	ReadTimeout    time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout    time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	RateLimitRPS   float64       `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int           `env:"RATE_LIMIT_BURST" envDefault:"40"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Validate checks that at least one trigger source (MQTT or a watch
// directory) is configured; generation can't start without one.
func (c *Config) Validate() error {
	if c.MQTTBrokerURL == "" && c.WatchDir == "" {
		return fmt.Errorf("at least one of MQTT_BROKER_URL or WATCH_DIR must be set")
	}
	if c.ServiceTenantUUID == "" {
		return fmt.Errorf("SERVICE_TENANT_UUID must be set")
	}
	return nil
}

// Overrides holds CLI flag values that take priority over env vars.
type Overrides struct {
	EnvFile       string
	HTTPAddr      string
	LogLevel      string
	DatabaseURL   string
	MQTTBrokerURL string
	WatchDir      string
	ConfdURL      string
}

// Load reads configuration from a .env file, environment variables, and
// CLI overrides. Priority: CLI flags > environment variables > .env file
// > struct defaults.
func Load(overrides Overrides) (*Config, error) {
	envFile := overrides.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if overrides.HTTPAddr != "" {
		cfg.HTTPAddr = overrides.HTTPAddr
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}
	if overrides.DatabaseURL != "" {
		cfg.DatabaseURL = overrides.DatabaseURL
	}
	if overrides.MQTTBrokerURL != "" {
		cfg.MQTTBrokerURL = overrides.MQTTBrokerURL
	}
	if overrides.WatchDir != "" {
		cfg.WatchDir = overrides.WatchDir
	}
	if overrides.ConfdURL != "" {
		cfg.ConfdURL = overrides.ConfdURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
