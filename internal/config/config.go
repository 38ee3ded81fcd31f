package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port" env:"PORT"`
		AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
		TTL      string `yaml:"ttl" env:"REDIS_TTL"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url" env:"POSTGRES_URL"`
	} `yaml:"postgres"`
	Dedup struct {
		// Empty keeps histories until they are reset.
		TTL string `yaml:"ttl" env:"DEDUP_TTL"`
	} `yaml:"dedup"`
	Syllabus struct {
		TTL string `yaml:"ttl" env:"SYLLABUS_TTL"`
	} `yaml:"syllabus"`
	Generator struct {
		URL         string  `yaml:"url" env:"GENERATOR_URL"`
		APIKey      string  `yaml:"api_key" env:"GENERATOR_API_KEY"`
		Model       string  `yaml:"model" env:"GENERATOR_MODEL"`
		Timeout     string  `yaml:"timeout" env:"GENERATOR_TIMEOUT"`
		Temperature float64 `yaml:"temperature" env:"GENERATOR_TEMPERATURE"`
	} `yaml:"generator"`
	Rooms struct {
		IdleTTL      string `yaml:"idle_ttl" env:"ROOMS_IDLE_TTL"`
		ReapInterval string `yaml:"reap_interval" env:"ROOMS_REAP_INTERVAL"`
	} `yaml:"rooms"`
	Log struct {
		Level string `yaml:"level" env:"LOG_LEVEL"`
	} `yaml:"log"`
}

// Load reads YAML config from path, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
