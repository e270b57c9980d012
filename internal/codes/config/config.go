package config

import (
	"errors"

	"github.com/caarlos0/env/v6"
)

// Config holds the verification code defaults and limits.
type Config struct {
	DefaultPrefix     string `env:"CODES_DEFAULT_PREFIX" envDefault:"PQ"`
	DefaultCount      int    `env:"CODES_DEFAULT_COUNT" envDefault:"10"`
	MaxCount          int    `env:"CODES_MAX_COUNT" envDefault:"100"`
	DefaultValue      int    `env:"CODES_DEFAULT_VALUE" envDefault:"50"`
	DefaultExpiryDays int    `env:"CODES_DEFAULT_EXPIRY_DAYS" envDefault:"30"`
	MaxExpiryDays     int    `env:"CODES_MAX_EXPIRY_DAYS" envDefault:"365"`
	CollisionRetries  int    `env:"CODES_COLLISION_RETRIES" envDefault:"5"`
	PageSize          int    `env:"CODES_PAGE_SIZE" envDefault:"10"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load codes configuration from environment: " + err.Error())
	}
	if cfg.MaxCount <= 0 || cfg.DefaultCount <= 0 || cfg.DefaultCount > cfg.MaxCount {
		return nil, errors.New("codes_default_count must be between 1 and codes_max_count")
	}
	if cfg.DefaultPrefix == "" || len(cfg.DefaultPrefix) > 6 {
		return nil, errors.New("codes_default_prefix must be 1-6 characters")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		DefaultPrefix:     "PQ",
		DefaultCount:      10,
		MaxCount:          100,
		DefaultValue:      50,
		DefaultExpiryDays: 30,
		MaxExpiryDays:     365,
		CollisionRetries:  5,
		PageSize:          10,
	}
}
