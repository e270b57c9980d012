package config

import (
	"errors"

	"github.com/caarlos0/env/v6"
)

// Config holds the payment page settings.
type Config struct {
	Amount   float64 `env:"PAYMENT_AMOUNT" envDefault:"50"`
	Currency string  `env:"PAYMENT_CURRENCY" envDefault:"GHS"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load payment configuration from environment: " + err.Error())
	}
	if cfg.Amount <= 0 {
		return nil, errors.New("payment_amount must be positive")
	}
	return cfg, nil
}
