package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds the exam paper settings.
type Config struct {
	PDFCacheMaxAge  time.Duration `env:"PDF_CACHE_MAX_AGE" envDefault:"5m"`
	ValidateUploads bool          `env:"VALIDATE_UPLOADED_PDFS" envDefault:"true"`
	DefaultExamType string        `env:"DEFAULT_EXAM_TYPE" envDefault:"final"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load exams configuration from environment: " + err.Error())
	}
	if cfg.PDFCacheMaxAge < 0 {
		return nil, errors.New("pdf_cache_max_age cannot be negative")
	}
	if cfg.DefaultExamType == "" {
		cfg.DefaultExamType = "final"
	}
	return cfg, nil
}

// DefaultConfig mirrors the environment defaults.
func DefaultConfig() *Config {
	return &Config{PDFCacheMaxAge: 5 * time.Minute, ValidateUploads: true, DefaultExamType: "final"}
}
