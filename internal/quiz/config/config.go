package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds quiz selection and AI generation settings.
type Config struct {
	DefaultQuizSize int     `env:"QUIZ_DEFAULT_SIZE" envDefault:"20"`
	HistoryWindow   int     `env:"QUIZ_HISTORY_WINDOW" envDefault:"5"`
	IncorrectShare  float64 `env:"QUIZ_INCORRECT_SHARE" envDefault:"0.3"`
	WeaknessLimit   int     `env:"QUIZ_WEAKNESS_LIMIT" envDefault:"50"`

	AI AIConfig
}

// AIConfig configures question generation on Vertex AI. Generation is
// disabled when ProjectID is empty.
type AIConfig struct {
	ProjectID      string        `env:"VERTEX_PROJECT_ID"`
	Region         string        `env:"VERTEX_REGION" envDefault:"us-central1"`
	Model          string        `env:"VERTEX_MODEL" envDefault:"gemini-1.5-pro"`
	Temperature    float32       `env:"VERTEX_TEMPERATURE" envDefault:"0.7"`
	MaxTokens      int32         `env:"VERTEX_MAX_TOKENS" envDefault:"4000"`
	Timeout        time.Duration `env:"AI_GENERATION_TIMEOUT" envDefault:"30s"`
	MaxSourceChars int           `env:"AI_MAX_SOURCE_CHARS" envDefault:"3000"`
}

func (c AIConfig) Enabled() bool {
	return c.ProjectID != ""
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load quiz configuration from environment: " + err.Error())
	}
	if cfg.DefaultQuizSize <= 0 {
		return nil, errors.New("quiz_default_size must be positive")
	}
	if cfg.IncorrectShare < 0 || cfg.IncorrectShare > 1 {
		return nil, errors.New("quiz_incorrect_share must be between 0 and 1")
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 5
	}
	if cfg.WeaknessLimit <= 0 {
		cfg.WeaknessLimit = 50
	}
	if cfg.AI.MaxSourceChars <= 0 {
		cfg.AI.MaxSourceChars = 3000
	}
	return cfg, nil
}

// DefaultConfig mirrors the environment defaults with AI generation off.
func DefaultConfig() *Config {
	return &Config{
		DefaultQuizSize: 20,
		HistoryWindow:   5,
		IncorrectShare:  0.3,
		WeaknessLimit:   50,
		AI: AIConfig{
			Region:         "us-central1",
			Model:          "gemini-1.5-pro",
			Temperature:    0.7,
			MaxTokens:      4000,
			Timeout:        30 * time.Second,
			MaxSourceChars: 3000,
		},
	}
}
