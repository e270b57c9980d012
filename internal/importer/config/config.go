package config

import (
	"errors"
	"os"

	"pass-questions/internal/shared/database"

	"github.com/caarlos0/env/v6"
)

// Config drives a one-off copy of the legacy Firestore data into Mongo.
type Config struct {
	ProjectID   string   `env:"FIRESTORE_PROJECT_ID"`
	Collections []string `env:"IMPORT_COLLECTIONS" envSeparator:","`
	Concurrency int      `env:"IMPORT_CONCURRENCY" envDefault:"4"`
	BatchSize   int      `env:"IMPORT_BATCH_SIZE" envDefault:"500"`
	DryRun      bool     `env:"IMPORT_DRY_RUN" envDefault:"false"`
	Mongo       database.MongoConfig
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load importer configuration from environment: " + err.Error())
	}
	if cfg.ProjectID == "" {
		cfg.ProjectID = os.Getenv("GOOGLE_CLOUD_PROJECT")
	}
	if cfg.ProjectID == "" {
		return nil, errors.New("firestore_project_id is required")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.BatchSize <= 0 || cfg.BatchSize > 1000 {
		return nil, errors.New("import_batch_size must be between 1 and 1000")
	}
	return cfg, nil
}
