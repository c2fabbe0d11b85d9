package app

import (
	"errors"
	"fmt"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	DefinitionPaths []string // .hcl/.yaml files or directories

	LogFormat  string
	LogLevel   string
	Workers    int
	PrintOrder bool
}

// NewConfig validates cfg and returns a copy ready for NewApp.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.DefinitionPaths) == 0 {
		return nil, errors.New("at least one definition path is required")
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must not be negative, got %d", cfg.Workers)
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	return &cfg, nil
}
