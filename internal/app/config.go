package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	SelectionPath string // hcl files: selections + inputs
	OutputDir     string // where terminal artifacts are written

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config before the app starts.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.SelectionPath == "" {
		return nil, errors.New("SelectionPath is a required configuration field and cannot be empty")
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	return &cfg, nil
}
