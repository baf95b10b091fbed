package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PatchPath string

	Blocks     int
	Workers    int
	SampleRate float64
	BlockSize  int
	MaxNodes   int

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PatchPath == "" {
		return nil, errors.New("PatchPath is a required configuration field and cannot be empty")
	}
	if cfg.Blocks < 0 {
		return nil, errors.New("Blocks cannot be negative")
	}
	if cfg.SampleRate <= 0 {
		return nil, errors.New("SampleRate must be positive")
	}
	if cfg.BlockSize <= 0 {
		return nil, errors.New("BlockSize must be positive")
	}
	return &cfg, nil
}
