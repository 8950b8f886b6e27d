package app

import "errors"

// Commands accepted by Run.
const (
	CommandGenerate = "generate"
	CommandFetch    = "fetch"
	CommandAll      = "all"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Command string

	EnvPath      string // environment configuration file
	TemplatesDir string // artifact templates; empty means the embedded set
	CatalogPath  string // asset catalogue; empty means the embedded default

	TFTPRoot string
	HTTPRoot string

	LogFormat   string
	LogLevel    string
	WorkerCount int
}

// NewConfig validates the base invariants of a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Command == "" {
		return nil, errors.New("Command is a required configuration field and cannot be empty")
	}
	if cfg.EnvPath == "" {
		return nil, errors.New("EnvPath is a required configuration field and cannot be empty")
	}
	if cfg.TFTPRoot == "" || cfg.HTTPRoot == "" {
		return nil, errors.New("TFTPRoot and HTTPRoot cannot be empty")
	}
	if cfg.WorkerCount < 1 {
		return nil, errors.New("WorkerCount must be at least 1")
	}
	return &cfg, nil
}
