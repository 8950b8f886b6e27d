// Package app wires the two provisioning pipelines together: it builds the
// immutable environment configuration, hard-gates on validation, and
// dispatches the generation and acquisition pipelines.
package app

import (
	"io"
	"log/slog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
}

// New is the constructor for the main application. It returns an App with
// its own isolated logger.
func New(outW io.Writer, config *Config) *App {
	return &App{
		outW:   outW,
		logger: newLogger(config.LogLevel, config.LogFormat, outW),
		config: config,
	}
}
