package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/bootforge/bootforge/internal/artifact"
	"github.com/bootforge/bootforge/internal/assets"
	"github.com/bootforge/bootforge/internal/config"
	"github.com/bootforge/bootforge/internal/ctxlog"
	"github.com/bootforge/bootforge/internal/env"
	"github.com/bootforge/bootforge/internal/fetch"
	"github.com/bootforge/bootforge/templates"
)

// Run executes the requested pipelines. The environment configuration is
// read and validated exactly once; no artifact or asset is written while
// any validation check fails.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	raw, err := env.LoadFile(a.config.EnvPath)
	if err != nil {
		return err
	}

	cfg, err := config.FromEnv(raw)
	if err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			for _, failure := range verr.Failures {
				a.logger.Error("Configuration check failed.", "problem", failure)
			}
		}
		return err
	}
	a.logger.Debug("Environment configuration validated.", "path", a.config.EnvPath)

	switch a.config.Command {
	case CommandGenerate:
		return a.generate(ctx, cfg)
	case CommandFetch:
		return a.fetch(ctx, cfg)
	case CommandAll:
		if err := a.generate(ctx, cfg); err != nil {
			return err
		}
		return a.fetch(ctx, cfg)
	default:
		return fmt.Errorf("unknown command %q", a.config.Command)
	}
}

// generate runs the validation/generation pipeline.
func (a *App) generate(ctx context.Context, cfg *config.Config) error {
	roots := artifact.Roots{TFTPRoot: a.config.TFTPRoot, HTTPRoot: a.config.HTTPRoot}

	catalogue, err := artifact.LoadCatalog(roots)
	if err != nil {
		return err
	}
	templateFS, err := a.templatesFS()
	if err != nil {
		return err
	}

	gen := &artifact.Generator{Templates: templateFS}
	if err := gen.Generate(ctx, catalogue, artifact.TemplateVars(cfg, roots)); err != nil {
		return fmt.Errorf("generation pipeline: %w", err)
	}
	a.logger.Info("Generation pipeline complete.", "artifacts", len(catalogue))
	return nil
}

// fetch runs the asset acquisition pipeline.
func (a *App) fetch(ctx context.Context, cfg *config.Config) error {
	cat, err := assets.Load(a.config.CatalogPath, assets.Vars{
		TFTPRoot:     a.config.TFTPRoot,
		HTTPRoot:     a.config.HTTPRoot,
		BootMirror:   cfg.BootMirror,
		DebianMirror: cfg.DebianMirror,
		ServerIP:     cfg.ServerIP,
	})
	if err != nil {
		return err
	}

	orchestrator := &assets.Orchestrator{
		Fetcher: fetch.New(),
		Workers: a.config.WorkerCount,
	}
	if err := orchestrator.Acquire(ctx, cat); err != nil {
		return fmt.Errorf("acquisition pipeline: %w", err)
	}
	a.logger.Info("Acquisition pipeline complete.")
	return nil
}

// templatesFS resolves the template source: a user-supplied directory or
// the embedded default set.
func (a *App) templatesFS() (fs.FS, error) {
	if a.config.TemplatesDir == "" {
		return templates.FS, nil
	}
	info, err := os.Stat(a.config.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("templates directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("templates path %s is not a directory", a.config.TemplatesDir)
	}
	return os.DirFS(a.config.TemplatesDir), nil
}
