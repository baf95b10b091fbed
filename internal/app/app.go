// Package app wires the synthgrid components into a runnable server: logger
// setup, patch loading, engine construction and the block-processing run.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/synthgrid/internal/ctxlog"
	"github.com/vk/synthgrid/internal/engine"
	"github.com/vk/synthgrid/internal/patch"
	"github.com/vk/synthgrid/internal/ugen"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *ugen.Registry
	config   *Config
}

// NewApp constructs the application with its own isolated logger and ugen
// registry.
func NewApp(outW io.Writer, cfg *Config, registry *ugen.Registry) *App {
	if registry == nil {
		registry = ugen.Default()
	}
	return &App{
		outW:     outW,
		logger:   newLogger(cfg.LogLevel, cfg.LogFormat, outW),
		registry: registry,
		config:   cfg,
	}
}

// Run loads the patch, builds the node graph and processes the configured
// number of blocks.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	p, err := patch.Load(ctx, a.config.PatchPath)
	if err != nil {
		return fmt.Errorf("failed to load patch: %w", err)
	}

	eng, err := engine.New(engine.Config{
		SampleRate: a.config.SampleRate,
		BlockSize:  a.config.BlockSize,
		Workers:    a.config.Workers,
		MaxNodes:   a.config.MaxNodes,
	})
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	if err := eng.LoadPatch(ctx, p, a.registry); err != nil {
		return fmt.Errorf("failed to instantiate patch: %w", err)
	}

	a.logger.Info("Starting block processing.",
		"blocks", a.config.Blocks,
		"workers", eng.Config().Workers,
		"sample_rate", eng.Config().SampleRate,
		"block_size", eng.Config().BlockSize,
	)
	if err := eng.Run(ctx, a.config.Blocks); err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
