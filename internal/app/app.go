package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/jigsaw/internal/config"
	"github.com/vk/jigsaw/internal/ctxlog"
	"github.com/vk/jigsaw/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	loader   config.Loader
}

// NewApp wires an App. Results are written to outW and logs to logW. When no
// modules are given the core modules are registered.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "modules", len(modules), "kinds", reg.Kinds())

	if err := reg.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid piece registry: %w", err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		loader:   loader,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
