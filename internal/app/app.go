// Package app wires the application together: configuration loading, kernel
// registration, graph construction, execution, and output writing.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/denoisegridgo/internal/ctxlog"
	"github.com/vk/denoisegridgo/internal/derive"
	"github.com/vk/denoisegridgo/internal/hcl_adapter"
	"github.com/vk/denoisegridgo/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	model    *hcl_adapter.Model
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Configuration load failures are fatal startup errors and panic; the CLI
// boundary recovers them.
func NewApp(outW io.Writer, appConfig *Config, loader *hcl_adapter.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.SelectionPath)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into typed model.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All kernel modules registered.", "count", len(modules))

	if err := reg.ValidateRegistry(derive.RequiredKernels()); err != nil {
		// Mismatch between compiled kernels and the derivation layer is a
		// programmer error.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		model:    model,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded configuration model. This is primarily for
// testing.
func (a *App) Model() *hcl_adapter.Model {
	return a.model
}
