// Package runtime assembles neo's extensibility runtime. The container,
// event bus, command registry, error handler, and plugin loader are each
// constructed exactly once at process start, injected by reference into
// every consumer, and torn down by an explicit Shutdown at process exit.
package runtime

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/log"

	"neo/internal/commands"
	"neo/internal/config"
	"neo/internal/container"
	"neo/internal/errorhandler"
	"neo/internal/eventbus"
	"neo/internal/plugin"
	"neo/pkg/neoerrors"
	"neo/pkg/neotypes"
)

// Events the runtime publishes on its bus.
const (
	EventPluginLoaded      = "plugin:loaded"
	EventPluginInitialized = "plugin:initialized"
	EventPluginFailed      = "plugin:failed"
	EventShutdown          = "runtime:shutdown"
)

// Options configures a Runtime.
type Options struct {
	// Version is the running tool's version string.
	Version string

	// PluginsDir is the plugins root directory.
	PluginsDir string

	// ConfigPath is the persisted configuration file.
	ConfigPath string

	// Logger defaults to a plain stderr logger when nil.
	Logger *log.Logger

	// Exit overrides process termination in the error handler, for tests.
	Exit func(code int)
}

// Runtime owns the process-wide instances of every core subsystem.
type Runtime struct {
	Container *container.Container
	Bus       *eventbus.Bus
	Commands  *commands.Registry
	Errors    *errorhandler.Handler
	Loader    *plugin.Loader
	Config    *config.Adapter

	factory   *plugin.ContextFactory
	plugins   map[string]*plugin.LoadedPlugin
	loadOrder []string
	logger    *log.Logger
}

// New constructs and wires the runtime. Core services are registered in the
// container under their neotypes tokens so the context factory (and any
// other consumer) resolves them instead of reaching for globals.
func New(opts Options) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	bus := eventbus.New(logger)
	registry := commands.NewRegistry()
	adapter := config.NewAdapter(config.NewFileStore(opts.ConfigPath))

	handlerOpts := []errorhandler.HandlerOption{}
	if opts.Exit != nil {
		handlerOpts = append(handlerOpts, errorhandler.WithExitFunc(opts.Exit))
	}
	handler := errorhandler.NewHandler(logger, handlerOpts...)
	handler.RegisterStrategy(errorhandler.NewRetryStrategy(logger))

	c := container.New()
	if err := c.RegisterValue(neotypes.TokenVersion, opts.Version); err != nil {
		return nil, fmt.Errorf("wiring runtime: %w", err)
	}
	if err := c.RegisterValue(neotypes.TokenLogger, logger); err != nil {
		return nil, fmt.Errorf("wiring runtime: %w", err)
	}
	if err := c.RegisterValue(neotypes.TokenConfig, neotypes.Config(adapter)); err != nil {
		return nil, fmt.Errorf("wiring runtime: %w", err)
	}
	if err := c.RegisterValue(neotypes.TokenEventBus, neotypes.EventBus(bus)); err != nil {
		return nil, fmt.Errorf("wiring runtime: %w", err)
	}
	if err := c.RegisterValue(neotypes.TokenCommands, neotypes.CommandRegistry(registry)); err != nil {
		return nil, fmt.Errorf("wiring runtime: %w", err)
	}

	return &Runtime{
		Container: c,
		Bus:       bus,
		Commands:  registry,
		Errors:    handler,
		Loader:    plugin.NewLoader(opts.PluginsDir, logger),
		Config:    adapter,
		factory:   plugin.NewContextFactory(c),
		plugins:   make(map[string]*plugin.LoadedPlugin),
		logger:    logger,
	}, nil
}

// Context returns the process-wide plugin context.
func (r *Runtime) Context() (*neotypes.PluginContext, error) {
	return r.factory.Context()
}

// LoadPlugins loads every enabled plugin not named in disabled and runs its
// initialization entry point with a plugin context. One plugin's failure at
// load or initialize is logged, published as a plugin:failed event, and
// skipped; the rest keep loading.
func (r *Runtime) LoadPlugins(disabled map[string]bool) error {
	loaded, err := r.Loader.LoadAllPlugins(disabled)
	if err != nil {
		return err
	}

	ctx, err := r.Context()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(loaded))
	for name := range loaded {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		lp := loaded[name]
		r.Bus.Emit(EventPluginLoaded, name)

		if err := r.Loader.Initialize(lp, ctx); err != nil {
			r.logger.Error("Plugin initialization failed", "plugin", name, "error", err)
			r.Bus.Emit(EventPluginFailed, name)
			continue
		}

		r.plugins[name] = lp
		r.loadOrder = append(r.loadOrder, name)
		r.Bus.Emit(EventPluginInitialized, name)
	}
	return nil
}

// Plugins returns the initialized plugins by name.
func (r *Runtime) Plugins() map[string]*plugin.LoadedPlugin {
	out := make(map[string]*plugin.LoadedPlugin, len(r.plugins))
	for name, lp := range r.plugins {
		out[name] = lp
	}
	return out
}

// Dispatch resolves a command by name and executes it with the shared
// context, returning the outcome as a Result.
func (r *Runtime) Dispatch(name string, opts map[string]string, args []string) neoerrors.Result[neoerrors.Unit] {
	ctx, err := r.Context()
	if err != nil {
		return neoerrors.Fail[neoerrors.Unit](neoerrors.Normalize(err))
	}
	return r.Commands.Dispatch(name, opts, args, ctx)
}

// Shutdown disposes plugins in reverse load order and clears the shared
// registries. Dispose failures are logged, never fatal.
func (r *Runtime) Shutdown() {
	r.Bus.Emit(EventShutdown, nil)

	for i := len(r.loadOrder) - 1; i >= 0; i-- {
		name := r.loadOrder[i]
		if lp, ok := r.plugins[name]; ok {
			if err := lp.Plugin.Dispose(); err != nil {
				r.logger.Warn("Plugin dispose failed", "plugin", name, "error", err)
			}
		}
	}
	r.plugins = make(map[string]*plugin.LoadedPlugin)
	r.loadOrder = nil

	r.Bus.Clear()
	r.Commands.Clear()
	r.Container.Clear()
}
