package plugin

import (
	"fmt"

	"github.com/charmbracelet/log"

	"neo/internal/container"
	"neo/pkg/neotypes"
)

// ContextFactory composes the configuration adapter, logger, event bus, and
// command registry into the context handed to each plugin's initialization
// entry point. The collaborators come out of the container; one context is
// built per process.
type ContextFactory struct {
	container *container.Container
	ctx       *neotypes.PluginContext
}

// NewContextFactory creates a factory resolving from c.
func NewContextFactory(c *container.Container) *ContextFactory {
	return &ContextFactory{container: c}
}

// Context returns the process-wide plugin context, building it on first
// call. Building issues an out-of-band configuration read to prime the
// adapter's cache; callers needing a guaranteed-fresh value call
// Config.Load explicitly instead of assuming synchronous availability.
func (f *ContextFactory) Context() (*neotypes.PluginContext, error) {
	if f.ctx != nil {
		return f.ctx, nil
	}

	version, err := container.ResolveAs[string](f.container, neotypes.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("building plugin context: %w", err)
	}
	logger, err := container.ResolveAs[*log.Logger](f.container, neotypes.TokenLogger)
	if err != nil {
		return nil, fmt.Errorf("building plugin context: %w", err)
	}
	cfg, err := container.ResolveAs[neotypes.Config](f.container, neotypes.TokenConfig)
	if err != nil {
		return nil, fmt.Errorf("building plugin context: %w", err)
	}
	events, err := container.ResolveAs[neotypes.EventBus](f.container, neotypes.TokenEventBus)
	if err != nil {
		return nil, fmt.Errorf("building plugin context: %w", err)
	}
	registry, err := container.ResolveAs[neotypes.CommandRegistry](f.container, neotypes.TokenCommands)
	if err != nil {
		return nil, fmt.Errorf("building plugin context: %w", err)
	}

	f.ctx = &neotypes.PluginContext{
		Version:  version,
		Config:   cfg,
		Logger:   logger,
		Events:   events,
		Commands: registry,
	}

	// Prime the config cache out of band; a failure here only means the
	// first Get sees an empty cache.
	go func() {
		if result := cfg.Load(); result.IsFailure() {
			logger.Warn("Initial configuration load failed", "error", result.Err())
		}
	}()

	return f.ctx, nil
}
