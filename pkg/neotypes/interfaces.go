// Package neotypes defines the core interfaces and data structures shared
// across neo's extensibility runtime.
//
// The runtime is assembled from a handful of long-lived collaborators — the
// dependency-injection container, the event bus, the command registry, and
// the plugin loader — that are constructed once at process start and injected
// by reference into every consumer. This package holds the contracts those
// collaborators implement so that commands, plugins, and subsystems can
// depend on interfaces instead of concrete packages.
package neotypes

import (
	"github.com/charmbracelet/log"

	"neo/pkg/neoerrors"
)

// EventHandler consumes one published event payload. A non-nil return value
// is logged by the bus, tagged with the event name, and never propagates to
// the publisher.
type EventHandler func(data any) error

// EventBus is the in-process publish/subscribe channel between the host and
// independently authored plugins. Handler isolation is the load-bearing
// property: one failing handler must never prevent the rest from running.
type EventBus interface {
	// On registers a handler for an event. Registering the same function
	// twice for one event is a no-op.
	On(event string, handler EventHandler)

	// OnAsync registers a fire-and-forget handler: Emit invokes it on its
	// own goroutine and does not wait for it. Its eventual failure is
	// logged out of band.
	OnAsync(event string, handler EventHandler)

	// Once registers a handler that removes itself before its first
	// invocation, guaranteeing at most one call.
	Once(event string, handler EventHandler)

	// Off removes a previously registered handler.
	Off(event string, handler EventHandler)

	// Emit invokes every handler currently registered for event, in
	// registration order, passing data (nil when the publisher has none).
	Emit(event string, data any)

	// Clear removes all handlers for the named events, or every handler
	// when called with no arguments.
	Clear(events ...string)

	// ListenerCount reports the number of live handlers for an event.
	ListenerCount(event string) int
}

// CommandRegistry maps command names to commands with optional group
// metadata. Registration rejects duplicate names so a plugin cannot clobber
// host or other-plugin commands.
type CommandRegistry interface {
	Register(cmd Command, meta *CommandMetadata) error
	Get(name string) (Command, bool)
	GetAll() []Command
	GetByGroup(group string) []Command
	Metadata(name string) (*CommandMetadata, bool)
	Unregister(name string)
	Clear()
	Size() int
}

// Config is the configuration surface handed to plugins: dot-path access
// over the persisted configuration file, with dirty tracking. Get/Set/Has/
// Delete operate on an in-memory cache; Load and Save exchange the cache
// with the persisted store and report failure as a Result.
type Config interface {
	Get(path string) (any, bool)
	GetString(path string) string
	Set(path string, value any)
	Has(path string) bool
	Delete(path string)
	IsDirty() bool
	Load() neoerrors.Result[map[string]any]
	Save() neoerrors.Result[neoerrors.Unit]
}

// PluginContext is the object handed to each plugin's initialization entry
// point. One context is built per process; every field references the shared
// process-wide instance.
type PluginContext struct {
	// Version is the running tool's version string.
	Version string

	// Config wraps the persisted configuration with dot-path access.
	Config Config

	// Logger is a component logger prefixed for the consumer.
	Logger *log.Logger

	// Events is the shared event bus.
	Events EventBus

	// Commands is the shared command registry.
	Commands CommandRegistry
}

// Plugin is the capability surface a loaded plugin module must satisfy. The
// structural check happens once at load time; the loader caches the adapter
// in its LoadedPlugin record.
type Plugin interface {
	Name() string
	Version() string
	Initialize(ctx *PluginContext) error
	Dispose() error
}
