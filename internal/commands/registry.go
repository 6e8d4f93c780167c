// Package commands provides command registration and dispatch for neo. It
// manages the registry of host and plugin commands and handles lookup by
// name, alias, and group.
package commands

import (
	"fmt"
	"sort"
	"sync"

	"neo/pkg/neoerrors"
	"neo/pkg/neotypes"
)

// Registry maps command names to commands with optional metadata. It
// provides thread-safe registration and retrieval.
//
// Duplicate-name registration fails rather than silently overwriting so a
// plugin cannot clobber host or other-plugin commands.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]neotypes.Command
	metadata map[string]*neotypes.CommandMetadata
	aliases  map[string]string
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]neotypes.Command),
		metadata: make(map[string]*neotypes.CommandMetadata),
		aliases:  make(map[string]string),
	}
}

// Register adds a command with optional metadata. It returns an error if the
// command name is empty, already registered, or if an alias collides with an
// existing name or alias.
func (r *Registry) Register(cmd neotypes.Command, meta *neotypes.CommandMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := cmd.Name()
	if name == "" {
		return fmt.Errorf("command name cannot be empty")
	}
	if _, exists := r.commands[name]; exists {
		return fmt.Errorf("command %s already registered", name)
	}
	if owner, exists := r.aliases[name]; exists {
		return fmt.Errorf("command %s conflicts with an alias of %s", name, owner)
	}

	if meta != nil {
		for _, alias := range meta.Aliases {
			if _, exists := r.commands[alias]; exists {
				return fmt.Errorf("alias %s conflicts with a registered command", alias)
			}
			if owner, exists := r.aliases[alias]; exists {
				return fmt.Errorf("alias %s already taken by %s", alias, owner)
			}
		}
		for _, alias := range meta.Aliases {
			r.aliases[alias] = name
		}
		r.metadata[name] = meta
	}

	r.commands[name] = cmd
	return nil
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) (neotypes.Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if cmd, exists := r.commands[name]; exists {
		return cmd, true
	}
	if canonical, exists := r.aliases[name]; exists {
		cmd, ok := r.commands[canonical]
		return cmd, ok
	}
	return nil, false
}

// GetAll returns all registered commands sorted by name. The returned slice
// is a copy and can be safely modified.
func (r *Registry) GetAll() []neotypes.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]neotypes.Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		all = append(all, cmd)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name() < all[j].Name() })
	return all
}

// GetByGroup returns commands registered with metadata carrying the given
// group. Commands registered without metadata never match.
func (r *Registry) GetByGroup(group string) []neotypes.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []neotypes.Command
	for name, meta := range r.metadata {
		if meta.Group != group {
			continue
		}
		if cmd, exists := r.commands[name]; exists {
			matched = append(matched, cmd)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name() < matched[j].Name() })
	return matched
}

// Metadata returns the metadata attached at registration, if any.
func (r *Registry) Metadata(name string) (*neotypes.CommandMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, exists := r.metadata[name]
	return meta, exists
}

// Unregister removes a command and its aliases. It does not error if the
// command is absent.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.commands, name)
	delete(r.metadata, name)
	for alias, canonical := range r.aliases {
		if canonical == name {
			delete(r.aliases, alias)
		}
	}
}

// Clear removes every command. Idempotent.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = make(map[string]neotypes.Command)
	r.metadata = make(map[string]*neotypes.CommandMetadata)
	r.aliases = make(map[string]string)
}

// Size reports the number of live registrations (aliases excluded).
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Dispatch resolves a command by name and executes it, converting the
// outcome into a Result. An unknown command and a failed execution are both
// failure results carrying a CommandError.
func (r *Registry) Dispatch(name string, opts map[string]string, args []string, ctx *neotypes.PluginContext) neoerrors.Result[neoerrors.Unit] {
	cmd, exists := r.Get(name)
	if !exists {
		return neoerrors.Fail[neoerrors.Unit](neoerrors.NewCommandError(
			name,
			fmt.Sprintf("unknown command: %s", name),
			"Run 'neo help' to list available commands",
		))
	}

	if err := cmd.Execute(opts, args, ctx); err != nil {
		if appErr, ok := err.(*neoerrors.AppError); ok {
			return neoerrors.Fail[neoerrors.Unit](appErr)
		}
		return neoerrors.Fail[neoerrors.Unit](neoerrors.NewCommandError(name, err.Error()).WithCause(err))
	}
	return neoerrors.OkUnit()
}
