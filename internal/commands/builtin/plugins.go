package builtin

import (
	"fmt"
	"io"
	"os"
	"sort"

	"neo/pkg/neotypes"
)

// PluginSummary is one row in the plugins listing.
type PluginSummary struct {
	Name        string
	Version     string
	Path        string
	Initialized bool
}

// PluginLister provides the current plugin state; the runtime supplies it
// at registration so the command stays decoupled from the loader.
type PluginLister func() []PluginSummary

// PluginsCommand lists discovered and initialized plugins.
type PluginsCommand struct {
	Out  io.Writer
	list PluginLister
}

// NewPluginsCommand creates a plugins command over the given lister.
func NewPluginsCommand(list PluginLister) *PluginsCommand {
	return &PluginsCommand{Out: os.Stdout, list: list}
}

// Name returns "plugins".
func (c *PluginsCommand) Name() string {
	return "plugins"
}

// Description returns the one-line summary.
func (c *PluginsCommand) Description() string {
	return "List installed plugins"
}

// Options declares no options.
func (c *PluginsCommand) Options() []neotypes.CommandOption {
	return nil
}

// Arguments declares no positional arguments.
func (c *PluginsCommand) Arguments() []neotypes.CommandArgument {
	return nil
}

// Execute prints one line per plugin, sorted by name.
func (c *PluginsCommand) Execute(_ map[string]string, _ []string, _ *neotypes.PluginContext) error {
	plugins := c.list()
	if len(plugins) == 0 {
		fmt.Fprintln(c.Out, "no plugins installed")
		return nil
	}

	sort.Slice(plugins, func(i, j int) bool { return plugins[i].Name < plugins[j].Name })
	for _, p := range plugins {
		state := "loaded"
		if p.Initialized {
			state = "initialized"
		}
		fmt.Fprintf(c.Out, "%s v%s (%s) %s\n", p.Name, p.Version, state, p.Path)
	}
	return nil
}

// Metadata returns the registration metadata for this command.
func (c *PluginsCommand) Metadata() *neotypes.CommandMetadata {
	return &neotypes.CommandMetadata{Group: GroupCore}
}
