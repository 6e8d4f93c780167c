// Package builtin provides neo's host commands: the in-tree counterparts of
// plugin-registered commands, covering version info, configuration CRUD,
// plugin listings, and help.
package builtin

import (
	"fmt"
	"io"
	"os"

	"neo/internal/version"
	"neo/pkg/neotypes"
)

// GroupCore is the metadata group for host commands.
const GroupCore = "core"

// VersionCommand prints the running build's version report.
type VersionCommand struct {
	Out io.Writer
}

// NewVersionCommand creates a version command writing to stdout.
func NewVersionCommand() *VersionCommand {
	return &VersionCommand{Out: os.Stdout}
}

// Name returns "version".
func (c *VersionCommand) Name() string {
	return "version"
}

// Description returns the one-line summary.
func (c *VersionCommand) Description() string {
	return "Show version information"
}

// Options declares no options.
func (c *VersionCommand) Options() []neotypes.CommandOption {
	return nil
}

// Arguments declares no positional arguments.
func (c *VersionCommand) Arguments() []neotypes.CommandArgument {
	return nil
}

// Execute prints the version report.
func (c *VersionCommand) Execute(_ map[string]string, _ []string, _ *neotypes.PluginContext) error {
	fmt.Fprintln(c.Out, version.Get().String())
	return nil
}

// Metadata returns the registration metadata for this command.
func (c *VersionCommand) Metadata() *neotypes.CommandMetadata {
	return &neotypes.CommandMetadata{Group: GroupCore, Aliases: []string{"v"}}
}
