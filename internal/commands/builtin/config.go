package builtin

import (
	"fmt"
	"io"
	"os"
	"sort"

	"neo/pkg/neoerrors"
	"neo/pkg/neotypes"
)

// ConfigCommand exposes configuration CRUD over the dot-path adapter:
//
//	neo config get <path>
//	neo config set <path> <value>
//	neo config delete <path>
//	neo config list
type ConfigCommand struct {
	Out io.Writer
}

// NewConfigCommand creates a config command writing to stdout.
func NewConfigCommand() *ConfigCommand {
	return &ConfigCommand{Out: os.Stdout}
}

// Name returns "config".
func (c *ConfigCommand) Name() string {
	return "config"
}

// Description returns the one-line summary.
func (c *ConfigCommand) Description() string {
	return "Get, set, and list configuration values"
}

// Options declares no options.
func (c *ConfigCommand) Options() []neotypes.CommandOption {
	return nil
}

// Arguments declares the action and its operands.
func (c *ConfigCommand) Arguments() []neotypes.CommandArgument {
	return []neotypes.CommandArgument{
		{Name: "action", Description: "get | set | delete | list", Required: true},
		{Name: "path", Description: "dot-separated configuration path"},
		{Name: "value", Description: "value for set"},
	}
}

// Execute dispatches on the action argument. Mutating actions save the
// configuration before returning.
func (c *ConfigCommand) Execute(_ map[string]string, args []string, ctx *neotypes.PluginContext) error {
	if len(args) == 0 {
		return neoerrors.NewValidationError("action", "", "config requires an action: get, set, delete, or list")
	}

	// Reads below want the persisted state, not the startup cache.
	if result := ctx.Config.Load(); result.IsFailure() {
		return result.Err()
	}

	switch action := args[0]; action {
	case "get":
		if len(args) < 2 {
			return neoerrors.NewValidationError("path", "", "config get requires a path")
		}
		value, ok := ctx.Config.Get(args[1])
		if !ok {
			return neoerrors.NewConfigurationError(args[1], fmt.Sprintf("no value at %q", args[1]))
		}
		fmt.Fprintf(c.Out, "%v\n", value)
		return nil

	case "set":
		if len(args) < 3 {
			return neoerrors.NewValidationError("value", "", "config set requires a path and a value")
		}
		ctx.Config.Set(args[1], args[2])
		return c.save(ctx)

	case "delete":
		if len(args) < 2 {
			return neoerrors.NewValidationError("path", "", "config delete requires a path")
		}
		ctx.Config.Delete(args[1])
		return c.save(ctx)

	case "list":
		snapshot, _ := ctx.Config.Load().Data()
		keys := make([]string, 0, len(snapshot))
		for k := range snapshot {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(c.Out, "%s = %v\n", k, snapshot[k])
		}
		return nil

	default:
		return neoerrors.NewValidationError("action", action,
			fmt.Sprintf("unknown config action %q (want get, set, delete, or list)", action))
	}
}

func (c *ConfigCommand) save(ctx *neotypes.PluginContext) error {
	if result := ctx.Config.Save(); result.IsFailure() {
		return result.Err()
	}
	return nil
}

// Metadata returns the registration metadata for this command.
func (c *ConfigCommand) Metadata() *neotypes.CommandMetadata {
	return &neotypes.CommandMetadata{Group: GroupCore, Aliases: []string{"cfg"}}
}
