package builtin

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"neo/pkg/neoerrors"
	"neo/pkg/neotypes"
)

// HelpCommand renders the command listing, or one command's declared
// options and arguments, as markdown.
type HelpCommand struct {
	Out io.Writer
}

// NewHelpCommand creates a help command writing to stdout.
func NewHelpCommand() *HelpCommand {
	return &HelpCommand{Out: os.Stdout}
}

// Name returns "help".
func (c *HelpCommand) Name() string {
	return "help"
}

// Description returns the one-line summary.
func (c *HelpCommand) Description() string {
	return "Show help for commands"
}

// Options declares no options.
func (c *HelpCommand) Options() []neotypes.CommandOption {
	return nil
}

// Arguments declares the optional command name.
func (c *HelpCommand) Arguments() []neotypes.CommandArgument {
	return []neotypes.CommandArgument{
		{Name: "command", Description: "command to describe"},
	}
}

// Execute renders either the full listing or one command's help.
func (c *HelpCommand) Execute(_ map[string]string, args []string, ctx *neotypes.PluginContext) error {
	var markdown string
	if len(args) > 0 {
		cmd, ok := ctx.Commands.Get(args[0])
		if !ok {
			return neoerrors.NewCommandError(args[0],
				fmt.Sprintf("unknown command: %s", args[0]),
				"Run 'neo help' to list available commands")
		}
		markdown = commandHelp(cmd, ctx)
	} else {
		markdown = listingHelp(ctx)
	}

	rendered, err := glamour.Render(markdown, "auto")
	if err != nil {
		// Terminal rendering is cosmetic; fall back to raw markdown.
		rendered = markdown
	}
	fmt.Fprint(c.Out, rendered)
	return nil
}

func listingHelp(ctx *neotypes.PluginContext) string {
	var b strings.Builder
	b.WriteString("# neo commands\n\n")
	for _, cmd := range ctx.Commands.GetAll() {
		if meta, ok := ctx.Commands.Metadata(cmd.Name()); ok && meta.Hidden {
			continue
		}
		fmt.Fprintf(&b, "- **%s** — %s\n", cmd.Name(), cmd.Description())
	}
	b.WriteString("\nRun `neo help <command>` for details.\n")
	return b.String()
}

func commandHelp(cmd neotypes.Command, ctx *neotypes.PluginContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# neo %s\n\n%s\n", cmd.Name(), cmd.Description())

	if meta, ok := ctx.Commands.Metadata(cmd.Name()); ok && len(meta.Aliases) > 0 {
		fmt.Fprintf(&b, "\nAliases: %s\n", strings.Join(meta.Aliases, ", "))
	}

	if args := cmd.Arguments(); len(args) > 0 {
		b.WriteString("\n## Arguments\n\n")
		for _, arg := range args {
			required := ""
			if arg.Required {
				required = " (required)"
			}
			fmt.Fprintf(&b, "- `%s`%s — %s\n", arg.Name, required, arg.Description)
		}
	}

	if opts := cmd.Options(); len(opts) > 0 {
		b.WriteString("\n## Options\n\n")
		for _, opt := range opts {
			fmt.Fprintf(&b, "- `--%s` — %s", opt.Name, opt.Description)
			if opt.Default != "" {
				fmt.Fprintf(&b, " (default %q)", opt.Default)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// Metadata returns the registration metadata for this command.
func (c *HelpCommand) Metadata() *neotypes.CommandMetadata {
	return &neotypes.CommandMetadata{Group: GroupCore, Aliases: []string{"h"}}
}
