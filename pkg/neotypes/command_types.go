package neotypes

// Command is the unit of dispatch. Commands come from the host's builtin set
// or from plugins; the registry owns them once registered.
type Command interface {
	// Name is the unique registration key.
	Name() string

	// Description is the one-line summary shown in listings and help.
	Description() string

	// Options declares the flag-style options the command accepts.
	Options() []CommandOption

	// Arguments declares the positional arguments the command accepts.
	Arguments() []CommandArgument

	// Execute runs the command with parsed options, positional arguments,
	// and the shared runtime context.
	Execute(opts map[string]string, args []string, ctx *PluginContext) error
}

// CommandOption declares a flag-style option for help and parsing.
type CommandOption struct {
	Name        string
	Description string
	Default     string
}

// CommandArgument declares a positional argument for help and parsing.
type CommandArgument struct {
	Name        string
	Description string
	Required    bool
}

// CommandMetadata carries optional grouping, alias, and visibility info
// attached at registration time.
type CommandMetadata struct {
	// Group names the logical command group for GetByGroup lookups.
	Group string

	// Aliases are alternate names that resolve to the command.
	Aliases []string

	// Hidden commands are dispatchable but excluded from listings.
	Hidden bool
}
