package neotypes

// Tokens under which the runtime registers its core services in the
// dependency-injection container. Plugins and subsystems resolve these
// instead of reaching for package-level singletons.
const (
	TokenVersion  = "neo.version"
	TokenLogger   = "neo.logger"
	TokenConfig   = "neo.config"
	TokenEventBus = "neo.events"
	TokenCommands = "neo.commands"
)
