// Package main provides the neo CLI entry point. neo is a command-line
// productivity tool wrapping version-control and code-hosting workflows; the
// binary assembles the extensibility runtime, loads plugins, and dispatches
// registry commands.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"neo/internal/commands/builtin"
	"neo/internal/config"
	"neo/internal/logger"
	"neo/internal/runtime"
	"neo/internal/version"
)

var (
	logLevel   string
	logFile    string
	testMode   bool
	pluginsDir string
	configFile string
)

// rootCmd dispatches its arguments to the command registry, so plugin
// commands are first-class: `neo <command> [key=value...] [args...]`.
var rootCmd = &cobra.Command{
	Use:   "neo [command]",
	Short: "neo - extensible git and code-hosting workflows",
	Long: `neo wraps version-control and code-hosting workflows behind an extensible
command registry. Plugins installed under the plugins directory can register
their own commands, subscribe to events, and read tool configuration.`,
	Args: cobra.ArbitraryArgs,
	Run:  dispatch,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")
	rootCmd.PersistentFlags().BoolVar(&testMode, "test-mode", false, "Run in deterministic test mode")
	rootCmd.PersistentFlags().StringVar(&pluginsDir, "plugins-dir", "", "Override the plugins directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "Override the configuration file")

	for _, flag := range []string{"log-level", "log-file", "test-mode", "plugins-dir", "config-file"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", flag, err)
			os.Exit(1)
		}
	}

	cobra.OnInitialize(initLogging)
}

func initLogging() {
	if err := logger.Configure(logLevel, logFile, testMode); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
}

func dispatch(_ *cobra.Command, args []string) {
	rt := bootstrap()
	defer rt.Shutdown()

	name := "help"
	if len(args) > 0 {
		name = args[0]
		args = args[1:]
	}

	opts, positional := splitArgs(args)
	rt.Errors.HandleCommandResult(rt.Dispatch(name, opts, positional))
}

// bootstrap assembles the runtime: one container, bus, registry, and error
// handler for the process, builtins registered, plugins loaded.
func bootstrap() *runtime.Runtime {
	configDir, err := config.DefaultConfigDir()
	if err != nil {
		logger.Fatal("Cannot locate configuration directory", "error", err)
	}
	if err := config.LoadDotEnv(configDir); err != nil {
		logger.Warn("Failed to load .env overrides", "error", err)
	}

	cfgPath := configFile
	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, config.DefaultFileName)
	}
	plugRoot := pluginsDir
	if plugRoot == "" {
		plugRoot = filepath.Join(configDir, "plugins")
	}

	rt, err := runtime.New(runtime.Options{
		Version:    version.Version,
		PluginsDir: plugRoot,
		ConfigPath: cfgPath,
		Logger:     logger.NewComponentLogger("neo"),
	})
	if err != nil {
		logger.Fatal("Failed to assemble runtime", "error", err)
	}

	registerBuiltins(rt)

	if err := rt.LoadPlugins(disabledPlugins(rt)); err != nil {
		// Plugin trouble degrades the plugin surface, never the host.
		logger.Error("Plugin loading failed", "error", err)
	}

	return rt
}

func registerBuiltins(rt *runtime.Runtime) {
	versionCmd := builtin.NewVersionCommand()
	configCmd := builtin.NewConfigCommand()
	helpCmd := builtin.NewHelpCommand()
	pluginsCmd := builtin.NewPluginsCommand(func() []builtin.PluginSummary {
		var out []builtin.PluginSummary
		for _, lp := range rt.Plugins() {
			out = append(out, builtin.PluginSummary{
				Name:        lp.Manifest.Name,
				Version:     lp.Manifest.Version,
				Path:        lp.Path,
				Initialized: lp.Initialized,
			})
		}
		return out
	})

	if err := rt.Commands.Register(versionCmd, versionCmd.Metadata()); err != nil {
		logger.Fatal("Failed to register builtin", "command", versionCmd.Name(), "error", err)
	}
	if err := rt.Commands.Register(configCmd, configCmd.Metadata()); err != nil {
		logger.Fatal("Failed to register builtin", "command", configCmd.Name(), "error", err)
	}
	if err := rt.Commands.Register(helpCmd, helpCmd.Metadata()); err != nil {
		logger.Fatal("Failed to register builtin", "command", helpCmd.Name(), "error", err)
	}
	if err := rt.Commands.Register(pluginsCmd, pluginsCmd.Metadata()); err != nil {
		logger.Fatal("Failed to register builtin", "command", pluginsCmd.Name(), "error", err)
	}
}

// disabledPlugins reads the plugins.disabled list from persisted config.
func disabledPlugins(rt *runtime.Runtime) map[string]bool {
	disabled := make(map[string]bool)
	result := rt.Config.Load()
	if result.IsFailure() {
		logger.Warn("Cannot read disabled plugin list", "error", result.Err())
		return disabled
	}
	if raw, ok := rt.Config.Get("plugins.disabled"); ok {
		if list, ok := raw.([]any); ok {
			for _, item := range list {
				if name, ok := item.(string); ok {
					disabled[name] = true
				}
			}
		}
	}
	return disabled
}

// splitArgs separates key=value tokens (command options) from positional
// arguments.
func splitArgs(args []string) (map[string]string, []string) {
	opts := make(map[string]string)
	var positional []string
	for _, arg := range args {
		if key, value, found := strings.Cut(arg, "="); found && key != "" {
			opts[key] = value
			continue
		}
		positional = append(positional, arg)
	}
	return opts, positional
}
