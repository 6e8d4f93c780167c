package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"neo/pkg/neoerrors"
	"neo/pkg/neotypes"
)

// LoadedPlugin pairs a manifest with its validated, loaded plugin instance
// and its source path. Held for the process lifetime; there is no unload.
type LoadedPlugin struct {
	// ID identifies this load of the plugin in logs and diagnostics.
	ID string

	Manifest *Manifest
	Plugin   neotypes.Plugin
	Path     string

	// Initialized flips once the plugin's initialize entry point has run
	// successfully.
	Initialized bool
}

// Loader discovers plugin manifests under a root directory and loads their
// entry points. Loading is serialized: one plugin is fully discovered,
// validated, and loaded before the next begins, and a failure for one
// plugin never aborts the rest.
type Loader struct {
	root    string
	modules ModuleLoader
	logger  *log.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithModuleLoader replaces the dynamic-load substrate, for tests.
func WithModuleLoader(m ModuleLoader) LoaderOption {
	return func(l *Loader) { l.modules = m }
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string, logger *log.Logger, opts ...LoaderOption) *Loader {
	l := &Loader{
		root:    dir,
		modules: LuaModuleLoader{},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DefaultPluginsDir returns the plugins subfolder of neo's per-user
// configuration directory.
func DefaultPluginsDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config dir: %w", err)
	}
	return filepath.Join(base, "neo", "plugins"), nil
}

// Root returns the plugins root directory.
func (l *Loader) Root() string {
	return l.root
}

// DiscoverPlugins lists plugin manifests under the root. A missing root is
// a normal state and yields an empty list. Directories whose manifest is
// unreadable or missing required fields are warned about and skipped;
// plugins disabled via neo.enabled are debug-logged and skipped.
func (l *Loader) DiscoverPlugins() ([]*Manifest, error) {
	entries, err := os.ReadDir(l.root)
	if os.IsNotExist(err) {
		l.logger.Debug("Plugins directory does not exist", "dir", l.root)
		return nil, nil
	}
	if err != nil {
		return nil, neoerrors.NewFileSystemError(l.root, neoerrors.FileOpRead,
			fmt.Sprintf("failed to list plugins directory: %v", err)).WithCause(err)
	}

	var manifests []*Manifest
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(l.root, entry.Name())

		manifest, err := ReadManifest(dir)
		if err != nil {
			l.logger.Warn("Skipping plugin with unreadable manifest", "dir", dir, "error", err)
			continue
		}
		if missing := manifest.MissingFields(); len(missing) > 0 {
			l.logger.Warn("Skipping plugin with incomplete manifest",
				"dir", dir, "missing", strings.Join(missing, ", "))
			continue
		}
		if !manifest.Enabled() {
			l.logger.Debug("Skipping disabled plugin", "plugin", manifest.Name)
			continue
		}

		manifests = append(manifests, manifest)
	}

	sort.Slice(manifests, func(i, j int) bool { return manifests[i].Name < manifests[j].Name })
	return manifests, nil
}

// LoadPlugin resolves the manifest's entry point, dynamically loads it, and
// structurally validates the exported plugin object. Failures are
// PluginErrors naming the plugin, with actionable suggestions.
func (l *Loader) LoadPlugin(manifest *Manifest) (*LoadedPlugin, error) {
	entryPoint := manifest.EntryPoint()
	if _, err := os.Stat(entryPoint); err != nil {
		return nil, neoerrors.NewPluginError(manifest.Name,
			fmt.Sprintf("plugin %s is missing its entry point %s", manifest.Name, entryPoint),
			fmt.Sprintf("Create %s or point the manifest's 'main' field at the entry file", entryPoint),
		).WithCause(err)
	}

	instance, err := l.modules.Load(entryPoint)
	if err != nil {
		if structural, ok := err.(*structuralError); ok {
			return nil, neoerrors.NewPluginError(manifest.Name,
				fmt.Sprintf("plugin %s has an invalid export: %s", manifest.Name, structural.reason),
				"The entry point must return a table with string 'name', string 'version', and function 'initialize'",
				"See an installed plugin's init.lua for a working example",
			).WithCause(err)
		}
		return nil, neoerrors.NewPluginError(manifest.Name,
			fmt.Sprintf("failed to load plugin %s: %v", manifest.Name, err),
			"Check the plugin's entry point for syntax errors",
			"Reinstall the plugin if the problem persists",
		).WithCause(err)
	}

	l.logger.Debug("Loaded plugin module", "plugin", manifest.Name, "entryPoint", entryPoint)
	return &LoadedPlugin{
		ID:       uuid.NewString(),
		Manifest: manifest,
		Plugin:   instance,
		Path:     manifest.Path(),
	}, nil
}

// LoadAllPlugins discovers manifests and loads every plugin not named in
// disabled. One plugin's failure is logged and skipped; it never aborts
// loading of the remaining plugins. Returns a name→LoadedPlugin map.
func (l *Loader) LoadAllPlugins(disabled map[string]bool) (map[string]*LoadedPlugin, error) {
	manifests, err := l.DiscoverPlugins()
	if err != nil {
		return nil, err
	}

	loaded := make(map[string]*LoadedPlugin)
	for _, manifest := range manifests {
		if disabled[manifest.Name] {
			l.logger.Debug("Skipping disabled plugin", "plugin", manifest.Name)
			continue
		}

		lp, err := l.LoadPlugin(manifest)
		if err != nil {
			l.logger.Error("Failed to load plugin", "plugin", manifest.Name, "error", err)
			continue
		}
		loaded[manifest.Name] = lp
	}
	return loaded, nil
}

// Initialize runs a loaded plugin's initialization entry point with the
// given context. Failures are PluginErrors; callers log and continue.
func (l *Loader) Initialize(lp *LoadedPlugin, ctx *neotypes.PluginContext) error {
	if lp.Initialized {
		return nil
	}
	if err := lp.Plugin.Initialize(ctx); err != nil {
		return neoerrors.NewPluginError(lp.Manifest.Name,
			fmt.Sprintf("plugin %s failed to initialize: %v", lp.Manifest.Name, err),
			"Disable the plugin with neo.enabled: false if the failure persists",
		).WithCause(err)
	}
	lp.Initialized = true
	l.logger.Debug("Initialized plugin", "plugin", lp.Manifest.Name, "version", lp.Manifest.Version)
	return nil
}
