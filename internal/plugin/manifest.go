// Package plugin implements neo's plugin pipeline: manifest discovery on
// disk, dynamic loading of Lua entry points, structural validation of the
// exported plugin object, and the context factory that hands each plugin its
// view of the runtime.
package plugin

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// Manifest file names probed in order inside each plugin directory.
var manifestFileNames = []string{"plugin.json", "plugin.yaml"}

// DefaultEntryPoint is the entry-point file used when the manifest declares
// no main.
const DefaultEntryPoint = "init.lua"

// NeoSettings is the tool-specific manifest section.
type NeoSettings struct {
	// MinVersion declares the minimum neo version the plugin expects. It
	// is parsed but not enforced by the loader.
	MinVersion string `json:"minVersion" yaml:"minVersion"`

	// Enabled disables the plugin without removing it when set to false.
	// Absent means enabled.
	Enabled *bool `json:"enabled" yaml:"enabled"`
}

// Manifest is the declared identity of a plugin found on disk. Immutable
// once read.
type Manifest struct {
	Name        string      `json:"name" yaml:"name"`
	Version     string      `json:"version" yaml:"version"`
	Description string      `json:"description" yaml:"description"`
	Main        string      `json:"main" yaml:"main"`
	Author      string      `json:"author" yaml:"author"`
	Homepage    string      `json:"homepage" yaml:"homepage"`
	Neo         NeoSettings `json:"neo" yaml:"neo"`

	// path is the plugin directory the manifest was read from.
	path string
}

// ReadManifest loads a manifest from a plugin directory, probing the known
// manifest file names.
func ReadManifest(dir string) (*Manifest, error) {
	for _, name := range manifestFileNames {
		manifestPath := filepath.Join(dir, name)
		data, err := os.ReadFile(manifestPath)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading manifest %s: %w", manifestPath, err)
		}

		var m Manifest
		if filepath.Ext(name) == ".json" {
			err = json.Unmarshal(data, &m)
		} else {
			err = yaml.Unmarshal(data, &m)
		}
		if err != nil {
			return nil, fmt.Errorf("parsing manifest %s: %w", manifestPath, err)
		}

		m.path = dir
		return &m, nil
	}
	return nil, fmt.Errorf("no manifest file in %s", dir)
}

// MissingFields returns the required manifest fields that are absent.
func (m *Manifest) MissingFields() []string {
	var missing []string
	if m.Name == "" {
		missing = append(missing, "name")
	}
	if m.Version == "" {
		missing = append(missing, "version")
	}
	return missing
}

// Enabled reports whether the plugin should be loaded. Only an explicit
// neo.enabled: false disables it.
func (m *Manifest) Enabled() bool {
	return m.Neo.Enabled == nil || *m.Neo.Enabled
}

// MinVersion parses the declared neo.minVersion. The loader records but
// never enforces it; version gating stays out until required elsewhere.
func (m *Manifest) MinVersion() (*semver.Version, bool) {
	if m.Neo.MinVersion == "" {
		return nil, false
	}
	v, err := semver.NewVersion(m.Neo.MinVersion)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Path returns the plugin directory.
func (m *Manifest) Path() string {
	return m.path
}

// EntryPoint returns the full path of the plugin's entry-point file.
func (m *Manifest) EntryPoint() string {
	main := m.Main
	if main == "" {
		main = DefaultEntryPoint
	}
	return filepath.Join(m.path, main)
}

// String renders "name vVersion" for logs.
func (m *Manifest) String() string {
	return fmt.Sprintf("%s v%s", m.Name, m.Version)
}
