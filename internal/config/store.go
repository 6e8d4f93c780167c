// Package config implements neo's persisted configuration: a viper-backed
// JSON file store plus the dot-path adapter handed to plugins.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultFileName is the config file neo persists under its config dir.
const DefaultFileName = "config.json"

// Store is the persisted-configuration collaborator: whole-document read and
// write of the config object.
type Store interface {
	// Read returns the persisted configuration. A missing file yields an
	// empty configuration, not an error.
	Read() (map[string]any, error)

	// Write replaces the persisted configuration.
	Write(cfg map[string]any) error

	// Path returns the backing file path, for diagnostics.
	Path() string
}

// FileStore persists the configuration as a JSON document via viper.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultConfigDir returns neo's per-user configuration directory.
func DefaultConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config dir: %w", err)
	}
	return filepath.Join(base, "neo"), nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Read loads the config file. A missing file is a normal first-run state and
// returns an empty map.
func (s *FileStore) Read() (map[string]any, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return map[string]any{}, nil
	}

	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", s.path, err)
	}
	return v.AllSettings(), nil
}

// Write persists cfg, creating the parent directory on first save.
func (s *FileStore) Write(cfg map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("json")
	for key, value := range cfg {
		v.Set(key, value)
	}
	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("writing config file %s: %w", s.path, err)
	}
	return nil
}

// LoadDotEnv overlays a .env file from dir onto the process environment, the
// way NEO_* overrides are picked up. A missing .env is not an error.
func LoadDotEnv(dir string) error {
	envPath := filepath.Join(dir, ".env")
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(envPath)
}
