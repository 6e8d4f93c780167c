package plugin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestReadManifest_JSON(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "plugin.json", `{
		"name": "gh-extras",
		"version": "1.2.0",
		"description": "Extra GitHub helpers",
		"main": "extras.lua",
		"author": "octocat",
		"neo": {"minVersion": "0.3.0"}
	}`)

	m, err := ReadManifest(dir)
	require.NoError(t, err)

	assert.Equal(t, "gh-extras", m.Name)
	assert.Equal(t, "1.2.0", m.Version)
	assert.Equal(t, "octocat", m.Author)
	assert.Equal(t, dir, m.Path())
	assert.Equal(t, filepath.Join(dir, "extras.lua"), m.EntryPoint())
	assert.Equal(t, "gh-extras v1.2.0", m.String())
	assert.Empty(t, m.MissingFields())
	assert.True(t, m.Enabled())

	min, ok := m.MinVersion()
	require.True(t, ok)
	assert.Equal(t, "0.3.0", min.String())
}

func TestReadManifest_YAML(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "plugin.yaml", `
name: todo-sync
version: 0.1.0
neo:
  enabled: false
`)

	m, err := ReadManifest(dir)
	require.NoError(t, err)

	assert.Equal(t, "todo-sync", m.Name)
	assert.False(t, m.Enabled())
	assert.Equal(t, filepath.Join(dir, DefaultEntryPoint), m.EntryPoint(),
		"a manifest without main falls back to the default entry point")
}

func TestReadManifest_JSONPreferredOverYAML(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "plugin.json", `{"name": "from-json", "version": "1.0.0"}`)
	writeManifest(t, dir, "plugin.yaml", "name: from-yaml\nversion: 2.0.0\n")

	m, err := ReadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-json", m.Name)
}

func TestReadManifest_Missing(t *testing.T) {
	_, err := ReadManifest(t.TempDir())
	assert.Error(t, err)
}

func TestReadManifest_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "plugin.json", `{"name": `)

	_, err := ReadManifest(dir)
	assert.Error(t, err)
}

func TestManifest_MissingFields(t *testing.T) {
	tests := []struct {
		name     string
		manifest Manifest
		missing  []string
	}{
		{"complete", Manifest{Name: "p", Version: "1.0.0"}, nil},
		{"no name", Manifest{Version: "1.0.0"}, []string{"name"}},
		{"no version", Manifest{Name: "p"}, []string{"version"}},
		{"empty", Manifest{}, []string{"name", "version"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.missing, tt.manifest.MissingFields())
		})
	}
}

func TestManifest_Enabled(t *testing.T) {
	enabled := true
	disabled := false

	assert.True(t, (&Manifest{}).Enabled(), "absent means enabled")
	assert.True(t, (&Manifest{Neo: NeoSettings{Enabled: &enabled}}).Enabled())
	assert.False(t, (&Manifest{Neo: NeoSettings{Enabled: &disabled}}).Enabled())
}

func TestManifest_MinVersion(t *testing.T) {
	_, ok := (&Manifest{}).MinVersion()
	assert.False(t, ok)

	_, ok = (&Manifest{Neo: NeoSettings{MinVersion: "not-a-version"}}).MinVersion()
	assert.False(t, ok)

	v, ok := (&Manifest{Neo: NeoSettings{MinVersion: "1.4.0"}}).MinVersion()
	require.True(t, ok)
	assert.Equal(t, uint64(1), v.Major())
}
