package commands

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neo/pkg/neoerrors"
	"neo/pkg/neotypes"
)

// mockCommand implements neotypes.Command for registry tests.
type mockCommand struct {
	name        string
	executeFunc func(opts map[string]string, args []string, ctx *neotypes.PluginContext) error
}

func newMockCommand(name string) *mockCommand {
	return &mockCommand{name: name}
}

func (m *mockCommand) Name() string        { return m.name }
func (m *mockCommand) Description() string { return fmt.Sprintf("Mock command: %s", m.name) }

func (m *mockCommand) Options() []neotypes.CommandOption     { return nil }
func (m *mockCommand) Arguments() []neotypes.CommandArgument { return nil }

func (m *mockCommand) Execute(opts map[string]string, args []string, ctx *neotypes.PluginContext) error {
	if m.executeFunc != nil {
		return m.executeFunc(opts, args, ctx)
	}
	return nil
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	err := registry.Register(newMockCommand("pr"), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, registry.Size())

	cmd, ok := registry.Get("pr")
	require.True(t, ok)
	assert.Equal(t, "pr", cmd.Name())
}

func TestRegistry_RegisterDuplicateFails(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.Register(newMockCommand("pr"), nil))

	err := registry.Register(newMockCommand("pr"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
	assert.Equal(t, 1, registry.Size())
}

func TestRegistry_RegisterEmptyNameFails(t *testing.T) {
	registry := NewRegistry()

	err := registry.Register(newMockCommand(""), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")
}

func TestRegistry_Aliases(t *testing.T) {
	registry := NewRegistry()

	meta := &neotypes.CommandMetadata{Aliases: []string{"co"}}
	require.NoError(t, registry.Register(newMockCommand("checkout"), meta))

	cmd, ok := registry.Get("co")
	require.True(t, ok)
	assert.Equal(t, "checkout", cmd.Name())

	// Alias collisions are rejected in both directions.
	err := registry.Register(newMockCommand("co"), nil)
	assert.Error(t, err)
	err = registry.Register(newMockCommand("other"), &neotypes.CommandMetadata{Aliases: []string{"co"}})
	assert.Error(t, err)
}

func TestRegistry_GetByGroup(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.Register(newMockCommand("pr"),
		&neotypes.CommandMetadata{Group: "hosting"}))
	require.NoError(t, registry.Register(newMockCommand("issue"),
		&neotypes.CommandMetadata{Group: "hosting"}))
	require.NoError(t, registry.Register(newMockCommand("stash"), nil))

	hosting := registry.GetByGroup("hosting")
	require.Len(t, hosting, 2)
	assert.Equal(t, "issue", hosting[0].Name())
	assert.Equal(t, "pr", hosting[1].Name())

	// Commands registered without metadata never match a group.
	assert.Empty(t, registry.GetByGroup(""))
	assert.Empty(t, registry.GetByGroup("other"))
}

func TestRegistry_UnregisterIdempotent(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.Register(newMockCommand("pr"),
		&neotypes.CommandMetadata{Aliases: []string{"pull-request"}}))

	registry.Unregister("pr")
	assert.Equal(t, 0, registry.Size())
	_, ok := registry.Get("pull-request")
	assert.False(t, ok, "aliases are removed with the command")

	// Absent targets are a no-op, not an error.
	registry.Unregister("pr")
	registry.Unregister("never-existed")
}

func TestRegistry_ClearIdempotent(t *testing.T) {
	registry := NewRegistry()

	registry.Clear()

	require.NoError(t, registry.Register(newMockCommand("pr"), nil))
	registry.Clear()
	assert.Equal(t, 0, registry.Size())
	registry.Clear()
}

func TestRegistry_GetAllSorted(t *testing.T) {
	registry := NewRegistry()

	for _, name := range []string{"push", "clone", "fetch"} {
		require.NoError(t, registry.Register(newMockCommand(name), nil))
	}

	all := registry.GetAll()
	require.Len(t, all, 3)
	assert.Equal(t, "clone", all[0].Name())
	assert.Equal(t, "fetch", all[1].Name())
	assert.Equal(t, "push", all[2].Name())
}

func TestRegistry_DispatchUnknownCommand(t *testing.T) {
	registry := NewRegistry()

	result := registry.Dispatch("missing", nil, nil, nil)
	require.True(t, result.IsFailure())
	assert.Equal(t, neoerrors.CategoryCommand, result.Err().Category)
	assert.Contains(t, result.Err().Message, "unknown command")
	assert.NotEmpty(t, result.Err().Suggestions)
}

func TestRegistry_DispatchWrapsErrors(t *testing.T) {
	registry := NewRegistry()

	appErr := neoerrors.NewValidationError("branch", "", "branch name required")
	failing := newMockCommand("push")
	failing.executeFunc = func(_ map[string]string, _ []string, _ *neotypes.PluginContext) error {
		return appErr
	}
	require.NoError(t, registry.Register(failing, nil))

	plain := newMockCommand("pull")
	plain.executeFunc = func(_ map[string]string, _ []string, _ *neotypes.PluginContext) error {
		return fmt.Errorf("network down")
	}
	require.NoError(t, registry.Register(plain, nil))

	ok := newMockCommand("status")
	require.NoError(t, registry.Register(ok, nil))

	// AppErrors pass through untouched.
	result := registry.Dispatch("push", nil, nil, nil)
	require.True(t, result.IsFailure())
	assert.Same(t, appErr, result.Err())

	// Plain errors become CommandErrors wrapping the original.
	result = registry.Dispatch("pull", nil, nil, nil)
	require.True(t, result.IsFailure())
	assert.Equal(t, neoerrors.CategoryCommand, result.Err().Category)
	assert.Contains(t, result.Err().Message, "network down")

	assert.True(t, registry.Dispatch("status", nil, nil, nil).IsSuccess())
}
