package plugin

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"neo/pkg/neotypes"
)

// ModuleLoader loads a dynamic unit by path and returns its declared
// capability surface, validated structurally before use.
type ModuleLoader interface {
	Load(path string) (neotypes.Plugin, error)
}

// LuaModuleLoader executes a Lua entry point and adapts the table it
// returns behind the Plugin interface. Each plugin gets its own interpreter
// state so one plugin's globals cannot leak into another's.
type LuaModuleLoader struct{}

// structuralError marks a module that loaded but does not satisfy the
// plugin shape; the loader attaches actionable suggestions to these.
type structuralError struct {
	reason string
}

func (e *structuralError) Error() string {
	return e.reason
}

// Load runs the entry point and type-checks its return value: a table with
// a string name, a string version, and a callable initialize (dispose is
// optional). The probe happens once here; the adapter caches the results.
func (LuaModuleLoader) Load(path string) (neotypes.Plugin, error) {
	L := lua.NewState()

	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("executing %s: %w", path, err)
	}

	ret := L.Get(-1)
	L.Pop(1)

	export, ok := ret.(*lua.LTable)
	if !ok {
		L.Close()
		return nil, &structuralError{reason: fmt.Sprintf("entry point must return a plugin table, got %s", ret.Type())}
	}

	name, ok := tableString(export, "name")
	if !ok || name == "" {
		L.Close()
		return nil, &structuralError{reason: "plugin table is missing a string 'name'"}
	}
	version, ok := tableString(export, "version")
	if !ok || version == "" {
		L.Close()
		return nil, &structuralError{reason: "plugin table is missing a string 'version'"}
	}
	initFn, ok := tableFunc(export, "initialize")
	if !ok {
		L.Close()
		return nil, &structuralError{reason: "plugin table is missing a callable 'initialize'"}
	}
	disposeFn, _ := tableFunc(export, "dispose")

	return &luaPlugin{
		state:     L,
		name:      name,
		version:   version,
		initFn:    initFn,
		disposeFn: disposeFn,
	}, nil
}

// luaPlugin adapts a validated Lua plugin table to the Plugin interface.
// All calls into the interpreter happen on the host's single logical thread
// of control.
type luaPlugin struct {
	state     *lua.LState
	name      string
	version   string
	initFn    *lua.LFunction
	disposeFn *lua.LFunction
	disposed  bool
}

func (p *luaPlugin) Name() string {
	return p.name
}

func (p *luaPlugin) Version() string {
	return p.version
}

// Initialize calls the plugin's initialize function with the context table.
func (p *luaPlugin) Initialize(ctx *neotypes.PluginContext) error {
	ctxTable := buildContextTable(p.state, ctx)
	p.state.Push(p.initFn)
	p.state.Push(ctxTable)
	if err := p.state.PCall(1, 0, nil); err != nil {
		return fmt.Errorf("initialize failed: %w", err)
	}
	return nil
}

// Dispose calls the optional dispose function and closes the interpreter.
// Safe to call twice.
func (p *luaPlugin) Dispose() error {
	if p.disposed {
		return nil
	}
	p.disposed = true

	var callErr error
	if p.disposeFn != nil {
		p.state.Push(p.disposeFn)
		callErr = p.state.PCall(0, 0, nil)
	}
	p.state.Close()
	if callErr != nil {
		return fmt.Errorf("dispose failed: %w", callErr)
	}
	return nil
}
