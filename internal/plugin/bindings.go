package plugin

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"neo/pkg/neoerrors"
	"neo/pkg/neotypes"
)

// buildContextTable exposes the plugin context to Lua as a table of bound
// functions:
//
//	ctx.version                   -- running tool version string
//	ctx.log.debug/info/warn/error(msg)
//	ctx.config.get/set/has/delete(path[, value])
//	ctx.config.load()/save()      -- return ok, err
//	ctx.events.on/once/off(event, fn), ctx.events.emit(event, data)
//	ctx.commands.register(spec), ctx.commands.unregister(name)
func buildContextTable(L *lua.LState, ctx *neotypes.PluginContext) *lua.LTable {
	root := L.NewTable()
	root.RawSetString("version", lua.LString(ctx.Version))
	root.RawSetString("log", logTable(L, ctx))
	root.RawSetString("config", configTable(L, ctx))
	root.RawSetString("events", eventsTable(L, ctx))
	root.RawSetString("commands", commandsTable(L, ctx))
	return root
}

func logTable(L *lua.LState, ctx *neotypes.PluginContext) *lua.LTable {
	t := L.NewTable()
	bind := func(name string, sink func(msg interface{}, keyvals ...interface{})) {
		t.RawSetString(name, L.NewFunction(func(L *lua.LState) int {
			sink(L.CheckString(1))
			return 0
		}))
	}
	bind("debug", ctx.Logger.Debug)
	bind("info", ctx.Logger.Info)
	bind("warn", ctx.Logger.Warn)
	bind("error", ctx.Logger.Error)
	return t
}

func configTable(L *lua.LState, ctx *neotypes.PluginContext) *lua.LTable {
	t := L.NewTable()

	t.RawSetString("get", L.NewFunction(func(L *lua.LState) int {
		value, ok := ctx.Config.Get(L.CheckString(1))
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(toLuaValue(L, value))
		return 1
	}))

	t.RawSetString("set", L.NewFunction(func(L *lua.LState) int {
		ctx.Config.Set(L.CheckString(1), fromLuaValue(L.Get(2)))
		return 0
	}))

	t.RawSetString("has", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(ctx.Config.Has(L.CheckString(1))))
		return 1
	}))

	t.RawSetString("delete", L.NewFunction(func(L *lua.LState) int {
		ctx.Config.Delete(L.CheckString(1))
		return 0
	}))

	pushResultErr := func(L *lua.LState, err *neoerrors.AppError) int {
		if err == nil {
			L.Push(lua.LTrue)
			L.Push(lua.LNil)
		} else {
			L.Push(lua.LFalse)
			L.Push(lua.LString(err.Message))
		}
		return 2
	}

	t.RawSetString("load", L.NewFunction(func(L *lua.LState) int {
		return pushResultErr(L, ctx.Config.Load().Err())
	}))

	t.RawSetString("save", L.NewFunction(func(L *lua.LState) int {
		return pushResultErr(L, ctx.Config.Save().Err())
	}))

	return t
}

func eventsTable(L *lua.LState, ctx *neotypes.PluginContext) *lua.LTable {
	t := L.NewTable()

	// Lua functions get one Go wrapper each so the bus's set semantics and
	// Off keep working from the Lua side.
	wrappers := make(map[*lua.LFunction]neotypes.EventHandler)
	wrap := func(fn *lua.LFunction) neotypes.EventHandler {
		if h, ok := wrappers[fn]; ok {
			return h
		}
		h := func(data any) error {
			L.Push(fn)
			L.Push(toLuaValue(L, data))
			return L.PCall(1, 0, nil)
		}
		wrappers[fn] = h
		return h
	}

	t.RawSetString("on", L.NewFunction(func(L *lua.LState) int {
		ctx.Events.On(L.CheckString(1), wrap(L.CheckFunction(2)))
		return 0
	}))

	t.RawSetString("once", L.NewFunction(func(L *lua.LState) int {
		ctx.Events.Once(L.CheckString(1), wrap(L.CheckFunction(2)))
		return 0
	}))

	t.RawSetString("off", L.NewFunction(func(L *lua.LState) int {
		fn := L.CheckFunction(2)
		if h, ok := wrappers[fn]; ok {
			ctx.Events.Off(L.CheckString(1), h)
			delete(wrappers, fn)
		}
		return 0
	}))

	t.RawSetString("emit", L.NewFunction(func(L *lua.LState) int {
		ctx.Events.Emit(L.CheckString(1), fromLuaValue(L.Get(2)))
		return 0
	}))

	return t
}

func commandsTable(L *lua.LState, ctx *neotypes.PluginContext) *lua.LTable {
	t := L.NewTable()

	t.RawSetString("register", L.NewFunction(func(L *lua.LState) int {
		spec := L.CheckTable(1)
		cmd, meta, err := commandFromTable(L, spec)
		if err == nil {
			err = ctx.Commands.Register(cmd, meta)
		}
		if err != nil {
			L.Push(lua.LString(err.Error()))
			return 1
		}
		L.Push(lua.LNil)
		return 1
	}))

	t.RawSetString("unregister", L.NewFunction(func(L *lua.LState) int {
		ctx.Commands.Unregister(L.CheckString(1))
		return 0
	}))

	return t
}

// commandFromTable builds a registry command from a Lua spec table:
//
//	{ name = "...", description = "...", group = "...", hidden = false,
//	  aliases = {...}, execute = function(opts, args) ... end }
func commandFromTable(L *lua.LState, spec *lua.LTable) (neotypes.Command, *neotypes.CommandMetadata, error) {
	name, ok := tableString(spec, "name")
	if !ok || name == "" {
		return nil, nil, fmt.Errorf("command spec requires a string 'name'")
	}
	execute, ok := tableFunc(spec, "execute")
	if !ok {
		return nil, nil, fmt.Errorf("command %s requires a callable 'execute'", name)
	}
	description, _ := tableString(spec, "description")

	var meta *neotypes.CommandMetadata
	group, hasGroup := tableString(spec, "group")
	hidden := spec.RawGetString("hidden") == lua.LTrue
	var aliases []string
	if aliasTable, ok := spec.RawGetString("aliases").(*lua.LTable); ok {
		for i := 1; i <= aliasTable.Len(); i++ {
			if alias, ok := aliasTable.RawGetInt(i).(lua.LString); ok {
				aliases = append(aliases, string(alias))
			}
		}
	}
	if hasGroup || hidden || len(aliases) > 0 {
		meta = &neotypes.CommandMetadata{Group: group, Aliases: aliases, Hidden: hidden}
	}

	return &luaCommand{
		state:       L,
		name:        name,
		description: description,
		execute:     execute,
	}, meta, nil
}

// luaCommand dispatches registry executions into a plugin-provided Lua
// function. The function receives (opts, args) tables; returning a string
// reports a command failure with that message.
type luaCommand struct {
	state       *lua.LState
	name        string
	description string
	execute     *lua.LFunction
}

func (c *luaCommand) Name() string {
	return c.name
}

func (c *luaCommand) Description() string {
	return c.description
}

func (c *luaCommand) Options() []neotypes.CommandOption {
	return nil
}

func (c *luaCommand) Arguments() []neotypes.CommandArgument {
	return nil
}

func (c *luaCommand) Execute(opts map[string]string, args []string, _ *neotypes.PluginContext) error {
	L := c.state

	argTable := L.NewTable()
	for i, arg := range args {
		argTable.RawSetInt(i+1, lua.LString(arg))
	}

	L.Push(c.execute)
	L.Push(toLuaValue(L, opts))
	L.Push(argTable)
	if err := L.PCall(2, 1, nil); err != nil {
		return neoerrors.NewCommandError(c.name, err.Error()).WithCause(err)
	}

	ret := L.Get(-1)
	L.Pop(1)
	if msg, ok := ret.(lua.LString); ok && msg != "" {
		return neoerrors.NewCommandError(c.name, string(msg))
	}
	return nil
}
