package plugin

import (
	lua "github.com/yuin/gopher-lua"
)

// toLuaValue converts a Go value into its Lua representation. Maps and
// slices convert recursively; unsupported types become nil.
func toLuaValue(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []any:
		t := L.NewTable()
		for i, item := range val {
			t.RawSetInt(i+1, toLuaValue(L, item))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		for k, item := range val {
			t.RawSetString(k, toLuaValue(L, item))
		}
		return t
	case map[string]string:
		t := L.NewTable()
		for k, item := range val {
			t.RawSetString(k, lua.LString(item))
		}
		return t
	case lua.LValue:
		return val
	default:
		return lua.LNil
	}
}

// fromLuaValue converts a Lua value into a Go value. Tables with contiguous
// integer keys become []any, other tables map[string]any.
func fromLuaValue(lv lua.LValue) any {
	switch val := lv.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		return float64(val)
	case lua.LString:
		return string(val)
	case *lua.LTable:
		return tableToGo(val)
	default:
		return nil
	}
}

func tableToGo(t *lua.LTable) any {
	length := t.Len()
	if length > 0 {
		// Array-shaped table.
		arr := make([]any, 0, length)
		for i := 1; i <= length; i++ {
			arr = append(arr, fromLuaValue(t.RawGetInt(i)))
		}
		return arr
	}

	m := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		if key, ok := k.(lua.LString); ok {
			m[string(key)] = fromLuaValue(v)
		}
	})
	return m
}

// tableString reads a string field from a table.
func tableString(t *lua.LTable, key string) (string, bool) {
	v := t.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s), true
	}
	return "", false
}

// tableFunc reads a function field from a table.
func tableFunc(t *lua.LTable, key string) (*lua.LFunction, bool) {
	v := t.RawGetString(key)
	if fn, ok := v.(*lua.LFunction); ok {
		return fn, true
	}
	return nil, false
}
