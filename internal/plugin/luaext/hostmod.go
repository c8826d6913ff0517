package luaext

import (
	"encoding/json"
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/markwright/internal/plugin/api"
)

// HostModuleName is the global table external plugins use to reach the host.
const HostModuleName = "mw"

// bindHostModule installs the "mw" module in the engine, backed by the given
// facade. The plugin id is baked in so scripts get namespaced settings
// without ever naming their own id.
//
// Exposed functions mirror the facade one to one:
//
//	mw.get_text() -> string
//	mw.set_text(s)
//	mw.insert_text(s)
//	mw.current_path() -> string|nil
//	mw.is_modified() -> bool
//	mw.show_info(title, message)
//	mw.show_warning(title, message)
//	mw.show_error(title, message)
//	mw.export(exporter_id) -> ok, err
//	mw.get_setting(key, fallback) -> string|table
//	mw.set_setting(key, value)    -- tables stored as JSON, scalars as text
//	mw.remove_setting(key)
//	mw.log_debug(msg) / log_info / log_warn / log_error
//	mw.set_theme(theme_id)
//	mw.get_theme() -> string
//	mw.list_themes() -> {string, ...}
func bindHostModule(e *Engine, pluginID string, host api.API) {
	e.RegisterModule(HostModuleName, map[string]lua.LGFunction{
		"get_text": func(L *lua.LState) int {
			L.Push(lua.LString(host.Text()))
			return 1
		},
		"set_text": func(L *lua.LState) int {
			host.SetText(L.CheckString(1))
			return 0
		},
		"insert_text": func(L *lua.LState) int {
			host.InsertAtCursor(L.CheckString(1))
			return 0
		},
		"current_path": func(L *lua.LState) int {
			path, ok := host.CurrentPath()
			if !ok {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(lua.LString(path))
			return 1
		},
		"is_modified": func(L *lua.LState) int {
			L.Push(lua.LBool(host.Modified()))
			return 1
		},
		"show_info": func(L *lua.LState) int {
			host.ShowInfo(L.CheckString(1), L.CheckString(2))
			return 0
		},
		"show_warning": func(L *lua.LState) int {
			host.ShowWarning(L.CheckString(1), L.CheckString(2))
			return 0
		},
		"show_error": func(L *lua.LState) int {
			host.ShowError(L.CheckString(1), L.CheckString(2))
			return 0
		},
		"export": func(L *lua.LState) int {
			err := host.ExportCurrent(L.CheckString(1))
			if err != nil {
				L.Push(lua.LFalse)
				L.Push(lua.LString(err.Error()))
				return 2
			}
			L.Push(lua.LTrue)
			return 1
		},
		"get_setting": func(L *lua.LState) int {
			key := L.CheckString(1)
			fallback := L.OptString(2, "")
			L.Push(settingToLua(L, host.PluginSetting(pluginID, key, fallback)))
			return 1
		},
		"set_setting": func(L *lua.LState) int {
			key := L.CheckString(1)
			raw, err := settingToString(L.CheckAny(2))
			if err != nil {
				L.ArgError(2, err.Error())
				return 0
			}
			host.SetPluginSetting(pluginID, key, raw)
			return 0
		},
		"remove_setting": func(L *lua.LState) int {
			host.RemovePluginSetting(pluginID, L.CheckString(1))
			return 0
		},
		"log_debug": func(L *lua.LState) int {
			host.LogDebug(L.CheckString(1))
			return 0
		},
		"log_info": func(L *lua.LState) int {
			host.LogInfo(L.CheckString(1))
			return 0
		},
		"log_warn": func(L *lua.LState) int {
			host.LogWarn(L.CheckString(1))
			return 0
		},
		"log_error": func(L *lua.LState) int {
			host.LogError(L.CheckString(1))
			return 0
		},
		"set_theme": func(L *lua.LState) int {
			host.SetTheme(L.CheckString(1))
			return 0
		},
		"get_theme": func(L *lua.LState) int {
			L.Push(lua.LString(host.Theme()))
			return 1
		},
		"list_themes": func(L *lua.LState) int {
			L.Push(toLuaValue(L, host.Themes()))
			return 1
		},
	})
}

// settingToString renders a Lua setting value for the string-keyed store.
// Strings pass through untouched, tables are JSON-encoded, and other scalars
// use their Go text form. Functions and nil are not storable.
func settingToString(v lua.LValue) (string, error) {
	switch val := v.(type) {
	case lua.LString:
		return string(val), nil
	case *lua.LTable:
		b, err := json.Marshal(toGoValue(val))
		if err != nil {
			return "", fmt.Errorf("setting value not storable: %v", err)
		}
		return string(b), nil
	default:
		g := toGoValue(v)
		if g == nil {
			return "", fmt.Errorf("setting value of type %s not storable", v.Type())
		}
		return fmt.Sprint(g), nil
	}
}

// settingToLua maps a stored setting back to Lua. JSON objects and arrays
// decode to tables; everything else comes back as the raw string, so values
// written by older plugin versions keep reading the same.
func settingToLua(L *lua.LState, raw string) lua.LValue {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var decoded interface{}
		if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
			return toLuaValue(L, decoded)
		}
	}
	return lua.LString(raw)
}
