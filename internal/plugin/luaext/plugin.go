package luaext

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/markwright/internal/plugin/api"
)

// Lifecycle function names looked up as script globals. A missing function
// is a no-op, not an error.
const (
	fnActivate        = "activate"
	fnDeactivate      = "deactivate"
	fnOnLoad          = "on_load"
	fnOnReady         = "on_ready"
	fnRegisterActions = "register_actions"
)

// LuaPlugin adapts an external Lua plugin directory to the plugin contract.
// The interpreter is created lazily on first use of the facade and torn down
// on Deactivate, so a disabled plugin holds no interpreter.
type LuaPlugin struct {
	manifest *Manifest

	mu     sync.Mutex
	engine *Engine
}

// NewLuaPlugin creates a plugin backed by the given manifest.
func NewLuaPlugin(manifest *Manifest) *LuaPlugin {
	return &LuaPlugin{manifest: manifest}
}

// Meta returns the manifest metadata.
func (p *LuaPlugin) Meta() api.Meta {
	return p.manifest.Meta()
}

// ensureLoaded creates the interpreter, binds the host module, and runs the
// entry script, once per activation session.
func (p *LuaPlugin) ensureLoaded(host api.API) (*Engine, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.engine != nil && !p.engine.IsClosed() {
		return p.engine, nil
	}

	e := NewEngine()
	bindHostModule(e, p.manifest.ID, host)
	if err := e.DoFile(p.manifest.MainPath()); err != nil {
		e.Close()
		return nil, fmt.Errorf("plugin %s: %w", p.manifest.ID, err)
	}
	p.engine = e
	return e, nil
}

// callIfDefined runs a lifecycle global when the script defines it.
func (p *LuaPlugin) callIfDefined(e *Engine, fn string) error {
	if !e.Has(fn) {
		return nil
	}
	if _, err := e.Call(fn); err != nil {
		return fmt.Errorf("plugin %s: %s: %w", p.manifest.ID, fn, err)
	}
	return nil
}

// OnLoad runs the script's on_load function, loading the script first if
// this is the first facade use of the session.
func (p *LuaPlugin) OnLoad(host api.API) error {
	e, err := p.ensureLoaded(host)
	if err != nil {
		return err
	}
	return p.callIfDefined(e, fnOnLoad)
}

// Activate loads the script (if not already loaded) and runs activate.
func (p *LuaPlugin) Activate(host api.API) error {
	e, err := p.ensureLoaded(host)
	if err != nil {
		return err
	}
	return p.callIfDefined(e, fnActivate)
}

// OnReady runs the script's on_ready function.
func (p *LuaPlugin) OnReady(host api.API) error {
	p.mu.Lock()
	e := p.engine
	p.mu.Unlock()
	if e == nil || e.IsClosed() {
		return nil
	}
	return p.callIfDefined(e, fnOnReady)
}

// Deactivate runs the script's deactivate function and tears the interpreter
// down. A later re-activation starts from a fresh interpreter.
func (p *LuaPlugin) Deactivate() error {
	p.mu.Lock()
	e := p.engine
	p.engine = nil
	p.mu.Unlock()

	if e == nil || e.IsClosed() {
		return nil
	}
	err := p.callIfDefined(e, fnDeactivate)
	e.Close()
	return err
}

// RegisterActions asks the script for its action table. An inactive plugin
// (no interpreter) contributes nothing. Malformed entries are skipped.
func (p *LuaPlugin) RegisterActions() []api.Action {
	p.mu.Lock()
	e := p.engine
	p.mu.Unlock()
	if e == nil || e.IsClosed() || !e.Has(fnRegisterActions) {
		return nil
	}

	results, err := e.Call(fnRegisterActions)
	if err != nil || len(results) == 0 {
		return nil
	}
	list, ok := results[0].(*lua.LTable)
	if !ok {
		return nil
	}

	var actions []api.Action
	list.ForEach(func(_, v lua.LValue) {
		entry, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		run, ok := tableFunc(entry, "run")
		if !ok {
			return
		}
		id := tableString(entry, "id")
		title := tableString(entry, "title")
		if id == "" || title == "" {
			return
		}
		menu := api.Menu(tableString(entry, "menu"))
		if !menu.Valid() {
			menu = api.MenuTools
		}

		actions = append(actions, api.Action{
			Spec: api.ActionSpec{
				ID:        id,
				Title:     title,
				Menu:      menu,
				Shortcut:  tableString(entry, "shortcut"),
				StatusTip: tableString(entry, "status_tip"),
				Toolbar:   tableBool(entry, "toolbar"),
			},
			Run: func(api.API) {
				// Errors surface through the manager's handler wrapper.
				if err := e.CallValue(run); err != nil {
					panic(err)
				}
			},
		})
	})
	return actions
}
