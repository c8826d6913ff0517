package luaext

import (
	"errors"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// ErrEngineClosed is returned by operations on a closed engine.
var ErrEngineClosed = errors.New("lua engine closed")

// Engine wraps a gopher-lua interpreter for one plugin.
//
// LState is not goroutine-safe; the mutex serializes access from Go code.
// Each plugin owns its own Engine, so one plugin's script errors cannot
// corrupt another's interpreter.
type Engine struct {
	mu     sync.Mutex
	L      *lua.LState
	closed bool
}

// NewEngine creates an interpreter with the full standard libraries open.
// Plugins are trusted code the user chose to install; capability gating
// happens at the host facade, not the interpreter.
func NewEngine() *Engine {
	return &Engine{L: lua.NewState()}
}

// DoFile executes a Lua file in the engine.
func (e *Engine) DoFile(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	return e.recovered(func() error {
		return e.L.DoFile(path)
	})
}

// DoString executes a Lua chunk in the engine.
func (e *Engine) DoString(code string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	return e.recovered(func() error {
		return e.L.DoString(code)
	})
}

// Has reports whether a global Lua function with the given name exists.
func (e *Engine) Has(fn string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return false
	}
	return e.L.GetGlobal(fn).Type() == lua.LTFunction
}

// Call calls a global Lua function. Returns the function's results, or an
// empty slice when it returns nothing.
func (e *Engine) Call(fn string, args ...lua.LValue) ([]lua.LValue, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrEngineClosed
	}

	fnVal := e.L.GetGlobal(fn)
	if fnVal == lua.LNil {
		return nil, fmt.Errorf("function %q not found", fn)
	}
	if fnVal.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%q is not a function (got %s)", fn, fnVal.Type())
	}

	stackTop := e.L.GetTop()
	e.L.Push(fnVal)
	for _, arg := range args {
		e.L.Push(arg)
	}

	err := e.recovered(func() error {
		return e.L.PCall(len(args), lua.MultRet, nil)
	})
	if err != nil {
		return nil, err
	}

	nRet := e.L.GetTop() - stackTop
	if nRet <= 0 {
		return []lua.LValue{}, nil
	}
	results := make([]lua.LValue, nRet)
	for i := 0; i < nRet; i++ {
		results[i] = e.L.Get(stackTop + i + 1)
	}
	e.L.Pop(nRet)
	return results, nil
}

// CallValue calls a Lua function value directly, discarding results. Used
// for callbacks captured from Lua tables (action run functions).
func (e *Engine) CallValue(fn *lua.LFunction, args ...lua.LValue) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	return e.recovered(func() error {
		e.L.Push(fn)
		for _, arg := range args {
			e.L.Push(arg)
		}
		return e.L.PCall(len(args), 0, nil)
	})
}

// SetGlobal sets a global variable in the interpreter.
func (e *Engine) SetGlobal(name string, value lua.LValue) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.L.SetGlobal(name, value)
}

// RegisterModule installs a table of Go functions as a global module.
func (e *Engine) RegisterModule(name string, funcs map[string]lua.LGFunction) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	mod := e.L.SetFuncs(e.L.NewTable(), funcs)
	e.L.SetGlobal(name, mod)
}

// LuaState returns the underlying interpreter. Direct access bypasses the
// mutex; callers are responsible for synchronization.
func (e *Engine) LuaState() *lua.LState {
	return e.L
}

// IsClosed reports whether the engine has been closed.
func (e *Engine) IsClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Close releases the interpreter. Idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.L.Close()
	e.closed = true
	return nil
}

// recovered executes fn converting a Lua runtime panic into an error.
func (e *Engine) recovered(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}
