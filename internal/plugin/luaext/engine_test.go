package luaext

import (
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestEngineDoStringAndCall(t *testing.T) {
	e := NewEngine()
	defer e.Close()

	if err := e.DoString(`function add(a, b) return a + b end`); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	if !e.Has("add") {
		t.Fatal("add should exist")
	}
	if e.Has("missing") {
		t.Fatal("missing should not exist")
	}

	results, err := e.Call("add", lua.LNumber(2), lua.LNumber(3))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(results) != 1 || results[0] != lua.LNumber(5) {
		t.Errorf("results = %v", results)
	}
}

func TestEngineCallMissingFunction(t *testing.T) {
	e := NewEngine()
	defer e.Close()

	if _, err := e.Call("nope"); err == nil {
		t.Fatal("calling a missing function should error")
	}
}

func TestEngineCallNonFunction(t *testing.T) {
	e := NewEngine()
	defer e.Close()

	e.SetGlobal("value", lua.LNumber(7))
	if _, err := e.Call("value"); err == nil {
		t.Fatal("calling a non-function should error")
	}
}

func TestEngineLuaErrorReturned(t *testing.T) {
	e := NewEngine()
	defer e.Close()

	if err := e.DoString(`function boom() error("kaput") end`); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Call("boom"); err == nil {
		t.Fatal("lua error should surface as Go error")
	}
}

func TestEngineNoReturnValues(t *testing.T) {
	e := NewEngine()
	defer e.Close()

	if err := e.DoString(`function noop() end`); err != nil {
		t.Fatal(err)
	}
	results, err := e.Call("noop")
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("results = %v, want empty non-nil slice", results)
	}
}

func TestEngineRegisterModule(t *testing.T) {
	e := NewEngine()
	defer e.Close()

	var got string
	e.RegisterModule("testmod", map[string]lua.LGFunction{
		"record": func(L *lua.LState) int {
			got = L.CheckString(1)
			return 0
		},
	})

	if err := e.DoString(`testmod.record("hello")`); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	if got != "hello" {
		t.Errorf("got %q", got)
	}
}

func TestEngineCallValue(t *testing.T) {
	e := NewEngine()
	defer e.Close()

	if err := e.DoString(`ran = false; function setter() ran = true end`); err != nil {
		t.Fatal(err)
	}
	fn, ok := e.LuaState().GetGlobal("setter").(*lua.LFunction)
	if !ok {
		t.Fatal("setter should be a function")
	}
	if err := e.CallValue(fn); err != nil {
		t.Fatalf("CallValue: %v", err)
	}
	if e.LuaState().GetGlobal("ran") != lua.LTrue {
		t.Error("callback did not run")
	}
}

func TestEngineClosed(t *testing.T) {
	e := NewEngine()
	e.Close()
	e.Close() // idempotent

	if !e.IsClosed() {
		t.Fatal("engine should report closed")
	}
	if err := e.DoString(`x = 1`); err != ErrEngineClosed {
		t.Errorf("DoString on closed = %v", err)
	}
	if _, err := e.Call("x"); err != ErrEngineClosed {
		t.Errorf("Call on closed = %v", err)
	}
	if e.Has("x") {
		t.Error("Has on closed should be false")
	}
}

func TestBridgeRoundTrip(t *testing.T) {
	e := NewEngine()
	defer e.Close()
	L := e.LuaState()

	// Array table comes back as a slice.
	if err := e.DoString(`arr = {1, 2, 3}`); err != nil {
		t.Fatal(err)
	}
	if got, ok := toGoValue(L.GetGlobal("arr")).([]interface{}); !ok || len(got) != 3 {
		t.Errorf("arr = %#v", toGoValue(L.GetGlobal("arr")))
	}

	// Keyed table comes back as a map.
	if err := e.DoString(`obj = {name = "x", count = 2}`); err != nil {
		t.Fatal(err)
	}
	obj, ok := toGoValue(L.GetGlobal("obj")).(map[string]interface{})
	if !ok || obj["name"] != "x" || obj["count"] != int64(2) {
		t.Errorf("obj = %#v", obj)
	}

	// Circular table terminates.
	if err := e.DoString(`loop = {}; loop.self = loop`); err != nil {
		t.Fatal(err)
	}
	_ = toGoValue(L.GetGlobal("loop"))

	// Go to Lua.
	lv := toLuaValue(L, []string{"a", "b"})
	tbl, ok := lv.(*lua.LTable)
	if !ok || tbl.Len() != 2 {
		t.Errorf("toLuaValue([]string) = %v", lv)
	}
}
