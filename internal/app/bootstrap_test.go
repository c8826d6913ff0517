package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/markwright/internal/plugin"
	"github.com/dshills/markwright/internal/plugin/builtin"
)

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()

	rt, err := NewRuntime(Options{
		SettingsPath: filepath.Join(t.TempDir(), "settings.toml"),
		PluginDirs:   []string{t.TempDir()},
		Registry:     plugin.NewRegistry(),
		Logger:       NullLogger,
	})
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	t.Cleanup(rt.Shutdown)
	return rt
}

func TestRuntimeConstructionRunsNoPluginCode(t *testing.T) {
	rt := newTestRuntime(t)

	// The theme plugin is default-enabled, but nothing activates until
	// Start.
	if got := rt.Manager.ActiveIDs(); len(got) != 0 {
		t.Errorf("ActiveIDs before Start = %v", got)
	}
}

func TestRuntimeStartActivatesDefaults(t *testing.T) {
	rt := newTestRuntime(t)

	if err := rt.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	got := rt.Manager.ActiveIDs()
	if len(got) != 1 || got[0] != builtin.ThemePluginID {
		t.Errorf("ActiveIDs = %v, want the default-enabled theme plugin", got)
	}
}

func TestRuntimeNotifyReadyAppliesTheme(t *testing.T) {
	rt := newTestRuntime(t)

	// Simulate a prior session's theme choice.
	rt.Settings.SetRaw("plugins/"+builtin.ThemePluginID+"/theme_id", "midnight")

	if err := rt.Start(); err != nil {
		t.Fatal(err)
	}
	if rt.Themes.Current() != DefaultThemeID {
		t.Errorf("theme before ready = %q", rt.Themes.Current())
	}

	rt.NotifyReady()
	if rt.Themes.Current() != "midnight" {
		t.Errorf("theme after ready = %q, want midnight", rt.Themes.Current())
	}
}

func TestRuntimeDisableBuiltin(t *testing.T) {
	rt := newTestRuntime(t)
	if err := rt.Start(); err != nil {
		t.Fatal(err)
	}

	rt.State.SetEnabled(builtin.ThemePluginID, false)
	rt.Manager.Reload()

	if got := rt.Manager.ActiveIDs(); len(got) != 0 {
		t.Errorf("ActiveIDs = %v, want empty after disable", got)
	}
}

func TestRuntimeActionsFlow(t *testing.T) {
	rt := newTestRuntime(t)
	if err := rt.Start(); err != nil {
		t.Fatal(err)
	}
	rt.NotifyReady()

	actions := rt.Manager.EnabledActions(rt.Host())
	if len(actions) == 0 {
		t.Fatal("theme plugin should contribute actions")
	}

	// Find and run the midnight action; it goes through the real facade.
	for _, a := range actions {
		if a.Spec.ID == builtin.ThemePluginID+".set.midnight" {
			a.Run(nil)
		}
	}
	if rt.Themes.Current() != "midnight" {
		t.Errorf("theme = %q after action", rt.Themes.Current())
	}
}

// writeLuaPlugin lays out an external plugin package under dir.
func writeLuaPlugin(t *testing.T, dir, id, script string) {
	t.Helper()

	pkg := filepath.Join(dir, "pkg")
	if err := os.MkdirAll(pkg, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := `{"id": "` + id + `", "name": "Shout", "version": "1.0.0"}`
	if err := os.WriteFile(filepath.Join(pkg, "plugin.json"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pkg, "init.lua"), []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRuntimeLuaActionsSurviveReload(t *testing.T) {
	dir := t.TempDir()
	writeLuaPlugin(t, dir, "com.example.shout", `
function activate() end
function register_actions()
	return {
		{ id = "com.example.shout.go", title = "Shout", run = function() mw.set_text("loud") end },
	}
end
`)

	rt, err := NewRuntime(Options{
		SettingsPath: filepath.Join(t.TempDir(), "settings.toml"),
		PluginDirs:   []string{dir},
		Registry:     plugin.NewRegistry(),
		Logger:       NullLogger,
	})
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	t.Cleanup(rt.Shutdown)

	rt.State.SetEnabled("com.example.shout", true)
	if err := rt.Start(); err != nil {
		t.Fatal(err)
	}

	find := func() bool {
		for _, a := range rt.Manager.EnabledActions(rt.Host()) {
			if a.Spec.ID == "com.example.shout.go" {
				a.Run(nil)
				return true
			}
		}
		return false
	}

	if !find() {
		t.Fatal("action missing after first reload")
	}

	// A watcher nudge or finished install re-runs discovery with no state
	// change; the live plugin must keep its menu entries.
	rt.Manager.Reload()
	rt.Document.SetText("")
	if !find() {
		t.Fatal("action missing after second reload")
	}
	if rt.Document.Text() != "loud" {
		t.Errorf("text = %q, handler should still reach the live interpreter", rt.Document.Text())
	}
}

func TestRuntimeAttachMessages(t *testing.T) {
	rt := newTestRuntime(t)

	rec := &recordMessages{}
	rt.AttachMessages(rec)
	rt.AttachMessages(nil) // ignored

	rt.Host().ShowError("t", "m")
	if len(rec.errs) != 1 {
		t.Errorf("errors = %v", rec.errs)
	}

	// Attaching must not activate anything.
	if got := rt.Manager.ActiveIDs(); len(got) != 0 {
		t.Errorf("ActiveIDs after attach = %v", got)
	}
}
