package app

import (
	"testing"

	"github.com/dshills/markwright/internal/settings"
)

type recordMessages struct {
	infos, warnings, errs []string
}

func (r *recordMessages) Info(title, message string)    { r.infos = append(r.infos, title) }
func (r *recordMessages) Warning(title, message string) { r.warnings = append(r.warnings, title) }
func (r *recordMessages) Error(title, message string)   { r.errs = append(r.errs, title) }

func newTestHost(t *testing.T) (*HostAPI, *recordMessages, *settings.Memory) {
	t.Helper()

	store := settings.NewMemory()
	messages := &recordMessages{}
	host := NewHostAPI(NewDocument(), messages, store, NullLogger, NewThemes(), NewExporterRegistry())
	return host, messages, store
}

func TestHostAPIDocument(t *testing.T) {
	host, _, _ := newTestHost(t)

	host.SetText("hello")
	host.doc.SetCursor(len("hello"))
	host.InsertAtCursor(" world")
	if got := host.Text(); got != "hello world" {
		t.Errorf("Text = %q", got)
	}
	if !host.Modified() {
		t.Error("document should be modified")
	}
	if _, ok := host.CurrentPath(); ok {
		t.Error("unsaved document should have no path")
	}
}

func TestHostAPIMessages(t *testing.T) {
	host, messages, _ := newTestHost(t)

	host.ShowInfo("i", "m")
	host.ShowWarning("w", "m")
	host.ShowError("e", "m")

	if len(messages.infos) != 1 || len(messages.warnings) != 1 || len(messages.errs) != 1 {
		t.Errorf("messages = %+v", messages)
	}
}

func TestHostAPISettingsNamespaced(t *testing.T) {
	host, _, store := newTestHost(t)

	host.SetPluginSetting("com.example.a", "key", "va")
	host.SetPluginSetting("com.example.b", "key", "vb")

	if got := host.PluginSetting("com.example.a", "key", ""); got != "va" {
		t.Errorf("a/key = %q", got)
	}
	if got := host.PluginSetting("com.example.b", "key", ""); got != "vb" {
		t.Errorf("b/key = %q", got)
	}
	// Raw keys carry the plugin id prefix.
	if got := store.GetRaw("plugins/com.example.a/key", ""); got != "va" {
		t.Errorf("raw key = %q, keys = %v", got, store.Keys())
	}

	host.RemovePluginSetting("com.example.a", "key")
	if got := host.PluginSetting("com.example.a", "key", "fb"); got != "fb" {
		t.Errorf("after remove = %q", got)
	}
	// Removing one plugin's key leaves the other's alone.
	if got := host.PluginSetting("com.example.b", "key", ""); got != "vb" {
		t.Errorf("b/key after removing a = %q", got)
	}
}

func TestHostAPIThemes(t *testing.T) {
	host, _, _ := newTestHost(t)

	if host.Theme() != DefaultThemeID {
		t.Errorf("Theme = %q", host.Theme())
	}
	host.SetTheme("midnight")
	if host.Theme() != "midnight" {
		t.Errorf("Theme = %q", host.Theme())
	}
	host.SetTheme("unknown")
	if host.Theme() != DefaultThemeID {
		t.Errorf("unknown theme should fall back, got %q", host.Theme())
	}
	if got := host.Themes(); len(got) != 3 {
		t.Errorf("Themes = %v", got)
	}
}

func TestHostAPIExportWithoutPath(t *testing.T) {
	host, _, _ := newTestHost(t)
	if err := host.ExportCurrent("html"); err == nil {
		t.Error("export of a pathless document should error")
	}
}
