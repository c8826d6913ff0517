package plugin

import (
	"errors"
	"testing"

	"github.com/dshills/markwright/internal/plugin/api"
	"github.com/dshills/markwright/internal/settings"
)

// fakeAPI records facade calls made by plugins under test.
type fakeAPI struct {
	text   string
	theme  string
	errors []string
	infos  []string
	store  map[string]string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{theme: "default", store: make(map[string]string)}
}

func (f *fakeAPI) Text() string                { return f.text }
func (f *fakeAPI) SetText(text string)         { f.text = text }
func (f *fakeAPI) InsertAtCursor(text string)  { f.text += text }
func (f *fakeAPI) CurrentPath() (string, bool) { return "", false }
func (f *fakeAPI) Modified() bool              { return false }

func (f *fakeAPI) ShowInfo(title, message string) { f.infos = append(f.infos, title+": "+message) }

func (f *fakeAPI) ShowWarning(title, message string) {}

func (f *fakeAPI) ShowError(title, message string) {
	f.errors = append(f.errors, title+": "+message)
}

func (f *fakeAPI) ExportCurrent(exporterID string) error { return nil }

func (f *fakeAPI) PluginSetting(pluginID, key, fallback string) string {
	if v, ok := f.store[pluginID+"/"+key]; ok {
		return v
	}
	return fallback
}
func (f *fakeAPI) SetPluginSetting(pluginID, key, value string) {
	f.store[pluginID+"/"+key] = value
}
func (f *fakeAPI) RemovePluginSetting(pluginID, key string) {
	delete(f.store, pluginID+"/"+key)
}

func (f *fakeAPI) LogDebug(string) {}
func (f *fakeAPI) LogInfo(string)  {}
func (f *fakeAPI) LogWarn(string)  {}
func (f *fakeAPI) LogError(string) {}

func (f *fakeAPI) SetTheme(themeID string) { f.theme = themeID }
func (f *fakeAPI) Theme() string           { return f.theme }
func (f *fakeAPI) Themes() []string        { return []string{"default"} }

var _ api.API = (*fakeAPI)(nil)

// counting is a plugin that tallies lifecycle calls and can be told to fail
// at each stage.
type counting struct {
	id string

	activates   int
	deactivates int
	loads       int
	readies     int

	failActivate   bool
	panicActivate  bool
	failLoad       bool
	panicReady     bool
	panicActions   bool
	panicHandler   bool
	actionContribs []api.Action
}

func (p *counting) Meta() api.Meta {
	return api.Meta{ID: p.id, Name: p.id, Version: "1.0.0"}
}

func (p *counting) Activate(host api.API) error {
	p.activates++
	if p.panicActivate {
		panic("activate blew up")
	}
	if p.failActivate {
		return errors.New("activate failed")
	}
	return nil
}

func (p *counting) Deactivate() error {
	p.deactivates++
	return nil
}

func (p *counting) OnLoad(host api.API) error {
	p.loads++
	if p.failLoad {
		return errors.New("load failed")
	}
	return nil
}

func (p *counting) OnReady(host api.API) error {
	p.readies++
	if p.panicReady {
		panic("ready blew up")
	}
	return nil
}

func (p *counting) RegisterActions() []api.Action {
	if p.panicActions {
		panic("actions blew up")
	}
	if p.actionContribs != nil {
		return p.actionContribs
	}
	run := func(host api.API) {
		if p.panicHandler {
			panic("handler blew up")
		}
		host.SetText("ran " + p.id)
	}
	return []api.Action{{
		Spec: api.ActionSpec{ID: p.id + ".go", Title: "Go", Menu: api.MenuTools},
		Run:  run,
	}}
}

// plain has no hooks at all.
type plain struct {
	api.Base
	activates int
}

func (p *plain) Activate(host api.API) error {
	p.activates++
	return nil
}

func newTestManager(t *testing.T, plugins []api.Plugin, opts ...ManagerOption) (*Manager, *StateStore) {
	t.Helper()

	entries := make([]Discovered, 0, len(plugins))
	for _, p := range plugins {
		entries = append(entries, Discovered{Factory: Instance(p), EntryPointName: p.Meta().ID})
	}
	discovery := NewDiscovery(WithSources(NewStaticSource(entries...)))

	state, err := NewStateStore(settings.NewMemory())
	if err != nil {
		t.Fatalf("NewStateStore: %v", err)
	}

	m, err := NewManager(discovery, state, opts...)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m, state
}

func TestNewManagerNilArguments(t *testing.T) {
	state, _ := newTestState(t)
	if _, err := NewManager(nil, state); !errors.Is(err, ErrNilDiscovery) {
		t.Errorf("nil discovery: got %v", err)
	}
	d := NewDiscovery()
	if _, err := NewManager(d, nil); !errors.Is(err, ErrNilStateStore) {
		t.Errorf("nil state: got %v", err)
	}
}

func TestReloadActivatesEnabledOnly(t *testing.T) {
	a := &counting{id: "com.example.a"}
	b := &counting{id: "com.example.b"}
	m, state := newTestManager(t, []api.Plugin{a, b}, WithAPI(newFakeAPI()))

	state.SetEnabled("com.example.a", true)
	m.Reload()

	if a.activates != 1 {
		t.Errorf("a activates = %d, want 1", a.activates)
	}
	if b.activates != 0 {
		t.Errorf("b activates = %d, want 0", b.activates)
	}
	if got := m.ActiveIDs(); len(got) != 1 || got[0] != "com.example.a" {
		t.Errorf("ActiveIDs = %v", got)
	}
}

func TestReloadIdempotent(t *testing.T) {
	p := &counting{id: "com.example.p"}
	m, state := newTestManager(t, []api.Plugin{p}, WithAPI(newFakeAPI()))

	state.SetEnabled("com.example.p", true)
	m.Reload()
	m.Reload()
	m.Reload()

	if p.activates != 1 {
		t.Errorf("activates = %d, want 1 (already-active plugin must not re-activate)", p.activates)
	}
	if p.deactivates != 0 {
		t.Errorf("deactivates = %d, want 0", p.deactivates)
	}
}

func TestReloadDeactivatesDisabled(t *testing.T) {
	p := &counting{id: "com.example.p"}
	m, state := newTestManager(t, []api.Plugin{p}, WithAPI(newFakeAPI()))

	state.SetEnabled("com.example.p", true)
	m.Reload()
	state.SetEnabled("com.example.p", false)
	m.Reload()

	if p.deactivates != 1 {
		t.Errorf("deactivates = %d, want 1", p.deactivates)
	}
	if got := m.ActiveIDs(); len(got) != 0 {
		t.Errorf("ActiveIDs = %v, want empty", got)
	}
}

func TestOnLoadOncePerProcess(t *testing.T) {
	p := &counting{id: "com.example.p"}
	m, state := newTestManager(t, []api.Plugin{p}, WithAPI(newFakeAPI()))

	state.SetEnabled("com.example.p", true)
	m.Reload()
	state.SetEnabled("com.example.p", false)
	m.Reload()
	state.SetEnabled("com.example.p", true)
	m.Reload()

	if p.loads != 1 {
		t.Errorf("loads = %d, want 1 (once per process)", p.loads)
	}
	if p.activates != 2 {
		t.Errorf("activates = %d, want 2", p.activates)
	}
}

func TestOnLoadFailureStillMarksAttempted(t *testing.T) {
	p := &counting{id: "com.example.p", failLoad: true}
	m, state := newTestManager(t, []api.Plugin{p}, WithAPI(newFakeAPI()))

	state.SetEnabled("com.example.p", true)
	m.Reload()
	state.SetEnabled("com.example.p", false)
	m.Reload()
	state.SetEnabled("com.example.p", true)
	m.Reload()

	if p.loads != 1 {
		t.Errorf("loads = %d, want 1 (failed OnLoad must not retry)", p.loads)
	}
	// A failed OnLoad does not block activation.
	if p.activates != 2 {
		t.Errorf("activates = %d, want 2", p.activates)
	}
}

func TestOnReadyOncePerActivationSession(t *testing.T) {
	p := &counting{id: "com.example.p"}
	m, state := newTestManager(t, []api.Plugin{p}, WithAPI(newFakeAPI()))

	state.SetEnabled("com.example.p", true)
	m.Reload()
	m.OnAppReady()
	m.OnAppReady()

	if p.readies != 1 {
		t.Errorf("readies = %d, want 1 within one session", p.readies)
	}

	// Disable and re-enable: a new activation session permits OnReady again.
	state.SetEnabled("com.example.p", false)
	m.Reload()
	state.SetEnabled("com.example.p", true)
	m.Reload()
	m.OnAppReady()

	if p.readies != 2 {
		t.Errorf("readies = %d, want 2 after re-activation", p.readies)
	}
}

func TestOnAppReadySkipsInactive(t *testing.T) {
	p := &counting{id: "com.example.p"}
	m, _ := newTestManager(t, []api.Plugin{p}, WithAPI(newFakeAPI()))

	m.Reload() // not enabled, stays inactive
	m.OnAppReady()

	if p.readies != 0 {
		t.Errorf("readies = %d, want 0 for inactive plugin", p.readies)
	}
}

func TestHooklessPluginActivates(t *testing.T) {
	p := &plain{Base: api.Base{Info: api.Meta{ID: "com.example.plain", Name: "Plain", Version: "1.0.0"}}}
	m, state := newTestManager(t, []api.Plugin{p}, WithAPI(newFakeAPI()))

	state.SetEnabled("com.example.plain", true)
	m.Reload()
	m.OnAppReady()

	if p.activates != 1 {
		t.Errorf("activates = %d, want 1", p.activates)
	}
}

func TestActivateFailureIsolated(t *testing.T) {
	bad := &counting{id: "com.example.bad", failActivate: true}
	worse := &counting{id: "com.example.worse", panicActivate: true}
	good := &counting{id: "com.example.good"}
	m, state := newTestManager(t, []api.Plugin{bad, worse, good}, WithAPI(newFakeAPI()))

	state.SetEnabled("com.example.bad", true)
	state.SetEnabled("com.example.worse", true)
	state.SetEnabled("com.example.good", true)
	m.Reload()

	got := m.ActiveIDs()
	if len(got) != 1 || got[0] != "com.example.good" {
		t.Errorf("ActiveIDs = %v, want only the good plugin", got)
	}
}

func TestPanickingReadyHookIsolated(t *testing.T) {
	bad := &counting{id: "com.example.bad", panicReady: true}
	good := &counting{id: "com.example.good"}
	m, state := newTestManager(t, []api.Plugin{bad, good}, WithAPI(newFakeAPI()))

	state.SetEnabled("com.example.bad", true)
	state.SetEnabled("com.example.good", true)
	m.Reload()
	m.OnAppReady()

	if good.readies != 1 {
		t.Errorf("good plugin readies = %d, want 1 despite sibling panic", good.readies)
	}
	// The panicking plugin stays active; only its hook failed.
	if got := m.ActiveIDs(); len(got) != 2 {
		t.Errorf("ActiveIDs = %v, want both", got)
	}
}

func TestReloadWithoutAPIDiscoveryOnly(t *testing.T) {
	p := &counting{id: "com.example.p"}
	m, state := newTestManager(t, []api.Plugin{p})

	state.SetEnabled("com.example.p", true)
	m.Reload()

	if p.activates != 0 {
		t.Errorf("activates = %d, want 0 without a facade", p.activates)
	}
	if got := m.ActiveIDs(); len(got) != 0 {
		t.Errorf("ActiveIDs = %v, want empty", got)
	}
	if got := m.ListPlugins(); len(got) != 1 {
		t.Errorf("ListPlugins = %v, discovery should still work", got)
	}
}

func TestDuplicateIDLastWinsKeepsPosition(t *testing.T) {
	first := &counting{id: "com.example.dup"}
	other := &counting{id: "com.example.other"}
	second := &counting{id: "com.example.dup"}
	m, state := newTestManager(t, []api.Plugin{first, other, second}, WithAPI(newFakeAPI()))

	state.SetEnabled("com.example.dup", true)
	m.Reload()

	// The later registration's instance wins.
	if second.activates != 1 || first.activates != 0 {
		t.Errorf("activates first=%d second=%d, want later instance to win",
			first.activates, second.activates)
	}

	// But the id keeps its first-seen position in the list.
	infos := m.ListPlugins()
	if len(infos) != 2 {
		t.Fatalf("ListPlugins = %v", infos)
	}
	if infos[0].PluginID != "com.example.dup" || infos[1].PluginID != "com.example.other" {
		t.Errorf("order = [%s %s], want dup first", infos[0].PluginID, infos[1].PluginID)
	}
}

func TestEnabledActionsFiltersAndBindsHost(t *testing.T) {
	a := &counting{id: "com.example.a"}
	b := &counting{id: "com.example.b"}
	m, state := newTestManager(t, []api.Plugin{a, b}, WithAPI(newFakeAPI()))

	state.SetEnabled("com.example.a", true)
	m.Reload()

	host := newFakeAPI()
	actions := m.EnabledActions(host)
	if len(actions) != 1 {
		t.Fatalf("got %d actions, want 1", len(actions))
	}
	if actions[0].Spec.ID != "com.example.a.go" {
		t.Errorf("action id = %q", actions[0].Spec.ID)
	}

	// The wrapper supplies the bound facade regardless of what the caller
	// passes in.
	actions[0].Run(nil)
	if host.text != "ran com.example.a" {
		t.Errorf("handler did not receive the bound facade: %q", host.text)
	}
}

func TestAllActionsIncludesDisabled(t *testing.T) {
	a := &counting{id: "com.example.a"}
	b := &counting{id: "com.example.b"}
	m, state := newTestManager(t, []api.Plugin{a, b}, WithAPI(newFakeAPI()))

	state.SetEnabled("com.example.a", true)
	m.Reload()

	if got := m.AllActions(newFakeAPI()); len(got) != 2 {
		t.Errorf("AllActions = %d actions, want 2", len(got))
	}
}

func TestRegisterActionsPanicIsolated(t *testing.T) {
	bad := &counting{id: "com.example.bad", panicActions: true}
	good := &counting{id: "com.example.good"}
	m, state := newTestManager(t, []api.Plugin{bad, good}, WithAPI(newFakeAPI()))

	state.SetEnabled("com.example.bad", true)
	state.SetEnabled("com.example.good", true)
	m.Reload()

	actions := m.EnabledActions(newFakeAPI())
	if len(actions) != 1 || actions[0].Spec.ID != "com.example.good.go" {
		t.Errorf("expected only the good plugin's action, got %d", len(actions))
	}
}

func TestHandlerPanicShowsError(t *testing.T) {
	p := &counting{id: "com.example.p", panicHandler: true}
	m, state := newTestManager(t, []api.Plugin{p}, WithAPI(newFakeAPI()))

	state.SetEnabled("com.example.p", true)
	m.Reload()

	host := newFakeAPI()
	actions := m.EnabledActions(host)
	if len(actions) != 1 {
		t.Fatalf("got %d actions", len(actions))
	}

	actions[0].Run(nil) // must not panic through
	if len(host.errors) != 1 {
		t.Errorf("expected one error dialog, got %v", host.errors)
	}
}

// sessionActions contributes actions only while activated, like an external
// plugin whose interpreter exists only during its activation session.
type sessionActions struct {
	api.Base
	active bool
}

func (p *sessionActions) Activate(host api.API) error { p.active = true; return nil }
func (p *sessionActions) Deactivate() error           { p.active = false; return nil }

func (p *sessionActions) RegisterActions() []api.Action {
	if !p.active {
		return nil
	}
	return []api.Action{{
		Spec: api.ActionSpec{ID: p.Info.ID + ".go", Title: "Go", Menu: api.MenuTools},
		Run:  func(api.API) {},
	}}
}

func TestActionsSurviveRepeatReload(t *testing.T) {
	// Each discovery pass yields a fresh, unactivated instance; the one that
	// was activated on the first reload must keep contributing.
	made := 0
	entries := []Discovered{{
		Factory: func() (api.Plugin, error) {
			made++
			return &sessionActions{Base: api.Base{Info: api.Meta{
				ID: "com.example.session", Name: "Session", Version: "1.0.0",
			}}}, nil
		},
		EntryPointName: "session",
	}}
	discovery := NewDiscovery(WithSources(NewStaticSource(entries...)))
	state, err := NewStateStore(settings.NewMemory())
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewManager(discovery, state, WithAPI(newFakeAPI()))
	if err != nil {
		t.Fatal(err)
	}

	state.SetEnabled("com.example.session", true)
	m.Reload()
	if got := m.EnabledActions(newFakeAPI()); len(got) != 1 {
		t.Fatalf("after first reload: %d actions, want 1", len(got))
	}

	m.Reload() // same world, e.g. a watcher nudge
	if made < 2 {
		t.Fatalf("factory ran %d times, discovery should have rebuilt the set", made)
	}
	if got := m.EnabledActions(newFakeAPI()); len(got) != 1 {
		t.Errorf("after second reload: %d actions, want 1 (active plugin lost its actions)", len(got))
	}
}

func TestActionsWithNilRunSkipped(t *testing.T) {
	p := &counting{id: "com.example.p", actionContribs: []api.Action{
		{Spec: api.ActionSpec{ID: "x", Title: "X", Menu: api.MenuTools}},
	}}
	m, state := newTestManager(t, []api.Plugin{p}, WithAPI(newFakeAPI()))

	state.SetEnabled("com.example.p", true)
	m.Reload()

	if got := m.EnabledActions(newFakeAPI()); len(got) != 0 {
		t.Errorf("nil-handler action should be dropped, got %d", len(got))
	}
}

func TestBrokenFactoryOmitted(t *testing.T) {
	good := &counting{id: "com.example.good"}
	entries := []Discovered{
		{Factory: func() (api.Plugin, error) { return nil, errors.New("no build") }, EntryPointName: "err"},
		{Factory: func() (api.Plugin, error) { panic("factory blew up") }, EntryPointName: "panic"},
		{Factory: Instance(good), EntryPointName: "good"},
	}
	discovery := NewDiscovery(WithSources(NewStaticSource(entries...)))
	state, err := NewStateStore(settings.NewMemory())
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewManager(discovery, state, WithAPI(newFakeAPI()))
	if err != nil {
		t.Fatal(err)
	}

	infos := m.ListPlugins()
	if len(infos) != 1 || infos[0].PluginID != "com.example.good" {
		t.Errorf("ListPlugins = %v, want only the good plugin", infos)
	}
}

func TestCloseDeactivatesAll(t *testing.T) {
	p := &counting{id: "com.example.p"}
	m, state := newTestManager(t, []api.Plugin{p}, WithAPI(newFakeAPI()))

	state.SetEnabled("com.example.p", true)
	m.Reload()
	m.Close()

	if p.deactivates != 1 {
		t.Errorf("deactivates = %d, want 1", p.deactivates)
	}
	if got := m.ActiveIDs(); len(got) != 0 {
		t.Errorf("ActiveIDs = %v, want empty", got)
	}
}

func TestCatalogLookup(t *testing.T) {
	m, _ := newTestManager(t, nil, WithCatalog(
		CatalogItem{PluginID: "com.example.x", Name: "X", Package: "pkg-x"},
	))

	items := m.Catalog()
	if len(items) != 1 {
		t.Fatalf("Catalog = %v", items)
	}
	item, ok := FindCatalogItem(items, "com.example.x")
	if !ok || item.Package != "pkg-x" {
		t.Errorf("FindCatalogItem = %v %v", item, ok)
	}
	if _, ok := FindCatalogItem(items, "com.example.missing"); ok {
		t.Error("missing id should not resolve")
	}
}
