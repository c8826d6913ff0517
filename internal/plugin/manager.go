package plugin

import (
	"sync"

	"github.com/dshills/markwright/internal/plugin/api"
)

// PluginInfo is the row shape the plugins dialog renders.
type PluginInfo struct {
	PluginID    string
	Name        string
	Version     string
	Description string
}

// Manager owns the discovered plugin set and drives the per-id lifecycle
// against the state store's enabled flags.
//
// All methods are intended to be called from the host's UI event loop; the
// internal mutex guards against incidental cross-goroutine use but reload is
// not re-entrant-safe against concurrent enabled-map mutation.
type Manager struct {
	mu sync.RWMutex

	discovery *Discovery
	state     *StateStore
	api       api.API
	catalog   []CatalogItem
	log       Logger

	// Discovered plugins by id, plus insertion order for deterministic
	// iteration. Rebuilt wholesale by each discover pass.
	plugins map[string]api.Plugin
	order   []string

	// Currently active plugins by id.
	active map[string]api.Plugin

	// loadRan marks ids whose OnLoad has been attempted. Process-lifetime:
	// never cleared, so OnLoad runs at most once per id no matter how often
	// the plugin toggles.
	loadRan map[string]bool

	// readyRan marks ids whose OnReady has been attempted this activation
	// session. Cleared on deactivation so re-activation permits OnReady
	// again.
	readyRan map[string]bool
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithAPI binds the capability facade at construction time. Without it the
// manager runs in discovery-only mode until SetAPI is called.
func WithAPI(a api.API) ManagerOption {
	return func(m *Manager) {
		m.api = a
	}
}

// WithCatalog sets the installable-plugin catalog.
func WithCatalog(items ...CatalogItem) ManagerOption {
	return func(m *Manager) {
		m.catalog = items
	}
}

// WithLogger sets the manager's logger.
func WithLogger(log Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// NewManager creates a manager bound to a discovery and a state store.
// A nil discovery or store is host misconfiguration and fails loudly; no
// plugin code has run yet at this point.
func NewManager(discovery *Discovery, state *StateStore, opts ...ManagerOption) (*Manager, error) {
	if discovery == nil {
		return nil, ErrNilDiscovery
	}
	if state == nil {
		return nil, ErrNilStateStore
	}

	m := &Manager{
		discovery: discovery,
		state:     state,
		log:       nopLogger{},
		catalog:   DefaultCatalog(),
		plugins:   make(map[string]api.Plugin),
		active:    make(map[string]api.Plugin),
		loadRan:   make(map[string]bool),
		readyRan:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// StateStore returns the manager's state store.
func (m *Manager) StateStore() *StateStore {
	return m.state
}

// Catalog returns the installable-plugin catalog.
func (m *Manager) Catalog() []CatalogItem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]CatalogItem, len(m.catalog))
	copy(out, m.catalog)
	return out
}

// SetAPI binds (or rebinds) the capability facade used for all future
// OnLoad/Activate/OnReady calls. It does not retroactively re-run hooks for
// already-active plugins.
func (m *Manager) SetAPI(a api.API) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.api = a
}

// Discover rebuilds the discovered set, replacing the prior one entirely.
// Instances from the previous discovery are dropped; currently-active
// instances are untouched; only Reload reconciles activation against the
// new set.
func (m *Manager) Discover() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discoverLocked()
}

// discoverLocked runs a discovery pass. Must be called with mu held.
//
// A broken factory or broken metadata omits that one plugin. A duplicate id
// replaces the earlier instance but keeps its ordering slot, so an external
// plugin shadowing a built-in does not shuffle the UI list.
func (m *Manager) discoverLocked() {
	m.plugins = make(map[string]api.Plugin)
	m.order = m.order[:0]

	for _, d := range m.discovery.Discover() {
		if d.Factory == nil {
			continue
		}

		var p api.Plugin
		var id string
		err := guard(func() error {
			inst, err := d.Factory()
			if err != nil {
				return err
			}
			if inst == nil {
				return ErrNilFactory
			}
			id = inst.Meta().ID
			p = inst
			return nil
		})
		if err != nil {
			m.log.Warnf("plugin %s skipped during discovery: %v", d.EntryPointName, err)
			continue
		}
		if id == "" {
			m.log.Warnf("plugin %s skipped: empty id", d.EntryPointName)
			continue
		}

		if _, exists := m.plugins[id]; !exists {
			m.order = append(m.order, id)
		}
		m.plugins[id] = p
	}
}

// ListPlugins returns dialog rows for every discovered plugin, in discovery
// order. Plugins whose metadata access fails are omitted.
func (m *Manager) ListPlugins() []PluginInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.plugins) == 0 {
		m.discoverLocked()
	}

	out := make([]PluginInfo, 0, len(m.order))
	for _, id := range m.order {
		p := m.plugins[id]
		var meta api.Meta
		err := guard(func() error {
			meta = p.Meta()
			return nil
		})
		if err != nil {
			continue
		}
		out = append(out, PluginInfo{
			PluginID:    meta.ID,
			Name:        meta.Name,
			Version:     meta.Version,
			Description: meta.Description,
		})
	}
	return out
}

// ActiveIDs returns the ids of currently-active plugins, in discovery order.
func (m *Manager) ActiveIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.active))
	for _, id := range m.order {
		if _, ok := m.active[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Reload re-discovers plugins and reconciles activation against the enabled
// flags, in this order:
//
//  1. Re-run discovery, replacing the discovered set.
//  2. Deactivate every active plugin that is now missing or disabled, and
//     clear its ready-once marker so a later re-activation runs OnReady
//     again.
//  3. Activate every enabled, not-yet-active plugin: run OnLoad first if
//     implemented and never attempted for this id in this process (marked
//     attempted whether it succeeds or fails), then Activate. A failed
//     Activate keeps the plugin out of the active set.
//
// Without a bound facade the manager can still discover and list, but not
// activate: the active set is cleared instead (discovery-only mode).
func (m *Manager) Reload() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.discoverLocked()

	if m.api == nil {
		m.active = make(map[string]api.Plugin)
		return
	}

	// Deactivate anything active that is now disabled or missing.
	for id, p := range m.active {
		if _, known := m.plugins[id]; known && m.state.Enabled(id) {
			continue
		}
		if err := guard(p.Deactivate); err != nil {
			m.log.Warnf("plugin %s deactivate failed: %v", id, err)
		}
		delete(m.active, id)
		delete(m.readyRan, id)
	}

	// Activate enabled plugins, best-effort.
	for _, id := range m.order {
		if !m.state.Enabled(id) {
			continue
		}
		if _, already := m.active[id]; already {
			continue
		}
		p := m.plugins[id]

		if hook, ok := p.(api.OnLoadHook); ok && !m.loadRan[id] {
			m.loadRan[id] = true
			if err := guard(func() error { return hook.OnLoad(m.api) }); err != nil {
				m.log.Warnf("plugin %s on_load failed: %v", id, err)
			}
		}

		if err := guard(func() error { return p.Activate(m.api) }); err != nil {
			m.log.Warnf("plugin %s activate failed: %v", id, err)
			continue
		}
		m.active[id] = p
	}
}

// OnAppReady runs the deferred OnReady hook for every active plugin whose
// ready-once marker is unset this activation session. Intended to be called
// once, after the host UI is first shown; calling it again is a no-op until
// a plugin starts a new activation session.
func (m *Manager) OnAppReady() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.api == nil {
		return
	}

	for _, id := range m.order {
		p, active := m.active[id]
		if !active || m.readyRan[id] {
			continue
		}
		m.readyRan[id] = true

		hook, ok := p.(api.OnReadyHook)
		if !ok {
			continue
		}
		if err := guard(func() error { return hook.OnReady(m.api) }); err != nil {
			m.log.Warnf("plugin %s on_ready failed: %v", id, err)
		}
	}
}

// EnabledActions aggregates the actions contributed by enabled plugins, in
// discovery order. Each handler is wrapped so that invoking it passes the
// given facade and surfaces handler failures to the user without crashing
// the host or affecting other plugins.
func (m *Manager) EnabledActions(host api.API) []api.Action {
	return m.actions(host, true)
}

// AllActions is EnabledActions without the enabled filter, for diagnostic
// and management UI.
func (m *Manager) AllActions(host api.API) []api.Action {
	return m.actions(host, false)
}

func (m *Manager) actions(host api.API, enabledOnly bool) []api.Action {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.plugins) == 0 {
		m.discoverLocked()
	}

	var out []api.Action
	for _, id := range m.order {
		if enabledOnly && !m.state.Enabled(id) {
			continue
		}
		p := m.plugins[id]
		// The activated instance carries session state (a live interpreter,
		// registered callbacks); a later discovery pass produces a fresh
		// instance for the same id that has none of it.
		if a, ok := m.active[id]; ok {
			p = a
		}

		var contributed []api.Action
		err := guard(func() error {
			contributed = p.RegisterActions()
			return nil
		})
		if err != nil {
			m.log.Warnf("plugin %s register_actions failed: %v", id, err)
			continue
		}

		for _, a := range contributed {
			if a.Run == nil {
				continue
			}
			out = append(out, api.Action{
				Spec: a.Spec,
				Run:  wrapHandler(a.Run, host),
			})
		}
	}
	return out
}

// wrapHandler binds the facade to a contributed handler and converts a
// handler panic into a user-visible error dialog. Handler failure is the one
// plugin failure surfaced to the user, since it happens as a direct response
// to a user action; it does not deactivate the plugin.
func wrapHandler(run api.Handler, host api.API) api.Handler {
	return func(_ api.API) {
		err := guard(func() error {
			run(host)
			return nil
		})
		if err != nil && host != nil {
			host.ShowError("Plugin action failed", err.Error())
		}
	}
}

// Close deactivates every active plugin and drops all instances. Called on
// host shutdown; the per-process loadRan markers are kept so a Close/Reload
// cycle on the same manager still honors the once-per-process contract.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, p := range m.active {
		if err := guard(p.Deactivate); err != nil {
			m.log.Warnf("plugin %s deactivate failed: %v", id, err)
		}
		delete(m.active, id)
		delete(m.readyRan, id)
	}
	m.plugins = make(map[string]api.Plugin)
	m.order = nil
}
