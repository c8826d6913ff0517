package api

// API is the capability facade the host hands to plugin code. It is the only
// sanctioned host surface visible to plugins: no widget, renderer, or
// settings internals leak through. Every operation is plain data in, plain
// data out.
//
// Implementations are provided once by the host; plugins receive the same
// instance in OnLoad, Activate, OnReady, and action handlers.
type API interface {
	// Document text.
	Text() string
	SetText(text string)
	InsertAtCursor(text string)

	// CurrentPath reports the document's file path, if it has one.
	CurrentPath() (string, bool)
	// Modified reports whether the document has unsaved changes.
	// Read-only to plugins; saving is the host's business.
	Modified() bool

	// User-facing messages.
	ShowInfo(title, message string)
	ShowWarning(title, message string)
	ShowError(title, message string)

	// ExportCurrent triggers an export of the current document through a
	// registered exporter. Plugins address exporters by id only.
	ExportCurrent(exporterID string) error

	// Plugin-scoped settings, namespaced by the plugin's own id so plugins
	// cannot collide with each other or with host settings. Values are
	// strings for long-term stability across settings backends; encode JSON
	// if structure is needed.
	PluginSetting(pluginID, key, fallback string) string
	SetPluginSetting(pluginID, key, value string)
	RemovePluginSetting(pluginID, key string)

	// Leveled logging into the host log.
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)

	// Theming. The theme vocabulary is host-controlled; setting an unknown
	// theme id falls back to the host default rather than erroring.
	SetTheme(themeID string)
	Theme() string
	Themes() []string
}

// Plugin is the mandatory contract every plugin implements.
//
// Activate is called when the plugin is enabled (or on startup if already
// enabled); Deactivate when it is disabled and on shutdown. RegisterActions
// is pull-based: the host asks the plugin what it provides. Implementations
// must not assume any call order beyond the lifecycle.
type Plugin interface {
	Meta() Meta
	Activate(host API) error
	Deactivate() error
	RegisterActions() []Action
}

// OnLoadHook is the optional first-enable hook, run at most once per plugin
// id per process, before the first Activate.
type OnLoadHook interface {
	OnLoad(host API) error
}

// OnReadyHook is the optional post-show hook, run at most once per
// activation session, after the host UI is visible.
type OnReadyHook interface {
	OnReady(host API) error
}

// Base is a convenience embed for plugin authors: no-op lifecycle and no
// contributed actions. It intentionally implements neither hook so that
// embedding it does not change capability checks.
type Base struct {
	Info Meta
}

// Meta returns the embedded metadata.
func (b *Base) Meta() Meta { return b.Info }

// Activate is a no-op.
func (b *Base) Activate(host API) error { return nil }

// Deactivate is a no-op.
func (b *Base) Deactivate() error { return nil }

// RegisterActions contributes nothing.
func (b *Base) RegisterActions() []Action { return nil }
