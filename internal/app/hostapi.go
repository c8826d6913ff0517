package app

import (
	"github.com/dshills/markwright/internal/plugin/api"
	"github.com/dshills/markwright/internal/settings"
)

// MessageService shows user-facing dialogs. The GUI provides the real one;
// headless runs use LogMessages.
type MessageService interface {
	Info(title, message string)
	Warning(title, message string)
	Error(title, message string)
}

// LogMessages routes dialogs to the logger, for headless use and tests.
type LogMessages struct {
	Log *Logger
}

func (m LogMessages) Info(title, message string) {
	m.Log.Infof("%s: %s", title, message)
}

func (m LogMessages) Warning(title, message string) {
	m.Log.Warnf("%s: %s", title, message)
}

func (m LogMessages) Error(title, message string) {
	m.Log.Errorf("%s: %s", title, message)
}

// HostAPI is the host's implementation of the plugin capability facade. One
// instance is built at startup and handed to every plugin; it stays valid
// across reloads.
type HostAPI struct {
	doc       *Document
	messages  MessageService
	settings  settings.Store
	log       *Logger
	themes    *Themes
	exporters *ExporterRegistry
}

var _ api.API = (*HostAPI)(nil)

// NewHostAPI builds the facade over the application services.
func NewHostAPI(doc *Document, messages MessageService, store settings.Store, log *Logger, themes *Themes, exporters *ExporterRegistry) *HostAPI {
	if log == nil {
		log = NullLogger
	}
	return &HostAPI{
		doc:       doc,
		messages:  messages,
		settings:  store,
		log:       log.WithComponent("plugin"),
		themes:    themes,
		exporters: exporters,
	}
}

// Text returns the document text.
func (h *HostAPI) Text() string {
	return h.doc.Text()
}

// SetText replaces the document text.
func (h *HostAPI) SetText(text string) {
	h.doc.SetText(text)
}

// InsertAtCursor inserts text at the cursor.
func (h *HostAPI) InsertAtCursor(text string) {
	h.doc.InsertAtCursor(text)
}

// CurrentPath reports the document's file path, if any.
func (h *HostAPI) CurrentPath() (string, bool) {
	return h.doc.Path()
}

// Modified reports whether the document has unsaved changes.
func (h *HostAPI) Modified() bool {
	return h.doc.Modified()
}

// ShowInfo shows an informational dialog.
func (h *HostAPI) ShowInfo(title, message string) {
	h.messages.Info(title, message)
}

// ShowWarning shows a warning dialog.
func (h *HostAPI) ShowWarning(title, message string) {
	h.messages.Warning(title, message)
}

// ShowError shows an error dialog.
func (h *HostAPI) ShowError(title, message string) {
	h.messages.Error(title, message)
}

// ExportCurrent exports the document through the registered exporter.
func (h *HostAPI) ExportCurrent(exporterID string) error {
	return ExportDocument(h.exporters, h.doc, exporterID)
}

// pluginSettingKey namespaces a plugin's setting under its id so plugins
// cannot collide with each other or with host settings.
func pluginSettingKey(pluginID, key string) string {
	return "plugins/" + pluginID + "/" + key
}

// PluginSetting reads a plugin-scoped setting.
func (h *HostAPI) PluginSetting(pluginID, key, fallback string) string {
	return h.settings.GetRaw(pluginSettingKey(pluginID, key), fallback)
}

// SetPluginSetting writes a plugin-scoped setting.
func (h *HostAPI) SetPluginSetting(pluginID, key, value string) {
	h.settings.SetRaw(pluginSettingKey(pluginID, key), value)
}

// RemovePluginSetting deletes a plugin-scoped setting.
func (h *HostAPI) RemovePluginSetting(pluginID, key string) {
	h.settings.Remove(pluginSettingKey(pluginID, key))
}

// LogDebug logs at debug level into the host log.
func (h *HostAPI) LogDebug(message string) {
	h.log.Debugf("%s", message)
}

// LogInfo logs at info level into the host log.
func (h *HostAPI) LogInfo(message string) {
	h.log.Infof("%s", message)
}

// LogWarn logs at warn level into the host log.
func (h *HostAPI) LogWarn(message string) {
	h.log.Warnf("%s", message)
}

// LogError logs at error level into the host log.
func (h *HostAPI) LogError(message string) {
	h.log.Errorf("%s", message)
}

// SetTheme selects a theme; unknown ids fall back to the default.
func (h *HostAPI) SetTheme(themeID string) {
	h.themes.Set(themeID)
}

// Theme returns the selected theme id.
func (h *HostAPI) Theme() string {
	return h.themes.Current()
}

// Themes returns the known theme ids.
func (h *HostAPI) Themes() []string {
	return h.themes.IDs()
}
