package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/markwright/internal/installer"
	"github.com/dshills/markwright/internal/plugin"
	"github.com/dshills/markwright/internal/plugin/builtin"
	"github.com/dshills/markwright/internal/plugin/luaext"
	"github.com/dshills/markwright/internal/settings"
)

// Options configures the runtime bootstrap. The zero value gives the
// standard desktop wiring: file-backed settings under the user config dir,
// the default plugin directories, and the shared plugin registry.
type Options struct {
	// SettingsPath overrides the settings file location.
	SettingsPath string

	// PluginDirs overrides the external plugin directories.
	PluginDirs []string

	// Registry overrides the compiled-in plugin registry. Defaults to
	// plugin.DefaultRegistry.
	Registry *plugin.Registry

	// Messages overrides the dialog service. Defaults to logging dialogs,
	// which the GUI replaces once its window exists.
	Messages MessageService

	// Logger overrides the application logger.
	Logger *Logger

	// WatchPlugins enables the plugin directory watcher.
	WatchPlugins bool
}

// Runtime is the assembled application core: every service the plugin
// subsystem needs, constructed once at startup.
//
// Lifecycle ownership is deliberate: Attach only binds the facade, it never
// reloads. The startup sequence calls Start exactly once after the facade is
// bound, and NotifyReady once after the window is shown. Keeping reload out
// of Attach means binding order cannot double-activate plugins.
type Runtime struct {
	Log       *Logger
	Settings  settings.Store
	Document  *Document
	Themes    *Themes
	Exporters *ExporterRegistry
	State     *plugin.StateStore
	Manager   *plugin.Manager
	Installer *installer.Installer

	watcher *plugin.Watcher
	host    *HostAPI
}

// DefaultSettingsPath returns the standard settings file location.
func DefaultSettingsPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "markwright", "settings.toml"), nil
}

// NewRuntime constructs the application core. No plugin code runs here;
// activation waits for Start.
func NewRuntime(opts Options) (*Runtime, error) {
	log := opts.Logger
	if log == nil {
		log = NewLogger(DefaultLoggerConfig())
	}

	var store settings.Store
	path := opts.SettingsPath
	if path == "" {
		p, err := DefaultSettingsPath()
		if err != nil {
			return nil, fmt.Errorf("resolve settings path: %w", err)
		}
		path = p
	}
	store, err := settings.NewFile(path)
	if err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}

	state, err := plugin.NewStateStore(store, builtin.ThemePluginID)
	if err != nil {
		return nil, err
	}

	registry := opts.Registry
	if registry == nil {
		registry = plugin.DefaultRegistry
	}
	dirs := opts.PluginDirs
	if dirs == nil {
		dirs = luaext.DefaultPluginDirs()
	}

	pluginLog := log.WithComponent("plugin")
	discovery := plugin.NewDiscovery(
		plugin.WithSources(
			plugin.NewStaticSource(builtin.Discovered()...),
			registry,
			luaext.NewDirSource(dirs, luaext.WithDirSourceLogger(pluginLog)),
		),
		plugin.WithDiscoveryLogger(pluginLog),
	)

	manager, err := plugin.NewManager(discovery, state, plugin.WithLogger(pluginLog))
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		Log:       log,
		Settings:  store,
		Document:  NewDocument(),
		Themes:    NewThemes(),
		Exporters: NewExporterRegistry(),
		State:     state,
		Manager:   manager,
		Installer: installer.New(),
	}

	messages := opts.Messages
	if messages == nil {
		messages = LogMessages{Log: log}
	}
	rt.host = NewHostAPI(rt.Document, messages, store, log, rt.Themes, rt.Exporters)
	manager.SetAPI(rt.host)

	if opts.WatchPlugins {
		rt.watcher = plugin.NewWatcher(dirs, manager.Reload, plugin.WithWatchLogger(pluginLog))
	}
	return rt, nil
}

// Host returns the capability facade handed to plugins.
func (rt *Runtime) Host() *HostAPI {
	return rt.host
}

// AttachMessages rebinds the dialog service, typically once the GUI window
// exists. It does not reload plugins.
func (rt *Runtime) AttachMessages(messages MessageService) {
	if messages == nil {
		return
	}
	rt.host.messages = messages
}

// Start runs the initial plugin reload and begins watching the plugin
// directories. Call once, after construction and any Attach calls.
func (rt *Runtime) Start() error {
	rt.Manager.Reload()
	if rt.watcher != nil {
		if err := rt.watcher.Start(); err != nil {
			rt.Log.Warnf("plugin watcher: %v", err)
		}
	}
	return nil
}

// NotifyReady runs the deferred ready hooks. Call once, after the UI is
// first shown.
func (rt *Runtime) NotifyReady() {
	rt.Manager.OnAppReady()
}

// Shutdown deactivates plugins and stops background work.
func (rt *Runtime) Shutdown() {
	if rt.watcher != nil {
		rt.watcher.Stop()
	}
	if job := rt.Installer.Current(); job != nil {
		job.Cancel()
	}
	rt.Manager.Close()
}
