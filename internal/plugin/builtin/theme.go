package builtin

import (
	"fmt"

	"github.com/dshills/markwright/internal/plugin"
	"github.com/dshills/markwright/internal/plugin/api"
)

// ThemePluginID is the theme plugin's id, pre-enabled by default.
const ThemePluginID = "org.markwright.theme"

// Settings keys under the plugin's namespace.
const (
	settingThemeID = "theme_id"
)

// themeTitles maps the shipped theme ids to menu titles, in menu order.
var themeTitles = []struct {
	id    string
	title string
}{
	{"default", "Default Theme"},
	{"midnight", "Midnight Theme"},
	{"paper", "Paper Theme"},
}

// ThemePlugin switches the editor theme. It remembers the chosen theme in
// plugin settings and restores it once the UI is up.
type ThemePlugin struct {
	api.Base
}

// NewThemePlugin creates the theme plugin.
func NewThemePlugin() *ThemePlugin {
	return &ThemePlugin{
		Base: api.Base{
			Info: api.Meta{
				ID:                ThemePluginID,
				Name:              "Themes",
				Version:           "1.0.0",
				Description:       "Switches the editor color theme.",
				Author:            "Markwright",
				License:           "MIT",
				RequiresPluginAPI: api.Version,
			},
		},
	}
}

// OnLoad seeds the persisted theme choice on first enable.
func (p *ThemePlugin) OnLoad(host api.API) error {
	if host.PluginSetting(ThemePluginID, settingThemeID, "") == "" {
		host.SetPluginSetting(ThemePluginID, settingThemeID, host.Theme())
	}
	return nil
}

// OnReady restores the persisted theme once the UI is visible. Applying a
// theme before the window exists would be lost; this is exactly what the
// deferred hook is for.
func (p *ThemePlugin) OnReady(host api.API) error {
	saved := host.PluginSetting(ThemePluginID, settingThemeID, "")
	if saved != "" {
		host.SetTheme(saved)
	}
	return nil
}

// RegisterActions contributes one View menu action per shipped theme, plus a
// cycle action.
func (p *ThemePlugin) RegisterActions() []api.Action {
	actions := make([]api.Action, 0, len(themeTitles)+1)
	for _, t := range themeTitles {
		themeID := t.id
		actions = append(actions, api.Action{
			Spec: api.ActionSpec{
				ID:        fmt.Sprintf("%s.set.%s", ThemePluginID, themeID),
				Title:     t.title,
				Menu:      api.MenuView,
				StatusTip: fmt.Sprintf("Switch to the %s theme", themeID),
			},
			Run: func(host api.API) {
				p.apply(host, themeID)
			},
		})
	}
	actions = append(actions, api.Action{
		Spec: api.ActionSpec{
			ID:        ThemePluginID + ".cycle",
			Title:     "Cycle Theme",
			Menu:      api.MenuView,
			Shortcut:  "Ctrl+Shift+T",
			StatusTip: "Switch to the next theme",
		},
		Run: p.cycle,
	})
	return actions
}

// apply sets the theme and persists the choice.
func (p *ThemePlugin) apply(host api.API, themeID string) {
	host.SetTheme(themeID)
	host.SetPluginSetting(ThemePluginID, settingThemeID, host.Theme())
}

// cycle advances to the next theme in the host's vocabulary, wrapping.
func (p *ThemePlugin) cycle(host api.API) {
	themes := host.Themes()
	if len(themes) == 0 {
		return
	}
	current := host.Theme()
	next := themes[0]
	for i, id := range themes {
		if id == current {
			next = themes[(i+1)%len(themes)]
			break
		}
	}
	p.apply(host, next)
}

// Discovered returns the built-in plugin entries, in the order they appear
// in menus and persisted state. New built-ins are appended here.
func Discovered() []plugin.Discovered {
	return []plugin.Discovered{
		{
			Factory: func() (api.Plugin, error) {
				return NewThemePlugin(), nil
			},
			EntryPointName: "builtin:" + ThemePluginID,
		},
	}
}
