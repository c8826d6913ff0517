package api

// Menu identifies a host menu an action suggests itself for. The host may
// re-home actions; the value is a placement hint, not a command.
type Menu string

// Host menus.
const (
	MenuFile   Menu = "File"
	MenuEdit   Menu = "Edit"
	MenuView   Menu = "View"
	MenuTools  Menu = "Tools"
	MenuExport Menu = "Export"
	MenuHelp   Menu = "Help"
)

// Valid reports whether the menu is one of the host's fixed menus.
func (m Menu) Valid() bool {
	switch m {
	case MenuFile, MenuEdit, MenuView, MenuTools, MenuExport, MenuHelp:
		return true
	}
	return false
}

// ActionSpec declaratively describes an action the host can surface via a
// menu or toolbar entry.
//
// ID should be unique within the plugin's namespace, conventionally
// "<plugin id>.<action>". Toolbar is only a hint; the host may ignore it.
type ActionSpec struct {
	ID        string
	Title     string
	Menu      Menu
	Shortcut  string // optional, e.g. "Ctrl+Shift+U"
	StatusTip string // optional status bar text
	Toolbar   bool
}

// Handler runs an action. It receives the capability facade and nothing
// else; handlers must not hold host object references across invocations.
type Handler func(host API)

// Action pairs a spec with its handler.
type Action struct {
	Spec ActionSpec
	Run  Handler
}
