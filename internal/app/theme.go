package app

import (
	"sort"
	"sync"
)

// DefaultThemeID is the theme applied when nothing else is selected and the
// fallback for unknown theme ids.
const DefaultThemeID = "default"

// Theme is one named color scheme.
type Theme struct {
	ID         string
	Name       string
	Background string // hex color
	Foreground string // hex color
	Accent     string // hex color
}

// Themes manages the theme vocabulary and the current selection. The
// vocabulary is host-controlled; plugins select by id only.
type Themes struct {
	mu      sync.RWMutex
	themes  map[string]Theme
	current string

	// onChange, if set, is called with the new theme after a change.
	onChange func(Theme)
}

// NewThemes creates the service with the shipped themes and the default
// selected.
func NewThemes() *Themes {
	t := &Themes{
		themes:  make(map[string]Theme),
		current: DefaultThemeID,
	}
	for _, th := range builtinThemes() {
		t.themes[th.ID] = th
	}
	return t
}

func builtinThemes() []Theme {
	return []Theme{
		{ID: "default", Name: "Default", Background: "#ffffff", Foreground: "#1a1a1a", Accent: "#2962ff"},
		{ID: "midnight", Name: "Midnight", Background: "#101418", Foreground: "#d8dee9", Accent: "#61afef"},
		{ID: "paper", Name: "Paper", Background: "#f5f0e6", Foreground: "#3b3228", Accent: "#a05a2c"},
	}
}

// OnChange registers a callback invoked after every theme change.
func (t *Themes) OnChange(fn func(Theme)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// Set selects a theme by id. An unknown id falls back to the default theme
// rather than erroring; plugins pass ids around as plain strings and stale
// ids must degrade gracefully.
func (t *Themes) Set(id string) {
	t.mu.Lock()
	if _, ok := t.themes[id]; !ok {
		id = DefaultThemeID
	}
	t.current = id
	theme := t.themes[id]
	fn := t.onChange
	t.mu.Unlock()

	if fn != nil {
		fn(theme)
	}
}

// Current returns the selected theme id.
func (t *Themes) Current() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// CurrentTheme returns the selected theme.
func (t *Themes) CurrentTheme() Theme {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.themes[t.current]
}

// IDs returns the known theme ids, sorted.
func (t *Themes) IDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]string, 0, len(t.themes))
	for id := range t.themes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Add registers (or replaces) a theme.
func (t *Themes) Add(theme Theme) {
	if theme.ID == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.themes[theme.ID] = theme
}
