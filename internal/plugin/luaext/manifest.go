package luaext

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/dshills/markwright/internal/plugin/api"
)

// ManifestFileName is the manifest file looked up in each plugin directory.
const ManifestFileName = "plugin.json"

// Manifest describes an external Lua plugin.
type Manifest struct {
	ID          string `json:"id"`          // reverse-DNS plugin id
	Name        string `json:"name"`        // human-readable name
	Version     string `json:"version"`     // semver
	Description string `json:"description"`
	Author      string `json:"author"`
	Homepage    string `json:"homepage"`
	License     string `json:"license"`

	// Main is the entry script, relative to the plugin directory.
	// Defaults to "init.lua".
	Main string `json:"main"`

	// RequiresApp and RequiresPluginAPI are advisory version constraints,
	// surfaced in diagnostics but not enforced at load time.
	RequiresApp       string `json:"requires_app"`
	RequiresPluginAPI string `json:"requires_plugin_api"`

	// Directory the manifest was loaded from.
	dir string
}

// Validation errors.
var (
	ErrManifestMissingID      = errors.New("manifest: id is required")
	ErrManifestMissingName    = errors.New("manifest: name is required")
	ErrManifestMissingVersion = errors.New("manifest: version is required")
	ErrManifestInvalidMain    = errors.New("manifest: main must be a .lua file")
)

// semverPattern validates version strings (simplified semver).
var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.-]+)?(\+[a-zA-Z0-9.-]+)?$`)

// LoadManifest loads and validates a manifest from a plugin directory.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	m.dir = dir

	if m.Main == "" {
		m.Main = "init.lua"
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the manifest's required fields.
func (m *Manifest) Validate() error {
	meta := m.Meta()
	if err := meta.Validate(); err != nil {
		switch {
		case errors.Is(err, api.ErrMetaMissingID):
			return ErrManifestMissingID
		case errors.Is(err, api.ErrMetaMissingName):
			return fmt.Errorf("%w (id: %s)", ErrManifestMissingName, m.ID)
		case errors.Is(err, api.ErrMetaMissingVersion):
			return fmt.Errorf("%w (id: %s)", ErrManifestMissingVersion, m.ID)
		default:
			return err
		}
	}
	if !semverPattern.MatchString(m.Version) {
		return fmt.Errorf("manifest: version must be valid semver: %s", m.Version)
	}
	if filepath.Ext(m.Main) != ".lua" {
		return fmt.Errorf("%w: %s", ErrManifestInvalidMain, m.Main)
	}
	return nil
}

// Meta converts the manifest to plugin metadata.
func (m *Manifest) Meta() api.Meta {
	return api.Meta{
		ID:                m.ID,
		Name:              m.Name,
		Version:           m.Version,
		Description:       m.Description,
		Author:            m.Author,
		Homepage:          m.Homepage,
		License:           m.License,
		RequiresApp:       m.RequiresApp,
		RequiresPluginAPI: m.RequiresPluginAPI,
	}
}

// Dir returns the plugin directory the manifest was loaded from.
func (m *Manifest) Dir() string {
	return m.dir
}

// MainPath returns the full path to the entry script.
func (m *Manifest) MainPath() string {
	return filepath.Join(m.dir, m.Main)
}

// String returns "Name vVersion" for diagnostics.
func (m *Manifest) String() string {
	return fmt.Sprintf("%s v%s", m.Name, m.Version)
}
