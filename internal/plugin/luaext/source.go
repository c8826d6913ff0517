package luaext

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/dshills/markwright/internal/plugin"
	"github.com/dshills/markwright/internal/plugin/api"
)

// DefaultPluginDirs returns the standard external plugin directories, in
// precedence order. Missing directories are fine; the source skips them.
func DefaultPluginDirs() []string {
	var dirs []string
	if cfg, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(cfg, "markwright", "plugins"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local", "share", "markwright", "plugins"))
	}
	return dirs
}

// DirSource discovers Lua plugins by scanning directories for subdirectories
// containing a plugin.json manifest.
type DirSource struct {
	dirs []string
	log  plugin.Logger
}

// DirSourceOption configures a DirSource.
type DirSourceOption func(*DirSource)

// WithDirSourceLogger sets the logger used for skipped-directory diagnostics.
func WithDirSourceLogger(log plugin.Logger) DirSourceOption {
	return func(s *DirSource) {
		if log != nil {
			s.log = log
		}
	}
}

// NewDirSource creates a source over the given directories.
func NewDirSource(dirs []string, opts ...DirSourceOption) *DirSource {
	s := &DirSource{dirs: dirs, log: nopDirLogger{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type nopDirLogger struct{}

func (nopDirLogger) Debugf(string, ...any) {}
func (nopDirLogger) Infof(string, ...any)  {}
func (nopDirLogger) Warnf(string, ...any)  {}
func (nopDirLogger) Errorf(string, ...any) {}

// Discover scans each directory in order, subdirectories sorted by name for
// determinism. A broken manifest skips that one plugin. The first directory
// providing a given id wins; later duplicates are skipped so a user-level
// install shadows a system-level one.
func (s *DirSource) Discover() []plugin.Discovered {
	var out []plugin.Discovered
	seen := make(map[string]bool)

	for _, dir := range s.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.IsDir() {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)

		for _, name := range names {
			pluginDir := filepath.Join(dir, name)
			manifest, err := LoadManifest(pluginDir)
			if err != nil {
				if !errors.Is(err, os.ErrNotExist) {
					s.log.Warnf("lua plugin %s skipped: %v", pluginDir, err)
				}
				continue
			}
			if seen[manifest.ID] {
				s.log.Debugf("lua plugin %s shadowed by earlier install", manifest.ID)
				continue
			}
			seen[manifest.ID] = true

			m := manifest
			out = append(out, plugin.Discovered{
				Factory: func() (api.Plugin, error) {
					return NewLuaPlugin(m), nil
				},
				EntryPointName: "lua:" + m.ID,
				DistVersion:    m.Version,
			})
		}
	}
	return out
}
