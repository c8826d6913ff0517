package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// File is a Store backed by a single TOML file. Every SetRaw/Remove rewrites
// the file atomically (temp file + rename), so a crash mid-write never
// leaves a torn settings file behind.
//
// A missing file is an empty store. A file that fails to parse is also
// treated as empty rather than failing the host; the first write replaces it.
type File struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// NewFile opens (or prepares to create) a file-backed store at path.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("settings: path is required")
	}

	f := &File{
		path:   path,
		values: make(map[string]string),
	}
	f.load()
	return f, nil
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// load reads the backing file into memory. Best-effort: missing or
// unparseable files leave the store empty.
func (f *File) load() {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return
	}

	var values map[string]string
	if err := toml.Unmarshal(data, &values); err != nil {
		return
	}
	if values != nil {
		f.values = values
	}
}

// GetRaw returns the stored value, or fallback if absent.
func (f *File) GetRaw(key, fallback string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if v, ok := f.values[key]; ok {
		return v
	}
	return fallback
}

// SetRaw stores value under key and persists immediately.
func (f *File) SetRaw(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.values[key] = value
	f.flush()
}

// Remove deletes the key and persists immediately.
func (f *File) Remove(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.values[key]; !ok {
		return
	}
	delete(f.values, key)
	f.flush()
}

// flush writes the current map atomically. Must be called with mu held.
// Write failures are swallowed: settings persistence is best-effort and the
// in-memory view stays authoritative for the session.
func (f *File) flush() {
	data, err := toml.Marshal(f.values)
	if err != nil {
		return
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.toml")
	if err != nil {
		return
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
	}
}
