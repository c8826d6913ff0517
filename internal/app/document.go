package app

import (
	"os"
	"sync"
)

// Document is the in-memory model of the file being edited: the Markdown
// text, its file path (if any), cursor position, and the modified flag the
// title bar shows.
type Document struct {
	mu       sync.RWMutex
	text     string
	path     string
	cursor   int
	modified bool
}

// NewDocument creates an empty, unsaved document.
func NewDocument() *Document {
	return &Document{}
}

// Text returns the full document text.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

// SetText replaces the document text and marks it modified. The cursor is
// clamped into the new text.
func (d *Document) SetText(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.text = text
	if d.cursor > len(text) {
		d.cursor = len(text)
	}
	d.modified = true
}

// InsertAtCursor inserts text at the cursor, advancing it past the insert.
func (d *Document) InsertAtCursor(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cursor > len(d.text) {
		d.cursor = len(d.text)
	}
	d.text = d.text[:d.cursor] + text + d.text[d.cursor:]
	d.cursor += len(text)
	d.modified = true
}

// Cursor returns the cursor byte offset.
func (d *Document) Cursor() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cursor
}

// SetCursor moves the cursor, clamped into the text.
func (d *Document) SetCursor(pos int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if pos < 0 {
		pos = 0
	}
	if pos > len(d.text) {
		pos = len(d.text)
	}
	d.cursor = pos
}

// Path reports the file path backing the document, if it has been saved or
// opened from disk.
func (d *Document) Path() (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.path, d.path != ""
}

// Modified reports whether the document has unsaved changes.
func (d *Document) Modified() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.modified
}

// Load reads the file at path into the document, resetting the cursor and
// clearing the modified flag.
func (d *Document) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.text = string(data)
	d.path = path
	d.cursor = 0
	d.modified = false
	return nil
}

// Save writes the document to its path, clearing the modified flag.
// SaveAs with an empty path is a no-op error at the caller; the document
// itself requires a path.
func (d *Document) Save() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saveLocked(d.path)
}

// SaveAs writes the document to a new path and adopts it.
func (d *Document) SaveAs(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.saveLocked(path); err != nil {
		return err
	}
	d.path = path
	return nil
}

func (d *Document) saveLocked(path string) error {
	if path == "" {
		return os.ErrInvalid
	}
	if err := os.WriteFile(path, []byte(d.text), 0o644); err != nil {
		return err
	}
	d.modified = false
	return nil
}
