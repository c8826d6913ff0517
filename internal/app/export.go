package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Exporter errors.
var (
	ErrUnknownExporter = errors.New("unknown exporter")
	ErrNoDocumentPath  = errors.New("document has no file path")
)

// Exporter converts the current document text to an output file. Plugins
// trigger exporters by id through the host facade; they never see the
// exporter itself.
type Exporter interface {
	// ID is the stable identifier plugins address the exporter by.
	ID() string
	// Label is the menu title.
	Label() string
	// Export writes the document text to outPath.
	Export(text, outPath string) error
}

// ExporterRegistry holds the registered exporters.
type ExporterRegistry struct {
	mu        sync.RWMutex
	exporters map[string]Exporter
	order     []string
}

// NewExporterRegistry creates a registry with the shipped exporters.
func NewExporterRegistry() *ExporterRegistry {
	r := &ExporterRegistry{exporters: make(map[string]Exporter)}
	r.Add(HTMLExporter{})
	return r
}

// Add registers an exporter. A duplicate id replaces the prior exporter but
// keeps its menu position.
func (r *ExporterRegistry) Add(e Exporter) {
	if e == nil || e.ID() == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.exporters[e.ID()]; !exists {
		r.order = append(r.order, e.ID())
	}
	r.exporters[e.ID()] = e
}

// Get returns the exporter with the given id.
func (r *ExporterRegistry) Get(id string) (Exporter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.exporters[id]
	return e, ok
}

// IDs returns the exporter ids in registration order.
func (r *ExporterRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// HTMLExporter renders the document to a standalone HTML file. The Markdown
// conversion here is deliberately minimal; rich rendering belongs to the
// preview pane, not the export path.
type HTMLExporter struct{}

// ID returns "html".
func (HTMLExporter) ID() string { return "html" }

// Label returns the menu title.
func (HTMLExporter) Label() string { return "Export as HTML" }

// Export writes the text wrapped in a minimal HTML shell.
func (HTMLExporter) Export(text, outPath string) error {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"></head>\n<body>\n<pre>")
	b.WriteString(htmlEscape(text))
	b.WriteString("</pre>\n</body>\n</html>\n")
	return os.WriteFile(outPath, []byte(b.String()), 0o644)
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

func htmlEscape(s string) string {
	return htmlEscaper.Replace(s)
}

// ExportDocument runs the named exporter against the document, deriving the
// output path from the document path by swapping the extension.
func ExportDocument(reg *ExporterRegistry, doc *Document, exporterID string) error {
	e, ok := reg.Get(exporterID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownExporter, exporterID)
	}
	path, ok := doc.Path()
	if !ok {
		return ErrNoDocumentPath
	}
	out := strings.TrimSuffix(path, filepath.Ext(path)) + "." + exporterID
	return e.Export(doc.Text(), out)
}
