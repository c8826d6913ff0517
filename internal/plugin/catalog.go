package plugin

// CatalogItem maps a not-yet-installed plugin id to an installable package
// name. The install/uninstall UI consumes the catalog; the manager itself
// never does, it only re-runs discovery after an install completes.
type CatalogItem struct {
	PluginID    string // matches Meta.ID once installed
	Name        string
	Package     string // package name understood by the configured installer
	Description string
	Homepage    string
}

// DefaultCatalog returns the official plugin catalog.
func DefaultCatalog() []CatalogItem {
	return []CatalogItem{
		{
			PluginID:    "com.markwright.plugins.uppercase",
			Name:        "Uppercase Tool",
			Package:     "markwright-plugin-uppercase",
			Description: "Adds a Tools menu action to uppercase the current document.",
		},
		{
			PluginID:    "com.markwright.plugins.wordcount",
			Name:        "Word Count",
			Package:     "markwright-plugin-wordcount",
			Description: "Shows word/char counts for the current document.",
		},
	}
}

// FindCatalogItem returns the catalog entry for a plugin id.
func FindCatalogItem(catalog []CatalogItem, pluginID string) (CatalogItem, bool) {
	for _, item := range catalog {
		if item.PluginID == pluginID {
			return item, true
		}
	}
	return CatalogItem{}, false
}
