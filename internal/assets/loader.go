package assets

// DefaultTemplateName is the built-in template used when none is requested.
const DefaultTemplateName = "default"

// templateExt is appended to template names to form file names.
const templateExt = ".html"

// AssetLoader defines the contract for loading page templates.
type AssetLoader interface {
	// LoadTemplate loads an HTML template by name (without .html extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadTemplate(name string) (string, error)

	// ListTemplates returns the available template names, sorted.
	ListTemplates() ([]string, error)
}
