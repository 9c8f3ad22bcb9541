package pagepress

import (
	"errors"
	"fmt"

	"github.com/alnah/go-pagepress/internal/assets"
)

// TemplateLoader loads page templates by name.
// Implementations may read from disk, embedded files, a database, etc.
//
// NewTemplateLoader returns the filesystem implementation with fallback to
// the built-in templates. Implement this interface for custom backends.
type TemplateLoader interface {
	// LoadTemplate returns the HTML skeleton named name (without extension).
	// It returns an error wrapping ErrUnknownTemplate when no template exists.
	LoadTemplate(name string) (string, error)

	// ListTemplates returns the available names, sorted.
	ListTemplates() ([]string, error)
}

// NewTemplateLoader creates a TemplateLoader rooted at basePath.
// If basePath is empty, only the built-in templates are available.
// Otherwise basePath/templates/{name}.html takes precedence over them.
//
// Returns ErrInvalidInput if basePath is set but is not a readable directory.
func NewTemplateLoader(basePath string) (TemplateLoader, error) {
	resolver, err := assets.NewAssetResolver(basePath)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return &templateLoaderAdapter{resolver: resolver}, nil
}

// templateLoaderAdapter maps internal asset errors to public sentinels.
type templateLoaderAdapter struct {
	resolver *assets.AssetResolver
}

func (a *templateLoaderAdapter) LoadTemplate(name string) (string, error) {
	content, err := a.resolver.LoadTemplate(name)
	if err != nil {
		return "", convertAssetError(err)
	}
	return content, nil
}

func (a *templateLoaderAdapter) ListTemplates() ([]string, error) {
	names, err := a.resolver.ListTemplates()
	if err != nil {
		return nil, convertAssetError(err)
	}
	return names, nil
}

// convertAssetError maps internal asset errors to public errors.
func convertAssetError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, assets.ErrTemplateNotFound):
		return fmt.Errorf("%w: %v", ErrUnknownTemplate, err)
	case errors.Is(err, assets.ErrInvalidAssetName),
		errors.Is(err, assets.ErrInvalidBasePath),
		errors.Is(err, assets.ErrPathTraversal):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case errors.Is(err, assets.ErrAssetRead):
		return fmt.Errorf("%w: %v", ErrIO, err)
	default:
		return err
	}
}

// Compile-time interface check.
var _ TemplateLoader = (*templateLoaderAdapter)(nil)
