package pagepress

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// Option configures a Converter.
type Option func(*Converter)

// DiagramRenderer turns a fenced diagram source into an SVG fragment.
type DiagramRenderer interface {
	Render(ctx context.Context, source, theme string) (string, error)
}

// WithBackend sets the browser engine. The default is the rod backend.
func WithBackend(b Backend) Option {
	return func(c *Converter) {
		c.backend = b
	}
}

// WithLogger sets the logger for progress and warnings.
// The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTemplateLoader sets a custom template source.
// It takes precedence over WithAssetPath.
func WithTemplateLoader(l TemplateLoader) Option {
	return func(c *Converter) {
		c.loader = l
	}
}

// WithAssetPath adds a directory of custom templates (templates/{name}.html)
// in front of the built-in ones.
func WithAssetPath(path string) Option {
	return func(c *Converter) {
		c.assetPath = path
	}
}

// WithClock sets the time source for generatedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		if now != nil {
			c.now = now
		}
	}
}

// WithPageCounter sets how PDF page counts are read. Pass nil to skip them.
func WithPageCounter(p PageCounter) Option {
	return func(c *Converter) {
		c.pageCounter = p
	}
}

// WithDiagramRenderer registers r for fences tagged lang, replacing any
// built-in renderer for that language.
func WithDiagramRenderer(lang string, r DiagramRenderer) Option {
	return func(c *Converter) {
		c.extraRenderers[lang] = r
	}
}

// WithMermaidCLI sets an explicit mmdc path, searched before PATH.
func WithMermaidCLI(path string) Option {
	return func(c *Converter) {
		c.mermaidCLI = path
	}
}
