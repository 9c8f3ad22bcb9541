// Package diagram renders fenced diagram sources (Mermaid, Graphviz DOT) to
// inline SVG.
package diagram

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// DefaultTheme is the Mermaid theme used when none is given.
const DefaultTheme = "neutral"

// Sentinel errors for diagram rendering.
var (
	ErrEmptySource  = errors.New("diagram source cannot be empty")
	ErrRenderFailed = errors.New("diagram rendering failed")
)

// Renderer turns diagram source into an SVG fragment.
type Renderer interface {
	Render(ctx context.Context, source, theme string) (string, error)
}

var (
	xmlDeclRe = regexp.MustCompile(`(?s)<\?xml.*?\?>`)
	doctypeRe = regexp.MustCompile(`(?is)<!DOCTYPE[^>]*>`)
)

// CleanSVG strips the XML declaration and DOCTYPE so the SVG can be inlined
// in an HTML document.
func CleanSVG(svg string) string {
	svg = xmlDeclRe.ReplaceAllString(svg, "")
	svg = doctypeRe.ReplaceAllString(svg, "")
	return strings.TrimSpace(svg)
}
