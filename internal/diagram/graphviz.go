package diagram

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
)

// Graphviz renders DOT sources in process. The theme is ignored.
type Graphviz struct{}

// NewGraphviz creates a Graphviz renderer.
func NewGraphviz() *Graphviz {
	return &Graphviz{}
}

func (g *Graphviz) Render(ctx context.Context, source, _ string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", ErrEmptySource
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: init graphviz: %v", ErrRenderFailed, err)
	}
	defer gv.Close()

	graph, err := graphviz.ParseBytes([]byte(source))
	if err != nil {
		return "", fmt.Errorf("%w: parse DOT: %v", ErrRenderFailed, err)
	}
	if graph == nil {
		return "", fmt.Errorf("%w: parse DOT: no graph", ErrRenderFailed)
	}
	defer graph.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.SVG, &buf); err != nil {
		return "", fmt.Errorf("%w: render DOT: %v", ErrRenderFailed, err)
	}
	return CleanSVG(buf.String()), nil
}

// Compile-time interface check.
var _ Renderer = (*Graphviz)(nil)

// Defaults returns the renderers for every supported fence language.
// mmdcOverride is an optional explicit mmdc path.
func Defaults(mmdcOverride string) map[string]Renderer {
	gv := NewGraphviz()
	return map[string]Renderer{
		"mermaid":  NewMermaidCLI(mmdcOverride),
		"dot":      gv,
		"graphviz": gv,
	}
}
