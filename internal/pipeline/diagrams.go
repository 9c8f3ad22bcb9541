package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alnah/go-pagepress/internal/diagram"
)

// Diagram placeholders use Unicode Private Use Area characters so they pass
// through Goldmark as plain text and cannot collide with document content.
const (
	diagramStartPlaceholder = "\uE002" // U+E002: Private Use Area
	diagramEndPlaceholder   = "\uE003" // U+E003: Private Use Area
)

// Fenced block with a diagram language: ```mermaid ... ```
var diagramFence = regexp.MustCompile("(?ms)^```[ \\t]*(mermaid|dot|graphviz)[ \\t]*\\n(.*?)\\n?^```[ \\t]*$")

// renderedDiagram is one expanded fence awaiting substitution into the HTML.
type renderedDiagram struct {
	lang string
	svg  string
}

// diagramExpansion tracks placeholders for a single transform call.
type diagramExpansion struct {
	renderers map[string]diagram.Renderer
	theme     string
	cache     map[string]string
	diagrams  []renderedDiagram
}

func newDiagramExpansion(renderers map[string]diagram.Renderer, theme string) *diagramExpansion {
	if theme == "" {
		theme = diagram.DefaultTheme
	}
	return &diagramExpansion{
		renderers: renderers,
		theme:     theme,
		cache:     map[string]string{},
	}
}

// expand renders every diagram fence that has a renderer and replaces it with
// a placeholder paragraph. Identical sources under the same theme render once.
func (d *diagramExpansion) expand(ctx context.Context, content string) (string, error) {
	var firstErr error

	out := diagramFence.ReplaceAllStringFunc(content, func(block string) string {
		if firstErr != nil {
			return block
		}
		m := diagramFence.FindStringSubmatch(block)
		lang, source := m[1], m[2]

		r, ok := d.renderers[lang]
		if !ok || strings.TrimSpace(source) == "" {
			return block
		}

		sum := sha256.Sum256([]byte(source))
		key := d.theme + ":" + hex.EncodeToString(sum[:])

		svg, ok := d.cache[key]
		if !ok {
			var err error
			svg, err = r.Render(ctx, source, d.theme)
			if err != nil {
				firstErr = fmt.Errorf("rendering %s diagram: %w", lang, err)
				return block
			}
			d.cache[key] = svg
		}

		d.diagrams = append(d.diagrams, renderedDiagram{lang: lang, svg: svg})
		return "\n\n" + placeholder(len(d.diagrams)-1) + "\n\n"
	})

	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// substitute swaps placeholder paragraphs in rendered HTML for diagram containers.
func (d *diagramExpansion) substitute(htmlContent string) string {
	for i, dg := range d.diagrams {
		ph := placeholder(i)
		div := `<div class="diagram-svg" data-diagram="` + dg.lang + `">` + dg.svg + `</div>`
		htmlContent = strings.Replace(htmlContent, "<p>"+ph+"</p>", div, 1)
		htmlContent = strings.Replace(htmlContent, ph, div, 1)
	}
	return htmlContent
}

func (d *diagramExpansion) found() bool {
	return len(d.diagrams) > 0
}

func placeholder(i int) string {
	return diagramStartPlaceholder + "diagram-" + strconv.Itoa(i) + diagramEndPlaceholder
}
