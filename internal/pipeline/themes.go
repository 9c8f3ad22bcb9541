package pipeline

import (
	"fmt"
	"strings"
	"sync"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

// Code themes selected by <meta name="code-theme" content="...">.
const (
	CodeThemeLight = "light"
	CodeThemeDark  = "dark"
)

// codeStyles maps code themes to chroma style names.
var codeStyles = map[string]string{
	CodeThemeLight: "github",
	CodeThemeDark:  "monokai",
}

// diagramCSS lays out inline diagram SVGs.
const diagramCSS = `.diagram-svg { margin: 1.5em 0; overflow-x: auto; }
.diagram-svg svg { max-width: 100%; height: auto; display: block; }`

var (
	highlightMu    sync.Mutex
	highlightCache = map[string]string{}
)

// HighlightCSS returns the chroma class CSS for a code theme.
// Unknown themes use the light style.
func HighlightCSS(theme string) (string, error) {
	name, ok := codeStyles[strings.ToLower(strings.TrimSpace(theme))]
	if !ok {
		name = codeStyles[CodeThemeLight]
	}

	highlightMu.Lock()
	defer highlightMu.Unlock()

	if css, ok := highlightCache[name]; ok {
		return css, nil
	}

	var buf strings.Builder
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(name)); err != nil {
		return "", fmt.Errorf("generating %s highlight CSS: %w", name, err)
	}
	highlightCache[name] = buf.String()
	return highlightCache[name], nil
}
