package pipeline

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultCardWidth is the #card-container width when none is given.
const DefaultCardWidth = 1080

// ErrNoTemplate indicates a fragment was composed without a template.
var ErrNoTemplate = errors.New("a template is required to compose an HTML fragment")

// Layout selects the page-level CSS added ahead of user CSS.
type Layout int

const (
	LayoutDocument Layout = iota // Paged output; no card sizing
	LayoutFixed                  // Card clipped to an exact size
	LayoutAuto                   // Card at a fixed width, height follows content
)

// Class returns the value substituted for {{modeClass}}.
func (l Layout) Class() string {
	switch l {
	case LayoutFixed:
		return "mode-fixed"
	case LayoutAuto:
		return "mode-auto"
	default:
		return "mode-print"
	}
}

// ComposeRequest describes one page to assemble.
type ComposeRequest struct {
	Title        string
	Body         string
	Template     *Skeleton // Required unless FullDocument
	CSS          string    // User CSS, placed after every generated rule
	Layout       Layout
	Width        int // Card width; DefaultCardWidth when zero
	Height       int // Card height, LayoutFixed only
	Watermark    string
	AllowScripts bool
	FullDocument bool // Body is a complete document; the template is skipped
}

// Compositor assembles the final HTML page.
type Compositor struct {
	Injector CSSInjector
}

// NewCompositor creates a Compositor that injects CSS as <style> blocks.
func NewCompositor() *Compositor {
	return &Compositor{Injector: &CSSInjection{}}
}

// stylesMarker reserves the style block until the composed page has been
// inspected for code and diagrams.
const stylesMarker = "\uE004styles\uE005"

// bodyMarker holds the body slot until the template markup is final.
const bodyMarker = "\uE004body\uE005"

// Compose renders req into a self-contained HTML document.
// CSS order is layout, code theme, diagrams, then user CSS.
func (c *Compositor) Compose(ctx context.Context, req ComposeRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var out string
	if req.FullDocument {
		out = c.Injector.InjectCSS(ctx, req.Body, stylesMarker)
	} else {
		if req.Template == nil {
			return "", ErrNoTemplate
		}
		out = req.Template.Render(map[Slot]string{
			SlotTitle:     html.EscapeString(req.Title),
			SlotBody:      bodyMarker,
			SlotStyles:    "<style>" + stylesMarker + "</style>",
			SlotWatermark: html.EscapeString(req.Watermark),
			SlotModeClass: req.Layout.Class(),
		})
		if !req.Template.Has(SlotStyles) {
			out = c.Injector.InjectCSS(ctx, out, stylesMarker)
		}
		// Only the template's own watermark element; the body goes in after.
		if req.Watermark != "" {
			out = strings.Replace(out, `class="watermark"`, `class="watermark visible"`, 1)
		}
		out = strings.Replace(out, bodyMarker, req.Body, 1)
	}

	if !req.AllowScripts {
		out = StripScripts(out)
	}

	css, err := c.collectCSS(out, req)
	if err != nil {
		return "", err
	}
	return strings.Replace(out, stylesMarker, sanitizeCSS(css), 1), nil
}

// collectCSS inspects the composed page and joins the style sheets it needs.
func (c *Compositor) collectCSS(page string, req ComposeRequest) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("inspecting composed page: %w", err)
	}

	var parts []string
	if mode := ModeCSS(req.Layout, req.Width, req.Height); mode != "" {
		parts = append(parts, mode)
	}

	if doc.Find(".chroma").Length() > 0 {
		theme := doc.Find(`meta[name="code-theme"]`).AttrOr("content", CodeThemeLight)
		hl, err := HighlightCSS(theme)
		if err != nil {
			return "", err
		}
		parts = append(parts, hl)
	}

	if doc.Find(".diagram-svg").Length() > 0 {
		parts = append(parts, diagramCSS)
	}

	if req.CSS != "" {
		parts = append(parts, req.CSS)
	}
	return strings.Join(parts, "\n"), nil
}

// ModeCSS returns the #card-container rules for a layout.
// Fixed clips the card to width x height and clamps long text; auto only
// pins the width. Documents get none.
func ModeCSS(layout Layout, width, height int) string {
	if width <= 0 {
		width = DefaultCardWidth
	}

	switch layout {
	case LayoutFixed:
		return fmt.Sprintf(fixedModeCSS, width, height)
	case LayoutAuto:
		return fmt.Sprintf(autoModeCSS, width)
	default:
		return ""
	}
}

// FixedCardCSS is re-applied on the live page in fixed mode.
func FixedCardCSS(width, height int) string {
	return fmt.Sprintf("#card-container { width: %dpx; height: %dpx; overflow: hidden; }\n#card-container * { max-width: 100%%; }", width, height)
}

const fixedModeCSS = `#card-container { width: %dpx; height: %dpx; overflow: hidden; }
.content-container { width: 100%%; height: 100%%; overflow: hidden; position: relative; }
#card-container * { max-width: 100%%; }
#card-container h1,
#card-container h2,
#card-container h3 {
  display: -webkit-box;
  -webkit-box-orient: vertical;
  -webkit-line-clamp: 2;
  overflow: hidden;
  text-overflow: ellipsis;
}
#card-container p,
#card-container li,
#card-container blockquote {
  display: -webkit-box;
  -webkit-box-orient: vertical;
  -webkit-line-clamp: 6;
  overflow: hidden;
  text-overflow: ellipsis;
}
#card-container pre {
  max-height: 200px;
  overflow: hidden;
  position: relative;
}
#card-container pre::after {
  content: "…";
  position: absolute;
  right: 16px;
  bottom: 12px;
  color: currentColor;
  opacity: 0.6;
}`

const autoModeCSS = `#card-container { width: %dpx; height: auto; }
.content-container { width: 100%%; height: auto; overflow: visible; position: relative; }`
