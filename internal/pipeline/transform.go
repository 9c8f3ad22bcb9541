package pipeline

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alnah/go-pagepress/internal/diagram"
)

// DefaultTitle is used when a document carries no title of its own.
const DefaultTitle = "Document"

// Line ending normalization.
var crlfOrCR = regexp.MustCompile(`\r\n?`)

// Document is the transformed body with its resolved title.
type Document struct {
	Title        string
	Body         string
	HasDiagrams  bool
	FullDocument bool // Body is a complete HTML document, not a fragment
}

// TransformOptions holds per-request transform settings.
type TransformOptions struct {
	SourceDir        string // Base for relative img/a paths; empty disables rewriting
	DiagramsDisabled bool   // Leave diagram fences as plain code blocks
	DiagramTheme     string // Mermaid theme, diagram.DefaultTheme when empty
}

// Transformer turns Markdown or HTML sources into a Document.
type Transformer struct {
	Converter HTMLConverter
	Renderers map[string]diagram.Renderer // Keyed by fence language
}

// NewTransformer creates a Transformer with the Goldmark converter.
func NewTransformer(renderers map[string]diagram.Renderer) *Transformer {
	return &Transformer{
		Converter: NewGoldmarkConverter(),
		Renderers: renderers,
	}
}

// Transform converts Markdown to an HTML fragment.
// The title comes from front matter, then the first h1, then DefaultTitle.
func (t *Transformer) Transform(ctx context.Context, markdown string, opts TransformOptions) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content := normalizeLineEndings(markdown)

	fm, content, err := splitFrontMatter(content)
	if err != nil {
		return nil, err
	}

	expansion := newDiagramExpansion(t.Renderers, opts.DiagramTheme)
	if !opts.DiagramsDisabled {
		content, err = expansion.expand(ctx, content)
		if err != nil {
			return nil, err
		}
	}

	body, err := t.Converter.ToHTML(ctx, content)
	if err != nil {
		return nil, err
	}
	body = expansion.substitute(body)

	body, err = RewriteRelativePaths(body, opts.SourceDir)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(fm.Title)
	if title == "" {
		title = firstHeading(body)
	}
	if title == "" {
		title = DefaultTitle
	}

	return &Document{
		Title:       title,
		Body:        body,
		HasDiagrams: expansion.found(),
	}, nil
}

// TransformHTML prepares an HTML source: relative paths are rewritten and the
// title is read from <title>, then the first h1.
func (t *Transformer) TransformHTML(ctx context.Context, content string, opts TransformOptions) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full := IsFullDocument(content)
	body, err := RewriteRelativePaths(content, opts.SourceDir)
	if err != nil {
		return nil, err
	}

	title := documentTitle(body)
	if title == "" {
		title = DefaultTitle
	}

	return &Document{
		Title:        title,
		Body:         body,
		FullDocument: full,
	}, nil
}

// IsFullDocument reports whether content starts with <!DOCTYPE or <html.
func IsFullDocument(content string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(content))
	return strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html")
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

func firstHeading(htmlContent string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

func documentTitle(htmlContent string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}
