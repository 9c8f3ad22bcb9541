package pipeline

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// TOC depth range.
const (
	tocMinLevel = 1
	tocMaxLevel = 4
)

var tocMarker = regexp.MustCompile(`(?i)^\[TOC\]$`)

// KindTableOfContents is the node kind of an expanded [TOC] marker.
var KindTableOfContents = ast.NewNodeKind("TableOfContents")

type tocEntry struct {
	Level int
	ID    string
	Text  string
}

// tableOfContents replaces a [TOC] paragraph.
type tableOfContents struct {
	ast.BaseBlock
	Entries []tocEntry
}

func (n *tableOfContents) Kind() ast.NodeKind {
	return KindTableOfContents
}

func (n *tableOfContents) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// headingAnchors assigns slug ids to every heading and expands [TOC] markers.
// Ids come from the parser context's IDs, so duplicates are numbered per document.
type headingAnchors struct{}

func (t *headingAnchors) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	src := reader.Source()

	var entries []tocEntry
	var markers []*ast.Paragraph

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			title := plainText(node, src)
			id := pc.IDs().Generate([]byte(title), ast.KindHeading)
			node.SetAttribute([]byte("id"), id)
			if node.Level >= tocMinLevel && node.Level <= tocMaxLevel {
				entries = append(entries, tocEntry{Level: node.Level, ID: string(id), Text: strings.TrimSpace(title)})
			}
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			if isTOCMarker(node, src) {
				markers = append(markers, node)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	for _, p := range markers {
		toc := &tableOfContents{Entries: entries}
		p.Parent().ReplaceChild(p.Parent(), p, toc)
	}
}

func isTOCMarker(p *ast.Paragraph, src []byte) bool {
	lines := p.Lines()
	if lines.Len() != 1 {
		return false
	}
	seg := lines.At(0)
	return tocMarker.Match(bytes.TrimSpace(seg.Value(src)))
}

// plainText concatenates the visible text of a node's inline children.
func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			// Typographer substitutions are entities, not text.
			if !t.IsCode() {
				b.Write(t.Value)
			}
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// tocRenderer renders tableOfContents nodes as nested lists.
type tocRenderer struct{}

func (r *tocRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindTableOfContents, r.render)
}

func (r *tocRenderer) render(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	toc := n.(*tableOfContents)
	_, _ = w.WriteString(`<nav class="table-of-contents">`)
	_, _ = w.WriteString(renderTOCList(toc.Entries))
	_, _ = w.WriteString("</nav>\n")
	return ast.WalkSkipChildren, nil
}

// renderTOCList nests entries by heading level. A deeper level opens a
// child list inside the current item; a shallower one closes lists until
// the parent list is shallower than the entry. An entry that lands between
// two open levels joins the inner list, so 1, 3, 2 keeps 2 under 1.
func renderTOCList(entries []tocEntry) string {
	var b strings.Builder
	var levels []int

	for _, e := range entries {
		if len(levels) == 0 || e.Level > levels[len(levels)-1] {
			b.WriteString("<ul>")
			levels = append(levels, e.Level)
		} else {
			b.WriteString("</li>")
			for len(levels) > 1 && e.Level <= levels[len(levels)-2] {
				b.WriteString("</ul></li>")
				levels = levels[:len(levels)-1]
			}
			levels[len(levels)-1] = min(levels[len(levels)-1], e.Level)
		}
		b.WriteString(`<li><a href="`)
		b.Write(util.EscapeHTML([]byte(SlugHref(e.ID))))
		b.WriteString(`">`)
		b.Write(util.EscapeHTML([]byte(e.Text)))
		b.WriteString("</a>")
	}
	for range levels {
		b.WriteString("</li></ul>")
	}
	return b.String()
}

// anchorExtension wires heading ids and [TOC] expansion into Goldmark.
type anchorExtension struct{}

func (e *anchorExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&headingAnchors{}, 100),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&tocRenderer{}, 100),
	))
}

// Compile-time interface checks.
var (
	_ parser.ASTTransformer = (*headingAnchors)(nil)
	_ renderer.NodeRenderer = (*tocRenderer)(nil)
	_ goldmark.Extender     = (*anchorExtension)(nil)
)
