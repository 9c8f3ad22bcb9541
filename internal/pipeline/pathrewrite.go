package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// rewrittenAttrs maps elements to the attribute holding a local path.
// Media, srcset, CSS url() and script[src] are left alone.
var rewrittenAttrs = map[string]string{
	"img": "src",
	"a":   "href",
}

// RewriteRelativePaths converts relative img[src] and a[href] values to
// absolute file:// URLs under sourceDir, so that content loaded from memory or
// from a snapshot in another directory still finds its images.
// Paths escaping sourceDir are left untouched. An empty sourceDir is a no-op.
func RewriteRelativePaths(htmlContent, sourceDir string) (string, error) {
	if sourceDir == "" {
		return htmlContent, nil
	}

	root, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	rewriteNode(doc, root)
	return renderHTML(doc, isFragment)
}

// parseHTML parses a full document, or a fragment in body context.
// Fragment nodes are collected under a bare document node.
func parseHTML(content string) (*html.Node, bool, error) {
	if IsFullDocument(content) {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

// renderHTML serializes doc; fragments render their children only.
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if !isFragment {
		if err := html.Render(&buf, doc); err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func rewriteNode(n *html.Node, root string) {
	if n.Type == html.ElementNode {
		if key, ok := rewrittenAttrs[n.Data]; ok {
			rewriteAttr(n, key, root)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, root)
	}
}

func rewriteAttr(n *html.Node, key, root string) {
	for i, attr := range n.Attr {
		if attr.Key != key || !isRelativePath(attr.Val) {
			continue
		}

		// Keep ?query and #fragment out of the filesystem path.
		p, suffix := attr.Val, ""
		if idx := strings.IndexAny(p, "?#"); idx != -1 {
			p, suffix = p[:idx], p[idx:]
		}
		if p == "" {
			continue
		}

		abs := filepath.Join(root, filepath.FromSlash(p))
		if !isPathUnderDir(abs, root) {
			continue
		}
		n.Attr[i].Val = pathToFileURL(abs) + suffix
	}
}

// isRelativePath reports whether a value is a local relative path.
// Anything with a URL scheme, a protocol-relative //host, an anchor or an
// absolute path is not.
func isRelativePath(p string) bool {
	if p == "" || strings.HasPrefix(p, "#") || strings.HasPrefix(p, "//") {
		return false
	}
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
		return false
	}
	if u, err := url.Parse(p); err == nil && u.Scheme != "" {
		return false
	}
	return true
}

// isPathUnderDir checks that absPath stays inside dir (no traversal).
func isPathUnderDir(absPath, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(absPath))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// pathToFileURL converts an absolute path to a file:// URL.
func pathToFileURL(absPath string) string {
	p := filepath.ToSlash(absPath)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // Windows drive letter
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
