package pipeline

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
)

var (
	// Anything outside ASCII word chars, CJK ideographs, hyphen and space.
	slugStrip = regexp.MustCompile(`[^\w\x{4e00}-\x{9fa5}\- ]+`)
	slugSpace = regexp.MustCompile(`\s+`)
)

// Slugify turns heading text into a readable anchor id.
// "Hello World 测试!" becomes "hello-world-测试".
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = slugStrip.ReplaceAllString(s, "")
	return slugSpace.ReplaceAllString(s, "-")
}

// SlugHref percent-encodes a slug for use in a fragment link.
func SlugHref(slug string) string {
	return "#" + url.PathEscape(slug)
}

// slugIDs implements parser.IDs with Slugify and -1, -2 suffixes for duplicates.
type slugIDs struct {
	used map[string]bool
}

func newSlugIDs() *slugIDs {
	return &slugIDs{used: map[string]bool{}}
}

func (s *slugIDs) Generate(value []byte, _ ast.NodeKind) []byte {
	base := Slugify(string(value))
	if base == "" {
		base = "heading"
	}

	id := base
	for i := 1; s.used[id]; i++ {
		id = base + "-" + strconv.Itoa(i)
	}
	s.used[id] = true
	return []byte(id)
}

func (s *slugIDs) Put(value []byte) {
	s.used[string(value)] = true
}

// Compile-time interface check.
var _ parser.IDs = (*slugIDs)(nil)
