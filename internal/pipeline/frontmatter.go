package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/alnah/go-pagepress/internal/yamlutil"
)

// ErrFrontMatter indicates the YAML front matter could not be decoded.
var ErrFrontMatter = errors.New("invalid front matter")

// FrontMatter holds the fields read from a leading YAML block.
type FrontMatter struct {
	Title string `yaml:"title"`
}

// Opening and closing --- lines; expects normalized \n line endings.
var frontMatterPattern = regexp.MustCompile(`(?s)\A---\n(.*?)\n---[ \t]*(?:\n|\z)`)

// splitFrontMatter removes a leading front matter block and decodes it.
// Content without front matter is returned unchanged with a zero FrontMatter.
func splitFrontMatter(content string) (FrontMatter, string, error) {
	var fm FrontMatter

	m := frontMatterPattern.FindStringSubmatchIndex(content)
	if m == nil {
		return fm, content, nil
	}

	raw := content[m[2]:m[3]]
	if strings.TrimSpace(raw) == "" {
		return fm, content[m[1]:], nil
	}
	if err := yamlutil.Unmarshal([]byte(raw), &fm); err != nil {
		return fm, content, fmt.Errorf("%w: %v", ErrFrontMatter, err)
	}
	return fm, content[m[1]:], nil
}
