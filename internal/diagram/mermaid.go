package diagram

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-pagepress/internal/fileutil"
	"github.com/alnah/go-pagepress/internal/toolpath"
)

// MermaidCLI renders Mermaid diagrams by invoking the mmdc executable.
// Every call works in its own scratch directory.
type MermaidCLI struct {
	Runner   CommandRunner
	Locator  toolpath.Locator
	Override string // Explicit mmdc path, searched before MERMAID_CLI and PATH
}

// NewMermaidCLI creates a MermaidCLI with a real runner and locator.
func NewMermaidCLI(override string) *MermaidCLI {
	return &MermaidCLI{
		Runner:   &ExecRunner{},
		Locator:  toolpath.NewLocator(),
		Override: override,
	}
}

// Render writes source to a temp file, runs mmdc on it and returns the cleaned SVG.
func (m *MermaidCLI) Render(ctx context.Context, source, theme string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", ErrEmptySource
	}
	if theme == "" {
		theme = DefaultTheme
	}

	bin, err := m.Locator.Locate(toolpath.MermaidCLI, m.Override)
	if err != nil {
		return "", fmt.Errorf("mermaid code blocks detected but mmdc is unavailable "+
			"(install with `npm i -g @mermaid-js/mermaid-cli` or set MERMAID_CLI): %w", err)
	}

	dir, cleanup, err := fileutil.ScratchDir("pagepress-mermaid")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	defer cleanup()

	in := filepath.Join(dir, "diagram.mmd")
	out := filepath.Join(dir, "diagram.svg")
	if err := os.WriteFile(in, []byte(source), fileutil.FilePermissions); err != nil {
		return "", fmt.Errorf("%w: writing mermaid source: %v", ErrRenderFailed, err)
	}

	_, stderr, err := m.Runner.Run(ctx, bin, "-i", in, "-o", out, "-t", theme, "-b", "transparent")
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: mmdc: %v: %s", ErrRenderFailed, err, strings.TrimSpace(stderr))
	}

	svg, err := os.ReadFile(out)
	if err != nil {
		return "", fmt.Errorf("%w: reading mmdc output: %v", ErrRenderFailed, err)
	}
	return CleanSVG(string(svg)), nil
}

// Compile-time interface check.
var _ Renderer = (*MermaidCLI)(nil)
