package pagepress

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"

	"github.com/alnah/go-pagepress/internal/toolpath"
)

// PageCounter reports how many pages a PDF has. Failures are cosmetic: the
// converter logs them and leaves pageCount out of the metadata.
type PageCounter interface {
	PageCount(ctx context.Context, pdfPath string) (int, error)
}

// pagesLine matches pdfinfo's "Pages:          12" line.
var pagesLine = regexp.MustCompile(`(?m)^Pages:\s+(\d+)\s*$`)

// PDFInfo counts pages with poppler's pdfinfo.
type PDFInfo struct {
	Locator  toolpath.Locator
	Override string // Explicit pdfinfo path; PDFINFO and PATH otherwise
	// Output runs the tool and returns its stdout.
	Output func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewPDFInfo creates a PDFInfo that searches PDFINFO, then PATH.
func NewPDFInfo() *PDFInfo {
	return &PDFInfo{
		Locator: toolpath.NewLocator(),
		Output: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output() // #nosec G204 -- located binary
		},
	}
}

// PageCount runs pdfinfo on pdfPath and parses the page count.
func (p *PDFInfo) PageCount(ctx context.Context, pdfPath string) (int, error) {
	bin, err := p.Locator.Locate(toolpath.PDFInfo, p.Override)
	if err != nil {
		return 0, err
	}

	out, err := p.Output(ctx, bin, pdfPath)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("running pdfinfo: %w", err)
	}

	m := pagesLine.FindSubmatch(out)
	if m == nil {
		return 0, errors.New("pdfinfo output has no Pages line")
	}
	n, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0, fmt.Errorf("parsing page count %q: %w", m[1], err)
	}
	return n, nil
}

// Compile-time interface check.
var _ PageCounter = (*PDFInfo)(nil)
