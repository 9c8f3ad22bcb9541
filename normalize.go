package pagepress

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-pagepress/internal/fileutil"
)

// Sibling suffixes of the artifact.
const (
	snapshotSuffix = ".html"
	sidecarSuffix  = ".meta.json"
)

// resolvedInput is a validated Input with every path made absolute.
type resolvedInput struct {
	kind   Kind
	format Format

	content   string // Markdown or HTML to transform; empty for URL sources
	raw       string // Fingerprinted: file bytes, inline content or the URL
	url       string // Navigation target for URL sources
	sourceDir string // Base for relative paths; empty for inline and URL sources

	output   string
	htmlPath string
	metaPath string
}

// remote reports whether the page is navigated as served instead of composed.
func (r *resolvedInput) remote() bool {
	return r.url != ""
}

// normalizeInput validates in and resolves its paths.
// Its only side effects are reads of the source file.
func normalizeInput(in Input) (*resolvedInput, error) {
	src := in.Source
	set := 0
	for _, v := range []string{src.FilePath, src.Content, src.URL} {
		if v != "" {
			set++
		}
	}
	switch set {
	case 0:
		return nil, fmt.Errorf("%w: no source given (want a file, inline content or a URL)", ErrInvalidInput)
	case 1:
	default:
		return nil, fmt.Errorf("%w: only one of file, inline content and URL may be given", ErrInvalidInput)
	}

	r := &resolvedInput{}
	var err error

	if r.output, r.kind, err = resolveOutput(in.Output, in.Kind); err != nil {
		return nil, err
	}
	r.htmlPath = fileutil.SiblingPath(r.output, snapshotSuffix)
	r.metaPath = fileutil.SiblingPath(r.output, sidecarSuffix)

	switch src.Format {
	case "", FormatMarkdown, FormatHTML:
	default:
		return nil, fmt.Errorf("%w: unknown format %q (want markdown or html)", ErrInvalidInput, src.Format)
	}

	if in.Preset != "" && r.kind == KindPDF {
		return nil, fmt.Errorf("%w: presets apply to PNG output only", ErrInvalidInput)
	}
	if in.Mode != "" && r.kind == KindPDF {
		return nil, fmt.Errorf("%w: capture modes apply to PNG output only", ErrInvalidInput)
	}
	if !in.WaitUntil.valid() {
		return nil, fmt.Errorf("%w: unknown wait condition %q (want load, domcontentloaded or networkidle)", ErrInvalidInput, in.WaitUntil)
	}
	for _, prefix := range in.AllowNet {
		if u, err := url.Parse(prefix); err != nil || u.Scheme == "" {
			return nil, fmt.Errorf("%w: allow-net prefix %q is not an absolute URL", ErrInvalidInput, prefix)
		}
	}

	switch {
	case src.URL != "":
		err = r.resolveURL(src, in.Safe)
	case src.FilePath != "":
		err = r.resolveFile(src)
	default:
		err = r.resolveContent(src)
	}
	if err != nil {
		return nil, err
	}

	if src.Content != "" && r.kind == KindPNG {
		return nil, fmt.Errorf("%w: inline content is not supported for PNG output; pass a file or URL", ErrInvalidInput)
	}
	if in.KeepHTML && !r.remote() && src.FilePath != "" && sameFile(src.FilePath, r.htmlPath) {
		return nil, fmt.Errorf("%w: HTML snapshot %s would overwrite the source; choose another output name", ErrInvalidInput, r.htmlPath)
	}
	return r, nil
}

// resolveOutput makes the artifact path absolute and settles its kind.
func resolveOutput(output string, kind Kind) (string, Kind, error) {
	if strings.TrimSpace(output) == "" {
		return "", "", fmt.Errorf("%w: output path is required", ErrInvalidInput)
	}

	switch kind {
	case KindPDF, KindPNG:
	case "":
		switch strings.ToLower(filepath.Ext(output)) {
		case ".pdf":
			kind = KindPDF
		case ".png":
			kind = KindPNG
		default:
			return "", "", fmt.Errorf("%w: cannot infer artifact kind from %q (use .pdf or .png)", ErrInvalidInput, output)
		}
	default:
		return "", "", fmt.Errorf("%w: unknown artifact kind %q (want pdf or png)", ErrInvalidInput, kind)
	}

	abs, err := filepath.Abs(output)
	if err != nil {
		return "", "", fmt.Errorf("%w: resolving output path: %v", ErrInvalidInput, err)
	}
	return abs, kind, nil
}

func (r *resolvedInput) resolveURL(src Source, safe bool) error {
	u, err := url.Parse(src.URL)
	if err != nil {
		return fmt.Errorf("%w: invalid URL %q: %v", ErrInvalidInput, src.URL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if safe {
			return fmt.Errorf("%w: safe mode refuses remote URL %s", ErrInvalidInput, src.URL)
		}
		if u.Host == "" {
			return fmt.Errorf("%w: URL %q has no host", ErrInvalidInput, src.URL)
		}
	case "file":
	default:
		return fmt.Errorf("%w: unsupported URL scheme %q (want http, https or file)", ErrInvalidInput, u.Scheme)
	}
	if src.Format == FormatMarkdown {
		return fmt.Errorf("%w: URL sources are rendered as served; markdown format does not apply", ErrInvalidInput)
	}

	r.url = u.String()
	r.raw = src.URL
	r.format = FormatHTML
	return nil
}

func (r *resolvedInput) resolveFile(src Source) error {
	path, err := filepath.Abs(src.FilePath)
	if err != nil {
		return fmt.Errorf("%w: resolving %s: %v", ErrInvalidInput, src.FilePath, err)
	}

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("%w: file not found: %s", ErrInvalidInput, src.FilePath)
	case err != nil:
		return fmt.Errorf("%w: %v", ErrIO, err)
	case info.IsDir():
		return fmt.Errorf("%w: %s is a directory", ErrInvalidInput, src.FilePath)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- user-provided input
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrIO, src.FilePath, err)
	}

	r.content = string(data)
	r.raw = r.content
	r.sourceDir = filepath.Dir(path)
	r.format = src.Format
	if r.format == "" {
		r.format = inferFormat(src)
	}
	return nil
}

func (r *resolvedInput) resolveContent(src Source) error {
	r.content = src.Content
	r.raw = src.Content
	r.format = src.Format
	if r.format == "" {
		r.format = inferFormat(src)
	}
	return nil
}

// sameFile reports whether a and b name the same path once made absolute.
func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
