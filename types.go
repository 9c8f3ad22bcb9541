package pagepress

import (
	"path/filepath"
	"strings"
	"time"
)

// Format is the markup of a source.
type Format string

// Source formats. An empty Format is inferred from the source.
const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Kind is the artifact type.
type Kind string

// Artifact kinds. An empty Kind is inferred from the output extension.
const (
	KindPDF Kind = "pdf"
	KindPNG Kind = "png"
)

// WaitUntil is the navigation completion condition.
type WaitUntil string

// Wait conditions.
const (
	WaitLoad             WaitUntil = "load"
	WaitDOMContentLoaded WaitUntil = "domcontentloaded"
	WaitNetworkIdle      WaitUntil = "networkidle"
)

// lifecycleEvent names the CDP page lifecycle event that satisfies w.
func (w WaitUntil) lifecycleEvent() string {
	switch w {
	case WaitLoad:
		return "load"
	case WaitDOMContentLoaded:
		return "DOMContentLoaded"
	default:
		return "networkIdle"
	}
}

func (w WaitUntil) valid() bool {
	switch w {
	case WaitLoad, WaitDOMContentLoaded, WaitNetworkIdle:
		return true
	}
	return false
}

// Source describes where the content comes from.
// Exactly one of FilePath, Content and URL must be set.
type Source struct {
	FilePath string // Markdown or HTML file on disk
	Content  string // Inline Markdown or HTML (PDF only)
	URL      string // http, https or file URL, navigated as served
	Format   Format // Optional; inferred when empty
}

// Input holds everything needed for one conversion.
type Input struct {
	Source Source
	Output string // Artifact path; resolved to an absolute path
	Kind   Kind   // Optional; inferred from Output's extension

	Template string // Template name (default: DefaultTemplate)
	Title    string // Overrides the title found in the document

	// Image capture (PNG only).
	Preset            string
	Mode              CaptureMode
	DeviceScaleFactor float64

	// Navigation.
	WaitUntil    WaitUntil
	Timeout      time.Duration
	AllowScripts bool
	AllowNet     []string // URL prefixes; empty means no interception
	Safe         bool     // No JavaScript, no http(s) requests, no remote sources

	Watermark string
	CSS       string // User CSS, placed after every generated rule
	KeepHTML  bool   // Write <stem>.html and load the page from it

	PDF      PDFOptions
	Diagrams DiagramOptions
}

// PDFOptions controls PDF export.
type PDFOptions struct {
	Format            PDFFormat
	Landscape         bool
	Margin            string  // CSS length applied to every side, e.g. "0", "12mm", "0.5in"
	Scale             float64 // 0.1 to 2
	PageRanges        string  // e.g. "1-3, 5"
	PreferCSSPageSize *bool   // nil means true
}

// DiagramOptions controls diagram expansion in Markdown sources.
type DiagramOptions struct {
	Disabled bool   // Render diagram fences as plain code
	Theme    string // Mermaid theme (default: neutral)
}

// Size is a width and height in CSS pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Result describes the files written by a successful conversion.
type Result struct {
	ArtifactPath string   `json:"artifactPath"`
	HTMLPath     string   `json:"htmlPath,omitempty"`
	MetaPath     string   `json:"metaPath"`
	Meta         Metadata `json:"meta"`
}

// inferFormat guesses the format of a file or inline content.
func inferFormat(src Source) Format {
	if src.FilePath != "" {
		switch strings.ToLower(filepath.Ext(src.FilePath)) {
		case ".html", ".htm":
			return FormatHTML
		}
		return FormatMarkdown
	}
	trimmed := strings.ToLower(strings.TrimSpace(src.Content))
	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		return FormatHTML
	}
	return FormatMarkdown
}
