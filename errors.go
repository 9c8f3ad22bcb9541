package pagepress

import (
	"errors"

	"github.com/alnah/go-pagepress/internal/toolpath"
)

// Sentinel errors for library operations.
var (
	// Caller errors: bad or conflicting input, never retried.
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnknownPreset   = errors.New("unknown preset")
	ErrUnknownTemplate = errors.New("unknown template")

	// ErrMissingTool reports an external helper (mmdc, pdfinfo) that could not
	// be located. Diagram blocks never render without their tool.
	ErrMissingTool = toolpath.ErrNotFound

	// ErrBackendUnavailable means the browser engine is not installed. It is
	// returned before any artifact I/O.
	ErrBackendUnavailable = errors.New("render backend unavailable")

	// Render failures.
	ErrNavigationTimeout = errors.New("navigation timed out")
	ErrMissingElement    = errors.New("capture element not found")
	ErrRender            = errors.New("render failed")

	// ErrIO covers reading sources and writing the artifact, snapshot or sidecar.
	ErrIO = errors.New("i/o error")
)
