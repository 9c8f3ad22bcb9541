package main

import (
	"errors"

	pagepress "github.com/alnah/go-pagepress"
	"github.com/alnah/go-pagepress/internal/config"
	"github.com/alnah/go-pagepress/internal/hints"
)

// Exit codes for the pagepress CLI.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// hintFor returns actionable hints for err, or "" when there are none.
// It uses errors.Is, so callers must wrap with %w.
func hintFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, pagepress.ErrBackendUnavailable):
		return hints.ForBrowserMissing()
	case errors.Is(err, pagepress.ErrMissingTool):
		return hints.ForMermaidCLI()
	case errors.Is(err, pagepress.ErrNavigationTimeout):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(nil)
	case errors.Is(err, pagepress.ErrIO):
		return hints.ForOutputDirectory()
	case errors.Is(err, pagepress.ErrRender):
		return hints.ForBrowserConnect()
	}
	return ""
}
