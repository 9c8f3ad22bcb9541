// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-pagepress/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser launch or connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}

	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForBrowserMissing returns install guidance when no Chromium binary exists.
func ForBrowserMissing() string {
	return formatHints([]string{
		"install Chrome or Chromium (e.g. apt install chromium)",
		"or set ROD_BROWSER_BIN to an existing binary",
		"run 'pagepress doctor' to check the setup",
	})
}

// ForTimeout returns a hint about slow pages.
func ForTimeout() string {
	return format("increase --timeout-ms or use --wait-until load for pages that never go idle")
}

// ForMermaidCLI returns install guidance for the Mermaid CLI.
func ForMermaidCLI() string {
	return formatHints([]string{
		"install with: npm i -g @mermaid-js/mermaid-cli",
		"or set MERMAID_CLI / --mermaid-cli to the mmdc executable",
		"or pass --no-diagrams to render diagram blocks as code",
	})
}

// ForPageInspector returns a hint for a missing pdfinfo binary.
func ForPageInspector() string {
	return format("install poppler-utils (pdfinfo) to record page counts")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/pagepress/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/pagepress") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForAvailable lists the valid names for an unknown template or preset.
func ForAvailable(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
