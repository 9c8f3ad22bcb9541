// Package toolpath locates external executables with a fixed search order:
// explicit override, then an environment variable, then the PATH.
package toolpath

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrNotFound indicates a required external tool could not be located.
var ErrNotFound = errors.New("required external tool not found")

// Tool describes an external executable and where to look for it.
type Tool struct {
	Name     string   // Human-readable name used in errors
	Binaries []string // Candidate executable names searched in PATH
	EnvVar   string   // Environment variable holding an explicit path
}

// Known tools.
var (
	MermaidCLI = Tool{
		Name:     "Mermaid CLI (mmdc)",
		Binaries: []string{"mmdc", "mmdc.cmd"},
		EnvVar:   "MERMAID_CLI",
	}
	PDFInfo = Tool{
		Name:     "pdfinfo",
		Binaries: []string{"pdfinfo"},
		EnvVar:   "PDFINFO",
	}
)

// Locator resolves a tool to an executable path.
type Locator interface {
	Locate(tool Tool, override string) (string, error)
}

// SearchLocator implements Locator over injectable lookups.
type SearchLocator struct {
	LookPath func(file string) (string, error)
	Getenv   func(key string) string
	Stat     func(name string) (os.FileInfo, error)
}

// NewLocator creates a SearchLocator backed by the real environment.
func NewLocator() *SearchLocator {
	return &SearchLocator{
		LookPath: exec.LookPath,
		Getenv:   os.Getenv,
		Stat:     os.Stat,
	}
}

// Locate returns the first existing candidate in search order:
// override, then tool.EnvVar, then each of tool.Binaries in PATH.
// An override or env path that does not exist falls through to the next step.
func (l *SearchLocator) Locate(tool Tool, override string) (string, error) {
	var searched []string

	if override != "" {
		if l.exists(override) {
			return override, nil
		}
		searched = append(searched, override)
	}

	if tool.EnvVar != "" {
		if p := l.Getenv(tool.EnvVar); p != "" {
			if l.exists(p) {
				return p, nil
			}
			searched = append(searched, "$"+tool.EnvVar+"="+p)
		}
	}

	for _, bin := range tool.Binaries {
		if p, err := l.LookPath(bin); err == nil {
			return p, nil
		}
		searched = append(searched, "PATH:"+bin)
	}

	return "", fmt.Errorf("%w: %s (searched %s)", ErrNotFound, tool.Name, strings.Join(searched, ", "))
}

func (l *SearchLocator) exists(path string) bool {
	info, err := l.Stat(path)
	return err == nil && !info.IsDir()
}

// Compile-time interface check.
var _ Locator = (*SearchLocator)(nil)
