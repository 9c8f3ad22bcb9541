package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	pagepress "github.com/alnah/go-pagepress"
	"github.com/alnah/go-pagepress/internal/hints"
	"github.com/alnah/go-pagepress/internal/toolpath"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// versionTimeout bounds "chrome --version".
const versionTimeout = 10 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"`
	Browser  browserInfo `json:"browser"`
	Tools    []toolInfo  `json:"tools"`
	Env      envInfo     `json:"environment"`
	System   systemInfo  `json:"system"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// browserInfo holds Chrome/Chromium detection results.
type browserInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// toolInfo holds the lookup result for one optional external tool.
type toolInfo struct {
	Name    string `json:"name"`
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Purpose string `json:"purpose"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// doctorProbe holds the lookups doctor performs, injectable for tests.
type doctorProbe struct {
	getenv         func(string) string
	exists         func(string) bool
	findBrowser    func() (string, error)
	browserVersion func(path string) (string, error)
	locator        toolpath.Locator
	tempDir        func() string
}

// newDoctorProbe returns a probe backed by the real system.
func newDoctorProbe(env *Environment) *doctorProbe {
	return &doctorProbe{
		getenv: env.Getenv,
		exists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
		findBrowser:    pagepress.FindBrowser,
		browserVersion: browserVersion,
		locator:        toolpath.NewLocator(),
		tempDir:        os.TempDir,
	}
}

// browserVersion runs "<path> --version".
func browserVersion(path string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, path, "--version").Output() // #nosec G204 -- path comes from browser discovery
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Warnings still exit 0; only errors fail.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput := false
	for _, arg := range args {
		switch arg {
		case "--json":
			jsonOutput = true
		default:
			fmt.Fprintf(env.Stderr, "error: unknown doctor flag %q\n", arg)
			return ExitFailure
		}
	}

	result := runDoctor(newDoctorProbe(env))

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitFailure
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(p *doctorProbe) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  p.getenv("ROD_NO_SANDBOX"),
			BrowserBin: p.getenv("ROD_BROWSER_BIN"),
		},
	}

	checkEnvironment(p, result)
	checkBrowser(p, result)
	checkTools(p, result)
	checkSystem(p, result)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}

	return result
}

// checkBrowser locates the Chromium binary a render would launch.
func checkBrowser(p *doctorProbe, result *doctorResult) {
	path, err := p.findBrowser()
	if err != nil {
		result.Errors = append(result.Errors,
			"Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
		return
	}

	result.Browser.Found = true
	result.Browser.Path = path

	if version, err := p.browserVersion(path); err == nil {
		result.Browser.Version = version
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	// The backends drop the sandbox under CI, with a custom binary, or on request.
	result.Browser.Sandbox = p.getenv("CI") != "true" &&
		result.Env.BrowserBin == "" &&
		result.Env.NoSandbox != "1"

	if (result.Env.Container || result.Env.CI) && result.Browser.Sandbox {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// checkTools looks up the optional external tools. A missing tool is a
// warning: renders that do not need it still work.
func checkTools(p *doctorProbe, result *doctorResult) {
	tools := []struct {
		tool    toolpath.Tool
		purpose string
		missing string
	}{
		{toolpath.MermaidCLI, "mermaid diagrams", "Mermaid CLI (mmdc) not found; mermaid blocks will fail" + hints.ForMermaidCLI()},
		{toolpath.PDFInfo, "PDF page counts", "pdfinfo not found; PDF sidecars will omit pageCount" + hints.ForPageInspector()},
	}

	for _, t := range tools {
		info := toolInfo{Name: t.tool.Name, Purpose: t.purpose}
		if path, err := p.locator.Locate(t.tool, ""); err == nil {
			info.Found = true
			info.Path = path
		} else {
			result.Warnings = append(result.Warnings, t.missing)
		}
		result.Tools = append(result.Tools, info)
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(p *doctorProbe, result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer(p)

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if p.getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint names the signal that matched.
func isContainer(p *doctorProbe) (bool, string) {
	if p.getenv("PAGEPRESS_CONTAINER") == "1" {
		return true, "PAGEPRESS_CONTAINER=1"
	}
	if p.exists("/.dockerenv") {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn
	if v := p.getenv("container"); v != "" {
		return true, "container=" + v
	}
	if p.getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory is writable; diagram rendering
// and browser profiles need it.
func checkSystem(p *doctorProbe, result *doctorResult) {
	tmpDir := p.tempDir()
	testFile := filepath.Join(tmpDir, "pagepress-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	_ = os.Remove(testFile)
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	printTitle(w, "pagepress doctor")
	fmt.Fprintln(w)

	printTitle(w, "Chrome/Chromium")
	if r.Browser.Found {
		printSuccess(w, "Found at %s", r.Browser.Path)
		if r.Browser.Version != "" {
			printSuccess(w, "Version: %s", r.Browser.Version)
		}
		if r.Browser.Sandbox {
			printSuccess(w, "Sandbox: enabled")
		} else {
			printInfo(w, "Sandbox: disabled")
		}
	} else {
		printError(w, "Not found")
	}
	fmt.Fprintln(w)

	printTitle(w, "Tools")
	for _, t := range r.Tools {
		if t.Found {
			printSuccess(w, "%s: %s", t.Name, t.Path)
		} else {
			printWarning(w, "%s: not found (%s)", t.Name, t.Purpose)
		}
	}
	fmt.Fprintln(w)

	printTitle(w, "Environment")
	printKeyValue(w, "Platform", r.Env.OS+"/"+r.Env.Arch)
	if r.Env.Container {
		printKeyValue(w, "Container", "detected ("+r.Env.ContainerHint+")")
	}
	if r.Env.CI {
		printKeyValue(w, "CI", "detected")
	}
	fmt.Fprintln(w)

	printTitle(w, "System")
	if r.System.TempWritable {
		printSuccess(w, "Temp directory: writable")
	} else {
		printError(w, "Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		printTitle(w, "Warnings")
		for _, warn := range r.Warnings {
			printWarning(w, "%s", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		printTitle(w, "Errors")
		for _, err := range r.Errors {
			printError(w, "%s", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, styleDim.Render("Status:")+" Ready to convert")
	case statusWarnings:
		fmt.Fprintln(w, styleDim.Render("Status:")+" Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, styleDim.Render("Status:")+" Not ready (see errors above)")
	}
}
