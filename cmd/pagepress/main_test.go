package main

// Notes:
// - runMain is tested end to end against a stub engine: flags, settings
//   resolution, the conversion and the JSON result on stdout. Real browser
//   runs are covered by the root package integration tests.
// - PDF runs may log a page-count warning when pdfinfo is installed, since
//   the stub PDF is not a real document. That warning is non-fatal.

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pagepress "github.com/alnah/go-pagepress"
)

// ---------------------------------------------------------------------------
// TestRunMain_Dispatch - Command routing and exit codes
// ---------------------------------------------------------------------------

func TestRunMain_Dispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"no command", []string{"pagepress"}, ExitFailure, "", "Usage: pagepress"},
		{"unknown command", []string{"pagepress", "render"}, ExitFailure, "", "Unknown command: render"},
		{"version", []string{"pagepress", "version"}, ExitSuccess, "pagepress dev", ""},
		{"help", []string{"pagepress", "help"}, ExitSuccess, "Commands:", ""},
		{"help convert", []string{"pagepress", "help", "convert"}, ExitSuccess, "--device-scale-factor", ""},
		{"presets", []string{"pagepress", "presets"}, ExitSuccess, "1200x630", ""},
		{"presets with args", []string{"pagepress", "presets", "og"}, ExitFailure, "", "takes no arguments"},
		{"templates", []string{"pagepress", "templates"}, ExitSuccess, "magazine", ""},
		{"convert help", []string{"pagepress", "convert", "--help"}, ExitSuccess, "", "Usage: pagepress convert"},
		{"convert bad flag", []string{"pagepress", "convert", "--bogus"}, ExitFailure, "", "error:"},
		{"convert positional", []string{"pagepress", "convert", "doc.md"}, ExitFailure, "", "unexpected argument"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv(nil, &stubBackend{page: &stubPage{}})
			code := runMain(tt.args, env)

			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, stderr)
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout missing %q:\n%s", tt.wantStdout, stdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantStderr, stderr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Convert - Full conversions against the stub engine
// ---------------------------------------------------------------------------

func TestRunMain_ConvertPNG(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeFile(t, dir, "card.md", "# Launch\n\nShipping today.\n")
	out := filepath.Join(dir, "card.png")

	page := &stubPage{}
	env, stdout, stderr := testEnv(nil, &stubBackend{page: page})

	code := runMain([]string{"pagepress", "convert", "-i", src, "-o", out, "--preset", "og", "-t", "card"}, env)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}

	var res pagepress.Result
	if err := json.Unmarshal(stdout.Bytes(), &res); err != nil {
		t.Fatalf("stdout is not a JSON result: %v\n%s", err, stdout)
	}
	if res.ArtifactPath != out {
		t.Errorf("artifactPath = %q, want %q", res.ArtifactPath, out)
	}
	if res.Meta.Width != 1200 || res.Meta.Height != 630 {
		t.Errorf("size = %dx%d, want 1200x630", res.Meta.Width, res.Meta.Height)
	}
	if res.Meta.Preset == nil || *res.Meta.Preset != "og" {
		t.Errorf("preset = %v, want og", res.Meta.Preset)
	}
	if res.Meta.GeneratedAt != "2026-03-14T15:09:26Z" {
		t.Errorf("generatedAt = %q", res.Meta.GeneratedAt)
	}
	if page.cfg.DeviceScaleFactor != pagepress.DefaultDeviceScaleFactor {
		t.Errorf("device scale factor = %v, want default", page.cfg.DeviceScaleFactor)
	}

	// --keep-html is the default
	if res.HTMLPath == "" {
		t.Fatal("htmlPath empty, want the snapshot by default")
	}
	for _, path := range []string{res.ArtifactPath, res.HTMLPath, res.MetaPath} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing output %s: %v", path, err)
		}
	}
}

func TestRunMain_ConvertPDFFromStdin(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "report.pdf")

	env, stdout, stderr := testEnv(nil, &stubBackend{page: &stubPage{}})
	env.Stdin = strings.NewReader("# Report\n\nBody.\n")

	code := runMain([]string{"pagepress", "convert", "--input", "-", "--output", out, "--no-html", "--pdf-format", "letter", "--margin", "12mm"}, env)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}

	var res pagepress.Result
	if err := json.Unmarshal(stdout.Bytes(), &res); err != nil {
		t.Fatalf("stdout is not a JSON result: %v", err)
	}
	if res.Meta.Kind != pagepress.KindPDF {
		t.Errorf("kind = %q, want pdf", res.Meta.Kind)
	}
	if res.HTMLPath != "" {
		t.Errorf("htmlPath = %q, want none with --no-html", res.HTMLPath)
	}
	if _, err := os.Stat(filepath.Join(dir, "report.html")); !os.IsNotExist(err) {
		t.Error("snapshot written despite --no-html")
	}
}

func TestRunMain_ConvertFailures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeFile(t, dir, "doc.md", "# Doc\n")

	tests := []struct {
		name       string
		args       []string
		backend    *stubBackend
		wantStderr []string
	}{
		{
			name:       "engine not installed",
			args:       []string{"-i", src, "-o", filepath.Join(dir, "a.pdf")},
			backend:    &stubBackend{launchErr: fmt.Errorf("%w: no Chrome", pagepress.ErrBackendUnavailable)},
			wantStderr: []string{"error:", "hint: install Chrome or Chromium"},
		},
		{
			name:       "unknown engine",
			args:       []string{"-i", src, "-o", filepath.Join(dir, "b.pdf"), "--engine", "firefox"},
			backend:    &stubBackend{page: &stubPage{}},
			wantStderr: []string{`unknown engine "firefox"`},
		},
		{
			name:       "unknown preset",
			args:       []string{"-i", src, "-o", filepath.Join(dir, "c.png"), "--preset", "billboard"},
			backend:    &stubBackend{page: &stubPage{}},
			wantStderr: []string{"unknown preset", "available: banner"},
		},
		{
			name:       "missing output",
			args:       []string{"-i", src},
			backend:    &stubBackend{page: &stubPage{}},
			wantStderr: []string{"output path is required"},
		},
		{
			name:       "missing CSS file",
			args:       []string{"-i", src, "-o", filepath.Join(dir, "d.pdf"), "--css", filepath.Join(dir, "nope.css")},
			backend:    &stubBackend{page: &stubPage{}},
			wantStderr: []string{"CSS file not found"},
		},
		{
			name:       "missing config",
			args:       []string{"-i", src, "-o", filepath.Join(dir, "e.pdf"), "-c", filepath.Join(dir, "none.yaml")},
			backend:    &stubBackend{page: &stubPage{}},
			wantStderr: []string{"loading config", "hint: use --config"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv(nil, tt.backend)
			code := runMain(append([]string{"pagepress", "convert"}, tt.args...), env)

			if code != ExitFailure {
				t.Fatalf("exit code = %d, want %d", code, ExitFailure)
			}
			if stdout.Len() != 0 {
				t.Errorf("stdout = %q, want nothing on failure", stdout)
			}
			for _, want := range tt.wantStderr {
				if !strings.Contains(stderr.String(), want) {
					t.Errorf("stderr missing %q:\n%s", want, stderr)
				}
			}
		})
	}
}

func TestRunMain_UnknownEnvVarWarns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeFile(t, dir, "doc.md", "# Doc\n")

	env, _, stderr := testEnv(map[string]string{"PAGEPRESS_TEMPLTE": "card"}, &stubBackend{page: &stubPage{}})
	code := runMain([]string{"pagepress", "convert", "-q", "-i", src, "-o", filepath.Join(dir, "doc.pdf")}, env)

	if code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	if !strings.Contains(stderr.String(), "unknown environment variable PAGEPRESS_TEMPLTE") {
		t.Errorf("stderr missing typo warning:\n%s", stderr)
	}
}

// ---------------------------------------------------------------------------
// TestWantsVerbose
// ---------------------------------------------------------------------------

func TestWantsVerbose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"convert", "-v"}, true},
		{[]string{"convert", "--verbose"}, true},
		{[]string{"convert", "-q"}, false},
		{[]string{"convert", "--", "-v"}, false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := wantsVerbose(tt.args); got != tt.want {
			t.Errorf("wantsVerbose(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestHintFor
// ---------------------------------------------------------------------------

func TestHintFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"browser missing", fmt.Errorf("x: %w", pagepress.ErrBackendUnavailable), "install Chrome"},
		{"mmdc missing", fmt.Errorf("x: %w", pagepress.ErrMissingTool), "mermaid-cli"},
		{"timeout", fmt.Errorf("x: %w", pagepress.ErrNavigationTimeout), "--timeout-ms"},
		{"plain", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := hintFor(tt.err)
			if tt.want == "" {
				if got != "" {
					t.Errorf("hintFor() = %q, want none", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("hintFor() = %q, want it to mention %q", got, tt.want)
			}
		})
	}
}
