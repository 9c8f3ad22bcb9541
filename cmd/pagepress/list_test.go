package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunPresets(t *testing.T) {
	t.Parallel()

	env, stdout, _ := testEnv(nil, nil)
	if err := runPresets(nil, env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := stdout.String()
	for _, want := range []string{"og", "1200x630", "story", "1080x1920", "wechat", "900x383"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// Sorted by name
	if strings.Index(out, "banner") > strings.Index(out, "youtube") {
		t.Error("presets are not sorted")
	}
}

func TestRunTemplates(t *testing.T) {
	t.Parallel()

	t.Run("built-in", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := testEnv(nil, nil)
		if err := runTemplates(nil, env); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := stdout.String()
		for _, want := range []string{"default", "(default)", "card-dark", "poster"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("asset path from environment", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if err := os.MkdirAll(filepath.Join(dir, "templates"), 0o755); err != nil {
			t.Fatal(err)
		}
		writeFile(t, filepath.Join(dir, "templates"), "brand.html", "<html></html>")

		env, stdout, _ := testEnv(map[string]string{"PAGEPRESS_ASSET_PATH": dir}, nil)
		if err := runTemplates(nil, env); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout.String(), "brand") {
			t.Errorf("custom template not listed:\n%s", stdout)
		}
	})

	t.Run("bad asset path", func(t *testing.T) {
		t.Parallel()

		env, _, _ := testEnv(nil, nil)
		err := runTemplates([]string{"--asset-path", filepath.Join(t.TempDir(), "missing")}, env)
		if err == nil {
			t.Error("expected error for a missing asset directory")
		}
	})
}

func TestRunHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		arg        string
		wantStdout string
		wantStderr string
	}{
		{"doctor", "--json", ""},
		{"templates", "--asset-path", ""},
		{"presets", "viewport sizes", ""},
		{"version", "pagepress version", ""},
		{"bogus", "", "Unknown command: bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv(nil, nil)
			runHelp([]string{tt.arg}, env)

			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout missing %q:\n%s", tt.wantStdout, stdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantStderr, stderr)
			}
		})
	}
}
