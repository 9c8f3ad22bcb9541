//go:build integration

package pagepress

// Notes:
// - Needs an installed Chrome or Chromium (ROD_BROWSER_BIN or a standard
//   location). TestMain skips the whole package when none is found.
// - Both engines render the same inputs; assertions only check what the
//   engines must agree on (PNG dimensions, PDF magic bytes).

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// testTimeout bounds every integration conversion.
const testTimeout = 60 * time.Second

func TestMain(m *testing.M) {
	if _, err := FindBrowser(); err != nil {
		fmt.Fprintln(os.Stderr, "skipping integration tests:", err)
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func engines(t *testing.T) []Backend {
	t.Helper()
	var out []Backend
	for _, name := range []string{EngineRod, EngineChromedp} {
		b, err := NewBackend(name)
		if err != nil {
			t.Fatalf("NewBackend(%q): %v", name, err)
		}
		out = append(out, b)
	}
	return out
}

// ---------------------------------------------------------------------------
// TestIntegration - PNG
// ---------------------------------------------------------------------------

func TestIntegration_PresetPNG(t *testing.T) {
	for _, backend := range engines(t) {
		t.Run(backend.Name(), func(t *testing.T) {
			dir := t.TempDir()
			src := writeSource(t, dir, "card.md", "# Hello\n\nA short card.\n")
			c, err := NewConverter(WithBackend(backend), WithPageCounter(nil))
			if err != nil {
				t.Fatal(err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
			defer cancel()

			res, err := c.Convert(ctx, Input{
				Source:            Source{FilePath: src},
				Output:            filepath.Join(dir, "card.png"),
				Template:          "card",
				Preset:            "og",
				DeviceScaleFactor: 1,
			})
			if err != nil {
				t.Fatalf("Convert: %v", err)
			}

			data, err := os.ReadFile(res.ArtifactPath)
			if err != nil {
				t.Fatal(err)
			}
			cfg, err := png.DecodeConfig(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("artifact is not a PNG: %v", err)
			}
			if cfg.Width != 1200 || cfg.Height != 630 {
				t.Errorf("image = %dx%d, want 1200x630", cfg.Width, cfg.Height)
			}
			if res.Meta.Engine == "" || res.Meta.Engine == enginePrefix+"unknown" {
				t.Errorf("engine = %q", res.Meta.Engine)
			}
		})
	}
}

func TestIntegration_MeasureMode(t *testing.T) {
	for _, backend := range engines(t) {
		t.Run(backend.Name(), func(t *testing.T) {
			dir := t.TempDir()
			src := writeSource(t, dir, "tall.md", "# Tall\n\n"+string(bytes.Repeat([]byte("Paragraph.\n\n"), 40)))
			c, err := NewConverter(WithBackend(backend), WithPageCounter(nil))
			if err != nil {
				t.Fatal(err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
			defer cancel()

			res, err := c.Convert(ctx, Input{
				Source:            Source{FilePath: src},
				Output:            filepath.Join(dir, "tall.png"),
				Template:          "card",
				Preset:            "square",
				Mode:              ModeMeasure,
				DeviceScaleFactor: 1,
			})
			if err != nil {
				t.Fatalf("Convert: %v", err)
			}
			if res.Meta.Width != 1080 {
				t.Errorf("width = %d, want 1080", res.Meta.Width)
			}
			if res.Meta.Height <= 0 {
				t.Errorf("height = %d, want the measured card height", res.Meta.Height)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestIntegration - PDF
// ---------------------------------------------------------------------------

func TestIntegration_PDF(t *testing.T) {
	for _, backend := range engines(t) {
		t.Run(backend.Name(), func(t *testing.T) {
			dir := t.TempDir()
			c, err := NewConverter(WithBackend(backend))
			if err != nil {
				t.Fatal(err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
			defer cancel()

			res, err := c.Convert(ctx, Input{
				Source: Source{Content: "# Report\n\n[TOC]\n\n## One\n\nText.\n\n## Two\n\nMore.\n"},
				Output: filepath.Join(dir, "report.pdf"),
				PDF:    PDFOptions{Format: PDFFormatLetter, Margin: "12mm"},
			})
			if err != nil {
				t.Fatalf("Convert: %v", err)
			}

			data, err := os.ReadFile(res.ArtifactPath)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.HasPrefix(data, []byte("%PDF-")) {
				t.Errorf("artifact does not start with %%PDF-")
			}
		})
	}
}

func TestIntegration_MissingElement(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "bare.html", "<!DOCTYPE html><html><body><p>no card</p></body></html>")
	c, err := NewConverter(WithPageCounter(nil))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	out := filepath.Join(dir, "bare.png")
	_, err = c.Convert(ctx, Input{Source: Source{FilePath: src}, Output: out, Mode: ModeMeasure})
	if !errors.Is(err, ErrMissingElement) {
		t.Fatalf("error = %v, want ErrMissingElement", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("artifact written despite the failure")
	}
}

// ---------------------------------------------------------------------------
// TestIntegration - Page lifecycle
// ---------------------------------------------------------------------------

// Every page call after NewPage must still reach the browser; a tab whose
// event loop died with NewPage would block until the deadline.
func TestIntegration_PageOutlivesNewPage(t *testing.T) {
	for _, backend := range engines(t) {
		t.Run(backend.Name(), func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
			defer cancel()

			browser, err := backend.Launch(ctx)
			if err != nil {
				t.Fatalf("Launch: %v", err)
			}
			defer func() { _ = browser.Close() }()

			page, err := browser.NewPage(ctx, PageConfig{Width: 400, Height: 300, DeviceScaleFactor: 1})
			if err != nil {
				t.Fatalf("NewPage: %v", err)
			}
			defer func() { _ = page.Close() }()

			stepCtx, stepCancel := context.WithTimeout(ctx, 10*time.Second)
			defer stepCancel()

			target := "data:text/html,<div id=\"card-container\" style=\"height:120px\">x</div>"
			if err := page.Intercept(stepCtx, func(string) bool { return true }); err != nil {
				t.Fatalf("Intercept: %v", err)
			}
			if err := page.Navigate(stepCtx, target, WaitLoad); err != nil {
				t.Fatalf("Navigate: %v", err)
			}
			box, err := page.ElementBox(stepCtx, cardSelector)
			if err != nil {
				t.Fatalf("ElementBox: %v", err)
			}
			if box.Height != 120 {
				t.Errorf("height = %v, want 120", box.Height)
			}

			if err := page.SetContent(stepCtx, "<html><body><p>again</p></body></html>", WaitLoad); err != nil {
				t.Fatalf("SetContent: %v", err)
			}
			data, err := page.Screenshot(stepCtx, ScreenshotOptions{})
			if err != nil {
				t.Fatalf("Screenshot: %v", err)
			}
			if _, err := png.DecodeConfig(bytes.NewReader(data)); err != nil {
				t.Errorf("screenshot is not a PNG: %v", err)
			}
		})
	}
}
