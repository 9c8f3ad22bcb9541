package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pagepress "github.com/alnah/go-pagepress"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake engine and environment
// ---------------------------------------------------------------------------

// stubBackend launches stubBrowser, or fails with launchErr.
type stubBackend struct {
	launchErr error
	page      *stubPage
}

func (b *stubBackend) Name() string { return "stub" }

func (b *stubBackend) Launch(ctx context.Context) (pagepress.Browser, error) {
	if b.launchErr != nil {
		return nil, b.launchErr
	}
	return &stubBrowser{page: b.page}, nil
}

type stubBrowser struct {
	page *stubPage
}

func (b *stubBrowser) Version(ctx context.Context) (string, error) {
	return "HeadlessChrome/126.0.0.0", nil
}

func (b *stubBrowser) NewPage(ctx context.Context, cfg pagepress.PageConfig) (pagepress.Page, error) {
	b.page.cfg = cfg
	return b.page, nil
}

func (b *stubBrowser) Close() error { return nil }

// stubPage records the navigation and returns canned captures.
type stubPage struct {
	cfg       pagepress.PageConfig
	navigated string
	styles    []string
}

func (p *stubPage) Intercept(ctx context.Context, allow func(string) bool) error { return nil }

func (p *stubPage) Navigate(ctx context.Context, url string, wait pagepress.WaitUntil) error {
	p.navigated = url
	return nil
}

func (p *stubPage) SetContent(ctx context.Context, html string, wait pagepress.WaitUntil) error {
	return nil
}

func (p *stubPage) RemoveScripts(ctx context.Context) error { return nil }
func (p *stubPage) WaitFonts(ctx context.Context) error     { return nil }

func (p *stubPage) AddStyle(ctx context.Context, css string) error {
	p.styles = append(p.styles, css)
	return nil
}

func (p *stubPage) ElementBox(ctx context.Context, selector string) (*pagepress.Box, error) {
	return &pagepress.Box{Width: 1080, Height: 900}, nil
}

func (p *stubPage) SetViewport(ctx context.Context, width, height int) error { return nil }

func (p *stubPage) Screenshot(ctx context.Context, opts pagepress.ScreenshotOptions) ([]byte, error) {
	return []byte("\x89PNG stub"), nil
}

func (p *stubPage) PDF(ctx context.Context, settings pagepress.PDFSettings) ([]byte, error) {
	return []byte("%PDF-1.7 stub"), nil
}

func (p *stubPage) Close() error { return nil }

// testEnv builds an Environment over buffers, a fixed clock, the given
// variables and a stub engine.
func testEnv(vars map[string]string, backend pagepress.Backend) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    func() time.Time { return time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC) },
		Stdout: &stdout,
		Stderr: &stderr,
		Stdin:  strings.NewReader(""),
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
		Backend: func(name string) (pagepress.Backend, error) {
			if _, err := pagepress.NewBackend(name); err != nil {
				return nil, err
			}
			return backend, nil
		},
	}
	return env, &stdout, &stderr
}

// writeFile creates dir/name with content and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
