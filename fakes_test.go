package pagepress

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"
	"testing"
)

// ---------------------------------------------------------------------------
// Fake Backend
// ---------------------------------------------------------------------------

type fakeBackend struct {
	browser   *fakeBrowser
	launchErr error
	launches  int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{browser: &fakeBrowser{page: &fakePage{}, version: "HeadlessChrome/126.0.0.0"}}
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Launch(ctx context.Context) (Browser, error) {
	b.launches++
	if b.launchErr != nil {
		return nil, b.launchErr
	}
	return b.browser, nil
}

type fakeBrowser struct {
	page       *fakePage
	version    string
	versionErr error
	newPageErr error
	closeErr   error
	cfg        PageConfig
	closed     bool
}

func (b *fakeBrowser) Version(ctx context.Context) (string, error) {
	return b.version, b.versionErr
}

func (b *fakeBrowser) NewPage(ctx context.Context, cfg PageConfig) (Page, error) {
	if b.newPageErr != nil {
		return nil, b.newPageErr
	}
	b.cfg = cfg
	return b.page, nil
}

func (b *fakeBrowser) Close() error {
	b.closed = true
	return b.closeErr
}

// fakePage records every call. A nil screenshot returns a 1x1 PNG.
type fakePage struct {
	mu    sync.Mutex
	calls []string

	allow     func(string) bool
	navigated string
	content   string
	wait      WaitUntil
	styles    []string
	viewport  Size
	shot      ScreenshotOptions
	settings  PDFSettings
	closed    bool

	// hang makes navigation block until its context is done.
	hang          bool
	navigateErr   error
	removeErr     error
	box           *Box
	screenshot    []byte
	screenshotErr error
	pdf           []byte
}

func (p *fakePage) record(call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
}

func (p *fakePage) called(call string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (p *fakePage) Intercept(ctx context.Context, allow func(string) bool) error {
	p.record("intercept")
	p.allow = allow
	return nil
}

func (p *fakePage) load(ctx context.Context) error {
	if p.hang {
		<-ctx.Done()
		return ctx.Err()
	}
	return p.navigateErr
}

func (p *fakePage) Navigate(ctx context.Context, url string, wait WaitUntil) error {
	p.record("navigate")
	p.navigated = url
	p.wait = wait
	return p.load(ctx)
}

func (p *fakePage) SetContent(ctx context.Context, html string, wait WaitUntil) error {
	p.record("setContent")
	p.content = html
	p.wait = wait
	return p.load(ctx)
}

func (p *fakePage) RemoveScripts(ctx context.Context) error {
	p.record("removeScripts")
	return p.removeErr
}

func (p *fakePage) WaitFonts(ctx context.Context) error {
	p.record("waitFonts")
	return nil
}

func (p *fakePage) AddStyle(ctx context.Context, css string) error {
	p.record("addStyle")
	p.styles = append(p.styles, css)
	return nil
}

func (p *fakePage) ElementBox(ctx context.Context, selector string) (*Box, error) {
	p.record("elementBox")
	if p.box == nil {
		return nil, ErrMissingElement
	}
	return p.box, nil
}

func (p *fakePage) SetViewport(ctx context.Context, width, height int) error {
	p.record("setViewport")
	p.viewport = Size{Width: width, Height: height}
	return nil
}

func (p *fakePage) Screenshot(ctx context.Context, opts ScreenshotOptions) ([]byte, error) {
	p.record("screenshot")
	p.shot = opts
	if p.screenshotErr != nil {
		return nil, p.screenshotErr
	}
	if p.screenshot == nil {
		return []byte("\x89PNG fake"), nil
	}
	return p.screenshot, nil
}

func (p *fakePage) PDF(ctx context.Context, settings PDFSettings) ([]byte, error) {
	p.record("pdf")
	p.settings = settings
	if p.pdf == nil {
		return []byte("%PDF-1.7 fake"), nil
	}
	return p.pdf, nil
}

func (p *fakePage) Close() error {
	p.record("close")
	p.closed = true
	return nil
}

// Compile-time interface checks.
var (
	_ Backend = (*fakeBackend)(nil)
	_ Browser = (*fakeBrowser)(nil)
	_ Page    = (*fakePage)(nil)
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// pngOfSize encodes a blank PNG of w x h pixels.
func pngOfSize(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

type fakePageCounter struct {
	pages int
	err   error
	path  string
}

func (f *fakePageCounter) PageCount(ctx context.Context, pdfPath string) (int, error) {
	f.path = pdfPath
	return f.pages, f.err
}
