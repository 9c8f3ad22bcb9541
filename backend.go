package pagepress

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
)

// networkIdleQuiet is how long the network must stay quiet for
// WaitNetworkIdle when content is set in memory.
const networkIdleQuiet = 500 * time.Millisecond

// Engine names accepted by NewBackend.
const (
	EngineRod      = "rod"
	EngineChromedp = "chromedp"
)

// Backend starts browsers. Launch returns ErrBackendUnavailable when the
// engine is not installed; any later failure is a runtime error.
type Backend interface {
	Name() string
	Launch(ctx context.Context) (Browser, error)
}

// Browser is one running browser instance, owned by a single render.
type Browser interface {
	// Version returns the product string, e.g. "HeadlessChrome/126.0.6478.126".
	Version(ctx context.Context) (string, error)
	NewPage(ctx context.Context, cfg PageConfig) (Page, error)
	Close() error
}

// PageConfig sets up a new page.
type PageConfig struct {
	Width             int
	Height            int
	DeviceScaleFactor float64
	DisableJavaScript bool
}

// Page is the automation surface a render needs.
type Page interface {
	// Intercept routes every request through allow; rejected requests are
	// aborted with BlockedByClient.
	Intercept(ctx context.Context, allow func(url string) bool) error
	Navigate(ctx context.Context, url string, wait WaitUntil) error
	SetContent(ctx context.Context, html string, wait WaitUntil) error

	RemoveScripts(ctx context.Context) error
	WaitFonts(ctx context.Context) error
	AddStyle(ctx context.Context, css string) error
	// ElementBox returns ErrMissingElement when nothing matches selector.
	ElementBox(ctx context.Context, selector string) (*Box, error)
	SetViewport(ctx context.Context, width, height int) error

	Screenshot(ctx context.Context, opts ScreenshotOptions) ([]byte, error)
	PDF(ctx context.Context, settings PDFSettings) ([]byte, error)
	Close() error
}

// Box is an element's bounding rectangle in CSS pixels.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ScreenshotOptions selects what a PNG screenshot covers. At most one of
// FullPage, Clip and Selector is set; none means the current viewport.
type ScreenshotOptions struct {
	FullPage bool
	Clip     *Box
	Selector string
}

// NewBackend returns the backend registered under name.
func NewBackend(name string) (Backend, error) {
	switch strings.ToLower(name) {
	case "", EngineRod:
		return NewRodBackend(), nil
	case EngineChromedp:
		return NewChromedpBackend(), nil
	default:
		return nil, fmt.Errorf("%w: unknown engine %q (want rod or chromedp)", ErrInvalidInput, name)
	}
}

// browserFinder locates an installed Chromium. Managed downloads are never
// attempted.
type browserFinder struct {
	Getenv   func(string) string
	LookPath func() (string, bool)
	Exists   func(string) bool
}

func newBrowserFinder() browserFinder {
	return browserFinder{
		Getenv:   os.Getenv,
		LookPath: launcher.LookPath,
		Exists: func(path string) bool {
			info, err := os.Stat(path)
			return err == nil && !info.IsDir()
		},
	}
}

// find returns ROD_BROWSER_BIN when it names a file, else the first
// well-known install location.
func (f browserFinder) find() (string, error) {
	if bin := f.Getenv("ROD_BROWSER_BIN"); bin != "" && f.Exists(bin) {
		return bin, nil
	}
	if bin, ok := f.LookPath(); ok {
		return bin, nil
	}
	return "", fmt.Errorf("%w: no Chrome or Chromium installation found", ErrBackendUnavailable)
}

// noSandbox reports whether Chromium must run without its sandbox, as in CI
// runners and containers.
func (f browserFinder) noSandbox() bool {
	return f.Getenv("CI") == "true" || f.Getenv("ROD_BROWSER_BIN") != "" || f.Getenv("ROD_NO_SANDBOX") == "1"
}

// FindBrowser reports the Chromium binary a backend would launch.
func FindBrowser() (string, error) {
	return newBrowserFinder().find()
}

// requestFilter builds the interception predicate.
//
// The navigation target, data: and about: URLs always pass, and so do
// file: URLs since they never reach the network. Safe mode blocks every
// other http(s) request. Otherwise a request passes when it starts with one
// of allowNet, or when allowNet is empty.
func requestFilter(allowNet []string, target string, safe bool) func(string) bool {
	return func(raw string) bool {
		if target != "" && raw == target {
			return true
		}
		lower := strings.ToLower(raw)
		for _, scheme := range []string{"data:", "about:", "file:"} {
			if strings.HasPrefix(lower, scheme) {
				return true
			}
		}
		if safe && (strings.HasPrefix(lower, "http:") || strings.HasPrefix(lower, "https:")) {
			return false
		}
		if len(allowNet) == 0 {
			return true
		}
		for _, prefix := range allowNet {
			if strings.HasPrefix(raw, prefix) {
				return true
			}
		}
		return false
	}
}
