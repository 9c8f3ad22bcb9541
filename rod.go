package pagepress

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-pagepress/internal/process"
)

// RodBackend drives an installed Chromium through go-rod.
type RodBackend struct {
	finder browserFinder
}

// NewRodBackend creates a RodBackend. It honors ROD_BROWSER_BIN and runs
// without the sandbox in CI, in containers (ROD_BROWSER_BIN set) or when
// ROD_NO_SANDBOX=1.
func NewRodBackend() *RodBackend {
	return &RodBackend{finder: newBrowserFinder()}
}

// Name implements Backend.
func (b *RodBackend) Name() string { return EngineRod }

// Launch starts a headless Chromium and connects to it.
func (b *RodBackend) Launch(ctx context.Context) (Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bin, err := b.finder.find()
	if err != nil {
		return nil, err
	}

	l := launcher.New().Bin(bin).Headless(true)
	if b.finder.noSandbox() {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: launching %s: %v", ErrRender, bin, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		process.KillProcessGroup(l.PID())
		l.Cleanup()
		return nil, fmt.Errorf("%w: connecting to browser: %v", ErrRender, err)
	}
	return &rodBrowser{browser: browser, launcher: l}, nil
}

type rodBrowser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func (b *rodBrowser) Version(ctx context.Context) (string, error) {
	res, err := proto.BrowserGetVersion{}.Call(b.browser.Context(ctx))
	if err != nil {
		return "", fmt.Errorf("%w: reading browser version: %v", ErrRender, err)
	}
	return res.Product, nil
}

func (b *rodBrowser) NewPage(ctx context.Context, cfg PageConfig) (Page, error) {
	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("%w: creating page: %v", ErrRender, err)
	}

	p := &rodPage{page: page, dsf: cfg.DeviceScaleFactor}
	if err := p.SetViewport(ctx, cfg.Width, cfg.Height); err != nil {
		_ = page.Close()
		return nil, err
	}
	if cfg.DisableJavaScript {
		if err := (proto.EmulationSetScriptExecutionDisabled{Value: true}).Call(page); err != nil {
			_ = page.Close()
			return nil, fmt.Errorf("%w: disabling JavaScript: %v", ErrRender, err)
		}
	}
	return p, nil
}

// Close shuts the browser down, kills any leftover children and removes the
// launcher's user-data directory.
func (b *rodBrowser) Close() error {
	err := b.browser.Close()
	process.KillProcessGroup(b.launcher.PID())
	b.launcher.Cleanup()
	return err
}

type rodPage struct {
	page   *rod.Page
	router *rod.HijackRouter
	dsf    float64
}

func (p *rodPage) Intercept(ctx context.Context, allow func(string) bool) error {
	router := p.page.Context(ctx).HijackRequests()
	err := router.Add("*", "", func(h *rod.Hijack) {
		if allow(h.Request.URL().String()) {
			h.ContinueRequest(&proto.FetchContinueRequest{})
			return
		}
		h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
	})
	if err != nil {
		return fmt.Errorf("%w: installing request filter: %v", ErrRender, err)
	}
	go router.Run()
	p.router = router
	return nil
}

func (p *rodPage) Navigate(ctx context.Context, url string, wait WaitUntil) error {
	page := p.page.Context(ctx)
	waitEvent := page.WaitNavigation(proto.PageLifecycleEventName(wait.lifecycleEvent()))
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("%w: navigating to %s: %v", ErrRender, url, err)
	}
	waitEvent()
	return ctx.Err()
}

func (p *rodPage) SetContent(ctx context.Context, html string, wait WaitUntil) error {
	page := p.page.Context(ctx)

	waitIdle := func() {}
	if wait == WaitNetworkIdle {
		// Empty excludeTypes so images and fonts count as pending requests.
		waitIdle = page.WaitRequestIdle(networkIdleQuiet, nil, nil, []proto.NetworkResourceType{})
	}

	if err := page.SetDocumentContent(html); err != nil {
		return fmt.Errorf("%w: setting page content: %v", ErrRender, err)
	}
	if wait != WaitDOMContentLoaded {
		if err := page.WaitLoad(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: waiting for load: %v", ErrRender, err)
		}
	}
	waitIdle()
	return ctx.Err()
}

func (p *rodPage) RemoveScripts(ctx context.Context) error {
	if _, err := p.page.Context(ctx).Eval(`() => { document.querySelectorAll('script').forEach(s => s.remove()) }`); err != nil {
		return fmt.Errorf("%w: removing scripts: %v", ErrRender, err)
	}
	return nil
}

func (p *rodPage) WaitFonts(ctx context.Context) error {
	if _, err := p.page.Context(ctx).Eval(`() => document.fonts.ready.then(() => true)`); err != nil {
		return fmt.Errorf("%w: waiting for fonts: %v", ErrRender, err)
	}
	return nil
}

func (p *rodPage) AddStyle(ctx context.Context, css string) error {
	if err := p.page.Context(ctx).AddStyleTag("", css); err != nil {
		return fmt.Errorf("%w: adding style: %v", ErrRender, err)
	}
	return nil
}

func (p *rodPage) ElementBox(ctx context.Context, selector string) (*Box, error) {
	has, el, err := p.page.Context(ctx).Has(selector)
	if err != nil {
		return nil, fmt.Errorf("%w: querying %s: %v", ErrRender, selector, err)
	}
	if !has {
		return nil, fmt.Errorf("%w: %s", ErrMissingElement, selector)
	}

	shape, err := el.Shape()
	if err != nil {
		return nil, fmt.Errorf("%w: measuring %s: %v", ErrRender, selector, err)
	}
	rect := shape.Box()
	if rect == nil {
		return nil, fmt.Errorf("%w: %s has no layout box", ErrMissingElement, selector)
	}
	return &Box{X: rect.X, Y: rect.Y, Width: rect.Width, Height: rect.Height}, nil
}

func (p *rodPage) SetViewport(ctx context.Context, width, height int) error {
	err := p.page.Context(ctx).SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: p.dsf,
	})
	if err != nil {
		return fmt.Errorf("%w: setting viewport %dx%d: %v", ErrRender, width, height, err)
	}
	return nil
}

func (p *rodPage) Screenshot(ctx context.Context, opts ScreenshotOptions) ([]byte, error) {
	page := p.page.Context(ctx)

	var (
		data []byte
		err  error
	)
	switch {
	case opts.Selector != "":
		var el *rod.Element
		var has bool
		has, el, err = page.Has(opts.Selector)
		if err == nil && !has {
			return nil, fmt.Errorf("%w: %s", ErrMissingElement, opts.Selector)
		}
		if err == nil {
			data, err = el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
		}
	case opts.Clip != nil:
		data, err = page.Screenshot(false, &proto.PageCaptureScreenshot{
			Format: proto.PageCaptureScreenshotFormatPng,
			Clip: &proto.PageViewport{
				X:      opts.Clip.X,
				Y:      opts.Clip.Y,
				Width:  opts.Clip.Width,
				Height: opts.Clip.Height,
				Scale:  1,
			},
		})
	default:
		data, err = page.Screenshot(opts.FullPage, &proto.PageCaptureScreenshot{
			Format: proto.PageCaptureScreenshotFormatPng,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("%w: capturing screenshot: %v", ErrRender, err)
	}
	return data, nil
}

func (p *rodPage) PDF(ctx context.Context, s PDFSettings) ([]byte, error) {
	reader, err := p.page.Context(ctx).PDF(&proto.PagePrintToPDF{
		Landscape:         s.Landscape,
		PrintBackground:   s.PrintBackground,
		Scale:             floatPtr(s.Scale),
		PaperWidth:        floatPtr(s.PaperWidth),
		PaperHeight:       floatPtr(s.PaperHeight),
		MarginTop:         floatPtr(s.Margin),
		MarginBottom:      floatPtr(s.Margin),
		MarginLeft:        floatPtr(s.Margin),
		MarginRight:       floatPtr(s.Margin),
		PageRanges:        s.PageRanges,
		PreferCSSPageSize: s.PreferCSSPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: printing PDF: %v", ErrRender, err)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrRender, err)
	}
	return data, nil
}

func (p *rodPage) Close() error {
	var errs []error
	if p.router != nil {
		errs = append(errs, p.router.Stop())
	}
	errs = append(errs, p.page.Close())
	return errors.Join(errs...)
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

// Compile-time interface checks.
var (
	_ Backend = (*RodBackend)(nil)
	_ Browser = (*rodBrowser)(nil)
	_ Page    = (*rodPage)(nil)
)
