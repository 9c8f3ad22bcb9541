package pagepress

import (
	"context"
	"encoding/json"
	"fmt"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	cdppage "github.com/chromedp/cdproto/page"
	cdpruntime "github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// ChromedpBackend drives an installed Chromium through chromedp.
// It finds the browser the same way RodBackend does.
type ChromedpBackend struct {
	finder browserFinder
}

// NewChromedpBackend creates a ChromedpBackend.
func NewChromedpBackend() *ChromedpBackend {
	return &ChromedpBackend{finder: newBrowserFinder()}
}

// Name implements Backend.
func (b *ChromedpBackend) Name() string { return EngineChromedp }

// Launch starts a headless Chromium with its own temporary profile.
func (b *ChromedpBackend) Launch(ctx context.Context) (Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bin, err := b.finder.find()
	if err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.ExecPath(bin))
	if b.finder.noSandbox() {
		opts = append(opts, chromedp.NoSandbox)
	}

	// The browser lives until Close, not until the launch context ends.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("%w: launching %s: %v", ErrRender, bin, err)
	}

	return &chromedpBrowser{ctx: browserCtx, cancel: cancelBrowser, cancelAlloc: cancelAlloc}, nil
}

type chromedpBrowser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	cancelAlloc context.CancelFunc
}

func (b *chromedpBrowser) Version(ctx context.Context) (string, error) {
	var product string
	err := runWith(ctx, b.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		_, product, _, _, _, err = cdpbrowser.GetVersion().Do(ctx)
		return err
	}))
	if err != nil {
		return "", fmt.Errorf("%w: reading browser version: %v", ErrRender, err)
	}
	return product, nil
}

func (b *chromedpBrowser) NewPage(ctx context.Context, cfg PageConfig) (Page, error) {
	tabCtx, cancel := chromedp.NewContext(b.ctx)
	p := &chromedpPage{ctx: tabCtx, cancel: cancel, dsf: cfg.DeviceScaleFactor}

	actions := []chromedp.Action{
		emulation.SetDeviceMetricsOverride(int64(cfg.Width), int64(cfg.Height), cfg.DeviceScaleFactor, false),
	}
	if cfg.DisableJavaScript {
		actions = append(actions, emulation.SetScriptExecutionDisabled(true))
	}

	// The first Run attaches the tab and starts its event loop on the context
	// it is given, so it must be tabCtx itself. Caller cancellation closes
	// the tab instead.
	stop := context.AfterFunc(ctx, cancel)
	err := chromedp.Run(tabCtx, actions...)
	stop()
	if err != nil || ctx.Err() != nil {
		_ = p.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: creating page: %v", ErrRender, err)
	}
	return p, nil
}

// Close ends the browser gracefully, then releases the allocator, which
// waits for the process to exit and removes its profile directory.
func (b *chromedpBrowser) Close() error {
	err := chromedp.Cancel(b.ctx)
	b.cancel()
	b.cancelAlloc()
	return err
}

type chromedpPage struct {
	ctx    context.Context // tab context; cancelling it closes the tab
	cancel context.CancelFunc
	dsf    float64
}

// runWith runs actions on a chromedp context while honoring the caller's
// cancellation and deadline. target must already be attached: a first Run
// on the derived context would tie the tab's event loop to it.
func runWith(ctx, target context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(target)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

func (p *chromedpPage) Intercept(ctx context.Context, allow func(string) bool) error {
	chromedp.ListenTarget(p.ctx, func(ev any) {
		e, ok := ev.(*fetch.EventRequestPaused)
		if !ok {
			return
		}
		// Listeners must not block; commands go out on their own goroutine.
		go func() {
			ectx := cdp.WithExecutor(p.ctx, chromedp.FromContext(p.ctx).Target)
			if allow(e.Request.URL) {
				_ = fetch.ContinueRequest(e.RequestID).Do(ectx)
				return
			}
			_ = fetch.FailRequest(e.RequestID, network.ErrorReasonBlockedByClient).Do(ectx)
		}()
	})

	if err := runWith(ctx, p.ctx, fetch.Enable()); err != nil {
		return fmt.Errorf("%w: installing request filter: %v", ErrRender, err)
	}
	return nil
}

func (p *chromedpPage) Navigate(ctx context.Context, url string, wait WaitUntil) error {
	name := wait.lifecycleEvent()
	events := make(chan *cdppage.EventLifecycleEvent, 64)

	lctx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	chromedp.ListenTarget(lctx, func(ev any) {
		if e, ok := ev.(*cdppage.EventLifecycleEvent); ok && e.Name == name {
			select {
			case events <- e:
			default:
			}
		}
	})

	var (
		frameID  cdp.FrameID
		loaderID cdp.LoaderID
	)
	err := runWith(ctx, p.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		if err := cdppage.SetLifecycleEventsEnabled(true).Do(ctx); err != nil {
			return err
		}
		var errText string
		var err error
		frameID, loaderID, errText, _, err = cdppage.Navigate(url).Do(ctx)
		if err != nil {
			return err
		}
		if errText != "" {
			return fmt.Errorf("%s", errText)
		}
		return nil
	}))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: navigating to %s: %v", ErrRender, url, err)
	}

	for {
		select {
		case e := <-events:
			// Same-document navigations have no loader.
			if e.FrameID == frameID && (loaderID == "" || e.LoaderID == loaderID) {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// contentReadyJS resolves once the document has loaded; with %t set it also
// waits for every pending image.
const contentReadyJS = `new Promise(resolve => {
  const images = () => Promise.all(Array.from(document.images)
    .filter(img => !img.complete)
    .map(img => new Promise(r => {
      img.addEventListener('load', r, { once: true });
      img.addEventListener('error', r, { once: true });
    })));
  const done = () => (%t ? images() : Promise.resolve()).then(() => resolve(true));
  if (document.readyState === 'complete') done();
  else window.addEventListener('load', done, { once: true });
})`

func (p *chromedpPage) SetContent(ctx context.Context, html string, wait WaitUntil) error {
	err := runWith(ctx, p.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := cdppage.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return cdppage.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
	}))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: setting page content: %v", ErrRender, err)
	}
	if wait == WaitDOMContentLoaded {
		return nil
	}

	var ok bool
	expr := fmt.Sprintf(contentReadyJS, wait == WaitNetworkIdle)
	if err := runWith(ctx, p.ctx, chromedp.Evaluate(expr, &ok, awaitPromise)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: waiting for load: %v", ErrRender, err)
	}
	return nil
}

func awaitPromise(p *cdpruntime.EvaluateParams) *cdpruntime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

func (p *chromedpPage) eval(ctx context.Context, what, expr string, res any) error {
	if err := runWith(ctx, p.ctx, chromedp.Evaluate(expr, res, awaitPromise)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s: %v", ErrRender, what, err)
	}
	return nil
}

func (p *chromedpPage) RemoveScripts(ctx context.Context) error {
	var ok bool
	return p.eval(ctx, "removing scripts",
		`(() => { document.querySelectorAll('script').forEach(s => s.remove()); return true; })()`, &ok)
}

func (p *chromedpPage) WaitFonts(ctx context.Context) error {
	var ok bool
	return p.eval(ctx, "waiting for fonts", `document.fonts.ready.then(() => true)`, &ok)
}

func (p *chromedpPage) AddStyle(ctx context.Context, css string) error {
	literal, err := json.Marshal(css)
	if err != nil {
		return fmt.Errorf("%w: encoding style: %v", ErrRender, err)
	}
	var ok bool
	expr := fmt.Sprintf(`(() => {
  const style = document.createElement('style');
  style.textContent = %s;
  (document.head || document.documentElement).appendChild(style);
  return true;
})()`, literal)
	return p.eval(ctx, "adding style", expr, &ok)
}

func (p *chromedpPage) ElementBox(ctx context.Context, selector string) (*Box, error) {
	literal, err := json.Marshal(selector)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding selector: %v", ErrRender, err)
	}

	var box *Box
	expr := fmt.Sprintf(`(() => {
  const el = document.querySelector(%s);
  if (!el) return null;
  const r = el.getBoundingClientRect();
  return { x: r.left + window.scrollX, y: r.top + window.scrollY, width: r.width, height: r.height };
})()`, literal)
	if err := p.eval(ctx, "querying "+selector, expr, &box); err != nil {
		return nil, err
	}
	if box == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingElement, selector)
	}
	return box, nil
}

func (p *chromedpPage) SetViewport(ctx context.Context, width, height int) error {
	err := runWith(ctx, p.ctx, emulation.SetDeviceMetricsOverride(int64(width), int64(height), p.dsf, false))
	if err != nil {
		return fmt.Errorf("%w: setting viewport %dx%d: %v", ErrRender, width, height, err)
	}
	return nil
}

func (p *chromedpPage) Screenshot(ctx context.Context, opts ScreenshotOptions) ([]byte, error) {
	var buf []byte
	var action chromedp.Action

	switch {
	case opts.Selector != "":
		if _, err := p.ElementBox(ctx, opts.Selector); err != nil {
			return nil, err
		}
		action = chromedp.Screenshot(opts.Selector, &buf, chromedp.ByQuery)
	case opts.FullPage:
		action = chromedp.FullScreenshot(&buf, 100)
	default:
		params := cdppage.CaptureScreenshot().WithFormat(cdppage.CaptureScreenshotFormatPng)
		if opts.Clip != nil {
			params = params.WithClip(&cdppage.Viewport{
				X:      opts.Clip.X,
				Y:      opts.Clip.Y,
				Width:  opts.Clip.Width,
				Height: opts.Clip.Height,
				Scale:  1,
			})
		}
		action = chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, err = params.Do(ctx)
			return err
		})
	}

	if err := runWith(ctx, p.ctx, action); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: capturing screenshot: %v", ErrRender, err)
	}
	return buf, nil
}

func (p *chromedpPage) PDF(ctx context.Context, s PDFSettings) ([]byte, error) {
	var buf []byte
	err := runWith(ctx, p.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, _, err = cdppage.PrintToPDF().
			WithPrintBackground(s.PrintBackground).
			WithLandscape(s.Landscape).
			WithScale(s.Scale).
			WithPaperWidth(s.PaperWidth).
			WithPaperHeight(s.PaperHeight).
			WithMarginTop(s.Margin).
			WithMarginBottom(s.Margin).
			WithMarginLeft(s.Margin).
			WithMarginRight(s.Margin).
			WithPageRanges(s.PageRanges).
			WithPreferCSSPageSize(s.PreferCSSPageSize).
			Do(ctx)
		return err
	}))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: printing PDF: %v", ErrRender, err)
	}
	return buf, nil
}

func (p *chromedpPage) Close() error {
	err := chromedp.Cancel(p.ctx)
	p.cancel()
	return err
}

// Compile-time interface checks.
var (
	_ Backend = (*ChromedpBackend)(nil)
	_ Browser = (*chromedpBrowser)(nil)
	_ Page    = (*chromedpPage)(nil)
)
