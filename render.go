package pagepress

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/alnah/go-pagepress/internal/fileutil"
	"github.com/alnah/go-pagepress/internal/pipeline"
)

// cardSelector is the element every image template sizes and measures.
const cardSelector = "#card-container"

// sessionState tracks one browser session.
type sessionState int

const (
	stateIdle sessionState = iota
	stateLaunched
	stateNavigated
	statePrepared
	stateCaptured
	stateClosed
	stateFailed
)

func (s sessionState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateLaunched:
		return "launched"
	case stateNavigated:
		return "navigated"
	case statePrepared:
		return "prepared"
	case stateCaptured:
		return "captured"
	case stateClosed:
		return "closed"
	case stateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// renderJob is everything a session needs, resolved before launch.
type renderJob struct {
	target       *resolvedInput
	html         string // Composed page; unused for URL sources
	plan         CapturePlan
	pdf          PDFSettings
	waitUntil    WaitUntil
	timeout      time.Duration
	allowScripts bool
	userCSS      string // Reapplied after the live fixed-card CSS
	allowNet     []string
	safe         bool
	keepHTML     bool
}

// capture is what a successful session produced.
type capture struct {
	data     []byte
	product  string
	viewport Size
	htmlPath string // Snapshot written for navigation, if any
}

// session drives one browser through Idle → Launched → Navigated →
// Prepared → Captured → Closed. Any error moves it to Failed.
type session struct {
	backend Backend
	logger  *log.Logger
	state   sessionState
}

func newSession(backend Backend, logger *log.Logger) *session {
	return &session{backend: backend, logger: logger, state: stateIdle}
}

func (s *session) advance(to sessionState) {
	s.logger.Debug("session", "from", s.state, "to", to)
	s.state = to
}

func (s *session) fail(err error) error {
	s.logger.Debug("session", "from", s.state, "to", stateFailed, "err", err)
	s.state = stateFailed
	return err
}

// run performs the render. The browser and page are closed on every path;
// a snapshot written for navigation is removed when the render fails.
func (s *session) run(ctx context.Context, job renderJob) (out *capture, err error) {
	browser, err := s.backend.Launch(ctx)
	if err != nil {
		return nil, s.fail(err)
	}
	s.advance(stateLaunched)

	out = &capture{}
	defer func() {
		if err != nil && out != nil && out.htmlPath != "" {
			_ = os.Remove(out.htmlPath)
			out.htmlPath = ""
		}
		if cerr := browser.Close(); cerr != nil {
			s.logger.Warn("closing browser", "err", cerr)
		}
		if err == nil {
			s.advance(stateClosed)
		}
	}()

	product, verr := browser.Version(ctx)
	if verr != nil {
		s.logger.Warn("browser version unavailable", "err", verr)
		product = "unknown"
	}
	out.product = product

	page, err := browser.NewPage(ctx, PageConfig{
		Width:             job.plan.Viewport.Width,
		Height:            job.plan.Viewport.Height,
		DeviceScaleFactor: job.plan.DeviceScaleFactor,
		DisableJavaScript: job.safe,
	})
	if err != nil {
		return out, s.fail(err)
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			s.logger.Warn("closing page", "err", cerr)
		}
	}()

	if err := s.navigate(ctx, page, job, out); err != nil {
		return out, s.fail(err)
	}
	s.advance(stateNavigated)

	viewport, err := s.prepare(ctx, page, job)
	if err != nil {
		return out, s.fail(err)
	}
	out.viewport = viewport
	s.advance(statePrepared)

	data, err := s.capture(ctx, page, job, viewport)
	if err != nil {
		return out, s.fail(err)
	}
	out.data = data
	s.advance(stateCaptured)
	return out, nil
}

// navigate installs the request filter and loads the page.
func (s *session) navigate(ctx context.Context, page Page, job renderJob, out *capture) error {
	target := job.target.url
	if !job.target.remote() && job.keepHTML {
		if err := fileutil.WriteFile(job.target.htmlPath, []byte(job.html)); err != nil {
			return fmt.Errorf("%w: writing HTML snapshot: %v", ErrIO, err)
		}
		out.htmlPath = job.target.htmlPath
		target = fileURL(job.target.htmlPath)
	}

	if len(job.allowNet) > 0 || job.safe {
		if err := page.Intercept(ctx, requestFilter(job.allowNet, target, job.safe)); err != nil {
			return err
		}
	}

	navCtx, cancel := context.WithTimeout(ctx, job.timeout)
	defer cancel()

	var err error
	if target != "" {
		s.logger.Debug("navigating", "url", target, "wait", job.waitUntil)
		err = page.Navigate(navCtx, target, job.waitUntil)
	} else {
		s.logger.Debug("setting content", "bytes", len(job.html), "wait", job.waitUntil)
		err = page.SetContent(navCtx, job.html, job.waitUntil)
	}
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(navCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: page did not reach %s within %s", ErrNavigationTimeout, job.waitUntil, job.timeout)
	}
	return err
}

// prepare strips scripts, waits for fonts and settles the final viewport.
func (s *session) prepare(ctx context.Context, page Page, job renderJob) (Size, error) {
	viewport := job.plan.Viewport

	if !job.allowScripts {
		if err := page.RemoveScripts(ctx); err != nil {
			return Size{}, err
		}
	}
	if err := page.WaitFonts(ctx); err != nil {
		return Size{}, err
	}

	if job.target.kind != KindPNG {
		return viewport, nil
	}

	switch job.plan.Mode {
	case ModeFixed:
		if err := page.AddStyle(ctx, pipeline.FixedCardCSS(viewport.Width, viewport.Height)); err != nil {
			return Size{}, err
		}
		// User CSS keeps the last word on the card, as in the composed page.
		if strings.TrimSpace(job.userCSS) != "" {
			if err := page.AddStyle(ctx, job.userCSS); err != nil {
				return Size{}, err
			}
		}
	case ModeMeasure:
		box, err := page.ElementBox(ctx, cardSelector)
		if err != nil {
			return Size{}, err
		}
		viewport.Height = max(1, int(math.Ceil(box.Height)))
		s.logger.Debug("measured card", "width", viewport.Width, "height", viewport.Height)
		if err := page.SetViewport(ctx, viewport.Width, viewport.Height); err != nil {
			return Size{}, err
		}
	}
	return viewport, nil
}

// capture produces the artifact bytes.
func (s *session) capture(ctx context.Context, page Page, job renderJob, viewport Size) ([]byte, error) {
	if job.target.kind == KindPDF {
		return page.PDF(ctx, job.pdf)
	}

	switch job.plan.Mode {
	case ModeFixed:
		return page.Screenshot(ctx, ScreenshotOptions{
			Clip: &Box{Width: float64(viewport.Width), Height: float64(viewport.Height)},
		})
	case ModeMeasure:
		return page.Screenshot(ctx, ScreenshotOptions{Selector: cardSelector})
	default:
		return page.Screenshot(ctx, ScreenshotOptions{FullPage: true})
	}
}

// capturedSize returns the CSS-pixel size of a PNG taken at dsf.
// The fallback is returned when the image cannot be decoded.
func capturedSize(data []byte, dsf float64, fallback Size) Size {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil || dsf <= 0 {
		return fallback
	}
	return Size{
		Width:  int(math.Round(float64(cfg.Width) / dsf)),
		Height: int(math.Round(float64(cfg.Height) / dsf)),
	}
}

// fileURL converts an absolute path to a file:// URL.
func fileURL(path string) string {
	slashed := filepath.ToSlash(path)
	if len(slashed) > 0 && slashed[0] != '/' {
		slashed = "/" + slashed
	}
	return (&url.URL{Scheme: "file", Path: slashed}).String()
}
