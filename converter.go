package pagepress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/alnah/go-pagepress/internal/diagram"
	"github.com/alnah/go-pagepress/internal/fileutil"
	"github.com/alnah/go-pagepress/internal/pipeline"
)

// printMode is the metadata mode recorded for PDF exports.
const printMode = "print"

// Converter turns Markdown, HTML or a URL into a PDF or PNG artifact with a
// metadata sidecar. Every Convert call runs its own browser session, so a
// Converter is safe for concurrent use on independent outputs.
type Converter struct {
	backend     Backend
	logger      *log.Logger
	loader      TemplateLoader
	assetPath   string
	now         func() time.Time
	pageCounter PageCounter

	mermaidCLI     string
	extraRenderers map[string]DiagramRenderer

	transformer *pipeline.Transformer
	compositor  *pipeline.Compositor
}

// NewConverter creates a Converter with the rod backend and the built-in
// templates. Use options to customize it.
// Returns ErrInvalidInput if WithAssetPath names an unusable directory.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		logger:         log.New(io.Discard),
		now:            time.Now,
		pageCounter:    NewPDFInfo(),
		extraRenderers: make(map[string]DiagramRenderer),
		compositor:     pipeline.NewCompositor(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.backend == nil {
		c.backend = NewRodBackend()
	}

	if c.loader == nil {
		loader, err := NewTemplateLoader(c.assetPath)
		if err != nil {
			return nil, err
		}
		c.loader = loader
	}

	renderers := diagram.Defaults(c.mermaidCLI)
	for lang, r := range c.extraRenderers {
		renderers[lang] = r
	}
	c.transformer = pipeline.NewTransformer(renderers)

	return c, nil
}

// Templates returns the names of every available template.
func (c *Converter) Templates() ([]string, error) {
	return c.loader.ListTemplates()
}

// Convert renders in and writes the artifact, the sidecar and, with KeepHTML,
// the HTML snapshot. On failure nothing is left behind.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, in Input) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: internal error: %v", ErrRender, r)
		}
	}()

	in = in.withDefaults()
	target, err := normalizeInput(in)
	if err != nil {
		return nil, err
	}

	plan := CapturePlan{Viewport: DefaultViewport, DeviceScaleFactor: 1}
	var pdf PDFSettings
	if target.kind == KindPNG {
		if plan, err = Plan(in.Preset, in.Mode, in.DeviceScaleFactor); err != nil {
			return nil, err
		}
	} else {
		if pdf, err = pdfSettings(in.PDF); err != nil {
			return nil, err
		}
	}

	logger := c.logger.With("render", uuid.NewString()[:8], "kind", target.kind, "engine", c.backend.Name())
	if plan.Preset != "" {
		logger = logger.With("preset", plan.Preset)
	}

	page, templateName, err := c.compose(ctx, target, in, plan)
	if err != nil {
		return nil, err
	}

	out, err := newSession(c.backend, logger).run(ctx, renderJob{
		target:       target,
		html:         page,
		plan:         plan,
		pdf:          pdf,
		waitUntil:    in.WaitUntil,
		timeout:      in.Timeout,
		allowScripts: in.AllowScripts,
		userCSS:      in.CSS,
		allowNet:     in.AllowNet,
		safe:         in.Safe,
		keepHTML:     in.KeepHTML,
	})
	if err != nil {
		return nil, err
	}

	discard := func() {
		_ = os.Remove(target.output)
		if out.htmlPath != "" {
			_ = os.Remove(out.htmlPath)
		}
	}

	if err := fileutil.WriteFile(target.output, out.data); err != nil {
		discard()
		return nil, fmt.Errorf("%w: writing %s: %v", ErrIO, target.output, err)
	}

	meta := c.metadata(ctx, logger, target, plan, templateName, out)
	if err := writeSidecar(target.metaPath, meta); err != nil {
		discard()
		return nil, err
	}

	logger.Debug("converted", "output", target.output, "bytes", len(out.data))
	return &Result{
		ArtifactPath: target.output,
		HTMLPath:     out.htmlPath,
		MetaPath:     target.metaPath,
		Meta:         meta,
	}, nil
}

// compose transforms the source and renders it into its template.
// URL sources are navigated as served: no page and no template.
func (c *Converter) compose(ctx context.Context, target *resolvedInput, in Input, plan CapturePlan) (string, string, error) {
	if target.remote() {
		return "", "", nil
	}

	opts := pipeline.TransformOptions{
		SourceDir:        target.sourceDir,
		DiagramsDisabled: in.Diagrams.Disabled,
		DiagramTheme:     in.Diagrams.Theme,
	}

	var doc *pipeline.Document
	var err error
	if target.format == FormatHTML {
		doc, err = c.transformer.TransformHTML(ctx, target.content, opts)
	} else {
		doc, err = c.transformer.Transform(ctx, target.content, opts)
	}
	if err != nil {
		return "", "", transformError(err)
	}
	if in.Title != "" {
		doc.Title = in.Title
	}

	req := pipeline.ComposeRequest{
		Title:        doc.Title,
		Body:         doc.Body,
		CSS:          in.CSS,
		Watermark:    in.Watermark,
		AllowScripts: in.AllowScripts,
		FullDocument: doc.FullDocument,
		Width:        plan.Viewport.Width,
	}
	switch {
	case target.kind == KindPDF:
		req.Layout = pipeline.LayoutDocument
	case plan.Mode == ModeFixed:
		req.Layout = pipeline.LayoutFixed
		req.Height = plan.Viewport.Height
	default:
		req.Layout = pipeline.LayoutAuto
	}

	templateName := ""
	if !doc.FullDocument {
		req.Template, err = c.template(in.Template)
		if err != nil {
			return "", "", err
		}
		templateName = in.Template
	}

	page, err := c.compositor.Compose(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
		return "", "", fmt.Errorf("%w: composing page: %v", ErrRender, err)
	}
	return page, templateName, nil
}

// template loads and parses the named skeleton.
func (c *Converter) template(name string) (*pipeline.Skeleton, error) {
	src, err := c.loader.LoadTemplate(name)
	if err != nil {
		if errors.Is(err, ErrUnknownTemplate) {
			names, _ := c.loader.ListTemplates()
			return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownTemplate, name, strings.Join(names, ", "))
		}
		return nil, err
	}

	skeleton, err := pipeline.ParseSkeleton(name, src)
	if err != nil {
		return nil, fmt.Errorf("%w: template %q: %v", ErrInvalidInput, name, err)
	}
	return skeleton, nil
}

// transformError maps pipeline failures to public sentinels.
func transformError(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, ErrMissingTool):
		return err
	case errors.Is(err, pipeline.ErrFrontMatter):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
}

// metadata builds the sidecar record. A page count that cannot be read is
// logged and left out.
func (c *Converter) metadata(ctx context.Context, logger *log.Logger, target *resolvedInput, plan CapturePlan, templateName string, out *capture) Metadata {
	meta := Metadata{
		Engine:      enginePrefix + out.product,
		GeneratedAt: c.now().UTC().Format(time.RFC3339),
		InputHash:   Fingerprint(target.raw),
		Template:    templateName,
		Kind:        target.kind,
	}

	if target.kind == KindPDF {
		meta.Mode = printMode
		if c.pageCounter != nil {
			n, err := c.pageCounter.PageCount(ctx, target.output)
			if err != nil {
				logger.Warn("page count unavailable", "err", err)
			} else {
				meta.PageCount = &n
			}
		}
		return meta
	}

	size := out.viewport
	if plan.Mode == ModeAuto {
		size = capturedSize(out.data, plan.DeviceScaleFactor, size)
	}
	meta.Mode = string(plan.Mode)
	meta.Width = size.Width
	meta.Height = size.Height
	meta.DeviceScaleFactor = plan.DeviceScaleFactor
	if plan.Preset != "" {
		preset := plan.Preset
		meta.Preset = &preset
	}
	return meta
}
