package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	pagepress "github.com/alnah/go-pagepress"
	"github.com/alnah/go-pagepress/internal/config"
)

// stdinInput is the --input value that reads the source from stdin.
const stdinInput = "-"

// runConvert resolves settings (flags > environment > config file >
// defaults), runs one conversion and prints the JSON result to stdout.
func runConvert(ctx context.Context, args []string, flags *convertFlags, env *Environment) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: unexpected argument %q (use --input or --url)", pagepress.ErrInvalidInput, args[0])
	}

	logger := loggerFromContext(ctx)

	warnUnknownEnvVars(env.Stderr, env.Environ())
	envCfg := loadEnvConfig(env.Getenv)

	cfg, err := loadConfig(flags, envCfg)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)

	in, err := buildInput(flags, cfg, env.Stdin)
	if err != nil {
		return err
	}

	backend, err := env.Backend(cfg.Engine)
	if err != nil {
		return err
	}

	conv, err := pagepress.NewConverter(
		pagepress.WithBackend(backend),
		pagepress.WithLogger(logger),
		pagepress.WithAssetPath(cfg.AssetPath),
		pagepress.WithMermaidCLI(cfg.Diagrams.MermaidCLI),
		pagepress.WithClock(env.Now),
	)
	if err != nil {
		return err
	}

	p := newProgress(logger, env.Now)
	res, err := conv.Convert(ctx, in)
	if err != nil {
		return err
	}
	p.done("wrote "+res.ArtifactPath, "kind", res.Meta.Kind)

	enc := json.NewEncoder(env.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// loadConfig reads the config file named by --config, else PAGEPRESS_CONFIG.
// Without either, it returns an empty config so the library defaults apply.
func loadConfig(flags *convertFlags, env *envConfig) (*config.Config, error) {
	name := flags.common.config
	if name == "" {
		name = env.ConfigPath
	}
	if name == "" {
		return &config.Config{}, nil
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeFlags merges CLI flags into config. Only flags given on the command
// line override, so an explicit zero (e.g. --safe=false) still wins.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	set := flags.set

	// Capture
	if set["template"] {
		cfg.Template = flags.capture.template
	}
	if set["preset"] {
		cfg.Capture.Preset = flags.capture.preset
	}
	if set["mode"] {
		cfg.Capture.Mode = flags.capture.mode
	}
	if set["device-scale-factor"] {
		cfg.Capture.DeviceScaleFactor = flags.capture.deviceScaleFactor
	}

	// Navigation
	if set["wait-until"] {
		cfg.Navigation.WaitUntil = flags.navigation.waitUntil
	}
	if set["timeout-ms"] {
		cfg.Navigation.TimeoutMs = flags.navigation.timeoutMs
	}
	if set["allow-scripts"] {
		cfg.Navigation.AllowScripts = flags.navigation.allowScripts
	}
	if set["allow-net"] {
		cfg.Navigation.AllowNet = flags.navigation.allowNet
	}
	if set["safe"] {
		cfg.Safe = flags.navigation.safe
	}

	// Style
	if set["watermark"] {
		cfg.Style.Watermark = flags.style.watermark
	}
	if set["css"] {
		cfg.Style.CSS = flags.style.css
	}

	// PDF
	if set["pdf-format"] {
		cfg.PDF.Format = flags.pdf.format
	}
	if set["margin"] {
		cfg.PDF.Margin = flags.pdf.margin
	}
	if set["scale"] {
		cfg.PDF.Scale = flags.pdf.scale
	}
	if set["page-ranges"] {
		cfg.PDF.PageRanges = flags.pdf.pageRanges
	}
	if set["landscape"] {
		cfg.PDF.Landscape = flags.pdf.landscape
	}
	if flags.pdf.noCSSPageSize {
		prefer := false
		cfg.PDF.PreferCSSPageSize = &prefer
	}

	// Engine and tools
	if set["engine"] {
		cfg.Engine = flags.engine.engine
	}
	if set["mermaid-cli"] {
		cfg.Diagrams.MermaidCLI = flags.engine.mermaidCLI
	}
	if set["no-diagrams"] {
		cfg.Diagrams.Disabled = flags.engine.noDiagrams
	}
	if set["asset-path"] {
		cfg.AssetPath = flags.engine.assetPath
	}

	// Side outputs; --no-html wins over --keep-html
	if set["keep-html"] {
		keep := flags.output.keepHTML
		cfg.Output.KeepHTML = &keep
	}
	if flags.output.noHTML {
		keep := false
		cfg.Output.KeepHTML = &keep
	}
}

// buildInput turns the merged settings into a conversion request.
func buildInput(flags *convertFlags, cfg *config.Config, stdin io.Reader) (pagepress.Input, error) {
	src, err := buildSource(flags.source, stdin)
	if err != nil {
		return pagepress.Input{}, err
	}

	css, err := readCSS(cfg.Style.CSS)
	if err != nil {
		return pagepress.Input{}, err
	}

	return pagepress.Input{
		Source:   src,
		Output:   flags.source.output,
		Template: cfg.Template,
		Title:    flags.source.title,

		Preset:            cfg.Capture.Preset,
		Mode:              pagepress.CaptureMode(cfg.Capture.Mode),
		DeviceScaleFactor: cfg.Capture.DeviceScaleFactor,

		WaitUntil:    pagepress.WaitUntil(cfg.Navigation.WaitUntil),
		Timeout:      time.Duration(cfg.Navigation.TimeoutMs) * time.Millisecond,
		AllowScripts: cfg.Navigation.AllowScripts,
		AllowNet:     cfg.Navigation.AllowNet,
		Safe:         cfg.Safe,

		Watermark: cfg.Style.Watermark,
		CSS:       css,
		KeepHTML:  cfg.Output.KeepHTML == nil || *cfg.Output.KeepHTML,

		PDF: pagepress.PDFOptions{
			Format:            pagepress.PDFFormat(cfg.PDF.Format),
			Landscape:         cfg.PDF.Landscape,
			Margin:            cfg.PDF.Margin,
			Scale:             cfg.PDF.Scale,
			PageRanges:        cfg.PDF.PageRanges,
			PreferCSSPageSize: cfg.PDF.PreferCSSPageSize,
		},
		Diagrams: pagepress.DiagramOptions{
			Disabled: cfg.Diagrams.Disabled,
			Theme:    cfg.Diagrams.Theme,
		},
	}, nil
}

// buildSource maps --input and --url to a Source. "-" reads inline content
// from stdin.
func buildSource(f sourceFlags, stdin io.Reader) (pagepress.Source, error) {
	src := pagepress.Source{
		URL:    f.url,
		Format: pagepress.Format(f.format),
	}

	switch f.input {
	case "":
	case stdinInput:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return pagepress.Source{}, fmt.Errorf("%w: reading stdin: %v", pagepress.ErrIO, err)
		}
		if len(data) == 0 {
			return pagepress.Source{}, fmt.Errorf("%w: stdin is empty", pagepress.ErrInvalidInput)
		}
		src.Content = string(data)
	default:
		src.FilePath = f.input
	}

	return src, nil
}

// readCSS loads the user stylesheet. An empty path means none.
func readCSS(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: CSS file not found: %s", pagepress.ErrInvalidInput, path)
		}
		return "", fmt.Errorf("%w: reading CSS %s: %v", pagepress.ErrIO, path, err)
	}
	return string(data), nil
}
