package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// sourceFlags selects what is rendered and where it goes.
type sourceFlags struct {
	input  string // file path, or "-" for stdin
	url    string
	output string
	format string
	title  string
}

// captureFlags holds template and image capture flags.
type captureFlags struct {
	template          string
	preset            string
	mode              string
	deviceScaleFactor float64
}

// navigationFlags holds page loading and network flags.
type navigationFlags struct {
	waitUntil    string
	timeoutMs    int
	allowScripts bool
	allowNet     []string
	safe         bool
}

// styleFlags holds user styling flags.
type styleFlags struct {
	watermark string
	css       string // path to a CSS file
}

// outputFlags controls side outputs.
type outputFlags struct {
	keepHTML bool
	noHTML   bool
}

// pdfFlags holds print settings.
type pdfFlags struct {
	format        string
	margin        string
	scale         float64
	pageRanges    string
	landscape     bool
	noCSSPageSize bool
}

// engineFlags selects the browser engine and external tools.
type engineFlags struct {
	engine     string
	mermaidCLI string
	noDiagrams bool
	assetPath  string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common     commonFlags
	source     sourceFlags
	capture    captureFlags
	navigation navigationFlags
	style      styleFlags
	output     outputFlags
	pdf        pdfFlags
	engine     engineFlags

	// set records the flags given on the command line. Only those override
	// the environment and the config file.
	set map[string]bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addSourceFlags adds input and output flags to a FlagSet.
func addSourceFlags(fs *flag.FlagSet, f *sourceFlags) {
	fs.StringVarP(&f.input, "input", "i", "", "Markdown or HTML file (\"-\" reads stdin)")
	fs.StringVar(&f.url, "url", "", "page to render as served")
	fs.StringVarP(&f.output, "output", "o", "", "artifact path (.pdf or .png)")
	fs.StringVar(&f.format, "format", "", "source format: markdown, html")
	fs.StringVar(&f.title, "title", "", "document title override")
}

// addCaptureFlags adds template and capture flags to a FlagSet.
func addCaptureFlags(fs *flag.FlagSet, f *captureFlags) {
	fs.StringVarP(&f.template, "template", "t", "", "template name")
	fs.StringVar(&f.preset, "preset", "", "image preset (see 'pagepress presets')")
	fs.StringVar(&f.mode, "mode", "", "capture mode: fixed, auto, measure")
	fs.Float64Var(&f.deviceScaleFactor, "device-scale-factor", 0, "pixel density (default 2)")
}

// addNavigationFlags adds page loading flags to a FlagSet.
func addNavigationFlags(fs *flag.FlagSet, f *navigationFlags) {
	fs.StringVar(&f.waitUntil, "wait-until", "", "load, domcontentloaded or networkidle")
	fs.IntVar(&f.timeoutMs, "timeout-ms", 0, "navigation timeout in milliseconds")
	fs.BoolVar(&f.allowScripts, "allow-scripts", false, "keep <script> elements")
	fs.StringArrayVar(&f.allowNet, "allow-net", nil, "allowed URL prefix (repeatable)")
	fs.BoolVar(&f.safe, "safe", false, "disable JavaScript and block http(s) requests")
}

// addStyleFlags adds styling flags to a FlagSet.
func addStyleFlags(fs *flag.FlagSet, f *styleFlags) {
	fs.StringVar(&f.watermark, "watermark", "", "watermark text")
	fs.StringVar(&f.css, "css", "", "CSS file applied after the template styles")
}

// addOutputFlags adds side output flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.BoolVar(&f.keepHTML, "keep-html", true, "write the HTML snapshot next to the artifact")
	fs.BoolVar(&f.noHTML, "no-html", false, "do not write the HTML snapshot")
}

// addPDFFlags adds print flags to a FlagSet.
func addPDFFlags(fs *flag.FlagSet, f *pdfFlags) {
	fs.StringVar(&f.format, "pdf-format", "", "paper size: a4, letter, legal, a3, a5, tabloid")
	fs.StringVar(&f.margin, "margin", "", "page margin as a CSS length, e.g. 12mm")
	fs.Float64Var(&f.scale, "scale", 0, "print scale (0.1-2)")
	fs.StringVar(&f.pageRanges, "page-ranges", "", "pages to print, e.g. 1-3,5")
	fs.BoolVar(&f.landscape, "landscape", false, "landscape orientation")
	fs.BoolVar(&f.noCSSPageSize, "no-css-page-size", false, "ignore @page size rules")
}

// addEngineFlags adds engine and tool flags to a FlagSet.
func addEngineFlags(fs *flag.FlagSet, f *engineFlags) {
	fs.StringVar(&f.engine, "engine", "", "browser engine: rod, chromedp")
	fs.StringVar(&f.mermaidCLI, "mermaid-cli", "", "path to the mmdc executable")
	fs.BoolVar(&f.noDiagrams, "no-diagrams", false, "render diagram blocks as code")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory of custom templates")
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, stderr io.Writer) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &convertFlags{set: make(map[string]bool)}

	addCommonFlags(fs, &f.common)
	addSourceFlags(fs, &f.source)
	addCaptureFlags(fs, &f.capture)
	addNavigationFlags(fs, &f.navigation)
	addStyleFlags(fs, &f.style)
	addOutputFlags(fs, &f.output)
	addPDFFlags(fs, &f.pdf)
	addEngineFlags(fs, &f.engine)

	fs.Usage = func() { printConvertUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	fs.Visit(func(fl *flag.Flag) {
		f.set[fl.Name] = true
	})

	return f, fs.Args(), nil
}
