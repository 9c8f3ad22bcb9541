package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pagepress <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Render Markdown, HTML or a URL to PDF or PNG")
	fmt.Fprintln(w, "  doctor     Check the browser and external tools")
	fmt.Fprintln(w, "  templates  List available templates")
	fmt.Fprintln(w, "  presets    List image presets")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'pagepress help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pagepress convert (--input <path> | --url <url>) --output <path> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a document to PDF or PNG and write a .meta.json sidecar.")
	fmt.Fprintln(w, "The artifact kind follows the output extension.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -i, --input <path>             Markdown or HTML file (\"-\" reads stdin, PDF only)")
	fmt.Fprintln(w, "      --url <url>                Page to render as served")
	fmt.Fprintln(w, "  -o, --output <path>            Artifact path (.pdf or .png)")
	fmt.Fprintln(w, "      --format <s>               Source format: markdown, html (default: inferred)")
	fmt.Fprintln(w, "      --title <s>                Title override")
	fmt.Fprintln(w, "      --keep-html                Write <stem>.html next to the artifact (default)")
	fmt.Fprintln(w, "      --no-html                  Do not write the HTML snapshot")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Template & Capture:")
	fmt.Fprintln(w, "  -t, --template <name>          Template name (default: default)")
	fmt.Fprintln(w, "      --preset <name>            Image preset, e.g. og, square, story")
	fmt.Fprintln(w, "      --mode <s>                 Capture mode: fixed, auto, measure")
	fmt.Fprintln(w, "      --device-scale-factor <f>  Pixel density (default: 2)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Navigation:")
	fmt.Fprintln(w, "      --wait-until <s>           load, domcontentloaded, networkidle (default)")
	fmt.Fprintln(w, "      --timeout-ms <n>           Navigation timeout (default: 30000)")
	fmt.Fprintln(w, "      --allow-scripts            Keep <script> elements")
	fmt.Fprintln(w, "      --allow-net <prefix>       Allowed URL prefix (repeatable)")
	fmt.Fprintln(w, "      --safe                     No JavaScript, no http(s) requests")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Styling:")
	fmt.Fprintln(w, "      --css <path>               CSS file applied after the template styles")
	fmt.Fprintln(w, "      --watermark <s>            Watermark text")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "PDF:")
	fmt.Fprintln(w, "      --pdf-format <s>           a4 (default), letter, legal, a3, a5, tabloid")
	fmt.Fprintln(w, "      --margin <css>             Margin on every side, e.g. 12mm, 0.5in")
	fmt.Fprintln(w, "      --scale <f>                Print scale (0.1-2)")
	fmt.Fprintln(w, "      --page-ranges <s>          Pages to print, e.g. 1-3,5")
	fmt.Fprintln(w, "      --landscape                Landscape orientation")
	fmt.Fprintln(w, "      --no-css-page-size         Ignore @page size rules")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Engine & Tools:")
	fmt.Fprintln(w, "      --engine <s>               Browser engine: rod (default), chromedp")
	fmt.Fprintln(w, "      --mermaid-cli <path>       mmdc executable")
	fmt.Fprintln(w, "      --no-diagrams              Render diagram blocks as code")
	fmt.Fprintln(w, "      --asset-path <dir>         Directory of custom templates")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config & Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>            Config file name or path (.yaml, .yml, .toml)")
	fmt.Fprintln(w, "  -q, --quiet                    Only show errors")
	fmt.Fprintln(w, "  -v, --verbose                  Show debug logs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  PAGEPRESS_CONFIG, PAGEPRESS_TEMPLATE, PAGEPRESS_TIMEOUT, PAGEPRESS_ENGINE,")
	fmt.Fprintln(w, "  PAGEPRESS_WAIT_UNTIL, PAGEPRESS_DEVICE_SCALE_FACTOR, PAGEPRESS_ALLOW_NET,")
	fmt.Fprintln(w, "  PAGEPRESS_ASSET_PATH, PAGEPRESS_SAFE. A .env file in the working directory")
	fmt.Fprintln(w, "  is loaded first. Flags > environment > config file > defaults.")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pagepress doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome/Chromium, mmdc, pdfinfo and the environment.")
	fmt.Fprintln(w, "Exits 1 when a conversion cannot run.")
}

// printTemplatesUsage prints usage for the templates command.
func printTemplatesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pagepress templates [--asset-path <dir>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List built-in templates and those under the asset path.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "templates":
		printTemplatesUsage(env.Stdout)
	case "presets":
		fmt.Fprintln(env.Stdout, "Usage: pagepress presets")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "List image presets and their viewport sizes.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: pagepress version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: pagepress help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
