// Package pagepress renders Markdown, HTML or a web page to PDF or PNG with a
// headless Chromium, and records a JSON metadata sidecar next to the artifact.
//
// # Quick Start
//
//	conv, err := pagepress.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := conv.Convert(ctx, pagepress.Input{
//	    Source: pagepress.Source{FilePath: "post.md"},
//	    Output: "card.png",
//	    Preset: "og",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.ArtifactPath, res.MetaPath)
//
// # Pipeline
//
//  1. Normalize: exactly one source, output kind from the extension.
//  2. Transform: Markdown to HTML (front matter, TOC marker, diagrams,
//     syntax highlighting) or an HTML source with rewritten relative paths.
//  3. Compose: the body goes into a template with layout, theme and user CSS.
//  4. Plan: presets and capture modes resolve to a viewport (PNG only).
//  5. Render: launch, navigate, prepare and capture in one browser session.
//  6. Emit: artifact, then <stem>.meta.json.
//
// # Capture Modes
//
// With a preset, fixed mode (the default) clips the capture to the preset
// size. Auto takes a full-page screenshot at the preset width and measure
// resizes the viewport to #card-container before capturing that element.
// Without a preset the default is auto at 1080x800.
//
// # Backends
//
// Two engines implement Backend: rod (default) and chromedp. Neither
// downloads a browser; set ROD_BROWSER_BIN or install Chrome or Chromium.
//
//	backend, err := pagepress.NewBackend("chromedp")
//	conv, err := pagepress.NewConverter(pagepress.WithBackend(backend))
//
// # Custom Templates
//
// Templates are HTML skeletons with {{title}}, {{body}}, {{styles}},
// {{watermark}} and {{modeClass}} slots. Unknown slots are rejected.
//
//	conv, err := pagepress.NewConverter(pagepress.WithAssetPath("/path/to/assets"))
//
//	assets/
//	└── templates/
//	    └── brand.html
//
// # Error Handling
//
// Errors wrap sentinels and can be checked with errors.Is:
//
//	if errors.Is(err, pagepress.ErrUnknownPreset) {
//	    // print pagepress.PresetNames()
//	}
package pagepress
