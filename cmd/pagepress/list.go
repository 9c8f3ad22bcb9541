package main

import (
	"fmt"

	flag "github.com/spf13/pflag"

	pagepress "github.com/alnah/go-pagepress"
)

// runTemplates lists the built-in templates plus any found under
// --asset-path (or PAGEPRESS_ASSET_PATH).
func runTemplates(args []string, env *Environment) error {
	fs := flag.NewFlagSet("templates", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	assetPath := fs.String("asset-path", "", "directory of custom templates")
	fs.Usage = func() { printTemplatesUsage(env.Stderr) }
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := *assetPath
	if path == "" {
		path = env.Getenv("PAGEPRESS_ASSET_PATH")
	}

	loader, err := pagepress.NewTemplateLoader(path)
	if err != nil {
		return err
	}
	names, err := loader.ListTemplates()
	if err != nil {
		return err
	}

	printTitle(env.Stdout, "Templates")
	for _, name := range names {
		if name == pagepress.DefaultTemplate {
			printInfo(env.Stdout, "%s %s", name, styleDim.Render("(default)"))
			continue
		}
		printInfo(env.Stdout, "%s", name)
	}
	return nil
}

// runPresets lists the image presets with their viewport sizes.
func runPresets(args []string, env *Environment) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: presets takes no arguments", pagepress.ErrInvalidInput)
	}

	printTitle(env.Stdout, "Presets")
	for _, name := range pagepress.PresetNames() {
		size, _ := pagepress.LookupPreset(name)
		printKeyValue(env.Stdout, name, fmt.Sprintf("%dx%d", size.Width, size.Height))
	}
	return nil
}
