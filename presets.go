package pagepress

import "sort"

// presets maps names to fixed image sizes.
var presets = map[string]Size{
	"og":          {Width: 1200, Height: 630},
	"square":      {Width: 1080, Height: 1080},
	"story":       {Width: 1080, Height: 1920},
	"portrait":    {Width: 1200, Height: 1500},
	"banner":      {Width: 1600, Height: 900},
	"infographic": {Width: 1080, Height: 1350},
	"poster":      {Width: 1200, Height: 1800},
	"twitter":     {Width: 1200, Height: 675},
	"youtube":     {Width: 1280, Height: 720},
	"xiaohongshu": {Width: 1080, Height: 1440},
	"wechat":      {Width: 900, Height: 383},
}

// LookupPreset returns the size registered under name.
func LookupPreset(name string) (Size, bool) {
	size, ok := presets[name]
	return size, ok
}

// PresetNames returns every preset name, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
