package pagepress

import (
	"fmt"
	"strings"
)

// CaptureMode selects how an image is sized.
type CaptureMode string

// Capture modes. An empty mode means fixed with a preset and auto without.
const (
	ModeFixed   CaptureMode = "fixed"   // Clip to the preset size
	ModeAuto    CaptureMode = "auto"    // Full-page capture at the planned width
	ModeMeasure CaptureMode = "measure" // Resize to #card-container, then capture it
)

// CapturePlan is the concrete sizing decision for one image.
// InjectFixedCSS implies !FullPage.
type CapturePlan struct {
	Viewport          Size
	FullPage          bool
	InjectFixedCSS    bool
	DeviceScaleFactor float64
	Mode              CaptureMode
	Preset            string
}

// Plan resolves a preset name and mode into a CapturePlan.
// It has no side effects; the same arguments always give the same plan.
func Plan(preset string, mode CaptureMode, deviceScaleFactor float64) (CapturePlan, error) {
	if deviceScaleFactor <= 0 {
		deviceScaleFactor = DefaultDeviceScaleFactor
	}
	plan := CapturePlan{DeviceScaleFactor: deviceScaleFactor, Preset: preset}

	var size Size
	if preset != "" {
		var ok bool
		if size, ok = LookupPreset(preset); !ok {
			return CapturePlan{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownPreset, preset, strings.Join(PresetNames(), ", "))
		}
	}

	switch mode {
	case "", ModeFixed, ModeAuto, ModeMeasure:
	default:
		return CapturePlan{}, fmt.Errorf("%w: unknown capture mode %q (want fixed, auto or measure)", ErrInvalidInput, mode)
	}

	if preset != "" {
		plan.Viewport = size

		switch mode {
		case "", ModeFixed:
			plan.Mode = ModeFixed
			plan.InjectFixedCSS = true
		case ModeAuto:
			plan.Mode = ModeAuto
			plan.FullPage = true
		case ModeMeasure:
			plan.Mode = ModeMeasure
		}
		return plan, nil
	}

	plan.Viewport = DefaultViewport
	switch mode {
	case "", ModeAuto:
		plan.Mode = ModeAuto
		plan.FullPage = true
	case ModeMeasure:
		plan.Mode = ModeMeasure
	case ModeFixed:
		return CapturePlan{}, fmt.Errorf("%w: fixed mode needs a preset to size the capture", ErrInvalidInput)
	}
	return plan, nil
}
