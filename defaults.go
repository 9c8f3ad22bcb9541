package pagepress

import "time"

// Documented defaults. Input.withDefaults is the only place they are applied.
const (
	DefaultTemplate          = "default"
	DefaultWaitUntil         = WaitNetworkIdle
	DefaultTimeout           = 30 * time.Second
	DefaultDeviceScaleFactor = 2.0
	DefaultViewportWidth     = 1080
	DefaultViewportHeight    = 800
	DefaultPDFFormat         = PDFFormatA4
	DefaultMargin            = "0"
	DefaultScale             = 1.0
)

// DefaultViewport is the capture size used when no preset is given.
var DefaultViewport = Size{Width: DefaultViewportWidth, Height: DefaultViewportHeight}

// withDefaults returns a copy of in with every unset option filled.
// Mode and Preset stay empty: the planner decides what "unset" means.
func (in Input) withDefaults() Input {
	if in.Template == "" {
		in.Template = DefaultTemplate
	}
	if in.WaitUntil == "" {
		in.WaitUntil = DefaultWaitUntil
	}
	if in.Timeout <= 0 {
		in.Timeout = DefaultTimeout
	}
	if in.DeviceScaleFactor <= 0 {
		in.DeviceScaleFactor = DefaultDeviceScaleFactor
	}
	if in.PDF.Format == "" {
		in.PDF.Format = DefaultPDFFormat
	}
	if in.PDF.Margin == "" {
		in.PDF.Margin = DefaultMargin
	}
	if in.PDF.Scale == 0 {
		in.PDF.Scale = DefaultScale
	}
	if in.PDF.PreferCSSPageSize == nil {
		prefer := true
		in.PDF.PreferCSSPageSize = &prefer
	}
	if len(in.AllowNet) > 0 {
		in.AllowNet = append([]string(nil), in.AllowNet...)
	}
	return in
}
