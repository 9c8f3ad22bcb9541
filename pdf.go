package pagepress

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// PDFFormat is a named paper size.
type PDFFormat string

// Paper sizes.
const (
	PDFFormatA4      PDFFormat = "a4"
	PDFFormatLetter  PDFFormat = "letter"
	PDFFormatLegal   PDFFormat = "legal"
	PDFFormatA3      PDFFormat = "a3"
	PDFFormatA5      PDFFormat = "a5"
	PDFFormatTabloid PDFFormat = "tabloid"
)

// Scale bounds accepted by Chromium's print engine.
const (
	MinScale = 0.1
	MaxScale = 2.0
)

// paperInches holds portrait width and height in inches.
var paperInches = map[PDFFormat][2]float64{
	PDFFormatA4:      {8.27, 11.69},
	PDFFormatLetter:  {8.5, 11},
	PDFFormatLegal:   {8.5, 14},
	PDFFormatA3:      {11.69, 16.54},
	PDFFormatA5:      {5.83, 8.27},
	PDFFormatTabloid: {11, 17},
}

// PDFSettings is the print request handed to a Page.
// Lengths are in inches.
type PDFSettings struct {
	PaperWidth        float64
	PaperHeight       float64
	Landscape         bool
	Margin            float64
	Scale             float64
	PageRanges        string
	PreferCSSPageSize bool
	PrintBackground   bool
}

// cssLength matches a number with an optional unit, e.g. "12mm", "0.5in", "0".
var cssLength = regexp.MustCompile(`^([0-9]*\.?[0-9]+)\s*(px|in|cm|mm|pt)?$`)

// inchesPer converts one unit to inches.
var inchesPer = map[string]float64{
	"":   1.0 / 96, // bare numbers are CSS pixels
	"px": 1.0 / 96,
	"in": 1,
	"cm": 1 / 2.54,
	"mm": 1 / 25.4,
	"pt": 1.0 / 72,
}

// parseMargin converts a CSS length to inches.
func parseMargin(s string) (float64, error) {
	m := cssLength.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return 0, fmt.Errorf("%w: margin %q is not a CSS length (px, in, cm, mm, pt)", ErrInvalidInput, s)
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: margin %q: %v", ErrInvalidInput, s, err)
	}
	return v * inchesPer[m[2]], nil
}

// pdfSettings validates opts and converts them for the page.
func pdfSettings(opts PDFOptions) (PDFSettings, error) {
	format := PDFFormat(strings.ToLower(string(opts.Format)))
	paper, ok := paperInches[format]
	if !ok {
		return PDFSettings{}, fmt.Errorf("%w: unknown PDF format %q (want a4, letter, legal, a3, a5 or tabloid)", ErrInvalidInput, opts.Format)
	}

	margin, err := parseMargin(opts.Margin)
	if err != nil {
		return PDFSettings{}, err
	}

	if opts.Scale < MinScale || opts.Scale > MaxScale {
		return PDFSettings{}, fmt.Errorf("%w: scale %.2f out of range (%.1f to %.1f)", ErrInvalidInput, opts.Scale, MinScale, MaxScale)
	}

	prefer := opts.PreferCSSPageSize == nil || *opts.PreferCSSPageSize
	return PDFSettings{
		PaperWidth:        paper[0],
		PaperHeight:       paper[1],
		Landscape:         opts.Landscape,
		Margin:            margin,
		Scale:             opts.Scale,
		PageRanges:        strings.TrimSpace(opts.PageRanges),
		PreferCSSPageSize: prefer,
		PrintBackground:   true,
	}, nil
}
