package pagepdf

import (
	"fmt"
	"strings"
)

// PageSize represents paper dimensions in centimeters.
type PageSize struct {
	Width  float64 // Width in centimeters.
	Height float64 // Height in centimeters.
}

// Standard paper sizes.
var (
	A3      = PageSize{Width: 29.7, Height: 42.0}
	A4      = PageSize{Width: 21.0, Height: 29.7}
	A5      = PageSize{Width: 14.8, Height: 21.0}
	Letter  = PageSize{Width: 21.59, Height: 27.94}
	Legal   = PageSize{Width: 21.59, Height: 35.56}
	Tabloid = PageSize{Width: 27.94, Height: 43.18}
)

var paperSizes = map[string]PageSize{
	"a3":      A3,
	"a4":      A4,
	"a5":      A5,
	"letter":  Letter,
	"legal":   Legal,
	"tabloid": Tabloid,
}

// ParsePageSize looks up a standard paper size by name, ignoring case.
func ParsePageSize(name string) (PageSize, error) {
	ps, ok := paperSizes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return PageSize{}, fmt.Errorf("unknown paper size %q", name)
	}
	return ps, nil
}

// CSS reference pixels per inch, as used by Chrome's print pipeline.
const pxPerInch = 96.0

// DefaultMarginPx is the margin applied on every side of the page.
const DefaultMarginPx = 20

// layout describes the printed page for one rendered document. The page
// width follows the content; the height comes from a fixed paper size, so
// long content paginates instead of stretching a single page.
type layout struct {
	ContentWidth float64 // measured scrollWidth, CSS pixels
	MarginPx     float64
	Paper        PageSize
}

// pageWidthPx is the content width plus the margin on both sides.
func (l layout) pageWidthPx() float64 {
	return l.ContentWidth + 2*l.MarginPx
}

func cmToInches(cm float64) float64 {
	return cm / 2.54
}

func pxToInches(px float64) float64 {
	return px / pxPerInch
}

// paperDimensions returns the paper width and height in inches.
func (l layout) paperDimensions() (width, height float64) {
	paper := l.Paper
	if paper == (PageSize{}) {
		paper = A4
	}
	return pxToInches(l.pageWidthPx()), cmToInches(paper.Height)
}

// marginInches returns the uniform margin converted to inches.
func (l layout) marginInches() float64 {
	return pxToInches(l.MarginPx)
}
