package pagepdf

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDF user space units per CSS pixel (72 pt per inch, 96 px per inch).
const pointsPerPx = 72.0 / pxPerInch

// PageInfo is the size of one PDF page in CSS pixels.
type PageInfo struct {
	Width  float64
	Height float64
}

// PDFInfo summarizes the page geometry of a PDF document.
type PDFInfo struct {
	Pages []PageInfo
}

// PageCount returns the number of pages.
func (i PDFInfo) PageCount() int { return len(i.Pages) }

// pdfcpu reads and writes a user configuration directory unless told not to.
var disableConfigDir sync.Once

// InspectPDF reads the page dimensions of a PDF document.
func InspectPDF(data []byte) (PDFInfo, error) {
	disableConfigDir.Do(api.DisableConfigDir)

	dims, err := api.PageDims(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return PDFInfo{}, fmt.Errorf("%w: reading PDF: %v", ErrParse, err)
	}

	info := PDFInfo{Pages: make([]PageInfo, 0, len(dims))}
	for _, d := range dims {
		info.Pages = append(info.Pages, PageInfo{
			Width:  d.Width / pointsPerPx,
			Height: d.Height / pointsPerPx,
		})
	}
	return info, nil
}
