package pagepdf

import (
	"bytes"
	"io"
	"os"
)

// Result holds a generated PDF together with the measurements that shaped
// its pages.
type Result struct {
	data         []byte
	contentWidth float64
	pageWidth    float64
}

// Bytes returns the raw PDF content.
func (r *Result) Bytes() []byte {
	return r.data
}

// ContentWidth is the document's scrollWidth in CSS pixels, as measured in
// the browser before printing.
func (r *Result) ContentWidth() float64 {
	return r.contentWidth
}

// PageWidth is the requested paper width in CSS pixels: the content width
// plus the margin on both sides.
func (r *Result) PageWidth() float64 {
	return r.pageWidth
}

// Reader returns an [*bytes.Reader] over the PDF content.
func (r *Result) Reader() *bytes.Reader {
	return bytes.NewReader(r.data)
}

// WriteTo writes the full PDF content to w. It implements [io.WriterTo].
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.data)
	return int64(n), err
}

// WriteToFile writes the PDF to the file at path, replacing any existing file.
func (r *Result) WriteToFile(path string, perm os.FileMode) error {
	return os.WriteFile(path, r.data, perm)
}

// Len returns the size of the PDF in bytes.
func (r *Result) Len() int {
	return len(r.data)
}
