package pagepdf_test

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"

	pagepdf "github.com/porticus-lab/go-page-pdf"
)

// chromeAvailable reports whether a Chrome/Chromium executable is in PATH.
func chromeAvailable() bool {
	for _, name := range []string{
		"chromium-browser", "chromium", "google-chrome",
		"google-chrome-stable", "chrome",
	} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

func skipIfNoChrome(t *testing.T) {
	t.Helper()
	if !chromeAvailable() {
		t.Skip("skipping: Chrome/Chromium not found in PATH")
	}
}

func newTestConverter(t *testing.T, opts ...pagepdf.Option) *pagepdf.Converter {
	t.Helper()
	skipIfNoChrome(t)
	c, err := pagepdf.NewConverter(append([]pagepdf.Option{pagepdf.WithNoSandbox()}, opts...)...)
	if err != nil {
		t.Fatalf("NewConverter: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// isPDF checks whether data starts with the PDF magic number.
func isPDF(data []byte) bool {
	return len(data) > 4 && string(data[:5]) == "%PDF-"
}

func writeHTML(t *testing.T, html string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storybody.html")
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// Chrome rounds the paper size to whole device units.
const widthTolerancePx = 1.5

func TestConvertFile_Basic(t *testing.T) {
	c := newTestConverter(t)

	res, err := c.ConvertFile(context.Background(), writeHTML(t, "<h1>From File</h1>"))
	if err != nil {
		t.Fatalf("ConvertFile: %v", err)
	}
	if !isPDF(res.Bytes()) {
		t.Fatal("output is not a valid PDF")
	}
	if res.ContentWidth() <= 0 {
		t.Errorf("ContentWidth() = %v, want > 0", res.ContentWidth())
	}
}

func TestConvertFile_PageWidthFollowsContent(t *testing.T) {
	c := newTestConverter(t)

	for _, width := range []int{300, 1200, 2400} {
		html := `<div style="width:` + strconv.Itoa(width) + `px;height:50px;background:#369"></div>`
		res, err := c.ConvertFile(context.Background(), writeHTML(t, html))
		if err != nil {
			t.Fatalf("ConvertFile(%dpx): %v", width, err)
		}

		info, err := pagepdf.InspectPDF(res.Bytes())
		if err != nil {
			t.Fatalf("InspectPDF: %v", err)
		}
		if info.PageCount() < 1 {
			t.Fatal("PDF has no pages")
		}
		want := res.ContentWidth() + 2*pagepdf.DefaultMarginPx
		if got := info.Pages[0].Width; math.Abs(got-want) > widthTolerancePx {
			t.Errorf("content %dpx: page width = %.1fpx, want scrollWidth %.0f + 40 = %.0f",
				width, got, res.ContentWidth(), want)
		}
		if res.PageWidth() != want {
			t.Errorf("PageWidth() = %v, want %v", res.PageWidth(), want)
		}
	}
}

func TestConvertFile_LongContentPaginates(t *testing.T) {
	c := newTestConverter(t)

	res, err := c.ConvertFile(context.Background(), writeHTML(t, `<div style="height:5000px">tall</div>`))
	if err != nil {
		t.Fatal(err)
	}
	info, err := pagepdf.InspectPDF(res.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if info.PageCount() < 2 {
		t.Errorf("page count = %d, want several pages for tall content", info.PageCount())
	}
	// A4 height: 29.7cm = 1122.5px.
	if h := info.Pages[0].Height; math.Abs(h-1122.5) > widthTolerancePx {
		t.Errorf("page height = %.1fpx, want A4 (~1122.5px)", h)
	}
}

func TestConvertFile_EmptySnapshot(t *testing.T) {
	c := newTestConverter(t)

	res, err := c.ConvertFile(context.Background(), writeHTML(t, ""))
	if err != nil {
		t.Fatalf("ConvertFile(empty): %v", err)
	}
	if !isPDF(res.Bytes()) {
		t.Fatal("output is not a valid PDF")
	}
}

func TestConvertFile_CustomMargin(t *testing.T) {
	c := newTestConverter(t, pagepdf.WithMargin(50), pagepdf.WithPaper(pagepdf.Letter))

	res, err := c.ConvertFile(context.Background(), writeHTML(t, `<div style="width:500px">x</div>`))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := res.PageWidth(), res.ContentWidth()+100; got != want {
		t.Errorf("PageWidth() = %v, want %v", got, want)
	}
}

func TestConvertFile_NotFound(t *testing.T) {
	c := newTestConverter(t)

	_, err := c.ConvertFile(context.Background(), "/nonexistent/file.html")
	if !errors.Is(err, pagepdf.ErrFileSystem) {
		t.Fatalf("err = %v, want ErrFileSystem", err)
	}
}

func TestNewConverter_MissingExecutable(t *testing.T) {
	_, err := pagepdf.NewConverter(pagepdf.WithChromePath(filepath.Join(t.TempDir(), "chrome")))
	if !errors.Is(err, pagepdf.ErrRender) {
		t.Fatalf("err = %v, want ErrRender", err)
	}
}

func TestConverter_CloseIdempotent(t *testing.T) {
	skipIfNoChrome(t)

	c, err := pagepdf.NewConverter(pagepdf.WithNoSandbox())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestConverter_UsedAfterClose(t *testing.T) {
	skipIfNoChrome(t)

	c, err := pagepdf.NewConverter(pagepdf.WithNoSandbox())
	if err != nil {
		t.Fatal(err)
	}
	c.Close()

	_, err = c.ConvertFile(context.Background(), writeHTML(t, "<p>test</p>"))
	if err != pagepdf.ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestRun_EndToEnd(t *testing.T) {
	skipIfNoChrome(t)

	png := []byte("\x89PNG\r\n\x1a\n")
	mux := http.NewServeMux()
	mux.HandleFunc("/story", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body>
			<div class="nav">menu</div>
			<div class="page" style="width:900px"><h1>Story</h1><img src="/img/a.png?v=1"></div>
		</body></html>`))
	})
	mux.HandleFunc("/img/a.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	cfg := pagepdf.DefaultConfig()
	cfg.URL = srv.URL + "/story"
	cfg.NoSandbox = true
	cfg.OutputHTMLPath = filepath.Join(dir, "storybody.html")
	cfg.OutputPDFPath = filepath.Join(dir, "storybody.pdf")

	report, err := pagepdf.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Images != 1 || report.Pages < 1 {
		t.Errorf("report = %+v", report)
	}

	data, err := os.ReadFile(cfg.OutputPDFPath)
	if err != nil {
		t.Fatal(err)
	}
	if !isPDF(data) {
		t.Fatal("written file is not a valid PDF")
	}
	info, err := pagepdf.InspectPDF(data)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := info.Pages[0].Width, report.ContentWidth+40; math.Abs(got-want) > widthTolerancePx {
		t.Errorf("page width = %.1f, want %.1f", got, want)
	}
}
