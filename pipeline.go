package pagepdf

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Renderer prints a local HTML file to PDF. [*Converter] is the
// production implementation.
type Renderer interface {
	ConvertFile(ctx context.Context, path string) (*Result, error)
	Close() error
}

var _ Renderer = (*Converter)(nil)

// RendererFactory opens a Renderer for one run.
type RendererFactory func(cfg Config) (Renderer, error)

type runConfig struct {
	client      *http.Client
	logger      *slog.Logger
	newRenderer RendererFactory
}

// RunOption configures the collaborators used by [Run].
type RunOption func(*runConfig)

// WithHTTPClient sets the client used for the page and image requests.
// By default a client with the configured timeout is used.
func WithHTTPClient(c *http.Client) RunOption {
	return func(rc *runConfig) {
		rc.client = c
	}
}

// WithLogger sets the logger that receives progress records.
// By default nothing is logged.
func WithLogger(l *slog.Logger) RunOption {
	return func(rc *runConfig) {
		rc.logger = l
	}
}

// WithRenderer replaces the headless-browser renderer.
func WithRenderer(f RendererFactory) RunOption {
	return func(rc *runConfig) {
		rc.newRenderer = f
	}
}

// Report describes a completed run.
type Report struct {
	HTMLPath string
	PDFPath  string

	// Images is the number of image references rewritten to data URLs.
	Images int

	// Matched reports whether the selector found an element.
	Matched bool

	ContentWidth float64
	PageWidth    float64

	// Pages is the page count read back from the written PDF, or zero when
	// the document could not be inspected.
	Pages int
}

// Run fetches cfg.URL, captures the first element matching cfg.Selector
// with its images inlined, writes it to cfg.OutputHTMLPath and prints that
// file to cfg.OutputPDFPath.
//
// Stages run strictly in order and the first error ends the run. Output
// files are only written after every earlier stage succeeded, so a failed
// image download leaves both outputs untouched. The browser is started
// after the snapshot is written and is closed before Run returns.
func Run(ctx context.Context, cfg Config, opts ...RunOption) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rc := runConfig{
		client:      &http.Client{Timeout: clientTimeout(cfg.Timeout)},
		logger:      slog.New(slog.DiscardHandler),
		newRenderer: converterFor,
	}
	for _, o := range opts {
		o(&rc)
	}
	log := rc.logger

	start := time.Now()
	log.Info("fetching page", "url", cfg.URL)
	pg, err := fetchPage(ctx, rc.client, cfg.URL)
	if err != nil {
		return nil, err
	}

	region, err := selectRegion(pg.html, cfg.Selector)
	if err != nil {
		return nil, err
	}
	report := &Report{
		HTMLPath: cfg.OutputHTMLPath,
		PDFPath:  cfg.OutputPDFPath,
		Matched:  region.Length() > 0,
	}
	if !report.Matched {
		log.Warn("selector matched nothing, snapshot will be empty", "selector", cfg.Selector)
	}

	in := &inliner{client: rc.client, logger: log, limit: cfg.Concurrency}
	report.Images, err = in.inline(ctx, region, pg.base)
	if err != nil {
		return nil, err
	}
	log.Info("images inlined", "count", report.Images)

	if _, err := writeSnapshot(cfg.OutputHTMLPath, region, cfg.Sanitize); err != nil {
		return nil, err
	}
	log.Info("snapshot written", "path", cfg.OutputHTMLPath)

	res, err := render(ctx, rc.newRenderer, cfg)
	if err != nil {
		return nil, err
	}
	if err := res.WriteToFile(cfg.OutputPDFPath, 0o644); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystem, err)
	}
	report.ContentWidth = res.ContentWidth()
	report.PageWidth = res.PageWidth()

	if info, err := InspectPDF(res.Bytes()); err != nil {
		log.Warn("could not inspect PDF", "error", err)
	} else {
		report.Pages = info.PageCount()
	}

	log.Info("pdf written",
		"path", cfg.OutputPDFPath,
		"bytes", res.Len(),
		"pages", report.Pages,
		"content_width", report.ContentWidth,
		"page_width", report.PageWidth,
		"elapsed", time.Since(start),
	)
	return report, nil
}

// render opens a renderer, converts path and always closes the renderer,
// whether or not the conversion succeeded.
func render(ctx context.Context, newRenderer RendererFactory, cfg Config) (*Result, error) {
	r, err := newRenderer(cfg)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return r.ConvertFile(ctx, cfg.OutputHTMLPath)
}

// converterFor starts a headless browser configured from cfg.
func converterFor(cfg Config) (Renderer, error) {
	opts, err := cfg.ConverterOptions()
	if err != nil {
		return nil, err
	}
	c, err := NewConverter(opts...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func clientTimeout(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
