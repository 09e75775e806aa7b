package pagepdf

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Converter renders local HTML files to PDF documents.
//
// A Converter owns one headless browser process. Call [Converter.Close]
// when done; Close is safe to call on every exit path, including after a
// failed conversion.
type Converter struct {
	cfg           converterConfig
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewConverter starts a headless browser configured by opts.
//
// A configured executable path that does not exist fails immediately with
// [ErrRender] rather than at the first conversion.
func NewConverter(opts ...Option) (*Converter, error) {
	cfg := defaultConverterConfig()
	for _, o := range opts {
		o(&cfg)
	}

	execPath := cfg.chromePath
	switch {
	case execPath != "":
		if _, err := os.Stat(execPath); err != nil {
			return nil, fmt.Errorf("%w: browser executable: %w", ErrRender, err)
		}
	case cfg.autoDownload:
		p, err := resolveBrowser()
		if err != nil {
			return nil, err
		}
		execPath = p
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("headless", cfg.headless),
	)
	if execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(execPath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so errors surface at creation time.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("%w: starting browser: %w", ErrRender, err)
	}

	return &Converter{
		cfg:           cfg,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close terminates the browser process. Close is idempotent.
func (c *Converter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.browserCancel()
	c.allocCancel()
	return nil
}

// ConvertFile loads the HTML file at path and prints it to PDF.
//
// The page is considered ready once its network has gone idle. The paper
// width is the document's scrollWidth plus the margin on both sides; the
// paper height is fixed by the configured paper size, so long content
// spans several pages.
func (c *Converter) ConvertFile(ctx context.Context, path string) (*Result, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving path: %w", ErrFileSystem, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystem, err)
	}
	target := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
	return c.convert(ctx, target)
}

// convert performs the navigation, measurement and PDF generation in a
// fresh tab.
func (c *Converter) convert(ctx context.Context, targetURL string) (*Result, error) {
	tabCtx, tabCancel := chromedp.NewContext(c.browserCtx)
	defer tabCancel()

	// The tab derives from the browser context, so tie it to the caller's.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	if c.cfg.timeout > 0 {
		var cancel context.CancelFunc
		tabCtx, cancel = context.WithTimeout(tabCtx, c.cfg.timeout)
		defer cancel()
	}

	var (
		width float64
		l     layout
		buf   []byte
	)
	if err := chromedp.Run(tabCtx,
		navigateAndWaitIdle(targetURL),
		chromedp.Evaluate(`document.documentElement.scrollWidth`, &width),
		chromedp.ActionFunc(func(ctx context.Context) error {
			l = layout{ContentWidth: width, MarginPx: c.cfg.marginPx, Paper: c.cfg.paper}
			paperWidth, paperHeight := l.paperDimensions()
			margin := l.marginInches()

			var err error
			buf, _, err = page.PrintToPDF().
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(margin).
				WithMarginRight(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithPrintBackground(true).
				Do(ctx)
			return err
		}),
	); err != nil {
		return nil, fmt.Errorf("%w: conversion failed: %w", ErrRender, err)
	}

	return &Result{data: buf, contentWidth: width, pageWidth: l.pageWidthPx()}, nil
}

// navigateAndWaitIdle loads targetURL and returns once Chrome reports the
// networkIdle lifecycle event for the main frame's new document.
func navigateAndWaitIdle(targetURL string) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		if err := page.SetLifecycleEventsEnabled(true).Do(ctx); err != nil {
			return err
		}

		lctx, cancel := context.WithCancel(ctx)
		defer cancel()

		var (
			mu      sync.Mutex
			loaders = make(map[cdp.FrameID]cdp.LoaderID)
			idle    = make(map[cdp.LoaderID]bool)
			notify  = make(chan struct{}, 1)
		)
		chromedp.ListenTarget(lctx, func(ev any) {
			e, ok := ev.(*page.EventLifecycleEvent)
			if !ok {
				return
			}
			mu.Lock()
			switch e.Name {
			case "init":
				loaders[e.FrameID] = e.LoaderID
			case "networkIdle":
				idle[e.LoaderID] = true
			}
			mu.Unlock()
			select {
			case notify <- struct{}{}:
			default:
			}
		})

		if err := chromedp.Navigate(targetURL).Do(ctx); err != nil {
			return err
		}
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		main := tree.Frame.ID

		for {
			mu.Lock()
			loader, ok := loaders[main]
			done := ok && idle[loader]
			mu.Unlock()
			if done {
				return nil
			}
			select {
			case <-notify:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (c *Converter) checkClosed() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}
