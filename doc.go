// Package pagepdf snapshots one region of a web page into a self-contained
// HTML file and a PDF rendered by headless Chrome.
//
// # Pipeline
//
// [Run] executes these stages in order, stopping at the first error:
//
//  1. GET the page.
//  2. Select the first element matching a CSS selector.
//  3. Download every <img> inside it and rewrite src to a data URL.
//  4. Write the element's inner markup to a local HTML file.
//  5. Print that file to PDF with Chrome (Chrome DevTools Protocol).
//
// For example:
//
//	cfg := pagepdf.DefaultConfig()
//	cfg.URL = "https://example.com/story"
//	cfg.Selector = "div.page"
//
//	report, err := pagepdf.Run(ctx, cfg, pagepdf.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.PDFPath, report.Pages)
//
// Image downloads run concurrently, bounded by [Config.Concurrency], and are
// all-or-nothing: when one fails the page is left unmodified and no output
// file is written.
//
// # Page geometry
//
// The PDF page width is the rendered document's scrollWidth plus
// [Config.MarginPx] on both sides. The page height is taken from a standard
// paper size ([A4] by default), so long regions span several pages.
//
// # Rendering existing files
//
// A [Converter] can be used on its own to print any local HTML file:
//
//	c, err := pagepdf.NewConverter(pagepdf.WithMargin(20))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	res, err := c.ConvertFile(ctx, "storybody.html")
//
// Chrome or Chromium must be available in PATH, or use [WithAutoDownload].
//
// # Errors
//
// Failures wrap one of [ErrNetwork], [ErrParse], [ErrRender],
// [ErrFileSystem] or [ErrInvalidConfig].
package pagepdf
