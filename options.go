package pagepdf

import "time"

// converterConfig holds internal configuration for a Converter.
type converterConfig struct {
	chromePath   string
	timeout      time.Duration
	noSandbox    bool
	headless     string
	autoDownload bool
	marginPx     float64
	paper        PageSize
}

func defaultConverterConfig() converterConfig {
	return converterConfig{
		timeout:  DefaultTimeout,
		headless: "new",
		marginPx: DefaultMarginPx,
		paper:    A4,
	}
}

// Option configures a [Converter].
type Option func(*converterConfig)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default the executable is searched for in standard locations.
func WithChromePath(path string) Option {
	return func(c *converterConfig) {
		c.chromePath = path
	}
}

// WithTimeout sets the maximum duration for a single conversion.
// Defaults to 30 seconds. A zero or negative value disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *converterConfig) {
		c.timeout = d
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() Option {
	return func(c *converterConfig) {
		c.noSandbox = true
	}
}

// WithAutoDownload downloads a compatible Chromium when no executable
// path is configured.
func WithAutoDownload() Option {
	return func(c *converterConfig) {
		c.autoDownload = true
	}
}

// WithMargin sets the margin on every side of the page, in CSS pixels.
// The page width becomes the content width plus twice this value.
func WithMargin(px float64) Option {
	return func(c *converterConfig) {
		c.marginPx = px
	}
}

// WithPaper sets the paper size whose height is used for every page.
// Its width is ignored: the page width always follows the content.
func WithPaper(size PageSize) Option {
	return func(c *converterConfig) {
		c.paper = size
	}
}
