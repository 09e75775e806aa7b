package pagepdf

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"
)

// Defaults applied by [DefaultConfig].
const (
	DefaultSelector       = "div.page"
	DefaultOutputHTMLPath = "./storybody.html"
	DefaultOutputPDFPath  = "./storybody.pdf"
	DefaultConcurrency    = 8
	DefaultPaper          = "A4"
	DefaultTimeout        = 30 * time.Second
)

// DefaultConfigFile is the configuration file looked up in the working directory.
const DefaultConfigFile = ".pagepdf.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("pagepdf: configuration file not found")

// Config describes one snapshot run.
type Config struct {
	// URL of the page to snapshot.
	URL string `yaml:"url"`

	// Selector is a CSS selector; the first match is the captured region.
	Selector string `yaml:"selector"`

	// MarginPx is the margin on every side of the PDF page, in CSS pixels.
	MarginPx float64 `yaml:"margin_px"`

	// BrowserPath is the Chrome/Chromium executable. Empty means search PATH,
	// or download one when AutoDownload is set.
	BrowserPath string `yaml:"browser_path"`

	OutputHTMLPath string `yaml:"output_html"`
	OutputPDFPath  string `yaml:"output_pdf"`

	// Concurrency bounds the number of simultaneous image downloads.
	Concurrency int `yaml:"concurrency"`

	// Paper names the standard paper size that fixes the page height.
	Paper string `yaml:"paper"`

	// Timeout bounds each HTTP request and the PDF conversion. Zero disables it.
	Timeout time.Duration `yaml:"timeout"`

	NoSandbox    bool `yaml:"no_sandbox"`
	AutoDownload bool `yaml:"auto_download"`

	// Sanitize strips scripts and other active content from the snapshot.
	Sanitize bool `yaml:"sanitize"`
}

// DefaultConfig returns a Config with every field except URL populated.
func DefaultConfig() Config {
	return Config{
		Selector:       DefaultSelector,
		MarginPx:       DefaultMarginPx,
		OutputHTMLPath: DefaultOutputHTMLPath,
		OutputPDFPath:  DefaultOutputPDFPath,
		Concurrency:    DefaultConcurrency,
		Paper:          DefaultPaper,
		Timeout:        DefaultTimeout,
	}
}

// Validate reports the first problem found in c, wrapped in [ErrInvalidConfig].
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("%w: url: %v", ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: url %q must use http or https", ErrInvalidConfig, c.URL)
	}
	if c.Selector == "" {
		return fmt.Errorf("%w: selector is required", ErrInvalidConfig)
	}
	if _, err := cascadia.Compile(c.Selector); err != nil {
		return fmt.Errorf("%w: selector %q: %v", ErrInvalidConfig, c.Selector, err)
	}
	if c.MarginPx < 0 {
		return fmt.Errorf("%w: margin_px must not be negative", ErrInvalidConfig)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1", ErrInvalidConfig)
	}
	if c.OutputHTMLPath == "" || c.OutputPDFPath == "" {
		return fmt.Errorf("%w: output paths are required", ErrInvalidConfig)
	}
	if _, err := ParsePageSize(c.Paper); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ConverterOptions translates the browser and page settings of c into
// [Converter] options.
func (c Config) ConverterOptions() ([]Option, error) {
	paper, err := ParsePageSize(c.Paper)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	opts := []Option{
		WithMargin(c.MarginPx),
		WithPaper(paper),
		WithTimeout(c.Timeout),
	}
	if c.BrowserPath != "" {
		opts = append(opts, WithChromePath(c.BrowserPath))
	}
	if c.NoSandbox {
		opts = append(opts, WithNoSandbox())
	}
	if c.AutoDownload {
		opts = append(opts, WithAutoDownload())
	}
	return opts, nil
}

// LoadConfigFile reads a YAML configuration file on top of [DefaultConfig].
// Keys absent from the file keep their default values.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, ErrConfigNotFound
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// FindConfigFile searches for the configuration file in the following order:
//  1. configPath, when non-empty
//  2. .pagepdf.yaml in the current directory
//  3. pagepdf/config.yaml under the XDG config directories
//
// It returns an empty string when nothing is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if p, err := xdg.SearchConfigFile(filepath.Join("pagepdf", "config.yaml")); err == nil {
		return p
	}
	return ""
}
