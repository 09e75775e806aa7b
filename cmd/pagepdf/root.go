package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	pagepdf "github.com/porticus-lab/go-page-pdf"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// NewRootCmd creates the root command, which runs a full snapshot.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pagepdf [url]",
		Short: "Snapshot one region of a web page to HTML and PDF",
		Long: `pagepdf fetches a web page, keeps the first element matching a CSS
selector, replaces its images with embedded data URLs and prints the result
to PDF with headless Chrome.

The page width of the PDF follows the rendered content; the page height is
that of a standard paper size, so long content spans several pages.

Examples:
  # Snapshot div.page of a story
  pagepdf https://example.com/story

  # Capture another element
  pagepdf --selector "article.body" https://example.com/story

  # Shorthand for div.<class>
  pagepdf --class story https://example.com/story

  # Use an explicit browser binary
  pagepdf --browser /usr/bin/chromium https://example.com/story

Configuration file (.pagepdf.yaml) example:
  url: https://example.com/story
  selector: div.page
  margin_px: 20
  concurrency: 8
  output_html: ./storybody.html
  output_pdf: ./storybody.pdf`,
		Args:          cobra.MaximumNArgs(1),
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSnapshotCmd,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .pagepdf.yaml or $XDG_CONFIG_HOME/pagepdf/config.yaml)")
	cmd.Flags().StringP("selector", "s", pagepdf.DefaultSelector, "CSS selector of the captured region")
	cmd.Flags().String("class", "", "Capture div.<class> (overrides --selector)")
	cmd.Flags().String("output-html", pagepdf.DefaultOutputHTMLPath, "Snapshot HTML output path")
	cmd.Flags().StringP("output-pdf", "o", pagepdf.DefaultOutputPDFPath, "PDF output path")
	cmd.Flags().IntP("concurrency", "j", pagepdf.DefaultConcurrency, "Maximum simultaneous image downloads")
	cmd.Flags().Bool("sanitize", false, "Strip scripts and active content from the snapshot")
	addRenderFlags(cmd.Flags())

	cmd.AddCommand(NewRenderCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// addRenderFlags registers the flags shared by every command that starts
// a browser.
func addRenderFlags(fs *pflag.FlagSet) {
	fs.Float64("margin", pagepdf.DefaultMarginPx, "Page margin on every side, in CSS pixels")
	fs.String("paper", pagepdf.DefaultPaper, "Paper size fixing the page height (A3, A4, A5, Letter, Legal, Tabloid)")
	fs.String("browser", "", "Chrome/Chromium executable path")
	fs.DurationP("timeout", "t", pagepdf.DefaultTimeout, "Timeout for each network request and for the PDF conversion")
	fs.Bool("no-sandbox", false, "Disable the Chrome sandbox (required when running as root)")
	fs.Bool("auto-download", false, "Download a Chromium build when no browser is configured")
}

// Execute runs the root command. Any error is reported on stderr and the
// process exits with status 1.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// runSnapshotCmd executes the full pipeline.
func runSnapshotCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)
	setMaxProcs(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := pagepdf.Run(ctx, cfg, pagepdf.WithLogger(logger))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s and %s (%d images, %d pages)\n",
		report.HTMLPath, report.PDFPath, report.Images, report.Pages)
	return nil
}

// buildConfig layers configuration sources: defaults, then the config
// file, then the positional URL, then flags explicitly set by the user.
func buildConfig(cmd *cobra.Command, args []string) (pagepdf.Config, error) {
	flags := cmd.Flags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return pagepdf.Config{}, err
	}

	cfg := pagepdf.DefaultConfig()
	if found := pagepdf.FindConfigFile(configPath); found != "" {
		cfg, err = pagepdf.LoadConfigFile(found)
		if err != nil {
			return pagepdf.Config{}, fmt.Errorf("failed to load config file %s: %w", found, err)
		}
	} else if configPath != "" {
		return pagepdf.Config{}, fmt.Errorf("%w: %s", pagepdf.ErrConfigNotFound, configPath)
	}

	if len(args) == 1 {
		cfg.URL = args[0]
	}

	if flags.Changed("selector") {
		if cfg.Selector, err = flags.GetString("selector"); err != nil {
			return pagepdf.Config{}, err
		}
	}
	if flags.Changed("class") {
		class, err := flags.GetString("class")
		if err != nil {
			return pagepdf.Config{}, err
		}
		cfg.Selector = "div." + class
	}
	if flags.Changed("output-html") {
		if cfg.OutputHTMLPath, err = flags.GetString("output-html"); err != nil {
			return pagepdf.Config{}, err
		}
	}
	if flags.Changed("output-pdf") {
		if cfg.OutputPDFPath, err = flags.GetString("output-pdf"); err != nil {
			return pagepdf.Config{}, err
		}
	}
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return pagepdf.Config{}, err
		}
	}
	if flags.Changed("sanitize") {
		if cfg.Sanitize, err = flags.GetBool("sanitize"); err != nil {
			return pagepdf.Config{}, err
		}
	}
	if err := applyRenderFlags(flags, &cfg); err != nil {
		return pagepdf.Config{}, err
	}
	return cfg, nil
}

// applyRenderFlags copies the browser flags the user set into cfg.
func applyRenderFlags(flags *pflag.FlagSet, cfg *pagepdf.Config) error {
	var err error
	if flags.Changed("margin") {
		if cfg.MarginPx, err = flags.GetFloat64("margin"); err != nil {
			return err
		}
	}
	if flags.Changed("paper") {
		if cfg.Paper, err = flags.GetString("paper"); err != nil {
			return err
		}
	}
	if flags.Changed("browser") {
		if cfg.BrowserPath, err = flags.GetString("browser"); err != nil {
			return err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("no-sandbox") {
		if cfg.NoSandbox, err = flags.GetBool("no-sandbox"); err != nil {
			return err
		}
	}
	if flags.Changed("auto-download") {
		if cfg.AutoDownload, err = flags.GetBool("auto-download"); err != nil {
			return err
		}
	}
	return nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates a structured logger based on verbosity setting.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	return slog.New(handler)
}

// setMaxProcs matches GOMAXPROCS to the container CPU quota.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply.
func setMaxProcs(logger *slog.Logger) {
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Debug(fmt.Sprintf(format, args...))
	}))
}
