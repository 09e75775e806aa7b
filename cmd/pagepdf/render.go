package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	pagepdf "github.com/porticus-lab/go-page-pdf"
	"github.com/spf13/cobra"
)

// NewRenderCmd creates the render command, which prints an existing HTML
// file without fetching anything.
func NewRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <input.html> <output.pdf>",
		Short: "Print a local HTML file to PDF",
		Long: `Render prints a local HTML file, typically a snapshot written by an
earlier run, to PDF using the same page geometry as a full run.

Examples:
  pagepdf render storybody.html storybody.pdf
  pagepdf render --margin 10 --paper Letter storybody.html out.pdf`,
		Args: cobra.ExactArgs(2),
		RunE: runRenderCmd,
	}
	addRenderFlags(cmd.Flags())
	return cmd
}

func runRenderCmd(cmd *cobra.Command, args []string) error {
	cfg := pagepdf.DefaultConfig()
	if err := applyRenderFlags(cmd.Flags(), &cfg); err != nil {
		return err
	}
	opts, err := cfg.ConverterOptions()
	if err != nil {
		return err
	}

	logger := setupLogger(getVerboseFlag(cmd))
	setMaxProcs(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conv, err := pagepdf.NewConverter(opts...)
	if err != nil {
		return err
	}
	defer conv.Close()

	logger.Debug("rendering", "input", args[0], "output", args[1])
	res, err := conv.ConvertFile(ctx, args[0])
	if err != nil {
		return err
	}
	if err := res.WriteToFile(args[1], 0o644); err != nil {
		return fmt.Errorf("%w: %w", pagepdf.ErrFileSystem, err)
	}

	info, err := pagepdf.InspectPDF(res.Bytes())
	if err != nil {
		logger.Warn("could not inspect PDF", "error", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(args[1], res.PageWidth(), info, err))
	return nil
}

// renderSummary describes a written PDF. The page count is left out when
// the document could not be inspected.
func renderSummary(path string, pageWidth float64, info pagepdf.PDFInfo, inspectErr error) string {
	if inspectErr != nil {
		return fmt.Sprintf("wrote %s (%.0fpx wide)", path, pageWidth)
	}
	return fmt.Sprintf("wrote %s (%d pages, %.0fpx wide)", path, info.PageCount(), pageWidth)
}
