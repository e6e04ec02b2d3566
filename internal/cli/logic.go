package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/idelchi/fatscan/internal/config"
	"github.com/idelchi/fatscan/internal/logging"
	"github.com/idelchi/fatscan/internal/scan"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func logic(ctx context.Context, cfg *config.Config, path string, stdout, stderr io.Writer) error {
	logger, closer := logging.New(cfg.Logging, stderr)
	if closer != nil {
		defer closer.Close() //nolint:errcheck
	}

	minSize, err := config.ParseSize(cfg.Scan.MinSize)
	if err != nil {
		return err
	}

	// Progress only goes to an interactive stderr that logs do not share.
	enableProgress := cfg.Output.Format == "table" &&
		(cfg.Logging.FilePath != "" || cfg.Logging.Level == "warn" || cfg.Logging.Level == "error") &&
		isTerminal(stderr)

	opt := scan.Options{
		Root:       path,
		MinSize:    minSize,
		TopN:       cfg.Scan.Top,
		Workers:    cfg.Scan.Workers,
		Excludes:   cfg.Scan.Excludes,
		Extensions: cfg.Scan.Extensions,
		Depth:      cfg.Scan.Depth,
		Logger:     logger,
	}

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(stderr, "\033[?25l")
		defer fmt.Fprint(stderr, "\033[?25h")

		opt.Progress = func(stats scan.Stats) {
			msg := fmt.Sprintf("Scanning… %d files, %d dirs, %s",
				stats.FilesScanned, stats.DirsScanned, humanize.IBytes(stats.BytesScanned))
			fmt.Fprintf(stderr, "\r\033[2K%s\r", msg)
		}
	}

	run := scan.Scan
	if cfg.Scan.Engine == "fastwalk" {
		run = scan.Walk
	}

	result, err := run(ctx, opt)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	if cwd, err := os.Getwd(); err == nil {
		relativize(result, cwd)
	}

	if cfg.Output.ReportFile != "" {
		if err := WriteReport(cfg.Output.ReportFile, result, time.Now()); err != nil {
			return fmt.Errorf("saving report: %w", err)
		}

		logger.Info("report saved", "path", cfg.Output.ReportFile)
	}

	switch cfg.Output.Format {
	case "json":
		return PrintJSON(result, stdout)
	case "paths":
		return PrintPaths(result, stdout)
	default:
		if err := PrintTable(result, stdout, cfg.Output.Verbose); err != nil {
			return err
		}

		if cfg.Output.ReportFile != "" {
			_, err := fmt.Fprintf(stdout, "\nReport saved: %s\n", cfg.Output.ReportFile)

			return err
		}

		return nil
	}
}

// relativize rewrites result paths relative to cwd when the scan root lies
// inside it, and leaves them absolute otherwise.
func relativize(result *scan.Result, cwd string) {
	relToRoot, err := filepath.Rel(cwd, result.Root)
	if err != nil || strings.HasPrefix(relToRoot, "..") {
		return
	}

	for i := range result.Files {
		if rel, err := filepath.Rel(cwd, result.Files[i].Path); err == nil {
			result.Files[i].Path = rel
		}
	}

	result.Root = relToRoot
}
