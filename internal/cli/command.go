// Package cli implements the fatscan command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/idelchi/fatscan/internal/config"
	"github.com/idelchi/fatscan/internal/integration"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// flags holds raw flag values before they are merged into a config.Config.
type flags struct {
	configPath  string
	minSize     string
	top         int
	workers     int
	excludes    []string
	extensions  []string
	depth       int
	engine      string
	format      string
	reportFile  string
	verbose     bool
	logLevel    string
	logFormat   string
	logFile     string
	integration bool
}

// Execute runs the CLI with the process arguments. An interrupt cancels a
// running scan.
func (c CLI) Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return c.Command(os.Stdout, os.Stderr).ExecuteContext(ctx)
}

// Command builds the root command writing reports to stdout and progress
// and logs to stderr.
func (c CLI) Command(stdout, stderr io.Writer) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "fatscan [flags] [path]",
		Short: "Hunt down the fat files hogging your disk space",
		Long: heredoc.Doc(`
			fatscan walks a directory tree with a pool of concurrent workers and
			reports the largest files it finds.

			Only regular files at or above --size are ranked; every regular file
			is counted in the statistics. Symbolic links are never followed or
			counted. Unreadable directories and files are skipped and reported
			in the error count, so a non-zero count means the ranking may be
			incomplete.

			.git and node_modules directories are excluded by default; pass
			--exclude= to scan everything.

			Settings are read from --config (YAML), then FATSCAN_* environment
			variables, then flags.

			The '--init' flag outputs a zsh widget that pipes '--format paths'
			into 'fzf'.
		`),
		Example: heredoc.Doc(`
			fatscan
			fatscan /home
			fatscan ./downloads -s 500
			fatscan -v -o result.log
			fatscan --size 1GiB --top 50 --format json /var
			fatscan -x .iso,.mkv -d 2 ~/Downloads
		`),
		Version:       c.version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.integration {
				rendered, err := integration.Render()
				if err != nil {
					return fmt.Errorf("rendering integration script: %w", err)
				}

				_, err = fmt.Fprintln(stdout, rendered)

				return err
			}

			cfg, err := resolve(cmd.Flags(), f)
			if err != nil {
				return err
			}

			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			return logic(cmd.Context(), cfg, path, stdout, stderr)
		},
	}

	fs := cmd.Flags()
	fs.SortFlags = false

	fs.StringVarP(&f.minSize, "size", "s", "100", "Minimum file size, e.g. 500 (MiB), 1GiB, 250MB")
	fs.IntVarP(&f.top, "top", "t", 20, "Number of top files to display")
	fs.IntVarP(&f.workers, "workers", "w", 0, "Number of concurrent workers (0=number of CPUs)")
	fs.StringSliceVarP(&f.excludes, "exclude", "e", config.DefaultExcludes, "Regex patterns of paths to exclude")
	fs.StringSliceVarP(
		&f.extensions,
		"ext",
		"x",
		[]string{},
		"File suffixes to rank (e.g., .iso,.mkv). Use '!' prefix to exclude (e.g., !.part)",
	)
	fs.IntVarP(&f.depth, "depth", "d", 0, "Maximum traversal depth (0=unlimited)")
	fs.StringVar(&f.engine, "engine", "queue", "Traversal engine: queue or fastwalk")
	fs.StringVarP(&f.format, "format", "f", "table", "Output format: table, json or paths")
	fs.StringVarP(&f.reportFile, "output", "o", "", "Save a full report to this file")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Show detailed statistics")
	fs.StringVarP(&f.configPath, "config", "c", "", "Path to a YAML config file")
	fs.StringVar(&f.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	fs.StringVar(&f.logFormat, "log-format", "text", "Log format: text or json")
	fs.StringVar(&f.logFile, "log-file", "", "Write logs to this file instead of stderr")
	fs.BoolVarP(&f.integration, "init", "i", false, "Output init script for shell usage")

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	return cmd
}

// resolve loads the config file and environment, then applies every flag the
// user set explicitly.
func resolve(fs *pflag.FlagSet, f flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	if fs.Changed("size") {
		cfg.Scan.MinSize = f.minSize
	}

	if fs.Changed("top") {
		cfg.Scan.Top = f.top
	}

	if fs.Changed("workers") {
		cfg.Scan.Workers = f.workers
	}

	if fs.Changed("exclude") {
		cfg.Scan.Excludes = f.excludes
	}

	if fs.Changed("ext") {
		cfg.Scan.Extensions = f.extensions
	}

	if fs.Changed("depth") {
		cfg.Scan.Depth = f.depth
	}

	if fs.Changed("engine") {
		cfg.Scan.Engine = f.engine
	}

	if fs.Changed("format") {
		cfg.Output.Format = f.format
	}

	if fs.Changed("output") {
		cfg.Output.ReportFile = f.reportFile
	}

	if fs.Changed("verbose") {
		cfg.Output.Verbose = f.verbose
	}

	if fs.Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}

	if fs.Changed("log-format") {
		cfg.Logging.Format = f.logFormat
	}

	if fs.Changed("log-file") {
		cfg.Logging.FilePath = f.logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
