// Package config loads fatscan settings from defaults, an optional YAML file
// and FATSCAN_* environment variables.
package config

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/idelchi/fatscan/internal/logging"
)

// Engines lists the available traversal engines.
//
//nolint:gochecknoglobals // Config constant
var Engines = []string{"queue", "fastwalk"}

// DefaultExcludes prunes version control and dependency directories.
//
//nolint:gochecknoglobals // Config constant
var DefaultExcludes = []string{`(^|/)\.git$`, `(^|/)node_modules$`}

// Formats lists the available console output formats.
//
//nolint:gochecknoglobals // Config constant
var Formats = []string{"table", "json", "paths"}

// Config holds all application configuration.
type Config struct {
	Scan    ScanConfig     `yaml:"scan"`
	Output  OutputConfig   `yaml:"output"`
	Logging logging.Config `yaml:"logging"`
}

// ScanConfig holds scan settings.
//
// MinSize is a size such as "100MiB" or "1.5GB"; a bare number means MiB.
// Extensions are file suffixes to rank, where a '!' prefix excludes one.
// Depth limits how far below the root to descend (0 = unlimited).
type ScanConfig struct {
	MinSize    string   `yaml:"min_size"`
	Top        int      `yaml:"top"`
	Workers    int      `yaml:"workers"`
	Excludes   []string `yaml:"excludes"`
	Extensions []string `yaml:"extensions"`
	Depth      int      `yaml:"depth"`
	Engine     string   `yaml:"engine"`
}

// OutputConfig holds report settings.
type OutputConfig struct {
	Format     string `yaml:"format"`
	Verbose    bool   `yaml:"verbose"`
	ReportFile string `yaml:"report_file"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			MinSize:  "100",
			Top:      20,
			Workers:  runtime.NumCPU(),
			Excludes: slices.Clone(DefaultExcludes),
			Engine:   "queue",
		},
		Output: OutputConfig{
			Format: "table",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads config from the YAML file at path, if path is not empty, and
// overrides it with environment variables. A path that does not exist is an
// error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() error {
	if v := os.Getenv("FATSCAN_MIN_SIZE"); v != "" {
		c.Scan.MinSize = v
	}

	if v := os.Getenv("FATSCAN_TOP"); v != "" {
		top, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FATSCAN_TOP: %w", err)
		}

		c.Scan.Top = top
	}

	if v := os.Getenv("FATSCAN_WORKERS"); v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FATSCAN_WORKERS: %w", err)
		}

		c.Scan.Workers = workers
	}

	if v := os.Getenv("FATSCAN_EXCLUDE"); v != "" {
		c.Scan.Excludes = strings.Split(v, ",")
	}

	if v := os.Getenv("FATSCAN_EXT"); v != "" {
		c.Scan.Extensions = strings.Split(v, ",")
	}

	if v := os.Getenv("FATSCAN_DEPTH"); v != "" {
		depth, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FATSCAN_DEPTH: %w", err)
		}

		c.Scan.Depth = depth
	}

	if v := os.Getenv("FATSCAN_ENGINE"); v != "" {
		c.Scan.Engine = v
	}

	if v := os.Getenv("FATSCAN_FORMAT"); v != "" {
		c.Output.Format = v
	}

	if v := os.Getenv("FATSCAN_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv("FATSCAN_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}

	if v := os.Getenv("FATSCAN_LOG_FILE"); v != "" {
		c.Logging.FilePath = v
	}

	return nil
}

// Validate checks the final configuration, after flags have been applied.
func (c *Config) Validate() error {
	if _, err := ParseSize(c.Scan.MinSize); err != nil {
		return err
	}

	if c.Scan.Top < 0 {
		return fmt.Errorf("invalid top %d: cannot be negative", c.Scan.Top)
	}

	if c.Scan.Depth < 0 {
		return fmt.Errorf("invalid depth %d: cannot be negative", c.Scan.Depth)
	}

	if c.Scan.Workers < 0 {
		return fmt.Errorf("invalid workers %d: cannot be negative", c.Scan.Workers)
	}

	if !slices.Contains(Engines, c.Scan.Engine) {
		return fmt.Errorf("invalid engine %q: must be one of %v", c.Scan.Engine, Engines)
	}

	if !slices.Contains(Formats, c.Output.Format) {
		return fmt.Errorf("invalid output format %q: must be one of %v", c.Output.Format, Formats)
	}

	return c.Logging.Validate()
}

// ParseSize converts a size string to bytes. A bare number is a count of
// MiB; anything else is parsed by humanize, e.g. "1.5GB" or "512KiB".
func ParseSize(s string) (uint64, error) {
	s = strings.TrimSpace(s)

	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		if n > math.MaxUint64/humanize.MiByte {
			return 0, fmt.Errorf("invalid min-size %q: exceeds %s", s, humanize.IBytes(math.MaxUint64))
		}

		return n * humanize.MiByte, nil
	}

	size, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid min-size %q: %w", s, err)
	}

	return size, nil
}
