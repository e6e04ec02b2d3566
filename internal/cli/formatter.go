package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/fatscan/internal/scan"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// PrintJSON outputs the result in JSON format.
func PrintJSON(result *scan.Result, writer io.Writer) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintPaths outputs one file path per line, largest first.
func PrintPaths(result *scan.Result, writer io.Writer) error {
	for _, f := range result.Files {
		if _, err := fmt.Fprintln(writer, f.Path); err != nil {
			return err
		}
	}

	return nil
}

// PrintTable outputs the result in human-readable table format.
//
//nolint:forbidigo // This function prints output to the console.
func PrintTable(result *scan.Result, writer io.Writer, verbose bool) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	stats := result.Stats

	fmt.Fprintf(w, "\nTarget:\t%s\n", result.Root)
	fmt.Fprintf(w, "Min size:\t%s\n", humanize.IBytes(result.MinSize))

	if verbose {
		fmt.Fprintln(w, "\nStatistics:\t\t")
		fmt.Fprintf(w, "  Dirs scanned:\t%d\n", stats.DirsScanned)
		fmt.Fprintf(w, "  Errors:\t%d\n", stats.Errors)
		fmt.Fprintf(w, "  Files matched:\t%d\n", stats.MatchedFiles)
		fmt.Fprintf(w, "  Matched size:\t%s\n", humanize.IBytes(stats.MatchedBytes))

		for _, b := range distribution(stats.Distribution) {
			fmt.Fprintf(w, "  %s:\t%d files\n", b.label, b.count)
		}
	}

	if len(result.Files) == 0 {
		fmt.Fprintln(w, "\nNo files found matching criteria.\t\t")
	} else {
		fmt.Fprintf(w, "\nTop %d files:\t\t\n", len(result.Files))
	}

	for i, f := range result.Files {
		pct := 0.0
		if stats.BytesScanned > 0 {
			pct = 100.0 * float64(f.Size) / float64(stats.BytesScanned)
		}

		fmt.Fprintf(w, "  %d) '%s'\t%s (%.1f%%)\n", i+1, f.Path, humanize.IBytes(f.Size), pct)
	}

	// Stats summary
	fmt.Fprintln(w, "\nStats:\t\t")
	fmt.Fprintf(w, "Files scanned:\t%d\n", stats.FilesScanned)
	fmt.Fprintf(w, "Total size:\t%s (%d bytes)\n", humanize.IBytes(stats.BytesScanned), stats.BytesScanned)

	if stats.Errors > 0 {
		fmt.Fprintf(w, "Errors:\t%d (results may be incomplete)\n", stats.Errors)
	}

	fmt.Fprintf(w, "\nElapsed:\t%v\n", result.Elapsed)

	return w.Flush()
}
