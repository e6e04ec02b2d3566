package cli

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/fatscan/internal/scan"
)

// bucket is a labelled count of qualifying files within a size band.
type bucket struct {
	label string
	count uint64
}

// distribution labels the size bands counted over every qualifying file.
func distribution(d scan.Distribution) []bucket {
	return []bucket{
		{label: ">= 1 GiB", count: d.Huge},
		{label: "500 MiB - 1 GiB", count: d.Large},
		{label: "100 MiB - 500 MiB", count: d.Medium},
	}
}

// WriteReport saves a plain-text scan report to path.
func WriteReport(path string, result *scan.Result, now time.Time) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close() //nolint:errcheck

	w := bufio.NewWriter(file)

	stats := result.Stats

	fmt.Fprintln(w, "FATSCAN - Scan Report")
	fmt.Fprintln(w, "=====================")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Timestamp       : %s\n", now.Format(time.DateTime))
	fmt.Fprintf(w, "Scan Target     : %s\n", result.Root)
	fmt.Fprintf(w, "Min Size        : %s\n", humanize.IBytes(result.MinSize))
	fmt.Fprintf(w, "Files Scanned   : %d\n", stats.FilesScanned)
	fmt.Fprintf(w, "Dirs Scanned    : %d\n", stats.DirsScanned)
	fmt.Fprintf(w, "Bytes Scanned   : %s\n", humanize.IBytes(stats.BytesScanned))
	fmt.Fprintf(w, "Errors          : %d\n", stats.Errors)
	fmt.Fprintf(w, "Files Found     : %d\n", stats.MatchedFiles)
	fmt.Fprintf(w, "Elapsed Time    : %.2f sec\n", result.Elapsed.Seconds())
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total Size      : %s\n", humanize.IBytes(stats.MatchedBytes))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Size Distribution")
	fmt.Fprintln(w, "-----------------")

	for _, b := range distribution(stats.Distribution) {
		fmt.Fprintf(w, "%-17s : %d files\n", b.label, b.count)
	}

	fmt.Fprintln(w)

	fmt.Fprintf(w, "Top %d of %d Files (sorted by size)\n", len(result.Files), stats.MatchedFiles)
	fmt.Fprintln(w, "----------------------------------")

	for i, f := range result.Files {
		fmt.Fprintf(w, "%5d. %12s  %s\n", i+1, humanize.IBytes(f.Size), f.Path)
	}

	if err := w.Flush(); err != nil {
		return err
	}

	return file.Close()
}
