package scan

import (
	"sync/atomic"
	"time"
)

// Stats holds the counters of one scan.
type Stats struct {
	// FilesScanned is the number of regular files visited, qualifying or not.
	FilesScanned uint64 `json:"files_scanned"`
	// DirsScanned is the number of directories visited, including the root.
	DirsScanned uint64 `json:"dirs_scanned"`
	// BytesScanned is the cumulative size of all visited regular files.
	BytesScanned uint64 `json:"bytes_scanned"`
	// Errors is the number of unreadable directories and entries.
	Errors uint64 `json:"errors"`
	// MatchedFiles is the number of files that qualified for ranking,
	// including those that did not make the top N.
	MatchedFiles uint64 `json:"matched_files"`
	// MatchedBytes is the cumulative size of all qualifying files.
	MatchedBytes uint64 `json:"matched_bytes"`
	// Distribution buckets the qualifying files by size.
	Distribution Distribution `json:"distribution"`
}

// Size band bounds of a Distribution.
const (
	MediumFile = 100 << 20
	LargeFile  = 500 << 20
	HugeFile   = 1 << 30
)

// Distribution counts qualifying files per size band.
type Distribution struct {
	// Huge counts files of at least 1 GiB.
	Huge uint64 `json:"huge"`
	// Large counts files from 500 MiB up to 1 GiB.
	Large uint64 `json:"large"`
	// Medium counts files from 100 MiB up to 500 MiB.
	Medium uint64 `json:"medium"`
}

// State is the lifecycle state of a scan.
type State int32

const (
	// StateIdle is a scan that has not been seeded yet.
	StateIdle State = iota
	// StateRunning is a scan whose queue has been seeded.
	StateRunning
	// StateCompleted is a scan whose queue drained with no active worker.
	StateCompleted
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return "idle"
	}
}

// Result is the outcome of a completed scan.
type Result struct {
	// Root is the scanned directory.
	Root string `json:"root"`
	// MinSize is the size threshold in bytes.
	MinSize uint64 `json:"min_size"`
	// TopN is the number of top results tracked.
	TopN int `json:"top_n"`
	// Files contains the largest qualifying files, largest first.
	Files []FileRecord `json:"files"`
	// Stats holds the scan counters.
	Stats Stats `json:"stats"`
	// Elapsed is the total time taken by the scan.
	Elapsed time.Duration `json:"elapsed"`
	// State is the final lifecycle state.
	State State `json:"-"`
}

// Collector accumulates scan statistics from concurrent workers.
type Collector struct {
	files  atomic.Uint64
	dirs   atomic.Uint64
	bytes  atomic.Uint64
	errors atomic.Uint64

	matched      atomic.Uint64
	matchedBytes atomic.Uint64
	huge         atomic.Uint64
	large        atomic.Uint64
	medium       atomic.Uint64
}

// AddFile records a visited regular file.
func (c *Collector) AddFile(size uint64) {
	c.files.Add(1)
	c.bytes.Add(size)
}

// AddMatch records a file that qualified for ranking.
func (c *Collector) AddMatch(size uint64) {
	c.matched.Add(1)
	c.matchedBytes.Add(size)

	switch {
	case size >= HugeFile:
		c.huge.Add(1)
	case size >= LargeFile:
		c.large.Add(1)
	case size >= MediumFile:
		c.medium.Add(1)
	}
}

// AddDir records a visited directory.
func (c *Collector) AddDir() {
	c.dirs.Add(1)
}

// AddError records an unreadable directory or entry.
func (c *Collector) AddError() {
	c.errors.Add(1)
}

// Snapshot returns the current counters. Counters read while workers are
// running are individually accurate but not mutually consistent; after the
// scan completes the snapshot is exact.
func (c *Collector) Snapshot() Stats {
	return Stats{
		FilesScanned: c.files.Load(),
		DirsScanned:  c.dirs.Load(),
		BytesScanned: c.bytes.Load(),
		Errors:       c.errors.Load(),
		MatchedFiles: c.matched.Load(),
		MatchedBytes: c.matchedBytes.Load(),
		Distribution: Distribution{
			Huge:   c.huge.Load(),
			Large:  c.large.Load(),
			Medium: c.medium.Load(),
		},
	}
}
