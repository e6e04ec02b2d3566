package scan

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Options configures a scan.
type Options struct {
	// Root is the directory to scan.
	Root string
	// MinSize is the minimum size in bytes of a ranked file.
	MinSize uint64
	// TopN is the number of files to keep. Zero keeps none.
	TopN int
	// Workers is the size of the worker pool (0 = runtime.NumCPU()).
	Workers int
	// Excludes contains regex patterns, matched against slash paths,
	// for directories and files to leave out entirely.
	Excludes []string
	// Extensions are file suffixes that qualify for ranking (empty = all).
	// A '!' prefix excludes a suffix instead. Filtered files are still counted.
	Extensions []string
	// Depth is the maximum depth below Root to visit (0 = unlimited).
	// Entries of Root are at depth 1.
	Depth int
	// Enumerator lists directories (nil = OSEnumerator).
	Enumerator Enumerator
	// Logger receives debug and info events (nil = discard).
	Logger *slog.Logger
	// Progress, if set, is called with the running counters every ProgressInterval.
	Progress func(Stats)
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
}

// scanner holds the state shared by all workers of one scan.
type scanner struct {
	opt      Options
	log      *slog.Logger
	enum     Enumerator
	excludes []*regexp.Regexp
	exts     extFilter
	queue    *queue
	top      *TopK
	stats    *Collector
	state    atomic.Int32
}

// prepare validates opt and builds the shared scan state.
// It fails with ErrRootInvalid when the root is missing or not a directory.
func prepare(opt Options) (*scanner, error) {
	if opt.Root == "" {
		opt.Root = "."
	}

	if opt.Workers <= 0 {
		opt.Workers = runtime.NumCPU()
	}

	log := opt.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	enum := opt.Enumerator
	if enum == nil {
		enum = OSEnumerator{}
	}

	if _, host := enum.(OSEnumerator); host {
		// Normalize to native format to handle both C:/Path and C:\Path inputs
		absRoot, err := filepath.Abs(filepath.Clean(opt.Root))
		if err != nil {
			return nil, rootError(opt.Root, err)
		}

		opt.Root = absRoot
	}

	if info, err := enum.Stat(opt.Root); err != nil {
		return nil, rootError(opt.Root, err)
	} else if !info.IsDir() {
		return nil, rootError(opt.Root, nil)
	}

	excludes, err := compileExcludes(opt.Excludes)
	if err != nil {
		return nil, err
	}

	return &scanner{
		opt:      opt,
		log:      log,
		enum:     enum,
		excludes: excludes,
		exts:     parseExtensions(opt.Extensions),
		queue:    newQueue(),
		top:      NewTopK(opt.TopN),
		stats:    &Collector{},
	}, nil
}

// Scan walks the tree below opt.Root with a pool of opt.Workers goroutines
// and returns the opt.TopN largest files of at least opt.MinSize bytes.
//
// Only ErrRootInvalid, an invalid exclusion pattern or cancellation of ctx
// make Scan fail. Unreadable directories and entries are counted in
// Result.Stats.Errors and the scan carries on with the rest of the tree.
func Scan(ctx context.Context, opt Options) (*Result, error) {
	s, err := prepare(opt)
	if err != nil {
		return nil, err
	}

	return s.run(ctx)
}

func (s *scanner) run(ctx context.Context) (*Result, error) {
	start := time.Now()

	// Create child context to ensure progress reporter cleanup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := context.AfterFunc(ctx, s.queue.close)
	defer stop()

	s.log.Info("scan started",
		"root", s.opt.Root,
		"min_size", s.opt.MinSize,
		"top_n", s.opt.TopN,
		"workers", s.opt.Workers,
	)

	s.queue.push(s.opt.Root)
	s.state.Store(int32(StateRunning))

	stopProgress := startProgressReporter(ctx, s.stats, s.opt.Progress, s.opt.ProgressInterval)
	defer stopProgress()

	var wg sync.WaitGroup

	for range s.opt.Workers {
		wg.Go(func() { s.work(ctx) })
	}

	wg.Wait()

	// Directories left behind mean the drain was cut short. A cancellation
	// that arrives after the last directory was expanded does not.
	if left := s.queue.pending(); left > 0 {
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}

		s.log.Info("scan canceled", "root", s.opt.Root, "pending", left, "error", err)

		return nil, fmt.Errorf("scanning %q: %w", s.opt.Root, err)
	}

	s.state.Store(int32(StateCompleted))

	result := &Result{
		Root:    s.opt.Root,
		MinSize: s.opt.MinSize,
		TopN:    s.opt.TopN,
		Files:   s.top.Snapshot(),
		Stats:   s.stats.Snapshot(),
		Elapsed: time.Since(start),
		State:   State(s.state.Load()),
	}

	s.log.Info("scan completed",
		"files", result.Stats.FilesScanned,
		"dirs", result.Stats.DirsScanned,
		"bytes", result.Stats.BytesScanned,
		"errors", result.Stats.Errors,
		"elapsed", result.Elapsed,
	)

	return result, nil
}

// work expands directories until the queue reports completion or ctx is done.
func (s *scanner) work(ctx context.Context) {
	for {
		dir, ok := s.queue.pop()
		if !ok {
			return
		}

		if ctx.Err() != nil {
			s.queue.abort(dir)

			return
		}

		s.queue.push(s.expand(dir)...)
		s.queue.done()
	}
}

// expand lists dir, accounts for its files and returns its subdirectories.
func (s *scanner) expand(dir string) []string {
	s.stats.AddDir()

	entries, err := s.enum.List(dir)
	if err != nil {
		s.stats.AddError()
		s.log.Debug("skipping unreadable directory", "path", dir, "error", err)
	}

	depth := depthOf(dir, s.opt.Root) + 1
	if beyondDepth(depth, s.opt.Depth) {
		s.log.Debug("skipping entries beyond depth", "path", dir, "depth", s.opt.Depth)

		return nil
	}

	var subdirs []string

	for _, entry := range entries {
		if re := excludedBy(entry.Path, s.excludes); re != nil {
			s.log.Debug("excluding path", "path", entry.Path, "pattern", re.String())

			continue
		}

		switch entry.Kind {
		case KindDir:
			subdirs = append(subdirs, entry.Path)
		case KindFile:
			s.addFile(entry)
		case KindSymlink, KindOther:
			// Links are not followed, see package doc.
		}
	}

	return subdirs
}

// addFile counts a file entry and offers it to the aggregator. A file whose
// size is unknown is counted with an error and never ranked.
func (s *scanner) addFile(entry DirEntry) {
	if entry.Err != nil {
		s.stats.AddFile(0)
		s.stats.AddError()
		s.log.Debug("skipping file size", "path", entry.Path, "error", entry.Err)

		return
	}

	s.stats.AddFile(entry.Size)

	if !Passes(entry.Size, s.opt.MinSize) {
		return
	}

	if !s.exts.allows(entry.Path) {
		s.log.Debug("excluding file (extension filter)", "path", entry.Path)

		return
	}

	s.stats.AddMatch(entry.Size)
	s.top.Submit(FileRecord{Path: entry.Path, Size: entry.Size})
}
