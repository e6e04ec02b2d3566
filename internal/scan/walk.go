package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/charlievieth/fastwalk"
)

// errHostOnly is returned by Walk when given a non-host enumerator.
var errHostOnly = errors.New("fastwalk engine only scans the host filesystem")

// Walk performs the same scan as Scan, delegating traversal to fastwalk's
// parallel walker instead of the built-in work queue. Filtering, ranking,
// counting and the symlink policy are shared with Scan, so both produce the
// same files and totals for the same tree.
//
// Walk only supports the host filesystem: opt.Enumerator must be nil or an
// OSEnumerator.
func Walk(ctx context.Context, opt Options) (*Result, error) {
	switch opt.Enumerator.(type) {
	case nil, OSEnumerator:
	default:
		return nil, errHostOnly
	}

	s, err := prepare(opt)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	root := s.opt.Root

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.log.Info("walk started",
		"root", root,
		"min_size", s.opt.MinSize,
		"top_n", s.opt.TopN,
		"workers", s.opt.Workers,
	)

	s.state.Store(int32(StateRunning))
	stopProgress := startProgressReporter(ctx, s.stats, s.opt.Progress, s.opt.ProgressInterval)
	defer stopProgress()

	// The root is counted here whether or not fastwalk reports it.
	s.stats.AddDir()

	conf := &fastwalk.Config{
		Follow:     false, // Don't follow symlinks
		NumWorkers: s.opt.Workers,
	}

	//nolint:varnamelen // d is standard for DirEntry
	walkErr := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.stats.AddError()
			s.log.Debug("error accessing path", "path", path, "error", err)

			return nil // Counted, keep walking
		}

		// Check cancellation periodically
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if filepath.Clean(path) == root {
			return nil
		}

		if depth := depthOf(path, root); beyondDepth(depth, s.opt.Depth) {
			if d.IsDir() {
				s.log.Debug("skipping directory beyond depth", "path", path, "depth", s.opt.Depth)

				return filepath.SkipDir
			}

			return nil
		}

		if re := excludedBy(path, s.excludes); re != nil {
			s.log.Debug("excluding path", "path", path, "pattern", re.String())

			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		switch kindOf(d.Type()) {
		case KindDir:
			s.stats.AddDir()
		case KindFile:
			entry := DirEntry{Name: d.Name(), Path: path, Kind: KindFile}

			info, infoErr := d.Info()
			if infoErr != nil {
				entry.Err = &MetadataError{Path: path, Err: infoErr}
			} else {
				entry.Size = sizeOf(info)
			}

			s.addFile(entry)
		case KindSymlink, KindOther:
		}

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking %q: %w", root, walkErr)
	}

	s.state.Store(int32(StateCompleted))

	result := &Result{
		Root:    root,
		MinSize: s.opt.MinSize,
		TopN:    s.opt.TopN,
		Files:   s.top.Snapshot(),
		Stats:   s.stats.Snapshot(),
		Elapsed: time.Since(start),
		State:   State(s.state.Load()),
	}

	s.log.Info("walk completed",
		"files", result.Stats.FilesScanned,
		"dirs", result.Stats.DirsScanned,
		"bytes", result.Stats.BytesScanned,
		"errors", result.Stats.Errors,
		"elapsed", result.Elapsed,
	)

	return result, nil
}
