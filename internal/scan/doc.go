// Package scan finds the largest files beneath a directory root.
//
// A fixed pool of workers expands directories from a shared queue, feeding
// discovered subdirectories back into it. Files at or above the minimum size
// are offered to a bounded top-K aggregator, and every visited file, directory
// and error is counted in a statistics collector. The scan is complete when
// the queue is empty and no worker is busy.
//
// Exclusion patterns and the depth limit prune the walk itself, so pruned
// entries are neither visited nor counted. Extension filters only narrow which
// visited files qualify for ranking.
//
// Symbolic links are never followed and never counted. Errors below the root
// (unreadable directories, unreadable metadata) are recorded in Stats.Errors
// and never abort the scan.
package scan
