package scan

import (
	"slices"
	"strings"
	"sync"
)

// FileRecord is a qualifying file and its size.
type FileRecord struct {
	// Path is the file path.
	Path string `json:"path"`
	// Size is the size in bytes.
	Size uint64 `json:"size"`
}

// ranksBefore orders records by descending size, then ascending path.
func ranksBefore(a, b FileRecord) bool {
	if a.Size != b.Size {
		return a.Size > b.Size
	}

	return a.Path < b.Path
}

// compareRecords is ranksBefore as a three-way comparison.
func compareRecords(a, b FileRecord) int {
	switch {
	case a.Size > b.Size:
		return -1
	case a.Size < b.Size:
		return 1
	default:
		return strings.Compare(a.Path, b.Path)
	}
}

// TopK keeps the n highest ranked records submitted to it.
// Submit is safe for concurrent use.
type TopK struct {
	mu    sync.Mutex // Protects files
	n     int
	files []FileRecord // sorted, best first
}

// NewTopK creates an aggregator holding at most n records.
// A non-positive n keeps nothing.
func NewTopK(n int) *TopK {
	n = max(n, 0)

	return &TopK{
		n:     n,
		files: make([]FileRecord, 0, min(n, 1024)),
	}
}

// Submit offers a record. When the set is full the record replaces the
// lowest ranked member only if it ranks before it.
func (t *TopK) Submit(rec FileRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.n == 0 {
		return
	}

	if len(t.files) == t.n {
		if !ranksBefore(rec, t.files[len(t.files)-1]) {
			return
		}

		t.files = t.files[:len(t.files)-1]
	}

	i, _ := slices.BinarySearchFunc(t.files, rec, compareRecords)
	t.files = slices.Insert(t.files, i, rec)
}

// Len returns the current number of records.
func (t *TopK) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.files)
}

// Snapshot returns a copy of the records, best first.
// Call it once all submissions have completed.
func (t *TopK) Snapshot() []FileRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	return slices.Clone(t.files)
}
