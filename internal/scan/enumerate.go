package scan

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
)

// Kind classifies a directory entry.
type Kind int

const (
	// KindFile is a regular file.
	KindFile Kind = iota
	// KindDir is a directory.
	KindDir
	// KindSymlink is a symbolic link. Links are never followed or counted.
	KindSymlink
	// KindOther is anything else: devices, sockets, pipes.
	KindOther
)

// DirEntry is one entry of a directory listing.
type DirEntry struct {
	// Name is the base name of the entry.
	Name string
	// Path is the full path of the entry, joined onto the listed directory.
	Path string
	// Kind classifies the entry.
	Kind Kind
	// Size is the size in bytes, set for files only.
	Size uint64
	// Err is a *MetadataError when the size of a file could not be read.
	Err error
}

// Enumerator lists the immediate entries of a directory.
//
// List returns an *AccessError when the directory cannot be read. Entries read
// before the failure, if any, are returned alongside it.
type Enumerator interface {
	Stat(path string) (fs.FileInfo, error)
	List(dir string) ([]DirEntry, error)
}

// kindOf maps a file mode onto an entry kind. Symlinks are checked first so
// that a link to a directory is never mistaken for one.
func kindOf(mode fs.FileMode) Kind {
	switch {
	case mode&fs.ModeSymlink != 0:
		return KindSymlink
	case mode.IsDir():
		return KindDir
	case mode.IsRegular():
		return KindFile
	default:
		return KindOther
	}
}

// sizeOf converts a reported size, clamping negative values to zero.
func sizeOf(info fs.FileInfo) uint64 {
	if info.Size() < 0 {
		return 0
	}

	return uint64(info.Size())
}

// OSEnumerator lists directories of the host filesystem.
type OSEnumerator struct{}

// Stat follows the root symlink, if any, so that a root given as a link to a
// directory is still scanned. Links below the root are not followed.
func (OSEnumerator) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// List reads dir and looks up the size of every regular file.
func (OSEnumerator) List(dir string) ([]DirEntry, error) {
	entries, err := os.ReadDir(dir)

	out := make([]DirEntry, 0, len(entries))

	//nolint:varnamelen // d is standard for DirEntry
	for _, d := range entries {
		entry := DirEntry{
			Name: d.Name(),
			Path: filepath.Join(dir, d.Name()),
			Kind: kindOf(d.Type()),
		}

		if entry.Kind == KindFile {
			info, infoErr := d.Info()
			if infoErr != nil {
				entry.Err = &MetadataError{Path: entry.Path, Err: infoErr}
			} else {
				entry.Size = sizeOf(info)
			}
		}

		out = append(out, entry)
	}

	if err != nil {
		return out, &AccessError{Path: dir, Err: err}
	}

	return out, nil
}

// BillyEnumerator lists directories of a go-billy filesystem.
type BillyEnumerator struct {
	FS billy.Filesystem
}

// NewBillyEnumerator wraps fsys.
func NewBillyEnumerator(fsys billy.Filesystem) BillyEnumerator {
	return BillyEnumerator{FS: fsys}
}

// Stat implements Enumerator.
func (b BillyEnumerator) Stat(path string) (fs.FileInfo, error) {
	return b.FS.Stat(path)
}

// List implements Enumerator. Billy listings carry sizes already, so no
// metadata errors can occur per entry.
func (b BillyEnumerator) List(dir string) ([]DirEntry, error) {
	infos, err := b.FS.ReadDir(dir)
	if err != nil {
		return nil, &AccessError{Path: dir, Err: err}
	}

	out := make([]DirEntry, 0, len(infos))

	for _, info := range infos {
		entry := DirEntry{
			Name: info.Name(),
			Path: b.FS.Join(dir, info.Name()),
			Kind: kindOf(info.Mode()),
		}

		if entry.Kind == KindFile {
			entry.Size = sizeOf(info)
		}

		out = append(out, entry)
	}

	return out, nil
}
