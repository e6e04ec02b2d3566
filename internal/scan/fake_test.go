package scan

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"time"
)

const mb = 1 << 20

var (
	errDenied   = errors.New("permission denied")
	errVanished = errors.New("no such file or directory")
)

// fakeInfo is a minimal fs.FileInfo.
type fakeInfo struct {
	name string
	dir  bool
}

func (f fakeInfo) Name() string       { return f.name }
func (f fakeInfo) Size() int64        { return 0 }
func (f fakeInfo) ModTime() time.Time { return time.Time{} }
func (f fakeInfo) IsDir() bool        { return f.dir }
func (f fakeInfo) Sys() any           { return nil }

func (f fakeInfo) Mode() fs.FileMode {
	if f.dir {
		return fs.ModeDir | 0o755
	}

	return 0o644
}

// fakeTree is an in-memory Enumerator with slash paths and error injection.
type fakeTree struct {
	files   map[string]uint64
	dirs    map[string]bool
	links   map[string]bool
	denied  map[string]bool // directories that fail to list
	badMeta map[string]bool // files whose size cannot be read
}

func newFakeTree(files map[string]uint64) *fakeTree {
	t := &fakeTree{
		files:   files,
		dirs:    map[string]bool{},
		links:   map[string]bool{},
		denied:  map[string]bool{},
		badMeta: map[string]bool{},
	}

	for p := range files {
		t.addParents(p)
	}

	return t
}

func (t *fakeTree) addParents(p string) {
	for dir := path.Dir(p); dir != "/" && dir != "."; dir = path.Dir(dir) {
		t.dirs[dir] = true
	}
}

func (t *fakeTree) mkdir(dir string) *fakeTree {
	t.dirs[dir] = true
	t.addParents(dir)

	return t
}

func (t *fakeTree) link(p string) *fakeTree {
	t.links[p] = true
	t.addParents(p)

	return t
}

func (t *fakeTree) deny(dir string) *fakeTree {
	t.denied[dir] = true

	return t
}

func (t *fakeTree) breakMeta(file string) *fakeTree {
	t.badMeta[file] = true

	return t
}

func (t *fakeTree) Stat(p string) (fs.FileInfo, error) {
	switch {
	case t.dirs[p]:
		return fakeInfo{name: path.Base(p), dir: true}, nil
	case t.links[p]:
		return fakeInfo{name: path.Base(p)}, nil
	default:
		if _, ok := t.files[p]; ok {
			return fakeInfo{name: path.Base(p)}, nil
		}

		return nil, &fs.PathError{Op: "stat", Path: p, Err: os.ErrNotExist}
	}
}

func (t *fakeTree) List(dir string) ([]DirEntry, error) {
	if t.denied[dir] {
		return nil, &AccessError{Path: dir, Err: errDenied}
	}

	var out []DirEntry

	child := func(p string) bool {
		return path.Dir(p) == dir
	}

	for p := range t.dirs {
		if child(p) {
			out = append(out, DirEntry{Name: path.Base(p), Path: p, Kind: KindDir})
		}
	}

	for p := range t.links {
		if child(p) {
			out = append(out, DirEntry{Name: path.Base(p), Path: p, Kind: KindSymlink})
		}
	}

	for p, size := range t.files {
		if !child(p) {
			continue
		}

		entry := DirEntry{Name: path.Base(p), Path: p, Kind: KindFile, Size: size}
		if t.badMeta[p] {
			entry.Size = 0
			entry.Err = &MetadataError{Path: p, Err: errVanished}
		}

		out = append(out, entry)
	}

	sort.Slice(out, func(i, j int) bool { return strings.Compare(out[i].Path, out[j].Path) < 0 })

	return out, nil
}
