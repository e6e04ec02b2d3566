package scan

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Passes reports whether a file of the given size qualifies for ranking.
func Passes(size, minSize uint64) bool {
	return size >= minSize
}

// compileExcludes compiles the exclusion patterns. Empty patterns are ignored.
func compileExcludes(patterns []string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))

	for _, p := range patterns {
		if p == "" {
			continue
		}

		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling exclusion pattern %q: %w", p, err)
		}

		res = append(res, re)
	}

	return res, nil
}

// excludedBy returns the first pattern matching path, or nil.
func excludedBy(path string, patterns []*regexp.Regexp) *regexp.Regexp {
	if len(patterns) == 0 {
		return nil
	}

	fPath := filepath.ToSlash(path)

	for _, re := range patterns {
		if re.MatchString(fPath) {
			return re
		}
	}

	return nil
}

// extFilter holds file suffixes to include and to exclude.
type extFilter struct {
	include []string
	exclude []string
}

// parseExtensions splits suffixes into includes and '!'-prefixed excludes.
func parseExtensions(exts []string) extFilter {
	var f extFilter

	//nolint:varnamelen // e is standard for element in range
	for _, e := range exts {
		e = strings.Trim(e, "'\"") // Strip quotes first

		switch {
		case e == "" || e == "!":
		case strings.HasPrefix(e, "!"):
			f.exclude = append(f.exclude, strings.TrimPrefix(e, "!"))
		default:
			f.include = append(f.include, e)
		}
	}

	return f
}

// allows reports whether path qualifies under the suffix filters.
// Excludes win over includes; no includes means every suffix.
func (f extFilter) allows(path string) bool {
	for _, ext := range f.exclude {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}

	if len(f.include) == 0 {
		return true
	}

	for _, ext := range f.include {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	return false
}

// depthOf returns the depth of path below root: 0 for the root itself, 1 for
// its entries and so on.
func depthOf(path, root string) int {
	rel := strings.TrimPrefix(filepath.ToSlash(path), filepath.ToSlash(root))

	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		return 0
	}

	return strings.Count(rel, "/") + 1
}

// beyondDepth reports whether an entry at depth is past the limit (0 = none).
func beyondDepth(depth, limit int) bool {
	return limit > 0 && depth > limit
}
