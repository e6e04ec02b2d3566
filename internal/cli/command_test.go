package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/fatscan/internal/scan"
)

func fixture(t *testing.T) string {
	t.Helper()

	root := t.TempDir()

	for rel, size := range map[string]int{
		"big.iso":         3 << 20,
		"videos/clip.mp4": 2 << 20,
		"videos/tiny.txt": 10,
		"cache/.git/blob": 5 << 20,
		"cache/other.dat": 1 << 20,
	} {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	}

	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := New("v0.0.0-test").Command(&stdout, &stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return stdout.String(), err
}

func TestCommand_Table(t *testing.T) {
	root := fixture(t)

	out, err := run(t, "--size", "2", "--top", "2", "--verbose", root)
	require.NoError(t, err)

	assert.Contains(t, out, "Top 2 files:")
	assert.Contains(t, out, "1) '"+filepath.Join(root, "big.iso")+"'")
	assert.Contains(t, out, "2) '"+filepath.Join(root, "videos", "clip.mp4")+"'")
	assert.NotContains(t, out, "blob", ".git is excluded by default")
	assert.Contains(t, out, "Files scanned:  4")
	assert.Contains(t, out, "Dirs scanned:")
	assert.Regexp(t, `Files matched:\s+2\n`, out)
}

func TestCommand_ClearDefaultExcludes(t *testing.T) {
	root := fixture(t)

	out, err := run(t, "--exclude=", "--format", "paths", "--size", "4", root)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(root, "cache", ".git", "blob")}, strings.Fields(out))
}

func TestCommand_ExtensionAndDepth(t *testing.T) {
	root := fixture(t)

	out, err := run(t, "-x", ".mp4,.txt", "-s", "0", "-f", "paths", root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "videos", "clip.mp4"),
		filepath.Join(root, "videos", "tiny.txt"),
	}, strings.Fields(out))

	out, err = run(t, "--depth", "1", "-s", "0", "-f", "paths", root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "big.iso")}, strings.Fields(out))

	_, err = run(t, "--depth=-1", root)
	require.Error(t, err)
}

func TestCommand_JSONWithExclude(t *testing.T) {
	root := fixture(t)

	out, err := run(t, "-s", "1MiB", "-f", "json", "-e", `.*/\.git$`, "-w", "3", root)
	require.NoError(t, err)

	var result scan.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	assert.Equal(t, []scan.FileRecord{
		{Path: filepath.Join(root, "big.iso"), Size: 3 << 20},
		{Path: filepath.Join(root, "videos", "clip.mp4"), Size: 2 << 20},
		{Path: filepath.Join(root, "cache", "other.dat"), Size: 1 << 20},
	}, result.Files)
	assert.EqualValues(t, 4, result.Stats.FilesScanned)
	assert.Equal(t, 20, result.TopN)
}

func TestCommand_PathsFastwalk(t *testing.T) {
	root := fixture(t)

	out, err := run(t, "--engine", "fastwalk", "--format", "paths", "--size", "2", root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "big.iso"),
		filepath.Join(root, "videos", "clip.mp4"),
	}, strings.Fields(out))
}

func TestCommand_ReportFile(t *testing.T) {
	root := fixture(t)
	report := filepath.Join(t.TempDir(), "result.log")

	out, err := run(t, "-o", report, root)
	require.NoError(t, err)
	assert.Contains(t, out, "No files found matching criteria.")
	assert.Contains(t, out, "Report saved: "+report)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "FATSCAN - Scan Report")
	assert.Contains(t, string(data), "Files Scanned   : 4")
}

func TestCommand_ConfigFileAndFlagPrecedence(t *testing.T) {
	root := fixture(t)
	cfgPath := filepath.Join(t.TempDir(), "fatscan.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("scan:\n  min_size: 1MiB\n  top: 1\noutput:\n  format: paths\n"), 0o644))

	out, err := run(t, "--config", cfgPath, root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "big.iso")}, strings.Fields(out))

	out, err = run(t, "--config", cfgPath, "--top", "2", root)
	require.NoError(t, err)
	assert.Len(t, strings.Fields(out), 2)
}

func TestCommand_Errors(t *testing.T) {
	root := fixture(t)

	tests := []struct {
		name string
		args []string
	}{
		{"invalid format", []string{"--format", "xml", root}},
		{"invalid size", []string{"--size", "enormous", root}},
		{"invalid engine", []string{"--engine", "dfs", root}},
		{"missing root", []string{filepath.Join(root, "missing")}},
		{"file root", []string{filepath.Join(root, "big.iso")}},
		{"too many args", []string{root, root}},
		{"missing config", []string{"--config", filepath.Join(root, "nope.yaml"), root}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
		})
	}
}

func TestCommand_RootInvalidIsFatal(t *testing.T) {
	_, err := run(t, filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, scan.ErrRootInvalid)
	assert.True(t, scan.IsFatal(err))
}

func TestRelativize(t *testing.T) {
	result := &scan.Result{
		Root:  "/work/project",
		Files: []scan.FileRecord{{Path: "/work/project/a/b.bin"}},
	}

	relativize(result, "/work")
	assert.Equal(t, "project", result.Root)
	assert.Equal(t, filepath.FromSlash("project/a/b.bin"), result.Files[0].Path)

	outside := &scan.Result{Root: "/data", Files: []scan.FileRecord{{Path: "/data/x"}}}
	relativize(outside, "/work")
	assert.Equal(t, "/data", outside.Root)
	assert.Equal(t, "/data/x", outside.Files[0].Path)
}

func TestDistribution(t *testing.T) {
	buckets := distribution(scan.Distribution{Huge: 3, Large: 2, Medium: 1})

	assert.Equal(t, []bucket{
		{label: ">= 1 GiB", count: 3},
		{label: "500 MiB - 1 GiB", count: 2},
		{label: "100 MiB - 500 MiB", count: 1},
	}, buckets)
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.log")

	result := &scan.Result{
		Root:    "/data",
		MinSize: 100 << 20,
		Files: []scan.FileRecord{
			{Path: "/data/a", Size: 600 << 20},
			{Path: "/data/b", Size: 200 << 20},
		},
		Stats: scan.Stats{
			FilesScanned: 900,
			DirsScanned:  3,
			BytesScanned: 90 << 30,
			Errors:       1,
			MatchedFiles: 500,
			MatchedBytes: 80 << 30,
			Distribution: scan.Distribution{Huge: 20, Large: 30, Medium: 450},
		},
		Elapsed: 1500 * time.Millisecond,
	}

	now := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	require.NoError(t, WriteReport(path, result, now))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	report := string(data)
	assert.Contains(t, report, "Timestamp       : 2024-05-01 12:30:00")
	assert.Contains(t, report, "Scan Target     : /data")
	assert.Contains(t, report, "Min Size        : 100 MiB")
	assert.Contains(t, report, "Errors          : 1")
	assert.Contains(t, report, "Elapsed Time    : 1.50 sec")
	assert.Contains(t, report, "Files Scanned   : 900")
	assert.Contains(t, report, "Files Found     : 500")
	assert.Contains(t, report, "Total Size      : 80 GiB")
	assert.Contains(t, report, ">= 1 GiB          : 20 files")
	assert.Contains(t, report, "500 MiB - 1 GiB   : 30 files")
	assert.Contains(t, report, "100 MiB - 500 MiB : 450 files")
	assert.Contains(t, report, "Top 2 of 500 Files (sorted by size)")
	assert.Contains(t, report, "    1.      600 MiB  /data/a")
}
