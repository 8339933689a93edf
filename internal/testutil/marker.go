package testutil

import (
	"path/filepath"
	"testing"
)

// MarkerPath returns a marker file location inside a per-test temp dir.
// The file is not created.
func MarkerPath(t testing.TB) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "fail_marker")
}

// DBPath returns a database path inside a per-test temp dir.
func DBPath(t testing.TB) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "arithprobe.db")
}
