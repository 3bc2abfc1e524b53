package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteMediaFile drops a filler file at path, creating parent directories as
// needed. The bytes form no valid audio container; tag-reading tests lean on
// that to exercise the unreadable-file path. A size <= 0 writes one byte.
func WriteMediaFile(t testing.TB, path string, size int) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x42}, size), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
