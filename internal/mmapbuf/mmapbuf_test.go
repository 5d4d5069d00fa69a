package mmapbuf

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenBytesClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	want := []byte("the quick brown fox jumps over the lazy dog")
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	buf, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer buf.Close()

	if got := buf.Bytes(); string(got) != string(want) {
		t.Fatalf("Bytes() = %q, want %q", got, want)
	}
	if err := buf.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// double Close is documented as safe.
	if err := buf.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestOpenEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.bin")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	buf, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer buf.Close()
	if len(buf.Bytes()) != 0 {
		t.Fatalf("Bytes() = %v, want empty", buf.Bytes())
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope.bin")); err == nil {
		t.Fatal("expected an error opening a missing file")
	}
}

func TestOpenLargeFile(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large-file mmap test in short mode")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "large.bin")
	const size = 16 << 20 // spec.md's large-input round-trip scenario
	want := make([]byte, size)
	for i := range want {
		want[i] = byte(i)
	}
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	buf, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer buf.Close()
	got := buf.Bytes()
	if len(got) != size {
		t.Fatalf("Bytes() has length %d, want %d", len(got), size)
	}
	if got[0] != want[0] || got[size-1] != want[size-1] {
		t.Fatal("large-file content mismatch at the edges")
	}
}
