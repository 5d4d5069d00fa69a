//go:build unix

// Package mmapbuf provides an optional mmap-backed read-only view of a
// file, for the large-input round-trip scenarios spec.md §8 names
// (16 MiB+) where copying the whole file into a heap buffer before
// compression is wasteful. Grounded on Design Notes §9's call for "a
// single clean buffer abstraction" rather than pointer triples; no
// teacher file imports golang.org/x/sys directly (it's present in the
// teacher's go.mod only indirectly), so this package follows the
// package's own idiomatic usage rather than a specific teacher file.
package mmapbuf

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// Buffer is a read-only mmap view of a file's contents.
type Buffer struct {
	data []byte
}

// Open maps path's entire contents read-only. The caller must call
// Close when done; the returned Bytes slice becomes invalid after that.
func Open(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if size == 0 {
		return &Buffer{data: nil}, nil
	}
	if size > (1 << 40) {
		return nil, errors.New("mmapbuf: file too large to map")
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	return &Buffer{data: data}, nil
}

// Bytes returns the mapped content. It is valid until Close.
func (b *Buffer) Bytes() []byte { return b.data }

// Close unmaps the buffer. On a Buffer with no mapping (an empty file,
// or one already closed) it is a no-op.
func (b *Buffer) Close() error {
	if b.data == nil {
		return nil
	}
	data := b.data
	b.data = nil
	return unix.Munmap(data)
}
