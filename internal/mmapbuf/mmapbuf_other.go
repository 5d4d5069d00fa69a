//go:build !unix

package mmapbuf

import (
	"errors"
	"os"
)

// Buffer is a read-only view of a file's contents, loaded into a
// regular heap buffer on platforms without a mapped-memory build tag.
type Buffer struct {
	data []byte
}

// ErrUnsupported names the lack of an mmap implementation outside the
// unix build tag. Open does not return it: it falls back to a plain read.
var ErrUnsupported = errors.New("mmapbuf: mmap not supported on this platform")

// Open reads path's entire contents into memory. On non-unix
// platforms this package has no mmap implementation, so it falls back
// to a plain read rather than failing outright.
func Open(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Buffer{data: data}, nil
}

// Bytes returns the buffered content.
func (b *Buffer) Bytes() []byte { return b.data }

// Close releases the buffer. It is always safe to call.
func (b *Buffer) Close() error {
	b.data = nil
	return nil
}
