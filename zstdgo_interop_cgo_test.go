//go:build cgo

package zstdgo

import (
	"bytes"
	"testing"

	datadog "github.com/DataDog/zstd"
)

// DataDog/zstd binds the C reference implementation directly, so it is a
// second, independent interop oracle alongside klauspost/compress/zstd.
// It requires cgo, hence the build tag: CI that disables cgo still runs
// the rest of the suite.

func TestInteropDataDogDecodesOurFrames(t *testing.T) {
	data := bytes.Repeat([]byte("cgo oracle round trip, the quick brown fox "), 500)

	c := NewCompressor()
	compressed := compressAll(t, c, data)

	got, err := datadog.Decompress(nil, compressed)
	if err != nil {
		t.Fatalf("DataDog/zstd Decompress of our frame: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("DataDog/zstd decoded our frame to different content")
	}
}

func TestInteropWeDecodeDataDogFrames(t *testing.T) {
	data := bytes.Repeat([]byte("their C encoder, our Go decoder this time "), 500)

	compressed, err := datadog.Compress(nil, data)
	if err != nil {
		t.Fatalf("DataDog/zstd Compress: %v", err)
	}

	d := NewDecompressor()
	out := make([]byte, len(data))
	n, err := d.Decompress(compressed, out)
	if err != nil {
		t.Fatalf("our Decompress of DataDog/zstd's frame: %v", err)
	}
	if n != len(data) || !bytes.Equal(out, data) {
		t.Fatal("decoded DataDog/zstd's frame to different content")
	}
}
