package zstdgo

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zstd"
)

// These tests hold this module's frames up against klauspost/compress/zstd,
// a mature independent implementation of the same RFC, as an interop
// oracle: spec.md §8 requires that frames this package produces are valid
// input to any conformant zstd decoder, and that frames a conformant
// encoder produces decode correctly here.

func TestInteropKlauspostDecodesOurFrames(t *testing.T) {
	data := bytes.Repeat([]byte("interop test data, the quick brown fox jumps over the lazy dog "), 500)

	c := NewCompressor()
	compressed := compressAll(t, c, data)

	dec, err := zstd.NewReader(nil)
	if err != nil {
		t.Fatalf("zstd.NewReader: %v", err)
	}
	defer dec.Close()

	got, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		t.Fatalf("klauspost DecodeAll of our frame: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("klauspost decoded our frame to different content")
	}
}

func TestInteropWeDecodeKlauspostFrames(t *testing.T) {
	data := bytes.Repeat([]byte("the other direction: their encoder, our decoder "), 500)

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd.NewWriter: %v", err)
	}
	compressed := enc.EncodeAll(data, nil)
	if err := enc.Close(); err != nil {
		t.Fatalf("Encoder.Close: %v", err)
	}

	d := NewDecompressor()
	out := make([]byte, len(data))
	n, err := d.Decompress(compressed, out)
	if err != nil {
		t.Fatalf("our Decompress of klauspost's frame: %v", err)
	}
	if n != len(data) || !bytes.Equal(out, data) {
		t.Fatal("decoded klauspost's frame to different content")
	}
}

func TestInteropEmptyInputRoundTrip(t *testing.T) {
	c := NewCompressor()
	compressed := compressAll(t, c, nil)

	dec, err := zstd.NewReader(nil)
	if err != nil {
		t.Fatalf("zstd.NewReader: %v", err)
	}
	defer dec.Close()

	got, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		t.Fatalf("klauspost DecodeAll of our empty frame: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d bytes, want 0", len(got))
	}
}
