package frame

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/elliotnunn/zstdgo/internal/zstdconst"
)

func TestHeaderRoundTripSingleSegment(t *testing.T) {
	header, err := EncodeHeader(100, 1<<20)
	if err != nil {
		t.Fatalf("EncodeHeader: %v", err)
	}
	h, err := DecodeHeader(header)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if !h.SingleSegment {
		t.Fatal("expected single-segment encoding when window >= input size")
	}
	if h.ContentSize != 100 {
		t.Fatalf("ContentSize = %d, want 100", h.ContentSize)
	}
	if !h.HasChecksum {
		t.Fatal("encoder always sets the checksum flag")
	}
}

func TestHeaderRoundTripMultiSegment(t *testing.T) {
	header, err := EncodeHeader(1<<20, 1<<18)
	if err != nil {
		t.Fatalf("EncodeHeader: %v", err)
	}
	h, err := DecodeHeader(header)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if h.SingleSegment {
		t.Fatal("expected a window-descriptor encoding when window < input size")
	}
	if h.WindowSize != 1<<18 {
		t.Fatalf("WindowSize = %d, want %d", h.WindowSize, 1<<18)
	}
	if h.ContentSize != 1<<20 {
		t.Fatalf("ContentSize = %d, want %d", h.ContentSize, 1<<20)
	}
}

func TestDecodeHeaderBadMagic(t *testing.T) {
	if _, err := DecodeHeader([]byte{1, 2, 3, 4, 5}); err != ErrBadMagic {
		t.Fatalf("got %v want ErrBadMagic", err)
	}
}

func TestDecodeHeaderLegacyV07(t *testing.T) {
	data := []byte{0x27, 0xB5, 0x2F, 0xFD, 0x00}
	if _, err := DecodeHeader(data); err != ErrLegacyV07 {
		t.Fatalf("got %v want ErrLegacyV07", err)
	}
}

func TestDecodeHeaderRejectsDictionary(t *testing.T) {
	magic := make([]byte, 4)
	magic[0], magic[1], magic[2], magic[3] = 0x28, 0xB5, 0x2F, 0xFD
	descriptor := byte(1) // dictIDFlag bits = 1
	data := append(magic, descriptor, 0, 0, 0, 0)
	if _, err := DecodeHeader(data); err != ErrDictionary {
		t.Fatalf("got %v want ErrDictionary", err)
	}
}

func TestEncodeFrameRejectsUnrepresentableWindow(t *testing.T) {
	_, err := EncodeHeader(1<<21, (1<<20)+7) // not of the form base+mantissa*(base/8)
	if err != ErrWindowUnrepresentable {
		t.Fatalf("got %v want ErrWindowUnrepresentable", err)
	}
}

func TestEncodeDecodeFrameRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	data := make([]byte, 10000)
	base := []byte("lorem ipsum dolor sit amet, consectetur adipiscing elit ")
	for i := 0; i < len(data); {
		i += copy(data[i:], base)
	}
	_ = rng

	encoded, err := EncodeFrame(nil, data, zstdconst.MaxWindowSize)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	output := make([]byte, len(data))
	written, consumed, err := DecodeFrame(encoded, output)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if consumed != len(encoded) {
		t.Fatalf("consumed = %d, want %d", consumed, len(encoded))
	}
	if written != len(data) {
		t.Fatalf("written = %d, want %d", written, len(data))
	}
	if !bytes.Equal(output, data) {
		t.Fatal("round trip mismatch")
	}
}

func TestEncodeDecodeFrameEmptyInput(t *testing.T) {
	encoded, err := EncodeFrame(nil, nil, zstdconst.MaxWindowSize)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	output := make([]byte, 0)
	written, consumed, err := DecodeFrame(encoded, output)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if written != 0 || consumed != len(encoded) {
		t.Fatalf("got written=%d consumed=%d, want written=0 consumed=%d", written, consumed, len(encoded))
	}
}

func TestEncodeDecodeFrameMultiBlock(t *testing.T) {
	rng := rand.New(rand.NewSource(22))
	data := make([]byte, 300000) // forces multiple MaxBlockSize-sized blocks
	for i := range data {
		data[i] = byte(rng.Intn(4)) // low-entropy but not degenerate
	}

	windowSize := uint64(zstdconst.MaxBlockSize)
	encoded, err := EncodeFrame(nil, data, windowSize)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	output := make([]byte, len(data))
	written, _, err := DecodeFrame(encoded, output)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if written != len(data) || !bytes.Equal(output, data) {
		t.Fatal("multi-block round trip mismatch")
	}
}

func TestDecodeFrameDetectsChecksumMismatch(t *testing.T) {
	encoded, err := EncodeFrame(nil, []byte("hello world"), zstdconst.MaxWindowSize)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	corrupted := append([]byte(nil), encoded...)
	corrupted[len(corrupted)-1] ^= 0xFF

	output := make([]byte, 32)
	if _, _, err := DecodeFrame(corrupted, output); err != ErrChecksumMismatch {
		t.Fatalf("got %v want ErrChecksumMismatch", err)
	}
}

func TestFrameSizeMatchesConsumed(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog, repeatedly, to build up some sequences")
	encoded, err := EncodeFrame(nil, data, zstdconst.MaxWindowSize)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	size, err := FrameSize(encoded)
	if err != nil {
		t.Fatalf("FrameSize: %v", err)
	}
	if size != len(encoded) {
		t.Fatalf("FrameSize = %d, want %d", size, len(encoded))
	}

	output := make([]byte, len(data))
	_, consumed, err := DecodeFrame(encoded, output)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if size != consumed {
		t.Fatalf("FrameSize = %d, DecodeFrame consumed = %d, want equal", size, consumed)
	}
}

func TestFrameSizeOnRLEBlock(t *testing.T) {
	// Exercises the RLE wire-size special case: the block header's Size
	// field holds the expanded length, but only one payload byte
	// actually appears on the wire.
	data := bytes.Repeat([]byte{'q'}, 5000)
	encoded, err := EncodeFrame(nil, data, zstdconst.MaxWindowSize)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	size, err := FrameSize(encoded)
	if err != nil {
		t.Fatalf("FrameSize: %v", err)
	}
	if size != len(encoded) {
		t.Fatalf("FrameSize = %d, want %d", size, len(encoded))
	}
}
