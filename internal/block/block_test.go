package block

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	cases := []Header{
		{Last: false, Type: Raw, Size: 0},
		{Last: true, Type: RLE, Size: 12345},
		{Last: false, Type: Compressed, Size: (1 << 21) - 1},
	}
	for _, h := range cases {
		encoded := EncodeHeader(h)
		if len(encoded) != 3 {
			t.Fatalf("EncodeHeader produced %d bytes, want 3", len(encoded))
		}
		got, err := DecodeHeader(encoded)
		if err != nil {
			t.Fatalf("DecodeHeader: %v", err)
		}
		if got != h {
			t.Fatalf("got %+v want %+v", got, h)
		}
	}
}

func TestDecodeHeaderRejectsReservedType(t *testing.T) {
	// type bits (1-2) = 3 (reserved), last=0, size=0.
	data := []byte{byte(reserved) << 1, 0, 0}
	if _, err := DecodeHeader(data); err != ErrCorrupt {
		t.Fatalf("got %v want ErrCorrupt", err)
	}
}

func TestDecodeHeaderTooShort(t *testing.T) {
	if _, err := DecodeHeader([]byte{1, 2}); err != ErrCorrupt {
		t.Fatalf("got %v want ErrCorrupt", err)
	}
}

func TestCopyMatchNonOverlapping(t *testing.T) {
	output := make([]byte, 32)
	copy(output, []byte("0123456789"))
	copyMatch(output, 10, 10, 10)
	if !bytes.Equal(output[10:20], []byte("0123456789")) {
		t.Fatalf("got %q", output[10:20])
	}
}

func TestCopyMatchOverlappingOffsetOne(t *testing.T) {
	// offset=1 run-length-encodes: every output byte equals output[dst-1].
	output := make([]byte, 20)
	output[0] = 'x'
	copyMatch(output, 1, 1, 15)
	for i := 0; i < 16; i++ {
		if output[i] != 'x' {
			t.Fatalf("output[%d] = %q, want 'x'", i, output[i])
		}
	}
}

func TestCopyMatchOverlappingSmallOffset(t *testing.T) {
	output := make([]byte, 20)
	copy(output, []byte("abc"))
	// offset=3, matchLength=12: repeats "abc" four times starting at dst=3.
	copyMatch(output, 3, 3, 12)
	if !bytes.Equal(output[:15], []byte("abcabcabcabcabc")) {
		t.Fatalf("got %q", output[:15])
	}
}

func TestCopyMatchShortRunByteByByte(t *testing.T) {
	output := make([]byte, 10)
	copy(output, []byte("ab"))
	copyMatch(output, 2, 2, 3) // matchLength < 8, exercises only the tail loop
	if !bytes.Equal(output[:5], []byte("ababa")) {
		t.Fatalf("got %q", output[:5])
	}
}

func encodeFrame(t *testing.T, data []byte) []byte {
	t.Helper()
	enc := NewEncoder(1 << 20)
	var out []byte
	out = enc.EncodeBlock(out, data, true)
	return out
}

func decodeFrame(t *testing.T, blockData []byte, outputSize int) []byte {
	t.Helper()
	h, err := DecodeHeader(blockData)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	dec := NewDecoder()
	output := make([]byte, outputSize)
	n, err := dec.DecodeBlock(h, blockData[3:], output, 0)
	if err != nil {
		t.Fatalf("DecodeBlock: %v", err)
	}
	return output[:n]
}

func TestEncodeDecodeBlockRaw(t *testing.T) {
	data := []byte("hi")
	blob := encodeFrame(t, data)
	got := decodeFrame(t, blob, len(data))
	if !bytes.Equal(got, data) {
		t.Fatalf("got %q want %q", got, data)
	}
}

func TestEncodeDecodeBlockRLE(t *testing.T) {
	data := bytes.Repeat([]byte{'z'}, 300)
	blob := encodeFrame(t, data)
	h, _ := DecodeHeader(blob)
	if h.Type != RLE {
		t.Fatalf("expected an RLE block for uniform input, got type %d", h.Type)
	}
	got := decodeFrame(t, blob, len(data))
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch, got %d bytes want %d", len(got), len(data))
	}
}

func TestEncodeDecodeBlockCompressed(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	base := []byte("the quick brown fox jumps over the lazy dog. ")
	var data []byte
	for i := 0; i < 50; i++ {
		data = append(data, base...)
	}
	_ = rng
	blob := encodeFrame(t, data)
	h, _ := DecodeHeader(blob)
	if h.Type != Compressed {
		t.Fatalf("expected a compressed block for repetitive input, got type %d", h.Type)
	}
	got := decodeFrame(t, blob, len(data))
	if !bytes.Equal(got, data) {
		t.Fatal("round trip mismatch for compressed block")
	}
}

func TestEncodeDecodeBlockEmpty(t *testing.T) {
	blob := encodeFrame(t, nil)
	h, err := DecodeHeader(blob)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if h.Type != Raw || h.Size != 0 {
		t.Fatalf("expected an empty RAW block, got %+v", h)
	}
}

func TestMultiBlockEncoderOffsetStatePersists(t *testing.T) {
	// Two blocks sharing a repeated offset: the second block's matches
	// should still decode correctly using the Encoder/Decoder's
	// across-block offsets and table state.
	enc := NewEncoder(1 << 20)
	block1 := bytes.Repeat([]byte("pattern-"), 40)
	block2 := bytes.Repeat([]byte("pattern-"), 40)

	var blob []byte
	blob = enc.EncodeBlock(blob, block1, false)
	blob = enc.EncodeBlock(blob, block2, true)

	dec := NewDecoder()
	output := make([]byte, len(block1)+len(block2))
	pos, written := 0, 0
	for {
		h, err := DecodeHeader(blob[pos:])
		if err != nil {
			t.Fatalf("DecodeHeader: %v", err)
		}
		pos += 3
		n, err := dec.DecodeBlock(h, blob[pos:pos+h.Size], output, written)
		if err != nil {
			t.Fatalf("DecodeBlock: %v", err)
		}
		written += n
		pos += h.Size
		if h.Last {
			break
		}
	}
	want := append(append([]byte(nil), block1...), block2...)
	if !bytes.Equal(output[:written], want) {
		t.Fatal("multi-block round trip mismatch")
	}
}
