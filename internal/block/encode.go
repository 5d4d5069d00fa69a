package block

import (
	"github.com/elliotnunn/zstdgo/internal/huff"
	"github.com/elliotnunn/zstdgo/internal/literals"
	"github.com/elliotnunn/zstdgo/internal/match"
	"github.com/elliotnunn/zstdgo/internal/seqstore"
	"github.com/elliotnunn/zstdgo/internal/zstdconst"
)

// Encoder holds the per-frame state blocks share across a frame: the
// currently-installed Huffman table (for TREELESS reuse) and the
// repeated-offset history. Both are committed only when a block is
// actually emitted COMPRESSED — a block that falls back to RAW must
// leave this state exactly as the previous block left it, since a RAW
// block is never run through entropy coding on decode either.
type Encoder struct {
	litTable   *huff.CTable
	offsets    seqstore.Offsets
	windowSize uint32
}

// NewEncoder returns an Encoder ready for the first block of a frame
// whose window is windowSize bytes.
func NewEncoder(windowSize uint32) *Encoder {
	return &Encoder{offsets: seqstore.NewOffsets(), windowSize: windowSize}
}

// EncodeBlock compresses data (at most MAX_BLOCK_SIZE bytes) and
// appends its header and payload to dst, per spec.md §4.2's dispatch
// and §4.6's decline-compression rule.
func (e *Encoder) EncodeBlock(dst []byte, data []byte, last bool) []byte {
	if len(data) == 0 {
		return appendRaw(dst, data, last)
	}
	if rleByte, ok := allSameByte(data); ok {
		if rle := appendRLE(nil, rleByte, len(data), false); len(rle) < len(data) {
			return append(dst, markLast(rle, last)...)
		}
	}
	if len(data) < zstdconst.MinBlockSize+zstdconst.SizeOfBlockHeader+1 {
		return appendRaw(dst, data, last)
	}

	trialOffsets := e.offsets
	result := match.CompressBlock(data, e.windowSize, trialOffsets)
	litEnc := literals.Encode(result.Literals, e.litTable, true)
	seqBytes := seqstore.Encode(result.Sequences, &trialOffsets)

	payload := make([]byte, 0, len(litEnc.Encoded)+len(seqBytes))
	payload = append(payload, litEnc.Encoded...)
	payload = append(payload, seqBytes...)

	minGain := (len(data) >> 6) + 2
	if len(payload) >= len(data)-minGain {
		return appendRaw(dst, data, last)
	}

	e.offsets = trialOffsets
	e.litTable = litEnc.Table
	return appendCompressed(dst, payload, last)
}

func allSameByte(data []byte) (byte, bool) {
	b := data[0]
	for _, c := range data[1:] {
		if c != b {
			return 0, false
		}
	}
	return b, true
}

func markLast(block []byte, last bool) []byte {
	if last {
		block[0] |= 1
	}
	return block
}

func appendRaw(dst []byte, data []byte, last bool) []byte {
	h := Header{Last: last, Type: Raw, Size: len(data)}
	dst = append(dst, EncodeHeader(h)...)
	return append(dst, data...)
}

func appendRLE(dst []byte, b byte, n int, last bool) []byte {
	h := Header{Last: last, Type: RLE, Size: n}
	dst = append(dst, EncodeHeader(h)...)
	return append(dst, b)
}

func appendCompressed(dst []byte, payload []byte, last bool) []byte {
	h := Header{Last: last, Type: Compressed, Size: len(payload)}
	dst = append(dst, EncodeHeader(h)...)
	return append(dst, payload...)
}
