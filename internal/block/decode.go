package block

import (
	"encoding/binary"

	"github.com/elliotnunn/zstdgo/internal/fse"
	"github.com/elliotnunn/zstdgo/internal/huff"
	"github.com/elliotnunn/zstdgo/internal/literals"
	"github.com/elliotnunn/zstdgo/internal/seqstore"
)

// Decoder holds the per-frame state a sequence of blocks shares:
// the currently-loaded Huffman table, the three FSE sequence tables
// (for REPEAT mode), and the repeated-offset history. A fresh Decoder
// must be used per frame; spec.md §5 is explicit that this state does
// not survive frame boundaries.
type Decoder struct {
	litTable                   *huff.DTable
	llTable, mlTable, offTable *fse.DTable
	offsets                    seqstore.Offsets
}

// NewDecoder returns a Decoder ready for the first block of a frame.
func NewDecoder() *Decoder {
	return &Decoder{offsets: seqstore.NewOffsets()}
}

// DecodeBlock decodes one block's payload (data, excluding its 3-byte
// header) into output, starting at writtenSoFar, and returns the
// number of bytes it wrote.
func (d *Decoder) DecodeBlock(h Header, data []byte, output []byte, writtenSoFar int) (int, error) {
	switch h.Type {
	case Raw:
		if len(data) < h.Size || writtenSoFar+h.Size > len(output) {
			return 0, ErrCorrupt
		}
		copy(output[writtenSoFar:writtenSoFar+h.Size], data[:h.Size])
		return h.Size, nil

	case RLE:
		if len(data) < 1 || writtenSoFar+h.Size > len(output) {
			return 0, ErrCorrupt
		}
		fillRLE(output[writtenSoFar:writtenSoFar+h.Size], data[0])
		return h.Size, nil

	case Compressed:
		return d.decodeCompressed(data, output, writtenSoFar)
	}
	return 0, ErrCorrupt
}

// fillRLE replicates v across dst, bulk 8-byte storing where possible.
func fillRLE(dst []byte, v byte) {
	word := uint64(v) * 0x0101010101010101
	i := 0
	for ; i+8 <= len(dst); i += 8 {
		binary.LittleEndian.PutUint64(dst[i:i+8], word)
	}
	for ; i < len(dst); i++ {
		dst[i] = v
	}
}

func (d *Decoder) decodeCompressed(data []byte, output []byte, writtenSoFar int) (int, error) {
	litSection, err := literals.Decode(data, d.litTable, nil)
	if err != nil {
		return 0, err
	}
	d.litTable = litSection.Table

	if litSection.Consumed > len(data) {
		return 0, ErrCorrupt
	}
	rest := data[litSection.Consumed:]

	decoded, _, err := seqstore.Decode(rest, d.llTable, d.mlTable, d.offTable, &d.offsets)
	if err != nil {
		return 0, err
	}
	d.llTable, d.mlTable, d.offTable = decoded.LLTable, decoded.MLTable, decoded.OffTable

	return executeSequences(litSection.Literals, decoded.Sequences, output, writtenSoFar)
}

// executeSequences replays each sequence's literal-copy + match-copy
// step (spec.md §4.5's "Match-copy execution") and finally copies the
// trailing literal residue, returning the total bytes written.
func executeSequences(lits []byte, seqs []seqstore.Sequence, output []byte, writtenSoFar int) (int, error) {
	litPos := 0
	outPos := writtenSoFar

	for _, s := range seqs {
		if litPos+int(s.LiteralsLength) > len(lits) {
			return 0, ErrCorrupt
		}
		if outPos+int(s.LiteralsLength) > len(output) {
			return 0, ErrCorrupt
		}
		copy(output[outPos:outPos+int(s.LiteralsLength)], lits[litPos:litPos+int(s.LiteralsLength)])
		outPos += int(s.LiteralsLength)
		litPos += int(s.LiteralsLength)

		if s.MatchLength > 0 {
			if s.Offset == 0 || int(s.Offset) > outPos {
				return 0, ErrMatchBeforeOrigin
			}
			if outPos+int(s.MatchLength) > len(output) {
				return 0, ErrCorrupt
			}
			copyMatch(output, outPos, s.Offset, s.MatchLength)
			outPos += int(s.MatchLength)
		}
	}

	remaining := lits[litPos:]
	if outPos+len(remaining) > len(output) {
		return 0, ErrCorrupt
	}
	copy(output[outPos:outPos+len(remaining)], remaining)
	outPos += len(remaining)

	return outPos - writtenSoFar, nil
}
