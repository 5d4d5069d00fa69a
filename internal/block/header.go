// Package block implements the zstd block layer: the 3-byte block
// header, RAW/RLE/COMPRESSED dispatch, and the match-copy execution
// loop that stitches a literals section and a sequences section back
// into plain bytes. Grounded on spec.md §4.2 and §4.5's "Match-copy
// execution" subsection; no teacher precedent file covers LZ77 block
// framing (see DESIGN.md).
package block

import (
	"encoding/binary"
	"errors"

	"github.com/elliotnunn/zstdgo/internal/zstdconst"
)

// ErrCorrupt is returned for malformed block headers or payloads.
var ErrCorrupt = errors.New("block: corrupt block")

// ErrMatchBeforeOrigin is the specific diagnostic spec.md §7 calls out
// for a match offset that would read before the start of the frame.
var ErrMatchBeforeOrigin = errors.New("block: match offset points before frame origin")

// Type identifies a block's payload encoding.
type Type uint8

const (
	Raw Type = iota
	RLE
	Compressed
	reserved
)

// Header is a parsed (or to-be-written) 3-byte block header.
type Header struct {
	Last bool
	Type Type
	Size int
}

// DecodeHeader parses the 3-byte little-endian block header: bit 0 is
// the last-block flag, bits 1-2 the block type, bits 3-23 the size
// field (whose meaning depends on Type).
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < zstdconst.SizeOfBlockHeader {
		return Header{}, ErrCorrupt
	}
	word := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16
	h := Header{
		Last: word&1 != 0,
		Type: Type((word >> 1) & 3),
		Size: int(word >> 3),
	}
	if h.Type == reserved {
		return Header{}, ErrCorrupt
	}
	return h, nil
}

// EncodeHeader renders h into its 3-byte wire form.
func EncodeHeader(h Header) []byte {
	word := uint32(h.Size) << 3
	word |= uint32(h.Type) << 1
	if h.Last {
		word |= 1
	}
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, word)
	return buf[:3]
}
