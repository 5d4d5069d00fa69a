package frame

import (
	"encoding/binary"
	"errors"

	"github.com/elliotnunn/zstdgo/internal/block"
	"github.com/elliotnunn/zstdgo/internal/checksum"
	"github.com/elliotnunn/zstdgo/internal/zstdconst"
)

// ErrChecksumMismatch is returned when a frame's trailer doesn't match
// the hash of its decoded content.
var ErrChecksumMismatch = errors.New("frame: checksum mismatch")

// EncodeFrame appends one complete frame (header, blocks, checksum
// trailer) for data to dst, using windowSize as the block/window size.
func EncodeFrame(dst []byte, data []byte, windowSize uint64) ([]byte, error) {
	header, err := EncodeHeader(len(data), windowSize)
	if err != nil {
		return nil, err
	}
	dst = append(dst, header...)

	enc := block.NewEncoder(uint32(windowSize))
	digest := checksum.New()
	digest.Write(data)

	blockSize := int(windowSize)
	if blockSize <= 0 || blockSize > zstdconst.MaxBlockSize {
		blockSize = zstdconst.MaxBlockSize
	}

	if len(data) == 0 {
		dst = enc.EncodeBlock(dst, nil, true)
	} else {
		for pos := 0; pos < len(data); {
			end := pos + blockSize
			if end > len(data) {
				end = len(data)
			}
			dst = enc.EncodeBlock(dst, data[pos:end], end == len(data))
			pos = end
		}
	}

	sumBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(sumBytes, digest.Checksum32())
	return append(dst, sumBytes...), nil
}

// FrameSize walks a frame's header and block headers, without decoding
// any block payload, to report how many bytes of data the frame
// occupies (header through checksum trailer). Callers that want to key
// a cache on a frame's raw bytes before paying for entropy decode use
// this to find the frame's extent cheaply.
func FrameSize(data []byte) (int, error) {
	h, err := DecodeHeader(data)
	if err != nil {
		return 0, err
	}
	pos := h.HeaderSize

	for {
		if pos+zstdconst.SizeOfBlockHeader > len(data) {
			return 0, block.ErrCorrupt
		}
		bh, err := block.DecodeHeader(data[pos:])
		if err != nil {
			return 0, err
		}
		pos += zstdconst.SizeOfBlockHeader

		wireSize := bh.Size
		if bh.Type == block.RLE {
			wireSize = 1
		}
		if pos+wireSize > len(data) {
			return 0, block.ErrCorrupt
		}
		pos += wireSize

		if bh.Last {
			break
		}
	}

	if h.HasChecksum {
		pos += 4
	}
	return pos, nil
}

// DecodeFrame decodes one complete frame from the start of data into
// output, returning the number of decoded bytes written and the
// number of input bytes the frame consumed.
func DecodeFrame(data []byte, output []byte) (written int, consumed int, err error) {
	h, err := DecodeHeader(data)
	if err != nil {
		return 0, 0, err
	}
	pos := h.HeaderSize

	dec := block.NewDecoder()
	digest := checksum.New()

	for {
		if pos+zstdconst.SizeOfBlockHeader > len(data) {
			return 0, 0, block.ErrCorrupt
		}
		bh, err := block.DecodeHeader(data[pos:])
		if err != nil {
			return 0, 0, err
		}
		pos += zstdconst.SizeOfBlockHeader

		wireSize := bh.Size
		if bh.Type == block.RLE {
			wireSize = 1
		}
		if pos+wireSize > len(data) {
			return 0, 0, block.ErrCorrupt
		}
		payload := data[pos : pos+wireSize]

		n, err := dec.DecodeBlock(bh, payload, output, written)
		if err != nil {
			return 0, 0, err
		}
		digest.Write(output[written : written+n])
		written += n
		pos += wireSize

		if bh.Last {
			break
		}
	}

	if h.HasContentSize && int64(written) != h.ContentSize {
		return 0, 0, block.ErrCorrupt
	}

	if h.HasChecksum {
		if pos+4 > len(data) {
			return 0, 0, block.ErrCorrupt
		}
		want := binary.LittleEndian.Uint32(data[pos : pos+4])
		pos += 4
		if digest.Checksum32() != want {
			return 0, 0, ErrChecksumMismatch
		}
	}

	return written, pos, nil
}
