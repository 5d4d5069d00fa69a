// Package frame implements the zstd frame layer: magic number and
// frame header codec, the block loop that drives package block across
// a whole frame, and checksum trailer integration. Grounded on
// spec.md §4.1 and §4.7; no teacher precedent file covers frame
// framing (see DESIGN.md).
package frame

import (
	"encoding/binary"
	"errors"

	"github.com/elliotnunn/zstdgo/internal/zstdconst"
)

// ErrBadMagic is returned when the input doesn't start with a
// recognized zstd frame magic number.
var ErrBadMagic = errors.New("frame: not a zstd frame")

// ErrLegacyV07 is the specific diagnostic for the v0.7 magic number.
var ErrLegacyV07 = errors.New("frame: zstd v0.7 frames are not supported")

// ErrCorrupt is returned for malformed frame headers.
var ErrCorrupt = errors.New("frame: corrupt frame header")

// ErrDictionary is returned when a frame declares a non-zero
// dictionary id; custom dictionaries are out of scope.
var ErrDictionary = errors.New("frame: custom dictionaries not supported")

// ErrWindowTooLarge is returned when a frame's window exceeds this
// decoder's supported maximum.
var ErrWindowTooLarge = errors.New("frame: window size exceeds supported maximum")

// Header is a parsed (or to-be-written) frame header.
type Header struct {
	WindowSize      uint64
	ContentSize     int64 // -1 if unknown
	HasContentSize  bool
	HasChecksum     bool
	SingleSegment   bool
	HeaderSize      int
}

// DecodeHeader parses the magic number and frame header starting at
// data[0], per spec.md §4.1.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < 4 {
		return Header{}, ErrCorrupt
	}
	magic := binary.LittleEndian.Uint32(data[0:4])
	switch magic {
	case zstdconst.MagicNumber:
	case zstdconst.MagicSkippableLegacy:
		return Header{}, ErrLegacyV07
	default:
		return Header{}, ErrBadMagic
	}

	if len(data) < 5 {
		return Header{}, ErrCorrupt
	}
	descriptor := data[4]
	contentSizeFlag := descriptor >> 6
	singleSegment := descriptor&(1<<5) != 0
	hasChecksum := descriptor&(1<<2) != 0
	dictIDFlag := descriptor & 3

	if dictIDFlag != 0 {
		return Header{}, ErrDictionary
	}

	pos := 5
	h := Header{HasChecksum: hasChecksum, SingleSegment: singleSegment, ContentSize: -1}

	if !singleSegment {
		if len(data) < pos+1 {
			return Header{}, ErrCorrupt
		}
		wd := data[pos]
		pos++
		exponent := uint(wd >> 3)
		mantissa := uint64(wd & 7)
		base := uint64(1) << (10 + exponent)
		h.WindowSize = base + (base/8)*mantissa
	}

	var fieldSize int
	switch contentSizeFlag {
	case 0:
		if singleSegment {
			fieldSize = 1
		} else {
			fieldSize = 0
		}
	case 1:
		fieldSize = 2
	case 2:
		fieldSize = 4
	case 3:
		fieldSize = 8
	}

	if fieldSize > 0 {
		if len(data) < pos+fieldSize {
			return Header{}, ErrCorrupt
		}
		var v uint64
		switch fieldSize {
		case 1:
			v = uint64(data[pos])
		case 2:
			v = uint64(binary.LittleEndian.Uint16(data[pos : pos+2])) + 256
		case 4:
			v = uint64(binary.LittleEndian.Uint32(data[pos : pos+4]))
		case 8:
			v = binary.LittleEndian.Uint64(data[pos : pos+8])
		}
		h.ContentSize = int64(v)
		h.HasContentSize = true
		pos += fieldSize
	}

	if singleSegment {
		h.WindowSize = uint64(h.ContentSize)
		if h.WindowSize == 0 {
			h.WindowSize = uint64(zstdconst.MaxBlockSize)
		}
	}
	if h.WindowSize > zstdconst.MaxWindowSize {
		return Header{}, ErrWindowTooLarge
	}

	h.HeaderSize = pos
	return h, nil
}

// contentSizeDescriptor picks the content-size-descriptor field per
// spec.md §4.1's encode thresholds (256, 65792).
func contentSizeDescriptor(inputSize int) byte {
	switch {
	case inputSize < 256:
		return 0
	case inputSize < 65792:
		return 1
	case inputSize <= 1<<32-1:
		return 2
	default:
		return 3
	}
}

// EncodeHeader renders a frame header for an input of inputSize bytes
// compressed with the given window size. The encoder always sets the
// checksum flag and never emits a dictionary id, per spec.md §4.1.
func EncodeHeader(inputSize int, windowSize uint64) ([]byte, error) {
	buf := make([]byte, 0, 4+1+1+8)
	magicBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(magicBytes, zstdconst.MagicNumber)
	buf = append(buf, magicBytes...)

	singleSegment := windowSize >= uint64(inputSize)
	csFlag := contentSizeDescriptor(inputSize)

	descriptor := csFlag << 6
	if singleSegment {
		descriptor |= 1 << 5
	}
	descriptor |= 1 << 2 // checksum always on
	buf = append(buf, descriptor)

	if !singleSegment {
		wd, err := encodeWindowDescriptor(windowSize)
		if err != nil {
			return nil, err
		}
		buf = append(buf, wd)
	}

	switch csFlag {
	case 0:
		if singleSegment {
			buf = append(buf, byte(inputSize))
		}
	case 1:
		v := uint16(inputSize - 256)
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, v)
		buf = append(buf, b...)
	case 2:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(inputSize))
		buf = append(buf, b...)
	case 3:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, uint64(inputSize))
		buf = append(buf, b...)
	}

	return buf, nil
}

// ErrWindowUnrepresentable is returned when windowSize cannot be
// expressed as the exponent/mantissa window descriptor (below the
// minimum window log, or not of the form base + mantissa*(base/8)).
var ErrWindowUnrepresentable = errors.New("frame: window size not representable")

func encodeWindowDescriptor(windowSize uint64) (byte, error) {
	exponent := uint(0)
	for (uint64(1) << (10 + exponent + 1)) <= windowSize {
		exponent++
	}
	if exponent > 31 {
		return 0, ErrWindowUnrepresentable
	}
	base := uint64(1) << (10 + exponent)
	if windowSize < base {
		return 0, ErrWindowUnrepresentable
	}
	remainder := windowSize - base
	step := base / 8
	if step == 0 || remainder%step != 0 {
		return 0, ErrWindowUnrepresentable
	}
	mantissa := remainder / step
	if mantissa > 7 {
		return 0, ErrWindowUnrepresentable
	}
	if 10+exponent < zstdconst.MinWindowLog {
		return 0, ErrWindowUnrepresentable
	}
	return byte(exponent<<3) | byte(mantissa), nil
}
