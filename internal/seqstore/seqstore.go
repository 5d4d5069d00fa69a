// Package seqstore implements the zstd sequences section: per-channel
// FSE table modes, the interleaved three-state decode loop, repeated-
// offset resolution, and the mirror-image encode path. No teacher
// precedent file exists for entropy coding (see DESIGN.md); grounded
// directly on spec.md §4.5 and the REDESIGN FLAGS' ordering notes.
package seqstore

import (
	"encoding/binary"
	"errors"

	"github.com/elliotnunn/zstdgo/internal/bitio"
	"github.com/elliotnunn/zstdgo/internal/fse"
	"github.com/elliotnunn/zstdgo/internal/zstdconst"
)

// ErrCorrupt is returned for malformed sequence section data.
var ErrCorrupt = errors.New("seqstore: corrupt sequence section")

// Mode selects how a channel's FSE table is obtained.
type Mode uint8

const (
	Predefined Mode = iota
	RLEMode
	CompressedMode
	RepeatMode
)

// Sequence is a single decoded (or to-be-encoded) literalsLength/
// matchLength/offset triple.
type Sequence struct {
	LiteralsLength uint32
	MatchLength    uint32
	Offset         uint32
}

// Offsets is the 3-slot repeated-offset history, spec.md's "Repeated
// offsets" state, initialized to [1,4,8] at the start of a frame.
type Offsets [3]uint32

// NewOffsets returns the frame-initial repeated-offset triple.
func NewOffsets() Offsets {
	return Offsets{zstdconst.RepeatedOffsets[0], zstdconst.RepeatedOffsets[1], zstdconst.RepeatedOffsets[2]}
}

func decodeCount(data []byte) (count int, consumed int, err error) {
	if len(data) == 0 {
		return 0, 0, ErrCorrupt
	}
	b0 := data[0]
	switch {
	case b0 < 128:
		return int(b0), 1, nil
	case b0 < 255:
		if len(data) < 2 {
			return 0, 0, ErrCorrupt
		}
		return (int(b0-128) << 8) + int(data[1]), 2, nil
	default:
		if len(data) < 3 {
			return 0, 0, ErrCorrupt
		}
		v := int(binary.LittleEndian.Uint16(data[1:3]))
		return v + zstdconst.LongNumberOfSequences, 3, nil
	}
}

func encodeCount(n int) []byte {
	switch {
	case n < 128:
		return []byte{byte(n)}
	case n < 128+128*256:
		v := n
		return []byte{byte(128 + v>>8), byte(v)}
	default:
		v := n - zstdconst.LongNumberOfSequences
		return []byte{255, byte(v), byte(v >> 8)}
	}
}

func rleTable(symbol uint8) *fse.DTable {
	return &fse.DTable{
		Log2Size: 0,
		NewState: []uint16{0},
		NumBits:  []uint8{0},
		Symbol:   []uint8{symbol},
	}
}

func readChannelTable(mode Mode, data []byte, maxLog uint, defaultDist []int32, defaultLog uint, prev *fse.DTable) (*fse.DTable, int, error) {
	switch mode {
	case Predefined:
		t, err := fse.BuildDTable(defaultDist, defaultLog)
		return t, 0, err
	case RLEMode:
		if len(data) < 1 {
			return nil, 0, ErrCorrupt
		}
		return rleTable(data[0]), 1, nil
	case RepeatMode:
		if prev == nil {
			return nil, 0, ErrCorrupt
		}
		return prev, 0, nil
	case CompressedMode:
		norm, tableLog, n, err := fse.ReadNCount(data, maxSymbolForMaxLog(maxLog, len(defaultDist)))
		if err != nil {
			return nil, 0, err
		}
		if tableLog > maxLog {
			return nil, 0, ErrCorrupt
		}
		t, err := fse.BuildDTable(norm, tableLog)
		return t, n, err
	}
	return nil, 0, ErrCorrupt
}

func maxSymbolForMaxLog(maxLog uint, numDefault int) int {
	switch {
	case maxLog == zstdconst.OffsetCodeTableLog:
		return zstdconst.OffsetCodeMaxCode
	case numDefault == zstdconst.MatchLengthMaxCode+1:
		return zstdconst.MatchLengthMaxCode
	default:
		return zstdconst.LiteralsLengthMaxCode
	}
}

// Decoded holds one decode pass's results plus the tables installed
// afterward, so the caller (package block) can persist them across
// blocks for REPEAT mode and carry Offsets across sequences within the
// frame.
type Decoded struct {
	Sequences []Sequence
	LLTable   *fse.DTable
	MLTable   *fse.DTable
	OffTable  *fse.DTable
}

// Decode parses the sequences section (count, mode descriptor, per-
// channel tables, and the interleaved bitstream) and returns the
// decoded sequence list plus the offsets triple as mutated by
// repeated-offset resolution.
func Decode(data []byte, prevLL, prevML, prevOff *fse.DTable, offsets *Offsets) (Decoded, int, error) {
	count, n, err := decodeCount(data)
	if err != nil {
		return Decoded{}, 0, err
	}
	if count == 0 {
		return Decoded{Sequences: nil, LLTable: prevLL, MLTable: prevML, OffTable: prevOff}, n, nil
	}

	if len(data) < n+1 {
		return Decoded{}, 0, ErrCorrupt
	}
	desc := data[n]
	n++
	llMode := Mode((desc >> 6) & 3)
	offMode := Mode((desc >> 4) & 3)
	mlMode := Mode((desc >> 2) & 3)

	llTable, used, err := readChannelTable(llMode, data[n:], zstdconst.LiteralsLengthTableLog, defaultLiteralsLengthDist, defaultLiteralsLengthLog, prevLL)
	if err != nil {
		return Decoded{}, 0, err
	}
	n += used

	offTable, used, err := readChannelTable(offMode, data[n:], zstdconst.OffsetCodeTableLog, defaultOffsetCodeDist, defaultOffsetCodeLog, prevOff)
	if err != nil {
		return Decoded{}, 0, err
	}
	n += used

	mlTable, used, err := readChannelTable(mlMode, data[n:], zstdconst.MatchLengthTableLog, defaultMatchLengthDist, defaultMatchLengthLog, prevML)
	if err != nil {
		return Decoded{}, 0, err
	}
	n += used

	br, err := bitio.NewBackwardReader(data[n:])
	if err != nil {
		return Decoded{}, 0, err
	}

	llDec := fse.NewDecoder(llTable, br)
	offDec := fse.NewDecoder(offTable, br)
	mlDec := fse.NewDecoder(mlTable, br)

	seqs := make([]Sequence, count)
	for i := 0; i < count; i++ {
		llCode := llDec.PeekSymbol()
		offCode := offDec.PeekSymbol()
		mlCode := mlDec.PeekSymbol()

		offsetBits := uint(offCode)
		offExtra := uint32(br.ReadBits(offsetBits))
		rawOffset := (uint32(1) << offCode) + offExtra

		var mlExtra uint32
		if int(mlCode) < len(matchLengthBase) {
			mlExtra = uint32(br.ReadBits(uint(matchLengthExtraBits[mlCode])))
		} else {
			return Decoded{}, 0, ErrCorrupt
		}
		matchLength := matchLengthBase[mlCode] + mlExtra

		var llExtra uint32
		if int(llCode) < len(literalsLengthBase) {
			llExtra = uint32(br.ReadBits(uint(literalsLengthExtraBits[llCode])))
		} else {
			return Decoded{}, 0, ErrCorrupt
		}
		litLength := literalsLengthBase[llCode] + llExtra

		resolved := resolveOffset(offsets, rawOffset, litLength)
		seqs[i] = Sequence{LiteralsLength: litLength, MatchLength: matchLength, Offset: resolved}

		if i != count-1 {
			llDec.Update(br)
			mlDec.Update(br)
			offDec.Update(br)
		}
	}

	return Decoded{Sequences: seqs, LLTable: llTable, MLTable: mlTable, OffTable: offTable}, len(data), nil
}

// resolveOffset implements spec.md §4.5 step 3. spec.md branches on
// offsetCode (the raw FSE symbol) being >1, but offsetCode<=1 is
// exactly the set of symbols whose decoded value rawOffset=(1<<
// offsetCode)+extra lands in {1,2,3} (every offsetCode>=2 decodes to
// >=4), so branching on rawOffset>3 is equivalent and avoids needing
// the symbol separately. rawOffset in {1,2,3} selects a repeated
// offset (biased by one slot when litLength is zero, with "index 3"
// hitting the "slot 0 minus 1" special case); above 3 it is literal
// (offset = rawOffset - 3).
func resolveOffset(offsets *Offsets, rawOffset uint32, litLength uint32) uint32 {
	if rawOffset > 3 {
		offset := rawOffset - 3
		offsets[2] = offsets[1]
		offsets[1] = offsets[0]
		offsets[0] = offset
		return offset
	}

	idx := int(rawOffset) - 1
	if litLength == 0 {
		idx++
	}

	var resolved uint32
	switch idx {
	case 0:
		resolved = offsets[0]
	case 1:
		resolved = offsets[1]
	case 2:
		resolved = offsets[2]
	case 3:
		resolved = offsets[0] - 1
	}
	if resolved == 0 {
		resolved = 1
	}

	if !(idx == 0 && litLength != 0) {
		switch idx {
		case 1:
			offsets[1] = offsets[0]
			offsets[0] = resolved
		case 2:
			offsets[2] = offsets[1]
			offsets[1] = offsets[0]
			offsets[0] = resolved
		case 3:
			offsets[2] = offsets[1]
			offsets[1] = offsets[0]
			offsets[0] = resolved
		}
	}
	return resolved
}
