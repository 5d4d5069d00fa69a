package seqstore

import (
	"github.com/elliotnunn/zstdgo/internal/bitio"
	"github.com/elliotnunn/zstdgo/internal/fse"
)

// ChooseOffsetCode picks the smallest rawOffset (FSE offset symbol's
// decoded value) that resolveOffset would turn back into actualOffset
// given the current repeated-offset state, preferring a repeat code
// over a literal one; it does not mutate offsets.
func ChooseOffsetCode(offsets Offsets, actualOffset uint32, litLength uint32) uint32 {
	for _, cand := range [3]uint32{1, 2, 3} {
		trial := offsets
		if resolveOffset(&trial, cand, litLength) == actualOffset {
			return cand
		}
	}
	return actualOffset + 3
}

type encodedSeq struct {
	llCode, mlCode, offSymbol             uint8
	llExtra, mlExtra, offExtra            uint32
	llExtraBits, mlExtraBits, offExtraBits uint
}

// Prepare converts raw (literalsLength, matchLength, offset) sequences
// into their code/extra-bits form, applying repeated-offset resolution
// in sequence order (the encode-side mirror of spec.md §4.5 step 3) so
// offsets ends up in the state the decoder will reach after replaying
// the same sequences.
func Prepare(seqs []Sequence, offsets *Offsets) []encodedSeq {
	out := make([]encodedSeq, len(seqs))
	for i, s := range seqs {
		llCode, llExtra, llExtraBits := llCodeFor(s.LiteralsLength)
		mlCode, mlExtra, mlExtraBits := mlCodeFor(s.MatchLength)

		rawOffset := ChooseOffsetCode(*offsets, s.Offset, s.LiteralsLength)
		offSymbol, offExtra, offExtraBits := offCodeFor(rawOffset)
		resolveOffset(offsets, rawOffset, s.LiteralsLength)

		out[i] = encodedSeq{
			llCode: llCode, mlCode: mlCode, offSymbol: offSymbol,
			llExtra: llExtra, mlExtra: mlExtra, offExtra: offExtra,
			llExtraBits: llExtraBits, mlExtraBits: mlExtraBits, offExtraBits: offExtraBits,
		}
	}
	return out
}

func allSame(vals []uint8) bool {
	for _, v := range vals[1:] {
		if v != vals[0] {
			return false
		}
	}
	return true
}

func buildPredefinedCTable(dist []int32, log uint) *fse.CTable {
	ct, err := fse.BuildCTable(dist, log)
	if err != nil {
		panic("seqstore: predefined distribution failed to build: " + err.Error())
	}
	return ct
}

func buildRLECTable(symbol uint8) *fse.CTable {
	norm := make([]int32, int(symbol)+1)
	norm[symbol] = 1
	ct, err := fse.BuildCTable(norm, 0)
	if err != nil {
		panic("seqstore: degenerate RLE table failed to build: " + err.Error())
	}
	return ct
}

// Encode renders a prepared sequence list into the wire format:
// count, mode descriptor, per-channel RLE bytes, then the interleaved
// bitstream written in the reverse order spec.md's REDESIGN FLAGS
// section calls out (see package doc).
func Encode(seqs []Sequence, offsets *Offsets) []byte {
	out := encodeCount(len(seqs))
	if len(seqs) == 0 {
		return out
	}

	prepared := Prepare(seqs, offsets)
	n := len(prepared)

	llCodes := make([]uint8, n)
	mlCodes := make([]uint8, n)
	offSymbols := make([]uint8, n)
	for i, p := range prepared {
		llCodes[i], mlCodes[i], offSymbols[i] = p.llCode, p.mlCode, p.offSymbol
	}

	var desc byte
	var rleBytes []byte
	var llCT, mlCT, offCT *fse.CTable

	if allSame(llCodes) {
		desc |= byte(RLEMode) << 6
		rleBytes = append(rleBytes, llCodes[0])
		llCT = buildRLECTable(llCodes[0])
	} else {
		desc |= byte(Predefined) << 6
		llCT = buildPredefinedCTable(defaultLiteralsLengthDist, defaultLiteralsLengthLog)
	}

	if allSame(offSymbols) {
		desc |= byte(RLEMode) << 4
		rleBytes = append(rleBytes, offSymbols[0])
		offCT = buildRLECTable(offSymbols[0])
	} else {
		desc |= byte(Predefined) << 4
		offCT = buildPredefinedCTable(defaultOffsetCodeDist, defaultOffsetCodeLog)
	}

	if allSame(mlCodes) {
		desc |= byte(RLEMode) << 2
		rleBytes = append(rleBytes, mlCodes[0])
		mlCT = buildRLECTable(mlCodes[0])
	} else {
		desc |= byte(Predefined) << 2
		mlCT = buildPredefinedCTable(defaultMatchLengthDist, defaultMatchLengthLog)
	}

	out = append(out, desc)
	out = append(out, rleBytes...)

	bw := bitio.NewForwardWriter(nil)

	llEnc := fse.NewEncoder(llCT, llCodes[n-1])
	mlEnc := fse.NewEncoder(mlCT, mlCodes[n-1])
	offEnc := fse.NewEncoder(offCT, offSymbols[n-1])

	writeExtra(bw, prepared[n-1].llExtra, prepared[n-1].llExtraBits)
	writeExtra(bw, prepared[n-1].mlExtra, prepared[n-1].mlExtraBits)
	writeExtra(bw, prepared[n-1].offExtra, prepared[n-1].offExtraBits)

	for i := n - 2; i >= 0; i-- {
		offEnc.Encode(bw, offSymbols[i])
		mlEnc.Encode(bw, mlCodes[i])
		llEnc.Encode(bw, llCodes[i])

		writeExtra(bw, prepared[i].llExtra, prepared[i].llExtraBits)
		writeExtra(bw, prepared[i].mlExtra, prepared[i].mlExtraBits)
		writeExtra(bw, prepared[i].offExtra, prepared[i].offExtraBits)
	}

	mlEnc.Flush(bw)
	offEnc.Flush(bw)
	llEnc.Flush(bw)

	out = append(out, bw.Flush()...)
	return out
}

func writeExtra(bw *bitio.ForwardWriter, v uint32, bits uint) {
	if bits == 0 {
		return
	}
	bw.AddBits(uint64(v), bits)
}
