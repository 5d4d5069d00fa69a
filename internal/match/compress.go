package match

import "github.com/elliotnunn/zstdgo/internal/seqstore"

// maxChainDefault bounds the hash-chain walk per position; it trades
// ratio for speed the way the teacher's FAST-strategy analogue would
// (a bounded, not exhaustive, search).
const maxChainDefault = 16

// Result is one block's literal/sequence split, ready for
// internal/literals and internal/seqstore to entropy-code.
type Result struct {
	Literals  []byte
	Sequences []seqstore.Sequence
}

// CompressBlock greedily parses data into literal runs and matches,
// per spec.md §4.6. offsets is read (never mutated) to bias the search
// toward cheaply-encodable repeated offsets; the actual repeated-
// offset substitution and rotation happens once, downstream, in
// seqstore.Prepare/Encode — this keeps the "does this offset match a
// repeat slot" logic in one place instead of duplicating it here.
func CompressBlock(data []byte, windowSize uint32, offsets seqstore.Offsets) Result {
	if len(data) < minMatchLen+hashBytes {
		return Result{Literals: append([]byte(nil), data...)}
	}

	f := NewFinder(data, HashLogFor(len(data)))
	var seqs []seqstore.Sequence
	literals := make([]byte, 0, len(data))

	pos, litStart := 0, 0
	limit := len(data) - hashBytes

	for pos <= limit {
		offset, length := bestMatchAt(f, pos, windowSize, offsets)
		if length < minMatchLen {
			f.Insert(pos)
			pos++
			continue
		}

		literals = append(literals, data[litStart:pos]...)
		seqs = append(seqs, seqstore.Sequence{
			LiteralsLength: uint32(pos - litStart),
			MatchLength:    length,
			Offset:         offset,
		})

		end := pos + int(length)
		for p := pos; p < end && p <= limit; p++ {
			f.Insert(p)
		}
		pos = end
		litStart = pos
	}

	literals = append(literals, data[litStart:]...)
	return Result{Literals: literals, Sequences: seqs}
}

// bestMatchAt prefers a match at one of the three repeated offsets
// over a hash-chain match that is at most one byte longer, since a
// repeat code costs far fewer bits than a literal offset.
func bestMatchAt(f *Finder, pos int, windowSize uint32, offsets seqstore.Offsets) (uint32, uint32) {
	chainOffset, chainLen := f.Find(pos, windowSize, maxChainDefault)

	bestOffset, bestLen := chainOffset, chainLen
	for _, rep := range offsets {
		if rep == 0 || uint32(pos) < rep || rep > windowSize {
			continue
		}
		l := f.MatchAt(pos-int(rep), pos)
		if l >= minMatchLen && l+1 >= bestLen {
			bestOffset, bestLen = rep, l
		}
	}
	return bestOffset, bestLen
}
