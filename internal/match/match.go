// Package match implements the FAST-strategy hash-chain match finder
// spec.md §4.6 describes: candidates are looked up by a 4-byte hash,
// chained so finding the longest match within the window costs a
// bounded walk rather than a full table rescan.
//
// No teacher precedent file exists for LZ77-style match finding (see
// DESIGN.md); the hash-chain structure and its multiplicative hash are
// the standard idiom for this class of compressor, expressed in the
// teacher's style (bounds checks before indexing, -1 sentinel rather
// than a pointer, no package-level mutable state).
package match

import "encoding/binary"

const (
	minMatchLen = 3
	hashBytes   = 4
)

// Finder is a hash-chain match table over one contiguous buffer
// (CompressBlock builds one per block, so matches never reach into an
// earlier block).
type Finder struct {
	hashLog uint
	head    []int32
	chain   []int32
	data    []byte
}

// NewFinder builds an empty match table sized for data. hashLog
// controls the table's bucket count (1<<hashLog); callers typically
// derive it from the input length (HashLogFor) so the table neither
// wastes memory on small inputs nor collides excessively on large ones.
func NewFinder(data []byte, hashLog uint) *Finder {
	f := &Finder{
		hashLog: hashLog,
		head:    make([]int32, 1<<hashLog),
		chain:   make([]int32, len(data)),
		data:    data,
	}
	for i := range f.head {
		f.head[i] = -1
	}
	return f
}

// HashLogFor picks a hash table size proportional to the input, capped
// to keep memory bounded for very large blocks.
func HashLogFor(n int) uint {
	log := uint(6)
	for (1 << log) < n && log < 20 {
		log++
	}
	if log > 17 {
		log = 17
	}
	return log
}

func (f *Finder) hashAt(pos int) uint32 {
	v := binary.LittleEndian.Uint32(f.data[pos : pos+4])
	return (v * 2654435761) >> (32 - f.hashLog)
}

// Insert records pos in its hash bucket's chain. A no-op near the end
// of the buffer where a full 4-byte hash key isn't available.
func (f *Finder) Insert(pos int) {
	if pos+hashBytes > len(f.data) {
		return
	}
	h := f.hashAt(pos)
	f.chain[pos] = f.head[h]
	f.head[h] = int32(pos)
}

// Find walks pos's hash chain (up to maxChain candidates, each at
// least windowSize bytes within reach) and returns the longest match's
// (offset, length). length is 0 if nothing reaches minMatchLen.
func (f *Finder) Find(pos int, windowSize uint32, maxChain int) (offset uint32, length uint32) {
	if pos+hashBytes > len(f.data) {
		return 0, 0
	}
	lo := pos - int(windowSize)
	cand := f.head[f.hashAt(pos)]
	for i := 0; cand >= 0 && i < maxChain; i++ {
		c := int(cand)
		if c < lo {
			break
		}
		if l := matchLength(f.data, c, pos); l > length {
			length = l
			offset = uint32(pos - c)
		}
		cand = f.chain[c]
	}
	if length < minMatchLen {
		return 0, 0
	}
	return offset, length
}

// MatchAt reports the length of the literal match between candidate
// and pos, for checking a specific (typically repeated) offset instead
// of walking the hash chain.
func (f *Finder) MatchAt(candidate, pos int) uint32 {
	if candidate < 0 || candidate >= pos {
		return 0
	}
	return matchLength(f.data, candidate, pos)
}

func matchLength(data []byte, a, b int) uint32 {
	n := 0
	limit := len(data) - b
	for n < limit && data[a+n] == data[b+n] {
		n++
	}
	return uint32(n)
}
