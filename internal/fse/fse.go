// Package fse implements Finite-State Entropy: the ANS-family entropy
// coder Zstandard uses for sequence codes and for compressing Huffman
// weight tables. It is grounded directly on spec.md §3/§4.5's
// description of the table model and the stepped-walk table expansion;
// there is no teacher precedent file for this (the teacher repo never
// touches entropy coding), so the structure follows the spec's own
// field names (Log2Size, NewState, NumberOfBits, Symbol) rather than
// any one reference implementation's internal layout.
package fse

import (
	"errors"
	"math/bits"
)

// ErrCorrupt is returned for any malformed FSE table or bitstream.
var ErrCorrupt = errors.New("fse: corrupt table or stream")

const maxTableLog = 20 // generous ceiling; callers enforce the tighter per-channel logs

// highBit returns the position of v's highest set bit (v must be > 0).
func highBit(v uint32) uint { return uint(bits.Len32(v) - 1) }

// Count builds a histogram of src over symbols [0,maxSymbolValue],
// returning the observed maxSymbolValue (trimmed down if trailing
// symbols never occur) and per-symbol counts.
func Count(src []byte, maxSymbolValue int) (counts []int32, actualMax int) {
	counts = make([]int32, maxSymbolValue+1)
	for _, b := range src {
		counts[b]++
	}
	actualMax = maxSymbolValue
	for actualMax > 0 && counts[actualMax] == 0 {
		actualMax--
	}
	return counts[:actualMax+1], actualMax
}

// OptimalTableLog picks a table log no larger than maxTableLog that
// still gives every non-zero symbol a representable probability,
// matching the standard FSE heuristic.
func OptimalTableLog(maxLog uint, srcSize int, maxSymbolValue int) uint {
	minBitsSrc := highBit(uint32(srcSize-1)) + 1
	minBitsSym := highBit(uint32(maxSymbolValue)) + 2
	minBits := minBitsSrc
	if minBitsSym < minBits {
		minBits = minBitsSym
	}
	log := maxLog
	if minBits < log {
		log = minBits
	}
	if log < 5 {
		log = 5
	}
	if log > maxTableLog {
		log = maxTableLog
	}
	return log
}
