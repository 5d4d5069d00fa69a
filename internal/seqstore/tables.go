package seqstore

// Base values and extra-bit counts for the three sequence code
// alphabets, spec.md §4.5's OFFSET_CODES_BASE / MATCH_LENGTH_BASE /
// LITERALS_LENGTH_BASE. Offset codes need no table: base = 1<<code,
// extraBits = code.

var literalsLengthBase = [36]uint32{
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
	16, 18, 20, 22, 24, 28, 32, 40, 48, 64, 128, 256, 512, 1024, 2048, 4096,
	8192, 16384, 32768, 65536,
}

var literalsLengthExtraBits = [36]uint8{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	1, 1, 1, 1, 2, 2, 3, 3, 4, 6, 7, 8, 9, 10, 11, 12,
	13, 14, 15, 16,
}

var matchLengthBase = [53]uint32{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18,
	19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31, 32, 33, 34,
	35, 37, 39, 41, 43, 47, 51, 59, 67, 83, 99, 131, 259, 515, 1027, 2051,
	4099, 8195, 16387, 32771, 65539,
}

var matchLengthExtraBits = [53]uint8{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	1, 1, 1, 1, 2, 2, 3, 3, 4, 4, 5, 7, 8, 9, 10, 11,
	12, 13, 14, 15, 16,
}

// Predefined FSE distributions, spec.md §4.5 "PREDEFINED loads a
// hard-coded table". Each channel's accuracy log is fixed independent
// of the channel's max table log used for COMPRESSED mode.
var (
	defaultLiteralsLengthDist = []int32{
		4, 3, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 1, 1, 1,
		2, 2, 2, 2, 2, 2, 2, 2, 2, 3, 2, 1, 1, 1, 1, 1,
		-1, -1, -1, -1,
	}
	defaultLiteralsLengthLog uint = 6

	defaultMatchLengthDist = []int32{
		1, 4, 3, 2, 2, 2, 2, 2, 2, 1, 1, 1, 1, 1, 1, 1,
		1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
		1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, -1, -1,
		-1, -1, -1, -1, -1,
	}
	defaultMatchLengthLog uint = 6

	defaultOffsetCodeDist = []int32{
		1, 1, 1, 1, 1, 1, 2, 2, 2, 1, 1, 1, 1, 1, 1, 1,
		1, 1, 1, 1, 1, 1, 1, 1, -1, -1, -1, -1, -1,
	}
	defaultOffsetCodeLog uint = 5
)

func llCodeFor(v uint32) (code uint8, extra uint32, extraBits uint) {
	for c := len(literalsLengthBase) - 1; c >= 0; c-- {
		if v >= literalsLengthBase[c] {
			return uint8(c), v - literalsLengthBase[c], uint(literalsLengthExtraBits[c])
		}
	}
	return 0, 0, 0
}

func mlCodeFor(v uint32) (code uint8, extra uint32, extraBits uint) {
	for c := len(matchLengthBase) - 1; c >= 0; c-- {
		if v >= matchLengthBase[c] {
			return uint8(c), v - matchLengthBase[c], uint(matchLengthExtraBits[c])
		}
	}
	return 0, 0, 0
}

func offCodeFor(offset uint32) (code uint8, extra uint32, extraBits uint) {
	c := highBit32(offset)
	return uint8(c), offset - (1 << c), uint(c)
}

func highBit32(v uint32) uint {
	n := uint(0)
	for v > 1 {
		v >>= 1
		n++
	}
	return n
}
