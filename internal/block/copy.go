package block

// dec32 and dec64 are the head-copy correction tables from spec.md
// §4.5's "Match-copy execution": for offsets below 8, the first 8
// output bytes must be written one at a time (actually two groups of
// four) before the 8-byte chunked copy below can safely treat source
// and destination as non-overlapping.
var dec32 = [8]uint32{4, 1, 2, 1, 4, 4, 4, 4}
var dec64 = [8]int32{0, 0, 0, -1, 0, 1, 2, 3}

// copyMatch writes matchLength bytes to output[dst:] by replaying the
// pattern starting offset bytes earlier, handling the case where the
// source and destination ranges overlap (offset < matchLength). The
// caller must have already checked dst-offset >= 0 and
// dst+matchLength <= len(output).
func copyMatch(output []byte, dst int, offset uint32, matchLength uint32) {
	match := dst - int(offset)
	end := dst + int(matchLength)

	if offset < 8 && matchLength >= 8 {
		for i := 0; i < 4; i++ {
			output[dst+i] = output[match+i]
		}
		match += int(dec32[offset])
		for i := 0; i < 4; i++ {
			output[dst+4+i] = output[match+i]
		}
		match -= int(dec64[offset])
		dst += 8
	}

	for dst+8 <= end {
		copy(output[dst:dst+8], output[match:match+8])
		dst += 8
		match += 8
	}
	for dst < end {
		output[dst] = output[match]
		dst++
		match++
	}
}
