package huff

// assignCodes computes canonical code values from per-symbol lengths,
// per spec.md §4.4: process ranks from the longest length down to the
// shortest, handing out sequential values within a rank and halving
// the rolling value when moving to the next-shallower rank.
func assignCodes(lengths []uint8, maxBits uint) []uint32 {
	var rankCount [/*maxBits+2*/ 13]uint32
	for _, l := range lengths {
		rankCount[l]++
	}
	rankCount[0] = 0

	var rankStart [13]uint32
	min := uint32(0)
	for n := int(maxBits); n > 0; n-- {
		rankStart[n] = min
		min += rankCount[n]
		min >>= 1
	}

	codes := make([]uint32, len(lengths))
	cursor := rankStart
	for s, l := range lengths {
		if l == 0 {
			continue
		}
		codes[s] = cursor[l]
		cursor[l]++
	}
	return codes
}

// weightsFromLengths converts code lengths to the weight encoding
// spec.md §4.4 serializes: weight = maxBits+1-length, 0 for unused
// symbols. maxSymbol is the highest symbol with a non-zero length.
func weightsFromLengths(lengths []uint8, maxBits uint) (weights []uint8, maxSymbol int) {
	weights = make([]uint8, len(lengths))
	for s, l := range lengths {
		if l > 0 {
			weights[s] = uint8(maxBits+1) - l
			maxSymbol = s
		}
	}
	return weights[:maxSymbol+1], maxSymbol
}

// lengthsFromWeights is the inverse: recovers maxBits and per-symbol
// lengths from a decoded weight array, including the implicit last
// weight that completes the power-of-two sum (spec.md §4.4).
func lengthsFromWeights(weights []uint8) (lengths []uint8, maxBits uint, err error) {
	total := uint32(0)
	for _, w := range weights {
		if w > 0 {
			total += uint32(1) << (w - 1)
		}
	}
	if total == 0 {
		return nil, 0, ErrCorrupt
	}
	maxBits = uint(bits32Len(total))
	// the implicit last weight completes total to the next power of two
	nextPow := uint32(1) << maxBits
	rest := nextPow - total
	if rest == 0 {
		return nil, 0, ErrCorrupt
	}
	lastWeight := uint8(bits32Len(rest))

	lengths = make([]uint8, len(weights)+1)
	for s, w := range weights {
		if w > 0 {
			lengths[s] = uint8(maxBits+1) - w
		}
	}
	lengths[len(weights)] = uint8(maxBits+1) - lastWeight
	return lengths, maxBits, nil
}

func bits32Len(v uint32) uint8 {
	n := uint8(0)
	for v > 1 {
		v >>= 1
		n++
	}
	return n + 1
}
