package fse

// rtbTable nudges the proportional-rounding of small probabilities,
// matching the bias table in the reference FSE normalization.
var rtbTable = [8]uint64{0, 473195, 504333, 520860, 550000, 700000, 750000, 830000}

// NormalizeCount rescales raw symbol counts (counts[s] occurrences out
// of total observations) to normalized counts summing (in absolute
// value, since "-1" slots count as 1) to 1<<tableLog. A count of -1
// marks "present but below 1/range" per spec.md §3.
func NormalizeCount(counts []int32, tableLog uint, total int) []int32 {
	tableSize := int32(1) << tableLog
	norm := make([]int32, len(counts))
	if total <= 0 {
		return norm
	}

	lowThreshold := int32(total) >> tableLog
	stillToDistribute := tableSize
	var largest int
	var largestP int32

	const scale = 62
	step := (uint64(1) << 62) / uint64(total)

	for s, c := range counts {
		if c == 0 {
			continue
		}
		if c == int32(total) {
			// degenerate: caller should have chosen RLE encoding instead.
			norm[s] = tableSize
			return norm
		}
		if c <= lowThreshold {
			norm[s] = -1
			stillToDistribute--
			continue
		}
		scaled := (uint64(c) * step) >> (scale - tableLog)
		proba := int32(scaled)
		if proba < 8 {
			exact := uint64(c) * step
			rest := exact - (uint64(proba) << (scale - tableLog))
			vstep := uint64(1) << (scale - tableLog - 20)
			if rest > vstep*rtbTable[proba] {
				proba++
			}
		}
		norm[s] = proba
		stillToDistribute -= proba
		if proba > largestP {
			largestP = proba
			largest = s
		}
	}

	if stillToDistribute != 0 {
		if -stillToDistribute >= norm[largest]>>1 {
			// Matches the reference FSE_normalizeCount's own trigger for
			// its FSE_normalizeM2 fallback: correcting away more than
			// half of the largest bucket in one step is the rare corner
			// case. Rather than port that second normalization pass, we
			// spread the remainder across every positive bucket instead,
			// which keeps the invariant (sum==tableSize) with much less
			// machinery; TestSpreadRemainderPreservesInvariant and
			// TestSpreadRemainderTerminatesWhenInfeasible exercise it
			// directly.
			spreadRemainder(norm, stillToDistribute)
		} else {
			norm[largest] += stillToDistribute
		}
	}
	return norm
}

// spreadRemainder adds (or removes, for a negative remainder) 1 from
// each positive bucket in turn until remainder is absorbed. A bucket
// never drops below 1: only a -1 ("low probability") slot or the
// floor itself would make it non-positive, and a zero-weight slot
// must stay unused. If every positive bucket is already at that floor
// with remainder still negative, there is no valid redistribution
// left; rather than loop forever, whatever remains is dumped onto a
// single bucket, which keeps the sum at tableSize but can push that
// bucket to zero or below — a state NormalizeCount's inputs should
// never produce.
func spreadRemainder(norm []int32, remainder int32) {
	for remainder != 0 {
		progressed := false
		for i := range norm {
			if remainder == 0 {
				break
			}
			if norm[i] <= 0 {
				continue
			}
			if remainder > 0 {
				norm[i]++
				remainder--
				progressed = true
			} else if norm[i] > 1 {
				norm[i]--
				remainder++
				progressed = true
			}
		}
		if !progressed {
			for i := range norm {
				if norm[i] > 0 {
					norm[i] += remainder
					remainder = 0
					break
				}
			}
			break
		}
	}
}
