// Package huff implements the canonical, depth-limited Huffman coder
// spec.md §4.4 describes for the literals section: tree construction
// by repeated merging of the two lightest frontiers, code-length
// capping via cost accumulation/repayment when the natural tree
// exceeds the maximum code length, canonical code assignment, and
// weight-table serialization (FSE-compressed or raw 4-bit). Like
// package fse, this has no teacher precedent file (the teacher never
// builds an entropy coder); the canonical-code-assignment technique is
// grounded on the bit-counting idiom in the teacher's deleted
// internal/flate fork of stdlib compress/flate, generalized here to
// zstd's weight-based (not length-based) canonical form. See DESIGN.md.
package huff

import (
	"container/heap"
	"errors"
	"math/bits"
)

// ErrCorrupt is returned for malformed Huffman tables or bitstreams.
var ErrCorrupt = errors.New("huff: corrupt table or stream")

// treeNode is a leaf (symbol >= 0) or internal node (symbol == -1) of
// the working Huffman tree.
type treeNode struct {
	count       uint32
	symbol      int16 // -1 for internal nodes
	left, right *treeNode
	depth       uint8
}

type nodeHeap []*treeNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].count != h[j].count {
		return h[i].count < h[j].count
	}
	// Tie-break favoring leaves over internal nodes, and lower symbol
	// values first, so construction is fully deterministic.
	li, lj := h[i].symbol >= 0, h[j].symbol >= 0
	if li != lj {
		return li
	}
	return h[i].symbol < h[j].symbol
}
func (h nodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)        { *h = append(*h, x.(*treeNode)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Build computes per-symbol code lengths from a histogram, depth-limited
// to maxBits (<=12; the literals encoder passes 11, and weight tables
// are FSE-coded, not built here). counts is indexed by symbol value; symbols with a zero
// count get length 0 (unused).
func Build(counts []uint32, maxBits uint) (lengths []uint8, err error) {
	lengths = make([]uint8, len(counts))

	h := make(nodeHeap, 0, len(counts))
	for s, c := range counts {
		if c > 0 {
			h = append(h, &treeNode{count: c, symbol: int16(s)})
		}
	}
	if len(h) == 0 {
		return lengths, nil
	}
	if len(h) == 1 {
		lengths[h[0].symbol] = 1
		return lengths, nil
	}

	heap.Init(&h)
	for h.Len() > 1 {
		a := heap.Pop(&h).(*treeNode)
		b := heap.Pop(&h).(*treeNode)
		heap.Push(&h, &treeNode{count: a.count + b.count, symbol: -1, left: a, right: b})
	}
	root := h[0]

	var leaves []*treeNode
	var walk func(n *treeNode, depth uint8)
	walk = func(n *treeNode, depth uint8) {
		if n.symbol >= 0 {
			n.depth = depth
			if depth == 0 {
				depth = 1 // the single-symbol case is handled above; guard anyway
			}
			lengths[n.symbol] = depth
			leaves = append(leaves, n)
			return
		}
		walk(n.left, depth+1)
		walk(n.right, depth+1)
	}
	walk(root, 0)

	setMaxHeight(lengths, leaves, maxBits)
	return lengths, nil
}

// setMaxHeight caps code lengths at maxBits, redistributing the
// resulting cost across shallower leaves via the accumulate-then-repay
// procedure spec.md's Design Notes call out by name: clipped leaves
// pay a cost in probability mass, repaid by selectively deepening
// shallower leaves (preferring those whose count doubled still beats
// the clipped leaf's count), tracked rank-by-rank via a rankLast
// stack.
func setMaxHeight(lengths []uint8, leaves []*treeNode, maxBits uint) {
	largestBits := uint(0)
	for _, l := range leaves {
		if uint(lengths[l.symbol]) > largestBits {
			largestBits = uint(lengths[l.symbol])
		}
	}
	if largestBits <= maxBits {
		return
	}

	// Sort leaves ascending by length (so index 0 is shallowest),
	// matching the reference's ascending-by-count/length leaf order.
	sortLeavesByLength(leaves, lengths)

	n := len(leaves) - 1
	baseCost := int32(1) << (largestBits - maxBits)
	totalCost := int32(0)
	for n >= 0 && uint(lengths[leaves[n].symbol]) > maxBits {
		totalCost += baseCost - (int32(1) << (largestBits - uint(lengths[leaves[n].symbol])))
		lengths[leaves[n].symbol] = uint8(maxBits)
		n--
	}
	for n >= 0 && uint(lengths[leaves[n].symbol]) == maxBits {
		n--
	}
	totalCost >>= (largestBits - maxBits)

	const noSymbol = -1
	rankLast := make([]int, maxBits+2)
	for i := range rankLast {
		rankLast[i] = noSymbol
	}

	currentNbBits := maxBits
	for pos := n; pos >= 0; pos-- {
		if uint(lengths[leaves[pos].symbol]) >= currentNbBits {
			continue
		}
		currentNbBits = uint(lengths[leaves[pos].symbol])
		rankLast[maxBits-currentNbBits] = pos
	}

	countAt := func(pos int) uint32 {
		if pos < 0 {
			return 0
		}
		return leaves[pos].count
	}

	for totalCost > 0 {
		nBitsToDecrease := uint(bits.Len32(uint32(totalCost)))
		for ; nBitsToDecrease > 1; nBitsToDecrease-- {
			highPos := rankLast[nBitsToDecrease]
			lowPos := rankLast[nBitsToDecrease-1]
			if highPos == noSymbol {
				continue
			}
			if lowPos == noSymbol {
				break
			}
			if countAt(highPos) <= 2*countAt(lowPos) {
				break
			}
		}
		for nBitsToDecrease <= maxBits && rankLast[nBitsToDecrease] == noSymbol {
			nBitsToDecrease++
		}
		totalCost -= int32(1) << (nBitsToDecrease - 1)
		if rankLast[nBitsToDecrease-1] == noSymbol {
			rankLast[nBitsToDecrease-1] = rankLast[nBitsToDecrease]
		}
		lengths[leaves[rankLast[nBitsToDecrease]].symbol]++
		if rankLast[nBitsToDecrease] == 0 {
			rankLast[nBitsToDecrease] = noSymbol
		} else {
			rankLast[nBitsToDecrease]--
			if uint(lengths[leaves[rankLast[nBitsToDecrease]].symbol]) != maxBits-nBitsToDecrease {
				rankLast[nBitsToDecrease] = noSymbol
			}
		}
	}

	for totalCost < 0 {
		if rankLast[1] == noSymbol {
			for uint(lengths[leaves[n].symbol]) == maxBits {
				n--
			}
			lengths[leaves[n+1].symbol]--
			rankLast[1] = n + 1
			totalCost++
			continue
		}
		lengths[leaves[rankLast[1]+1].symbol]--
		rankLast[1]++
		totalCost++
	}
}

func sortLeavesByLength(leaves []*treeNode, lengths []uint8) {
	for i := 1; i < len(leaves); i++ {
		for j := i; j > 0; j-- {
			li, lj := lengths[leaves[j].symbol], lengths[leaves[j-1].symbol]
			if li > lj || (li == lj && leaves[j].count > leaves[j-1].count) {
				break
			}
			leaves[j], leaves[j-1] = leaves[j-1], leaves[j]
		}
	}
}
