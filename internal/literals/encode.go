package literals

import (
	"github.com/elliotnunn/zstdgo/internal/huff"
)

const huffmanMaxBits = 11

// EncodeResult is the outcome of compressing one literals section: the
// section bytes ready to place in the block, and the Huffman table now
// installed (nil if the section carries no table, e.g. RAW/RLE).
type EncodeResult struct {
	Encoded []byte
	Table   *huff.CTable
}

// Encode implements spec.md §4.3's encode-side heuristics. prevTable
// is the table currently installed (nil if none); allowCompression is
// false when the caller's strategy has already decided to decline
// entropy coding for this block.
func Encode(data []byte, prevTable *huff.CTable, allowCompression bool) EncodeResult {
	if len(data) == 0 {
		return rawResult(data)
	}
	if len(data) <= 63 || !allowCompression {
		return rawResult(data)
	}

	var counts [256]uint32
	for _, b := range data {
		counts[b]++
	}
	maxSymbol := 0
	largestCount := uint32(0)
	for s, c := range counts {
		if c > 0 {
			maxSymbol = s
		}
		if c > largestCount {
			largestCount = c
		}
	}

	if largestCount == uint32(len(data)) {
		return rleResult(data[0], len(data))
	}
	if largestCount <= uint32(len(data)>>7)+4 {
		return rawResult(data)
	}

	histogram := counts[:maxSymbol+1]
	fresh, err := huff.BuildCTable(histogram, huffmanMaxBits)
	if err != nil {
		return rawResult(data)
	}

	table := fresh
	treeless := false
	if prevTable != nil && prevTable.Covers(histogram) {
		reuseSmall := len(data) <= 1024
		freshCost := fresh.EstimateCompressedSize(histogram) + len(huff.SerializeTable(fresh))
		reuseCost := prevTable.EstimateCompressedSize(histogram)
		if reuseSmall || reuseCost <= freshCost {
			table = prevTable
			treeless = true
		}
	}

	singleStream := len(data) < maxSingleStreamSize
	body, regeneratedSize, compressedSize := encodeBody(data, table, treeless, singleStream)

	h := header{
		typ:             pickCompressedType(treeless),
		singleStream:    singleStream,
		regeneratedSize: regeneratedSize,
		compressedSize:  compressedSize,
	}
	if !fitsFormat(regeneratedSize, compressedSize, singleStream) {
		singleStream = false
		body, regeneratedSize, compressedSize = encodeBody(data, table, treeless, singleStream)
		h.singleStream = false
		h.regeneratedSize = regeneratedSize
		h.compressedSize = compressedSize
	}
	h.headerSize, _ = pickSizeFormat(regeneratedSize, compressedSize, h.singleStream)

	out := append(encodeHeader(h), body...)
	var outTable *huff.CTable
	if !treeless {
		outTable = table
	} else {
		outTable = prevTable
	}
	return EncodeResult{Encoded: out, Table: outTable}
}

func pickCompressedType(treeless bool) BlockType {
	if treeless {
		return Treeless
	}
	return Compressed
}

func fitsFormat(regen, comp int, singleStream bool) bool {
	if singleStream {
		return regen < 1024 && comp < 1024
	}
	return true
}

func pickSizeFormat(regen, comp int, singleStream bool) (headerSize int, width uint) {
	switch {
	case singleStream, regen < 1024 && comp < 1024:
		return 3, 10
	case regen < 16384 && comp < 16384:
		return 4, 14
	default:
		return 5, 18
	}
}

func encodeBody(data []byte, table *huff.CTable, treeless bool, singleStream bool) (body []byte, regeneratedSize, compressedSize int) {
	var payload []byte
	if singleStream {
		payload = table.Encode(data)
	} else {
		payload = encodeFourStreams(data, table)
	}

	if treeless {
		body = payload
	} else {
		body = append(huff.SerializeTable(table), payload...)
	}
	return body, len(data), len(body)
}

func encodeFourStreams(data []byte, table *huff.CTable) []byte {
	segSize := (len(data) + 3) / 4
	bounds := [5]int{0, segSize, 2 * segSize, 3 * segSize, len(data)}
	var streams [4][]byte
	for i := range streams {
		lo, hi := bounds[i], bounds[i+1]
		if hi < lo {
			hi = lo
		}
		streams[i] = table.Encode(data[lo:hi])
	}

	out := make([]byte, 6, 6+len(streams[0])+len(streams[1])+len(streams[2])+len(streams[3]))
	out[0], out[1] = byte(len(streams[0])), byte(len(streams[0])>>8)
	out[2], out[3] = byte(len(streams[1])), byte(len(streams[1])>>8)
	out[4], out[5] = byte(len(streams[2])), byte(len(streams[2])>>8)
	for _, s := range streams {
		out = append(out, s...)
	}
	return out
}

func rawResult(data []byte) EncodeResult {
	h := header{typ: Raw, singleStream: true, regeneratedSize: len(data)}
	h.headerSize = rawHeaderSize(len(data))
	out := append(encodeHeader(h), data...)
	return EncodeResult{Encoded: out}
}

func rleResult(b byte, n int) EncodeResult {
	h := header{typ: RLE, singleStream: true, regeneratedSize: n}
	h.headerSize = rawHeaderSize(n)
	out := append(encodeHeader(h), b)
	return EncodeResult{Encoded: out}
}

func rawHeaderSize(n int) int {
	switch {
	case n < 32:
		return 1
	case n < 4096:
		return 2
	default:
		return 3
	}
}
