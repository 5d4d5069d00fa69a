package huff

import "github.com/elliotnunn/zstdgo/internal/bitio"

// CTable is a canonical Huffman encoding table: per-symbol code value
// and bit length.
type CTable struct {
	MaxBits uint
	Lengths []uint8
	Codes   []uint32
}

// BuildCTable constructs a depth-limited canonical table from a
// symbol histogram.
func BuildCTable(counts []uint32, maxBits uint) (*CTable, error) {
	lengths, err := Build(counts, maxBits)
	if err != nil {
		return nil, err
	}
	return &CTable{MaxBits: maxBits, Lengths: lengths, Codes: assignCodes(lengths, maxBits)}, nil
}

// EstimateCompressedSize returns ceil(sum(count[s]*length[s]) / 8),
// the unit property spec.md §8 checks against.
func (t *CTable) EstimateCompressedSize(counts []uint32) int {
	bitsTotal := 0
	for s, c := range counts {
		bitsTotal += int(c) * int(t.Lengths[s])
	}
	return (bitsTotal + 7) / 8
}

// Covers reports whether every non-zero-count symbol in counts has a
// non-zero length in the table, the condition spec.md §4.3 requires
// before a previous table can be reused.
func (t *CTable) Covers(counts []uint32) bool {
	for s, c := range counts {
		if c > 0 && (s >= len(t.Lengths) || t.Lengths[s] == 0) {
			return false
		}
	}
	return true
}

// Encode writes data's Huffman code into a forward bit stream, symbols
// processed in reverse so a BackwardReader over the result yields them
// back in original order (see package doc and DESIGN.md).
func (t *CTable) Encode(data []byte) []byte {
	bw := bitio.NewForwardWriter(nil)
	for i := len(data) - 1; i >= 0; i-- {
		s := data[i]
		bw.AddBits(uint64(t.Codes[s]), uint(t.Lengths[s]))
	}
	return bw.Flush()
}

// DTable is a flat decoding table of size 1<<TableLog: index by the
// next TableLog bits of the stream to get the symbol and the number of
// bits it actually consumed.
type DTable struct {
	TableLog uint
	Symbol   []uint8
	NumBits  []uint8
}

// BuildDTable fills a flat table from per-symbol lengths: a symbol
// with code value c and length l occupies the 1<<(tableLog-l) slots
// whose top l bits equal c.
func BuildDTable(lengths []uint8, maxBits uint) *DTable {
	tableLog := maxBits
	tableSize := 1 << tableLog
	codes := assignCodes(lengths, maxBits)

	d := &DTable{TableLog: tableLog, Symbol: make([]uint8, tableSize), NumBits: make([]uint8, tableSize)}
	for s, l := range lengths {
		if l == 0 {
			continue
		}
		width := 1 << (tableLog - uint(l))
		start := int(codes[s]) << (tableLog - uint(l))
		for i := 0; i < width; i++ {
			d.Symbol[start+i] = uint8(s)
			d.NumBits[start+i] = l
		}
	}
	return d
}

// DecodeOne reads a single symbol from br using the table.
func (d *DTable) DecodeOne(br *bitio.BackwardReader) uint8 {
	idx := br.PeekBits(d.TableLog)
	nb := uint(d.NumBits[idx])
	br.SkipBits(nb)
	return d.Symbol[idx]
}

// DecodeN decodes exactly n symbols from br into dst[:n].
func (d *DTable) DecodeN(br *bitio.BackwardReader, dst []byte) {
	for i := range dst {
		dst[i] = d.DecodeOne(br)
	}
}
