package fse

import "github.com/elliotnunn/zstdgo/internal/bitio"

// DTable is the decoding table spec.md §3 describes: for each of the
// 1<<Log2Size states, the symbol it decodes to and the state-refresh
// parameters.
type DTable struct {
	Log2Size uint8
	NewState []uint16
	NumBits  []uint8
	Symbol   []uint8
}

// BuildDTable expands normalized counts into a decode table via the
// stepped walk spec.md §4.5 describes.
func BuildDTable(norm []int32, tableLog uint) (*DTable, error) {
	tableSize := 1 << tableLog
	t := &DTable{
		Log2Size: uint8(tableLog),
		NewState: make([]uint16, tableSize),
		NumBits:  make([]uint8, tableSize),
		Symbol:   make([]uint8, tableSize),
	}

	highThreshold := tableSize - 1
	symbolNext := make([]uint16, len(norm))

	for s, c := range norm {
		if c == -1 {
			t.Symbol[highThreshold] = uint8(s)
			highThreshold--
			symbolNext[s] = 1
		} else if c > 0 {
			symbolNext[s] = uint16(c)
		}
	}

	tableMask := tableSize - 1
	step := (tableSize >> 1) + (tableSize >> 3) + 3
	pos := 0
	for s, c := range norm {
		for i := int32(0); i < c; i++ {
			t.Symbol[pos] = uint8(s)
			pos = (pos + step) & tableMask
			for pos > highThreshold {
				pos = (pos + step) & tableMask
			}
		}
	}
	if pos != 0 {
		return nil, ErrCorrupt
	}

	for u := 0; u < tableSize; u++ {
		sym := t.Symbol[u]
		next := symbolNext[sym]
		symbolNext[sym]++
		nbBits := uint8(tableLog - highBit(uint32(next)))
		t.NumBits[u] = nbBits
		t.NewState[u] = uint16(int32(next)<<nbBits - int32(tableSize))
	}
	return t, nil
}

// Decoder drives a single FSE state machine over a DTable.
type Decoder struct {
	table *DTable
	state uint16
}

// NewDecoder initializes a state by reading (consuming) Log2Size bits
// from br.
func NewDecoder(table *DTable, br *bitio.BackwardReader) *Decoder {
	d := &Decoder{table: table}
	d.state = uint16(br.ReadBits(uint(table.Log2Size)))
	return d
}

// PeekSymbol returns the symbol the current state decodes to, without
// advancing.
func (d *Decoder) PeekSymbol() uint8 { return d.table.Symbol[d.state] }

// Update refreshes the state using bits pulled from br, per spec.md
// §4.5 step 4: newState[state] + read(numberOfBits[state]).
func (d *Decoder) Update(br *bitio.BackwardReader) {
	nb := uint(d.table.NumBits[d.state])
	d.state = d.table.NewState[d.state] + uint16(br.ReadBits(nb))
}
