package fse

import "github.com/elliotnunn/zstdgo/internal/bitio"

type symbolTransform struct {
	deltaNbBits    int32
	deltaFindState int32
}

// CTable is the encoding counterpart of DTable: a per-state transition
// array plus per-symbol transform constants, built by the same
// stepped-walk symbol placement as BuildDTable.
type CTable struct {
	tableLog   uint
	nextState  []uint16 // indexed by cumulative symbol rank, holds tableSize+pos
	symbolTT   []symbolTransform
}

// BuildCTable mirrors BuildDTable's symbol placement, then derives the
// per-symbol (deltaNbBits, deltaFindState) pair the encoder needs to
// pick output bit counts and follow state transitions in amortized
// constant time, following the standard FSE construction.
func BuildCTable(norm []int32, tableLog uint) (*CTable, error) {
	tableSize := 1 << tableLog
	tableMask := tableSize - 1
	highThreshold := tableSize - 1

	cumul := make([]int32, len(norm)+1)
	tableSymbol := make([]uint8, tableSize)

	for s, c := range norm {
		if c == -1 {
			tableSymbol[highThreshold] = uint8(s)
			highThreshold--
			cumul[s+1] = cumul[s] + 1
		} else {
			cumul[s+1] = cumul[s] + c
		}
	}

	step := (tableSize >> 1) + (tableSize >> 3) + 3
	pos := 0
	for s, c := range norm {
		for i := int32(0); i < c; i++ {
			tableSymbol[pos] = uint8(s)
			pos = (pos + step) & tableMask
			for pos > highThreshold {
				pos = (pos + step) & tableMask
			}
		}
	}
	if pos != 0 {
		return nil, ErrCorrupt
	}

	ct := &CTable{tableLog: tableLog, nextState: make([]uint16, tableSize), symbolTT: make([]symbolTransform, len(norm))}
	cursor := append([]int32(nil), cumul...)
	for u := 0; u < tableSize; u++ {
		s := tableSymbol[u]
		ct.nextState[cursor[s]] = uint16(tableSize + u)
		cursor[s]++
	}

	total := int32(0)
	for s, c := range norm {
		switch {
		case c == 0:
			ct.symbolTT[s].deltaNbBits = int32((tableLog+1)<<16) - int32(tableSize)
		case c == -1 || c == 1:
			ct.symbolTT[s].deltaNbBits = int32(tableLog<<16) - int32(tableSize)
			ct.symbolTT[s].deltaFindState = total - 1
			total++
		default:
			maxBitsOut := tableLog - highBit(uint32(c-1))
			minStatePlus := c << maxBitsOut
			ct.symbolTT[s].deltaNbBits = int32(maxBitsOut<<16) - minStatePlus
			ct.symbolTT[s].deltaFindState = total - c
			total += c
		}
	}
	return ct, nil
}

// Encoder drives one FSE compression state over a CTable.
type Encoder struct {
	table *CTable
	state uint32
}

// NewEncoder initializes state for the last symbol of a run (FSE
// streams are built by encoding symbols in reverse).
func NewEncoder(table *CTable, firstSymbol uint8) *Encoder {
	e := &Encoder{table: table}
	tt := table.symbolTT[firstSymbol]
	nbBitsOut := uint32(tt.deltaNbBits+(1<<15)) >> 16
	v := (nbBitsOut << 16) - uint32(tt.deltaNbBits)
	e.state = uint32(table.nextState[int32(v>>nbBitsOut)+tt.deltaFindState])
	return e
}

// Encode emits symbol's contribution to the bitstream and advances
// state, per the standard FSE_encodeSymbol transition.
func (e *Encoder) Encode(bw *bitio.ForwardWriter, symbol uint8) {
	tt := e.table.symbolTT[symbol]
	nbBitsOut := uint32(int32(e.state)+tt.deltaNbBits) >> 16
	bw.AddBits(uint64(e.state), uint(nbBitsOut))
	e.state = uint32(e.table.nextState[int32(e.state>>nbBitsOut)+tt.deltaFindState])
}

// Flush writes the final state value, tableLog bits wide, per the FSE
// stream trailer convention.
func (e *Encoder) Flush(bw *bitio.ForwardWriter) {
	bw.AddBits(uint64(e.state), e.table.tableLog)
}
