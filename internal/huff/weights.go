package huff

import (
	"github.com/elliotnunn/zstdgo/internal/bitio"
	"github.com/elliotnunn/zstdgo/internal/fse"
)

// weightMaxSymbolValue bounds the FSE alphabet used to compress a
// weight array: weight values never exceed the Huffman max table log.
const weightMaxSymbolValue = 12

// weightTableLogMax is the ceiling spec.md §4.4 implies by naming the
// weight table among the small FSE auxiliary tables.
const weightTableLogMax = 6

// SerializeTable renders a CTable's weights per spec.md §4.4: try
// FSE-compressing the weight array, keeping that encoding only when
// its size lands in (1, maxSymbol/2) and is at most 127 bytes, else
// fall back to a raw 4-bit-per-weight encoding.
func SerializeTable(t *CTable) []byte {
	weights, maxSymbol := weightsFromLengths(t.Lengths, t.MaxBits)
	// the last symbol's weight is implicit, recovered on decode from
	// the power-of-two completion rule.
	encoded := weights[:maxSymbol]

	if blob, ok := tryCompressWeights(encoded, maxSymbol); ok {
		return blob
	}
	return rawWeights(encoded)
}

func tryCompressWeights(weights []uint8, maxSymbol int) ([]byte, bool) {
	if len(weights) == 0 {
		return nil, false
	}
	counts, actualMax := fse.Count(weights, weightMaxSymbolValue)
	tableLog := fse.OptimalTableLog(weightTableLogMax, len(weights), actualMax)
	norm := fse.NormalizeCount(counts, tableLog, len(weights))
	ct, err := fse.BuildCTable(norm, tableLog)
	if err != nil {
		return nil, false
	}

	header := fse.WriteNCount(norm, tableLog, actualMax)

	bw := bitio.NewForwardWriter(nil)
	enc := fse.NewEncoder(ct, weights[len(weights)-1])
	for i := len(weights) - 2; i >= 0; i-- {
		enc.Encode(bw, weights[i])
	}
	enc.Flush(bw)
	payload := bw.Flush()

	total := len(header) + len(payload)
	if total <= 1 || total >= maxSymbol/2 || total > 127 {
		return nil, false
	}

	out := make([]byte, 0, 1+total)
	out = append(out, byte(total))
	out = append(out, header...)
	out = append(out, payload...)
	return out, true
}

func rawWeights(weights []uint8) []byte {
	n := len(weights)
	out := make([]byte, 1+(n+1)/2)
	out[0] = byte(127 + n)
	for i, w := range weights {
		if i%2 == 0 {
			out[1+i/2] |= w << 4
		} else {
			out[1+i/2] |= w & 0xF
		}
	}
	return out
}

// DeserializeTable parses a serialized weight table back into a
// decode table, returning the number of header bytes consumed.
func DeserializeTable(data []byte) (*DTable, int, error) {
	if len(data) == 0 {
		return nil, 0, ErrCorrupt
	}
	header := data[0]

	var weights []uint8
	var consumed int
	if header >= 128 {
		n := int(header) - 127
		need := 1 + (n+1)/2
		if len(data) < need {
			return nil, 0, ErrCorrupt
		}
		weights = make([]uint8, n)
		for i := range weights {
			b := data[1+i/2]
			if i%2 == 0 {
				weights[i] = b >> 4
			} else {
				weights[i] = b & 0xF
			}
		}
		consumed = need
	} else {
		blobSize := int(header)
		if len(data) < 1+blobSize {
			return nil, 0, ErrCorrupt
		}
		blob := data[1 : 1+blobSize]
		norm, tableLog, nbytes, err := fse.ReadNCount(blob, weightMaxSymbolValue)
		if err != nil {
			return nil, 0, err
		}
		dt, err := fse.BuildDTable(norm, tableLog)
		if err != nil {
			return nil, 0, err
		}

		br, err := bitio.NewBackwardReader(blob[nbytes:])
		if err != nil {
			return nil, 0, ErrCorrupt
		}
		dec := fse.NewDecoder(dt, br)
		for {
			weights = append(weights, dec.PeekSymbol())
			if br.Exhausted(1) {
				break
			}
			dec.Update(br)
		}
		consumed = 1 + blobSize
	}

	lengths, maxBits, err := lengthsFromWeights(weights)
	if err != nil {
		return nil, 0, err
	}
	return BuildDTable(lengths, maxBits), consumed, nil
}
