package seqstore

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	seqs := []Sequence{
		{LiteralsLength: 3, MatchLength: 5, Offset: 10},
		{LiteralsLength: 0, MatchLength: 4, Offset: 10},
		{LiteralsLength: 2, MatchLength: 8, Offset: 4},
		{LiteralsLength: 0, MatchLength: 3, Offset: 200},
		{LiteralsLength: 7, MatchLength: 1000, Offset: 1},
	}

	encOffsets := NewOffsets()
	encoded := Encode(seqs, &encOffsets)

	decOffsets := NewOffsets()
	decoded, consumed, err := Decode(encoded, nil, nil, nil, &decOffsets)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if consumed != len(encoded) {
		t.Fatalf("consumed = %d, want %d", consumed, len(encoded))
	}
	if len(decoded.Sequences) != len(seqs) {
		t.Fatalf("got %d sequences, want %d", len(decoded.Sequences), len(seqs))
	}
	for i, want := range seqs {
		got := decoded.Sequences[i]
		if got != want {
			t.Fatalf("sequence %d: got %+v want %+v", i, got, want)
		}
	}
	if encOffsets != decOffsets {
		t.Fatalf("offsets diverged: encoder ended at %v, decoder at %v", encOffsets, decOffsets)
	}
}

func TestEncodeDecodeEmptySequenceList(t *testing.T) {
	offsets := NewOffsets()
	encoded := Encode(nil, &offsets)

	decOffsets := NewOffsets()
	decoded, _, err := Decode(encoded, nil, nil, nil, &decOffsets)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded.Sequences) != 0 {
		t.Fatalf("expected no sequences, got %d", len(decoded.Sequences))
	}
}

func TestEncodeDecodeSingleSequence(t *testing.T) {
	seqs := []Sequence{{LiteralsLength: 12, MatchLength: 50, Offset: 99999}}
	offsets := NewOffsets()
	encoded := Encode(seqs, &offsets)

	decOffsets := NewOffsets()
	decoded, _, err := Decode(encoded, nil, nil, nil, &decOffsets)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded.Sequences) != 1 || decoded.Sequences[0] != seqs[0] {
		t.Fatalf("got %+v want %+v", decoded.Sequences, seqs)
	}
}

func TestChooseOffsetCodePrefersRepeat(t *testing.T) {
	offsets := Offsets{10, 20, 30}
	code := ChooseOffsetCode(offsets, 10, 5)
	if code != 1 {
		t.Fatalf("ChooseOffsetCode = %d, want 1 (offsets[0] repeat)", code)
	}
}

func TestChooseOffsetCodeLiteralFallback(t *testing.T) {
	offsets := Offsets{10, 20, 30}
	code := ChooseOffsetCode(offsets, 555, 5)
	if code != 555+3 {
		t.Fatalf("ChooseOffsetCode = %d, want %d", code, 555+3)
	}
}

func TestResolveOffsetRepeatRotation(t *testing.T) {
	offsets := NewOffsets() // [1,4,8]
	// rawOffset=2 with nonzero litLength selects offsets[1]=4 and
	// rotates it to the front.
	got := resolveOffset(&offsets, 2, 1)
	if got != 4 {
		t.Fatalf("resolved = %d, want 4", got)
	}
	if offsets != (Offsets{4, 1, 8}) {
		t.Fatalf("offsets after rotation = %v, want [4,1,8]", offsets)
	}
}

func TestResolveOffsetZeroLitLengthBias(t *testing.T) {
	offsets := NewOffsets() // [1,4,8]
	// rawOffset=1 with litLength==0 biases the index by one slot,
	// selecting offsets[1] instead of offsets[0].
	got := resolveOffset(&offsets, 1, 0)
	if got != 4 {
		t.Fatalf("resolved = %d, want 4", got)
	}
}
