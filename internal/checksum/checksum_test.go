package checksum

import "testing"

func TestDigestMatchesSum32(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	d := New()
	d.Write(data)
	if got, want := d.Checksum32(), Sum32(data); got != want {
		t.Fatalf("Checksum32() = %#x, want Sum32() = %#x", got, want)
	}
}

func TestDigestAccumulatesAcrossWrites(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	d := New()
	d.Write(data[:10])
	d.Write(data[10:])
	if got, want := d.Checksum32(), Sum32(data); got != want {
		t.Fatalf("split-write Checksum32() = %#x, want %#x", got, want)
	}
}

func TestSum32DiffersOnDifferentInput(t *testing.T) {
	if Sum32([]byte("a")) == Sum32([]byte("b")) {
		t.Fatal("expected different inputs to produce different checksums")
	}
}
