// Package bitio implements the two bit-stream shapes the Zstandard
// frame codec needs: a backward-reading variable-length reader for
// Huffman and FSE decode, and a forward-writing accumulator for
// encode. Both operate on plain byte slices; there is no pinning or
// base/address/limit triple here, just bounds-checked slice access.
package bitio

import (
	"errors"
	"math/bits"
)

// ErrEmptyStream is returned when a BackwardReader is initialized over
// a zero-length buffer.
var ErrEmptyStream = errors.New("bitio: empty bit stream")

// ErrNoSentinel is returned when a BackwardReader's last byte is zero,
// so there is no "1" marker bit to locate the stream's logical start.
var ErrNoSentinel = errors.New("bitio: final byte has no sentinel bit")

const wordBytes = 8
const wordBits = wordBytes * 8

// ReloadStatus reports how much of a BackwardReader remains after a
// Reload, mirroring the reference Zstandard bit-stream state machine.
type ReloadStatus int

const (
	// Unfinished: container refilled from a full word, more data follows.
	Unfinished ReloadStatus = iota
	// EndOfBuffer: the refill reached the first byte of the buffer;
	// whatever remains in the container is all that's left.
	EndOfBuffer
	// Completed: the buffer is exhausted and bitsConsumed already
	// accounts for every bit; further reads (if required) are an error.
	Completed
	// Overflow: more bits were consumed than the stream contained.
	Overflow
)

// BackwardReader reads bits starting from the end of a buffer and
// moving toward its start. The final byte's highest set bit is a
// sentinel marking where real data ends; everything above it (within
// that byte) is padding.
type BackwardReader struct {
	buf          []byte
	container    uint64
	bitsConsumed uint
	ptr          int
}

// NewBackwardReader initializes a reader over buf. When buf holds at
// least 8 bytes, bitsConsumed after init is in [1,8]: 8 minus the index
// of the highest set bit of buf's last byte. A shorter buf is loaded
// into the low bytes of the container, and bitsConsumed then also
// counts the (8-len(buf))*8 empty high bits above it.
func NewBackwardReader(buf []byte) (*BackwardReader, error) {
	r := new(BackwardReader)
	if err := r.Reset(buf); err != nil {
		return nil, err
	}
	return r, nil
}

// Reset reinitializes the reader over a new buffer, reusing storage.
func (r *BackwardReader) Reset(buf []byte) error {
	if len(buf) == 0 {
		*r = BackwardReader{}
		return ErrEmptyStream
	}
	last := buf[len(buf)-1]
	if last == 0 {
		return ErrNoSentinel
	}
	highBit := uint(bits.Len8(last) - 1)

	r.buf = buf
	if len(buf) >= wordBytes {
		r.ptr = len(buf) - wordBytes
		r.container = loadLE64(buf[r.ptr:])
		r.bitsConsumed = 8 - highBit
	} else {
		r.ptr = 0
		var word uint64
		for i, b := range buf {
			word |= uint64(b) << (8 * uint(i))
		}
		r.container = word
		r.bitsConsumed = (wordBytes-uint(len(buf)))*8 + (8 - highBit)
	}
	return nil
}

// BitsConsumed exposes the current offset into the container, mainly
// for tests validating the initializer against spec.md's unit property.
func (r *BackwardReader) BitsConsumed() uint { return r.bitsConsumed }

// PeekBits returns the next n bits without consuming them. n must be
// in [0,56]; callers needing more must split the read across a Reload.
//
// PeekBits reloads the container itself whenever bitsConsumed has
// grown far enough that the requested bits might fall outside the
// currently loaded word: bitsConsumed is allowed to exceed wordBits
// between reads (SkipBits just adds to it), and reading stale
// container bits under a wrapped bitsConsumed&(wordBits-1) mask would
// silently produce garbage instead of an error. Callers (DecodeOne,
// fse.Decoder.Update, the sequence-extra-bits reads, ...) therefore
// never need to call Reload themselves.
func (r *BackwardReader) PeekBits(n uint) uint64 {
	if n == 0 {
		return 0
	}
	if r.bitsConsumed+n > wordBits {
		r.Reload()
	}
	shifted := r.container << (r.bitsConsumed & (wordBits - 1))
	return (shifted >> 1) >> (wordBits - 1 - n)
}

// SkipBits marks n bits as consumed without reading them (used once
// their value has already been peeked).
func (r *BackwardReader) SkipBits(n uint) { r.bitsConsumed += n }

// ReadBits peeks n bits and advances past them in one step.
func (r *BackwardReader) ReadBits(n uint) uint64 {
	v := r.PeekBits(n)
	r.SkipBits(n)
	return v
}

// Reload refills the container with fresh bytes from further toward
// the buffer's start, mirroring BIT_reloadDStream. PeekBits calls it
// whenever a read would run past the loaded word; a caller that calls
// it directly can inspect the returned status: Overflow is always fatal
// when further bits are still required; Completed is fatal only if the
// caller still needs more bits than remain loaded.
func (r *BackwardReader) Reload() ReloadStatus {
	if r.bitsConsumed > wordBits {
		return Overflow
	}
	limit := wordBytes
	if r.ptr >= limit {
		nbBytes := r.bitsConsumed >> 3
		r.ptr -= int(nbBytes)
		r.bitsConsumed &= 7
		r.container = loadLE64(r.buf[r.ptr:])
		return Unfinished
	}
	if r.ptr == 0 {
		if r.bitsConsumed < wordBits {
			return EndOfBuffer
		}
		return Completed
	}
	nbBytes := int(r.bitsConsumed >> 3)
	status := Unfinished
	if r.ptr-nbBytes < 0 {
		nbBytes = r.ptr
		status = EndOfBuffer
	}
	r.ptr -= nbBytes
	r.bitsConsumed -= uint(nbBytes) * 8
	r.container = loadLE64Partial(r.buf[r.ptr:])
	return status
}

// Exhausted reports whether fewer than n unread bits remain anywhere
// in the stream (container plus unread buffer prefix), i.e. whether a
// caller demanding n more bits would underflow.
func (r *BackwardReader) Exhausted(n uint) bool {
	remaining := int(wordBits-r.bitsConsumed) + r.ptr*8
	return remaining < int(n)
}

func loadLE64(b []byte) uint64 {
	_ = b[7]
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

// loadLE64Partial reads up to 8 bytes, zero-extending when fewer remain.
func loadLE64Partial(b []byte) uint64 {
	if len(b) >= wordBytes {
		return loadLE64(b)
	}
	var v uint64
	for i, c := range b {
		v |= uint64(c) << (8 * uint(i))
	}
	return v
}
