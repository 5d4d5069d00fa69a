// Package zstdgo implements a from-scratch Zstandard (RFC 8478) frame
// compressor and decompressor: frame framing, block dispatch, Huffman
// literals, FSE sequences, match-copy execution, and the xxHash64
// content checksum. Dictionary frames, skippable frames, and windows
// above 2^23 bytes are out of scope; see internal/frame, internal/block,
// internal/literals, and internal/seqstore for the component codecs.
package zstdgo

import (
	"errors"
	"fmt"

	"github.com/elliotnunn/zstdgo/internal/blockcache"
	"github.com/elliotnunn/zstdgo/internal/frame"
	"github.com/elliotnunn/zstdgo/internal/zstdconst"
)

// CorruptInputError is spec.md §7's first error kind: a problem found
// while parsing compressed input (bad magic, unknown block type,
// overlong block, a table or checksum mismatch, and so on). Offset is
// the input byte position at which the problem was detected.
type CorruptInputError struct {
	Offset int
	Err    error
}

func (e *CorruptInputError) Error() string {
	return fmt.Sprintf("zstdgo: corrupt input at offset %d: %v", e.Offset, e.Err)
}

func (e *CorruptInputError) Unwrap() error { return e.Err }

// CallerError is spec.md §7's second error kind: a problem with how
// the API was called (output buffer too small, an invalid range, an
// unsupported parameter), raised before any state mutation visible to
// later calls.
type CallerError struct {
	Err error
}

func (e *CallerError) Error() string { return fmt.Sprintf("zstdgo: %v", e.Err) }
func (e *CallerError) Unwrap() error { return e.Err }

// ErrOutputTooSmall is wrapped by CallerError when the caller's output
// range cannot hold the worst-case (or actual) result. Decompress
// detects it from a frame's declared content size or a cached frame's
// length; a frame that declares no content size and overruns output is
// reported as a CorruptInputError.
var ErrOutputTooSmall = errors.New("output buffer too small")

// MaxCompressedLength returns the worst-case number of bytes
// Compress needs to compress an input of n bytes, per spec.md §6.
func MaxCompressedLength(n int) int {
	extra := 0
	if n < zstdconst.MaxBlockSize {
		extra = (zstdconst.MaxBlockSize - n) >> 11
	}
	return n + (n >> 8) + extra
}

// Option configures a Compressor.
type Option func(*options)

type options struct {
	windowSize uint64
}

// WithWindowSize overrides the window size a Compressor targets. It is
// always clamped to spec.md's MaxWindowSize (2^23 bytes).
func WithWindowSize(n uint64) Option {
	return func(o *options) { o.windowSize = n }
}

// Compressor compresses byte ranges into zstd frames. A Compressor is
// not safe for concurrent use; give each goroutine its own instance.
type Compressor struct {
	windowSize uint64
}

// NewCompressor returns a Compressor configured by opts.
func NewCompressor(opts ...Option) *Compressor {
	o := options{windowSize: zstdconst.MaxWindowSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.windowSize > zstdconst.MaxWindowSize {
		o.windowSize = zstdconst.MaxWindowSize
	}
	if o.windowSize == 0 {
		o.windowSize = zstdconst.MaxWindowSize
	}
	return &Compressor{windowSize: o.windowSize}
}

// Compress compresses input into output as a single zstd frame,
// returning the number of bytes written. output must be at least
// MaxCompressedLength(len(input)) bytes.
func (c *Compressor) Compress(input, output []byte) (int, error) {
	need := MaxCompressedLength(len(input))
	if len(output) < need {
		return 0, &CallerError{Err: ErrOutputTooSmall}
	}

	out, err := frame.EncodeFrame(output[:0], input, c.windowSize)
	if err != nil {
		return 0, &CallerError{Err: err}
	}
	return len(out), nil
}

// Decompressor decompresses zstd frames. A Decompressor is not safe
// for concurrent use; give each goroutine its own instance.
type Decompressor struct {
	cache *blockcache.Cache
}

// DecompressOption configures a Decompressor.
type DecompressOption func(*Decompressor)

// WithBlockCache attaches a decoded-frame cache. It is never consulted
// unless passed here: the zero-value Decompressor never allocates or
// looks one up on its own. The same *blockcache.Cache may be passed to
// multiple Decompressors to share it. The cache does no locking of its
// own, so, like a Decompressor, it is not safe for concurrent use.
func WithBlockCache(c *blockcache.Cache) DecompressOption {
	return func(d *Decompressor) { d.cache = c }
}

// NewDecompressor returns a ready Decompressor.
func NewDecompressor(opts ...DecompressOption) *Decompressor {
	d := &Decompressor{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decompress decodes back-to-back frames from the start of input into
// output until input is fully consumed, returning the number of bytes
// written.
func (d *Decompressor) Decompress(input, output []byte) (int, error) {
	total, pos := 0, 0
	for pos < len(input) {
		written, consumed, err := d.decodeOneFrame(input[pos:], output[total:])
		if err != nil {
			if errors.Is(err, ErrOutputTooSmall) {
				return 0, &CallerError{Err: err}
			}
			return 0, &CorruptInputError{Offset: pos, Err: err}
		}
		total += written
		pos += consumed
	}
	return total, nil
}

func (d *Decompressor) decodeOneFrame(input, output []byte) (written, consumed int, err error) {
	if h, herr := frame.DecodeHeader(input); herr == nil && h.HasContentSize && h.ContentSize > int64(len(output)) {
		return 0, 0, ErrOutputTooSmall
	}
	if d.cache == nil {
		return frame.DecodeFrame(input, output)
	}

	size, err := frame.FrameSize(input)
	if err != nil {
		return 0, 0, err
	}
	digest := blockcache.Digest(input[:size])

	if decoded, ok := d.cache.Get(digest); ok {
		n := copy(output, decoded)
		if n < len(decoded) {
			return 0, 0, ErrOutputTooSmall
		}
		return n, size, nil
	}

	written, consumed, err = frame.DecodeFrame(input, output)
	if err != nil {
		return 0, 0, err
	}
	d.cache.Add(digest, output[:written])
	return written, consumed, nil
}

// GetDecompressedSize reads input's first frame header and returns its
// declared content size, or -1 if the frame doesn't declare one.
func GetDecompressedSize(input []byte) (int64, error) {
	h, err := frame.DecodeHeader(input)
	if err != nil {
		return 0, &CorruptInputError{Offset: 0, Err: err}
	}
	if !h.HasContentSize {
		return -1, nil
	}
	return h.ContentSize, nil
}
