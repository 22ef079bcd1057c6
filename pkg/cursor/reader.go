// Package cursor implements endianness-aware binary readers and writers for
// undocumented game asset formats.
//
// A Reader walks an in-memory buffer, validating known constants as it goes.
// A Writer appends to a buffer and supports forward references: a header
// field can be reserved before the data it points at exists and filled in once
// the final position is known.
//
// Both cursors keep a stack of relative-addressing contexts. Offsets passed to
// StepIn and returned by Position are relative to the innermost base, which is
// the start of the buffer until WithBase moves it.
package cursor

import (
	"encoding/binary"
	"fmt"
	"math"
)

type frame struct {
	pos     int64
	base    int64
	restore bool
}

// Reader reads primitives from a byte buffer. A Reader must not be shared
// between goroutines.
type Reader struct {
	data   []byte
	pos    int64
	base   int64
	end    int64
	big    bool
	order  binary.ByteOrder
	frames []frame
}

// NewReader returns a little-endian Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data, end: int64(len(data)), order: binary.LittleEndian}
}

// BigEndian reports whether multi-byte values are currently read big-endian.
func (r *Reader) BigEndian() bool { return r.big }

// SetBigEndian switches the byte order for all subsequent reads.
func (r *Reader) SetBigEndian(big bool) {
	r.big = big
	if big {
		r.order = binary.BigEndian
	} else {
		r.order = binary.LittleEndian
	}
}

// Len returns the size of the underlying buffer.
func (r *Reader) Len() int64 { return int64(len(r.data)) }

// Position returns the current offset relative to the active base.
func (r *Reader) Position() int64 { return r.pos - r.base }

// Absolute returns the current offset from the start of the buffer.
func (r *Reader) Absolute() int64 { return r.pos }

// Remaining returns the number of readable bytes after the current position,
// up to the innermost WithLimit bound.
func (r *Reader) Remaining() int64 { return r.end - r.pos }

// Depth returns the number of open StepIn/WithBase scopes.
func (r *Reader) Depth() int { return len(r.frames) }

// Seek moves to offset, relative to the active base.
func (r *Reader) Seek(offset int64) error {
	abs := r.base + offset
	if offset < 0 || abs > r.end {
		return &ParseError{
			Kind:     ErrTruncated,
			Offset:   r.pos,
			Field:    "seek",
			Expected: fmt.Sprintf("offset within [0, 0x%X]", r.end-r.base),
			Actual:   fmt.Sprintf("0x%X", offset),
		}
	}
	r.pos = abs
	return nil
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int64) error {
	_, err := r.take(n)
	return err
}

// StepIn moves to offset (relative to the active base), runs fn and then
// restores the previous position, whether fn returns normally, fails or
// panics.
func (r *Reader) StepIn(offset int64, fn func() error) error {
	depth := r.push(true)
	defer r.pop(depth)
	if err := r.Seek(offset); err != nil {
		return err
	}
	return fn()
}

// WithBase makes the current position the zero point for offsets inside fn.
// The base is restored afterwards; the position is left where fn put it.
func (r *Reader) WithBase(fn func() error) error {
	depth := r.push(false)
	defer r.pop(depth)
	r.base = r.pos
	return fn()
}

// WithLimit runs fn with reads, peeks and seeks confined to the next n bytes.
// The bound is lifted afterwards; the position is left where fn put it.
func (r *Reader) WithLimit(n int64, fn func() error) error {
	if n < 0 || n > r.Remaining() {
		return &ParseError{
			Kind:     ErrTruncated,
			Offset:   r.pos,
			Field:    "limit",
			Expected: fmt.Sprintf("at most %d bytes", r.Remaining()),
			Actual:   fmt.Sprintf("%d bytes", n),
		}
	}
	saved := r.end
	defer func() { r.end = saved }()
	r.end = r.pos + n
	return fn()
}

func (r *Reader) push(restore bool) int {
	r.frames = append(r.frames, frame{pos: r.pos, base: r.base, restore: restore})
	return len(r.frames)
}

func (r *Reader) pop(depth int) {
	if len(r.frames) != depth {
		panic(fmt.Sprintf("cursor: unbalanced scope: depth %d, want %d", len(r.frames), depth))
	}
	f := r.frames[depth-1]
	r.frames = r.frames[:depth-1]
	r.base = f.base
	if f.restore {
		r.pos = f.pos
	}
}

func (r *Reader) take(n int64) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, &ParseError{
			Kind:     ErrTruncated,
			Offset:   r.pos,
			Expected: fmt.Sprintf("%d bytes", n),
			Actual:   fmt.Sprintf("%d bytes remaining", r.Remaining()),
		}
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// at returns n bytes at a base-relative offset without moving the cursor.
func (r *Reader) at(offset int64, n int64) ([]byte, error) {
	abs := r.base + offset
	if offset < 0 || n < 0 || abs+n > r.end {
		return nil, &ParseError{
			Kind:     ErrTruncated,
			Offset:   abs,
			Expected: fmt.Sprintf("%d bytes", n),
			Actual:   fmt.Sprintf("offset 0x%X outside readable 0x%X bytes", offset, r.end-r.base),
		}
	}
	return r.data[abs : abs+n], nil
}

func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadI8() (int8, error) {
	v, err := r.ReadU8()
	return int8(v), err
}

// ReadBool reads one byte that must be 0 or 1.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.AssertU8(0, 1)
	return v == 1, err
}

func (r *Reader) ReadU16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

func (r *Reader) ReadI16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err
}

func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return r.order.Uint64(b), nil
}

func (r *Reader) ReadI64() (int64, error) {
	v, err := r.ReadU64()
	return int64(v), err
}

func (r *Reader) ReadF32() (float32, error) {
	u, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(u), nil
}

func (r *Reader) ReadF64() (float64, error) {
	u, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}

// ReadBytes returns a copy of the next n bytes.
func (r *Reader) ReadBytes(n int64) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// Pad skips forward until the absolute position is a multiple of align.
func (r *Reader) Pad(align int64) error {
	if n := padding(r.pos, align); n > 0 {
		return r.Skip(n)
	}
	return nil
}

// GetU8 reads a byte at a base-relative offset without moving the cursor.
func (r *Reader) GetU8(offset int64) (uint8, error) {
	b, err := r.at(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) GetU16(offset int64) (uint16, error) {
	b, err := r.at(offset, 2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

func (r *Reader) GetI16(offset int64) (int16, error) {
	v, err := r.GetU16(offset)
	return int16(v), err
}

func (r *Reader) GetU32(offset int64) (uint32, error) {
	b, err := r.at(offset, 4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

func (r *Reader) GetI32(offset int64) (int32, error) {
	v, err := r.GetU32(offset)
	return int32(v), err
}

func (r *Reader) GetU64(offset int64) (uint64, error) {
	b, err := r.at(offset, 8)
	if err != nil {
		return 0, err
	}
	return r.order.Uint64(b), nil
}

func (r *Reader) GetI64(offset int64) (int64, error) {
	v, err := r.GetU64(offset)
	return int64(v), err
}

// ReadSlice reads n values with read. It is the building block for arrays of
// any element type, including schema-defined structs.
func ReadSlice[T any](r *Reader, n int, read func() (T, error)) ([]T, error) {
	if n < 0 {
		return nil, &ParseError{
			Kind:     ErrAssertion,
			Offset:   r.pos,
			Field:    "array count",
			Expected: "a non-negative count",
			Actual:   fmt.Sprint(n),
		}
	}
	out := make([]T, 0, min(n, 1<<16))
	for range n {
		v, err := read()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *Reader) ReadI16s(n int) ([]int16, error) { return ReadSlice(r, n, r.ReadI16) }

func (r *Reader) ReadU16s(n int) ([]uint16, error) { return ReadSlice(r, n, r.ReadU16) }

func (r *Reader) ReadI32s(n int) ([]int32, error) { return ReadSlice(r, n, r.ReadI32) }

func (r *Reader) ReadU32s(n int) ([]uint32, error) { return ReadSlice(r, n, r.ReadU32) }

func (r *Reader) ReadI64s(n int) ([]int64, error) { return ReadSlice(r, n, r.ReadI64) }

func (r *Reader) ReadF32s(n int) ([]float32, error) { return ReadSlice(r, n, r.ReadF32) }

func padding(pos, align int64) int64 {
	if align <= 1 {
		return 0
	}
	if mod := pos % align; mod != 0 {
		return align - mod
	}
	return 0
}
