package cursor

import (
	"fmt"
	"slices"
)

// Assertion reads consume a value and fail with ErrAssertion unless it is one
// of the given options. An unexpected constant usually means an unseen format
// revision, so it is never ignored.

func assertIn[T comparable](offset int64, v T, options []T) (T, error) {
	if slices.Contains(options, v) {
		return v, nil
	}
	return v, &ParseError{
		Kind:     ErrAssertion,
		Offset:   offset,
		Expected: formatSet(options),
		Actual:   formatValue(v),
	}
}

func assertRead[T comparable](r *Reader, read func() (T, error), options []T) (T, error) {
	start := r.pos
	v, err := read()
	if err != nil {
		return v, err
	}
	return assertIn(start, v, options)
}

func (r *Reader) AssertU8(options ...uint8) (uint8, error) {
	return assertRead(r, r.ReadU8, options)
}

func (r *Reader) AssertI8(options ...int8) (int8, error) {
	return assertRead(r, r.ReadI8, options)
}

func (r *Reader) AssertU16(options ...uint16) (uint16, error) {
	return assertRead(r, r.ReadU16, options)
}

func (r *Reader) AssertI16(options ...int16) (int16, error) {
	return assertRead(r, r.ReadI16, options)
}

func (r *Reader) AssertU32(options ...uint32) (uint32, error) {
	return assertRead(r, r.ReadU32, options)
}

func (r *Reader) AssertI32(options ...int32) (int32, error) {
	return assertRead(r, r.ReadI32, options)
}

func (r *Reader) AssertU64(options ...uint64) (uint64, error) {
	return assertRead(r, r.ReadU64, options)
}

func (r *Reader) AssertI64(options ...int64) (int64, error) {
	return assertRead(r, r.ReadI64, options)
}

func (r *Reader) AssertF32(options ...float32) (float32, error) {
	return assertRead(r, r.ReadF32, options)
}

// AssertMagic reads len(magic) bytes and fails with ErrSignature if they
// differ from magic.
func (r *Reader) AssertMagic(magic string) error {
	start := r.pos
	b, err := r.take(int64(len(magic)))
	if err != nil {
		return &ParseError{Kind: ErrSignature, Offset: start, Expected: fmt.Sprintf("%q", magic), Actual: "end of input"}
	}
	if string(b) != magic {
		return &ParseError{Kind: ErrSignature, Offset: start, Expected: fmt.Sprintf("%q", magic), Actual: fmt.Sprintf("%q", b)}
	}
	return nil
}

// AssertPattern reads count bytes that must all equal pattern.
func (r *Reader) AssertPattern(count int64, pattern byte) error {
	start := r.pos
	b, err := r.take(count)
	if err != nil {
		return err
	}
	for i, c := range b {
		if c != pattern {
			return &ParseError{
				Kind:     ErrAssertion,
				Offset:   start + int64(i),
				Field:    "pattern",
				Expected: fmt.Sprintf("%d bytes of 0x%02X", count, pattern),
				Actual:   fmt.Sprintf("0x%02X", c),
			}
		}
	}
	return nil
}

// AssertPad is Pad, but the skipped bytes must all equal pattern.
func (r *Reader) AssertPad(align int64, pattern byte) error {
	return r.AssertPattern(padding(r.pos, align), pattern)
}
