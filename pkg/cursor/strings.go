package cursor

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

// 8-bit strings are returned as their raw bytes so they survive a round trip
// unchanged. Shift-JIS and UTF-16 strings are decoded to UTF-8.

func utf16Encoding(big bool) encoding.Encoding {
	if big {
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	}
	return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
}

// ReadASCII reads exactly n bytes as a string.
func (r *Reader) ReadASCII(n int64) (string, error) {
	b, err := r.take(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadFixStr reads an n-byte field holding a NUL-terminated string.
func (r *Reader) ReadFixStr(n int64) (string, error) {
	b, err := r.take(n)
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b), nil
}

// ReadCString reads bytes up to and including a NUL terminator.
func (r *Reader) ReadCString() (string, error) {
	b, err := r.cstring()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadShiftJIS reads a NUL-terminated Shift-JIS string.
func (r *Reader) ReadShiftJIS() (string, error) {
	start := r.pos
	b, err := r.cstring()
	if err != nil {
		return "", err
	}
	s, err := japanese.ShiftJIS.NewDecoder().Bytes(b)
	if err != nil {
		return "", &ParseError{Kind: ErrAssertion, Offset: start, Field: "shift-jis string", Expected: "valid Shift-JIS", Actual: err.Error()}
	}
	return string(s), nil
}

// ReadUTF16 reads NUL-terminated UTF-16 in the current byte order.
func (r *Reader) ReadUTF16() (string, error) {
	start := r.pos
	for {
		unit, err := r.ReadU16()
		if err != nil {
			return "", err
		}
		if unit == 0 {
			break
		}
	}
	return r.decodeUTF16(start, r.data[start:r.pos-2])
}

// ReadPrefixedASCII reads a u32 byte count followed by that many bytes.
func (r *Reader) ReadPrefixedASCII() (string, error) {
	n, err := r.ReadU32()
	if err != nil {
		return "", err
	}
	return r.ReadASCII(int64(n))
}

// ReadPrefixedUTF16 reads an i32 code-unit count followed by that many UTF-16
// code units, without a terminator.
func (r *Reader) ReadPrefixedUTF16() (string, error) {
	start := r.pos
	n, err := r.ReadI32()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", &ParseError{Kind: ErrAssertion, Offset: start, Field: "utf-16 length", Expected: "a non-negative count", Actual: fmt.Sprint(n)}
	}
	b, err := r.take(int64(n) * 2)
	if err != nil {
		return "", err
	}
	return r.decodeUTF16(start, b)
}

// GetCString reads a NUL-terminated 8-bit string at offset without moving.
func (r *Reader) GetCString(offset int64) (s string, err error) {
	err = r.StepIn(offset, func() error {
		s, err = r.ReadCString()
		return err
	})
	return s, err
}

// GetShiftJIS reads a NUL-terminated Shift-JIS string at offset without moving.
func (r *Reader) GetShiftJIS(offset int64) (s string, err error) {
	err = r.StepIn(offset, func() error {
		s, err = r.ReadShiftJIS()
		return err
	})
	return s, err
}

// GetUTF16 reads a NUL-terminated UTF-16 string at offset without moving.
func (r *Reader) GetUTF16(offset int64) (s string, err error) {
	err = r.StepIn(offset, func() error {
		s, err = r.ReadUTF16()
		return err
	})
	return s, err
}

func (r *Reader) cstring() ([]byte, error) {
	i := bytes.IndexByte(r.data[r.pos:r.end], 0)
	if i < 0 {
		return nil, &ParseError{Kind: ErrTruncated, Offset: r.pos, Field: "string", Expected: "NUL terminator", Actual: "end of input"}
	}
	b := r.data[r.pos : r.pos+int64(i)]
	r.pos += int64(i) + 1
	return b, nil
}

func (r *Reader) decodeUTF16(start int64, b []byte) (string, error) {
	s, err := utf16Encoding(r.big).NewDecoder().Bytes(b)
	if err != nil {
		return "", &ParseError{Kind: ErrAssertion, Offset: start, Field: "utf-16 string", Expected: "valid UTF-16", Actual: err.Error()}
	}
	return string(s), nil
}

// WriteASCII writes the bytes of s with no terminator.
func (w *Writer) WriteASCII(s string) { w.buf = append(w.buf, s...) }

// WriteFixStr writes s into an n-byte field padded with pad bytes. The string
// and its NUL terminator must fit.
func (w *Writer) WriteFixStr(s string, n int, pad byte) error {
	if len(s) >= n {
		return fmt.Errorf("cursor: string %q does not fit in %d bytes", s, n)
	}
	w.WriteASCII(s)
	w.WriteU8(0)
	w.WritePattern(n-len(s)-1, pad)
	return nil
}

// WriteCString writes s followed by a NUL terminator.
func (w *Writer) WriteCString(s string) {
	w.WriteASCII(s)
	w.WriteU8(0)
}

// WriteShiftJIS encodes s as Shift-JIS followed by a NUL terminator.
func (w *Writer) WriteShiftJIS(s string) error {
	b, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return fmt.Errorf("cursor: encode %q as shift-jis: %w", s, err)
	}
	w.WriteBytes(b)
	w.WriteU8(0)
	return nil
}

func (w *Writer) encodeUTF16(s string) ([]byte, error) {
	b, err := utf16Encoding(w.big).NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("cursor: encode %q as utf-16: %w", s, err)
	}
	return b, nil
}

// WriteUTF16 encodes s as UTF-16 in the current byte order followed by a
// two-byte NUL terminator.
func (w *Writer) WriteUTF16(s string) error {
	b, err := w.encodeUTF16(s)
	if err != nil {
		return err
	}
	w.WriteBytes(b)
	w.WriteU16(0)
	return nil
}

// WritePrefixedASCII writes a u32 byte count followed by the bytes of s.
func (w *Writer) WritePrefixedASCII(s string) {
	w.WriteU32(uint32(len(s)))
	w.WriteASCII(s)
}

// WritePrefixedUTF16 writes an i32 code-unit count followed by s as UTF-16.
func (w *Writer) WritePrefixedUTF16(s string) error {
	b, err := w.encodeUTF16(s)
	if err != nil {
		return err
	}
	w.WriteI32(int32(len(b) / 2))
	w.WriteBytes(b)
	return nil
}
