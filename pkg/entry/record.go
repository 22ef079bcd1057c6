package entry

import (
	"errors"
	"fmt"

	"github.com/samcharles93/assetfmt/pkg/cursor"
)

// ReadSized reads a u32 body length and runs body with the reader confined to
// that many bytes, so nested records cannot reach past their parent. The body
// must consume exactly the declared length, otherwise ReadSized fails with
// cursor.ErrLength. The length does not include the length field itself.
func ReadSized(r *cursor.Reader, body func(length int64) error) error {
	length, err := r.ReadU32()
	if err != nil {
		return err
	}
	start := r.Absolute()
	if int64(length) > r.Remaining() {
		return &cursor.ParseError{
			Kind:     cursor.ErrTruncated,
			Offset:   start - 4,
			Field:    "record length",
			Expected: fmt.Sprintf("at most %d bytes", r.Remaining()),
			Actual:   fmt.Sprintf("%d bytes", length),
		}
	}
	outer := r.Remaining()
	err = r.WithLimit(int64(length), func() error { return body(int64(length)) })
	if err != nil {
		// Running into the record end, rather than the end of the
		// enclosing data, means the body disagrees with the length field.
		if int64(length) < outer && errors.Is(err, cursor.ErrTruncated) {
			return &cursor.ParseError{
				Kind:     cursor.ErrLength,
				Offset:   start - 4,
				Field:    "record length",
				Expected: fmt.Sprintf("%d bytes", length),
				Actual:   "body reads past the record end",
			}
		}
		return err
	}
	if consumed := r.Absolute() - start; consumed != int64(length) {
		return &cursor.ParseError{
			Kind:     cursor.ErrLength,
			Offset:   start - 4,
			Field:    "record length",
			Expected: fmt.Sprintf("%d bytes", length),
			Actual:   fmt.Sprintf("%d bytes consumed", consumed),
		}
	}
	return nil
}

// WriteSized reserves a u32 length, runs body and fills the length with the
// number of bytes body wrote.
func WriteSized(w *cursor.Writer, body func() error) error {
	key := fmt.Sprintf("record.length@%d", w.Absolute())
	w.ReserveU32(key)
	start := w.Absolute()
	if err := body(); err != nil {
		return err
	}
	w.FillU32(key, uint32(w.Absolute()-start))
	return nil
}
