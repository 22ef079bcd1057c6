package cursor

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
)

type byteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

type reservation struct {
	offset int64
	width  int
	order  byteOrder
	filled bool
}

// Writer appends primitives to an in-memory buffer.
//
// Header fields whose values are not known yet are reserved with one of the
// Reserve methods and filled later. Reservation misuse (reserving a key twice,
// filling an unknown key, filling twice, finishing with unfilled keys) is a
// schema bug and panics.
type Writer struct {
	buf   []byte
	base  int64
	bases []int64
	big   bool
	order byteOrder

	reservations map[string]*reservation
	pending      int
}

// NewWriter returns an empty little-endian Writer.
func NewWriter() *Writer {
	return &Writer{
		order:        binary.LittleEndian,
		reservations: make(map[string]*reservation),
	}
}

func (w *Writer) BigEndian() bool { return w.big }

// SetBigEndian switches the byte order for all subsequent writes and
// reservations. Reservations already made keep the order they were made with.
func (w *Writer) SetBigEndian(big bool) {
	w.big = big
	if big {
		w.order = binary.BigEndian
	} else {
		w.order = binary.LittleEndian
	}
}

// Position returns the append offset relative to the active base.
func (w *Writer) Position() int64 { return int64(len(w.buf)) - w.base }

// Absolute returns the append offset from the start of the buffer.
func (w *Writer) Absolute() int64 { return int64(len(w.buf)) }

// Depth returns the number of open WithBase scopes.
func (w *Writer) Depth() int { return len(w.bases) }

// WithBase makes the current append position the zero point for Position and
// FillOffset inside fn.
func (w *Writer) WithBase(fn func() error) error {
	w.bases = append(w.bases, w.base)
	depth := len(w.bases)
	defer func() {
		if len(w.bases) != depth {
			panic(fmt.Sprintf("cursor: unbalanced scope: depth %d, want %d", len(w.bases), depth))
		}
		w.base = w.bases[depth-1]
		w.bases = w.bases[:depth-1]
	}()
	w.base = int64(len(w.buf))
	return fn()
}

func (w *Writer) WriteU8(v uint8) { w.buf = append(w.buf, v) }

func (w *Writer) WriteI8(v int8) { w.buf = append(w.buf, uint8(v)) }

func (w *Writer) WriteU16(v uint16) { w.buf = w.order.AppendUint16(w.buf, v) }

func (w *Writer) WriteI16(v int16) { w.WriteU16(uint16(v)) }

func (w *Writer) WriteU32(v uint32) { w.buf = w.order.AppendUint32(w.buf, v) }

func (w *Writer) WriteI32(v int32) { w.WriteU32(uint32(v)) }

func (w *Writer) WriteU64(v uint64) { w.buf = w.order.AppendUint64(w.buf, v) }

func (w *Writer) WriteI64(v int64) { w.WriteU64(uint64(v)) }

func (w *Writer) WriteF32(v float32) { w.WriteU32(math.Float32bits(v)) }

func (w *Writer) WriteF64(v float64) { w.WriteU64(math.Float64bits(v)) }

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteU8(1)
	} else {
		w.WriteU8(0)
	}
}

func (w *Writer) WriteBytes(b []byte) { w.buf = append(w.buf, b...) }

// WritePattern writes count copies of b.
func (w *Writer) WritePattern(count int, b byte) {
	for range count {
		w.buf = append(w.buf, b)
	}
}

// Pad writes zero bytes until the absolute position is a multiple of align.
func (w *Writer) Pad(align int64) { w.PadWith(align, 0) }

// PadWith is Pad with a custom filler byte.
func (w *Writer) PadWith(align int64, b byte) {
	w.WritePattern(int(padding(int64(len(w.buf)), align)), b)
}

// WriteSlice writes every item with write, stopping at the first error.
func WriteSlice[T any](items []T, write func(T) error) error {
	for _, item := range items {
		if err := write(item); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) WriteI16s(v []int16) {
	for _, x := range v {
		w.WriteI16(x)
	}
}

func (w *Writer) WriteU16s(v []uint16) {
	for _, x := range v {
		w.WriteU16(x)
	}
}

func (w *Writer) WriteI32s(v []int32) {
	for _, x := range v {
		w.WriteI32(x)
	}
}

func (w *Writer) WriteU32s(v []uint32) {
	for _, x := range v {
		w.WriteU32(x)
	}
}

func (w *Writer) WriteI64s(v []int64) {
	for _, x := range v {
		w.WriteI64(x)
	}
}

func (w *Writer) WriteF32s(v []float32) {
	for _, x := range v {
		w.WriteF32(x)
	}
}

func (w *Writer) reserve(key string, width int) {
	if _, ok := w.reservations[key]; ok {
		panic(fmt.Sprintf("cursor: key %q reserved twice", key))
	}
	w.reservations[key] = &reservation{
		offset: int64(len(w.buf)),
		width:  width,
		order:  w.order,
	}
	w.pending++
	w.buf = append(w.buf, make([]byte, width)...)
}

func (w *Writer) ReserveU16(key string) { w.reserve(key, 2) }
func (w *Writer) ReserveU32(key string) { w.reserve(key, 4) }
func (w *Writer) ReserveI32(key string) { w.reserve(key, 4) }
func (w *Writer) ReserveU64(key string) { w.reserve(key, 8) }
func (w *Writer) ReserveI64(key string) { w.reserve(key, 8) }

func (w *Writer) fill(key string, width int, v uint64) {
	res, ok := w.reservations[key]
	if !ok {
		panic(fmt.Sprintf("cursor: key %q was never reserved", key))
	}
	if res.filled {
		panic(fmt.Sprintf("cursor: key %q filled twice", key))
	}
	if width != 0 && width != res.width {
		panic(fmt.Sprintf("cursor: key %q reserved with width %d, filled with width %d", key, res.width, width))
	}
	dst := w.buf[res.offset : res.offset+int64(res.width)]
	switch res.width {
	case 2:
		res.order.PutUint16(dst, uint16(v))
	case 4:
		res.order.PutUint32(dst, uint32(v))
	case 8:
		res.order.PutUint64(dst, v)
	}
	res.filled = true
	w.pending--
}

func (w *Writer) FillU16(key string, v uint16) { w.fill(key, 2, uint64(v)) }

func (w *Writer) FillU32(key string, v uint32) { w.fill(key, 4, uint64(v)) }

func (w *Writer) FillI32(key string, v int32) { w.fill(key, 4, uint64(uint32(v))) }

func (w *Writer) FillU64(key string, v uint64) { w.fill(key, 8, v) }

func (w *Writer) FillI64(key string, v int64) { w.fill(key, 8, uint64(v)) }

// FillOffset fills key with the current base-relative position, using the
// width the key was reserved with.
func (w *Writer) FillOffset(key string) { w.fill(key, 0, uint64(w.Position())) }

// Reserved reports whether key has been reserved, filled or not.
func (w *Writer) Reserved(key string) bool {
	_, ok := w.reservations[key]
	return ok
}

// Pending returns the reserved keys that have not been filled, sorted.
func (w *Writer) Pending() []string {
	var keys []string
	for k, res := range w.reservations {
		if !res.filled {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Bytes returns the buffer as written so far, reservations included.
func (w *Writer) Bytes() []byte { return w.buf }

// Finish returns the completed buffer. It panics if any reservation is still
// unfilled or a WithBase scope is open.
func (w *Writer) Finish() []byte {
	if w.pending != 0 {
		panic(fmt.Sprintf("cursor: unfilled reservations: %v", w.Pending()))
	}
	if len(w.bases) != 0 {
		panic("cursor: Finish inside WithBase")
	}
	return w.buf
}
