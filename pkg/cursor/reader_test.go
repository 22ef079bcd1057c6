package cursor

import (
	"errors"
	"testing"
)

func TestEndiannessSwitchMidStream(t *testing.T) {
	t.Parallel()

	r := NewReader([]byte{0x01, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00})
	got, err := r.ReadI32()
	if err != nil {
		t.Fatalf("read little-endian: %v", err)
	}
	if got != 1 {
		t.Fatalf("little-endian mismatch: got %d want 1", got)
	}

	r.SetBigEndian(true)
	got, err = r.ReadI32()
	if err != nil {
		t.Fatalf("read big-endian: %v", err)
	}
	if got != 16777216 {
		t.Fatalf("big-endian mismatch: got %d want 16777216", got)
	}
}

func TestPrimitiveWidths(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	w.WriteU8(0xAB)
	w.WriteI16(-2)
	w.WriteU32(0xDEADBEEF)
	w.WriteI64(-3)
	w.WriteF32(1.5)
	w.WriteF64(-0.25)
	w.WriteBool(true)
	data := w.Finish()
	if len(data) != 1+2+4+8+4+8+1 {
		t.Fatalf("length mismatch: got %d", len(data))
	}

	r := NewReader(data)
	if v, _ := r.ReadU8(); v != 0xAB {
		t.Fatalf("u8 mismatch: got %#x", v)
	}
	if v, _ := r.ReadI16(); v != -2 {
		t.Fatalf("i16 mismatch: got %d", v)
	}
	if v, _ := r.ReadU32(); v != 0xDEADBEEF {
		t.Fatalf("u32 mismatch: got %#x", v)
	}
	if v, _ := r.ReadI64(); v != -3 {
		t.Fatalf("i64 mismatch: got %d", v)
	}
	if v, _ := r.ReadF32(); v != 1.5 {
		t.Fatalf("f32 mismatch: got %g", v)
	}
	if v, _ := r.ReadF64(); v != -0.25 {
		t.Fatalf("f64 mismatch: got %g", v)
	}
	if v, err := r.ReadBool(); err != nil || !v {
		t.Fatalf("bool mismatch: got %v, %v", v, err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("expected buffer fully consumed, %d bytes left", r.Remaining())
	}
}

func TestAssertSetMembership(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	w.WriteI32(1)
	w.WriteI32(5)
	r := NewReader(w.Finish())

	got, err := r.AssertI32(0, 1)
	if err != nil {
		t.Fatalf("assert accepted value: %v", err)
	}
	if got != 1 {
		t.Fatalf("assert returned %d want 1", got)
	}

	got, err = r.AssertI32(0, 1)
	if !errors.Is(err, ErrAssertion) {
		t.Fatalf("expected ErrAssertion, got %v", err)
	}
	if got != 5 {
		t.Fatalf("failed assert should still report the value read: got %d", got)
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Offset != 4 {
		t.Fatalf("offset mismatch: got %d want 4", pe.Offset)
	}
	if pe.Expected == "" || pe.Actual == "" {
		t.Fatalf("expected and actual must be populated: %+v", pe)
	}
}

func TestAssertPattern(t *testing.T) {
	t.Parallel()

	r := NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFE})
	if err := r.AssertPattern(3, 0xFF); err != nil {
		t.Fatalf("pattern run: %v", err)
	}
	err := r.AssertPattern(1, 0xFF)
	if !errors.Is(err, ErrAssertion) {
		t.Fatalf("expected ErrAssertion for broken pattern, got %v", err)
	}
}

func TestAssertMagic(t *testing.T) {
	t.Parallel()

	if err := NewReader([]byte("MSBL....")).AssertMagic("MSBL"); err != nil {
		t.Fatalf("matching magic: %v", err)
	}
	if err := NewReader([]byte("FXGR")).AssertMagic("MSBL"); !errors.Is(err, ErrSignature) {
		t.Fatalf("expected ErrSignature, got %v", err)
	}
	if err := NewReader([]byte("MS")).AssertMagic("MSBL"); !errors.Is(err, ErrSignature) {
		t.Fatalf("expected ErrSignature on short input, got %v", err)
	}
}

func TestStepDisciplineNested(t *testing.T) {
	t.Parallel()

	data := make([]byte, 64)
	r := NewReader(data)
	if err := r.Skip(6); err != nil {
		t.Fatalf("skip: %v", err)
	}
	before := r.Position()

	err := r.StepIn(20, func() error {
		if _, err := r.ReadU64(); err != nil {
			return err
		}
		return r.StepIn(40, func() error {
			if r.Position() != 40 {
				t.Errorf("inner position mismatch: got %d want 40", r.Position())
			}
			_, err := r.ReadBytes(16)
			return err
		})
	})
	if err != nil {
		t.Fatalf("step in: %v", err)
	}
	if r.Position() != before {
		t.Fatalf("position not restored: got %d want %d", r.Position(), before)
	}
	if r.Depth() != 0 {
		t.Fatalf("scope stack not empty: %d", r.Depth())
	}
}

func TestStepInRestoresOnError(t *testing.T) {
	t.Parallel()

	r := NewReader(make([]byte, 8))
	_, _ = r.ReadU16()
	err := r.StepIn(4, func() error {
		_, err := r.ReadU64()
		return err
	})
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	if r.Position() != 2 || r.Depth() != 0 {
		t.Fatalf("cursor not restored after error: pos=%d depth=%d", r.Position(), r.Depth())
	}
}

func TestStepInRestoresOnPanic(t *testing.T) {
	t.Parallel()

	r := NewReader(make([]byte, 8))
	func() {
		defer func() { _ = recover() }()
		_ = r.StepIn(4, func() error { panic("boom") })
	}()
	if r.Position() != 0 || r.Depth() != 0 {
		t.Fatalf("cursor not restored after panic: pos=%d depth=%d", r.Position(), r.Depth())
	}
}

func TestStepInOutOfRange(t *testing.T) {
	t.Parallel()

	r := NewReader(make([]byte, 4))
	err := r.StepIn(5, func() error { return nil })
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	if r.Depth() != 0 {
		t.Fatalf("scope leaked: %d", r.Depth())
	}
}

func TestWithBaseRelativeOffsets(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	w.WriteU32(0xAAAAAAAA)
	w.WriteU32(0xBBBBBBBB)
	w.WriteU32(0x11111111)
	w.WriteU32(0x22222222)
	r := NewReader(w.Finish())
	_ = r.Skip(8)

	err := r.WithBase(func() error {
		if r.Position() != 0 {
			t.Errorf("base-relative position: got %d want 0", r.Position())
		}
		v, err := r.GetU32(4)
		if err != nil {
			return err
		}
		if v != 0x22222222 {
			t.Errorf("peek relative to base: got %#x", v)
		}
		_, err = r.ReadU32()
		return err
	})
	if err != nil {
		t.Fatalf("with base: %v", err)
	}
	if r.Position() != 12 || r.Absolute() != 12 {
		t.Fatalf("position after WithBase: got %d (abs %d) want 12", r.Position(), r.Absolute())
	}
}

func TestPeekDoesNotMove(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	w.WriteI32(7)
	w.WriteI16(-9)
	r := NewReader(w.Finish())

	v, err := r.GetI16(4)
	if err != nil || v != -9 {
		t.Fatalf("peek mismatch: got %d, %v", v, err)
	}
	if r.Position() != 0 {
		t.Fatalf("peek moved the cursor to %d", r.Position())
	}
	if _, err := r.GetI64(0); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated for peek past end, got %v", err)
	}
}

func TestReadSlice(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	w.WriteF32s([]float32{1, 2, 3})
	w.WriteI32s([]int32{-1, 4})
	r := NewReader(w.Finish())

	floats, err := r.ReadF32s(3)
	if err != nil {
		t.Fatalf("read floats: %v", err)
	}
	if len(floats) != 3 || floats[2] != 3 {
		t.Fatalf("floats mismatch: %v", floats)
	}
	ints, err := r.ReadI32s(2)
	if err != nil {
		t.Fatalf("read ints: %v", err)
	}
	if ints[0] != -1 || ints[1] != 4 {
		t.Fatalf("ints mismatch: %v", ints)
	}
	if _, err := r.ReadI32s(-1); !errors.Is(err, ErrAssertion) {
		t.Fatalf("expected ErrAssertion for negative count, got %v", err)
	}
}

func TestPadAndAssertPad(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	w.WriteU8(1)
	w.PadWith(8, 0xCC)
	w.WriteU8(2)
	w.Pad(4)
	data := w.Finish()
	if len(data) != 12 {
		t.Fatalf("padded length: got %d want 12", len(data))
	}

	r := NewReader(data)
	_, _ = r.ReadU8()
	if err := r.AssertPad(8, 0xCC); err != nil {
		t.Fatalf("assert pad: %v", err)
	}
	_, _ = r.ReadU8()
	if err := r.Pad(4); err != nil {
		t.Fatalf("pad: %v", err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("expected end of buffer, %d left", r.Remaining())
	}
}

func TestTruncatedRead(t *testing.T) {
	t.Parallel()

	r := NewReader([]byte{1, 2})
	_, err := r.ReadU32()
	var pe *ParseError
	if !errors.As(err, &pe) || !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected truncated *ParseError, got %v", err)
	}
	if r.Position() != 0 {
		t.Fatalf("failed read must not advance: %d", r.Position())
	}
}

func TestWithLimit(t *testing.T) {
	t.Parallel()

	r := NewReader([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	err := r.WithLimit(4, func() error {
		if r.Remaining() != 4 {
			t.Fatalf("remaining inside limit: got %d want 4", r.Remaining())
		}
		if _, err := r.ReadU16(); err != nil {
			return err
		}
		if _, err := r.GetU8(5); !errors.Is(err, ErrTruncated) {
			t.Fatalf("peek past limit: expected ErrTruncated, got %v", err)
		}
		if err := r.Seek(6); !errors.Is(err, ErrTruncated) {
			t.Fatalf("seek past limit: expected ErrTruncated, got %v", err)
		}
		_, err := r.ReadU32()
		return err
	})
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("read past limit: expected ErrTruncated, got %v", err)
	}
	if r.Position() != 2 || r.Remaining() != 6 {
		t.Fatalf("limit not lifted: pos=%d remaining=%d", r.Position(), r.Remaining())
	}
	if err := r.WithLimit(7, func() error { return nil }); !errors.Is(err, ErrTruncated) {
		t.Fatalf("oversized limit: expected ErrTruncated, got %v", err)
	}
}
