package msb

import (
	"fmt"

	"github.com/samcharles93/assetfmt/pkg/cursor"
	"github.com/samcharles93/assetfmt/pkg/entry"
)

// Read decodes a layout. Structural problems are returned as
// *cursor.ParseError, wrapped with the param and entry they occurred in.
func Read(data []byte) (*MSB, error) {
	r := cursor.NewReader(data)
	if err := r.AssertMagic(Magic); err != nil {
		return nil, err
	}
	flag, err := r.AssertU8(0, 1)
	if err != nil {
		return nil, cursor.Annotate(err, "endianness flag")
	}
	m := New()
	m.BigEndian = flag == 1
	r.SetBigEndian(m.BigEndian)

	if _, err := r.AssertU8(0); err != nil {
		return nil, cursor.Annotate(err, "header")
	}
	if _, err := r.AssertU16(0); err != nil {
		return nil, cursor.Annotate(err, "header")
	}
	if _, err := r.AssertI32(version); err != nil {
		return nil, cursor.Annotate(err, "version")
	}
	sizeAt := r.Absolute()
	size, err := r.ReadI32()
	if err != nil {
		return nil, err
	}
	if int64(size) != r.Len() {
		return nil, &cursor.ParseError{
			Kind:     cursor.ErrLength,
			Offset:   sizeAt,
			Field:    "file size",
			Expected: fmt.Sprintf("%d bytes", size),
			Actual:   fmt.Sprintf("%d bytes", r.Len()),
		}
	}
	offsets, err := r.ReadI64s(3)
	if err != nil {
		return nil, cursor.Annotate(err, "param offsets")
	}

	var (
		models []*Model
		events []Event
		parts  []Part
	)
	err = readParam(r, offsets[0], modelParamName, func() error {
		md, err := readModel(r)
		models = append(models, md)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = readParam(r, offsets[1], eventParamName, func() error {
		e, err := readEvent(r)
		events = append(events, e)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = readParam(r, offsets[2], partParamName, func() error {
		p, err := readPart(r)
		parts = append(parts, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := link(models, events, parts); err != nil {
		return nil, err
	}
	if err := m.Models.Add(models...); err != nil {
		return nil, err
	}
	if err := m.Events.Add(events...); err != nil {
		return nil, err
	}
	if err := m.Parts.Add(parts...); err != nil {
		return nil, err
	}
	return m, nil
}

// readParam steps into the param table at offset, checks its name and calls
// readEntry once per entry with the cursor at the entry's first byte and the
// entry start as base.
func readParam(r *cursor.Reader, offset int64, name string, readEntry func() error) error {
	return r.StepIn(offset, func() error {
		if _, err := r.AssertI32(version); err != nil {
			return cursor.Annotate(err, name+" version")
		}
		count, err := r.ReadI32()
		if err != nil {
			return err
		}
		nameOffset, err := r.ReadI64()
		if err != nil {
			return err
		}
		offsets, err := r.ReadI64s(int(count))
		if err != nil {
			return cursor.Annotate(err, name+" entry offsets")
		}
		got, err := r.GetUTF16(nameOffset)
		if err != nil {
			return cursor.Annotate(err, "param name")
		}
		if got != name {
			return &cursor.ParseError{
				Kind:     cursor.ErrAssertion,
				Offset:   nameOffset,
				Field:    "param name",
				Expected: fmt.Sprintf("%q", name),
				Actual:   fmt.Sprintf("%q", got),
			}
		}
		for i, off := range offsets {
			err := r.StepIn(off, func() error { return r.WithBase(readEntry) })
			if err != nil {
				return fmt.Errorf("msb: %s entry %d: %w", name, i, err)
			}
		}
		return nil
	})
}

func peekType[D ~int32, T any](r *cursor.Reader, g *entry.Registry[D, T]) (T, error) {
	return entry.Peek(r, g, 8, func(offset int64) (D, error) {
		v, err := r.GetI32(offset)
		return D(v), err
	})
}

func readModel(r *cursor.Reader) (*Model, error) {
	m, err := peekType(r, modelTypes)
	if err != nil {
		return nil, err
	}
	nameOffset, err := r.ReadI64()
	if err != nil {
		return nil, err
	}
	if err := r.Skip(8); err != nil { // type, type index
		return nil, err
	}
	sibOffset, err := r.ReadI64()
	if err != nil {
		return nil, err
	}
	if _, err := r.ReadI32(); err != nil { // instance count
		return nil, err
	}
	if _, err := r.AssertI32(0); err != nil {
		return nil, err
	}
	if m.Name, err = r.GetUTF16(nameOffset); err != nil {
		return nil, cursor.Annotate(err, "model name")
	}
	if m.SibPath, err = r.GetUTF16(sibOffset); err != nil {
		return nil, cursor.Annotate(err, "model sib path")
	}
	return m, nil
}

func readEvent(r *cursor.Reader) (Event, error) {
	e, err := peekType(r, eventTypes)
	if err != nil {
		return nil, err
	}
	c := e.common()
	nameOffset, err := r.ReadI64()
	if err != nil {
		return nil, err
	}
	if err := r.Skip(8); err != nil { // type, type index
		return nil, err
	}
	if c.EventID, err = r.ReadI32(); err != nil {
		return nil, err
	}
	if _, err := r.AssertI32(0); err != nil {
		return nil, err
	}
	dataOffset, err := r.ReadI64()
	if err != nil {
		return nil, err
	}
	if c.Name, err = r.GetUTF16(nameOffset); err != nil {
		return nil, cursor.Annotate(err, "event name")
	}
	if err := r.StepIn(dataOffset, func() error { return e.readData(r) }); err != nil {
		return nil, cursor.Annotate(err, e.Kind().String()+" event data")
	}
	return e, nil
}

func readPart(r *cursor.Reader) (Part, error) {
	p, err := peekType(r, partTypes)
	if err != nil {
		return nil, err
	}
	c := p.common()
	nameOffset, err := r.ReadI64()
	if err != nil {
		return nil, err
	}
	if err := r.Skip(8); err != nil { // type, type index
		return nil, err
	}
	if c.modelIndex, err = r.ReadI32(); err != nil {
		return nil, err
	}
	if _, err := r.AssertI32(0); err != nil {
		return nil, err
	}
	for i := range c.Position {
		if c.Position[i], err = r.ReadF32(); err != nil {
			return nil, err
		}
	}
	for i := range c.Rotation {
		if c.Rotation[i], err = r.ReadF32(); err != nil {
			return nil, err
		}
	}
	sibOffset, err := r.ReadI64()
	if err != nil {
		return nil, err
	}
	dataAt := r.Absolute()
	dataOffset, err := r.ReadI64()
	if err != nil {
		return nil, err
	}
	if c.Name, err = r.GetUTF16(nameOffset); err != nil {
		return nil, cursor.Annotate(err, "part name")
	}
	if c.SibPath, err = r.GetUTF16(sibOffset); err != nil {
		return nil, cursor.Annotate(err, "part sib path")
	}
	if !p.hasData() {
		if dataOffset != 0 {
			return nil, &cursor.ParseError{
				Kind:     cursor.ErrAssertion,
				Offset:   dataAt,
				Field:    p.Kind().String() + " part data offset",
				Expected: "0",
				Actual:   fmt.Sprint(dataOffset),
			}
		}
		return p, nil
	}
	if err := r.StepIn(dataOffset, func() error { return p.readData(r) }); err != nil {
		return nil, cursor.Annotate(err, p.Kind().String()+" part data")
	}
	return p, nil
}
