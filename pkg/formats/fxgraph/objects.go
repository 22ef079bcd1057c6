package fxgraph

import (
	"fmt"

	"github.com/samcharles93/assetfmt/pkg/cursor"
	"github.com/samcharles93/assetfmt/pkg/entry"
)

// Object is one node of an effect graph. Its class name selects the body
// layout.
type Object interface {
	Class() string
	Children() []Object

	header() *Header
	value() any
	readBody(r *cursor.Reader, d *decoder) error
	writeBody(w *cursor.Writer, tab *entry.ClassTable) error
}

// Header is the per-object data stored outside the body.
type Header struct {
	Version uint16
}

func (h *Header) header() *Header { return h }

var classes = entry.NewRegistry("class", map[string]func() Object{
	"Effect":     func() Object { return &Effect{} },
	"ParamList":  func() Object { return &ParamList{} },
	"IntParam":   func() Object { return &IntParam{} },
	"FloatParam": func() Object { return &FloatParam{} },
	"ColorParam": func() Object { return &ColorParam{} },
	"TextParam":  func() Object { return &TextParam{} },
	"FloatCurve": func() Object { return &FloatCurve{} },
})

// Effect is the usual root object.
type Effect struct {
	Header
	ID     int32
	Params Object
}

func (o *Effect) Class() string { return "Effect" }

func (o *Effect) Children() []Object {
	if o.Params == nil {
		return nil
	}
	return []Object{o.Params}
}

func (o *Effect) value() any { return o.ID }

func (o *Effect) readBody(r *cursor.Reader, d *decoder) (err error) {
	if o.ID, err = r.ReadI32(); err != nil {
		return err
	}
	o.Params, err = readObject(r, d)
	return err
}

func (o *Effect) writeBody(w *cursor.Writer, tab *entry.ClassTable) error {
	if o.Params == nil {
		return fmt.Errorf("fxgraph: effect %d has no params", o.ID)
	}
	w.WriteI32(o.ID)
	return writeObject(w, tab, o.Params)
}

type ParamList struct {
	Header
	Params []Object
}

func (o *ParamList) Class() string { return "ParamList" }

func (o *ParamList) Children() []Object { return o.Params }

func (o *ParamList) value() any { return nil }

func (o *ParamList) readBody(r *cursor.Reader, d *decoder) error {
	n, err := r.ReadI32()
	if err != nil {
		return err
	}
	o.Params, err = cursor.ReadSlice(r, int(n), func() (Object, error) {
		return readObject(r, d)
	})
	return cursor.Annotate(err, "param count")
}

func (o *ParamList) writeBody(w *cursor.Writer, tab *entry.ClassTable) error {
	w.WriteI32(int32(len(o.Params)))
	return cursor.WriteSlice(o.Params, func(p Object) error {
		return writeObject(w, tab, p)
	})
}

type IntParam struct {
	Header
	Value int32
}

func (o *IntParam) Class() string { return "IntParam" }

func (o *IntParam) Children() []Object { return nil }

func (o *IntParam) value() any { return o.Value }

func (o *IntParam) readBody(r *cursor.Reader, _ *decoder) (err error) {
	o.Value, err = r.ReadI32()
	return err
}

func (o *IntParam) writeBody(w *cursor.Writer, _ *entry.ClassTable) error {
	w.WriteI32(o.Value)
	return nil
}

type FloatParam struct {
	Header
	Value float32
}

func (o *FloatParam) Class() string { return "FloatParam" }

func (o *FloatParam) Children() []Object { return nil }

func (o *FloatParam) value() any { return o.Value }

func (o *FloatParam) readBody(r *cursor.Reader, _ *decoder) (err error) {
	o.Value, err = r.ReadF32()
	return err
}

func (o *FloatParam) writeBody(w *cursor.Writer, _ *entry.ClassTable) error {
	w.WriteF32(o.Value)
	return nil
}

// ColorParam is an RGBA color.
type ColorParam struct {
	Header
	Value [4]float32
}

func (o *ColorParam) Class() string { return "ColorParam" }

func (o *ColorParam) Children() []Object { return nil }

func (o *ColorParam) value() any { return o.Value }

func (o *ColorParam) readBody(r *cursor.Reader, _ *decoder) error {
	v, err := r.ReadF32s(len(o.Value))
	if err != nil {
		return err
	}
	copy(o.Value[:], v)
	return nil
}

func (o *ColorParam) writeBody(w *cursor.Writer, _ *entry.ClassTable) error {
	w.WriteF32s(o.Value[:])
	return nil
}

type TextParam struct {
	Header
	Value string
}

func (o *TextParam) Class() string { return "TextParam" }

func (o *TextParam) Children() []Object { return nil }

func (o *TextParam) value() any { return o.Value }

func (o *TextParam) readBody(r *cursor.Reader, _ *decoder) (err error) {
	o.Value, err = r.ReadPrefixedUTF16()
	return err
}

func (o *TextParam) writeBody(w *cursor.Writer, _ *entry.ClassTable) error {
	return w.WritePrefixedUTF16(o.Value)
}

// FloatCurve is a keyframed scalar. Times and Values are parallel.
type FloatCurve struct {
	Header
	Times  []float32
	Values []float32
}

func (o *FloatCurve) Class() string { return "FloatCurve" }

func (o *FloatCurve) Children() []Object { return nil }

func (o *FloatCurve) value() any {
	return map[string][]float32{"times": o.Times, "values": o.Values}
}

func (o *FloatCurve) readBody(r *cursor.Reader, _ *decoder) error {
	n, err := r.ReadI32()
	if err != nil {
		return err
	}
	if o.Times, err = r.ReadF32s(int(n)); err != nil {
		return cursor.Annotate(err, "curve times")
	}
	if o.Values, err = r.ReadF32s(int(n)); err != nil {
		return cursor.Annotate(err, "curve values")
	}
	return nil
}

func (o *FloatCurve) writeBody(w *cursor.Writer, _ *entry.ClassTable) error {
	if len(o.Times) != len(o.Values) {
		return fmt.Errorf("fxgraph: curve has %d times and %d values", len(o.Times), len(o.Values))
	}
	w.WriteI32(int32(len(o.Times)))
	w.WriteF32s(o.Times)
	w.WriteF32s(o.Values)
	return nil
}

// Opaque holds an object of a class this package does not know. Its body is
// written back exactly as it was read.
type Opaque struct {
	Header
	ClassName string
	Body      []byte
}

func (o *Opaque) Class() string { return o.ClassName }

func (o *Opaque) Children() []Object { return nil }

func (o *Opaque) value() any { return o.Body }

// readObject captures opaque bodies by length before readBody would run.
func (o *Opaque) readBody(*cursor.Reader, *decoder) error { return nil }

func (o *Opaque) writeBody(w *cursor.Writer, _ *entry.ClassTable) error {
	w.WriteBytes(o.Body)
	return nil
}
