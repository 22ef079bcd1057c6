// Package fxgraph reads and writes FXGR effect graphs: a tree of objects
// whose class names are stored once in a file-level table.
//
// Objects are length-prefixed, so classes this package does not understand
// are kept as Opaque and written back verbatim.
package fxgraph

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/samcharles93/assetfmt/pkg/cursor"
	"github.com/samcharles93/assetfmt/pkg/entry"
)

// Magic is the file signature.
const Magic = "FXGR"

const version = 2

// Graph is a decoded effect graph.
type Graph struct {
	// Classes is the class table the graph was read with. Write keeps these
	// indices stable and appends any class the tree uses that is missing.
	Classes []string
	Root    Object
}

func (g *Graph) Format() string { return "fxgraph" }

func (g *Graph) Encode() ([]byte, error) { return g.Write() }

func (g *Graph) Summary() string {
	var objects, opaque int
	Walk(g.Root, func(o Object, _ int) {
		objects++
		if _, ok := o.(*Opaque); ok {
			opaque++
		}
	})
	return fmt.Sprintf("%d classes, %d objects, %d opaque", len(g.Classes), objects, opaque)
}

// Walk calls fn for root and every descendant in pre-order.
func Walk(root Object, fn func(o Object, depth int)) {
	var walk func(Object, int)
	walk = func(o Object, depth int) {
		if o == nil {
			return
		}
		fn(o, depth)
		for _, c := range o.Children() {
			walk(c, depth+1)
		}
	}
	walk(root, 0)
}

// Read decodes a graph.
func Read(data []byte) (*Graph, error) {
	r := cursor.NewReader(data)
	if err := r.AssertMagic(Magic); err != nil {
		return nil, err
	}
	if _, err := r.AssertU16(version); err != nil {
		return nil, cursor.Annotate(err, "version")
	}
	if _, err := r.AssertU16(0); err != nil {
		return nil, cursor.Annotate(err, "header")
	}
	n, err := r.ReadI32()
	if err != nil {
		return nil, err
	}
	names, err := cursor.ReadSlice(r, int(n), r.ReadPrefixedASCII)
	if err != nil {
		return nil, cursor.Annotate(err, "class table")
	}
	tab, err := entry.NewClassTable(names...)
	if err != nil {
		return nil, fmt.Errorf("fxgraph: %w", err)
	}
	root, err := readObject(r, &decoder{tab: tab})
	if err != nil {
		return nil, fmt.Errorf("fxgraph: %w", err)
	}
	if r.Remaining() != 0 {
		return nil, &cursor.ParseError{
			Kind:     cursor.ErrLength,
			Offset:   r.Absolute(),
			Field:    "root object",
			Expected: "end of input",
			Actual:   fmt.Sprintf("%d trailing bytes", r.Remaining()),
		}
	}
	return &Graph{Classes: names, Root: root}, nil
}

// maxDepth bounds how deeply objects may nest.
const maxDepth = 1024

// decoder carries the per-file state objects need while reading children.
type decoder struct {
	tab   *entry.ClassTable
	depth int
}

// objectError tags a failure with the innermost object it occurred in.
type objectError struct {
	class string
	at    int64
	err   error
}

func (e *objectError) Error() string { return fmt.Sprintf("%s at 0x%X: %v", e.class, e.at, e.err) }

func (e *objectError) Unwrap() error { return e.err }

func readObject(r *cursor.Reader, d *decoder) (Object, error) {
	at := r.Absolute()
	if d.depth >= maxDepth {
		return nil, &cursor.ParseError{
			Kind:     cursor.ErrAssertion,
			Offset:   at,
			Field:    "object nesting",
			Expected: fmt.Sprintf("at most %d levels", maxDepth),
			Actual:   fmt.Sprintf("level %d", d.depth+1),
		}
	}
	d.depth++
	defer func() { d.depth-- }()

	idx, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	class, err := d.tab.Name(idx, at)
	if err != nil {
		return nil, err
	}
	ver, err := r.ReadU16()
	if err != nil {
		return nil, err
	}

	var obj Object
	err = entry.ReadSized(r, func(length int64) error {
		if !classes.Known(class) {
			body, err := r.ReadBytes(length)
			obj = &Opaque{ClassName: class, Body: body}
			return err
		}
		obj, _ = classes.New(class, at)
		return obj.readBody(r, d)
	})
	if err != nil {
		var inner *objectError
		if errors.As(err, &inner) {
			return nil, err
		}
		return nil, &objectError{class: class, at: at, err: err}
	}
	obj.header().Version = ver
	return obj, nil
}

// Write encodes the graph.
func (g *Graph) Write() ([]byte, error) {
	if g.Root == nil {
		return nil, errors.New("fxgraph: graph has no root")
	}
	if err := checkTree(g.Root); err != nil {
		return nil, err
	}
	tab, err := entry.NewClassTable(g.Classes...)
	if err != nil {
		return nil, fmt.Errorf("fxgraph: %w", err)
	}
	if err := entry.CollectClasses(tab, g.Root, Object.Class, Object.Children); err != nil {
		return nil, fmt.Errorf("fxgraph: %w", err)
	}

	w := cursor.NewWriter()
	w.WriteASCII(Magic)
	w.WriteU16(version)
	w.WriteU16(0)
	names := tab.Names()
	w.WriteI32(int32(len(names)))
	for _, n := range names {
		w.WritePrefixedASCII(n)
	}
	if err := writeObject(w, tab, g.Root); err != nil {
		return nil, err
	}
	return w.Finish(), nil
}

// checkTree rejects nil children, which have no class to write.
func checkTree(root Object) error {
	var err error
	Walk(root, func(o Object, _ int) {
		for i, c := range o.Children() {
			if c == nil && err == nil {
				err = fmt.Errorf("fxgraph: %s child %d is nil", o.Class(), i)
			}
		}
	})
	return err
}

func writeObject(w *cursor.Writer, tab *entry.ClassTable, obj Object) error {
	idx, ok := tab.Index(obj.Class())
	if !ok {
		return fmt.Errorf("fxgraph: class %q missing from table", obj.Class())
	}
	w.WriteU16(idx)
	w.WriteU16(obj.header().Version)
	return entry.WriteSized(w, func() error { return obj.writeBody(w, tab) })
}

type node struct {
	Class    string `json:"class"`
	Version  uint16 `json:"version"`
	Value    any    `json:"value,omitempty"`
	Children []node `json:"children,omitempty"`
}

func toNode(o Object) node {
	n := node{Class: o.Class(), Version: o.header().Version, Value: o.value()}
	for _, c := range o.Children() {
		n.Children = append(n.Children, toNode(c))
	}
	return n
}

// MarshalJSON encodes the tree with each object's class name alongside its
// value, so dumps can be read without the class table.
func (g *Graph) MarshalJSON() ([]byte, error) {
	out := struct {
		Classes []string `json:"classes"`
		Root    *node    `json:"root,omitempty"`
	}{Classes: g.Classes}
	if g.Root != nil {
		n := toNode(g.Root)
		out.Root = &n
	}
	return json.Marshal(out)
}
