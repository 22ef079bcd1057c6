package entry

import (
	"fmt"

	"github.com/samcharles93/assetfmt/pkg/cursor"
)

// Registry maps discriminant values to constructors for the concrete type
// they select. There is no fallback: an unregistered discriminant is an
// error, never a default.
type Registry[D comparable, T any] struct {
	field string
	ctors map[D]func() T
}

// NewRegistry builds a registry. field names the discriminant in errors.
func NewRegistry[D comparable, T any](field string, ctors map[D]func() T) *Registry[D, T] {
	return &Registry[D, T]{field: field, ctors: ctors}
}

// Known reports whether d has a constructor.
func (g *Registry[D, T]) Known(d D) bool {
	_, ok := g.ctors[d]
	return ok
}

// New constructs the type selected by d. offset is the absolute position the
// discriminant was read from.
func (g *Registry[D, T]) New(d D, offset int64) (T, error) {
	ctor, ok := g.ctors[d]
	if !ok {
		var zero T
		return zero, &cursor.ParseError{
			Kind:     cursor.ErrUnknownDiscriminant,
			Offset:   offset,
			Field:    g.field,
			Expected: "a registered value",
			Actual:   fmt.Sprint(d),
		}
	}
	return ctor(), nil
}

// Peek reads the discriminant delta bytes ahead of the cursor without
// consuming anything and constructs the matching type, so the new value can
// read the record from its first byte.
func Peek[D comparable, T any](r *cursor.Reader, g *Registry[D, T], delta int64, get func(offset int64) (D, error)) (T, error) {
	d, err := get(r.Position() + delta)
	if err != nil {
		var zero T
		return zero, err
	}
	return g.New(d, r.Absolute()+delta)
}
