package entry

import (
	"errors"
	"fmt"
	"math"

	"github.com/samcharles93/assetfmt/pkg/cursor"
)

// MaxClasses is the largest table a u16 class index can address.
const MaxClasses = math.MaxUint16

// ErrClassTableFull is returned when a table would outgrow MaxClasses.
var ErrClassTableFull = errors.New("entry: class table full")

// ClassTable is a file-level table of class names. Records refer to their
// class by a 1-based index into it.
type ClassTable struct {
	names []string
	index map[string]uint16
}

// NewClassTable returns a table holding names in order. Duplicates keep their
// position, but lookups by name return the first occurrence.
func NewClassTable(names ...string) (*ClassTable, error) {
	if len(names) > MaxClasses {
		return nil, fmt.Errorf("%w: %d names, at most %d", ErrClassTableFull, len(names), MaxClasses)
	}
	t := &ClassTable{index: make(map[string]uint16, len(names))}
	for _, n := range names {
		t.names = append(t.names, n)
		if _, ok := t.index[n]; !ok {
			t.index[n] = uint16(len(t.names))
		}
	}
	return t, nil
}

// Register adds name if it is not present and returns its 1-based index.
func (t *ClassTable) Register(name string) (uint16, error) {
	if i, ok := t.index[name]; ok {
		return i, nil
	}
	if len(t.names) >= MaxClasses {
		return 0, fmt.Errorf("%w: cannot add %q", ErrClassTableFull, name)
	}
	t.names = append(t.names, name)
	i := uint16(len(t.names))
	t.index[name] = i
	return i, nil
}

// Index returns the 1-based index of name.
func (t *ClassTable) Index(name string) (uint16, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Name resolves a 1-based index read at offset.
func (t *ClassTable) Name(index uint16, offset int64) (string, error) {
	if index == 0 || int(index) > len(t.names) {
		return "", &cursor.ParseError{
			Kind:     cursor.ErrUnknownDiscriminant,
			Offset:   offset,
			Field:    "class index",
			Expected: fmt.Sprintf("1..%d", len(t.names)),
			Actual:   fmt.Sprint(index),
		}
	}
	return t.names[index-1], nil
}

func (t *ClassTable) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

func (t *ClassTable) Len() int { return len(t.names) }

// CollectClasses registers the class of root and then, depth first, the
// classes of its children. The resulting order matches the order in which a
// writer would first meet each class.
func CollectClasses[T any](t *ClassTable, root T, class func(T) string, children func(T) []T) error {
	if _, err := t.Register(class(root)); err != nil {
		return err
	}
	for _, c := range children(root) {
		if err := CollectClasses(t, c, class, children); err != nil {
			return err
		}
	}
	return nil
}
