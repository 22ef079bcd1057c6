package entry

import (
	"fmt"

	"github.com/samcharles93/assetfmt/pkg/cursor"
)

// NoIndex is the stored index meaning "no reference".
const NoIndex int32 = -1

// Named is implemented by entries that can be the target of a reference.
type Named interface {
	EntryName() string
}

// NameOf resolves a stored index into list to the target's name. NoIndex
// resolves to the empty string. A target without a name cannot be told apart
// from NoIndex once resolved, so referencing one is an error.
func NameOf[T Named](list []T, index int32) (string, error) {
	if index == NoIndex {
		return "", nil
	}
	if index < 0 || int(index) >= len(list) {
		return "", fmt.Errorf("%w: index %d outside collection of %d entries", cursor.ErrUnresolvedReference, index, len(list))
	}
	name := list[index].EntryName()
	if name == "" {
		return "", fmt.Errorf("%w: index %d names an entry without a name", cursor.ErrUnresolvedReference, index)
	}
	return name, nil
}

// IndexOf finds the first entry in list called name. The empty string
// resolves to NoIndex; any other name must exist.
func IndexOf[T Named](list []T, name string) (int32, error) {
	if name == "" {
		return NoIndex, nil
	}
	for i, e := range list {
		if e.EntryName() == name {
			return int32(i), nil
		}
	}
	return NoIndex, fmt.Errorf("%w: no entry named %q", cursor.ErrUnresolvedReference, name)
}

// NamesOf applies NameOf to every slot, preserving slot positions.
func NamesOf[T Named](list []T, indices []int32) ([]string, error) {
	out := make([]string, len(indices))
	for i, idx := range indices {
		name, err := NameOf(list, idx)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		out[i] = name
	}
	return out, nil
}

// IndicesOf applies IndexOf to every slot, preserving slot positions.
func IndicesOf[T Named](list []T, names []string) ([]int32, error) {
	out := make([]int32, len(names))
	for i, name := range names {
		idx, err := IndexOf(list, name)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		out[i] = idx
	}
	return out, nil
}
