package entry

import (
	"errors"
	"fmt"
	"slices"

	json "github.com/goccy/go-json"
)

// ErrUnknownKind is returned when an entry's kind has no declared bucket.
var ErrUnknownKind = errors.New("entry: no bucket for kind")

// Kinded is implemented by every entry stored in Buckets.
type Kinded[K comparable] interface {
	Kind() K
}

// Buckets partitions entries by kind. All returns them flattened in the
// declared bucket order, regardless of insertion order across buckets.
type Buckets[K comparable, T Kinded[K]] struct {
	order []K
	lists [][]T
}

// NewBuckets declares the buckets and their serialization order.
func NewBuckets[K comparable, T Kinded[K]](order ...K) *Buckets[K, T] {
	return &Buckets[K, T]{
		order: slices.Clone(order),
		lists: make([][]T, len(order)),
	}
}

func (b *Buckets[K, T]) slot(k K) int {
	return slices.Index(b.order, k)
}

// Add appends each item to the bucket for its kind.
func (b *Buckets[K, T]) Add(items ...T) error {
	for _, item := range items {
		i := b.slot(item.Kind())
		if i < 0 {
			return fmt.Errorf("%w: %v", ErrUnknownKind, item.Kind())
		}
		b.lists[i] = append(b.lists[i], item)
	}
	return nil
}

// Bucket returns the entries of one kind in insertion order.
func (b *Buckets[K, T]) Bucket(k K) []T {
	if i := b.slot(k); i >= 0 {
		return b.lists[i]
	}
	return nil
}

// All returns every entry, bucket by bucket in declared order.
func (b *Buckets[K, T]) All() []T {
	out := make([]T, 0, b.Len())
	for _, l := range b.lists {
		out = append(out, l...)
	}
	return out
}

func (b *Buckets[K, T]) Len() int {
	n := 0
	for _, l := range b.lists {
		n += len(l)
	}
	return n
}

// Order returns the declared bucket order.
func (b *Buckets[K, T]) Order() []K { return slices.Clone(b.order) }

// Remove deletes every entry for which match returns true and reports how
// many were removed.
func (b *Buckets[K, T]) Remove(match func(T) bool) int {
	n := 0
	for i, l := range b.lists {
		kept := slices.DeleteFunc(l, match)
		n += len(l) - len(kept)
		b.lists[i] = kept
	}
	return n
}

// Of returns the entries of bucket k that have concrete type S.
func Of[S any, K comparable, T Kinded[K]](b *Buckets[K, T], k K) []S {
	var out []S
	for _, item := range b.Bucket(k) {
		if s, ok := any(item).(S); ok {
			out = append(out, s)
		}
	}
	return out
}

type bucketJSON[T any] struct {
	Kind    string `json:"kind"`
	Entries []T    `json:"entries"`
}

// MarshalJSON encodes the non-empty buckets in declared order.
func (b *Buckets[K, T]) MarshalJSON() ([]byte, error) {
	out := make([]bucketJSON[T], 0, len(b.order))
	for i, k := range b.order {
		if len(b.lists[i]) == 0 {
			continue
		}
		out = append(out, bucketJSON[T]{Kind: fmt.Sprint(k), Entries: b.lists[i]})
	}
	return json.Marshal(out)
}
