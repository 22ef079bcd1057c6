// Package entry provides the object-graph layer shared by format schemas:
// sized self-describing records, discriminant dispatch, bucketed collections
// of variant entries, and two-phase cross-reference linking.
//
// Files store references between entries as integer indices into a
// collection's serialization order. Schemas convert those indices to names
// right after a file has been read ([NameOf], [NamesOf]) and convert names back
// to indices just before writing ([IndexOf], [IndicesOf]), so entries can be
// added, removed and reordered in between.
//
// Collections that hold several concrete entry types keep one bucket per type
// ([Buckets]) and flatten them in a declared order on write. That order is
// part of each format's contract because the stored indices point into the
// flattened sequence.
package entry
