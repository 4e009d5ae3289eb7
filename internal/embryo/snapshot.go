// Package embryo holds the in-memory representation of one segmented
// embryo: the property tree loaded from an Astec acquisition, the snapshot
// id arithmetic, and the functions resolving a snapshot into a
// human-readable cell or tissue label.
package embryo

// SnapshotID identifies one detected cell instance at one timepoint.
// Ids concatenate the timepoint with a k-digit suffix unique within it,
// so 1330300 with k=4 is suffix 0300 at timepoint 133.
type SnapshotID int64

// DefaultKDigits is the suffix width used by the Astec pipeline.
const DefaultKDigits = 4

// IDCodec decodes the timepoint/suffix structure of snapshot ids.
type IDCodec struct {
	// KDigits is the width of the per-timepoint suffix.
	KDigits int
}

// DefaultCodec returns a codec with the standard 4-digit suffix.
func DefaultCodec() IDCodec {
	return IDCodec{KDigits: DefaultKDigits}
}

func (c IDCodec) modulus() SnapshotID {
	m := SnapshotID(1)
	for i := 0; i < c.KDigits; i++ {
		m *= 10
	}
	return m
}

// Timepoint returns the timepoint encoded in id. Ids with at most KDigits
// decimal digits belong to timepoint 0, which integer division gives us
// directly.
func (c IDCodec) Timepoint(id SnapshotID) int {
	return int(id / c.modulus())
}

// Suffix returns the per-timepoint part of id.
func (c IDCodec) Suffix(id SnapshotID) int {
	return int(id % c.modulus())
}

// IsExterior reports whether id is the exterior sentinel of its timepoint.
// The exterior is always suffix 1: id == 1 + tp*10^k.
func (c IDCodec) IsExterior(id SnapshotID) bool {
	return id == 1+SnapshotID(c.Timepoint(id))*c.modulus()
}
