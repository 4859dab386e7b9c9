package mesh

import (
	"golang.org/x/exp/constraints"
)

// IndexNone marks a wedge that was dropped as degenerate.
const IndexNone int32 = -1

// MaxIndex16 is the largest vertex index a 16-bit index buffer can hold.
const MaxIndex16 = 0xFFFF

// WedgeMap maps every wedge to its final vertex, or IndexNone.
type WedgeMap []int32

// NewWedgeMap returns a map of n dropped wedges.
func NewWedgeMap(n int) WedgeMap {
	m := make(WedgeMap, n)
	for i := range m {
		m[i] = IndexNone
	}
	return m
}

// Dropped returns the number of wedges marked IndexNone.
func (m WedgeMap) Dropped() int {
	n := 0
	for _, v := range m {
		if v == IndexNone {
			n++
		}
	}
	return n
}

// Section is a single-material run of triangles in the shared index buffer.
type Section struct {
	Material       int
	FirstIndex     uint32
	NumTriangles   uint32
	MinVertexIndex uint32
	MaxVertexIndex uint32
}

// NumIndices returns 3 * NumTriangles.
func (s Section) NumIndices() uint32 {
	return s.NumTriangles * 3
}

// Indices returns the section's slice of the combined index buffer.
func (s Section) Indices(all []uint32) []uint32 {
	return all[s.FirstIndex : s.FirstIndex+s.NumIndices()]
}

// Combine concatenates per-section index lists into one buffer and returns
// the sections describing it. materials[i] is the material of section i.
func Combine(sectionIndices [][]uint32, materials []int) ([]uint32, []Section) {
	total := 0
	for _, idx := range sectionIndices {
		total += len(idx)
	}

	combined := make([]uint32, 0, total)
	sections := make([]Section, len(sectionIndices))
	for i, idx := range sectionIndices {
		s := Section{
			FirstIndex:   uint32(len(combined)),
			NumTriangles: uint32(len(idx) / 3),
		}
		if i < len(materials) {
			s.Material = materials[i]
		}
		if len(idx) > 0 {
			s.MinVertexIndex = idx[0]
			for _, v := range idx {
				s.MinVertexIndex = min(s.MinVertexIndex, v)
				s.MaxVertexIndex = max(s.MaxVertexIndex, v)
			}
		}
		combined = append(combined, idx...)
		sections[i] = s
	}
	return combined, sections
}

// Needs32Bit reports whether any index exceeds the 16-bit range.
func Needs32Bit(indices []uint32) bool {
	for _, v := range indices {
		if v > MaxIndex16 {
			return true
		}
	}
	return false
}

// ConvertIndices copies indices into an index buffer of width T. Values are
// truncated, callers check Needs32Bit first.
func ConvertIndices[T constraints.Unsigned](indices []uint32) []T {
	out := make([]T, len(indices))
	for i, v := range indices {
		out[i] = T(v)
	}
	return out
}
