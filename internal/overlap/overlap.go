// Package overlap builds the overlapping corner table: for every wedge, the
// other wedges whose positions coincide within a tolerance.
//
// Points are sorted along Z and swept forward while the Z delta stays within
// the sweep tolerance; candidates are confirmed with a full per-axis check.
// The sweep only prunes on one axis, so it is near linear for typical meshes
// and quadratic when many points share the same Z.
package overlap

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/chewxy/math32"

	"github.com/Faultbox/meshbuild/pkg/math"
	"github.com/Faultbox/meshbuild/pkg/mesh"
)

var (
	ErrPointIndex = errors.New("corner references a missing position")
	ErrTolerance  = errors.New("negative tolerance")
)

// Table is a finalized, symmetric overlap relation over corner indices.
// It is read-only and safe for concurrent use.
type Table struct {
	tolerance float32
	overlaps  [][]int32
	pairs     int
}

// Build returns the overlap table for the wedges of a description.
func Build(positions []math.Vec3, wedges []mesh.Wedge, tolerance float32) (*Table, error) {
	points := make([]math.Vec3, len(wedges))
	for i := range wedges {
		p := wedges[i].PointIndex
		if int(p) >= len(positions) {
			return nil, fmt.Errorf("%w: corner %d, point %d of %d", ErrPointIndex, i, p, len(positions))
		}
		points[i] = positions[p]
	}
	return BuildPoints(points, tolerance)
}

// FromDescription is shorthand for Build(d.Positions, d.Wedges, tolerance).
func FromDescription(d *mesh.Description, tolerance float32) (*Table, error) {
	return Build(d.Positions, d.Wedges, tolerance)
}

// BuildPoints returns the overlap table for an arbitrary point list.
func BuildPoints(points []math.Vec3, tolerance float32) (*Table, error) {
	if tolerance < 0 {
		return nil, fmt.Errorf("%w: %v", ErrTolerance, tolerance)
	}

	t := &Table{
		tolerance: tolerance,
		overlaps:  make([][]int32, len(points)),
	}
	Sweep(points, tolerance, tolerance, func(a, b int) {
		t.overlaps[a] = append(t.overlaps[a], int32(b))
		t.overlaps[b] = append(t.overlaps[b], int32(a))
		t.pairs++
	})
	for _, o := range t.overlaps {
		slices.Sort(o)
	}
	return t, nil
}

type sortKey struct {
	index int
	z     float32
}

// Sweep calls fn(a, b) once for every pair of points whose Z values differ by
// at most sweepTolerance and whose positions match within compareTolerance.
// a is always the point that sorts first.
func Sweep(points []math.Vec3, sweepTolerance, compareTolerance float32, fn func(a, b int)) {
	keys := make([]sortKey, len(points))
	for i, p := range points {
		keys[i] = sortKey{index: i, z: p.Z}
	}
	slices.SortFunc(keys, func(a, b sortKey) int {
		if c := cmp.Compare(a.z, b.z); c != 0 {
			return c
		}
		return cmp.Compare(a.index, b.index)
	})

	for i := range keys {
		pi := points[keys[i].index]
		for j := i + 1; j < len(keys); j++ {
			if math32.Abs(keys[j].z-keys[i].z) > sweepTolerance {
				break
			}
			if math.PointsEqual(pi, points[keys[j].index], compareTolerance) {
				fn(keys[i].index, keys[j].index)
			}
		}
	}
}

// Find returns the corners overlapping corner c, ascending. The slice must
// not be modified.
func (t *Table) Find(c int) []int32 {
	if c < 0 || c >= len(t.overlaps) {
		return nil
	}
	return t.overlaps[c]
}

// Overlaps reports whether corners a and b overlap.
func (t *Table) Overlaps(a, b int) bool {
	_, found := slices.BinarySearch(t.Find(a), int32(b))
	return found
}

// Len returns the number of corners covered by the table.
func (t *Table) Len() int {
	return len(t.overlaps)
}

// Pairs returns the number of unordered overlapping pairs.
func (t *Table) Pairs() int {
	return t.pairs
}

// Tolerance returns the tolerance the table was built with.
func (t *Table) Tolerance() float32 {
	return t.tolerance
}
