package depth

import (
	"slices"
	"testing"

	"github.com/Faultbox/meshbuild/internal/meshtest"
	"github.com/Faultbox/meshbuild/pkg/math"
	"github.com/Faultbox/meshbuild/pkg/mesh"
)

// seamQuad is a quad whose diagonal vertices are duplicated, as a UV seam
// would leave them.
var seamQuad = []math.Vec3{
	{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1},
	{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
}

func sortedTriangles(idx []uint32) [][3]uint32 {
	var tris [][3]uint32
	for i := 0; i+2 < len(idx); i += 3 {
		tris = append(tris, [3]uint32{idx[i], idx[i+1], idx[i+2]})
	}
	slices.SortFunc(tris, func(a, b [3]uint32) int {
		return slices.Compare(a[:], b[:])
	})
	return tris
}

func TestRepresentatives(t *testing.T) {
	points := []math.Vec3{
		{X: 1}, {X: 2}, {X: 1}, {X: 1, Z: 0.00001}, {X: 2}, {X: 1},
	}
	got := Representatives(points)
	want := []uint32{0, 1, 0, 3, 1, 0}
	if !slices.Equal(got, want) {
		t.Errorf("Representatives = %v, want %v", got, want)
	}
}

func TestBuildDepthOnly(t *testing.T) {
	indices := []uint32{0, 1, 2, 3, 4, 5}
	sections := []mesh.Section{{FirstIndex: 0, NumTriangles: 2}}

	got := BuildDepthOnly(seamQuad, indices, sections)

	want := sortedTriangles([]uint32{0, 1, 2, 0, 2, 5})
	if !slices.Equal(sortedTriangles(got), want) {
		t.Errorf("depth triangles = %v, want %v", sortedTriangles(got), want)
	}
	for _, v := range got {
		if v == 3 || v == 4 {
			t.Errorf("duplicate vertex %d survived", v)
		}
	}
}

func TestBuildDepthOnlyMergesSections(t *testing.T) {
	indices := []uint32{0, 1, 2, 3, 4, 5}
	sections := []mesh.Section{
		{Material: 0, FirstIndex: 0, NumTriangles: 1},
		{Material: 1, FirstIndex: 3, NumTriangles: 1},
	}
	got := BuildDepthOnly(seamQuad, indices, sections)
	if len(got) != 6 {
		t.Fatalf("expected 6 indices, got %d", len(got))
	}
}

func TestReverse(t *testing.T) {
	indices := []uint32{0, 1, 2, 3, 4, 5, 6, 7, 8}
	sections := []mesh.Section{
		{FirstIndex: 0, NumTriangles: 2},
		{FirstIndex: 6, NumTriangles: 1},
	}

	got := Reverse(indices, sections)
	want := []uint32{5, 4, 3, 2, 1, 0, 8, 7, 6}
	if !slices.Equal(got, want) {
		t.Errorf("Reverse = %v, want %v", got, want)
	}
	if indices[0] != 0 {
		t.Error("Reverse modified its input")
	}
}

func TestReverseAll(t *testing.T) {
	got := ReverseAll([]uint32{0, 1, 2, 0, 2, 3})
	want := []uint32{3, 2, 0, 2, 1, 0}
	if !slices.Equal(got, want) {
		t.Errorf("ReverseAll = %v, want %v", got, want)
	}
}

func TestWireframe(t *testing.T) {
	tests := []struct {
		name      string
		positions []math.Vec3
		indices   []uint32
		wantEdges int
	}{
		{
			name:      "welded quad",
			positions: []math.Vec3{{X: 0}, {X: 1}, {X: 1, Y: 1}, {Y: 1}},
			indices:   []uint32{0, 1, 2, 0, 2, 3},
			wantEdges: 5,
		},
		{
			name:      "seam quad",
			positions: seamQuad,
			indices:   []uint32{0, 1, 2, 3, 4, 5},
			wantEdges: 5,
		},
		{
			name:      "empty",
			wantEdges: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wireframe(tt.positions, tt.indices)
			if len(got) != tt.wantEdges*2 {
				t.Errorf("expected %d edges, got %d", tt.wantEdges, len(got)/2)
			}
		})
	}
}

func TestWireframeCube(t *testing.T) {
	d := meshtest.Cube(true)
	positions := make([]math.Vec3, len(d.Wedges))
	indices := make([]uint32, len(d.Wedges))
	for w := range d.Wedges {
		positions[w] = d.WedgePosition(w)
		indices[w] = uint32(w)
	}

	// 12 cube edges plus one diagonal per side.
	if got := len(Wireframe(positions, indices)) / 2; got != 18 {
		t.Errorf("expected 18 edges, got %d", got)
	}
}
