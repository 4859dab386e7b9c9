package mesh

import (
	"errors"
	"testing"

	"github.com/Faultbox/meshbuild/pkg/math"
)

func triangleDesc() *Description {
	return &Description{
		Positions: []math.Vec3{{X: 0}, {X: 1}, {Y: 1}},
		Wedges:    []Wedge{{PointIndex: 0}, {PointIndex: 1}, {PointIndex: 2}},
		Faces:     []Face{{Material: 0, SmoothingMask: 1}},
		NumUVs:    1,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Description)
		want   []error
	}{
		{name: "valid", mutate: func(d *Description) {}},
		{
			name:   "empty",
			mutate: func(d *Description) { d.Faces = nil },
			want:   []error{ErrNoFaces},
		},
		{
			name:   "wedge count",
			mutate: func(d *Description) { d.Wedges = append(d.Wedges, Wedge{}) },
			want:   []error{ErrWedgeCount},
		},
		{
			name:   "point index",
			mutate: func(d *Description) { d.Wedges[2].PointIndex = 9 },
			want:   []error{ErrPointIndex},
		},
		{
			name: "several",
			mutate: func(d *Description) {
				d.NumUVs = 0
				d.Wedges[0].PointIndex = 3
			},
			want: []error{ErrUVChannels, ErrPointIndex},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := triangleDesc()
			tt.mutate(d)
			err := d.Validate()
			if len(tt.want) == 0 {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			for _, w := range tt.want {
				if !errors.Is(err, w) {
					t.Errorf("Validate() = %v, want %v", err, w)
				}
			}
		})
	}
}

func TestIsDegenerate(t *testing.T) {
	d := triangleDesc()
	if d.IsDegenerate(0, math.ThreshPointsAreSame) {
		t.Error("triangle should not be degenerate")
	}
	d.Positions[1] = math.Vec3{X: 0.00001}
	if !d.IsDegenerate(0, math.ThreshPointsAreSame) {
		t.Error("triangle with coincident corners should be degenerate")
	}
	if d.IsDegenerate(0, 0) {
		t.Error("zero tolerance only matches exact positions")
	}
}

func TestBuildVertexEqual(t *testing.T) {
	base := BuildVertex{
		Position: math.Vec3{X: 1, Y: 2, Z: 3},
		TangentX: math.Vec3{X: 1},
		TangentY: math.Vec3{Y: 1},
		TangentZ: math.Vec3{Z: 1},
		Color:    White,
	}
	base.UVs[0] = math.Vec2{X: 0.5, Y: 0.5}

	tests := []struct {
		name   string
		mutate func(v *BuildVertex)
		want   bool
	}{
		{"identical", func(v *BuildVertex) {}, true},
		{"position within tolerance", func(v *BuildVertex) { v.Position.X += 0.00001 }, true},
		{"position outside tolerance", func(v *BuildVertex) { v.Position.X += 0.001 }, false},
		{"normal differs", func(v *BuildVertex) { v.TangentZ = math.Vec3{Z: -1} }, false},
		{"color differs", func(v *BuildVertex) { v.Color.R = 0 }, false},
		{"uv seam", func(v *BuildVertex) { v.UVs[0].X = 0.6 }, false},
		{"unused uv channel ignored", func(v *BuildVertex) { v.UVs[1].X = 0.9 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := base
			tt.mutate(&other)
			if got := base.Equal(&other, 1, math.ThreshPointsAreSame); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPackNormal(t *testing.T) {
	p := PackNormal(math.Vec3{X: 1, Y: -1, Z: 0}, -1)
	if p != (PackedNormal{127, -127, 0, -127}) {
		t.Errorf("PackNormal = %v", p)
	}
	v, w := PackNormal16(math.Vec3{X: 0.5}, 1).Unpack()
	if v.X < 0.4999 || v.X > 0.5001 || w != 1 {
		t.Errorf("PackNormal16 round trip = %v, %v", v, w)
	}
}

func TestBasisDeterminantSign(t *testing.T) {
	x, y, z := math.Vec3{X: 1}, math.Vec3{Y: 1}, math.Vec3{Z: 1}
	if BasisDeterminantSign(x, y, z) != 1 {
		t.Error("right-handed basis should have sign +1")
	}
	if BasisDeterminantSign(x, y.Neg(), z) != -1 {
		t.Error("mirrored basis should have sign -1")
	}
}

func TestCombine(t *testing.T) {
	indices, sections := Combine([][]uint32{{0, 1, 2, 0, 2, 3}, {4, 5, 6}}, []int{2, 7})

	if len(indices) != 9 {
		t.Fatalf("expected 9 indices, got %d", len(indices))
	}
	want := []Section{
		{Material: 2, FirstIndex: 0, NumTriangles: 2, MinVertexIndex: 0, MaxVertexIndex: 3},
		{Material: 7, FirstIndex: 6, NumTriangles: 1, MinVertexIndex: 4, MaxVertexIndex: 6},
	}
	for i := range want {
		if sections[i] != want[i] {
			t.Errorf("section %d = %+v, want %+v", i, sections[i], want[i])
		}
	}
	if got := sections[1].Indices(indices); got[0] != 4 {
		t.Errorf("section slice starts with %d, want 4", got[0])
	}
}

func TestIndexWidth(t *testing.T) {
	small := []uint32{0, 1, MaxIndex16}
	if Needs32Bit(small) {
		t.Error("indices within 16-bit range should not need 32 bits")
	}
	if !Needs32Bit(append(small, MaxIndex16+1)) {
		t.Error("index above 65535 should need 32 bits")
	}
	narrow := ConvertIndices[uint16](small)
	if narrow[2] != 0xFFFF {
		t.Errorf("ConvertIndices = %v", narrow)
	}
}

func TestComputeBounds(t *testing.T) {
	b := ComputeBounds([]math.Vec3{{X: -1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: 1}, {}})
	if b.Origin != (math.Vec3{}) {
		t.Errorf("origin = %v, want zero", b.Origin)
	}
	if b.BoxExtent != (math.Vec3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("extent = %v", b.BoxExtent)
	}
	if r := b.SphereRadius; r < 1.732 || r > 1.733 {
		t.Errorf("radius = %v, want sqrt(3)", r)
	}
	if (ComputeBounds(nil) != Bounds{}) {
		t.Error("empty point set should give zero bounds")
	}
}

func TestWedgeMapDropped(t *testing.T) {
	m := NewWedgeMap(4)
	m[1] = 0
	if m.Dropped() != 3 {
		t.Errorf("Dropped() = %d, want 3", m.Dropped())
	}
}
