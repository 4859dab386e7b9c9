// Package meshtest builds small wedge meshes shared by the pipeline tests.
package meshtest

import (
	"github.com/Faultbox/meshbuild/pkg/math"
	"github.com/Faultbox/meshbuild/pkg/mesh"
)

// Builder accumulates positions and faces, sharing positions that are
// exactly equal.
type Builder struct {
	desc   mesh.Description
	points map[math.Vec3]uint32
}

// NewBuilder returns an empty builder with one UV channel.
func NewBuilder() *Builder {
	return &Builder{
		desc:   mesh.Description{NumUVs: 1},
		points: make(map[math.Vec3]uint32),
	}
}

func (b *Builder) point(p math.Vec3) uint32 {
	if idx, ok := b.points[p]; ok {
		return idx
	}
	idx := uint32(len(b.desc.Positions))
	b.desc.Positions = append(b.desc.Positions, p)
	b.points[p] = idx
	return idx
}

// Triangle appends one face.
func (b *Builder) Triangle(p [3]math.Vec3, uv [3]math.Vec2, material int, mask uint32) *Builder {
	for i := 0; i < 3; i++ {
		w := mesh.Wedge{PointIndex: b.point(p[i])}
		w.UVs[0] = uv[i]
		b.desc.Wedges = append(b.desc.Wedges, w)
	}
	b.desc.Faces = append(b.desc.Faces, mesh.Face{Material: material, SmoothingMask: mask})
	return b
}

// Quad appends the two triangles (0,1,2) and (0,2,3) with UVs covering the
// unit square.
func (b *Builder) Quad(p [4]math.Vec3, material int, mask uint32) *Builder {
	uv := [4]math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	b.Triangle([3]math.Vec3{p[0], p[1], p[2]}, [3]math.Vec2{uv[0], uv[1], uv[2]}, material, mask)
	b.Triangle([3]math.Vec3{p[0], p[2], p[3]}, [3]math.Vec2{uv[0], uv[2], uv[3]}, material, mask)
	return b
}

// Build returns the accumulated description.
func (b *Builder) Build() *mesh.Description {
	d := b.desc
	return &d
}

// UnitQuad is two triangles over four distinct positions in the XY plane.
func UnitQuad() *mesh.Description {
	return NewBuilder().Quad([4]math.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 1, Z: 0},
		{X: 0, Y: 1, Z: 0},
	}, 0, 1).Build()
}

// cubeFaces lists origin, u and v axes of each cube side.
var cubeFaces = [6][3]math.Vec3{
	{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 1, Y: 0, Z: 0}}, // -Z
	{{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}}, // +Z
	{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 1}}, // -Y
	{{X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 0}}, // +Y
	{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 1}, {X: 0, Y: 1, Z: 0}}, // -X
	{{X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 1}}, // +X
}

// Cube builds a unit cube. With flat set every side gets its own smoothing
// group; otherwise all sides share group 1.
func Cube(flat bool) *mesh.Description {
	b := NewBuilder()
	for i, f := range cubeFaces {
		o, u, v := f[0], f[1], f[2]
		mask := uint32(1)
		if flat {
			mask = 1 << i
		}
		b.Quad([4]math.Vec3{o, o.Add(u), o.Add(u).Add(v), o.Add(v)}, 0, mask)
	}
	return b.Build()
}

// Grid builds an n x n grid of quads in the XY plane, one material per row
// band of the given height (0 means a single material).
func Grid(n int, band int) *mesh.Description {
	b := NewBuilder()
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			fx, fy := float32(x), float32(y)
			material := 0
			if band > 0 {
				material = y / band
			}
			p := [4]math.Vec3{
				{X: fx, Y: fy},
				{X: fx + 1, Y: fy},
				{X: fx + 1, Y: fy + 1},
				{X: fx, Y: fy + 1},
			}
			uv := [4]math.Vec2{
				{X: fx / float32(n), Y: fy / float32(n)},
				{X: (fx + 1) / float32(n), Y: fy / float32(n)},
				{X: (fx + 1) / float32(n), Y: (fy + 1) / float32(n)},
				{X: fx / float32(n), Y: (fy + 1) / float32(n)},
			}
			b.Triangle([3]math.Vec3{p[0], p[1], p[2]}, [3]math.Vec2{uv[0], uv[1], uv[2]}, material, 1)
			b.Triangle([3]math.Vec3{p[0], p[2], p[3]}, [3]math.Vec2{uv[0], uv[2], uv[3]}, material, 1)
		}
	}
	return b.Build()
}

// WithDegenerate returns the unit quad plus a third triangle whose first two
// corners coincide.
func WithDegenerate() *mesh.Description {
	b := NewBuilder().Quad([4]math.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 1, Z: 0},
		{X: 0, Y: 1, Z: 0},
	}, 0, 1)
	b.Triangle(
		[3]math.Vec3{{X: 2, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0.000001}, {X: 3, Y: 1, Z: 0}},
		[3]math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}},
		0, 1,
	)
	return b.Build()
}
