// Package tangent computes tangent space for wedge meshes.
//
// PerTriangle solves one frame per triangle from its positions and UVs. A
// Synthesizer then blends triangle frames into per-wedge frames; FanSynthesizer
// floods smoothing-group connected triangle fans, MikkSynthesizer delegates
// tangents to the tangentspace package after synthesizing normals.
package tangent

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/meshbuild/pkg/math"
	"github.com/Faultbox/meshbuild/pkg/mesh"
)

// FloatMin is the smallest normalized float32.
const FloatMin = 1.17549435e-38

// Frame is a tangent (X), bitangent (Y) and normal (Z) triple. The zero
// Frame marks a degenerate triangle that must not contribute to blending.
type Frame struct {
	X, Y, Z math.Vec3
}

// IsZero reports whether all three axes are zero.
func (f Frame) IsZero() bool {
	return f.X.IsZero() && f.Y.IsZero() && f.Z.IsZero()
}

// PerTriangle returns one frame per face of d, using UV channel 0.
func PerTriangle(d *mesh.Description, epsilon float32) []Frame {
	frames := make([]Frame, len(d.Faces))
	for f := range d.Faces {
		w := f * 3
		frames[f] = TriangleFrame(
			d.Corners(f),
			[3]math.Vec2{d.Wedges[w].UVs[0], d.Wedges[w+1].UVs[0], d.Wedges[w+2].UVs[0]},
			epsilon,
		)
	}
	return frames
}

// TriangleFrame solves the tangent frame of one triangle. Triangles with
// coincident corners, or whose frame collapses, yield the zero Frame.
func TriangleFrame(p [3]math.Vec3, uv [3]math.Vec2, epsilon float32) Frame {
	if math.PointsEqual(p[0], p[1], epsilon) ||
		math.PointsEqual(p[0], p[2], epsilon) ||
		math.PointsEqual(p[1], p[2], epsilon) {
		return Frame{}
	}

	normal := p[1].Sub(p[2]).Cross(p[0].Sub(p[2])).SafeNormal(max(epsilon, FloatMin))
	if normal.IsNearlyZero(FloatMin) {
		return Frame{}
	}

	tu, tv := textureToLocal(p, uv)
	f := Frame{
		X: fromR3(tu).SafeNormal(math.SmallNumber),
		Y: fromR3(tv).SafeNormal(math.SmallNumber),
		Z: normal,
	}
	math.CreateOrthonormalBasis(&f.X, &f.Y, &f.Z)

	if collapsed(f.X) || collapsed(f.Y) || collapsed(f.Z) {
		return Frame{}
	}
	return f
}

func collapsed(v math.Vec3) bool {
	return v.IsNearlyZero(math.KindaSmallNumber) || v.ContainsNaN()
}

// textureToLocal maps the unit U and V directions of texture space into
// object space. The parameter to texture map has rows (T1-T0, 0),
// (T2-T0, 0), (T0, 1); a singular map is treated as identity.
func textureToLocal(p [3]math.Vec3, uv [3]math.Vec2) (r3.Vec, r3.Vec) {
	a := r3.Vec{X: float64(uv[1].X - uv[0].X), Y: float64(uv[1].Y - uv[0].Y)}
	b := r3.Vec{X: float64(uv[2].X - uv[0].X), Y: float64(uv[2].Y - uv[0].Y)}
	c := r3.Vec{X: float64(uv[0].X), Y: float64(uv[0].Y), Z: 1}

	rowU, rowV := r3.Vec{X: 1}, r3.Vec{Y: 1}
	bc, ca, ab := r3.Cross(b, c), r3.Cross(c, a), r3.Cross(a, b)
	if det := r3.Dot(a, bc); det != 0 {
		rowU = r3.Scale(1/det, r3.Vec{X: bc.X, Y: ca.X, Z: ab.X})
		rowV = r3.Scale(1/det, r3.Vec{X: bc.Y, Y: ca.Y, Z: ab.Y})
	}

	e1 := toR3(p[1].Sub(p[0]))
	e2 := toR3(p[2].Sub(p[0]))
	o := toR3(p[0])
	toLocal := func(q r3.Vec) r3.Vec {
		return r3.Add(r3.Add(r3.Scale(q.X, e1), r3.Scale(q.Y, e2)), r3.Scale(q.Z, o))
	}
	return toLocal(rowU), toLocal(rowV)
}

func toR3(v math.Vec3) r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

func fromR3(v r3.Vec) math.Vec3 {
	return math.Vec3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}
