// Package tangentspace generates per-corner tangents through a callback
// geometry interface, following the MikkTSpace scheme: corners that share
// position, normal and UV are welded into one vertex, and each vertex
// averages the angle-weighted tangents of the triangles around it that have
// the same UV orientation.
package tangentspace

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/meshbuild/pkg/math"
)

var (
	ErrFaceSize = errors.New("faces must have 3 or 4 vertices")
)

// Geometry is the callback contract a mesh representation implements.
type Geometry interface {
	NumFaces() int
	NumVerticesOfFace(face int) int
	Position(face, vert int) math.Vec3
	Normal(face, vert int) math.Vec3
	TexCoord(face, vert int) math.Vec2
	// SetTangentSpace receives the unit tangent and the bitangent sign
	// (+1 or -1) of one face corner.
	SetTangentSpace(face, vert int, tangent math.Vec3, sign float32)
}

// Options controls generation.
type Options struct {
	// IgnoreDegenerates skips triangles with zero geometric area; their
	// corners receive no callback.
	IgnoreDegenerates bool
}

type corner struct {
	face, vert int
}

type triangle struct {
	corners    [3]corner
	verts      [3]int32
	tangent    math.Vec3
	preserving bool
	degenerate bool
	uvDegen    bool
}

type vertexKey struct {
	p, n math.Vec3
	uv   math.Vec2
}

type groupKey struct {
	vertex     int32
	preserving bool
}

// Generate computes tangents for every corner of g.
func Generate(g Geometry, opts Options) error {
	tris, err := triangulate(g)
	if err != nil {
		return err
	}

	// Weld corners into vertices.
	vertices := make(map[vertexKey]int32)
	for ti := range tris {
		t := &tris[ti]
		for k, c := range t.corners {
			key := vertexKey{
				p:  g.Position(c.face, c.vert),
				n:  g.Normal(c.face, c.vert),
				uv: g.TexCoord(c.face, c.vert),
			}
			id, ok := vertices[key]
			if !ok {
				id = int32(len(vertices))
				vertices[key] = id
			}
			t.verts[k] = id
		}
		initTriangle(g, t)
	}

	// Accumulate angle-weighted, normal-projected tangents per group.
	sums := make(map[groupKey]math.Vec3)
	for ti := range tris {
		t := &tris[ti]
		if t.degenerate || t.uvDegen {
			continue
		}
		for k := 0; k < 3; k++ {
			n := g.Normal(t.corners[k].face, t.corners[k].vert)
			projected := project(t.tangent, n)
			if projected.IsZero() {
				continue
			}
			key := groupKey{vertex: t.verts[k], preserving: t.preserving}
			sums[key] = sums[key].Add(projected.Scale(cornerAngle(g, t, k, n)))
		}
	}

	done := make(map[corner]bool)
	for ti := range tris {
		t := &tris[ti]
		if t.degenerate && opts.IgnoreDegenerates {
			continue
		}
		for k, c := range t.corners {
			if done[c] {
				continue
			}
			done[c] = true

			n := g.Normal(c.face, c.vert)
			sum, ok := sums[groupKey{vertex: t.verts[k], preserving: t.preserving}]
			if !ok {
				// Degenerate triangles borrow any group of the same vertex.
				sum = sums[groupKey{vertex: t.verts[k], preserving: !t.preserving}]
			}
			tangent := project(sum, n)
			sign := float32(1)
			if !t.preserving {
				sign = -1
			}
			g.SetTangentSpace(c.face, c.vert, tangent, sign)
		}
	}
	return nil
}

// triangulate splits quads along their shorter diagonal.
func triangulate(g Geometry) ([]triangle, error) {
	tris := make([]triangle, 0, g.NumFaces())
	for f := 0; f < g.NumFaces(); f++ {
		switch n := g.NumVerticesOfFace(f); n {
		case 3:
			tris = append(tris, triangle{corners: [3]corner{{f, 0}, {f, 1}, {f, 2}}})
		case 4:
			d02 := g.Position(f, 2).Sub(g.Position(f, 0)).LengthSquared()
			d13 := g.Position(f, 3).Sub(g.Position(f, 1)).LengthSquared()
			if d02 <= d13 {
				tris = append(tris,
					triangle{corners: [3]corner{{f, 0}, {f, 1}, {f, 2}}},
					triangle{corners: [3]corner{{f, 0}, {f, 2}, {f, 3}}})
			} else {
				tris = append(tris,
					triangle{corners: [3]corner{{f, 0}, {f, 1}, {f, 3}}},
					triangle{corners: [3]corner{{f, 1}, {f, 2}, {f, 3}}})
			}
		default:
			return nil, fmt.Errorf("%w: face %d has %d", ErrFaceSize, f, n)
		}
	}
	return tris, nil
}

// initTriangle computes the UV orientation and first-order tangent.
func initTriangle(g Geometry, t *triangle) {
	p0 := g.Position(t.corners[0].face, t.corners[0].vert)
	p1 := g.Position(t.corners[1].face, t.corners[1].vert)
	p2 := g.Position(t.corners[2].face, t.corners[2].vert)
	uv0 := g.TexCoord(t.corners[0].face, t.corners[0].vert)
	uv1 := g.TexCoord(t.corners[1].face, t.corners[1].vert)
	uv2 := g.TexCoord(t.corners[2].face, t.corners[2].vert)

	d1, d2 := p1.Sub(p0), p2.Sub(p0)
	t21, t31 := uv1.Sub(uv0), uv2.Sub(uv0)

	signedArea := t21.X*t31.Y - t21.Y*t31.X
	t.preserving = signedArea > 0
	t.degenerate = d1.Cross(d2).LengthSquared() == 0
	t.uvDegen = math32.Abs(signedArea) < FloatMin

	s := float32(1)
	if !t.preserving {
		s = -1
	}
	t.tangent = d1.Scale(t31.Y).Sub(d2.Scale(t21.Y)).Scale(s)
}

// FloatMin is the smallest normalized float32.
const FloatMin = 1.17549435e-38

func project(v, n math.Vec3) math.Vec3 {
	return v.Sub(n.Scale(n.Dot(v))).SafeNormal(math.SmallNumber)
}

// cornerAngle returns the interior angle at corner k measured in the plane
// perpendicular to n.
func cornerAngle(g Geometry, t *triangle, k int, n math.Vec3) float32 {
	at := func(i int) math.Vec3 {
		c := t.corners[(k+i)%3]
		return g.Position(c.face, c.vert)
	}
	p := at(0)
	e1 := project(at(1).Sub(p), n)
	e2 := project(at(2).Sub(p), n)
	cos := math32.Max(-1, math32.Min(1, e1.Dot(e2)))
	return math32.Acos(cos)
}
