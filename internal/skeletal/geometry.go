package skeletal

import (
	"github.com/Faultbox/meshbuild/internal/tangentspace"
	"github.com/Faultbox/meshbuild/pkg/math"
	"github.com/Faultbox/meshbuild/pkg/mesh"
)

// skinnedGeometry exposes a skinned mesh to tangentspace. Positions and UVs
// come from the input; normals and results live in the corner description
// built for tangent synthesis.
type skinnedGeometry struct {
	in      *Input
	corners *mesh.Description
}

var _ tangentspace.Geometry = (*skinnedGeometry)(nil)

func (g *skinnedGeometry) wedge(face, vert int) *Wedge {
	return &g.in.Wedges[g.in.Faces[face].Wedges[vert]]
}

func (g *skinnedGeometry) NumFaces() int { return len(g.in.Faces) }

func (g *skinnedGeometry) NumVerticesOfFace(int) int { return 3 }

func (g *skinnedGeometry) Position(face, vert int) math.Vec3 {
	return g.in.Points[g.wedge(face, vert).PointIndex]
}

func (g *skinnedGeometry) Normal(face, vert int) math.Vec3 {
	return g.corners.Wedges[face*3+vert].TangentZ
}

func (g *skinnedGeometry) TexCoord(face, vert int) math.Vec2 {
	return g.wedge(face, vert).UVs[0]
}

func (g *skinnedGeometry) SetTangentSpace(face, vert int, tangent math.Vec3, sign float32) {
	w := &g.corners.Wedges[face*3+vert]
	w.TangentX = tangent
	w.TangentY = w.TangentZ.Cross(tangent).Scale(sign).Neg()
}

// cornerDescription flattens a skinned mesh into one wedge per face corner,
// the layout the tangent synthesizers work on.
func cornerDescription(in *Input) *mesh.Description {
	d := &mesh.Description{
		Positions: in.Points,
		Wedges:    make([]mesh.Wedge, 0, len(in.Faces)*3),
		Faces:     make([]mesh.Face, len(in.Faces)),
		NumUVs:    in.NumUVs,
		HasColors: true,
	}
	for f := range in.Faces {
		face := &in.Faces[f]
		d.Faces[f] = mesh.Face{Material: face.Material, SmoothingMask: face.SmoothingMask}
		for c := 0; c < 3; c++ {
			src := &in.Wedges[face.Wedges[c]]
			d.Wedges = append(d.Wedges, mesh.Wedge{
				PointIndex: src.PointIndex,
				TangentX:   face.TangentX[c],
				TangentY:   face.TangentY[c],
				TangentZ:   face.TangentZ[c],
				UVs:        src.UVs,
				Color:      src.Color,
			})
		}
	}
	return d
}
