// Package skeletal builds skinned meshes: tangents are synthesized as for
// static meshes, bone influences are packed into 8-bit weights and the
// triangles are grouped into chunks whose bone palettes respect the GPU
// skinning limit.
package skeletal

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/meshbuild/pkg/math"
	"github.com/Faultbox/meshbuild/pkg/mesh"
)

// MaxTotalInfluences is the number of bone slots per vertex.
const MaxTotalInfluences = 8

var (
	ErrNoFaces        = errors.New("skeletal mesh has no faces")
	ErrWedgeIndex     = errors.New("face references a missing wedge")
	ErrPointIndex     = errors.New("wedge references a missing point")
	ErrNoBones        = errors.New("skeleton has no bones")
	ErrUVChannels     = errors.New("invalid number of UV channels")
	ErrInfluencePoint = errors.New("influence references a missing point")
	ErrCornerCount    = errors.New("corner vertex count is not three times the face count")
	ErrBoneLimit      = errors.New("bone limit must be positive")
)

// Wedge is one skinned face corner.
type Wedge struct {
	PointIndex uint32
	UVs        [mesh.MaxUVs]math.Vec2
	Color      mesh.Color
}

// Face is a skinned triangle. Zero tangent axes are synthesized.
type Face struct {
	Wedges        [3]uint32
	Material      int
	SmoothingMask uint32
	TangentX      [3]math.Vec3
	TangentY      [3]math.Vec3
	TangentZ      [3]math.Vec3
}

// Influence binds a point to a bone with a weight in [0, 1].
type Influence struct {
	Weight float32
	Point  uint32
	Bone   uint16
}

// Input is an imported skinned mesh.
type Input struct {
	Points     []math.Vec3
	Wedges     []Wedge
	Faces      []Face
	Influences []Influence
	NumUVs     int
	NumBones   int
}

// Validate checks the references between the input arrays.
func (in *Input) Validate() error {
	if len(in.Faces) == 0 {
		return ErrNoFaces
	}
	var err error
	if in.NumBones < 1 {
		err = multierr.Append(err, ErrNoBones)
	}
	if in.NumUVs < 1 || in.NumUVs > mesh.MaxUVs {
		err = multierr.Append(err, fmt.Errorf("%w: %d", ErrUVChannels, in.NumUVs))
	}
	for f := range in.Faces {
		for _, w := range in.Faces[f].Wedges {
			if int(w) >= len(in.Wedges) {
				err = multierr.Append(err, fmt.Errorf("%w: face %d, wedge %d of %d", ErrWedgeIndex, f, w, len(in.Wedges)))
				return err
			}
		}
	}
	for i := range in.Wedges {
		if int(in.Wedges[i].PointIndex) >= len(in.Points) {
			err = multierr.Append(err, fmt.Errorf("%w: wedge %d, point %d of %d", ErrPointIndex, i, in.Wedges[i].PointIndex, len(in.Points)))
			break
		}
	}
	for i := range in.Influences {
		if int(in.Influences[i].Point) >= len(in.Points) {
			err = multierr.Append(err, fmt.Errorf("%w: influence %d, point %d", ErrInfluencePoint, i, in.Influences[i].Point))
			break
		}
	}
	return err
}

// Influences are the packed bone slots of one vertex. Weights sum to 255.
type Influences struct {
	Bones   [MaxTotalInfluences]uint16
	Weights [MaxTotalInfluences]uint8
}

// Count returns the number of slots with a non-zero weight.
func (inf *Influences) Count() int {
	n := 0
	for _, w := range inf.Weights {
		if w > 0 {
			n++
		}
	}
	return n
}

// Vertex is a skinned build vertex.
type Vertex struct {
	mesh.BuildVertex
	Influences

	// Point is the source point index.
	Point uint32
}

// Equal reports whether two vertices can share an index.
func (v *Vertex) Equal(o *Vertex, numUVs int, tolerance float32) bool {
	return v.Influences == o.Influences && v.BuildVertex.Equal(&o.BuildVertex, numUVs, tolerance)
}
