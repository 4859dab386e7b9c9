// Package mesh defines the wedge mesh description consumed by the build
// pipeline and the render-ready buffers it produces.
package mesh

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/meshbuild/pkg/math"
)

// MaxUVs is the number of texture coordinate channels a wedge can carry.
const MaxUVs = 8

// Color is an 8-bit RGBA vertex color.
type Color struct {
	R, G, B, A uint8
}

// White is the color given to wedges of meshes without vertex colors.
var White = Color{255, 255, 255, 255}

// Wedge is one face corner: a position reference plus every per-corner
// attribute. Zero tangent axes mean "not authored, synthesize".
type Wedge struct {
	PointIndex uint32
	TangentX   math.Vec3
	TangentY   math.Vec3
	TangentZ   math.Vec3
	UVs        [MaxUVs]math.Vec2
	Color      Color
}

// Face holds the per-triangle data.
type Face struct {
	Material      int
	SmoothingMask uint32
}

// Description is an imported mesh in wedge form. Wedges 3f, 3f+1 and 3f+2
// are the corners of face f.
type Description struct {
	Positions []math.Vec3
	Wedges    []Wedge
	Faces     []Face
	NumUVs    int
	HasColors bool
}

// NumTriangles returns the face count.
func (d *Description) NumTriangles() int {
	return len(d.Faces)
}

// WedgePosition returns the position referenced by wedge w.
func (d *Description) WedgePosition(w int) math.Vec3 {
	return d.Positions[d.Wedges[w].PointIndex]
}

// Corners returns the three corner positions of face f.
func (d *Description) Corners(f int) [3]math.Vec3 {
	return [3]math.Vec3{
		d.WedgePosition(f * 3),
		d.WedgePosition(f*3 + 1),
		d.WedgePosition(f*3 + 2),
	}
}

// IsDegenerate reports whether two corners of face f coincide within tolerance.
func (d *Description) IsDegenerate(f int, tolerance float32) bool {
	c := d.Corners(f)
	return math.PointsEqual(c[0], c[1], tolerance) ||
		math.PointsEqual(c[0], c[2], tolerance) ||
		math.PointsEqual(c[1], c[2], tolerance)
}

// Validate checks the structural invariants of the description. Every
// violation found is reported.
func (d *Description) Validate() error {
	var err error
	if len(d.Faces) == 0 || len(d.Wedges) == 0 {
		return ErrNoFaces
	}
	if len(d.Wedges) != 3*len(d.Faces) {
		err = multierr.Append(err, fmt.Errorf("%w: %d wedges for %d faces", ErrWedgeCount, len(d.Wedges), len(d.Faces)))
	}
	if d.NumUVs < 1 || d.NumUVs > MaxUVs {
		err = multierr.Append(err, fmt.Errorf("%w: %d", ErrUVChannels, d.NumUVs))
	}
	for i := range d.Wedges {
		if int(d.Wedges[i].PointIndex) >= len(d.Positions) {
			err = multierr.Append(err, fmt.Errorf("%w: wedge %d references point %d of %d",
				ErrPointIndex, i, d.Wedges[i].PointIndex, len(d.Positions)))
			break
		}
	}
	return err
}

// IsValid reports whether Validate passes.
func (d *Description) IsValid() bool {
	return d.Validate() == nil
}
