package tangent

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshbuild/internal/diag"
	"github.com/Faultbox/meshbuild/pkg/math"
	"github.com/Faultbox/meshbuild/pkg/mesh"
)

// ThreshNormalsAreParallel is the |cos| above which two axes count as parallel.
const ThreshNormalsAreParallel = 0.999845

// DefaultFrame is the basis assigned when a wedge frame cannot be repaired.
var DefaultFrame = Frame{
	X: math.Vec3{X: 1},
	Y: math.Vec3{Y: 1},
	Z: math.Vec3{Z: 1},
}

// FailSafe repairs a wedge frame with missing or parallel axes, first from
// the remaining axes and then from the triangle frame tri. It reports
// whether the frame had to fall back to DefaultFrame.
func FailSafe(tri Frame, fr *Frame) bool {
	xBad, yBad, zBad := collapsed(fr.X), collapsed(fr.Y), collapsed(fr.Z)
	if !xBad && !yBad && !zBad && !anyParallel(*fr) {
		return false
	}

	switch {
	case !zBad && !xBad:
		fr.Y = fr.Z.Cross(fr.X).SafeNormal(math.SmallNumber)
	case !zBad && !yBad:
		fr.X = fr.Y.Cross(fr.Z).SafeNormal(math.SmallNumber)
	case !zBad:
		fr.X = tri.X.SafeNormal(math.SmallNumber)
		fr.Y = tri.Y.SafeNormal(math.SmallNumber)
	case !xBad && !yBad:
		fr.Z = fr.X.Cross(fr.Y).SafeNormal(math.SmallNumber)
	case !xBad:
		fr.Y = tri.Y.SafeNormal(math.SmallNumber)
		fr.Z = tri.Z.SafeNormal(math.SmallNumber)
	case !yBad:
		fr.X = tri.X.SafeNormal(math.SmallNumber)
		fr.Z = tri.Z.SafeNormal(math.SmallNumber)
	default:
		fr.X = tri.X.SafeNormal(math.SmallNumber)
		fr.Y = tri.Y.SafeNormal(math.SmallNumber)
		fr.Z = tri.Z.SafeNormal(math.SmallNumber)
	}

	if anyParallel(*fr) {
		// Rebuild X and Y around a usable normal.
		if !collapsed(fr.Z) && !parallel(fr.X, fr.Z) {
			fr.Y = fr.Z.Cross(fr.X).SafeNormal(math.SmallNumber)
		} else if !collapsed(fr.Z) && !parallel(fr.Y, fr.Z) {
			fr.X = fr.Y.Cross(fr.Z).SafeNormal(math.SmallNumber)
		} else {
			*fr = Frame{
				X: tri.X.SafeNormal(math.SmallNumber),
				Y: tri.Y.SafeNormal(math.SmallNumber),
				Z: tri.Z.SafeNormal(math.SmallNumber),
			}
		}
	}

	if collapsed(fr.X) || collapsed(fr.Y) || collapsed(fr.Z) || anyParallel(*fr) {
		*fr = DefaultFrame
		return true
	}
	return false
}

func parallel(a, b math.Vec3) bool {
	return math32.Abs(a.SafeNormal(math.SmallNumber).Dot(b.SafeNormal(math.SmallNumber))) >= ThreshNormalsAreParallel
}

func anyParallel(fr Frame) bool {
	return parallel(fr.X, fr.Y) || parallel(fr.Y, fr.Z) || parallel(fr.Z, fr.X)
}

// FailSafeAll runs FailSafe over the wedges of every non-degenerate face and
// returns how many fell back to DefaultFrame. A warning is recorded when any
// did.
func FailSafeAll(d *mesh.Description, frames []Frame, threshold float32, diags *diag.List) int {
	fallbacks := 0
	first := -1
	for face := range d.Faces {
		if d.IsDegenerate(face, threshold) {
			continue
		}
		for c := 0; c < 3; c++ {
			w := &d.Wedges[face*3+c]
			fr := Frame{X: w.TangentX, Y: w.TangentY, Z: w.TangentZ}
			if FailSafe(frames[face], &fr) {
				fallbacks++
				if first < 0 {
					first = face*3 + c
				}
			}
			w.TangentX, w.TangentY, w.TangentZ = fr.X, fr.Y, fr.Z
		}
	}
	if fallbacks > 0 {
		diags.Warn(diag.CodeDegenerateTangentBasis,
			"%d wedges have a degenerate tangent basis (first: wedge %d); using the default basis", fallbacks, first)
	}
	return fallbacks
}
