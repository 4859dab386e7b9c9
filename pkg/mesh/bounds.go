package mesh

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshbuild/pkg/math"
)

// Bounds is an axis-aligned box with a bounding sphere around its center.
type Bounds struct {
	Min          math.Vec3
	Max          math.Vec3
	Origin       math.Vec3
	BoxExtent    math.Vec3
	SphereRadius float32
}

// ComputeBounds returns the bounds of a point set. The sphere radius is
// measured from the box center.
func ComputeBounds(points []math.Vec3) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}

	b := Bounds{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	b.Origin = b.Min.Add(b.Max).Scale(0.5)
	b.BoxExtent = b.Max.Sub(b.Min).Scale(0.5)

	var radiusSq float32
	for _, p := range points {
		radiusSq = max(radiusSq, p.Sub(b.Origin).LengthSquared())
	}
	b.SphereRadius = math32.Sqrt(radiusSq)
	return b
}
