package math

import "github.com/chewxy/math32"

// Comparison thresholds shared by every pipeline stage.
const (
	ThreshPointsAreSame  = 0.00002
	ThreshNormalsAreSame = 0.00002
	ThreshUVsAreSame     = 1.0 / 1024.0

	SmallNumber      = 1e-8
	KindaSmallNumber = 1e-4
	Delta            = 0.00001
)

// PointsEqual reports whether every axis of a and b differs by at most tolerance.
func PointsEqual(a, b Vec3, tolerance float32) bool {
	return math32.Abs(a.X-b.X) <= tolerance &&
		math32.Abs(a.Y-b.Y) <= tolerance &&
		math32.Abs(a.Z-b.Z) <= tolerance
}

// NormalsEqual compares two tangent-space axes within ThreshNormalsAreSame.
func NormalsEqual(a, b Vec3) bool {
	return PointsEqual(a, b, ThreshNormalsAreSame)
}

// CreateOrthonormalBasis projects x and y off z, rebuilds an axis that
// collapsed onto z from the cross product of the others, then normalizes all
// three in place.
func CreateOrthonormalBasis(x, y, z *Vec3) {
	if zz := z.Dot(*z); zz != 0 {
		*x = x.Sub(z.Scale(x.Dot(*z) / zz))
		*y = y.Sub(z.Scale(y.Dot(*z) / zz))
	}

	if x.LengthSquared() < Delta*Delta {
		*x = y.Cross(*z)
	}
	if y.LengthSquared() < Delta*Delta {
		*y = x.Cross(*z)
	}

	*x = x.Normalize()
	*y = y.Normalize()
	*z = z.Normalize()
}
