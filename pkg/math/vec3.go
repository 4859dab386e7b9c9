package math

import "github.com/chewxy/math32"

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Mul returns the component-wise product.
func (v Vec3) Mul(other Vec3) Vec3 {
	return Vec3{v.X * other.X, v.Y * other.Y, v.Z * other.Z}
}

// Neg returns -v.
func (v Vec3) Neg() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// LengthSquared returns the squared magnitude.
func (v Vec3) LengthSquared() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Length returns the magnitude.
func (v Vec3) Length() float32 {
	return math32.Sqrt(v.LengthSquared())
}

// Normalize returns a unit vector. Vectors whose squared length is at or
// below SmallNumber are returned unchanged.
func (v Vec3) Normalize() Vec3 {
	sq := v.LengthSquared()
	if sq <= SmallNumber {
		return v
	}
	inv := 1 / math32.Sqrt(sq)
	return Vec3{v.X * inv, v.Y * inv, v.Z * inv}
}

// SafeNormal returns a unit vector, or the zero vector if the squared
// length is below tolerance.
func (v Vec3) SafeNormal(tolerance float32) Vec3 {
	sq := v.LengthSquared()
	if sq < tolerance {
		return Vec3{}
	}
	if sq == 1 {
		return v
	}
	inv := 1 / math32.Sqrt(sq)
	return Vec3{v.X * inv, v.Y * inv, v.Z * inv}
}

// Distance returns the distance to another point.
func (v Vec3) Distance(other Vec3) float32 {
	return v.Sub(other).Length()
}

// IsZero reports whether all components are exactly zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// IsNearlyZero reports whether every component is within tolerance of zero.
func (v Vec3) IsNearlyZero(tolerance float32) bool {
	return math32.Abs(v.X) <= tolerance &&
		math32.Abs(v.Y) <= tolerance &&
		math32.Abs(v.Z) <= tolerance
}

// ContainsNaN reports whether any component is NaN or infinite.
func (v Vec3) ContainsNaN() bool {
	return !finite(v.X) || !finite(v.Y) || !finite(v.Z)
}

// Min returns the component-wise minimum.
func (v Vec3) Min(other Vec3) Vec3 {
	return Vec3{math32.Min(v.X, other.X), math32.Min(v.Y, other.Y), math32.Min(v.Z, other.Z)}
}

// Max returns the component-wise maximum.
func (v Vec3) Max(other Vec3) Vec3 {
	return Vec3{math32.Max(v.X, other.X), math32.Max(v.Y, other.Y), math32.Max(v.Z, other.Z)}
}

// Triple returns the scalar triple product x · (y × z).
func Triple(x, y, z Vec3) float32 {
	return x.X*(y.Y*z.Z-y.Z*z.Y) +
		x.Y*(y.Z*z.X-y.X*z.Z) +
		x.Z*(y.X*z.Y-y.Y*z.X)
}

func finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}
