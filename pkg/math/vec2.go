// Package math provides the vector and matrix types used by the mesh build pipeline.
package math

import "github.com/chewxy/math32"

// Vec2 is a 2D vector, used for texture coordinates.
type Vec2 struct {
	X, Y float32
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Scale returns v * scalar.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y)
}

// UVsEqual reports whether two texture coordinates match within ThreshUVsAreSame.
func UVsEqual(a, b Vec2) bool {
	return math32.Abs(a.X-b.X) <= ThreshUVsAreSame &&
		math32.Abs(a.Y-b.Y) <= ThreshUVsAreSame
}
