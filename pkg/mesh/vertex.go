package mesh

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshbuild/pkg/math"
)

// BuildVertex is a fully resolved vertex, compared during welding.
type BuildVertex struct {
	Position math.Vec3
	TangentX math.Vec3
	TangentY math.Vec3
	TangentZ math.Vec3
	Color    Color
	UVs      [MaxUVs]math.Vec2
}

// Equal reports whether two build vertices weld together: positions within
// tolerance, tangent axes within ThreshNormalsAreSame, exact color and UVs
// within ThreshUVsAreSame for the first numUVs channels.
func (v *BuildVertex) Equal(o *BuildVertex, numUVs int, tolerance float32) bool {
	if !math.PointsEqual(v.Position, o.Position, tolerance) {
		return false
	}
	if !math.NormalsEqual(v.TangentX, o.TangentX) ||
		!math.NormalsEqual(v.TangentY, o.TangentY) ||
		!math.NormalsEqual(v.TangentZ, o.TangentZ) {
		return false
	}
	if v.Color != o.Color {
		return false
	}
	for i := 0; i < numUVs; i++ {
		if !math.UVsEqual(v.UVs[i], o.UVs[i]) {
			return false
		}
	}
	return true
}

// BasisSign returns -1 when the tangent frame is mirrored, +1 otherwise.
func (v *BuildVertex) BasisSign() float32 {
	return BasisDeterminantSign(v.TangentX, v.TangentY, v.TangentZ)
}

// BasisDeterminantSign returns the sign of det([x y z]).
func BasisDeterminantSign(x, y, z math.Vec3) float32 {
	if math.Triple(x, y, z) < 0 {
		return -1
	}
	return 1
}

// PackedNormal is a tangent axis quantized to signed 8-bit components.
type PackedNormal [4]int8

// PackedNormal16 is a tangent axis quantized to signed 16-bit components.
type PackedNormal16 [4]int16

// PackNormal quantizes a unit vector and a w sign to 8 bits per component.
func PackNormal(v math.Vec3, w float32) PackedNormal {
	return PackedNormal{quantize8(v.X), quantize8(v.Y), quantize8(v.Z), quantize8(w)}
}

// PackNormal16 quantizes a unit vector and a w sign to 16 bits per component.
func PackNormal16(v math.Vec3, w float32) PackedNormal16 {
	return PackedNormal16{quantize16(v.X), quantize16(v.Y), quantize16(v.Z), quantize16(w)}
}

// Unpack returns the approximate vector and w.
func (p PackedNormal) Unpack() (math.Vec3, float32) {
	return math.Vec3{X: float32(p[0]) / 127, Y: float32(p[1]) / 127, Z: float32(p[2]) / 127}, float32(p[3]) / 127
}

// Unpack returns the approximate vector and w.
func (p PackedNormal16) Unpack() (math.Vec3, float32) {
	return math.Vec3{X: float32(p[0]) / 32767, Y: float32(p[1]) / 32767, Z: float32(p[2]) / 32767}, float32(p[3]) / 32767
}

func quantize8(f float32) int8 {
	return int8(math32.Round(clamp(f) * 127))
}

func quantize16(f float32) int16 {
	return int16(math32.Round(clamp(f) * 32767))
}

func clamp(f float32) float32 {
	return math32.Max(-1, math32.Min(1, f))
}
