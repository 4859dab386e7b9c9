package tangent

import (
	"go.uber.org/zap"

	"github.com/Faultbox/meshbuild/internal/diag"
	"github.com/Faultbox/meshbuild/internal/logger"
	"github.com/Faultbox/meshbuild/internal/overlap"
	"github.com/Faultbox/meshbuild/internal/tangentspace"
	"github.com/Faultbox/meshbuild/pkg/math"
	"github.com/Faultbox/meshbuild/pkg/mesh"
)

// MikkSynthesizer synthesizes normals with the fan flood fill, then hands
// tangent generation to tangentspace. Existing tangents are kept when every
// wedge already has both tangent axes.
type MikkSynthesizer struct {
	Options     Options
	Diagnostics *diag.List
	Progress    diag.Reporter
}

// Name implements Synthesizer.
func (s *MikkSynthesizer) Name() string { return "mikktspace" }

// Synthesize implements Synthesizer.
func (s *MikkSynthesizer) Synthesize(d *mesh.Description, table *overlap.Table) error {
	if err := ComputeNormals(d, table, s.Options, s.Progress); err != nil {
		return err
	}

	if HasTangents(d) {
		logger.Debug("keeping authored tangents", zap.Int("wedges", len(d.Wedges)))
		return nil
	}

	err := tangentspace.Generate(&Geometry{Desc: d}, tangentspace.Options{
		IgnoreDegenerates: s.Options.IgnoreDegenerateTriangles,
	})
	if err != nil {
		return err
	}

	frames := PerTriangle(d, s.Options.TriangleEpsilon())
	repaired := FailSafeAll(d, frames, s.Options.ComparisonThreshold(), s.Diagnostics)
	logger.Debug("tangents synthesized",
		zap.String("algorithm", s.Name()),
		zap.Int("faces", len(d.Faces)),
		zap.Int("fallbacks", repaired))
	return nil
}

// HasTangents reports whether every wedge carries non-zero tangent X and Y.
func HasTangents(d *mesh.Description) bool {
	for i := range d.Wedges {
		w := &d.Wedges[i]
		if w.TangentX.IsNearlyZero(math.KindaSmallNumber) || w.TangentY.IsNearlyZero(math.KindaSmallNumber) {
			return false
		}
	}
	return len(d.Wedges) > 0
}

// Geometry adapts a wedge description to tangentspace.Geometry.
type Geometry struct {
	Desc *mesh.Description
}

// NumFaces implements tangentspace.Geometry.
func (g *Geometry) NumFaces() int { return len(g.Desc.Faces) }

// NumVerticesOfFace implements tangentspace.Geometry.
func (g *Geometry) NumVerticesOfFace(int) int { return 3 }

// Position implements tangentspace.Geometry.
func (g *Geometry) Position(face, vert int) math.Vec3 {
	return g.Desc.WedgePosition(face*3 + vert)
}

// Normal implements tangentspace.Geometry.
func (g *Geometry) Normal(face, vert int) math.Vec3 {
	return g.Desc.Wedges[face*3+vert].TangentZ
}

// TexCoord implements tangentspace.Geometry.
func (g *Geometry) TexCoord(face, vert int) math.Vec2 {
	return g.Desc.Wedges[face*3+vert].UVs[0]
}

// SetTangentSpace stores the tangent and derives the bitangent from the
// normal and sign.
func (g *Geometry) SetTangentSpace(face, vert int, tangent math.Vec3, sign float32) {
	w := &g.Desc.Wedges[face*3+vert]
	w.TangentX = tangent
	w.TangentY = w.TangentZ.Cross(tangent).Scale(sign).Neg()
}
