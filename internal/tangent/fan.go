package tangent

import (
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/meshbuild/internal/diag"
	"github.com/Faultbox/meshbuild/internal/logger"
	"github.com/Faultbox/meshbuild/internal/overlap"
	"github.com/Faultbox/meshbuild/pkg/math"
	"github.com/Faultbox/meshbuild/pkg/mesh"
)

// FanSynthesizer blends triangle frames over smoothing-group connected fans
// of triangles around each corner.
type FanSynthesizer struct {
	Options     Options
	Diagnostics *diag.List
	Progress    diag.Reporter
}

// Name implements Synthesizer.
func (s *FanSynthesizer) Name() string { return "fan" }

// Synthesize implements Synthesizer.
func (s *FanSynthesizer) Synthesize(d *mesh.Description, table *overlap.Table) error {
	if err := checkInput(d, table); err != nil {
		return err
	}

	frames := PerTriangle(d, s.Options.TriangleEpsilon())
	f := newFanFill(d, table, frames, s.Options, blendTangents)
	for face := range d.Faces {
		f.face(face)
		diag.Step(s.Progress, "tangents", face, len(d.Faces))
	}

	repaired := FailSafeAll(d, frames, s.Options.ComparisonThreshold(), s.Diagnostics)
	logger.Debug("tangents synthesized",
		zap.String("algorithm", s.Name()),
		zap.Int("faces", len(d.Faces)),
		zap.Int("fallbacks", repaired))
	return nil
}

// ComputeNormals synthesizes only the normal axis of every wedge whose normal
// is zero, with the same fan gating minus the UV and mirroring tests.
func ComputeNormals(d *mesh.Description, table *overlap.Table, opts Options, progress diag.Reporter) error {
	if err := checkInput(d, table); err != nil {
		return err
	}

	frames := PerTriangle(d, opts.TriangleEpsilon())
	f := newFanFill(d, table, frames, opts, blendNormalsOnly)
	for face := range d.Faces {
		f.face(face)
		diag.Step(progress, "normals", face, len(d.Faces))
	}
	return nil
}

type fillMode int8

const (
	blendTangents fillMode = iota
	blendNormalsOnly
)

// fanFace is one candidate triangle in a corner's fan.
type fanFace struct {
	face          int32
	linkedCorner  int8
	filled        bool
	blendTangents bool
	blendNormals  bool
}

// fanFill holds the scratch arenas reused across faces.
type fanFill struct {
	desc      *mesh.Description
	table     *overlap.Table
	frames    []Frame
	opts      Options
	mode      fillMode
	threshold float32

	adjacent []int32
	fans     [3][]fanFace
}

func newFanFill(d *mesh.Description, table *overlap.Table, frames []Frame, opts Options, mode fillMode) *fanFill {
	return &fanFill{
		desc:      d,
		table:     table,
		frames:    frames,
		opts:      opts,
		mode:      mode,
		threshold: opts.ComparisonThreshold(),
	}
}

func (f *fanFill) hasBasis(w int) bool {
	wedge := &f.desc.Wedges[w]
	if f.mode == blendNormalsOnly {
		return !wedge.TangentZ.IsZero()
	}
	return !wedge.TangentX.IsZero() && !wedge.TangentY.IsZero() && !wedge.TangentZ.IsZero()
}

func (f *fanFill) face(face int) {
	d := f.desc
	base := face * 3
	corners := d.Corners(face)

	if d.IsDegenerate(face, f.threshold) {
		return
	}

	var has [3]bool
	for c := 0; c < 3; c++ {
		has[c] = f.hasBasis(base + c)
	}
	if has[0] && has[1] && has[2] {
		return
	}

	// Candidate faces: this one plus every face owning an overlapping corner.
	f.adjacent = append(f.adjacent[:0], int32(face))
	for c := 0; c < 3; c++ {
		for _, dup := range f.table.Find(base + c) {
			f.adjacent = append(f.adjacent, dup/3)
		}
	}
	slices.Sort(f.adjacent)
	f.adjacent = slices.Compact(f.adjacent)

	determinant := f.frames[face].determinant()
	for c := 0; c < 3; c++ {
		f.fans[c] = f.fans[c][:0]
		if has[c] {
			continue
		}
		for _, other := range f.adjacent {
			rec := fanFace{face: other}
			common := 0
			if int(other) == face {
				common = 3
				rec.linkedCorner = int8(c)
			} else {
				for oc := 0; oc < 3; oc++ {
					if math.PointsEqual(corners[c], d.WedgePosition(int(other)*3+oc), f.threshold) {
						common++
						rec.linkedCorner = int8(oc)
					}
				}
			}
			if common > 0 {
				rec.filled = int(other) == face
				rec.blendTangents = rec.filled
				rec.blendNormals = rec.filled
				f.fans[c] = append(f.fans[c], rec)
			}
		}
		f.flood(c, determinant)
	}

	var result [3]Frame
	for c := 0; c < 3; c++ {
		w := &d.Wedges[base+c]
		if has[c] {
			result[c] = Frame{X: w.TangentX, Y: w.TangentY, Z: w.TangentZ}
		} else {
			for _, rec := range f.fans[c] {
				if !rec.filled {
					continue
				}
				tri := f.frames[rec.face]
				if rec.blendTangents && f.mode == blendTangents {
					result[c].X = result[c].X.Add(tri.X)
					result[c].Y = result[c].Y.Add(tri.Y)
				}
				if rec.blendNormals {
					result[c].Z = result[c].Z.Add(tri.Z)
				}
			}
			// Authored axes win over blended ones.
			if !w.TangentX.IsZero() {
				result[c].X = w.TangentX
			}
			if !w.TangentY.IsZero() {
				result[c].Y = w.TangentY
			}
			if !w.TangentZ.IsZero() {
				result[c].Z = w.TangentZ
			}
		}
	}

	for c := 0; c < 3; c++ {
		w := &d.Wedges[base+c]
		if f.mode == blendNormalsOnly {
			w.TangentZ = result[c].Z.Normalize()
			continue
		}
		fr := result[c].orthonormalize()
		w.TangentX, w.TangentY, w.TangentZ = fr.X, fr.Y, fr.Z
	}
}

// flood grows the filled set of corner c's fan until a full pass adds
// nothing. A face joins when it shares an edge with a filled face and their
// smoothing masks intersect. determinant is the handedness of the face the
// fan belongs to.
func (f *fanFill) flood(c int, determinant float32) {
	d := f.desc
	fan := f.fans[c]
	for {
		added := 0
		for oi := range fan {
			other := &fan[oi]
			if !other.filled {
				continue
			}
			for ni := range fan {
				next := &fan[ni]
				if next.filled || ni == oi {
					continue
				}
				if d.Faces[next.face].SmoothingMask&d.Faces[other.face].SmoothingMask == 0 {
					continue
				}

				var common, commonTangent, commonNormal int
				for oc := 0; oc < 3; oc++ {
					ow := int(other.face)*3 + oc
					for nc := 0; nc < 3; nc++ {
						nw := int(next.face)*3 + nc
						if !math.PointsEqual(d.WedgePosition(nw), d.WedgePosition(ow), f.threshold) {
							continue
						}
						common++
						if f.mode == blendTangents && math.UVsEqual(d.Wedges[nw].UVs[0], d.Wedges[ow].UVs[0]) {
							commonTangent++
						}
						if f.opts.BlendOverlappingNormals || d.Wedges[nw].PointIndex == d.Wedges[ow].PointIndex {
							commonNormal++
						}
					}
				}

				// Only faces touching along an edge join the fan.
				if common > 1 {
					next.filled = true
					next.blendNormals = commonNormal > 1
					added++

					// No blending across UV seams or mirrored UVs.
					if f.mode == blendTangents && other.blendTangents && commonTangent > 1 {
						if determinant*f.frames[next.face].determinant() > 0 {
							next.blendTangents = true
						}
					}
				}
			}
		}
		if added == 0 {
			return
		}
	}
}

func (fr Frame) determinant() float32 {
	return math.Triple(fr.X, fr.Y, fr.Z)
}

// orthonormalize normalizes the three axes then removes the X component from
// Y and the Z component from X and Y.
func (fr Frame) orthonormalize() Frame {
	x, y, z := fr.X.Normalize(), fr.Y.Normalize(), fr.Z.Normalize()
	y = y.Sub(x.Scale(x.Dot(y))).Normalize()
	x = x.Sub(z.Scale(z.Dot(x))).Normalize()
	y = y.Sub(z.Scale(z.Dot(y))).Normalize()
	return Frame{X: x, Y: y, Z: z}
}
