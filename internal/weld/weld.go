// Package weld turns wedges into a deduplicated vertex buffer and
// per-section index lists.
//
// Faces are visited in order. For each corner the welder looks only at the
// overlapping corners that come before it and reuses the first already
// emitted vertex that matches; otherwise it appends a new one. Degenerate
// faces and triangles that collapse after welding are dropped and their
// wedges map to mesh.IndexNone.
package weld

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshbuild/internal/diag"
	"github.com/Faultbox/meshbuild/internal/logger"
	"github.com/Faultbox/meshbuild/internal/overlap"
	"github.com/Faultbox/meshbuild/pkg/math"
	"github.com/Faultbox/meshbuild/pkg/mesh"
)

var (
	ErrNoOverlaps   = errors.New("overlap table is required")
	ErrTableSize    = errors.New("overlap table does not match wedge count")
	ErrNoSection    = errors.New("material has no section")
	ErrSectionIndex = errors.New("section index out of range")
)

// Input is everything the welder needs for one build.
type Input struct {
	Desc     *mesh.Description
	Overlaps *overlap.Table

	// MaterialToSection maps a face material to its section. Nil selects
	// SectionMap(Desc.Faces).
	MaterialToSection map[int]int

	// Tolerance is the position threshold for welding and for detecting
	// degenerate faces.
	Tolerance float32

	// BuildScale scales positions; tangents go through the inverse
	// transpose. The zero vector means no scaling.
	BuildScale math.Vec3

	// Progress receives (face, faces) updates; nil disables reporting.
	Progress diag.Reporter
}

// Result holds the welded buffers.
type Result struct {
	Vertices []mesh.BuildVertex

	// SectionIndices[s] is the triangle list of section s.
	SectionIndices [][]uint32

	// SectionMaterials[s] is the material of section s.
	SectionMaterials []int

	WedgeMap mesh.WedgeMap

	// NumDegenerate counts faces dropped before welding, NumRejected those
	// that collapsed to repeated indices after.
	NumDegenerate int
	NumRejected   int
}

// NumIndices returns the total index count over all sections.
func (r *Result) NumIndices() int {
	n := 0
	for _, idx := range r.SectionIndices {
		n += len(idx)
	}
	return n
}

// SectionMap assigns one section per distinct material, in order of first
// use. It returns the map and the material of each section.
func SectionMap(faces []mesh.Face) (map[int]int, []int) {
	m := make(map[int]int)
	var materials []int
	for _, f := range faces {
		if _, ok := m[f.Material]; !ok {
			m[f.Material] = len(materials)
			materials = append(materials, f.Material)
		}
	}
	return m, materials
}

// Weld builds the vertex buffer and section index lists.
func Weld(in Input) (*Result, error) {
	d := in.Desc
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("weld: %w", err)
	}
	if in.Overlaps == nil {
		return nil, ErrNoOverlaps
	}
	if in.Overlaps.Len() != len(d.Wedges) {
		return nil, fmt.Errorf("%w: %d entries for %d wedges", ErrTableSize, in.Overlaps.Len(), len(d.Wedges))
	}

	materialToSection, materials, err := resolveSections(in.MaterialToSection, d.Faces)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	w := newWelder(in)
	res := &Result{
		Vertices:         make([]mesh.BuildVertex, 0, len(d.Wedges)),
		SectionIndices:   make([][]uint32, len(materials)),
		SectionMaterials: materials,
		WedgeMap:         mesh.NewWedgeMap(len(d.Wedges)),
	}

	for face := range d.Faces {
		diag.Step(in.Progress, "weld", face, len(d.Faces))
		if d.IsDegenerate(face, in.Tolerance) {
			res.NumDegenerate++
			continue
		}

		var tri [3]uint32
		for c := 0; c < 3; c++ {
			wedge := face*3 + c
			v := w.vertex(wedge)
			idx := w.find(res, wedge, &v)
			if idx == mesh.IndexNone {
				idx = int32(len(res.Vertices))
				res.Vertices = append(res.Vertices, v)
			}
			res.WedgeMap[wedge] = idx
			tri[c] = uint32(idx)
		}

		if tri[0] == tri[1] || tri[0] == tri[2] || tri[1] == tri[2] {
			res.NumRejected++
			for c := 0; c < 3; c++ {
				res.WedgeMap[face*3+c] = mesh.IndexNone
			}
			continue
		}

		s := materialToSection[d.Faces[face].Material]
		res.SectionIndices[s] = append(res.SectionIndices[s], tri[0], tri[1], tri[2])
	}

	logger.Debug("welded vertices",
		zap.Int("wedges", len(d.Wedges)),
		zap.Int("vertices", len(res.Vertices)),
		zap.Int("sections", len(materials)),
		zap.Int("degenerate", res.NumDegenerate),
		zap.Int("rejected", res.NumRejected),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

func resolveSections(m map[int]int, faces []mesh.Face) (map[int]int, []int, error) {
	if m == nil {
		def, materials := SectionMap(faces)
		return def, materials, nil
	}

	numSections := 0
	for _, s := range m {
		if s < 0 {
			return nil, nil, fmt.Errorf("%w: %d", ErrSectionIndex, s)
		}
		numSections = max(numSections, s+1)
	}
	materials := make([]int, numSections)
	seen := make([]bool, numSections)
	for _, f := range faces {
		s, ok := m[f.Material]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %d", ErrNoSection, f.Material)
		}
		if !seen[s] {
			seen[s] = true
			materials[s] = f.Material
		}
	}
	return m, materials, nil
}

type welder struct {
	desc      *mesh.Description
	overlaps  *overlap.Table
	tolerance float32
	position  math.Mat4
	tangent   math.Mat4
	numUVs    int
	useColors bool
}

func newWelder(in Input) *welder {
	scale := in.BuildScale
	if scale.IsZero() {
		scale = math.Vec3{X: 1, Y: 1, Z: 1}
	}
	m := math.Scale(scale)
	return &welder{
		desc:      in.Desc,
		overlaps:  in.Overlaps,
		tolerance: in.Tolerance,
		position:  m,
		tangent:   m.InverseTranspose(),
		numUVs:    in.Desc.NumUVs,
		useColors: in.Desc.HasColors,
	}
}

// vertex resolves the build vertex of a wedge.
func (w *welder) vertex(wedge int) mesh.BuildVertex {
	src := &w.desc.Wedges[wedge]
	v := mesh.BuildVertex{
		Position: w.position.TransformPoint(w.desc.Positions[src.PointIndex]),
		TangentX: w.tangent.TransformDirection(src.TangentX).SafeNormal(math.SmallNumber),
		TangentY: w.tangent.TransformDirection(src.TangentY).SafeNormal(math.SmallNumber),
		TangentZ: w.tangent.TransformDirection(src.TangentZ).SafeNormal(math.SmallNumber),
		Color:    mesh.White,
	}
	if w.useColors {
		v.Color = src.Color
	}
	copy(v.UVs[:w.numUVs], src.UVs[:w.numUVs])
	return v
}

// find returns the vertex of an earlier overlapping wedge equal to v, or
// mesh.IndexNone.
func (w *welder) find(res *Result, wedge int, v *mesh.BuildVertex) int32 {
	for _, o := range w.overlaps.Find(wedge) {
		if int(o) >= wedge {
			break
		}
		idx := res.WedgeMap[o]
		if idx == mesh.IndexNone {
			continue
		}
		if res.Vertices[idx].Equal(v, w.numUVs, w.tolerance) {
			return idx
		}
	}
	return mesh.IndexNone
}
