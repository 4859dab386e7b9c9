// Package gltfio moves meshes between glTF 2.0 files and the build
// pipeline. Triangle winding is flipped on the way in and out: glTF is
// counter-clockwise in a right-handed frame, the pipeline is clockwise.
package gltfio

import (
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/meshbuild/internal/logger"
	"github.com/Faultbox/meshbuild/internal/skeletal"
	"github.com/Faultbox/meshbuild/pkg/math"
	"github.com/Faultbox/meshbuild/pkg/mesh"
)

var (
	ErrNoMeshes       = errors.New("gltf document has no meshes")
	ErrPrimitiveMode  = errors.New("only triangle list primitives are supported")
	ErrNoPositions    = errors.New("primitive has no POSITION attribute")
	ErrAttributeCount = errors.New("attribute count does not match POSITION")
	ErrIndexCount     = errors.New("index count is not a multiple of three")
	ErrIndexRange     = errors.New("index out of range")
)

// Mesh is one glTF mesh with all of its primitives merged.
type Mesh struct {
	Name string
	Desc *mesh.Description
	// Skin is set when any primitive carries JOINTS_0 and WEIGHTS_0.
	Skin *skeletal.Input
}

// Open reads a .gltf or .glb file.
func Open(path string) ([]Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return Decode(doc)
}

// Decode converts every mesh of doc. Each primitive's material index
// becomes the material of its faces; primitives without one use 0.
func Decode(doc *gltf.Document) ([]Mesh, error) {
	if len(doc.Meshes) == 0 {
		return nil, ErrNoMeshes
	}
	out := make([]Mesh, 0, len(doc.Meshes))
	for i, m := range doc.Meshes {
		name := m.Name
		if name == "" {
			name = fmt.Sprintf("mesh_%d", i)
		}

		dec := &decoder{doc: doc, desc: &mesh.Description{NumUVs: 1}}
		for p, prim := range m.Primitives {
			if err := dec.primitive(prim); err != nil {
				return nil, fmt.Errorf("%s primitive %d: %w", name, p, err)
			}
		}

		res := Mesh{Name: name, Desc: dec.desc}
		if dec.skinned {
			res.Skin = dec.skin(skinJoints(doc, uint32(i)))
		}
		logger.Debug("gltf mesh decoded",
			zap.String("mesh", name),
			zap.Int("points", len(dec.desc.Positions)),
			zap.Int("faces", len(dec.desc.Faces)),
			zap.Bool("skinned", dec.skinned))
		out = append(out, res)
	}
	return out, nil
}

// skinJoints returns the joint count of the skin bound to mesh m, or 0.
func skinJoints(doc *gltf.Document, m uint32) int {
	for _, n := range doc.Nodes {
		if n.Mesh != nil && *n.Mesh == m && n.Skin != nil && int(*n.Skin) < len(doc.Skins) {
			return len(doc.Skins[*n.Skin].Joints)
		}
	}
	return 0
}

type decoder struct {
	doc  *gltf.Document
	desc *mesh.Description

	skinned    bool
	influences []skeletal.Influence
	maxJoint   int
}

func (dec *decoder) accessor(prim *gltf.Primitive, name string) (*gltf.Accessor, bool) {
	idx, ok := prim.Attributes[name]
	if !ok || int(idx) >= len(dec.doc.Accessors) {
		return nil, false
	}
	return dec.doc.Accessors[idx], true
}

func (dec *decoder) primitive(prim *gltf.Primitive) error {
	if prim.Mode != gltf.PrimitiveTriangles {
		return ErrPrimitiveMode
	}
	posAcr, ok := dec.accessor(prim, gltf.POSITION)
	if !ok {
		return ErrNoPositions
	}
	positions, err := modeler.ReadPosition(dec.doc, posAcr, nil)
	if err != nil {
		return fmt.Errorf("read positions: %w", err)
	}
	count := len(positions)
	checkCount := func(name string, n int) error {
		if n != count {
			return fmt.Errorf("%w: %s has %d, POSITION has %d", ErrAttributeCount, name, n, count)
		}
		return nil
	}

	indices, err := dec.indices(prim, count)
	if err != nil {
		return err
	}

	var uvs [][][2]float32
	for c := 0; c < mesh.MaxUVs; c++ {
		name := fmt.Sprintf("TEXCOORD_%d", c)
		acr, ok := dec.accessor(prim, name)
		if !ok {
			break
		}
		ch, err := modeler.ReadTextureCoord(dec.doc, acr, nil)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if err := checkCount(name, len(ch)); err != nil {
			return err
		}
		uvs = append(uvs, ch)
	}
	dec.desc.NumUVs = max(dec.desc.NumUVs, len(uvs))

	var colors [][4]uint8
	if acr, ok := dec.accessor(prim, gltf.COLOR_0); ok {
		if colors, err = modeler.ReadColor(dec.doc, acr, nil); err != nil {
			return fmt.Errorf("read colors: %w", err)
		}
		if err := checkCount(gltf.COLOR_0, len(colors)); err != nil {
			return err
		}
		dec.desc.HasColors = true
	}

	// Authored frames are only kept when both axes are present; a lone
	// normal is left for the synthesizer.
	var normals [][3]float32
	var tangents [][4]float32
	nAcr, hasN := dec.accessor(prim, gltf.NORMAL)
	tAcr, hasT := dec.accessor(prim, gltf.TANGENT)
	if hasN && hasT {
		if normals, err = modeler.ReadNormal(dec.doc, nAcr, nil); err != nil {
			return fmt.Errorf("read normals: %w", err)
		}
		if tangents, err = modeler.ReadTangent(dec.doc, tAcr, nil); err != nil {
			return fmt.Errorf("read tangents: %w", err)
		}
		if err := multierr.Combine(checkCount(gltf.NORMAL, len(normals)), checkCount(gltf.TANGENT, len(tangents))); err != nil {
			return err
		}
	}

	base := uint32(len(dec.desc.Positions))
	if err := dec.skinPrimitive(prim, base, count); err != nil {
		return err
	}
	for _, p := range positions {
		dec.desc.Positions = append(dec.desc.Positions, vec3(p))
	}

	material := 0
	if prim.Material != nil {
		material = int(*prim.Material)
	}
	for t := 0; t < len(indices); t += 3 {
		for _, c := range [3]int{0, 2, 1} {
			v := indices[t+c]
			w := mesh.Wedge{PointIndex: base + v, Color: mesh.White}
			for ch := range uvs {
				w.UVs[ch] = math.Vec2{X: uvs[ch][v][0], Y: uvs[ch][v][1]}
			}
			if colors != nil {
				col := colors[v]
				w.Color = mesh.Color{R: col[0], G: col[1], B: col[2], A: col[3]}
			}
			if normals != nil {
				tan := tangents[v]
				w.TangentZ = vec3(normals[v])
				w.TangentX = math.Vec3{X: tan[0], Y: tan[1], Z: tan[2]}
				w.TangentY = w.TangentZ.Cross(w.TangentX).Scale(tan[3])
			}
			dec.desc.Wedges = append(dec.desc.Wedges, w)
		}
		dec.desc.Faces = append(dec.desc.Faces, mesh.Face{Material: material, SmoothingMask: 1})
	}
	return nil
}

func (dec *decoder) indices(prim *gltf.Primitive, count int) ([]uint32, error) {
	var indices []uint32
	if prim.Indices != nil && int(*prim.Indices) < len(dec.doc.Accessors) {
		var err error
		if indices, err = modeler.ReadIndices(dec.doc, dec.doc.Accessors[*prim.Indices], nil); err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	} else {
		indices = make([]uint32, count)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrIndexCount, len(indices))
	}
	for _, v := range indices {
		if int(v) >= count {
			return nil, fmt.Errorf("%w: %d of %d", ErrIndexRange, v, count)
		}
	}
	return indices, nil
}

func (dec *decoder) skinPrimitive(prim *gltf.Primitive, base uint32, count int) error {
	jAcr, hasJ := dec.accessor(prim, gltf.JOINTS_0)
	wAcr, hasW := dec.accessor(prim, gltf.WEIGHTS_0)
	if !hasJ || !hasW {
		return nil
	}
	joints, err := modeler.ReadJoints(dec.doc, jAcr, nil)
	if err != nil {
		return fmt.Errorf("read joints: %w", err)
	}
	weights, err := modeler.ReadWeights(dec.doc, wAcr, nil)
	if err != nil {
		return fmt.Errorf("read weights: %w", err)
	}
	if len(joints) != count || len(weights) != count {
		return fmt.Errorf("%w: skin has %d joints and %d weights for %d points",
			ErrAttributeCount, len(joints), len(weights), count)
	}

	dec.skinned = true
	for v := range joints {
		for k := 0; k < 4; k++ {
			if weights[v][k] <= 0 {
				continue
			}
			dec.influences = append(dec.influences, skeletal.Influence{
				Weight: weights[v][k],
				Point:  base + uint32(v),
				Bone:   joints[v][k],
			})
			dec.maxJoint = max(dec.maxJoint, int(joints[v][k]))
		}
	}
	return nil
}

// skin regroups the decoded description into skeletal input.
func (dec *decoder) skin(numJoints int) *skeletal.Input {
	d := dec.desc
	in := &skeletal.Input{
		Points:     d.Positions,
		Wedges:     make([]skeletal.Wedge, len(d.Wedges)),
		Faces:      make([]skeletal.Face, len(d.Faces)),
		Influences: dec.influences,
		NumUVs:     d.NumUVs,
		NumBones:   max(numJoints, dec.maxJoint+1),
	}
	for i, w := range d.Wedges {
		in.Wedges[i] = skeletal.Wedge{PointIndex: w.PointIndex, UVs: w.UVs, Color: w.Color}
	}
	for f, face := range d.Faces {
		sf := skeletal.Face{Material: face.Material, SmoothingMask: face.SmoothingMask}
		for c := 0; c < 3; c++ {
			w := &d.Wedges[3*f+c]
			sf.Wedges[c] = uint32(3*f + c)
			sf.TangentX[c] = w.TangentX
			sf.TangentY[c] = w.TangentY
			sf.TangentZ[c] = w.TangentZ
		}
		in.Faces[f] = sf
	}
	return in
}

func vec3(v [3]float32) math.Vec3 {
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}
