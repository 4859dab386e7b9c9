package gltfio

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"golang.org/x/exp/constraints"

	"github.com/Faultbox/meshbuild/internal/pipeline"
	"github.com/Faultbox/meshbuild/internal/skeletal"
	"github.com/Faultbox/meshbuild/pkg/mesh"
)

const generator = "meshbuild"

// Encode converts a static build into a document of its own.
func Encode(name string, lod *pipeline.LOD) *gltf.Document {
	doc := NewDocument()
	AddStatic(doc, name, lod)
	return doc
}

// EncodeSkinned converts a skeletal build into a document of its own.
func EncodeSkinned(name string, model *skeletal.Model, numUVs int) *gltf.Document {
	doc := NewDocument()
	AddSkinned(doc, name, model, numUVs)
	return doc
}

// NewDocument returns an empty document with one scene.
func NewDocument() *gltf.Document {
	doc := gltf.NewDocument()
	doc.Asset.Generator = generator
	return doc
}

// AddStatic appends a static build as a mesh with one primitive per
// section. Sections share one set of vertex attributes.
func AddStatic(doc *gltf.Document, name string, lod *pipeline.LOD) {
	attrs := writeVertices(doc, lod.Vertices, lod.NumUVs)

	m := &gltf.Mesh{Name: name}
	for _, s := range lod.Sections {
		m.Primitives = append(m.Primitives, &gltf.Primitive{
			Attributes: attrs,
			Indices:    gltf.Index(writeIndices(doc, s.Indices(lod.Indices), lod.Use32Bit)),
			Material:   gltf.Index(material(doc, s.Material)),
		})
	}
	addMesh(doc, m, nil)
}

// AddSkinned appends a skeletal build with its own skin. Each section
// becomes a primitive and the bone slots are mapped back to skeleton bones.
// glTF carries four influences per vertex; weight beyond the fourth slot is
// folded into the first.
func AddSkinned(doc *gltf.Document, name string, model *skeletal.Model, numUVs int) {
	base := make([]mesh.BuildVertex, len(model.Vertices))
	joints := make([][4]uint16, len(model.Vertices))
	weights := make([][4]uint8, len(model.Vertices))
	for _, s := range model.Sections {
		for v := s.BaseVertexIndex; v < s.BaseVertexIndex+s.NumVertices; v++ {
			vert := &model.Vertices[v]
			base[v] = vert.BuildVertex
			joints[v], weights[v] = globalInfluences(&vert.Influences, s.BoneMap)
		}
	}

	attrs := writeVertices(doc, base, numUVs)
	attrs[gltf.JOINTS_0] = modeler.WriteJoints(doc, joints)
	attrs[gltf.WEIGHTS_0] = modeler.WriteWeights(doc, weights)

	m := &gltf.Mesh{Name: name}
	use32 := mesh.Needs32Bit(model.Indices)
	for _, s := range model.Sections {
		idx := model.Indices[s.BaseIndex : s.BaseIndex+3*s.NumTriangles]
		m.Primitives = append(m.Primitives, &gltf.Primitive{
			Attributes: attrs,
			Indices:    gltf.Index(writeIndices(doc, idx, use32)),
			Material:   gltf.Index(material(doc, s.Material)),
		})
	}
	addMesh(doc, m, skeleton(doc, model.ActiveBones))
}

// SaveBinary writes doc as a .glb file.
func SaveBinary(doc *gltf.Document, path string) error {
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeVertices(doc *gltf.Document, vertices []mesh.BuildVertex, numUVs int) map[string]uint32 {
	positions := make([][3]float32, len(vertices))
	normals := make([][3]float32, len(vertices))
	tangents := make([][4]float32, len(vertices))
	colors := make([][4]uint8, len(vertices))
	uvs := make([][][2]float32, numUVs)
	for c := range uvs {
		uvs[c] = make([][2]float32, len(vertices))
	}

	for i := range vertices {
		v := &vertices[i]
		positions[i] = [3]float32{v.Position.X, v.Position.Y, v.Position.Z}
		normals[i] = [3]float32{v.TangentZ.X, v.TangentZ.Y, v.TangentZ.Z}
		tangents[i] = [4]float32{v.TangentX.X, v.TangentX.Y, v.TangentX.Z, v.BasisSign()}
		colors[i] = [4]uint8{v.Color.R, v.Color.G, v.Color.B, v.Color.A}
		for c := range uvs {
			uvs[c][i] = [2]float32{v.UVs[c].X, v.UVs[c].Y}
		}
	}

	attrs := map[string]uint32{
		gltf.POSITION: modeler.WritePosition(doc, positions),
		gltf.NORMAL:   modeler.WriteNormal(doc, normals),
		gltf.TANGENT:  modeler.WriteTangent(doc, tangents),
		gltf.COLOR_0:  modeler.WriteColor(doc, colors),
	}
	for c := range uvs {
		attrs[fmt.Sprintf("TEXCOORD_%d", c)] = modeler.WriteTextureCoord(doc, uvs[c])
	}
	return attrs
}

func writeIndices(doc *gltf.Document, indices []uint32, use32 bool) uint32 {
	if use32 {
		return modeler.WriteIndices(doc, flipWinding(indices))
	}
	return modeler.WriteIndices(doc, flipWinding(mesh.ConvertIndices[uint16](indices)))
}

// flipWinding swaps the second and third corner of every triangle.
func flipWinding[T constraints.Unsigned](indices []T) []T {
	out := make([]T, len(indices))
	for t := 0; t+2 < len(indices); t += 3 {
		out[t], out[t+1], out[t+2] = indices[t], indices[t+2], indices[t+1]
	}
	return out
}

// material returns the document material for a pipeline material index,
// creating placeholders up to it.
func material(doc *gltf.Document, m int) uint32 {
	for len(doc.Materials) <= m {
		doc.Materials = append(doc.Materials, &gltf.Material{
			Name: fmt.Sprintf("material_%d", len(doc.Materials)),
		})
	}
	return uint32(m)
}

// skeleton adds one node per bone up to the highest active bone and returns
// the skin index. Bone 0 is the scene root; the other bones are its children.
func skeleton(doc *gltf.Document, active []uint16) *uint32 {
	if len(active) == 0 {
		return nil
	}
	numBones := int(active[len(active)-1]) + 1
	skin := &gltf.Skin{Name: "skeleton"}
	for b := 0; b < numBones; b++ {
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: fmt.Sprintf("bone_%d", b)})
		skin.Joints = append(skin.Joints, uint32(len(doc.Nodes)-1))
	}
	root := doc.Nodes[skin.Joints[0]]
	root.Children = append(root.Children, skin.Joints[1:]...)
	skin.Skeleton = gltf.Index(skin.Joints[0])
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, skin.Joints[0])
	doc.Skins = append(doc.Skins, skin)
	return gltf.Index(uint32(len(doc.Skins) - 1))
}

func addMesh(doc *gltf.Document, m *gltf.Mesh, skin *uint32) {
	doc.Meshes = append(doc.Meshes, m)
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name: m.Name,
		Mesh: gltf.Index(uint32(len(doc.Meshes) - 1)),
		Skin: skin,
	})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))
}

// globalInfluences keeps the four heaviest slots and maps palette indices
// back to skeleton bones.
func globalInfluences(inf *skeletal.Influences, boneMap []uint16) ([4]uint16, [4]uint8) {
	var joints [4]uint16
	var weights [4]uint8
	var sum int
	for k := 0; k < 4; k++ {
		if inf.Weights[k] == 0 {
			continue
		}
		if int(inf.Bones[k]) < len(boneMap) {
			joints[k] = boneMap[inf.Bones[k]]
		}
		weights[k] = inf.Weights[k]
		sum += int(weights[k])
	}
	if sum > 0 && sum < 255 {
		weights[0] += uint8(255 - sum)
	}
	return joints, weights
}
