package gltfio

import (
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshbuild/internal/meshtest"
	"github.com/Faultbox/meshbuild/internal/pipeline"
	"github.com/Faultbox/meshbuild/internal/skeletal"
	"github.com/Faultbox/meshbuild/pkg/math"
	"github.com/Faultbox/meshbuild/pkg/mesh"
)

func corners(d *mesh.Description) [][3]math.Vec3 {
	out := make([][3]math.Vec3, len(d.Faces))
	for f := range d.Faces {
		out[f] = d.Corners(f)
	}
	return out
}

func TestEncodeDecode(t *testing.T) {
	src := meshtest.UnitQuad()
	want := corners(src)
	lod, err := pipeline.Build(src, pipeline.DefaultOptions(), nil, nil)
	require.NoError(t, err)

	doc := Encode("quad", lod)
	require.Len(t, doc.Meshes, 1)
	require.Len(t, doc.Meshes[0].Primitives, 1)
	assert.Equal(t, generator, doc.Asset.Generator)

	meshes, err := Decode(doc)
	require.NoError(t, err)
	require.Len(t, meshes, 1)
	assert.Equal(t, "quad", meshes[0].Name)
	assert.Nil(t, meshes[0].Skin)

	d := meshes[0].Desc
	require.NoError(t, d.Validate())
	assert.Len(t, d.Positions, 4)
	assert.Len(t, d.Faces, 2)
	assert.Equal(t, 1, d.NumUVs)
	assert.True(t, d.HasColors)
	assert.ElementsMatch(t, want, corners(d), "winding must survive the round trip")

	for i, w := range d.Wedges {
		assert.True(t, math.PointsEqual(math.Vec3{Z: -1}, w.TangentZ, 1e-4), "wedge %d normal %v", i, w.TangentZ)
		assert.Equal(t, mesh.White, w.Color)
	}
}

func TestEncodeSections16Bit(t *testing.T) {
	lod, err := pipeline.Build(meshtest.Grid(2, 1), pipeline.DefaultOptions(), nil, nil)
	require.NoError(t, err)

	doc := Encode("grid", lod)
	prims := doc.Meshes[0].Primitives
	require.Len(t, prims, 2)
	assert.Len(t, doc.Materials, 2)
	for i, p := range prims {
		assert.EqualValues(t, i, *p.Material)
		acr := doc.Accessors[*p.Indices]
		assert.Equal(t, gltf.ComponentUshort, acr.ComponentType)
		assert.EqualValues(t, 12, acr.Count)
	}
}

func TestSaveBinaryOpen(t *testing.T) {
	lod, err := pipeline.Build(meshtest.Cube(true), pipeline.DefaultOptions(), nil, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "cube.glb")
	require.NoError(t, SaveBinary(Encode("cube", lod), path))

	meshes, err := Open(path)
	require.NoError(t, err)
	require.Len(t, meshes, 1)
	assert.Len(t, meshes[0].Desc.Faces, 12)
	assert.Len(t, meshes[0].Desc.Positions, 24)
}

// skinnedTriangle is one triangle whose third point is split between two
// joints of a two-joint skin.
func skinnedTriangle() *gltf.Document {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	joints := modeler.WriteJoints(doc, [][4]uint16{{0, 0, 0, 0}, {1, 0, 0, 0}, {0, 1, 0, 0}})
	weights := modeler.WriteWeights(doc, [][4]float32{{1, 0, 0, 0}, {1, 0, 0, 0}, {0.5, 0.5, 0, 0}})

	doc.Meshes = []*gltf.Mesh{{
		Name: "arm",
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]uint32{
				gltf.POSITION:   pos,
				gltf.TEXCOORD_0: uv,
				gltf.JOINTS_0:   joints,
				gltf.WEIGHTS_0:  weights,
			},
			Indices: gltf.Index(idx),
		}},
	}}
	doc.Nodes = []*gltf.Node{
		{Name: "root"},
		{Name: "hand"},
		{Name: "arm", Mesh: gltf.Index(0), Skin: gltf.Index(0)},
	}
	doc.Skins = []*gltf.Skin{{Joints: []uint32{0, 1}}}
	return doc
}

func TestDecodeSkinned(t *testing.T) {
	meshes, err := Decode(skinnedTriangle())
	require.NoError(t, err)
	require.Len(t, meshes, 1)

	skin := meshes[0].Skin
	require.NotNil(t, skin)
	require.NoError(t, skin.Validate())
	assert.Equal(t, 2, skin.NumBones)
	assert.Len(t, skin.Influences, 4)
	assert.Len(t, skin.Faces, 1)
	assert.Equal(t, [3]uint32{0, 1, 2}, skin.Faces[0].Wedges)
	// Corners 1 and 2 are swapped on import.
	assert.Equal(t, uint32(2), skin.Wedges[1].PointIndex)
	assert.Equal(t, uint32(1), skin.Wedges[2].PointIndex)

	model, err := skeletal.Build(skin, skeletal.Options{}, nil, nil)
	require.NoError(t, err)
	doc := EncodeSkinned("arm", model, skin.NumUVs)

	require.Len(t, doc.Skins, 1)
	joints := doc.Skins[0].Joints
	assert.Len(t, joints, 2)
	// Every joint hangs off the skeleton root, which is a scene root.
	require.NotNil(t, doc.Skins[0].Skeleton)
	root := *doc.Skins[0].Skeleton
	assert.Equal(t, joints[0], root)
	assert.Equal(t, joints[1:], doc.Nodes[root].Children)
	assert.Contains(t, doc.Scenes[0].Nodes, root)
	assert.NotContains(t, doc.Scenes[0].Nodes, joints[1])
	attrs := doc.Meshes[0].Primitives[0].Attributes
	assert.Contains(t, attrs, gltf.JOINTS_0)
	assert.Contains(t, attrs, gltf.WEIGHTS_0)

	weights, err := modeler.ReadWeights(doc, doc.Accessors[attrs[gltf.WEIGHTS_0]], nil)
	require.NoError(t, err)
	for i, w := range weights {
		assert.InDelta(t, 1, w[0]+w[1]+w[2]+w[3], 1e-2, "vertex %d", i)
	}
}

func TestGlobalInfluences(t *testing.T) {
	inf := skeletal.Influences{
		Bones:   [skeletal.MaxTotalInfluences]uint16{0, 1, 2, 3, 4},
		Weights: [skeletal.MaxTotalInfluences]uint8{100, 60, 40, 30, 25},
	}
	joints, weights := globalInfluences(&inf, []uint16{10, 11, 12, 13, 14})
	assert.Equal(t, [4]uint16{10, 11, 12, 13}, joints)
	assert.Equal(t, [4]uint8{125, 60, 40, 30}, weights)
}

func TestFlipWinding(t *testing.T) {
	assert.Equal(t, []uint16{0, 2, 1, 3, 5, 4}, flipWinding([]uint16{0, 1, 2, 3, 4, 5}))
	assert.Equal(t, []uint32{7, 9, 8}, flipWinding([]uint32{7, 8, 9}))
}

func TestDecodeErrors(t *testing.T) {
	t.Run("no meshes", func(t *testing.T) {
		_, err := Decode(gltf.NewDocument())
		assert.ErrorIs(t, err, ErrNoMeshes)
	})

	t.Run("no positions", func(t *testing.T) {
		doc := gltf.NewDocument()
		doc.Meshes = []*gltf.Mesh{{Primitives: []*gltf.Primitive{{Attributes: map[string]uint32{}}}}}
		_, err := Decode(doc)
		assert.ErrorIs(t, err, ErrNoPositions)
	})

	t.Run("points", func(t *testing.T) {
		doc := gltf.NewDocument()
		doc.Meshes = []*gltf.Mesh{{Primitives: []*gltf.Primitive{{Mode: gltf.PrimitivePoints}}}}
		_, err := Decode(doc)
		assert.ErrorIs(t, err, ErrPrimitiveMode)
	})

	t.Run("index range", func(t *testing.T) {
		doc := gltf.NewDocument()
		pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
		idx := modeler.WriteIndices(doc, []uint16{0, 1, 5})
		doc.Meshes = []*gltf.Mesh{{Primitives: []*gltf.Primitive{{
			Attributes: map[string]uint32{gltf.POSITION: pos},
			Indices:    gltf.Index(idx),
		}}}}
		_, err := Decode(doc)
		assert.ErrorIs(t, err, ErrIndexRange)
		assert.ErrorContains(t, err, "mesh_0 primitive 0")
	})
}
