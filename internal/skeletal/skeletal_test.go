package skeletal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshbuild/internal/diag"
	"github.com/Faultbox/meshbuild/internal/meshtest"
	"github.com/Faultbox/meshbuild/internal/tangent"
	"github.com/Faultbox/meshbuild/pkg/math"
	"github.com/Faultbox/meshbuild/pkg/mesh"
)

// skinnedGrid converts an n x n grid into a skinned mesh where every point
// is fully weighted to the bone of its X column.
func skinnedGrid(n int) *Input {
	d := meshtest.Grid(n, 0)
	in := &Input{
		Points:   d.Positions,
		NumUVs:   d.NumUVs,
		NumBones: n + 1,
	}
	for _, w := range d.Wedges {
		in.Wedges = append(in.Wedges, Wedge{PointIndex: w.PointIndex, UVs: w.UVs, Color: mesh.White})
	}
	for f, face := range d.Faces {
		base := uint32(f * 3)
		in.Faces = append(in.Faces, Face{
			Wedges:        [3]uint32{base, base + 1, base + 2},
			Material:      face.Material,
			SmoothingMask: face.SmoothingMask,
		})
	}
	for p, pos := range d.Positions {
		in.Influences = append(in.Influences, Influence{Weight: 1, Point: uint32(p), Bone: uint16(pos.X)})
	}
	return in
}

func weightSum(inf Influences) int {
	sum := 0
	for _, w := range inf.Weights {
		sum += int(w)
	}
	return sum
}

func TestPackInfluences(t *testing.T) {
	t.Run("sorted and capped", func(t *testing.T) {
		var diags diag.List
		raw := []Influence{
			{Weight: 0.1, Point: 0, Bone: 3},
			{Weight: 0.6, Point: 0, Bone: 1},
			{Weight: 0.3, Point: 0, Bone: 2},
		}
		got := PackInfluences(raw, 1, 4, 2, &diags)

		require.Len(t, got, 1)
		assert.Equal(t, uint16(1), got[0].Bones[0])
		assert.Equal(t, uint16(2), got[0].Bones[1])
		assert.Greater(t, got[0].Weights[0], got[0].Weights[1])
		assert.Zero(t, got[0].Weights[2])
		assert.Equal(t, 255, weightSum(got[0]))
		assert.Equal(t, 1, diags.Count(diag.CodeTooManyInfluences))
	})

	t.Run("missing influence", func(t *testing.T) {
		var diags diag.List
		got := PackInfluences([]Influence{{Weight: 1, Point: 0, Bone: 2}}, 2, 4, 8, &diags)

		assert.Equal(t, uint16(2), got[0].Bones[0])
		assert.Equal(t, uint8(255), got[0].Weights[0])
		assert.Equal(t, uint16(0), got[1].Bones[0])
		assert.Equal(t, uint8(255), got[1].Weights[0])

		items := diags.Items()
		require.Len(t, items, 1)
		assert.Equal(t, diag.CodeMissingInfluence, items[0].Code)
		assert.Equal(t, "Missing influence on vert 1. Weighting it to root.", items[0].Message)
	})

	t.Run("bone out of range", func(t *testing.T) {
		tests := []struct {
			name    string
			raw     []Influence
			limit   int
			bones   []uint16
			weights []uint8
		}{
			{
				name: "heaviest invalid",
				raw: []Influence{
					{Weight: 0.5, Point: 0, Bone: 99},
					{Weight: 0.3, Point: 0, Bone: 3},
					{Weight: 0.2, Point: 0, Bone: 4},
				},
				limit:   8,
				bones:   []uint16{3, 4},
				weights: []uint8{153, 102},
			},
			{
				name: "invalid does not take a capped slot",
				raw: []Influence{
					{Weight: 0.6, Point: 0, Bone: 99},
					{Weight: 0.4, Point: 0, Bone: 3},
				},
				limit:   1,
				bones:   []uint16{3},
				weights: []uint8{255},
			},
			{
				name:    "only invalid",
				raw:     []Influence{{Weight: 1, Point: 0, Bone: 12}},
				limit:   8,
				bones:   []uint16{0},
				weights: []uint8{255},
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var diags diag.List
				got := PackInfluences(tt.raw, 1, 10, tt.limit, &diags)[0]

				assert.Equal(t, len(tt.weights), got.Count())
				for i := range tt.weights {
					assert.Equal(t, tt.bones[i], got.Bones[i], "slot %d", i)
					assert.Equal(t, tt.weights[i], got.Weights[i], "slot %d", i)
				}
				assert.Equal(t, 255, weightSum(got))
				assert.Equal(t, 1, diags.Count(diag.CodeInfluenceOutOfRange))
			})
		}
	})

	t.Run("weights always sum to 255", func(t *testing.T) {
		raw := []Influence{
			{Weight: 0.33, Point: 0, Bone: 0},
			{Weight: 0.33, Point: 0, Bone: 1},
			{Weight: 0.33, Point: 0, Bone: 2},
			{Weight: 0.9, Point: 1, Bone: 0},
			{Weight: 0.9, Point: 1, Bone: 1},
			{Weight: 0, Point: 2, Bone: 3},
		}
		for p, inf := range PackInfluences(raw, 3, 4, 8, nil) {
			assert.Equal(t, 255, weightSum(inf), "point %d", p)
		}
	})
}

// stripChunk builds corner vertices for n disjoint triangles, triangle i
// fully weighted to bone i.
func stripChunk(n int) ([]Face, []Vertex) {
	var faces []Face
	var vertices []Vertex
	for i := 0; i < n; i++ {
		x := float32(i * 2)
		faces = append(faces, Face{})
		for _, p := range []math.Vec3{{X: x}, {X: x + 1}, {X: x, Y: 1}} {
			v := Vertex{BuildVertex: mesh.BuildVertex{Position: p, Color: mesh.White}}
			v.Bones[0] = uint16(i)
			v.Weights[0] = 255
			vertices = append(vertices, v)
		}
	}
	return faces, vertices
}

func TestBuildChunksBoneOverflow(t *testing.T) {
	var diags diag.List
	faces, vertices := stripChunk(6)

	chunks, err := BuildChunks(faces, vertices, 1, math.ThreshPointsAreSame, 2, &diags)
	require.NoError(t, err)

	require.Len(t, chunks, 3)
	triangles := 0
	seen := make(map[uint16]int)
	for i, c := range chunks {
		assert.LessOrEqual(t, len(c.BoneMap), 2, "chunk %d", i)
		triangles += c.NumTriangles()
		for _, b := range c.BoneMap {
			seen[b]++
		}
		for _, idx := range c.Indices {
			require.Less(t, int(idx), len(c.Vertices))
		}
		for _, v := range c.Vertices {
			assert.Less(t, int(v.Bones[0]), len(c.BoneMap), "palette index")
		}
	}
	assert.Equal(t, 6, triangles)
	assert.Len(t, seen, 6)
	assert.Equal(t, 1, diags.Count(diag.CodeChunkSplit))
}

func TestBuildChunksPerMaterial(t *testing.T) {
	faces, vertices := stripChunk(3)
	faces[0].Material = 2
	faces[1].Material = 0
	faces[2].Material = 2

	chunks, err := BuildChunks(faces, vertices, 1, 0, 75, nil)
	require.NoError(t, err)

	require.Len(t, chunks, 2)
	assert.Equal(t, 0, chunks[0].Material)
	assert.Equal(t, 2, chunks[1].Material)
	assert.Equal(t, 2, chunks[1].NumTriangles())
}

func TestBuildChunksErrors(t *testing.T) {
	faces, vertices := stripChunk(2)

	_, err := BuildChunks(faces, vertices[:5], 1, 0, 75, nil)
	assert.ErrorIs(t, err, ErrCornerCount)

	_, err = BuildChunks(faces, vertices, 1, 0, 0, nil)
	assert.ErrorIs(t, err, ErrBoneLimit)
}

func TestBuild(t *testing.T) {
	for _, mikk := range []bool{false, true} {
		name := "fan"
		if mikk {
			name = "mikk"
		}
		t.Run(name, func(t *testing.T) {
			var diags diag.List
			opts := Options{Tangent: tangent.Options{IgnoreDegenerateTriangles: true, UseMikkTSpace: mikk}}

			model, err := Build(skinnedGrid(4), opts, &diags, nil)
			require.NoError(t, err)

			require.Len(t, model.Sections, 1)
			assert.Len(t, model.Vertices, 25)
			assert.Len(t, model.Indices, 4*4*2*3)
			assert.Equal(t, []uint16{0, 1, 2, 3, 4}, model.ActiveBones)
			assert.Zero(t, diags.Warnings())
			for i, v := range model.Vertices {
				assert.True(t, math.PointsEqual(math.Vec3{X: 1}, v.TangentX, 1e-4), "vertex %d X = %v", i, v.TangentX)
				assert.True(t, math.PointsEqual(math.Vec3{Z: -1}, v.TangentZ, 1e-4), "vertex %d Z = %v", i, v.TangentZ)
				assert.Equal(t, 255, weightSum(v.Influences))
			}
		})
	}
}

func TestBuildSplitsSections(t *testing.T) {
	var diags diag.List
	opts := Options{
		Tangent:          tangent.Options{IgnoreDegenerateTriangles: true},
		MaxBonesPerChunk: 2,
	}

	model, err := Build(skinnedGrid(4), opts, &diags, nil)
	require.NoError(t, err)

	require.Len(t, model.Sections, 4)
	triangles := uint32(0)
	for i, s := range model.Sections {
		assert.LessOrEqual(t, len(s.BoneMap), 2, "section %d", i)
		assert.Equal(t, 1, s.MaxBoneInfluences)
		triangles += s.NumTriangles
		for _, idx := range model.Indices[s.BaseIndex : s.BaseIndex+s.NumTriangles*3] {
			assert.GreaterOrEqual(t, idx, s.BaseVertexIndex)
			assert.Less(t, idx, s.BaseVertexIndex+s.NumVertices)
		}
	}
	assert.Equal(t, uint32(32), triangles)
	assert.Len(t, model.Vertices, 40)
	assert.Equal(t, 1, diags.Count(diag.CodeChunkSplit))
}

func TestBuildMissingInfluence(t *testing.T) {
	var diags diag.List
	in := skinnedGrid(1)
	in.Influences = in.Influences[1:]

	_, err := Build(in, Options{}, &diags, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, diags.Count(diag.CodeMissingInfluence))
}

func TestBuildValidates(t *testing.T) {
	in := skinnedGrid(1)
	in.Faces[0].Wedges[2] = 99
	in.NumBones = 0

	_, err := Build(in, Options{}, nil, nil)
	assert.ErrorIs(t, err, ErrWedgeIndex)
	assert.ErrorIs(t, err, ErrNoBones)
}
