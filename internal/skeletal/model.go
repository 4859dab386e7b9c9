package skeletal

import (
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/meshbuild/internal/cache"
	"github.com/Faultbox/meshbuild/internal/logger"
	"github.com/Faultbox/meshbuild/pkg/math"
	"github.com/Faultbox/meshbuild/pkg/mesh"
)

// Section is one chunk placed in the shared skinned buffers.
type Section struct {
	Material          int
	BaseVertexIndex   uint32
	BaseIndex         uint32
	NumVertices       uint32
	NumTriangles      uint32
	BoneMap           []uint16
	MaxBoneInfluences int
}

// Model is a render-ready skinned mesh. Indices are absolute: each section's
// base vertex index is already added.
type Model struct {
	Vertices    []Vertex
	Indices     []uint32
	Sections    []Section
	ActiveBones []uint16
	Bounds      mesh.Bounds
}

// BuildModel packs chunks into one vertex and index buffer. Each chunk's
// triangles are cache optimized and its vertices renumbered in first-use
// order before they are appended.
func BuildModel(chunks []*Chunk) *Model {
	m := &Model{}
	for i, c := range chunks {
		indices := cache.OptimizeIndices(c.Indices)
		vertices := cache.Renumber(c.Vertices, [][]uint32{indices}, nil)

		s := Section{
			Material:        c.Material,
			BaseVertexIndex: uint32(len(m.Vertices)),
			BaseIndex:       uint32(len(m.Indices)),
			NumVertices:     uint32(len(vertices)),
			NumTriangles:    uint32(len(indices) / 3),
			BoneMap:         slices.Clone(c.BoneMap),
		}
		for v := range vertices {
			s.MaxBoneInfluences = max(s.MaxBoneInfluences, vertices[v].Count())
		}
		for _, idx := range indices {
			m.Indices = append(m.Indices, s.BaseVertexIndex+idx)
		}
		m.Vertices = append(m.Vertices, vertices...)
		m.Sections = append(m.Sections, s)

		for _, b := range c.BoneMap {
			if !slices.Contains(m.ActiveBones, b) {
				m.ActiveBones = append(m.ActiveBones, b)
			}
		}

		logger.Debug("skinned section",
			zap.Int("section", i),
			zap.Uint32("vertices", s.NumVertices),
			zap.Int("active_bones", len(s.BoneMap)))
	}
	slices.Sort(m.ActiveBones)

	positions := make([]math.Vec3, len(m.Vertices))
	for i := range m.Vertices {
		positions[i] = m.Vertices[i].Position
	}
	m.Bounds = mesh.ComputeBounds(positions)
	return m
}
