package skeletal

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/meshbuild/internal/diag"
	"github.com/Faultbox/meshbuild/internal/logger"
	"github.com/Faultbox/meshbuild/internal/overlap"
	"github.com/Faultbox/meshbuild/pkg/math"
)

// Chunk is a run of triangles drawn with one material and one bone palette.
// Vertex bone slots index into BoneMap.
type Chunk struct {
	Material int
	Vertices []Vertex
	Indices  []uint32
	BoneMap  []uint16
}

// NumTriangles returns len(Indices) / 3.
func (c *Chunk) NumTriangles() int {
	return len(c.Indices) / 3
}

// BuildChunks groups corner vertices (three per face, in face order) into
// per-material chunks with deduplicated vertices, then splits every chunk
// whose palette exceeds maxBones. Each triangle ends up in exactly one
// chunk. Chunks are ordered by material and, within a material, by
// creation. Vertex bone slots are rewritten to palette indices.
func BuildChunks(faces []Face, vertices []Vertex, numUVs int, tolerance float32, maxBones int, diags *diag.List) ([]*Chunk, error) {
	if len(vertices) != len(faces)*3 {
		return nil, fmt.Errorf("%w: %d vertices for %d faces", ErrCornerCount, len(vertices), len(faces))
	}
	if maxBones < 1 {
		return nil, fmt.Errorf("%w: %d", ErrBoneLimit, maxBones)
	}
	byMaterial, err := dedupe(faces, vertices, numUVs, tolerance)
	if err != nil {
		return nil, err
	}

	var chunks []*Chunk
	for _, c := range byMaterial {
		split := splitChunk(c, maxBones, diags)
		if len(split) > 1 {
			diags.Info(diag.CodeChunkSplit,
				"material %d: %d triangles split into %d chunks of at most %d bones",
				c.Material, c.NumTriangles(), len(split), maxBones)
		}
		chunks = append(chunks, split...)
	}
	for _, c := range chunks {
		c.localizeBones()
	}

	logger.Debug("built skinned chunks",
		zap.Int("materials", len(byMaterial)),
		zap.Int("chunks", len(chunks)))
	return chunks, nil
}

// dedupe builds one chunk per material. A corner reuses an earlier corner's
// vertex when they overlap, belong to the same material and are equal.
func dedupe(faces []Face, vertices []Vertex, numUVs int, tolerance float32) ([]*Chunk, error) {
	positions := make([]math.Vec3, len(vertices))
	for i := range vertices {
		positions[i] = vertices[i].Position
	}
	table, err := overlap.BuildPoints(positions, tolerance)
	if err != nil {
		return nil, err
	}

	chunkOf := make(map[int]*Chunk)
	var order []*Chunk
	slot := make([]int32, len(vertices))

	for f := range faces {
		material := faces[f].Material
		c, ok := chunkOf[material]
		if !ok {
			c = &Chunk{Material: material}
			chunkOf[material] = c
			order = append(order, c)
		}
		for k := 0; k < 3; k++ {
			corner := f*3 + k
			idx := int32(-1)
			for _, o := range table.Find(corner) {
				if int(o) >= corner {
					break
				}
				if faces[int(o)/3].Material != material {
					continue
				}
				if vertices[o].Equal(&vertices[corner], numUVs, tolerance) {
					idx = slot[o]
					break
				}
			}
			if idx < 0 {
				idx = int32(len(c.Vertices))
				c.Vertices = append(c.Vertices, vertices[corner])
			}
			slot[corner] = idx
			c.Indices = append(c.Indices, uint32(idx))
		}
	}

	slices.SortStableFunc(order, func(a, b *Chunk) int {
		return a.Material - b.Material
	})
	return order, nil
}

// triangleBones returns the distinct weighted bones of triangle t.
func triangleBones(c *Chunk, t int) []uint16 {
	var bones []uint16
	for k := 0; k < 3; k++ {
		v := &c.Vertices[c.Indices[t*3+k]]
		for i, w := range v.Weights {
			if w > 0 && !slices.Contains(bones, v.Bones[i]) {
				bones = append(bones, v.Bones[i])
			}
		}
	}
	return bones
}

// splitChunk distributes the triangles of c over chunks whose palettes hold
// at most maxBones bones. A triangle goes to the first chunk that can take
// its bones; a triangle that alone exceeds the limit gets its own chunk.
func splitChunk(c *Chunk, maxBones int, diags *diag.List) []*Chunk {
	type dest struct {
		chunk *Chunk
		remap map[uint32]uint32
	}
	var dests []*dest

	for t := 0; t < c.NumTriangles(); t++ {
		bones := triangleBones(c, t)
		if len(bones) > maxBones {
			diags.Warn(diag.CodeChunkSplit,
				"material %d: triangle %d needs %d bones, more than the limit of %d",
				c.Material, t, len(bones), maxBones)
		}

		var target *dest
		for _, d := range dests {
			missing := 0
			for _, b := range bones {
				if !slices.Contains(d.chunk.BoneMap, b) {
					missing++
				}
			}
			if len(d.chunk.BoneMap)+missing <= maxBones {
				target = d
				break
			}
		}
		if target == nil {
			target = &dest{
				chunk: &Chunk{Material: c.Material},
				remap: make(map[uint32]uint32),
			}
			dests = append(dests, target)
		}

		for _, b := range bones {
			if !slices.Contains(target.chunk.BoneMap, b) {
				target.chunk.BoneMap = append(target.chunk.BoneMap, b)
			}
		}
		for k := 0; k < 3; k++ {
			src := c.Indices[t*3+k]
			idx, ok := target.remap[src]
			if !ok {
				idx = uint32(len(target.chunk.Vertices))
				target.remap[src] = idx
				target.chunk.Vertices = append(target.chunk.Vertices, c.Vertices[src])
			}
			target.chunk.Indices = append(target.chunk.Indices, idx)
		}
	}

	out := make([]*Chunk, len(dests))
	for i, d := range dests {
		out[i] = d.chunk
	}
	return out
}

// localizeBones rewrites vertex bone slots from skeleton bones to palette
// indices. Unweighted slots are cleared.
func (c *Chunk) localizeBones() {
	for v := range c.Vertices {
		inf := &c.Vertices[v].Influences
		for i := range inf.Bones {
			if inf.Weights[i] == 0 {
				inf.Bones[i] = 0
				continue
			}
			inf.Bones[i] = uint16(slices.Index(c.BoneMap, inf.Bones[i]))
		}
	}
}
