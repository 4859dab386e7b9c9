// Package adjacency builds index buffers for PN-AEN tessellation: each
// triangle carries its own corners, the corners of the neighbor across each
// edge and the dominant vertex of each corner.
package adjacency

import (
	"github.com/Faultbox/meshbuild/internal/overlap"
	"github.com/Faultbox/meshbuild/pkg/math"
)

// IndicesPerTriangle is the stride of an adjacency index buffer.
const IndicesPerTriangle = 12

// Builder produces an adjacency index buffer from a triangle list.
type Builder interface {
	Build(positions []math.Vec3, indices []uint32) []uint32
}

// PNAEN is the default Builder. Per triangle it writes
//
//	[0:3]  the triangle
//	[3:9]  for each edge, the neighbor's vertices on that edge in the
//	       neighbor's winding, or the edge itself on a border
//	[9:12] the dominant (lowest-index, same position) vertex of each corner
//
// Vertices are matched by exact position so UV seams do not break adjacency.
type PNAEN struct{}

var _ Builder = PNAEN{}

// Build implements Builder.
func (PNAEN) Build(positions []math.Vec3, indices []uint32) []uint32 {
	dominant := make([]uint32, len(positions))
	for i := range dominant {
		dominant[i] = uint32(i)
	}
	overlap.Sweep(positions, math.ThreshPointsAreSame, 0, func(a, b int) {
		lo, hi := min(a, b), max(a, b)
		dominant[hi] = min(dominant[hi], uint32(lo))
	})

	numTris := len(indices) / 3

	// Directed edges by dominant vertex; the first triangle to claim an
	// edge wins on non-manifold geometry.
	edges := make(map[[2]uint32][2]uint32, numTris*3)
	for t := 0; t < numTris; t++ {
		for c := 0; c < 3; c++ {
			a, b := indices[t*3+c], indices[t*3+(c+1)%3]
			key := [2]uint32{dominant[a], dominant[b]}
			if _, ok := edges[key]; !ok {
				edges[key] = [2]uint32{a, b}
			}
		}
	}

	out := make([]uint32, 0, numTris*IndicesPerTriangle)
	for t := 0; t < numTris; t++ {
		tri := indices[t*3 : t*3+3]
		out = append(out, tri...)
		for c := 0; c < 3; c++ {
			a, b := tri[c], tri[(c+1)%3]
			if n, ok := edges[[2]uint32{dominant[b], dominant[a]}]; ok {
				out = append(out, n[0], n[1])
			} else {
				out = append(out, a, b)
			}
		}
		for _, v := range tri {
			out = append(out, dominant[v])
		}
	}
	return out
}
