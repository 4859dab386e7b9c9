// Package depth builds the auxiliary index buffers that sit next to the main
// render buffer: the position-only depth buffer, reversed-winding copies and
// a wireframe line list.
package depth

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshbuild/internal/cache"
	"github.com/Faultbox/meshbuild/internal/logger"
	"github.com/Faultbox/meshbuild/internal/overlap"
	"github.com/Faultbox/meshbuild/pkg/math"
	"github.com/Faultbox/meshbuild/pkg/mesh"
)

// OptimizeMaxIndices is the depth buffer size below which it is cache
// optimized.
const OptimizeMaxIndices = 50000 * 3

// sweepTolerance bounds the Z window of the representative search. Matches
// themselves must be exact.
const sweepTolerance = math.ThreshPointsAreSame * 4.01

// Representatives maps every vertex to the lowest-index vertex with exactly
// the same position.
func Representatives(positions []math.Vec3) []uint32 {
	rep := make([]uint32, len(positions))
	for i := range rep {
		rep[i] = uint32(i)
	}
	overlap.Sweep(positions, sweepTolerance, 0, func(a, b int) {
		lo, hi := min(a, b), max(a, b)
		rep[hi] = min(rep[hi], uint32(lo))
	})
	return rep
}

// BuildDepthOnly returns an index buffer over the same vertex buffer in
// which vertices that share a position are collapsed onto one index. Every
// section is remapped and the result concatenated in section order.
func BuildDepthOnly(positions []math.Vec3, indices []uint32, sections []mesh.Section) []uint32 {
	start := time.Now()
	rep := Representatives(positions)

	out := make([]uint32, 0, len(indices))
	for _, s := range sections {
		for _, v := range s.Indices(indices) {
			out = append(out, rep[v])
		}
	}

	optimized := len(out) < OptimizeMaxIndices
	if optimized {
		out = cache.OptimizeIndices(out)
	}
	logger.Debug("built depth-only indices",
		zap.Int("indices", len(out)),
		zap.Bool("optimized", optimized),
		zap.Duration("elapsed", time.Since(start)))
	return out
}

// Reverse returns a copy of indices with the index run of every section
// reversed, flipping the winding of each triangle. Indices outside all
// sections are copied unchanged.
func Reverse(indices []uint32, sections []mesh.Section) []uint32 {
	out := make([]uint32, len(indices))
	copy(out, indices)
	for _, s := range sections {
		src := s.Indices(indices)
		dst := s.Indices(out)
		for i, v := range src {
			dst[len(dst)-1-i] = v
		}
	}
	return out
}

// ReverseAll returns indices in reverse order.
func ReverseAll(indices []uint32) []uint32 {
	out := make([]uint32, len(indices))
	for i, v := range indices {
		out[len(out)-1-i] = v
	}
	return out
}

type edgeKey [2]math.Vec3

func newEdgeKey(a, b math.Vec3) edgeKey {
	if less(b, a) {
		a, b = b, a
	}
	return edgeKey{a, b}
}

func less(a, b math.Vec3) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}

// Wireframe returns a line list with one segment per unique triangle edge.
// Edges are matched by endpoint position, so seams in the vertex buffer do
// not produce doubled lines.
func Wireframe(positions []math.Vec3, indices []uint32) []uint32 {
	seen := make(map[edgeKey]struct{}, len(indices))
	out := make([]uint32, 0, len(indices))
	for t := 0; t+2 < len(indices); t += 3 {
		for c := 0; c < 3; c++ {
			i0, i1 := indices[t+c], indices[t+(c+1)%3]
			key := newEdgeKey(positions[i0], positions[i1])
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, i0, i1)
		}
	}
	return out
}
