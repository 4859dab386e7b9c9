// Package cache reorders index and vertex buffers for the post-transform
// vertex cache.
//
// OptimizeIndices reorders the triangles of one section with Forsyth's
// linear-speed scoring over a simulated LRU cache. Renumber then assigns
// vertex indices in order of first use so vertex fetches stream forward.
package cache

import (
	"github.com/chewxy/math32"
)

// Scoring parameters of the simulated cache.
const (
	Size = 32

	decayPower        = 1.5
	lastTriScore      = 0.75
	valenceBoostScale = 2.0
	valenceBoostPower = 0.5
)

// LargeMeshWedges is the wedge count at which callers skip optimization.
const LargeMeshWedges = 100000 * 3

type vertexState struct {
	cachePos  int
	score     float32
	remaining int
	// first is the start of the vertex's triangle range in adj; the live
	// triangles are adj[first : first+remaining].
	first int
}

// OptimizeIndices returns a reordered copy of a triangle list. The set of
// triangles and the corner order within each triangle are unchanged.
func OptimizeIndices(indices []uint32) []uint32 {
	numTris := len(indices) / 3
	if numTris == 0 {
		return append([]uint32(nil), indices...)
	}

	numVerts := 0
	for _, v := range indices {
		numVerts = max(numVerts, int(v)+1)
	}

	verts := make([]vertexState, numVerts)
	for _, v := range indices[:numTris*3] {
		verts[v].remaining++
	}
	offsets := make([]int, numVerts+1)
	for v := range verts {
		offsets[v+1] = offsets[v] + verts[v].remaining
		verts[v].first = offsets[v]
		verts[v].cachePos = -1
	}
	adj := make([]int32, offsets[numVerts])
	fill := make([]int, numVerts)
	for t := 0; t < numTris; t++ {
		for c := 0; c < 3; c++ {
			v := indices[t*3+c]
			adj[offsets[v]+fill[v]] = int32(t)
			fill[v]++
		}
	}
	for v := range verts {
		verts[v].score = vertexScore(-1, verts[v].remaining)
	}

	added := make([]bool, numTris)
	triScore := make([]float32, numTris)
	for t := range triScore {
		triScore[t] = triangleScore(verts, indices, t)
	}

	out := make([]uint32, 0, numTris*3)
	lru := make([]uint32, 0, Size+3)
	next := make([]uint32, 0, Size+3)
	cursor := 0

	best := bestTriangle(triScore)
	for len(out) < numTris*3 {
		if best < 0 {
			for cursor < numTris && added[cursor] {
				cursor++
			}
			best = cursor
		}

		added[best] = true
		tri := indices[best*3 : best*3+3]
		out = append(out, tri...)

		for _, v := range tri {
			removeTriangle(&verts[v], adj, int32(best))
		}

		// Push the triangle to the front of the cache.
		next = append(next[:0], tri...)
		for _, v := range lru {
			if v != tri[0] && v != tri[1] && v != tri[2] {
				next = append(next, v)
			}
		}
		for _, v := range next[min(len(next), Size):] {
			verts[v].cachePos = -1
			verts[v].score = vertexScore(-1, verts[v].remaining)
		}
		lru, next = next[:min(len(next), Size)], lru

		for i, v := range lru {
			verts[v].cachePos = i
			verts[v].score = vertexScore(i, verts[v].remaining)
		}

		// Rescore the triangles touching the cache and pick the best.
		best = -1
		var bestScore float32 = -1
		for _, v := range lru {
			s := &verts[v]
			for _, t := range adj[s.first : s.first+s.remaining] {
				triScore[t] = triangleScore(verts, indices, int(t))
				if triScore[t] > bestScore {
					bestScore = triScore[t]
					best = int(t)
				}
			}
		}
	}
	return out
}

// removeTriangle drops t from the vertex's remaining adjacency, keeping
// live triangles at the front of its range.
func removeTriangle(s *vertexState, adj []int32, t int32) {
	live := adj[s.first : s.first+s.remaining]
	for i, u := range live {
		if u == t {
			live[i] = live[len(live)-1]
			live[len(live)-1] = t
			s.remaining--
			return
		}
	}
}

func bestTriangle(scores []float32) int {
	best := -1
	var bestScore float32 = -1
	for t, s := range scores {
		if s > bestScore {
			best, bestScore = t, s
		}
	}
	return best
}

func triangleScore(verts []vertexState, indices []uint32, t int) float32 {
	return verts[indices[t*3]].score + verts[indices[t*3+1]].score + verts[indices[t*3+2]].score
}

func vertexScore(cachePos, remaining int) float32 {
	if remaining == 0 {
		return -1
	}
	var score float32
	switch {
	case cachePos < 0:
	case cachePos < 3:
		score = lastTriScore
	default:
		const scaler = 1.0 / (Size - 3)
		score = math32.Pow(1-float32(cachePos-3)*scaler, decayPower)
	}
	return score + valenceBoostScale*math32.Pow(float32(remaining), -valenceBoostPower)
}
