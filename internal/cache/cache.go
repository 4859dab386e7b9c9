package cache

import (
	"github.com/Faultbox/meshbuild/pkg/mesh"
)

// Renumber assigns new vertex indices in order of first use across the
// sections, rewriting sectionIndices and wedgeMap in place. Vertices that no
// index references are dropped and their wedges map to mesh.IndexNone. The
// reordered vertex buffer is returned.
func Renumber[V any](vertices []V, sectionIndices [][]uint32, wedgeMap mesh.WedgeMap) []V {
	remap := make([]int32, len(vertices))
	for i := range remap {
		remap[i] = mesh.IndexNone
	}

	out := make([]V, 0, len(vertices))
	for _, indices := range sectionIndices {
		for i, v := range indices {
			if remap[v] == mesh.IndexNone {
				remap[v] = int32(len(out))
				out = append(out, vertices[v])
			}
			indices[i] = uint32(remap[v])
		}
	}

	for i, v := range wedgeMap {
		if v != mesh.IndexNone {
			wedgeMap[i] = remap[v]
		}
	}
	return out
}

// Optimize reorders the triangles of every section and then renumbers the
// vertices. It is a pure relabeling: the triangles, read through the
// returned vertices, are the same as before.
func Optimize[V any](vertices []V, sectionIndices [][]uint32, wedgeMap mesh.WedgeMap) []V {
	for s, indices := range sectionIndices {
		sectionIndices[s] = OptimizeIndices(indices)
	}
	return Renumber(vertices, sectionIndices, wedgeMap)
}

// ACMR returns the average number of cache misses per triangle for a FIFO
// cache of the given size. Lower is better; 0.5 is the ideal for large
// regular meshes and 3 the worst case.
func ACMR(indices []uint32, cacheSize int) float32 {
	numTris := len(indices) / 3
	if numTris == 0 || cacheSize <= 0 {
		return 0
	}

	fifo := make([]uint32, 0, cacheSize)
	misses := 0
	for _, v := range indices[:numTris*3] {
		hit := false
		for _, c := range fifo {
			if c == v {
				hit = true
				break
			}
		}
		if hit {
			continue
		}
		misses++
		if len(fifo) == cacheSize {
			fifo = fifo[1:]
		}
		fifo = append(fifo, v)
	}
	return float32(misses) / float32(numTris)
}
