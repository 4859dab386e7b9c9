// Package pipeline runs the static mesh build: overlap detection, tangent
// synthesis, welding, cache optimization and the auxiliary buffers, plus
// LOD reduction and concurrent builds of independent meshes.
package pipeline

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshbuild/internal/adjacency"
	"github.com/Faultbox/meshbuild/internal/cache"
	"github.com/Faultbox/meshbuild/internal/depth"
	"github.com/Faultbox/meshbuild/internal/diag"
	"github.com/Faultbox/meshbuild/internal/logger"
	"github.com/Faultbox/meshbuild/internal/overlap"
	"github.com/Faultbox/meshbuild/internal/tangent"
	"github.com/Faultbox/meshbuild/internal/weld"
	"github.com/Faultbox/meshbuild/pkg/math"
	"github.com/Faultbox/meshbuild/pkg/mesh"
)

// Tangents is the quantized tangent basis of every vertex. TangentZ.W holds
// the sign of the basis determinant. Only one precision is populated.
type Tangents struct {
	X   []mesh.PackedNormal
	Z   []mesh.PackedNormal
	X16 []mesh.PackedNormal16
	Z16 []mesh.PackedNormal16
}

// Stats summarizes a build.
type Stats struct {
	NumWedges     int
	NumDegenerate int
	NumRejected   int
	ACMR          float32
	Elapsed       time.Duration
}

// LOD is the render-ready output of one build.
type LOD struct {
	Vertices []mesh.BuildVertex
	Tangents Tangents
	NumUVs   int

	Indices  []uint32
	Sections []mesh.Section
	WedgeMap mesh.WedgeMap
	Use32Bit bool

	DepthOnly         []uint32
	Reversed          []uint32
	ReversedDepthOnly []uint32
	Adjacency         []uint32
	Wireframe         []uint32

	Bounds mesh.Bounds
	Stats  Stats
}

// Indices16 returns the index buffer narrowed to 16 bits.
func (l *LOD) Indices16() []uint16 {
	return mesh.ConvertIndices[uint16](l.Indices)
}

// Positions returns the vertex positions.
func (l *LOD) Positions() []math.Vec3 {
	out := make([]math.Vec3, len(l.Vertices))
	for i := range l.Vertices {
		out[i] = l.Vertices[i].Position
	}
	return out
}

// Build turns a description into render buffers. Tangents are synthesized
// into d in place.
func Build(d *mesh.Description, opts Options, diags *diag.List, progress diag.Reporter) (*LOD, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	start := time.Now()
	log := logger.Stage("build", zap.Int("faces", len(d.Faces)))

	threshold := opts.Tangent.ComparisonThreshold()
	table, err := overlap.FromDescription(d, threshold)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	log.Debug("overlaps found", zap.Int("wedges", table.Len()), zap.Int("pairs", table.Pairs()))

	if err := tangent.New(opts.Tangent, diags, progress).Synthesize(d, table); err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	res, err := weld.Weld(weld.Input{
		Desc:       d,
		Overlaps:   table,
		Tolerance:  threshold,
		BuildScale: opts.BuildScale,
		Progress:   progress,
	})
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	if res.NumDegenerate > 0 || res.NumRejected > 0 {
		diags.Info(diag.CodeDegenerateTriangles, "%d degenerate triangles removed, %d collapsed after welding",
			res.NumDegenerate, res.NumRejected)
	}

	vertices := res.Vertices
	if opts.CacheOptimize {
		if len(d.Wedges) < cache.LargeMeshWedges {
			vertices = cache.Optimize(vertices, res.SectionIndices, res.WedgeMap)
		} else {
			diags.Info(diag.CodeCacheOptimizationSkipped,
				"mesh has %d wedges; skipping vertex cache optimization", len(d.Wedges))
		}
	}

	lod := &LOD{
		Vertices: vertices,
		NumUVs:   d.NumUVs,
		WedgeMap: res.WedgeMap,
	}
	lod.Indices, lod.Sections = mesh.Combine(res.SectionIndices, res.SectionMaterials)

	lod.Use32Bit = mesh.Needs32Bit(lod.Indices)
	if lod.Use32Bit && !opts.Allow32BitIndices {
		diags.Warn(diag.CodeIndexOverflow,
			"mesh has %d vertices, more than a 16-bit index buffer can address; the mesh may be corrupt",
			len(vertices))
		lod.Use32Bit = false
	}

	lod.Tangents = packTangents(vertices, opts.HighPrecisionTangents)
	buildAux(lod, opts)
	lod.Bounds = mesh.ComputeBounds(lod.Positions())

	lod.Stats = Stats{
		NumWedges:     len(d.Wedges),
		NumDegenerate: res.NumDegenerate,
		NumRejected:   res.NumRejected,
		ACMR:          cache.ACMR(lod.Indices, cache.Size),
		Elapsed:       time.Since(start),
	}
	log.Info("mesh built",
		zap.Int("vertices", len(lod.Vertices)),
		zap.Int("indices", len(lod.Indices)),
		zap.Int("sections", len(lod.Sections)),
		zap.Bool("32bit", lod.Use32Bit),
		zap.Duration("elapsed", lod.Stats.Elapsed))
	return lod, nil
}

func buildAux(lod *LOD, opts Options) {
	positions := lod.Positions()
	if opts.BuildDepthOnly {
		lod.DepthOnly = depth.BuildDepthOnly(positions, lod.Indices, lod.Sections)
	}
	if opts.BuildReversed {
		lod.Reversed = depth.Reverse(lod.Indices, lod.Sections)
		if lod.DepthOnly != nil {
			lod.ReversedDepthOnly = depth.ReverseAll(lod.DepthOnly)
		}
	}
	if opts.BuildAdjacency {
		builder := opts.Adjacency
		if builder == nil {
			builder = adjacency.PNAEN{}
		}
		lod.Adjacency = builder.Build(positions, lod.Indices)
	}
	if opts.BuildWireframe {
		lod.Wireframe = depth.Wireframe(positions, lod.Indices)
	}
}

func packTangents(vertices []mesh.BuildVertex, highPrecision bool) Tangents {
	var t Tangents
	if highPrecision {
		t.X16 = make([]mesh.PackedNormal16, len(vertices))
		t.Z16 = make([]mesh.PackedNormal16, len(vertices))
	} else {
		t.X = make([]mesh.PackedNormal, len(vertices))
		t.Z = make([]mesh.PackedNormal, len(vertices))
	}
	for i := range vertices {
		v := &vertices[i]
		sign := v.BasisSign()
		if highPrecision {
			t.X16[i] = mesh.PackNormal16(v.TangentX, 0)
			t.Z16[i] = mesh.PackNormal16(v.TangentZ, sign)
		} else {
			t.X[i] = mesh.PackNormal(v.TangentX, 0)
			t.Z[i] = mesh.PackNormal(v.TangentZ, sign)
		}
	}
	return t
}
