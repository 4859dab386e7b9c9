package skeletal

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshbuild/internal/diag"
	"github.com/Faultbox/meshbuild/internal/logger"
	"github.com/Faultbox/meshbuild/internal/overlap"
	"github.com/Faultbox/meshbuild/internal/tangent"
	"github.com/Faultbox/meshbuild/internal/tangentspace"
	"github.com/Faultbox/meshbuild/pkg/mesh"
)

// DefaultMaxBonesPerChunk is the GPU skinning palette size used when none is
// configured.
const DefaultMaxBonesPerChunk = 75

// Options controls a skeletal build.
type Options struct {
	Tangent            tangent.Options
	BoneInfluenceLimit int
	MaxBonesPerChunk   int
}

// Build runs the skeletal pipeline: tangent synthesis, influence packing,
// chunking and model assembly.
func Build(in *Input, opts Options, diags *diag.List, progress diag.Reporter) (*Model, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("skeletal build: %w", err)
	}
	if opts.BoneInfluenceLimit <= 0 {
		opts.BoneInfluenceLimit = MaxTotalInfluences
	}
	if opts.MaxBonesPerChunk <= 0 {
		opts.MaxBonesPerChunk = DefaultMaxBonesPerChunk
	}

	start := time.Now()
	corners := cornerDescription(in)
	threshold := opts.Tangent.ComparisonThreshold()
	table, err := overlap.FromDescription(corners, threshold)
	if err != nil {
		return nil, fmt.Errorf("skeletal build: %w", err)
	}

	if err := synthesize(in, corners, table, opts.Tangent, diags, progress); err != nil {
		return nil, fmt.Errorf("skeletal build: %w", err)
	}

	influences := PackInfluences(in.Influences, len(in.Points), in.NumBones, opts.BoneInfluenceLimit, diags)

	vertices := make([]Vertex, len(corners.Wedges))
	for i := range corners.Wedges {
		w := &corners.Wedges[i]
		vertices[i] = Vertex{
			BuildVertex: mesh.BuildVertex{
				Position: corners.Positions[w.PointIndex],
				TangentX: w.TangentX,
				TangentY: w.TangentY,
				TangentZ: w.TangentZ,
				Color:    w.Color,
				UVs:      w.UVs,
			},
			Influences: influences[w.PointIndex],
			Point:      w.PointIndex,
		}
	}

	chunks, err := BuildChunks(in.Faces, vertices, in.NumUVs, threshold, opts.MaxBonesPerChunk, diags)
	if err != nil {
		return nil, fmt.Errorf("skeletal build: %w", err)
	}
	model := BuildModel(chunks)

	logger.Info("skeletal mesh built",
		zap.Int("faces", len(in.Faces)),
		zap.Int("vertices", len(model.Vertices)),
		zap.Int("sections", len(model.Sections)),
		zap.Duration("elapsed", time.Since(start)))
	return model, nil
}

// synthesize fills the corner tangents. The alternate path computes normals
// with the fan fill and tangents through the skinned tangentspace adapter.
func synthesize(in *Input, corners *mesh.Description, table *overlap.Table, opts tangent.Options, diags *diag.List, progress diag.Reporter) error {
	if !opts.UseMikkTSpace {
		return tangent.New(opts, diags, progress).Synthesize(corners, table)
	}

	if err := tangent.ComputeNormals(corners, table, opts, progress); err != nil {
		return err
	}
	if tangent.HasTangents(corners) {
		return nil
	}
	geom := &skinnedGeometry{in: in, corners: corners}
	if err := tangentspace.Generate(geom, tangentspace.Options{IgnoreDegenerates: opts.IgnoreDegenerateTriangles}); err != nil {
		return err
	}
	frames := tangent.PerTriangle(corners, opts.TriangleEpsilon())
	tangent.FailSafeAll(corners, frames, opts.ComparisonThreshold(), diags)
	return nil
}
