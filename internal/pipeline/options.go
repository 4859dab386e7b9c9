package pipeline

import (
	"github.com/Faultbox/meshbuild/internal/adjacency"
	"github.com/Faultbox/meshbuild/internal/config"
	"github.com/Faultbox/meshbuild/internal/skeletal"
	"github.com/Faultbox/meshbuild/internal/tangent"
	"github.com/Faultbox/meshbuild/pkg/math"
)

// Options controls a static mesh build.
type Options struct {
	Tangent               tangent.Options
	BuildScale            math.Vec3
	HighPrecisionTangents bool
	Allow32BitIndices     bool

	CacheOptimize  bool
	BuildDepthOnly bool
	BuildReversed  bool
	BuildAdjacency bool
	BuildWireframe bool

	// Adjacency builds the adjacency buffer; nil selects adjacency.PNAEN.
	Adjacency adjacency.Builder
}

// DefaultOptions mirrors config.Default.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

// OptionsFromConfig maps the loaded configuration onto build options.
func OptionsFromConfig(cfg *config.Config) Options {
	b := cfg.Build
	return Options{
		Tangent: tangent.Options{
			BlendOverlappingNormals:   b.BlendOverlappingNormals,
			IgnoreDegenerateTriangles: b.RemoveDegenerates,
			UseMikkTSpace:             b.UseAlternateTangentAlgorithm,
		},
		BuildScale:            math.Vec3{X: b.BuildScale[0], Y: b.BuildScale[1], Z: b.BuildScale[2]},
		HighPrecisionTangents: b.HighPrecisionTangents,
		Allow32BitIndices:     b.Allow32BitIndices,
		CacheOptimize:         cfg.Buffers.CacheOptimize,
		BuildDepthOnly:        cfg.Buffers.BuildDepthOnly,
		BuildReversed:         cfg.Buffers.BuildReversedIndexBuffer,
		BuildAdjacency:        cfg.Buffers.BuildAdjacencyBuffer,
		BuildWireframe:        cfg.Buffers.BuildWireframe,
	}
}

// SkeletalOptionsFromConfig maps the loaded configuration onto skeletal
// build options.
func SkeletalOptionsFromConfig(cfg *config.Config) skeletal.Options {
	return skeletal.Options{
		Tangent:            OptionsFromConfig(cfg).Tangent,
		BoneInfluenceLimit: cfg.Skeletal.BoneInfluenceLimit,
		MaxBonesPerChunk:   cfg.Skeletal.MaxBonesPerChunk,
	}
}
