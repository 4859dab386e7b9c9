// Package config handles build option loading and management.
package config

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var (
	ErrInfluenceLimit = errors.New("bone influence limit must be between 1 and 8")
	ErrBoneLimit      = errors.New("max bones per chunk must be at least 1")
	ErrBonePalette    = errors.New("max bones per chunk must hold the influences of one triangle")
	ErrBuildScale     = errors.New("build scale components must be non-zero")
	ErrWorkers        = errors.New("workers must not be negative")
	ErrLogLevel       = errors.New("unknown log level")
)

// Config holds all build settings.
type Config struct {
	Build    BuildConfig    `yaml:"build" toml:"build"`
	Skeletal SkeletalConfig `yaml:"skeletal" toml:"skeletal"`
	Buffers  BuffersConfig  `yaml:"buffers" toml:"buffers"`
	Pipeline PipelineConfig `yaml:"pipeline" toml:"pipeline"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// BuildConfig holds the options of the static mesh build.
type BuildConfig struct {
	RemoveDegenerates            bool       `yaml:"remove_degenerates" toml:"remove_degenerates"`
	UseAlternateTangentAlgorithm bool       `yaml:"use_alternate_tangent_algorithm" toml:"use_alternate_tangent_algorithm"`
	BlendOverlappingNormals      bool       `yaml:"blend_overlapping_normals" toml:"blend_overlapping_normals"`
	HighPrecisionTangents        bool       `yaml:"high_precision_tangents" toml:"high_precision_tangents"`
	BuildScale                   [3]float32 `yaml:"build_scale,flow" toml:"build_scale"`
	Allow32BitIndices            bool       `yaml:"allow_32bit_indices" toml:"allow_32bit_indices"`
}

// SkeletalConfig holds skinning limits.
type SkeletalConfig struct {
	BoneInfluenceLimit int `yaml:"bone_influence_limit" toml:"bone_influence_limit"`
	MaxBonesPerChunk   int `yaml:"max_bones_per_chunk" toml:"max_bones_per_chunk"`
}

// BuffersConfig selects the optional buffers.
type BuffersConfig struct {
	CacheOptimize            bool `yaml:"cache_optimize" toml:"cache_optimize"`
	BuildDepthOnly           bool `yaml:"build_depth_only" toml:"build_depth_only"`
	BuildReversedIndexBuffer bool `yaml:"build_reversed_index_buffer" toml:"build_reversed_index_buffer"`
	BuildAdjacencyBuffer     bool `yaml:"build_adjacency_buffer" toml:"build_adjacency_buffer"`
	BuildWireframe           bool `yaml:"build_wireframe" toml:"build_wireframe"`
}

// PipelineConfig holds scheduling settings.
type PipelineConfig struct {
	// Workers bounds concurrent builds; 0 means one per CPU.
	Workers int `yaml:"workers" toml:"workers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Build: BuildConfig{
			RemoveDegenerates:            true,
			UseAlternateTangentAlgorithm: false,
			BlendOverlappingNormals:      false,
			HighPrecisionTangents:        false,
			BuildScale:                   [3]float32{1, 1, 1},
			Allow32BitIndices:            true,
		},
		Skeletal: SkeletalConfig{
			BoneInfluenceLimit: 8,
			MaxBonesPerChunk:   75,
		},
		Buffers: BuffersConfig{
			CacheOptimize:  true,
			BuildDepthOnly: true,
		},
		Pipeline: PipelineConfig{
			Workers: 0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every out-of-range setting.
func (c *Config) Validate() error {
	var err error
	if l := c.Skeletal.BoneInfluenceLimit; l < 1 || l > 8 {
		err = multierr.Append(err, fmt.Errorf("%w: %d", ErrInfluenceLimit, l))
	}
	if c.Skeletal.MaxBonesPerChunk < 1 {
		err = multierr.Append(err, fmt.Errorf("%w: %d", ErrBoneLimit, c.Skeletal.MaxBonesPerChunk))
	} else if need := 3 * c.Skeletal.BoneInfluenceLimit; c.Skeletal.MaxBonesPerChunk < need {
		err = multierr.Append(err, fmt.Errorf("%w: %d < %d", ErrBonePalette, c.Skeletal.MaxBonesPerChunk, need))
	}
	for _, s := range c.Build.BuildScale {
		if s == 0 {
			err = multierr.Append(err, fmt.Errorf("%w: %v", ErrBuildScale, c.Build.BuildScale))
			break
		}
	}
	if c.Pipeline.Workers < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: %d", ErrWorkers, c.Pipeline.Workers))
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error", "silent":
	default:
		err = multierr.Append(err, fmt.Errorf("%w: %q", ErrLogLevel, c.Logging.Level))
	}
	return err
}
