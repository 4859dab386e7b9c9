package config

import "flag"

// Flags holds the command-line overrides registered on one subcommand's
// FlagSet. Only flags set explicitly override the file.
type Flags struct {
	fs *flag.FlagSet

	config            *string
	debug             *bool
	logFile           *string
	workers           *int
	scale             *float64
	mikk              *bool
	removeDegenerates *bool
	blendOverlapping  *bool
	highPrecision     *bool
	influenceLimit    *int
	maxBones          *int
	cacheOptimize     *bool
	reversed          *bool
	adjacency         *bool
	wireframe         *bool
}

// RegisterFlags adds the config flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		fs:                fs,
		config:            fs.String("config", "", "Path to config file (.yaml or .toml)"),
		debug:             fs.Bool("debug", false, "Enable debug logging"),
		logFile:           fs.String("log-file", "", "Write logs to this file"),
		workers:           fs.Int("workers", 0, "Concurrent builds (0 = one per CPU)"),
		scale:             fs.Float64("scale", 1, "Uniform build scale"),
		mikk:              fs.Bool("mikk", false, "Use the alternate (MikkTSpace) tangent algorithm"),
		removeDegenerates: fs.Bool("remove-degenerates", true, "Drop degenerate triangles"),
		blendOverlapping:  fs.Bool("blend-overlapping-normals", false, "Blend normals of overlapping corners"),
		highPrecision:     fs.Bool("high-precision-tangents", false, "Store 16-bit tangents"),
		influenceLimit:    fs.Int("bone-influence-limit", 8, "Max bone influences per vertex"),
		maxBones:          fs.Int("max-bones", 75, "Max bones per skinned chunk"),
		cacheOptimize:     fs.Bool("cache-optimize", true, "Reorder buffers for the vertex cache"),
		reversed:          fs.Bool("reversed", false, "Build reversed index buffers"),
		adjacency:         fs.Bool("adjacency", false, "Build the adjacency index buffer"),
		wireframe:         fs.Bool("wireframe", false, "Build the wireframe index buffer"),
	}
}

// ConfigPath returns the explicit config path if provided via --config flag.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return *f.config
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "debug":
			if *f.debug {
				cfg.Logging.Level = "debug"
			}
		case "log-file":
			cfg.Logging.LogFile = *f.logFile
		case "workers":
			cfg.Pipeline.Workers = *f.workers
		case "scale":
			s := float32(*f.scale)
			cfg.Build.BuildScale = [3]float32{s, s, s}
		case "mikk":
			cfg.Build.UseAlternateTangentAlgorithm = *f.mikk
		case "remove-degenerates":
			cfg.Build.RemoveDegenerates = *f.removeDegenerates
		case "blend-overlapping-normals":
			cfg.Build.BlendOverlappingNormals = *f.blendOverlapping
		case "high-precision-tangents":
			cfg.Build.HighPrecisionTangents = *f.highPrecision
		case "bone-influence-limit":
			cfg.Skeletal.BoneInfluenceLimit = *f.influenceLimit
		case "max-bones":
			cfg.Skeletal.MaxBonesPerChunk = *f.maxBones
		case "cache-optimize":
			cfg.Buffers.CacheOptimize = *f.cacheOptimize
		case "reversed":
			cfg.Buffers.BuildReversedIndexBuffer = *f.reversed
		case "adjacency":
			cfg.Buffers.BuildAdjacencyBuffer = *f.adjacency
		case "wireframe":
			cfg.Buffers.BuildWireframe = *f.wireframe
		}
	})
}
