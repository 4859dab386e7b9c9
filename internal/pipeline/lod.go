package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"

	"github.com/Faultbox/meshbuild/internal/diag"
	"github.com/Faultbox/meshbuild/internal/logger"
	"github.com/Faultbox/meshbuild/internal/overlap"
	"github.com/Faultbox/meshbuild/pkg/mesh"
)

var (
	ErrReductionFailed = errors.New("mesh reduction produced a corrupt mesh")
	ErrNoReducer       = errors.New("reduction requested without a reducer")
)

// ReductionSettings describes one LOD below the base mesh.
type ReductionSettings struct {
	// PercentTriangles is the fraction of triangles to keep, in (0, 1].
	PercentTriangles float32
	// MaxDeviation bounds the geometric error of the reduced mesh.
	MaxDeviation float32
}

// Reducer simplifies a mesh. It owns src and may modify it. It returns the
// reduced mesh and the deviation it actually reached.
type Reducer interface {
	Reduce(src *mesh.Description, overlaps *overlap.Table, settings ReductionSettings) (*mesh.Description, float32, error)
}

// CloneDescription returns a deep copy of d.
func CloneDescription(d *mesh.Description) (*mesh.Description, error) {
	out := &mesh.Description{}
	if err := copier.CopyWithOption(out, d, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("clone description: %w", err)
	}
	return out, nil
}

// BuildLODs builds the base mesh plus one LOD per entry of settings. Every
// LOD is reduced from its own copy of base, so base itself is left untouched.
// A reduction that fails or returns an invalid mesh aborts the whole build.
func BuildLODs(ctx context.Context, base *mesh.Description, opts Options, reducer Reducer,
	settings []ReductionSettings, workers int, diags *diag.List, progress diag.Reporter) ([]*LOD, error) {
	if len(settings) > 0 && reducer == nil {
		return nil, ErrNoReducer
	}
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("build lods: %w", err)
	}

	descs := make([]*mesh.Description, 0, len(settings)+1)
	lod0, err := CloneDescription(base)
	if err != nil {
		return nil, err
	}
	descs = append(descs, lod0)

	if len(settings) > 0 {
		table, err := overlap.FromDescription(base, opts.Tangent.ComparisonThreshold())
		if err != nil {
			return nil, fmt.Errorf("build lods: %w", err)
		}
		for i, s := range settings {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			lod := i + 1
			src, err := CloneDescription(base)
			if err != nil {
				return nil, err
			}
			reduced, deviation, err := reducer.Reduce(src, table, s)
			if err != nil {
				return nil, fmt.Errorf("%w for LOD %d: %w", ErrReductionFailed, lod, err)
			}
			if reduced == nil || !reduced.IsValid() {
				return nil, fmt.Errorf("%w for LOD %d", ErrReductionFailed, lod)
			}
			logger.Stage("lod", logger.LOD(lod)).Debug("lod reduced",
				zap.Int("triangles", reduced.NumTriangles()),
				zap.Float32("deviation", deviation))
			descs = append(descs, reduced)
		}
	}

	jobs := make([]Job, len(descs))
	for i, d := range descs {
		jobs[i] = Job{Name: fmt.Sprintf("LOD%d", i), Desc: d, Options: opts}
	}
	return BuildAll(ctx, jobs, workers, diags, progress)
}
