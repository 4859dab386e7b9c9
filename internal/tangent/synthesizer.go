package tangent

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshbuild/internal/diag"
	"github.com/Faultbox/meshbuild/internal/overlap"
	"github.com/Faultbox/meshbuild/pkg/math"
	"github.com/Faultbox/meshbuild/pkg/mesh"
)

var (
	ErrTableSize = errors.New("overlap table does not match wedge count")
)

// Options controls tangent synthesis.
type Options struct {
	// BlendOverlappingNormals blends normals across corners that only share
	// a position, not a point index.
	BlendOverlappingNormals bool
	// IgnoreDegenerateTriangles compares positions with ThreshPointsAreSame
	// instead of exactly.
	IgnoreDegenerateTriangles bool
	// UseMikkTSpace selects MikkSynthesizer.
	UseMikkTSpace bool
}

// ComparisonThreshold is the position tolerance implied by the options.
func (o Options) ComparisonThreshold() float32 {
	if o.IgnoreDegenerateTriangles {
		return math.ThreshPointsAreSame
	}
	return 0
}

// TriangleEpsilon is the tolerance handed to PerTriangle.
func (o Options) TriangleEpsilon() float32 {
	if o.IgnoreDegenerateTriangles {
		return math.SmallNumber
	}
	return FloatMin
}

// Synthesizer fills in the tangent frames of every wedge in place. Wedges
// whose three axes are already set are left untouched.
type Synthesizer interface {
	Synthesize(d *mesh.Description, table *overlap.Table) error
	Name() string
}

// New returns the synthesizer selected by opts.
func New(opts Options, diags *diag.List, progress diag.Reporter) Synthesizer {
	if opts.UseMikkTSpace {
		return &MikkSynthesizer{Options: opts, Diagnostics: diags, Progress: progress}
	}
	return &FanSynthesizer{Options: opts, Diagnostics: diags, Progress: progress}
}

func checkInput(d *mesh.Description, table *overlap.Table) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if table.Len() != len(d.Wedges) {
		return fmt.Errorf("%w: %d corners, %d wedges", ErrTableSize, table.Len(), len(d.Wedges))
	}
	return nil
}
