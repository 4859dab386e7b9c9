package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/meshbuild/internal/diag"
	"github.com/Faultbox/meshbuild/internal/logger"
	"github.com/Faultbox/meshbuild/pkg/mesh"
)

// Job is one independent static build.
type Job struct {
	Name    string
	Desc    *mesh.Description
	Options Options
}

// BuildAll runs jobs concurrently on at most workers goroutines; zero or less
// means one per CPU. Results keep the order of jobs. The first failure
// cancels the jobs that have not started yet.
func BuildAll(ctx context.Context, jobs []Job, workers int, diags *diag.List, progress diag.Reporter) ([]*LOD, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	out := make([]*LOD, len(jobs))
	var done atomic.Int32

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range jobs {
		job := jobs[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			log := logger.Stage("batch", logger.Mesh(job.Name))
			lod, err := Build(job.Desc, job.Options, diags, progress)
			if err != nil {
				log.Debug("job failed", zap.Error(err))
				return fmt.Errorf("%s: %w", job.Name, err)
			}
			log.Debug("job done", zap.Int("vertices", len(lod.Vertices)))
			out[i] = lod
			if progress != nil {
				progress.Report(diag.Progress{Stage: "batch", Current: int(done.Add(1)), Total: len(jobs)})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
