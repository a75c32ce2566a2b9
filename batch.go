package contour

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/contour/mesh"
)

// Job is one mesh to contour in a batch.
type Job struct {
	Mesh    *mesh.Mesh
	Handler Handler
	Options []Option
}

// GenerateBatch contours independent jobs concurrently, running at most
// limit at a time. A limit of zero or less runs every job at once. The
// first failing job cancels the others and its error is returned.
//
// Each job has its own handler, which is only called from that job's
// goroutine.
func (g *Generator) GenerateBatch(ctx context.Context, jobs []Job, limit int) error {
	eg, egCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		eg.SetLimit(limit)
	}
	for i, job := range jobs {
		eg.Go(func() error {
			if err := g.Generate(egCtx, job.Mesh, job.Handler, job.Options...); err != nil {
				return fmt.Errorf("contour: job %d: %w", i, err)
			}
			return nil
		})
	}
	return eg.Wait()
}
