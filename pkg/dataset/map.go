package dataset

import (
	"context"
	"fmt"
	"runtime"

	"github.com/SangMin316/dn3/pkg/telemetry"
	"github.com/SangMin316/dn3/pkg/transform"
	"golang.org/x/sync/errgroup"
)

// Map applies t to every sample using up to workers goroutines (GOMAXPROCS
// when workers <= 0). Output order matches input order. The first error
// cancels the remaining work and is returned.
func Map(ctx context.Context, samples []transform.Sample, t transform.Transform, workers int) ([]transform.Sample, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]transform.Sample, len(samples))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range samples {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := t.Apply(samples[i])
			if err != nil {
				telemetry.TransformErrors.Inc()
				return fmt.Errorf("sample %d: %w", i, err)
			}
			telemetry.SamplesTransformed.Inc()
			out[i] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
