package runner

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/boshu2/skeptic/internal/evidence"
)

// RunAll executes every spec with bounded parallelism and returns evidence
// in spec order. A case that fails to produce evidence gets its error in
// the parallel errs slice instead of aborting the batch: the remaining
// cases still deserve their day in court.
func RunAll(ctx context.Context, tc Toolchain, specs []Spec, parallelism int) ([]evidence.Evidence, []error) {
	if len(specs) == 0 {
		return nil, nil
	}
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	results := make([]evidence.Evidence, len(specs))
	errs := make([]error, len(specs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			ev, err := Run(ctx, tc, spec)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = ev
			return nil
		})
	}

	// Workers never return errors; Wait only propagates ctx cancellation.
	_ = g.Wait()

	return results, errs
}
