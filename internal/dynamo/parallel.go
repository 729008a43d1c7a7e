package dynamo

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Ensemble integrates one system from many initial values concurrently.
// Each run gets a fresh Stepper from the factory.
type Ensemble struct {
	newStepper func() Stepper
	cfg        Config
	workers    int
	logger     *slog.Logger
}

func NewEnsemble(newStepper func() Stepper, cfg Config, workers int) *Ensemble {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Ensemble{newStepper: newStepper, cfg: cfg, workers: workers}
}

// WithLogger passes logger to every run's Simulator.
func (e *Ensemble) WithLogger(logger *slog.Logger) *Ensemble {
	e.logger = logger
	return e
}

// Run returns one result per entry of y0s, in the same order.
// The first failure cancels the remaining runs.
func (e *Ensemble) Run(ctx context.Context, sys System, t0 float64, y0s []float64, h, tf float64) ([]*Result, error) {
	if e.newStepper == nil {
		return nil, fmt.Errorf("%w: nil stepper factory", ErrInvalidArgument)
	}
	results := make([]*Result, len(y0s))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, y0 := range y0s {
		g.Go(func() error {
			res, err := New(e.newStepper(), e.cfg).WithLogger(e.logger).Run(gctx, sys, t0, y0, h, tf)
			if err != nil {
				return fmt.Errorf("run %d (y0=%g): %w", i, y0, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
