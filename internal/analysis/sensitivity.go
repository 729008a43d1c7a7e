package analysis

import (
	"context"
	"math"

	"github.com/san-kum/rkode/internal/dynamo"
)

// Sensitivity estimates the rate at which nearby solutions separate,
// (1/(tf-t0)) * ln(|δ(tf)|/δ0), by integrating from y0 and y0+perturbation.
// Positive values mean the problem amplifies initial errors.
func Sensitivity(ctx context.Context, sim *dynamo.Simulator, sys dynamo.System, t0, y0, h, tf, perturbation float64) (float64, error) {
	if tf == t0 || perturbation == 0 {
		return 0, nil
	}

	base, err := sim.Run(ctx, sys, t0, y0, h, tf)
	if err != nil {
		return 0, err
	}
	shifted, err := sim.Run(ctx, sys, t0, y0+perturbation, h, tf)
	if err != nil {
		return 0, err
	}

	_, yb := base.Last()
	_, ys := shifted.Last()
	sep := math.Abs(ys - yb)
	if sep == 0 {
		return math.Inf(-1), nil
	}
	return math.Log(sep/math.Abs(perturbation)) / (tf - t0), nil
}
