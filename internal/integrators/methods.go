package integrators

import (
	"context"

	"github.com/san-kum/rkode/internal/dynamo"
)

// RK4Method integrates dy/dt = f(t, y) from (t0, y0) to tf with fixed step h
// and returns the sampled times and values. The last sample is exactly tf.
func RK4Method(f dynamo.Func, t0, y0, h, tf float64) ([]float64, []float64, error) {
	res, err := dynamo.New(NewRK4(), dynamo.DefaultConfig()).Run(context.Background(), f, t0, y0, h, tf)
	if err != nil {
		return nil, nil, err
	}
	return res.T, res.Y, nil
}

// RK45Method integrates dy/dt = f(t, y) with Dormand-Prince step control.
// h is the initial step; samples are not uniformly spaced.
func RK45Method(f dynamo.Func, t0, y0, h, tf float64) ([]float64, []float64, error) {
	cfg := dynamo.DefaultConfig()
	cfg.Adaptive = true
	res, err := dynamo.New(NewRK45(), cfg).Run(context.Background(), f, t0, y0, h, tf)
	if err != nil {
		return nil, nil, err
	}
	return res.T, res.Y, nil
}
