package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/rkode/internal/dynamo"
)

// GlobalError returns the largest and the final absolute deviation of
// traj from exact.
func GlobalError(traj dynamo.Trajectory, exact func(t float64) float64) (maxErr, finalErr float64) {
	for i := range traj.T {
		e := math.Abs(traj.Y[i] - exact(traj.T[i]))
		if e > maxErr || math.IsNaN(e) {
			maxErr = e
		}
		finalErr = e
	}
	return maxErr, finalErr
}

// ConvergencePoint is the error of one run at step size H.
type ConvergencePoint struct {
	H           float64
	Steps       int
	Evaluations int
	MaxError    float64
	FinalError  float64
	// Order is the observed order against the previous point, NaN for the first.
	Order float64
}

// Convergence runs sim at each step size in hs and estimates the observed
// order of accuracy from consecutive final errors.
func Convergence(ctx context.Context, sim *dynamo.Simulator, sys dynamo.System, exact func(t float64) float64, t0, y0, tf float64, hs []float64) ([]ConvergencePoint, error) {
	points := make([]ConvergencePoint, 0, len(hs))

	for i, h := range hs {
		res, err := sim.Run(ctx, sys, t0, y0, h, tf)
		if err != nil {
			return nil, fmt.Errorf("h=%g: %w", h, err)
		}

		maxErr, finalErr := GlobalError(res.Trajectory, exact)
		p := ConvergencePoint{
			H:           h,
			Steps:       res.StepsTaken,
			Evaluations: res.Evaluations,
			MaxError:    maxErr,
			FinalError:  finalErr,
			Order:       math.NaN(),
		}
		if i > 0 {
			p.Order = ObservedOrder(points[i-1].H, points[i-1].FinalError, h, finalErr)
		}
		points = append(points, p)
	}

	return points, nil
}

// ObservedOrder is log(e1/e2)/log(h1/h2). Zero errors give NaN.
func ObservedOrder(h1, e1, h2, e2 float64) float64 {
	if e1 <= 0 || e2 <= 0 || h1 == h2 {
		return math.NaN()
	}
	return math.Log(e1/e2) / math.Log(h1/h2)
}

// Halvings returns n step sizes starting at h, each half the previous.
func Halvings(h float64, n int) []float64 {
	hs := make([]float64, n)
	for i := range hs {
		hs[i] = h
		h /= 2
	}
	return hs
}
