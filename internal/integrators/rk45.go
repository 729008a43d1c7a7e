package integrators

import (
	"math"

	"github.com/san-kum/rkode/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
const (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	// 5th minus 4th order weights
	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// DefaultTolerance is used by Step, which has no tolerance argument.
const DefaultTolerance = 1e-6

type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

// Step takes one 5th-order step of exactly h, ignoring the error estimate.
func (r *RK45) Step(sys dynamo.System, t, y, h float64) (float64, error) {
	yNew, _, _, err := r.StepAdaptive(sys, t, y, h, DefaultTolerance)
	return yNew, err
}

// StepAdaptive returns the 5th-order solution, the ratio of the embedded
// error estimate to tol*(1+max(|y|,|yNew|)) and the step size to try next.
func (r *RK45) StepAdaptive(sys dynamo.System, t, y, h, tol float64) (float64, float64, float64, error) {
	k1, err := sys.Derive(t, y)
	if err != nil {
		return 0, 0, 0, err
	}
	k2, err := sys.Derive(t+a2*h, y+h*b21*k1)
	if err != nil {
		return 0, 0, 0, err
	}
	k3, err := sys.Derive(t+a3*h, y+h*(b31*k1+b32*k2))
	if err != nil {
		return 0, 0, 0, err
	}
	k4, err := sys.Derive(t+a4*h, y+h*(b41*k1+b42*k2+b43*k3))
	if err != nil {
		return 0, 0, 0, err
	}
	k5, err := sys.Derive(t+a5*h, y+h*(b51*k1+b52*k2+b53*k3+b54*k4))
	if err != nil {
		return 0, 0, 0, err
	}
	k6, err := sys.Derive(t+h, y+h*(b61*k1+b62*k2+b63*k3+b64*k4+b65*k5))
	if err != nil {
		return 0, 0, 0, err
	}

	yNew := y + h*(c1*k1+c3*k3+c4*k4+c5*k5+c6*k6)

	k7, err := sys.Derive(t+h, yNew)
	if err != nil {
		return 0, 0, 0, err
	}

	errEst := math.Abs(h * (dc1*k1 + dc3*k3 + dc4*k4 + dc5*k5 + dc6*k6 + dc7*k7))
	scale := tol * (1 + math.Max(math.Abs(y), math.Abs(yNew)))
	ratio := errEst / scale

	return yNew, ratio, h * r.nextScale(ratio), nil
}

func (r *RK45) nextScale(ratio float64) float64 {
	switch {
	case math.IsNaN(ratio):
		return r.minScale
	case ratio > 1:
		return math.Max(r.minScale, r.safety*math.Pow(ratio, -0.25))
	case ratio > 0:
		return math.Min(r.maxScale, r.safety*math.Pow(ratio, -0.2))
	default:
		return r.maxScale
	}
}
