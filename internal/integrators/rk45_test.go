package integrators

import (
	"context"
	"errors"
	"math"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/rkode/internal/dynamo"
)

func adaptiveConfig(tol float64) dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.Adaptive = true
	cfg.Tolerance = tol
	return cfg
}

func TestRK45Method_Growth(t *testing.T) {
	g := NewWithT(t)

	ts, ys, err := RK45Method(growth, 0, 1, 0.1, 1)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ts).To(HaveLen(len(ys)))
	g.Expect(ts[0]).To(Equal(0.0))
	g.Expect(ys[0]).To(Equal(1.0))
	g.Expect(ts[len(ts)-1]).To(Equal(1.0))
	g.Expect(ys[len(ys)-1]).To(BeNumerically("~", math.E, 1e-5))
}

func TestRK45_Decay(t *testing.T) {
	g := NewWithT(t)

	res, err := dynamo.New(NewRK45(), adaptiveConfig(1e-8)).Run(context.Background(), decay, 0, 1, 0.5, 5)
	g.Expect(err).NotTo(HaveOccurred())

	tl, yl := res.Last()
	g.Expect(tl).To(Equal(5.0))
	g.Expect(yl).To(BeNumerically("~", math.Exp(-5), 1e-7))
	g.Expect(res.Evaluations).To(Equal(7 * (res.StepsTaken + res.Rejected)))
}

func TestRK45_StrictlyIncreasingTimes(t *testing.T) {
	g := NewWithT(t)
	oscillating := dynamo.Func(func(t, y float64) float64 { return math.Cos(t) })

	res, err := dynamo.New(NewRK45(), adaptiveConfig(1e-8)).Run(context.Background(), oscillating, 0, 0, 0.1, 10)
	g.Expect(err).NotTo(HaveOccurred())

	for i := 1; i < res.Len(); i++ {
		g.Expect(res.T[i]).To(BeNumerically(">", res.T[i-1]))
		g.Expect(res.Y[i]).To(BeNumerically("~", math.Sin(res.T[i]), 1e-6))
	}
}

func TestRK45_RejectsOversizedStep(t *testing.T) {
	g := NewWithT(t)
	relax := dynamo.Func(func(t, y float64) float64 { return -50 * (y - math.Cos(t)) })

	res, err := dynamo.New(NewRK45(), adaptiveConfig(1e-6)).Run(context.Background(), relax, 0, 0, 0.5, 2)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.Rejected).To(BeNumerically(">", 0))

	tl, _ := res.Last()
	g.Expect(tl).To(Equal(2.0))
}

func TestRK45_MaxDt(t *testing.T) {
	g := NewWithT(t)
	zero := dynamo.Func(func(t, y float64) float64 { return 0 })

	cfg := adaptiveConfig(1e-6)
	cfg.MaxDt = 0.25
	res, err := dynamo.New(NewRK45(), cfg).Run(context.Background(), zero, 0, 3, 1, 2)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.Len()).To(Equal(9))
	for i := 1; i < res.Len(); i++ {
		g.Expect(res.T[i] - res.T[i-1]).To(BeNumerically("<=", 0.25+1e-15))
		g.Expect(res.Y[i]).To(Equal(3.0))
	}
}

func TestRK45_Singularity(t *testing.T) {
	blowup := dynamo.Func(func(t, y float64) float64 { return y * y })

	_, err := dynamo.New(NewRK45(), adaptiveConfig(1e-6)).Run(context.Background(), blowup, 0, 1, 0.1, 2)
	if !errors.Is(err, dynamo.ErrStepTooSmall) && !errors.Is(err, dynamo.ErrNonFinite) {
		t.Errorf("expected step-size or non-finite failure near t=1, got %v", err)
	}
}

func TestRK45_MaxSteps(t *testing.T) {
	cfg := adaptiveConfig(1e-10)
	cfg.MaxSteps = 3

	_, err := dynamo.New(NewRK45(), cfg).Run(context.Background(), growth, 0, 1, 0.01, 10)
	if !errors.Is(err, dynamo.ErrMaxSteps) {
		t.Errorf("expected ErrMaxSteps, got %v", err)
	}
}

func TestRK45_StepAdaptive(t *testing.T) {
	g := NewWithT(t)
	integrator := NewRK45()

	y, ratio, hNext, err := integrator.StepAdaptive(growth, 0, 1, 0.1, 1e-8)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(y).To(BeNumerically("~", math.Exp(0.1), 1e-8))
	g.Expect(ratio).To(BeNumerically(">", 0))
	g.Expect(hNext).To(BeNumerically(">", 0))

	_, ratioLoose, hLoose, err := integrator.StepAdaptive(growth, 0, 1, 0.1, 1e-2)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ratioLoose).To(BeNumerically("<", ratio))
	g.Expect(hLoose).To(BeNumerically(">=", hNext))
}

func TestRK45_RequiresAdaptiveStepper(t *testing.T) {
	_, err := dynamo.New(NewRK4(), adaptiveConfig(1e-6)).Run(context.Background(), growth, 0, 1, 0.1, 1)
	if !errors.Is(err, dynamo.ErrNotAdaptive) {
		t.Errorf("expected ErrNotAdaptive, got %v", err)
	}

	_, err = dynamo.New(NewRK45(), adaptiveConfig(0)).Run(context.Background(), growth, 0, 1, 0.1, 1)
	if !errors.Is(err, dynamo.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for zero tolerance, got %v", err)
	}
}

func TestRK45_DerivativeError(t *testing.T) {
	errBoom := errors.New("boom")
	f := dynamo.FuncE(func(t, y float64) (float64, error) {
		if t > 0.3 {
			return 0, errBoom
		}
		return y, nil
	})

	res, err := dynamo.New(NewRK45(), adaptiveConfig(1e-6)).Run(context.Background(), f, 0, 1, 0.1, 1)
	if res != nil {
		t.Error("expected nil result")
	}
	if !errors.Is(err, errBoom) || !errors.Is(err, dynamo.ErrDerivative) {
		t.Errorf("expected wrapped derivative error, got %v", err)
	}
}

func TestRK45_VsRK4_Accuracy(t *testing.T) {
	rk4, err := dynamo.New(NewRK4(), dynamo.DefaultConfig()).Run(context.Background(), growth, 0, 1, 0.1, 1)
	if err != nil {
		t.Fatal(err)
	}
	rk45, err := dynamo.New(NewRK45(), adaptiveConfig(1e-9)).Run(context.Background(), growth, 0, 1, 0.1, 1)
	if err != nil {
		t.Fatal(err)
	}

	_, y4 := rk4.Last()
	_, y45 := rk45.Last()
	t.Logf("RK4 final: %.10f (%d evals)", y4, rk4.Evaluations)
	t.Logf("RK45 final: %.10f (%d evals)", y45, rk45.Evaluations)

	if math.Abs(y45-math.E) > math.Abs(y4-math.E) {
		t.Errorf("RK45 at tol 1e-9 less accurate than RK4 at h=0.1: %e vs %e", math.Abs(y45-math.E), math.Abs(y4-math.E))
	}
}
