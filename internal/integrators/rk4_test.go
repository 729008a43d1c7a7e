package integrators

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/rkode/internal/dynamo"
)

var (
	growth = dynamo.Func(func(t, y float64) float64 { return y })
	decay  = dynamo.Func(func(t, y float64) float64 { return -y })
)

func TestRK4Method_Growth(t *testing.T) {
	ts, ys, err := RK4Method(growth, 0, 1, 0.1, 1)
	if err != nil {
		t.Fatalf("RK4Method: %v", err)
	}

	if len(ts) != 11 || len(ys) != 11 {
		t.Fatalf("expected 11 samples, got t=%d y=%d", len(ts), len(ys))
	}
	if ts[0] != 0 || ys[0] != 1 {
		t.Errorf("initial point = (%v, %v), want (0, 1)", ts[0], ys[0])
	}
	if ts[10] != 1 {
		t.Errorf("last time = %.17g, want 1", ts[10])
	}
	if e := math.Abs(ys[10] - math.E); e > 1e-4 {
		t.Errorf("error too large: got %.8f, expected %.8f (err %e)", ys[10], math.E, e)
	}
}

func TestRK4Method_Decay(t *testing.T) {
	ts, ys, err := RK4Method(decay, 0, 1, 0.01, 5)
	if err != nil {
		t.Fatalf("RK4Method: %v", err)
	}

	last := len(ys) - 1
	if ts[last] != 5 {
		t.Errorf("last time = %v, want 5", ts[last])
	}
	for i := 1; i < len(ys); i++ {
		if ys[i] >= ys[i-1] {
			t.Fatalf("solution not decaying at %d: %v >= %v", i, ys[i], ys[i-1])
		}
	}
	if e := math.Abs(ys[last] - math.Exp(-5)); e > 1e-6 {
		t.Errorf("error too large: got %.10f, expected %.10f", ys[last], math.Exp(-5))
	}
}

func TestRK4_OrderOfAccuracy(t *testing.T) {
	finalError := func(h float64) float64 {
		_, ys, err := RK4Method(growth, 0, 1, h, 1)
		if err != nil {
			t.Fatalf("h=%g: %v", h, err)
		}
		return math.Abs(ys[len(ys)-1] - math.E)
	}

	e1 := finalError(0.1)
	e2 := finalError(0.05)
	e3 := finalError(0.025)

	for _, ratio := range []float64{e1 / e2, e2 / e3} {
		if ratio < 12 || ratio > 20 {
			t.Errorf("halving h reduced error by %.2f, expected ~16", ratio)
		}
	}
}

func TestRK4_ExactForConstantAndLinear(t *testing.T) {
	zero := dynamo.Func(func(t, y float64) float64 { return 0 })
	one := dynamo.Func(func(t, y float64) float64 { return 1 })

	tests := []struct {
		name   string
		h, tf  float64
		t0, y0 float64
	}{
		{"unit interval", 0.1, 1, 0, 2},
		{"off grid", 0.3, 2, 0.5, -1},
		{"long", 0.01, 10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ys, err := RK4Method(zero, tt.t0, tt.y0, tt.h, tt.tf)
			if err != nil {
				t.Fatal(err)
			}
			for i := range ys {
				if ys[i] != tt.y0 {
					t.Fatalf("constant: y[%d] = %v, want %v", i, ys[i], tt.y0)
				}
			}

			ts, ys, err := RK4Method(one, tt.t0, tt.y0, tt.h, tt.tf)
			if err != nil {
				t.Fatal(err)
			}
			for i := range ys {
				want := tt.y0 + ts[i] - tt.t0
				if math.Abs(ys[i]-want) > 1e-12*math.Max(1, math.Abs(want)) {
					t.Fatalf("linear: y[%d] = %.17g, want %.17g", i, ys[i], want)
				}
			}
		})
	}
}

func TestRK4_EvaluationCount(t *testing.T) {
	calls := 0
	f := dynamo.Func(func(t, y float64) float64 {
		calls++
		return y
	})

	res, err := dynamo.New(NewRK4(), dynamo.DefaultConfig()).Run(context.Background(), f, 0, 1, 0.1, 1)
	if err != nil {
		t.Fatal(err)
	}

	want := 4 * (res.Len() - 1)
	if calls != want {
		t.Errorf("f called %d times, want %d", calls, want)
	}
	if res.Evaluations != want {
		t.Errorf("Evaluations = %d, want %d", res.Evaluations, want)
	}
	if res.StepsTaken != res.Len()-1 {
		t.Errorf("StepsTaken = %d, want %d", res.StepsTaken, res.Len()-1)
	}
}

func TestRK4_DerivativeErrorPropagates(t *testing.T) {
	errDomain := errors.New("log of negative number")
	f := dynamo.FuncE(func(t, y float64) (float64, error) {
		if t >= 0.45 {
			return 0, errDomain
		}
		return y, nil
	})

	res, err := dynamo.New(NewRK4(), dynamo.DefaultConfig()).Run(context.Background(), f, 0, 1, 0.1, 1)
	if res != nil {
		t.Error("expected no partial trajectory on failure")
	}
	if !errors.Is(err, errDomain) {
		t.Errorf("expected wrapped domain error, got %v", err)
	}
	if !errors.Is(err, dynamo.ErrDerivative) {
		t.Errorf("expected ErrDerivative, got %v", err)
	}

	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected *SimulationError, got %T", err)
	}
	if simErr.Step != 4 {
		t.Errorf("failing step = %d, want 4", simErr.Step)
	}
}

func TestRK4_NonFinite(t *testing.T) {
	f := dynamo.Func(func(t, y float64) float64 { return math.Log(y - 2) })

	_, _, err := RK4Method(f, 0, 1, 0.1, 1)
	if !errors.Is(err, dynamo.ErrNonFinite) {
		t.Errorf("expected ErrNonFinite, got %v", err)
	}

	cfg := dynamo.DefaultConfig()
	cfg.ValidateState = false
	res, err := dynamo.New(NewRK4(), cfg).Run(context.Background(), f, 0, 1, 0.1, 1)
	if err != nil {
		t.Fatalf("unchecked run failed: %v", err)
	}
	if _, y := res.Last(); !math.IsNaN(y) {
		t.Errorf("expected NaN to propagate, got %v", y)
	}
}

func TestRK4Method_InvalidArguments(t *testing.T) {
	tests := []struct {
		name          string
		t0, y0, h, tf float64
	}{
		{"zero step", 0, 1, 0, 1},
		{"negative step", 0, 1, -0.1, 1},
		{"reversed", 1, 1, 0.1, 0},
		{"nan y0", 0, math.NaN(), 0.1, 1},
		{"inf tf", 0, 1, 0.1, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, ys, err := RK4Method(growth, tt.t0, tt.y0, tt.h, tt.tf)
			if !errors.Is(err, dynamo.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
			if ts != nil || ys != nil {
				t.Error("expected nil slices on error")
			}
		})
	}
}

func TestRK4_EndpointPolicies(t *testing.T) {
	tests := []struct {
		policy   dynamo.Endpoint
		wantLen  int
		wantLast float64
	}{
		{dynamo.EndpointClamp, 5, 1.0},
		{dynamo.EndpointTruncate, 4, 0.9},
		{dynamo.EndpointOvershoot, 5, 1.2},
	}

	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			cfg := dynamo.DefaultConfig()
			cfg.Endpoint = tt.policy
			res, err := dynamo.New(NewRK4(), cfg).Run(context.Background(), growth, 0, 1, 0.3, 1)
			if err != nil {
				t.Fatal(err)
			}
			if res.Len() != tt.wantLen {
				t.Fatalf("len = %d, want %d", res.Len(), tt.wantLen)
			}
			tl, yl := res.Last()
			if math.Abs(tl-tt.wantLast) > 1e-12 {
				t.Errorf("last t = %v, want %v", tl, tt.wantLast)
			}
			if math.Abs(yl-math.Exp(tl)) > 1e-3 {
				t.Errorf("y(%v) = %v, want %v", tl, yl, math.Exp(tl))
			}
		})
	}
}

func TestEuler_FirstOrder(t *testing.T) {
	sim := dynamo.New(NewEuler(), dynamo.DefaultConfig())
	finalError := func(h float64) float64 {
		res, err := sim.Run(context.Background(), growth, 0, 1, h, 1)
		if err != nil {
			t.Fatal(err)
		}
		_, y := res.Last()
		return math.Abs(y - math.E)
	}

	ratio := finalError(0.01) / finalError(0.005)
	if ratio < 1.8 || ratio > 2.2 {
		t.Errorf("halving h reduced euler error by %.3f, expected ~2", ratio)
	}
}

func TestRun_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := dynamo.New(NewRK4(), dynamo.DefaultConfig()).Run(ctx, growth, 0, 1, 0.1, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
