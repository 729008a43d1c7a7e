package integrators

import "github.com/san-kum/rkode/internal/dynamo"

// RK4 is the classical four-stage Runge-Kutta method. Local error is
// O(h^5), global error O(h^4).
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(sys dynamo.System, t, y, h float64) (float64, error) {
	halfH := h * 0.5

	d1, err := sys.Derive(t, y)
	if err != nil {
		return 0, err
	}
	k1 := h * d1

	d2, err := sys.Derive(t+halfH, y+k1*0.5)
	if err != nil {
		return 0, err
	}
	k2 := h * d2

	d3, err := sys.Derive(t+halfH, y+k2*0.5)
	if err != nil {
		return 0, err
	}
	k3 := h * d3

	d4, err := sys.Derive(t+h, y+k3)
	if err != nil {
		return 0, err
	}
	k4 := h * d4

	return y + (k1+2*k2+2*k3+k4)/6.0, nil
}
