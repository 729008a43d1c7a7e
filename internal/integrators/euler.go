package integrators

import "github.com/san-kum/rkode/internal/dynamo"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, t, y, h float64) (float64, error) {
	dy, err := sys.Derive(t, y)
	if err != nil {
		return 0, err
	}
	return y + h*dy, nil
}
