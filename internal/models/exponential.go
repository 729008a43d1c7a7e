package models

import (
	"math"

	"github.com/san-kum/rkode/internal/dynamo"
)

// Exponential is dy/dt = rate*y.
type Exponential struct {
	name string
	Rate float64
}

func NewGrowth() *Exponential {
	return &Exponential{name: "growth", Rate: 1.0}
}

func NewDecay() *Exponential {
	return &Exponential{name: "decay", Rate: -1.0}
}

func (e *Exponential) Name() string { return e.name }

func (e *Exponential) Derive(t, y float64) (float64, error) {
	return e.Rate * y, nil
}

func (e *Exponential) Exact(t0, y0, t float64) float64 {
	return y0 * math.Exp(e.Rate*(t-t0))
}

func (e *Exponential) GetParams() map[string]float64 {
	return map[string]float64{"rate": e.Rate}
}

func (e *Exponential) SetParam(name string, value float64) error {
	return setParam(map[string]*float64{"rate": &e.Rate}, name, value)
}

var _ dynamo.Configurable = (*Exponential)(nil)
