package models

import "math"

// Logistic is dy/dt = r*y*(1 - y/K).
type Logistic struct {
	Rate     float64
	Capacity float64
}

func NewLogistic() *Logistic {
	return &Logistic{Rate: 1.0, Capacity: 1.0}
}

func (l *Logistic) Name() string { return "logistic" }

func (l *Logistic) Derive(t, y float64) (float64, error) {
	return l.Rate * y * (1 - y/l.Capacity), nil
}

func (l *Logistic) Exact(t0, y0, t float64) float64 {
	g := math.Exp(l.Rate * (t - t0))
	return l.Capacity * y0 * g / (l.Capacity + y0*(g-1))
}

func (l *Logistic) GetParams() map[string]float64 {
	return map[string]float64{"rate": l.Rate, "capacity": l.Capacity}
}

func (l *Logistic) SetParam(name string, value float64) error {
	return setParam(map[string]*float64{"rate": &l.Rate, "capacity": &l.Capacity}, name, value)
}

// Blowup is dy/dt = y^2. For y0 > 0 the solution diverges at t0 + 1/y0.
type Blowup struct{}

func NewBlowup() *Blowup {
	return &Blowup{}
}

func (b *Blowup) Name() string { return "blowup" }

func (b *Blowup) Derive(t, y float64) (float64, error) {
	return y * y, nil
}

func (b *Blowup) Exact(t0, y0, t float64) float64 {
	return y0 / (1 - y0*(t-t0))
}
