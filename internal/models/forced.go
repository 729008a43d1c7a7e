package models

import "math"

// Cooling is Newton's law of cooling, dy/dt = -k*(y - ambient).
type Cooling struct {
	K       float64
	Ambient float64
}

func NewCooling() *Cooling {
	return &Cooling{K: 0.5, Ambient: 20.0}
}

func (c *Cooling) Name() string { return "cooling" }

func (c *Cooling) Derive(t, y float64) (float64, error) {
	return -c.K * (y - c.Ambient), nil
}

func (c *Cooling) Exact(t0, y0, t float64) float64 {
	return c.Ambient + (y0-c.Ambient)*math.Exp(-c.K*(t-t0))
}

func (c *Cooling) GetParams() map[string]float64 {
	return map[string]float64{"k": c.K, "ambient": c.Ambient}
}

func (c *Cooling) SetParam(name string, value float64) error {
	return setParam(map[string]*float64{"k": &c.K, "ambient": &c.Ambient}, name, value)
}

// Oscillating is dy/dt = amplitude*cos(omega*t).
type Oscillating struct {
	Amplitude float64
	Omega     float64
}

func NewOscillating() *Oscillating {
	return &Oscillating{Amplitude: 1.0, Omega: 1.0}
}

func (o *Oscillating) Name() string { return "oscillating" }

func (o *Oscillating) Derive(t, y float64) (float64, error) {
	return o.Amplitude * math.Cos(o.Omega*t), nil
}

// Exact assumes Omega != 0.
func (o *Oscillating) Exact(t0, y0, t float64) float64 {
	return y0 + o.Amplitude/o.Omega*(math.Sin(o.Omega*t)-math.Sin(o.Omega*t0))
}

func (o *Oscillating) GetParams() map[string]float64 {
	return map[string]float64{"amplitude": o.Amplitude, "omega": o.Omega}
}

func (o *Oscillating) SetParam(name string, value float64) error {
	return setParam(map[string]*float64{"amplitude": &o.Amplitude, "omega": &o.Omega}, name, value)
}
