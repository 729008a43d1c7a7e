package models

// Polynomial is dy/dt = slope + curvature*2t, whose solution is a
// polynomial of degree two. RK4 reproduces it to rounding error.
type Polynomial struct {
	name      string
	Slope     float64
	Curvature float64
}

func NewConstant() *Polynomial {
	return &Polynomial{name: "constant"}
}

func NewLinear() *Polynomial {
	return &Polynomial{name: "linear", Slope: 1.0}
}

func NewQuadratic() *Polynomial {
	return &Polynomial{name: "quadratic", Curvature: 1.0}
}

func (p *Polynomial) Name() string { return p.name }

func (p *Polynomial) Derive(t, y float64) (float64, error) {
	return p.Slope + 2*p.Curvature*t, nil
}

func (p *Polynomial) Exact(t0, y0, t float64) float64 {
	return y0 + p.Slope*(t-t0) + p.Curvature*(t*t-t0*t0)
}

func (p *Polynomial) GetParams() map[string]float64 {
	return map[string]float64{"slope": p.Slope, "curvature": p.Curvature}
}

func (p *Polynomial) SetParam(name string, value float64) error {
	return setParam(map[string]*float64{"slope": &p.Slope, "curvature": &p.Curvature}, name, value)
}
