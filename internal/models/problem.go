// Package models provides scalar initial-value problems with known
// closed-form solutions, used to measure integrator error.
package models

import (
	"fmt"

	"github.com/san-kum/rkode/internal/dynamo"
)

// Problem is a System whose exact solution through (t0, y0) is known.
type Problem interface {
	dynamo.System
	Name() string
	Exact(t0, y0, t float64) float64
}

func setParam(params map[string]*float64, name string, value float64) error {
	p, ok := params[name]
	if !ok {
		return fmt.Errorf("%w: unknown parameter %q", dynamo.ErrInvalidArgument, name)
	}
	*p = value
	return nil
}
