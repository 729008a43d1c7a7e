package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/rkode/internal/dynamo"
	"github.com/san-kum/rkode/internal/integrators"
	"github.com/san-kum/rkode/internal/models"
)

type Registry struct {
	models      map[string]func() models.Problem
	integrators map[string]func() dynamo.Stepper
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]func() models.Problem),
		integrators: make(map[string]func() dynamo.Stepper),
	}

	r.models["growth"] = func() models.Problem { return models.NewGrowth() }
	r.models["decay"] = func() models.Problem { return models.NewDecay() }
	r.models["constant"] = func() models.Problem { return models.NewConstant() }
	r.models["linear"] = func() models.Problem { return models.NewLinear() }
	r.models["quadratic"] = func() models.Problem { return models.NewQuadratic() }
	r.models["logistic"] = func() models.Problem { return models.NewLogistic() }
	r.models["cooling"] = func() models.Problem { return models.NewCooling() }
	r.models["oscillating"] = func() models.Problem { return models.NewOscillating() }
	r.models["blowup"] = func() models.Problem { return models.NewBlowup() }

	r.integrators["euler"] = func() dynamo.Stepper { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Stepper { return integrators.NewRK4() }
	r.integrators["rk45"] = func() dynamo.Stepper { return integrators.NewRK45() }

	return r
}

func (r *Registry) GetModel(name string) (models.Problem, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s (available: %v)", name, r.ListModels())
	}
	return fn(), nil
}

func (r *Registry) GetIntegrator(name string) (dynamo.Stepper, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, r.ListIntegrators())
	}
	return fn(), nil
}

// IntegratorFactory returns a constructor for name, for use with dynamo.Ensemble.
func (r *Registry) IntegratorFactory(name string) (func() dynamo.Stepper, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, r.ListIntegrators())
	}
	return fn, nil
}

func (r *Registry) ListModels() []string {
	return sortedKeys(r.models)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

// IsAdaptive reports whether the named integrator supports error control.
func (r *Registry) IsAdaptive(name string) bool {
	fn, ok := r.integrators[name]
	if !ok {
		return false
	}
	_, adaptive := fn().(dynamo.AdaptiveStepper)
	return adaptive
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
