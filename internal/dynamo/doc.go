// Package dynamo provides core primitives for scalar initial-value problems.
//
// The package defines the fundamental interfaces and types for numerical
// solution of first-order ordinary differential equations dy/dt = f(t, y):
//
//   - [System]: right-hand side f(t, y), with [Func] and [FuncE] adapters
//   - [Stepper]: one-step integrator interface
//   - [AdaptiveStepper]: stepper with embedded error estimate
//   - [Trajectory]: sampled solution (t, y)
//   - [Simulator]: drives a stepper over [t0, tf]
//
// # Example
//
//	f := dynamo.Func(func(t, y float64) float64 { return -y })
//	sim := dynamo.New(integrators.NewRK4(), dynamo.DefaultConfig())
//	result, err := sim.Run(ctx, f, 0, 1, 0.01, 5)
//
// # Endpoint
//
// Fixed-step runs sample t0 + i*h. The [Endpoint] policy decides what
// happens when tf is not a grid point; the default [EndpointClamp] adds
// one shorter final step so the trajectory ends exactly at tf.
//
// # Thread Safety
//
// Steppers in this module keep no per-call state, so a Simulator may be
// shared. For many initial values use [Ensemble].
package dynamo
