// Package analysis measures how well an integrator tracks a known solution.
//
//   - [GlobalError]: largest and final deviation from the exact solution
//   - [Convergence]: error over a sequence of step sizes with observed order
//   - [Sensitivity]: separation rate of two nearby solutions
//   - [SlopeField]: text direction field with the trajectory drawn over it
//
// # Order of accuracy
//
// Halving h should divide the error of a method of order p by 2^p:
//
//	points, err := analysis.Convergence(ctx, sim, problem, exact, 0, 1, 1, analysis.Halvings(0.1, 5))
//	// points[len(points)-1].Order is close to 4 for RK4
package analysis
