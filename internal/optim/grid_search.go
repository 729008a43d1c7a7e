// Package optim searches solver settings for the cheapest run that meets
// an error target.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/rkode/internal/experiment"
)

// ErrNoCandidate is returned when no grid point meets the target.
var ErrNoCandidate = errors.New("no candidate meets the error target")

// GridSearch walks the cartesian product of named value ranges.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("grid search: %d names for %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("grid search: empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Cost scores a finished run; lower is better, +Inf rejects it.
type Cost func(*experiment.Outcome) float64

// Candidate is one evaluated grid point.
type Candidate struct {
	Params  map[string]float64
	Cost    float64
	Outcome *experiment.Outcome
	Err     error
}

// Search runs every grid point and returns the cheapest along with all
// evaluated candidates. Points that fail to build or run are recorded with
// their error and skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	build func(params map[string]float64) (*experiment.Experiment, error),
	cost Cost,
) (*Candidate, []Candidate, error) {
	var all []Candidate
	if err := g.searchRecursive(ctx, 0, map[string]float64{}, build, cost, &all); err != nil {
		return nil, all, err
	}

	var best *Candidate
	for i := range all {
		c := &all[i]
		if c.Err != nil || math.IsInf(c.Cost, 1) || math.IsNaN(c.Cost) {
			continue
		}
		if best == nil || c.Cost < best.Cost {
			best = c
		}
	}
	if best == nil {
		return nil, all, ErrNoCandidate
	}
	return best, all, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build func(map[string]float64) (*experiment.Experiment, error),
	cost Cost,
	all *[]Candidate,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		c := Candidate{Params: current, Cost: math.Inf(1)}
		exp, err := build(current)
		if err != nil {
			c.Err = err
			*all = append(*all, c)
			return nil
		}
		out, err := exp.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.Err = err
			*all = append(*all, c)
			return nil
		}
		c.Outcome = out
		c.Cost = cost(out)
		*all = append(*all, c)
		return nil
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[name] = val

		if err := g.searchRecursive(ctx, depth+1, next, build, cost, all); err != nil {
			return err
		}
	}
	return nil
}

// EvaluationsWithin costs a run by its derivative evaluations, rejecting
// runs whose maximum error exceeds target.
func EvaluationsWithin(target float64) Cost {
	return func(out *experiment.Outcome) float64 {
		if out.MaxError > target {
			return math.Inf(1)
		}
		return float64(out.Evaluations)
	}
}
