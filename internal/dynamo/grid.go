package dynamo

import (
	"fmt"
	"math"
)

const (
	// snapEps is the fraction of a step within which a grid point counts as tf.
	snapEps = 1e-9
	// maxGridSteps bounds a grid when no step limit is configured.
	maxGridSteps = math.MaxInt32
)

// ValidateInterval reports ErrInvalidArgument for non-finite inputs,
// non-positive h or tf < t0.
func ValidateInterval(t0, y0, h, tf float64) error {
	switch {
	case !isFinite(t0) || !isFinite(y0) || !isFinite(h) || !isFinite(tf):
		return fmt.Errorf("%w: non-finite input (t0=%g, y0=%g, h=%g, tf=%g)", ErrInvalidArgument, t0, y0, h, tf)
	case h <= 0:
		return fmt.Errorf("%w: step size must be positive, got %g", ErrInvalidArgument, h)
	case tf < t0:
		return fmt.Errorf("%w: tf (%g) before t0 (%g)", ErrInvalidArgument, tf, t0)
	}
	return nil
}

// GridLen returns the number of samples Grid would produce.
func GridLen(t0, h, tf float64, policy Endpoint) int {
	steps := math.Floor((tf-t0)/h + snapEps)
	n := int(steps) + 1
	last := t0 + steps*h
	if policy != EndpointTruncate && tf-last > snapEps*h {
		n++
	}
	return n
}

// Grid builds the fixed-step time samples t0 + i*h according to policy.
// Points within snapEps*h of tf are set to tf exactly.
func Grid(t0, h, tf float64, policy Endpoint, maxSteps int) ([]float64, error) {
	if err := ValidateInterval(t0, 0, h, tf); err != nil {
		return nil, err
	}
	if policy < EndpointClamp || policy > EndpointOvershoot {
		return nil, fmt.Errorf("%w: unknown endpoint policy %d", ErrInvalidArgument, int(policy))
	}

	span := (tf - t0) / h
	if maxSteps > 0 && span > float64(maxSteps)+1 {
		return nil, fmt.Errorf("%w: %.0f steps exceed limit %d", ErrInvalidArgument, span, maxSteps)
	}
	if span >= maxGridSteps {
		return nil, fmt.Errorf("%w: %.0f steps exceed grid capacity", ErrInvalidArgument, span)
	}
	if mag := math.Max(math.Abs(t0), math.Abs(tf)); t0+h == t0 || h < math.Nextafter(mag, math.Inf(1))-mag {
		return nil, fmt.Errorf("%w: step %g below time resolution near %g", ErrInvalidArgument, h, mag)
	}
	n := GridLen(t0, h, tf, policy)
	if maxSteps > 0 && n-1 > maxSteps {
		return nil, fmt.Errorf("%w: %d steps exceed limit %d", ErrInvalidArgument, n-1, maxSteps)
	}

	t := make([]float64, n)
	for i := range t {
		t[i] = t0 + float64(i)*h
	}
	t[0] = t0

	last := n - 1
	switch {
	case last == 0:
	case math.Abs(t[last]-tf) <= snapEps*h:
		t[last] = tf
	case policy == EndpointClamp && t[last] > tf:
		t[last] = tf
	}
	for i := 1; i < n; i++ {
		if t[i] <= t[i-1] {
			return nil, fmt.Errorf("%w: time stalls at %g with step %g", ErrInvalidArgument, t[i], h)
		}
	}
	return t, nil
}
