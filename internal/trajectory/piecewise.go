package trajectory

import (
	"fmt"
	"sort"
)

// PiecewiseLinear is a one-dimensional piecewise-linear function described
// by parallel slices of strictly ascending knot times and their values.
// Evaluation clamps to the first/last value outside the knot range.
type PiecewiseLinear struct {
	ts []float64
	vs []float64
}

// NewPiecewiseLinear builds a piecewise-linear table from knot times and
// values. It requires at least two knots, equal slice lengths and strictly
// ascending times. The inputs are copied.
func NewPiecewiseLinear(ts, vs []float64) (PiecewiseLinear, error) {
	if len(ts) != len(vs) {
		return PiecewiseLinear{}, fmt.Errorf("knot count mismatch: %d times, %d values", len(ts), len(vs))
	}
	if len(ts) < 2 {
		return PiecewiseLinear{}, fmt.Errorf("need at least 2 knots, got %d", len(ts))
	}
	for i := 1; i < len(ts); i++ {
		if ts[i] <= ts[i-1] {
			return PiecewiseLinear{}, fmt.Errorf("knot times not strictly ascending at index %d (%g after %g)", i, ts[i], ts[i-1])
		}
	}
	return PiecewiseLinear{
		ts: append([]float64(nil), ts...),
		vs: append([]float64(nil), vs...),
	}, nil
}

// Evaluate returns the function value at t: the first knot value before the
// first knot, the last value after the last knot, and linear interpolation
// between the bracketing knots otherwise.
func (f PiecewiseLinear) Evaluate(t float64) float64 {
	return lerpClamped(f.ts, f.vs, t)
}

// Knots returns copies of the knot times and values.
func (f PiecewiseLinear) Knots() (ts, vs []float64) {
	return append([]float64(nil), f.ts...), append([]float64(nil), f.vs...)
}

// lerpClamped interpolates vs over the ascending times ts at t, holding the
// end values outside the range.
func lerpClamped(ts, vs []float64, t float64) float64 {
	n := len(ts)
	if t <= ts[0] {
		return vs[0]
	}
	if t >= ts[n-1] {
		return vs[n-1]
	}
	// Index of the first knot time >= t; past the equality check the
	// bracket is [i-1, i].
	i := sort.SearchFloat64s(ts, t)
	if ts[i] == t {
		return vs[i]
	}
	frac := (t - ts[i-1]) / (ts[i] - ts[i-1])
	return vs[i-1] + frac*(vs[i]-vs[i-1])
}
