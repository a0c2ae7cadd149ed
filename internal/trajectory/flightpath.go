// Package trajectory defines the path value types produced by the encounter
// generators: piecewise-linear scalar tables, four-column flight paths over
// (t, x, y, z), and the Flight aggregate pairing a path with its
// operational-intent envelope.
//
// Conventions: t is seconds from the start of the encounter window, x is the
// longitudinal axis, y lateral, z vertical, all in metres in the local
// encounter frame.
package trajectory

import (
	"fmt"

	"github.com/airside-data/nearmiss.report/internal/geom"
)

// Waypoint is one sampled point of a flight path.
type Waypoint struct {
	T float64
	X float64
	Y float64
	Z float64
}

// FlightPath is an immutable piecewise-linear path through a sequence of
// waypoints with strictly ascending times. Transformations return new paths.
type FlightPath struct {
	ts []float64
	xs []float64
	ys []float64
	zs []float64
}

// NewFlightPath builds a path from at least two waypoints with strictly
// ascending times. The input slice is copied.
func NewFlightPath(wps []Waypoint) (*FlightPath, error) {
	if len(wps) < 2 {
		return nil, fmt.Errorf("need at least 2 waypoints, got %d", len(wps))
	}
	p := &FlightPath{
		ts: make([]float64, len(wps)),
		xs: make([]float64, len(wps)),
		ys: make([]float64, len(wps)),
		zs: make([]float64, len(wps)),
	}
	for i, wp := range wps {
		if i > 0 && wp.T <= wps[i-1].T {
			return nil, fmt.Errorf("waypoint times not strictly ascending at index %d (%g after %g)", i, wp.T, wps[i-1].T)
		}
		p.ts[i] = wp.T
		p.xs[i] = wp.X
		p.ys[i] = wp.Y
		p.zs[i] = wp.Z
	}
	return p, nil
}

// LocationAt returns the interpolated position at time t. Before the first
// waypoint it returns the first location, after the last waypoint the last
// location, and linear interpolation between the bracketing waypoints
// otherwise.
func (p *FlightPath) LocationAt(t float64) geom.Vec3 {
	return geom.Vec3{
		X: lerpClamped(p.ts, p.xs, t),
		Y: lerpClamped(p.ts, p.ys, t),
		Z: lerpClamped(p.ts, p.zs, t),
	}
}

// Offset returns a new path with the given deltas added to every waypoint.
// Offsets compose additively: p.Offset(a...).Offset(b...) equals
// p.Offset(a+b...).
func (p *FlightPath) Offset(dt, dx, dy, dz float64) *FlightPath {
	q := p.clone()
	for i := range q.ts {
		q.ts[i] += dt
		q.xs[i] += dx
		q.ys[i] += dy
		q.zs[i] += dz
	}
	return q
}

// Scale returns a new path with each column multiplied by the corresponding
// factor. Scales compose multiplicatively, and a Scale after an Offset also
// scales the offset. If st is negative the waypoint order is reversed so the
// result keeps ascending times.
func (p *FlightPath) Scale(st, sx, sy, sz float64) *FlightPath {
	q := p.clone()
	for i := range q.ts {
		q.ts[i] *= st
		q.xs[i] *= sx
		q.ys[i] *= sy
		q.zs[i] *= sz
	}
	if st < 0 {
		reverse(q.ts)
		reverse(q.xs)
		reverse(q.ys)
		reverse(q.zs)
	}
	return q
}

// NumWaypoints returns the number of waypoints in the path.
func (p *FlightPath) NumWaypoints() int {
	return len(p.ts)
}

// Start returns the first waypoint.
func (p *FlightPath) Start() Waypoint {
	return p.at(0)
}

// End returns the last waypoint.
func (p *FlightPath) End() Waypoint {
	return p.at(len(p.ts) - 1)
}

// Duration returns the time span covered by the path.
func (p *FlightPath) Duration() float64 {
	return p.ts[len(p.ts)-1] - p.ts[0]
}

// Waypoints returns a copy of the path's waypoints.
func (p *FlightPath) Waypoints() []Waypoint {
	wps := make([]Waypoint, len(p.ts))
	for i := range wps {
		wps[i] = p.at(i)
	}
	return wps
}

func (p *FlightPath) at(i int) Waypoint {
	return Waypoint{T: p.ts[i], X: p.xs[i], Y: p.ys[i], Z: p.zs[i]}
}

func (p *FlightPath) clone() *FlightPath {
	return &FlightPath{
		ts: append([]float64(nil), p.ts...),
		xs: append([]float64(nil), p.xs...),
		ys: append([]float64(nil), p.ys...),
		zs: append([]float64(nil), p.zs...),
	}
}

func reverse(s []float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
