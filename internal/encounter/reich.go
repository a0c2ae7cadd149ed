package encounter

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/airside-data/nearmiss.report/internal/geom"
	"github.com/airside-data/nearmiss.report/internal/stats"
	"github.com/airside-data/nearmiss.report/internal/trajectory"
	"github.com/airside-data/nearmiss.report/internal/units"
)

// ReichDescriptor parameterises a Reich-style lateral near-miss encounter.
// All values are SI (metres, seconds, metres/second).
type ReichDescriptor struct {
	// LateralSeparation is the minimum planned lateral separation between
	// the two routes (S_y).
	LateralSeparation float64
	// AircraftLength, AircraftWingspan and AircraftHeight are the aircraft
	// bounding-box dimensions (lambda_x, lambda_y, lambda_z).
	AircraftLength   float64
	AircraftWingspan float64
	AircraftHeight   float64
	// VolumeHalfWidth and VolumeHalfHeight are half the lateral/vertical
	// cross-section of each operation's declared volume (w, h).
	VolumeHalfWidth  float64
	VolumeHalfHeight float64
	// FlightDuration is the nominal duration of each operation (t).
	FlightDuration float64
	// GroundSpeed is aircraft 1's along-track speed (v); aircraft 2 flies at
	// GroundSpeed - RelativeSpeed.
	GroundSpeed float64
	// RelativeSpeed is the average relative along-track speed of the pair
	// (delta_v). Zero means the pair never overlaps longitudinally and is
	// rejected by the generator.
	RelativeSpeed float64
	// LateralClosureSpeed is the average relative lateral speed at the
	// moment lateral separation is lost (YS_y).
	LateralClosureSpeed float64
	// VerticalClosureSpeed is the average relative vertical speed between
	// the aircraft (delta_z).
	VerticalClosureSpeed float64
}

// StandardReichDescriptor returns the standard encounter configuration. The
// quantities are quoted in feet and converted once here.
func StandardReichDescriptor() ReichDescriptor {
	return ReichDescriptor{
		LateralSeparation:    units.FeetToMeters(15),
		AircraftLength:       units.FeetToMeters(2),
		AircraftWingspan:     units.FeetToMeters(2),
		AircraftHeight:       units.FeetToMeters(2),
		VolumeHalfWidth:      units.FeetToMeters(7),
		VolumeHalfHeight:     units.FeetToMeters(7),
		FlightDuration:       3600,
		GroundSpeed:          units.FeetToMeters(20),
		RelativeSpeed:        units.FeetToMeters(5),
		LateralClosureSpeed:  units.FeetToMeters(7.75),
		VerticalClosureSpeed: units.FeetToMeters(7.75),
	}
}

// Validate checks the descriptor fields a generator divides by or sizes
// volumes with. A zero RelativeSpeed passes validation; the Reich generator
// rejects it with ErrUnsupportedConfiguration instead.
func (d ReichDescriptor) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"lateral separation", d.LateralSeparation},
		{"aircraft length", d.AircraftLength},
		{"aircraft wingspan", d.AircraftWingspan},
		{"aircraft height", d.AircraftHeight},
		{"volume half-width", d.VolumeHalfWidth},
		{"volume half-height", d.VolumeHalfHeight},
		{"flight duration", d.FlightDuration},
		{"lateral closure speed", d.LateralClosureSpeed},
		{"vertical closure speed", d.VerticalClosureSpeed},
	}
	for _, c := range checks {
		if c.value <= 0 {
			return fmt.Errorf("%s must be positive, got %g", c.name, c.value)
		}
	}
	return nil
}

const (
	// minViewWindow is the shortest viewing window, seconds. Windows sized
	// from the overlap durations alone can be fractions of a second.
	minViewWindow = 3.0
	// farTime anchors the outer knots of a deviation path well outside any
	// viewing window.
	farTime = 1e9
)

// ReichParallelPaths generates one lateral near-miss encounter between two
// aircraft on parallel routes separated by d.LateralSeparation. A single
// lateral-overlap event is placed inside a viewing window sized from the
// pairwise overlap durations; each aircraft follows a piecewise-linear
// lateral deviation path through the event, a constant along-track speed and
// a constant vertical offset.
//
// The two flights share src; draws happen in a fixed order, so a seeded
// source reproduces the encounter.
func ReichParallelPaths(d ReichDescriptor, src rand.Source) ([]trajectory.Flight, error) {
	if d.RelativeSpeed == 0 {
		return nil, fmt.Errorf("%w: zero relative along-track speed (a same-speed pair never overlaps longitudinally)", ErrUnsupportedConfiguration)
	}

	// Time for the pair to traverse each other's extent on each axis.
	dtOverlapX := 2 * d.AircraftLength / d.RelativeSpeed
	dtOverlapY := 2 * d.AircraftWingspan / d.LateralClosureSpeed
	dtOverlapZ := 2 * d.AircraftHeight / d.VerticalClosureSpeed
	dtView := math.Max(1.2*math.Max(dtOverlapX, math.Max(dtOverlapY, dtOverlapZ)), minViewWindow)

	// Nominal along-track positions, crossing x=0 at the window midpoint.
	v2 := d.GroundSpeed - d.RelativeSpeed
	x1a, x1b := d.GroundSpeed*-dtView/2, d.GroundSpeed*dtView/2
	x2a, x2b := v2*-dtView/2, v2*dtView/2
	fx1, err := trajectory.NewPiecewiseLinear([]float64{0, dtView}, []float64{x1a, x1b})
	if err != nil {
		return nil, fmt.Errorf("along-track table for flight 1: %w", err)
	}
	fx2, err := trajectory.NewPiecewiseLinear([]float64{0, dtView}, []float64{x2a, x2b})
	if err != nil {
		return nil, fmt.Errorf("along-track table for flight 2: %w", err)
	}

	nominal1 := -d.LateralSeparation / 2
	nominal2 := +d.LateralSeparation / 2

	// Lateral geometry. The overlap position is drawn around the route
	// midline; both aircraft pass through it, one from each side, at a
	// lateral speed drawn against the closure-speed scale.
	sigmaY := stats.SigmaForContainment(d.VolumeHalfWidth, perAxisContainment)
	yOverlap := gauss(src, sigmaY/math.Sqrt2)
	overlapInterval := dtOverlapY * d.LateralSeparation / d.AircraftWingspan
	tOverlapY := uniform(src, -0.5, 0.5) * overlapInterval
	v1y := math.Sqrt(math.Mod(uniform(src, 0, 1), 0.5) * d.LateralClosureSpeed * d.LateralClosureSpeed)
	v2y := -math.Sqrt(math.Mod(uniform(src, 0, 1), 0.5) * d.LateralClosureSpeed * d.LateralClosureSpeed)

	// Vertical: one draw per flight, held constant across the window.
	sigmaZ := stats.SigmaForContainment(d.VolumeHalfHeight, perAxisContainment)
	z1 := gauss(src, sigmaZ)
	z2 := gauss(src, sigmaZ)

	fy1, err := deviationPath(nominal1, v1y, tOverlapY, yOverlap)
	if err != nil {
		return nil, fmt.Errorf("deviation table for flight 1: %w", err)
	}
	fy2, err := deviationPath(nominal2, v2y, tOverlapY, yOverlap)
	if err != nil {
		return nil, fmt.Errorf("deviation table for flight 2: %w", err)
	}

	dt1y := math.Abs((yOverlap - nominal1) / v1y)
	dt2y := math.Abs((yOverlap - nominal2) / v2y)

	flight1, err := reichFlight(d, fx1, fy1, z1, keyTimes(dtView, tOverlapY, dt1y), x1a, x1b, nominal1)
	if err != nil {
		return nil, fmt.Errorf("flight 1: %w", err)
	}
	flight2, err := reichFlight(d, fx2, fy2, z2, keyTimes(dtView, tOverlapY, dt2y), x2a, x2b, nominal2)
	if err != nil {
		return nil, fmt.Errorf("flight 2: %w", err)
	}
	return []trajectory.Flight{flight1, flight2}, nil
}

// reichFlight assembles one flight from its axis tables, constant vertical
// offset and key times.
func reichFlight(d ReichDescriptor, fx, fy trajectory.PiecewiseLinear, z float64, times []float64, xa, xb, nominalY float64) (trajectory.Flight, error) {
	wps := make([]trajectory.Waypoint, len(times))
	for i, t := range times {
		wps[i] = trajectory.Waypoint{T: t, X: fx.Evaluate(t), Y: fy.Evaluate(t), Z: z}
	}
	path, err := trajectory.NewFlightPath(wps)
	if err != nil {
		return trajectory.Flight{}, err
	}
	return trajectory.Flight{
		Path: path,
		OpIntent: geom.Box{
			Lower: geom.Vec3{X: xa - d.AircraftLength, Y: nominalY - d.VolumeHalfWidth, Z: -d.VolumeHalfHeight},
			Upper: geom.Vec3{X: xb + d.AircraftLength, Y: nominalY + d.VolumeHalfWidth, Z: +d.VolumeHalfHeight},
		},
		Size: geom.Vec3{X: d.AircraftLength, Y: d.AircraftWingspan, Z: d.AircraftHeight},
	}, nil
}

// deviationPath builds the lateral deviation table for one flight: nominal
// far in the past, a linear transition to the overlap position at the
// overlap instant, and a linear return to nominal. The transition takes
// |overlap - nominal| / |speed| on each side.
func deviationPath(nominal, speed, tOverlap, overlap float64) (trajectory.PiecewiseLinear, error) {
	dtTransition := math.Abs((overlap - nominal) / speed)
	far := math.Max(farTime, math.Abs(tOverlap)+2*dtTransition)
	switch {
	case math.IsInf(dtTransition, 0) || math.IsNaN(dtTransition):
		// Zero-speed draw: the transition never completes inside any finite
		// window, which pins the flight at the overlap position.
		return trajectory.NewPiecewiseLinear(
			[]float64{-farTime, farTime},
			[]float64{overlap, overlap},
		)
	case dtTransition == 0:
		return trajectory.NewPiecewiseLinear(
			[]float64{-far, tOverlap, far},
			[]float64{nominal, overlap, nominal},
		)
	}
	return trajectory.NewPiecewiseLinear(
		[]float64{-far, tOverlap - dtTransition, tOverlap, tOverlap + dtTransition, far},
		[]float64{nominal, nominal, overlap, nominal, nominal},
	)
}

// keyTimes returns the waypoint times for one flight: the window endpoints
// plus whichever of the overlap instant and transition endpoints fall
// strictly inside the window, ascending with duplicates collapsed.
func keyTimes(dtView, tOverlap, dtTransition float64) []float64 {
	times := []float64{0, dtView}
	for _, t := range []float64{tOverlap, tOverlap - dtTransition, tOverlap + dtTransition} {
		if t > 0 && t < dtView {
			times = append(times, t)
		}
	}
	sort.Float64s(times)
	return dedupeSorted(times)
}
