package encounter

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/airside-data/nearmiss.report/internal/geom"
	"github.com/airside-data/nearmiss.report/internal/stats"
	"github.com/airside-data/nearmiss.report/internal/trajectory"
)

// DiscreteDescriptor parameterises the discrete sampling model: both
// aircraft fly straight along x while their deviations are re-drawn from
// zero-mean Gaussians every SamplingInterval seconds.
type DiscreteDescriptor struct {
	// TimeLength is the sampled window, seconds.
	TimeLength float64
	// GroundSpeed1 and GroundSpeed2 are the along-track speeds.
	GroundSpeed1 float64
	GroundSpeed2 float64
	// LateralSeparation between the two nominal routes.
	LateralSeparation float64
	// AircraftSize holds the bounding-box dimensions of both aircraft.
	AircraftSize geom.Vec3
	// SamplingInterval is the deviation re-sampling cadence (dt).
	SamplingInterval float64
	// Sigma holds the per-axis deviation scales.
	Sigma geom.Vec3
}

// discreteWindowSeconds is the sampled window used when deriving a discrete
// descriptor from a Reich configuration; long enough to show several
// re-samples, short enough to inspect.
const discreteWindowSeconds = 5

// DiscreteDescriptorFromReich derives the discrete-model equivalent of a
// Reich configuration: sigmas sized so each operation stays inside its
// declared volume with the per-axis containment, and a sampling interval
// calibrated so bound exits happen at the configured closure speeds.
func DiscreteDescriptorFromReich(r ReichDescriptor) DiscreteDescriptor {
	p := perAxisContainment
	volumeWidth := 2 * r.VolumeHalfWidth
	volumeHeight := 2 * r.VolumeHalfHeight
	dt := math.Min(
		stats.CaffeinationInterval(p, r.LateralClosureSpeed, volumeWidth),
		stats.CaffeinationInterval(p, r.VerticalClosureSpeed, volumeHeight),
	)
	return DiscreteDescriptor{
		TimeLength:        discreteWindowSeconds,
		GroundSpeed1:      r.GroundSpeed,
		GroundSpeed2:      r.GroundSpeed - r.RelativeSpeed,
		LateralSeparation: r.LateralSeparation,
		AircraftSize:      geom.Vec3{X: r.AircraftLength, Y: r.AircraftWingspan, Z: r.AircraftHeight},
		SamplingInterval:  dt,
		Sigma: geom.Vec3{
			X: 0,
			Y: stats.SigmaForContainment(volumeWidth, p),
			Z: stats.SigmaForContainment(volumeHeight, p),
		},
	}
}

// Validate checks the fields the generator steps or divides by.
func (d DiscreteDescriptor) Validate() error {
	if d.TimeLength <= 0 {
		return fmt.Errorf("time length must be positive, got %g", d.TimeLength)
	}
	if d.SamplingInterval <= 0 {
		return fmt.Errorf("sampling interval must be positive, got %g", d.SamplingInterval)
	}
	if d.LateralSeparation < 0 {
		return fmt.Errorf("lateral separation must be non-negative, got %g", d.LateralSeparation)
	}
	if d.Sigma.X < 0 || d.Sigma.Y < 0 || d.Sigma.Z < 0 {
		return fmt.Errorf("sigma components must be non-negative, got %+v", d.Sigma)
	}
	return nil
}

// DiscreteParallelPaths generates one encounter under the discrete sampling
// model: flight 1 at lateral -LateralSeparation/2, flight 2 at
// +LateralSeparation/2, sharing src with flight 1 drawn first.
func DiscreteParallelPaths(d DiscreteDescriptor, src rand.Source) ([]trajectory.Flight, error) {
	flights := make([]trajectory.Flight, 0, 2)
	for i, route := range []struct {
		speed   float64
		lateral float64
	}{
		{d.GroundSpeed1, -d.LateralSeparation / 2},
		{d.GroundSpeed2, +d.LateralSeparation / 2},
	} {
		pathLength := d.TimeLength * route.speed
		dx := route.speed * d.SamplingInterval
		path, err := makeFlightPathAlongX(d.TimeLength, d.SamplingInterval, dx, d.Sigma, src)
		if err != nil {
			return nil, fmt.Errorf("flight %d: %w", i+1, err)
		}
		flights = append(flights, makeFlight(path, pathLength, route.lateral, d.Sigma, perAxisContainment, d.AircraftSize))
	}
	return flights, nil
}

// makeFlightPathAlongX samples a path along +x over [0, timeLength]. Each
// step advances the nominal position by (dt, dx) and draws fresh lateral,
// vertical and along-track deviations (in that order). The loop overshoots
// the window by up to one step; the last two waypoints are then blended so
// the final waypoint lands exactly on timeLength.
func makeFlightPathAlongX(timeLength, dt, dx float64, sigma geom.Vec3, src rand.Source) (*trajectory.FlightPath, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("sampling interval must be positive, got %g", dt)
	}
	t := -dt
	x := -dx
	var wps []trajectory.Waypoint
	for t < timeLength {
		t += dt
		x += dx
		y := gauss(src, sigma.Y)
		z := gauss(src, sigma.Z)
		xDev := gauss(src, sigma.X)
		wps = append(wps, trajectory.Waypoint{T: t, X: x + xDev, Y: y, Z: z})
	}
	n := len(wps)
	if n < 2 {
		return nil, fmt.Errorf("window %gs with interval %gs yields %d waypoints, need at least 2", timeLength, dt, n)
	}
	// Pull the overshooting waypoint back onto the window boundary.
	f := (timeLength - wps[n-2].T) / dt
	wps[n-1] = trajectory.Waypoint{
		T: timeLength,
		X: f*wps[n-1].X + (1-f)*wps[n-2].X,
		Y: f*wps[n-1].Y + (1-f)*wps[n-2].Y,
		Z: f*wps[n-1].Z + (1-f)*wps[n-2].Z,
	}
	return trajectory.NewFlightPath(wps)
}

// makeFlight centres a sampled path on x=0, moves it to its route's lateral
// position and attaches the operational-intent envelope: the along-track
// extent padded by the along-track deviation scale and aircraft length, and
// the cross-section sized from the sigmas at the per-axis containment.
func makeFlight(path *trajectory.FlightPath, pathLength, lateralPosition float64, sigma geom.Vec3, p float64, aircraftSize geom.Vec3) trajectory.Flight {
	centered := path.Offset(0, -pathLength/2, lateralPosition, 0)
	opIntentSize := geom.Vec3{
		X: pathLength + 2*4*sigma.X + aircraftSize.X,
		Y: stats.VolumeSizeForContainment(sigma.Y, p),
		Z: stats.VolumeSizeForContainment(sigma.Z, p),
	}
	return trajectory.Flight{
		Path:     centered,
		OpIntent: geom.BoxAround(geom.Vec3{Y: lateralPosition}, opIntentSize),
		Size:     aircraftSize,
	}
}
