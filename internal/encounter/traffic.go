package encounter

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/airside-data/nearmiss.report/internal/geom"
	"github.com/airside-data/nearmiss.report/internal/stats"
	"github.com/airside-data/nearmiss.report/internal/trajectory"
	"github.com/airside-data/nearmiss.report/internal/units"
)

// TrafficDescriptor parameterises the standalone discrete sampling variant:
// two aircraft on fixed-length routes, with the deviation scales and the
// re-sampling cadence derived from the operational-volume dimensions rather
// than from a Reich configuration.
type TrafficDescriptor struct {
	// PathLength is the along-track extent of each route, metres.
	PathLength float64
	// GroundSpeed is the along-track speed of both aircraft.
	GroundSpeed float64
	// LateralSeparation between the two nominal routes.
	LateralSeparation float64
	// AircraftSize holds the bounding-box dimensions of both aircraft.
	AircraftSize geom.Vec3
	// VolumeWidth and VolumeHeight are the full cross-section dimensions of
	// each operation's declared volume.
	VolumeWidth  float64
	VolumeHeight float64
	// Containment is the joint probability of staying inside the volume
	// over the two deviation axes; each axis gets its square root.
	Containment float64
	// LateralExitSpeed and VerticalExitSpeed are the average speeds at
	// which a deviation exits the volume, used to calibrate the re-sampling
	// cadence.
	LateralExitSpeed  float64
	VerticalExitSpeed float64
}

// DefaultTrafficDescriptor mirrors the standard Reich configuration's
// magnitudes: a 100 ft route flown at 20 ft/s inside a 14 ft square volume.
func DefaultTrafficDescriptor() TrafficDescriptor {
	return TrafficDescriptor{
		PathLength:        units.FeetToMeters(100),
		GroundSpeed:       units.FeetToMeters(20),
		LateralSeparation: units.FeetToMeters(15),
		AircraftSize: geom.Vec3{
			X: units.FeetToMeters(2),
			Y: units.FeetToMeters(2),
			Z: units.FeetToMeters(2),
		},
		VolumeWidth:       units.FeetToMeters(14),
		VolumeHeight:      units.FeetToMeters(14),
		Containment:       jointContainment,
		LateralExitSpeed:  units.FeetToMeters(7.75),
		VerticalExitSpeed: units.FeetToMeters(7.75),
	}
}

// Validate checks the fields the generator steps or divides by.
func (d TrafficDescriptor) Validate() error {
	if d.PathLength <= 0 {
		return fmt.Errorf("path length must be positive, got %g", d.PathLength)
	}
	if d.GroundSpeed <= 0 {
		return fmt.Errorf("ground speed must be positive, got %g", d.GroundSpeed)
	}
	if d.LateralSeparation < 0 {
		return fmt.Errorf("lateral separation must be non-negative, got %g", d.LateralSeparation)
	}
	if d.VolumeWidth <= 0 || d.VolumeHeight <= 0 {
		return fmt.Errorf("volume dimensions must be positive, got %g x %g", d.VolumeWidth, d.VolumeHeight)
	}
	if d.Containment <= 0 || d.Containment >= 1 {
		return fmt.Errorf("containment must be in (0, 1), got %g", d.Containment)
	}
	if d.LateralExitSpeed <= 0 || d.VerticalExitSpeed <= 0 {
		return fmt.Errorf("exit speeds must be positive, got %g / %g", d.LateralExitSpeed, d.VerticalExitSpeed)
	}
	return nil
}

// SameDirectionTraffic generates one encounter with both aircraft flying +x
// on parallel routes.
func SameDirectionTraffic(d TrafficDescriptor, src rand.Source) ([]trajectory.Flight, error) {
	return trafficPaths(d, src, false)
}

// OppositeDirectionTraffic generates one encounter with the aircraft flying
// toward each other: flight 2's path is replaced wholesale by its mirror
// image in x. The mirrored path stays centred on x=0, so flight 2's
// envelope is unchanged.
func OppositeDirectionTraffic(d TrafficDescriptor, src rand.Source) ([]trajectory.Flight, error) {
	return trafficPaths(d, src, true)
}

func trafficPaths(d TrafficDescriptor, src rand.Source, mirrorSecond bool) ([]trajectory.Flight, error) {
	p := math.Sqrt(d.Containment)
	sigma := geom.Vec3{
		Y: stats.SigmaForContainment(d.VolumeWidth, p),
		Z: stats.SigmaForContainment(d.VolumeHeight, p),
	}
	dt := math.Min(
		stats.CaffeinationInterval(p, d.LateralExitSpeed, d.VolumeWidth),
		stats.CaffeinationInterval(p, d.VerticalExitSpeed, d.VolumeHeight),
	)
	dx := d.GroundSpeed * dt

	flights := make([]trajectory.Flight, 0, 2)
	for i, lateral := range []float64{-d.LateralSeparation / 2, +d.LateralSeparation / 2} {
		path, err := makeFlightPathAlongXByDistance(d.PathLength, dx, dt, sigma, src)
		if err != nil {
			return nil, fmt.Errorf("flight %d: %w", i+1, err)
		}
		flight := makeFlight(path, d.PathLength, lateral, sigma, p, d.AircraftSize)
		if mirrorSecond && i == 1 {
			flight.Path = flight.Path.Scale(1, -1, 1, 1)
		}
		flights = append(flights, flight)
	}
	return flights, nil
}

// makeFlightPathAlongXByDistance samples a path spanning [0, pathLength] in
// x rather than a fixed time window: the loop advances by nominal distance
// and the tail blend pulls the overshooting waypoint back onto the route
// end. Deviations are drawn per step in the same order as the time-bounded
// generator.
func makeFlightPathAlongXByDistance(pathLength, dx, dt float64, sigma geom.Vec3, src rand.Source) (*trajectory.FlightPath, error) {
	if dx <= 0 {
		return nil, fmt.Errorf("along-track step must be positive, got %g", dx)
	}
	t := -dt
	x := -dx
	var wps []trajectory.Waypoint
	var nominal []float64
	for x < pathLength {
		t += dt
		x += dx
		y := gauss(src, sigma.Y)
		z := gauss(src, sigma.Z)
		xDev := gauss(src, sigma.X)
		wps = append(wps, trajectory.Waypoint{T: t, X: x + xDev, Y: y, Z: z})
		nominal = append(nominal, x)
	}
	n := len(wps)
	if n < 2 {
		return nil, fmt.Errorf("route %gm with step %gm yields %d waypoints, need at least 2", pathLength, dx, n)
	}
	f := (pathLength - nominal[n-2]) / dx
	wps[n-1] = trajectory.Waypoint{
		T: f*wps[n-1].T + (1-f)*wps[n-2].T,
		X: pathLength,
		Y: f*wps[n-1].Y + (1-f)*wps[n-2].Y,
		Z: f*wps[n-1].Z + (1-f)*wps[n-2].Z,
	}
	return trajectory.NewFlightPath(wps)
}
