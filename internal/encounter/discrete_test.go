package encounter

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/airside-data/nearmiss.report/internal/geom"
	"github.com/airside-data/nearmiss.report/internal/stats"
)

func TestDiscreteDescriptorFromReichStandard(t *testing.T) {
	r := StandardReichDescriptor()
	d := DiscreteDescriptorFromReich(r)

	if d.TimeLength != 5 {
		t.Errorf("TimeLength = %g, want 5", d.TimeLength)
	}
	if math.Abs(d.GroundSpeed1-6.096) > 1e-12 {
		t.Errorf("GroundSpeed1 = %g, want 6.096", d.GroundSpeed1)
	}
	if math.Abs(d.GroundSpeed2-4.572) > 1e-12 {
		t.Errorf("GroundSpeed2 = %g, want 4.572 (v - dv)", d.GroundSpeed2)
	}
	if math.Abs(d.LateralSeparation-4.572) > 1e-12 {
		t.Errorf("LateralSeparation = %g, want 4.572", d.LateralSeparation)
	}
	if d.AircraftSize != (geom.Vec3{X: 0.6096, Y: 0.6096, Z: 0.6096}) {
		t.Errorf("AircraftSize = %+v", d.AircraftSize)
	}

	// Width and height match in the standard configuration, so both axes
	// calibrate to the same interval and the min is that interval.
	p := math.Sqrt(0.95)
	wantDt := stats.CaffeinationInterval(p, r.LateralClosureSpeed, 2*r.VolumeHalfWidth)
	if math.Abs(d.SamplingInterval-wantDt) > 1e-12 {
		t.Errorf("SamplingInterval = %g, want %g", d.SamplingInterval, wantDt)
	}
	if d.SamplingInterval < 0.9 || d.SamplingInterval > 1.1 {
		t.Errorf("SamplingInterval = %g, expected near 0.98s for the standard configuration", d.SamplingInterval)
	}

	if d.Sigma.X != 0 {
		t.Errorf("Sigma.X = %g, want 0", d.Sigma.X)
	}
	wantSigmaY := stats.SigmaForContainment(2*r.VolumeHalfWidth, p)
	if math.Abs(d.Sigma.Y-wantSigmaY) > 1e-12 || d.Sigma.Y < 0.9 || d.Sigma.Y > 1.0 {
		t.Errorf("Sigma.Y = %g, want %g (near 0.95)", d.Sigma.Y, wantSigmaY)
	}
	if d.Sigma.Z != d.Sigma.Y {
		t.Errorf("Sigma.Z = %g, want %g for the square volume", d.Sigma.Z, d.Sigma.Y)
	}

	if err := d.Validate(); err != nil {
		t.Errorf("derived descriptor fails validation: %v", err)
	}
}

func TestDiscreteDescriptorValidate(t *testing.T) {
	base := DiscreteDescriptorFromReich(StandardReichDescriptor())

	tests := []struct {
		name   string
		mutate func(*DiscreteDescriptor)
	}{
		{"zero time length", func(d *DiscreteDescriptor) { d.TimeLength = 0 }},
		{"negative time length", func(d *DiscreteDescriptor) { d.TimeLength = -5 }},
		{"zero sampling interval", func(d *DiscreteDescriptor) { d.SamplingInterval = 0 }},
		{"negative separation", func(d *DiscreteDescriptor) { d.LateralSeparation = -1 }},
		{"negative sigma", func(d *DiscreteDescriptor) { d.Sigma.Y = -0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base
			tt.mutate(&d)
			if d.Validate() == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestMakeFlightPathAlongXEvenInterval(t *testing.T) {
	// 5s window sampled at 2 Hz: waypoints at 0, 0.5, ..., 5.0 and the
	// final blend becomes the identity.
	path, err := makeFlightPathAlongX(5, 0.5, 1, geom.Vec3{Y: 1, Z: 1}, rand.NewPCG(1, 1))
	if err != nil {
		t.Fatalf("makeFlightPathAlongX: %v", err)
	}

	wps := path.Waypoints()
	if len(wps) != 11 {
		t.Fatalf("waypoint count = %d, want 11", len(wps))
	}
	for i, wp := range wps {
		want := float64(i) * 0.5
		if wp.T != want {
			t.Errorf("waypoint %d time = %g, want %g", i, wp.T, want)
		}
	}
	if wps[10].T != 5.0 {
		t.Errorf("final time = %g, want exactly 5.0", wps[10].T)
	}
}

func TestMakeFlightPathAlongXUnevenInterval(t *testing.T) {
	// 0.7 does not divide 5; the overshooting waypoint is blended back onto
	// the window boundary.
	path, err := makeFlightPathAlongX(5, 0.7, 0.7, geom.Vec3{}, rand.NewPCG(2, 2))
	if err != nil {
		t.Fatalf("makeFlightPathAlongX: %v", err)
	}

	wps := path.Waypoints()
	last := wps[len(wps)-1]
	if last.T != 5.0 {
		t.Errorf("final time = %v, want exactly 5.0", last.T)
	}
	for i := 1; i < len(wps); i++ {
		if wps[i].T <= wps[i-1].T {
			t.Fatalf("times not strictly ascending at %d: %v", i, wps[i].T)
		}
	}
	// With zero sigma the nominal track is exact: x follows t.
	if math.Abs(last.X-5.0) > 1e-9 {
		t.Errorf("final x = %g, want 5.0 on the nominal track", last.X)
	}
	if wps[0].T != 0 || math.Abs(wps[0].X) > 1e-12 {
		t.Errorf("first waypoint = %+v, want origin start", wps[0])
	}
}

func TestMakeFlightPathTooShort(t *testing.T) {
	// One step covers the whole window: only the t=0 sample would exist.
	if _, err := makeFlightPathAlongX(0, 0.5, 0.5, geom.Vec3{}, rand.NewPCG(1, 1)); err == nil {
		t.Error("zero-length window should error")
	}
	if _, err := makeFlightPathAlongX(5, 0, 1, geom.Vec3{}, rand.NewPCG(1, 1)); err == nil {
		t.Error("zero interval should error")
	}
}

func TestDiscreteParallelPathsStandard(t *testing.T) {
	d := DiscreteDescriptorFromReich(StandardReichDescriptor())
	flights, err := DiscreteParallelPaths(d, rand.NewPCG(11, 11))
	if err != nil {
		t.Fatalf("DiscreteParallelPaths: %v", err)
	}
	if len(flights) != 2 {
		t.Fatalf("flight count = %d, want 2", len(flights))
	}

	laterals := []float64{-d.LateralSeparation / 2, +d.LateralSeparation / 2}
	speeds := []float64{d.GroundSpeed1, d.GroundSpeed2}
	for i, flight := range flights {
		wps := flight.Path.Waypoints()
		if wps[0].T != 0 {
			t.Errorf("flight %d starts at t=%g, want 0", i+1, wps[0].T)
		}
		if wps[len(wps)-1].T != d.TimeLength {
			t.Errorf("flight %d ends at t=%v, want exactly %g", i+1, wps[len(wps)-1].T, d.TimeLength)
		}

		pathLength := d.TimeLength * speeds[i]
		// Sigma.X is zero, so the along-track start/end are the centred
		// nominal track ends.
		if math.Abs(wps[0].X - -pathLength/2) > 1e-9 {
			t.Errorf("flight %d starts at x=%g, want %g", i+1, wps[0].X, -pathLength/2)
		}
		if math.Abs(wps[len(wps)-1].X-pathLength/2) > 1e-9 {
			t.Errorf("flight %d ends at x=%g, want %g", i+1, wps[len(wps)-1].X, pathLength/2)
		}

		// The envelope reproduces the declared operational volume: the
		// sigma derivation and the size computation are mutual inverses.
		if math.Abs(flight.OpIntent.Size().Y-4.2672) > 1e-9 {
			t.Errorf("flight %d envelope width = %g, want 4.2672 (14 ft)", i+1, flight.OpIntent.Size().Y)
		}
		if math.Abs(flight.OpIntent.Size().Z-4.2672) > 1e-9 {
			t.Errorf("flight %d envelope height = %g, want 4.2672", i+1, flight.OpIntent.Size().Z)
		}
		wantXSize := pathLength + d.AircraftSize.X
		if math.Abs(flight.OpIntent.Size().X-wantXSize) > 1e-9 {
			t.Errorf("flight %d envelope length = %g, want %g", i+1, flight.OpIntent.Size().X, wantXSize)
		}
		if math.Abs(flight.OpIntent.Center().Y-laterals[i]) > 1e-9 {
			t.Errorf("flight %d envelope centre y = %g, want %g", i+1, flight.OpIntent.Center().Y, laterals[i])
		}

		// Deviations stay plausible for the derived sigma (~0.95 m): a
		// 10-sigma excursion means the generator wired the wrong scale.
		for _, wp := range wps {
			if math.Abs(wp.Y-laterals[i]) > 10*d.Sigma.Y {
				t.Errorf("flight %d lateral deviation %g implausible for sigma %g", i+1, wp.Y-laterals[i], d.Sigma.Y)
			}
			if math.Abs(wp.Z) > 10*d.Sigma.Z {
				t.Errorf("flight %d vertical deviation %g implausible for sigma %g", i+1, wp.Z, d.Sigma.Z)
			}
		}
	}
}

func TestDiscreteParallelPathsDeterministic(t *testing.T) {
	d := DiscreteDescriptorFromReich(StandardReichDescriptor())

	a, err := DiscreteParallelPaths(d, rand.NewPCG(5, 5))
	if err != nil {
		t.Fatalf("DiscreteParallelPaths: %v", err)
	}
	b, err := DiscreteParallelPaths(d, rand.NewPCG(5, 5))
	if err != nil {
		t.Fatalf("DiscreteParallelPaths: %v", err)
	}
	for i := range a {
		if diff := cmp.Diff(a[i].Path.Waypoints(), b[i].Path.Waypoints()); diff != "" {
			t.Errorf("flight %d waypoints differ under the same seed (-a +b):\n%s", i+1, diff)
		}
	}

	c, err := DiscreteParallelPaths(d, rand.NewPCG(6, 6))
	if err != nil {
		t.Fatalf("DiscreteParallelPaths: %v", err)
	}
	if diff := cmp.Diff(a[0].Path.Waypoints(), c[0].Path.Waypoints()); diff == "" {
		t.Error("different seeds produced identical waypoints")
	}
}
