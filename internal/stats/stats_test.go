package stats

import (
	"math"
	"testing"
)

func TestSigmaForContainmentAnchors(t *testing.T) {
	// Two-sided standard normal quantiles: 95% of mass lies within
	// ±1.959964 sigma, so a unit volume at 0.95 containment needs
	// sigma = 1 / (2 * 1.959964).
	tests := []struct {
		name        string
		volumeSize  float64
		pContain    float64
		expected    float64
		description string
	}{
		{"unit volume p=0.95", 1.0, 0.95, 1 / (2 * 1.9599639845), "z=1.96"},
		{"unit volume p=0.80", 1.0, 0.80, 1 / (2 * 1.2815515655), "z=1.28"},
		{"unit volume p=0.90", 1.0, 0.90, 1 / (2 * 1.6448536270), "z=1.64"},
		{"unit volume p=0.99", 1.0, 0.99, 1 / (2 * 2.5758293035), "z=2.58"},
		{"volume scales linearly", 4.2672, 0.95, 4.2672 / (2 * 1.9599639845), "14 ft volume"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SigmaForContainment(tt.volumeSize, tt.pContain)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("SigmaForContainment(%g, %g) = %.10f, want %.10f (%s)",
					tt.volumeSize, tt.pContain, got, tt.expected, tt.description)
			}
		})
	}
}

func TestSigmaVolumeInverse(t *testing.T) {
	for _, p := range []float64{0.5, 0.8, 0.9, 0.95, 0.99, 0.999} {
		for _, volume := range []float64{0.1, 1, 4.2672, 100} {
			sigma := SigmaForContainment(volume, p)
			back := VolumeSizeForContainment(sigma, p)
			if math.Abs(back-volume) > 1e-9*volume {
				t.Errorf("p=%g volume=%g: round trip gave %g", p, volume, back)
			}
		}
	}
}

func TestContainmentOfOneUnguarded(t *testing.T) {
	// probit(1) is +Inf; the helpers pass that through rather than erroring.
	if got := SigmaForContainment(1, 1); got != 0 {
		t.Errorf("SigmaForContainment(1, 1) = %g, want 0", got)
	}
	if got := VolumeSizeForContainment(1, 1); !math.IsInf(got, 1) {
		t.Errorf("VolumeSizeForContainment(1, 1) = %g, want +Inf", got)
	}
}

func TestCaffeinationConstantTable(t *testing.T) {
	tests := []struct {
		name     string
		fraction float64
		expected float64
	}{
		{"table row 0.8", 0.8, 0.633},
		{"table row 0.9", 0.9, 0.579},
		{"table row 0.95", 0.95, 0.554},
		{"table row 0.99", 0.99, 0.531},
		{"table row 0.999", 0.999, 0.52},
		{"interpolates between rows", 0.85, (0.633 + 0.579) / 2},
		{"clamps below table", 0.5, 0.633},
		{"clamps above table", 0.9999, 0.52},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CaffeinationConstant(tt.fraction)
			if math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("CaffeinationConstant(%g) = %g, want %g", tt.fraction, got, tt.expected)
			}
		})
	}
}

func TestCaffeinationInterval(t *testing.T) {
	// dt = k * boundSize / exitSpeed with k = 0.554 at 0.95.
	got := CaffeinationInterval(0.95, 2.3622, 4.2672)
	want := 0.554 * 4.2672 / 2.3622
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("CaffeinationInterval = %g, want %g", got, want)
	}

	// Faster exits re-sample more often.
	slow := CaffeinationInterval(0.95, 1, 4.2672)
	fast := CaffeinationInterval(0.95, 10, 4.2672)
	if fast >= slow {
		t.Errorf("interval should shrink with exit speed: fast=%g slow=%g", fast, slow)
	}
}

func TestCaffeinationTableKnots(t *testing.T) {
	fractions, constants := CaffeinationTableKnots()
	if len(fractions) != 5 || len(constants) != 5 {
		t.Fatalf("table size = %d/%d, want 5/5", len(fractions), len(constants))
	}
	if fractions[0] != 0.8 || constants[0] != 0.633 || fractions[4] != 0.999 || constants[4] != 0.52 {
		t.Errorf("table knots = %v, %v", fractions, constants)
	}
}
