// Package stats provides the containment statistics behind the encounter
// generators: conversions between Gaussian deviation sigmas and
// operational-volume sizes at a given containment probability, and the
// calibrated re-sampling ("caffeination") interval.
//
// Numeric domains are not guarded here; callers validate inputs upstream. A
// containment probability of 1 yields +Inf results, since the probit of 1 is
// +Inf.
package stats

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/airside-data/nearmiss.report/internal/trajectory"
)

// SigmaForContainment returns the sigma of a zero-mean Gaussian such that a
// centred interval of length volumeSize contains pContainment of the
// probability mass.
func SigmaForContainment(volumeSize, pContainment float64) float64 {
	return volumeSize / 2 / probit(1-(1-pContainment)/2)
}

// VolumeSizeForContainment returns the length of the centred interval that
// contains pContainment of the mass of a zero-mean Gaussian with the given
// sigma. It is the exact inverse of SigmaForContainment.
func VolumeSizeForContainment(sigma, pContainment float64) float64 {
	return 2 * sigma * probit(1-(1-pContainment)/2)
}

// probit is the quantile function of the standard normal distribution.
func probit(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// caffeinationTable maps the fraction of samples an aircraft stays inside
// its bound to the dimensionless constant k in dt = k * boundSize / exitSpeed.
// The values were calibrated by simulating the discrete re-sampling process;
// cmd/tools/containment-sim re-derives them.
var caffeinationTable = mustPiecewiseLinear(
	[]float64{0.8, 0.9, 0.95, 0.99, 0.999},
	[]float64{0.633, 0.579, 0.554, 0.531, 0.52},
)

// CaffeinationInterval returns the re-sampling interval at which a discrete
// random walk, re-drawing its position every interval from a Gaussian sized
// for the requested inside fraction, exits a bound of the given size at the
// given average speed. The constant is interpolated linearly over the
// calibration table and clamped at the table ends.
func CaffeinationInterval(fractionInsideBound, exitSpeed, boundSize float64) float64 {
	return caffeinationTable.Evaluate(fractionInsideBound) * boundSize / exitSpeed
}

// CaffeinationConstant returns the interpolated table constant k for the
// given inside fraction. Exposed for the calibration tooling.
func CaffeinationConstant(fractionInsideBound float64) float64 {
	return caffeinationTable.Evaluate(fractionInsideBound)
}

// CaffeinationTableKnots returns the calibrated table's fractions and
// constants.
func CaffeinationTableKnots() (fractions, constants []float64) {
	return caffeinationTable.Knots()
}

func mustPiecewiseLinear(ts, vs []float64) trajectory.PiecewiseLinear {
	f, err := trajectory.NewPiecewiseLinear(ts, vs)
	if err != nil {
		panic(err)
	}
	return f
}
