// Package encounter generates synthetic two-aircraft near-miss encounters.
//
// Two models are provided. The discrete sampling model re-draws each
// aircraft's deviation from a nominal straight path at a calibrated cadence,
// producing densely sampled paths. The Reich-style closure model places a
// single lateral-overlap event inside a short viewing window and produces
// sparse piecewise-linear deviation paths through it.
//
// Every generator takes a required rand.Source; all draws go through it in a
// fixed order, so a seeded source reproduces an encounter exactly.
package encounter

import (
	"errors"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrUnsupportedConfiguration indicates a descriptor describing an encounter
// geometry the models cannot represent.
var ErrUnsupportedConfiguration = errors.New("unsupported encounter configuration")

// jointContainment is the probability with which an operation declares it
// stays inside its operational-intent volume over the two deviation axes.
// Each axis gets the square root so the joint probability comes out right.
const jointContainment = 0.95

var perAxisContainment = math.Sqrt(jointContainment)

func gauss(src rand.Source, sigma float64) float64 {
	return distuv.Normal{Mu: 0, Sigma: sigma, Src: src}.Rand()
}

func uniform(src rand.Source, min, max float64) float64 {
	return distuv.Uniform{Min: min, Max: max, Src: src}.Rand()
}

// dedupeSorted collapses exact duplicates in a sorted slice, in place.
func dedupeSorted(s []float64) []float64 {
	out := s[:1]
	for _, v := range s[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
