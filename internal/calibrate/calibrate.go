// Package calibrate re-derives the caffeination constants by Monte Carlo
// simulation of the discrete re-sampling process.
//
// The discrete sampling model re-draws an aircraft's deviation from a
// zero-mean Gaussian every interval. The calibration question is: given the
// sigma that keeps a target fraction of samples inside a bound, how fast
// does the deviation move when it exits the bound? The constant
// k = interval * meanExitSpeed / boundSize is dimensionless and independent
// of both the interval and the bound, which is what makes the published
// table usable across configurations.
package calibrate

import (
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/airside-data/nearmiss.report/internal/monitoring"
	"github.com/airside-data/nearmiss.report/internal/stats"
)

// Config holds the calibration run parameters.
type Config struct {
	// Fractions are the target inside fractions to calibrate, each in
	// (0, 1).
	Fractions []float64
	// Steps is the number of re-samples simulated per fraction.
	Steps int
	// Workers is the number of parallel workers; <= 0 means NumCPU.
	Workers int
	// BoundSize is the full bound the deviation exits, metres.
	BoundSize float64
	// Interval is the re-sampling interval, seconds. The estimated constant
	// does not depend on it; it only scales the reported exit speeds.
	Interval float64
	// Seed drives the per-worker random sources.
	Seed uint64
}

// DefaultConfig returns a calibration run over the published table's
// fractions, sized to bring the constant estimates within a few thousandths.
func DefaultConfig() Config {
	fractions, _ := stats.CaffeinationTableKnots()
	return Config{
		Fractions: fractions,
		Steps:     2_000_000,
		Workers:   runtime.NumCPU(),
		BoundSize: 4.2672,
		Interval:  1,
		Seed:      1,
	}
}

// Estimate is the calibration result for one target fraction.
type Estimate struct {
	// Fraction is the target inside fraction.
	Fraction float64
	// Sigma is the deviation scale sized for the fraction and bound.
	Sigma float64
	// K is the estimated constant interval * meanExitSpeed / boundSize.
	K float64
	// TableK is the published constant for the fraction.
	TableK float64
	// MeanExitSpeed is the average deviation speed over exit events.
	MeanExitSpeed float64
	// InsideFraction is the observed fraction of samples inside the bound.
	InsideFraction float64
	// Exits and Samples are the event tallies behind the estimate.
	Exits   int64
	Samples int64
}

type tally struct {
	samples      int64
	inside       int64
	exits        int64
	exitSpeedSum float64
}

// Run estimates the caffeination constant for every configured fraction.
func Run(cfg Config) ([]Estimate, error) {
	if len(cfg.Fractions) == 0 {
		return nil, fmt.Errorf("no fractions to calibrate")
	}
	for _, f := range cfg.Fractions {
		if f <= 0 || f >= 1 {
			return nil, fmt.Errorf("fraction must be in (0, 1), got %g", f)
		}
	}
	if cfg.Steps <= 0 {
		return nil, fmt.Errorf("steps must be positive, got %d", cfg.Steps)
	}
	if cfg.BoundSize <= 0 {
		return nil, fmt.Errorf("bound size must be positive, got %g", cfg.BoundSize)
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %g", cfg.Interval)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}

	estimates := make([]Estimate, len(cfg.Fractions))
	for i, fraction := range cfg.Fractions {
		monitoring.Logf("[Calibrate] fraction=%.3f steps=%d workers=%d", fraction, cfg.Steps, cfg.Workers)
		estimates[i] = estimateOne(cfg, i, fraction)
	}
	return estimates, nil
}

// estimateOne runs the re-sampling walk for one fraction, split across
// workers with independent sources, and merges the tallies.
func estimateOne(cfg Config, index int, fraction float64) Estimate {
	sigma := stats.SigmaForContainment(cfg.BoundSize, fraction)
	half := cfg.BoundSize / 2

	tallies := make([]tally, cfg.Workers)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		steps := cfg.Steps / cfg.Workers
		if w == 0 {
			steps += cfg.Steps % cfg.Workers
		}
		wg.Add(1)
		go func(w, steps int) {
			defer wg.Done()
			src := rand.NewPCG(cfg.Seed+uint64(index), uint64(w)+1)
			tallies[w] = walk(src, sigma, half, cfg.Interval, steps)
		}(w, steps)
	}
	wg.Wait()

	var merged tally
	for _, tl := range tallies {
		merged.samples += tl.samples
		merged.inside += tl.inside
		merged.exits += tl.exits
		merged.exitSpeedSum += tl.exitSpeedSum
	}

	est := Estimate{
		Fraction: fraction,
		Sigma:    sigma,
		TableK:   stats.CaffeinationConstant(fraction),
		Samples:  merged.samples,
		Exits:    merged.exits,
	}
	if merged.samples > 0 {
		est.InsideFraction = float64(merged.inside) / float64(merged.samples)
	}
	if merged.exits > 0 {
		est.MeanExitSpeed = merged.exitSpeedSum / float64(merged.exits)
		est.K = cfg.Interval * est.MeanExitSpeed / cfg.BoundSize
	}
	return est
}

// walk simulates steps re-samples of the deviation and tallies bound exits:
// a sample inside ±half followed by one outside. The exit speed is the
// deviation change across the exiting step divided by the interval.
func walk(src rand.Source, sigma, half, interval float64, steps int) tally {
	normal := distuv.Normal{Mu: 0, Sigma: sigma, Src: src}
	var tl tally
	prev := normal.Rand()
	for i := 0; i < steps; i++ {
		cur := normal.Rand()
		tl.samples++
		if math.Abs(cur) <= half {
			tl.inside++
		}
		if math.Abs(prev) <= half && math.Abs(cur) > half {
			tl.exits++
			tl.exitSpeedSum += math.Abs(cur-prev) / interval
		}
		prev = cur
	}
	return tl
}
