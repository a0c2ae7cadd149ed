package calibrate

import (
	"math"
	"os"
	"testing"

	"github.com/airside-data/nearmiss.report/internal/monitoring"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

func TestRunValidation(t *testing.T) {
	base := DefaultConfig()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no fractions", func(c *Config) { c.Fractions = nil }},
		{"fraction zero", func(c *Config) { c.Fractions = []float64{0} }},
		{"fraction one", func(c *Config) { c.Fractions = []float64{1} }},
		{"zero steps", func(c *Config) { c.Steps = 0 }},
		{"zero bound", func(c *Config) { c.BoundSize = 0 }},
		{"zero interval", func(c *Config) { c.Interval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if _, err := Run(cfg); err == nil {
				t.Error("Run() error = nil, want error")
			}
		})
	}
}

func TestRunObservedInsideFraction(t *testing.T) {
	cfg := Config{
		Fractions: []float64{0.8, 0.95},
		Steps:     200_000,
		Workers:   2,
		BoundSize: 4.2672,
		Interval:  0.7,
		Seed:      12,
	}

	estimates, err := Run(cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(estimates) != 2 {
		t.Fatalf("estimate count = %d, want 2", len(estimates))
	}

	for _, est := range estimates {
		if est.Samples != int64(cfg.Steps) {
			t.Errorf("fraction %g: samples = %d, want %d", est.Fraction, est.Samples, cfg.Steps)
		}
		// The sigma is sized exactly for the target fraction, so the
		// observed inside fraction is a direct check of the sampler. With
		// 200k samples the binomial noise is under a thousandth.
		if math.Abs(est.InsideFraction-est.Fraction) > 0.01 {
			t.Errorf("fraction %g: observed inside fraction %g", est.Fraction, est.InsideFraction)
		}
		if est.Exits <= 0 {
			t.Errorf("fraction %g: no exit events in %d steps", est.Fraction, est.Samples)
		}
		if est.MeanExitSpeed <= 0 {
			t.Errorf("fraction %g: mean exit speed = %g", est.Fraction, est.MeanExitSpeed)
		}
		if est.K <= 0.3 || est.K >= 0.9 || math.IsNaN(est.K) {
			t.Errorf("fraction %g: k = %g outside the physically plausible band", est.Fraction, est.K)
		}
		if est.TableK <= 0.4 || est.TableK >= 0.7 {
			t.Errorf("fraction %g: table constant = %g", est.Fraction, est.TableK)
		}
	}
}

func TestRunConstantIndependentOfInterval(t *testing.T) {
	// The interval cancels out of k = interval * meanExitSpeed / boundSize:
	// the same seed produces the same draws, so two runs differing only in
	// interval must estimate the same constant.
	cfg := Config{
		Fractions: []float64{0.9},
		Steps:     100_000,
		Workers:   2,
		BoundSize: 4.2672,
		Interval:  1,
		Seed:      3,
	}
	a, err := Run(cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	cfg.Interval = 0.25
	b, err := Run(cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if math.Abs(a[0].K-b[0].K) > 1e-9 {
		t.Errorf("k depends on interval: %g vs %g", a[0].K, b[0].K)
	}
	if a[0].Exits != b[0].Exits {
		t.Errorf("exit counts differ under the same seed: %d vs %d", a[0].Exits, b[0].Exits)
	}
}

func TestDefaultConfigCoversPublishedTable(t *testing.T) {
	cfg := DefaultConfig()
	if len(cfg.Fractions) != 5 {
		t.Fatalf("fraction count = %d, want the 5 published rows", len(cfg.Fractions))
	}
	if cfg.Fractions[0] != 0.8 || cfg.Fractions[4] != 0.999 {
		t.Errorf("fractions = %v", cfg.Fractions)
	}
	if cfg.Steps <= 0 || cfg.BoundSize <= 0 || cfg.Interval <= 0 {
		t.Errorf("default config not runnable: %+v", cfg)
	}
}
