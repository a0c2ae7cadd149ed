// Package main provides a Monte Carlo check of the containment-interval
// constants. It re-estimates k for each containment fraction by simulating
// deviation walks and compares the estimates against the built-in table.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/airside-data/nearmiss.report/internal/calibrate"
	"github.com/airside-data/nearmiss.report/internal/version"
)

// Config holds configuration for the calibration run.
type Config struct {
	Steps      int
	Workers    int
	BoundSize  float64
	Interval   float64
	Seed       uint64
	Fractions  string
	OutputJSON string
}

// CalibrationResult is the JSON document written with -json.
type CalibrationResult struct {
	Version     string          `json:"version"`
	GeneratedAt time.Time       `json:"generated_at"`
	Steps       int             `json:"steps"`
	Workers     int             `json:"workers"`
	BoundSize   float64         `json:"bound_size_m"`
	Interval    float64         `json:"interval_s"`
	Seed        uint64          `json:"seed"`
	Estimates   []EstimateStats `json:"estimates"`
}

// EstimateStats holds per-fraction statistics.
type EstimateStats struct {
	Fraction       float64 `json:"fraction"`
	Sigma          float64 `json:"sigma"`
	EstimatedK     float64 `json:"estimated_k"`
	TableK         float64 `json:"table_k"`
	MeanExitSpeed  float64 `json:"mean_exit_speed"`
	InsideFraction float64 `json:"inside_fraction"`
	Exits          int64   `json:"exits"`
	Samples        int64   `json:"samples"`
}

func main() {
	cfg := parseFlags()

	log.Printf("containment-sim %s (%s)", version.Version, version.GitSHA)

	cal := calibrate.DefaultConfig()
	if cfg.Steps > 0 {
		cal.Steps = cfg.Steps
	}
	if cfg.Workers > 0 {
		cal.Workers = cfg.Workers
	}
	if cfg.BoundSize > 0 {
		cal.BoundSize = cfg.BoundSize
	}
	if cfg.Interval > 0 {
		cal.Interval = cfg.Interval
	}
	cal.Seed = cfg.Seed

	if cfg.Fractions != "" {
		fractions, err := parseCSVFloatSlice(cfg.Fractions)
		if err != nil {
			log.Fatalf("invalid -fractions: %v", err)
		}
		cal.Fractions = fractions
	}

	started := time.Now()
	estimates, err := calibrate.Run(cal)
	if err != nil {
		log.Fatalf("Calibration failed: %v", err)
	}

	result := buildResult(cal, estimates)
	printResults(cal, result, time.Since(started))

	if cfg.OutputJSON != "" {
		if err := exportJSON(result, cfg.OutputJSON); err != nil {
			log.Fatalf("Failed to export JSON: %v", err)
		}
		log.Printf("Results exported to: %s", cfg.OutputJSON)
	}
}

func parseFlags() Config {
	cfg := Config{}

	defaults := calibrate.DefaultConfig()
	flag.IntVar(&cfg.Steps, "steps", defaults.Steps, "Walk steps per fraction")
	flag.IntVar(&cfg.Workers, "workers", 0, "Worker goroutines (0 = all CPUs)")
	flag.Float64Var(&cfg.BoundSize, "bound", defaults.BoundSize, "Containment bound size in metres")
	flag.Float64Var(&cfg.Interval, "interval", defaults.Interval, "Sampling interval in seconds")
	flag.Uint64Var(&cfg.Seed, "seed", defaults.Seed, "Base random seed")
	flag.StringVar(&cfg.Fractions, "fractions", "", "Comma-separated containment fractions (default: the built-in table)")
	flag.StringVar(&cfg.OutputJSON, "json", "", "Output JSON filename (e.g., calibration.json)")

	flag.Parse()

	return cfg
}

// parseCSVFloatSlice parses a comma-separated list of floats
func parseCSVFloatSlice(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func buildResult(cal calibrate.Config, estimates []calibrate.Estimate) *CalibrationResult {
	result := &CalibrationResult{
		Version:     version.Version,
		GeneratedAt: time.Now().UTC(),
		Steps:       cal.Steps,
		Workers:     cal.Workers,
		BoundSize:   cal.BoundSize,
		Interval:    cal.Interval,
		Seed:        cal.Seed,
	}
	for _, e := range estimates {
		result.Estimates = append(result.Estimates, EstimateStats{
			Fraction:       e.Fraction,
			Sigma:          e.Sigma,
			EstimatedK:     e.K,
			TableK:         e.TableK,
			MeanExitSpeed:  e.MeanExitSpeed,
			InsideFraction: e.InsideFraction,
			Exits:          e.Exits,
			Samples:        e.Samples,
		})
	}
	return result
}

func printResults(cal calibrate.Config, result *CalibrationResult, elapsed time.Duration) {
	fmt.Println("\n=== Containment Interval Calibration ===")
	fmt.Printf("Steps per fraction: %d (%d workers)\n", cal.Steps, cal.Workers)
	fmt.Printf("Bound: %.4f m, interval: %.3f s, seed: %d\n", cal.BoundSize, cal.Interval, cal.Seed)
	fmt.Printf("Elapsed: %.2fs\n", elapsed.Seconds())

	fmt.Printf("\n%-10s %-10s %-10s %-12s %-12s %-12s %-10s\n",
		"fraction", "sigma", "inside", "mean exit", "estimated k", "table k", "diff")
	for _, e := range result.Estimates {
		fmt.Printf("%-10.4f %-10.4f %-10.4f %-12.4f %-12.4f %-12.4f %+-10.4f\n",
			e.Fraction, e.Sigma, e.InsideFraction, e.MeanExitSpeed,
			e.EstimatedK, e.TableK, e.EstimatedK-e.TableK)
	}
}

func exportJSON(result *CalibrationResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
