// Package main provides the encounter generator CLI. It resolves a model
// descriptor, applies parameter overrides, and writes JSON/CSV/PNG/HTML
// artifacts for each generated encounter.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/airside-data/nearmiss.report/internal/encounter"
	"github.com/airside-data/nearmiss.report/internal/export"
	"github.com/airside-data/nearmiss.report/internal/trajectory"
	"github.com/airside-data/nearmiss.report/internal/units"
	"github.com/airside-data/nearmiss.report/internal/version"
	"github.com/airside-data/nearmiss.report/internal/viz"
)

// Config holds configuration for the encounter generator.
type Config struct {
	Model  string
	Seed   uint64
	Count  int
	OutDir string
	Units  string

	JSON bool
	CSV  bool
	PNG  bool
	HTML bool

	// Parameter overrides in SI units. Zero keeps the model default.
	Separation float64
	Duration   float64
	Speed      float64
	RelSpeed   float64
}

// separationSamples is how many uniformly spaced times the summary uses when
// estimating the minimum separation. It is a display approximation, not a
// guarantee about the continuous paths.
const separationSamples = 200

// runner couples a generator closure with the headline numbers of its
// resolved descriptor, for the startup log line.
type runner struct {
	generate   func(src rand.Source) ([]trajectory.Flight, error)
	speed      float64
	separation float64
}

func main() {
	cfg := parseFlags()

	log.Printf("encounters %s (%s)", version.Version, version.GitSHA)

	if !units.IsValid(cfg.Units) {
		log.Fatalf("invalid units %q (valid units are: %s)", cfg.Units, units.GetValidUnitsString())
	}
	if cfg.Count < 1 {
		log.Fatalf("count must be at least 1, got %d", cfg.Count)
	}

	r, err := buildRunner(cfg)
	if err != nil {
		log.Fatalf("resolve model: %v", err)
	}

	if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	log.Printf("model %s: ground speed %.2f %s, lateral separation %.2f %s",
		cfg.Model,
		units.ConvertSpeed(r.speed, cfg.Units), units.SpeedUnitLabel(cfg.Units),
		units.ConvertLength(r.separation, cfg.Units), cfg.Units)

	for i := 0; i < cfg.Count; i++ {
		seed := cfg.Seed + uint64(i)
		flights, err := r.generate(rand.NewPCG(seed, seed))
		if err != nil {
			log.Fatalf("generate encounter %d: %v", i+1, err)
		}

		base := filepath.Join(cfg.OutDir, fmt.Sprintf("%s-%03d", cfg.Model, i+1))
		title := fmt.Sprintf("%s encounter %d", cfg.Model, i+1)
		doc := export.NewDocument(cfg.Model, seed, flights)

		if cfg.JSON {
			if err := export.WriteJSON(base+".json", doc); err != nil {
				log.Fatalf("write JSON: %v", err)
			}
		}
		if cfg.CSV {
			if err := export.WriteCSV(base+".csv", doc); err != nil {
				log.Fatalf("write CSV: %v", err)
			}
		}
		if cfg.PNG {
			if err := viz.PlotTopDown(flights, title, base+"-topdown.png"); err != nil {
				log.Fatalf("plot top-down: %v", err)
			}
			if err := viz.PlotProfile(flights, title, base+"-profile.png"); err != nil {
				log.Fatalf("plot profile: %v", err)
			}
			if err := viz.PlotDeviations(flights, title, base+"-deviations.png"); err != nil {
				log.Fatalf("plot deviations: %v", err)
			}
		}
		if cfg.HTML {
			if err := viz.WriteHTML(flights, title, base+".html"); err != nil {
				log.Fatalf("write HTML: %v", err)
			}
		}

		sep := minSeparation(flights[0].Path, flights[1].Path, separationSamples)
		log.Printf("encounter %d: seed=%d waypoints=%d+%d min separation %.3f %s (sampled at %d times)",
			i+1, seed,
			flights[0].Path.NumWaypoints(), flights[1].Path.NumWaypoints(),
			units.ConvertLength(sep, cfg.Units), cfg.Units, separationSamples)
	}
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.Model, "model", "reich", "Encounter model: reich, discrete, same-direction, opposite-direction")
	flag.Uint64Var(&cfg.Seed, "seed", 1, "Base random seed; encounter i uses seed+i")
	flag.IntVar(&cfg.Count, "count", 1, "Number of encounters to generate")
	flag.StringVar(&cfg.OutDir, "out", "encounters-out", "Output directory for artifacts")
	flag.StringVar(&cfg.Units, "units", units.Meters, "Display units for the log summary: m or ft")

	flag.BoolVar(&cfg.JSON, "json", true, "Write a JSON document per encounter")
	flag.BoolVar(&cfg.CSV, "csv", false, "Write a CSV waypoint table per encounter")
	flag.BoolVar(&cfg.PNG, "png", false, "Write top-down/profile/deviation PNG plots per encounter")
	flag.BoolVar(&cfg.HTML, "html", false, "Write an interactive HTML page per encounter")

	flag.Float64Var(&cfg.Separation, "separation", 0, "Override lateral separation in metres (0 keeps the model default)")
	flag.Float64Var(&cfg.Duration, "duration", 0, "Override encounter duration in seconds, discrete model only (0 keeps the default)")
	flag.Float64Var(&cfg.Speed, "speed", 0, "Override ground speed in m/s (0 keeps the model default)")
	flag.Float64Var(&cfg.RelSpeed, "relative-speed", 0, "Override along-track relative speed in m/s, reich and discrete models only (0 keeps the default)")

	flag.Parse()

	return cfg
}

func buildRunner(cfg Config) (runner, error) {
	switch cfg.Model {
	case "reich":
		if cfg.Duration != 0 {
			return runner{}, fmt.Errorf("-duration only applies to the discrete model")
		}
		d := applyReichOverrides(encounter.StandardReichDescriptor(), cfg)
		if err := d.Validate(); err != nil {
			return runner{}, err
		}
		return runner{
			generate: func(src rand.Source) ([]trajectory.Flight, error) {
				return encounter.ReichParallelPaths(d, src)
			},
			speed:      d.GroundSpeed,
			separation: d.LateralSeparation,
		}, nil

	case "discrete":
		r := applyReichOverrides(encounter.StandardReichDescriptor(), cfg)
		if err := r.Validate(); err != nil {
			return runner{}, err
		}
		d := encounter.DiscreteDescriptorFromReich(r)
		if cfg.Duration > 0 {
			d.TimeLength = cfg.Duration
		}
		if err := d.Validate(); err != nil {
			return runner{}, err
		}
		return runner{
			generate: func(src rand.Source) ([]trajectory.Flight, error) {
				return encounter.DiscreteParallelPaths(d, src)
			},
			speed:      d.GroundSpeed1,
			separation: d.LateralSeparation,
		}, nil

	case "same-direction", "opposite-direction":
		if cfg.Duration != 0 {
			return runner{}, fmt.Errorf("-duration only applies to the discrete model")
		}
		if cfg.RelSpeed != 0 {
			return runner{}, fmt.Errorf("-relative-speed only applies to the reich and discrete models")
		}
		d := encounter.DefaultTrafficDescriptor()
		if cfg.Separation > 0 {
			d.LateralSeparation = cfg.Separation
		}
		if cfg.Speed > 0 {
			d.GroundSpeed = cfg.Speed
		}
		if err := d.Validate(); err != nil {
			return runner{}, err
		}
		generate := encounter.SameDirectionTraffic
		if cfg.Model == "opposite-direction" {
			generate = encounter.OppositeDirectionTraffic
		}
		return runner{
			generate: func(src rand.Source) ([]trajectory.Flight, error) {
				return generate(d, src)
			},
			speed:      d.GroundSpeed,
			separation: d.LateralSeparation,
		}, nil

	default:
		return runner{}, fmt.Errorf("unknown model %q (valid models: reich, discrete, same-direction, opposite-direction)", cfg.Model)
	}
}

func applyReichOverrides(d encounter.ReichDescriptor, cfg Config) encounter.ReichDescriptor {
	if cfg.Separation > 0 {
		d.LateralSeparation = cfg.Separation
	}
	if cfg.Speed > 0 {
		d.GroundSpeed = cfg.Speed
	}
	if cfg.RelSpeed > 0 {
		d.RelativeSpeed = cfg.RelSpeed
	}
	return d
}

// minSeparation samples both paths at n uniform times across their
// overlapping time range and returns the smallest Euclidean distance seen.
func minSeparation(a, b *trajectory.FlightPath, n int) float64 {
	start := math.Max(a.Start().T, b.Start().T)
	end := math.Min(a.End().T, b.End().T)
	if end < start {
		end = start
	}

	best := math.Inf(1)
	for i := 0; i < n; i++ {
		t := start
		if n > 1 {
			t += (end - start) * float64(i) / float64(n-1)
		}
		d := a.LocationAt(t).Sub(b.LocationAt(t))
		dist := math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
		if dist < best {
			best = dist
		}
	}
	return best
}
