package viz

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/airside-data/nearmiss.report/internal/trajectory"
)

// htmlSamples is the number of positions sampled from each flight path when
// building the interactive charts. Sampling goes through LocationAt, so the
// charts show the interpolated trajectory rather than just its knots.
const htmlSamples = 200

// WriteHTML renders an encounter to a self-contained HTML page with a
// top-down position chart and lateral/vertical deviation charts over time.
func WriteHTML(flights []trajectory.Flight, title, path string) error {
	page := components.NewPage()
	page.AddCharts(
		topDownChart(flights, title),
		deviationChart(flights, "Lateral deviation", "y (m)", func(wp trajectory.Waypoint) float64 { return wp.Y }),
		deviationChart(flights, "Vertical deviation", "z (m)", func(wp trajectory.Waypoint) float64 { return wp.Z }),
	)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return f.Close()
}

func topDownChart(flights []trajectory.Flight, title string) *charts.Scatter {
	maxAbsX, maxAbsY := 0.0, 0.0
	series := make([][]opts.ScatterData, len(flights))
	for i, flight := range flights {
		box := flight.OpIntent
		maxAbsX = maxAbs(maxAbsX, box.Lower.X, box.Upper.X)
		maxAbsY = maxAbs(maxAbsY, box.Lower.Y, box.Upper.Y)

		data := make([]opts.ScatterData, 0, htmlSamples)
		for _, wp := range samplePath(flight.Path, htmlSamples) {
			maxAbsX = maxAbs(maxAbsX, wp.X)
			maxAbsY = maxAbs(maxAbsY, wp.Y)
			data = append(data, opts.ScatterData{Value: []interface{}{wp.X, wp.Y}})
		}
		series[i] = data
	}

	// Add a small padding so points at the edges are visible
	xPad := pad(maxAbsX)
	yPad := pad(maxAbsY)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("top-down view, %d flights", len(flights))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -xPad, Max: xPad, Name: "x (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -yPad, Max: yPad, Name: "y (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithColorsOpts(opts.Colors(flightPaletteHex(len(flights)))),
	)

	for i, data := range series {
		scatter.AddSeries(fmt.Sprintf("flight %d", i+1), data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
	}
	return scatter
}

func deviationChart(flights []trajectory.Flight, title, axisName string, value func(trajectory.Waypoint) float64) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: axisName, NameLocation: "middle", NameGap: 30}),
		charts.WithColorsOpts(opts.Colors(flightPaletteHex(len(flights)))),
	)

	for i, flight := range flights {
		data := make([]opts.ScatterData, 0, htmlSamples)
		for _, wp := range samplePath(flight.Path, htmlSamples) {
			data = append(data, opts.ScatterData{Value: []interface{}{wp.T, value(wp)}})
		}
		scatter.AddSeries(fmt.Sprintf("flight %d", i+1), data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
	}
	return scatter
}

// samplePath evaluates a flight path at n uniformly spaced times across its
// own duration.
func samplePath(path *trajectory.FlightPath, n int) []trajectory.Waypoint {
	start := path.Start().T
	end := path.End().T
	out := make([]trajectory.Waypoint, 0, n)
	for i := 0; i < n; i++ {
		t := start + (end-start)*float64(i)/float64(n-1)
		loc := path.LocationAt(t)
		out = append(out, trajectory.Waypoint{T: t, X: loc.X, Y: loc.Y, Z: loc.Z})
	}
	return out
}

func maxAbs(cur float64, vs ...float64) float64 {
	for _, v := range vs {
		if v < 0 {
			v = -v
		}
		if v > cur {
			cur = v
		}
	}
	return cur
}

func pad(maxAbs float64) float64 {
	p := maxAbs * 1.05
	if p == 0 {
		p = 1.0
	}
	return p
}
