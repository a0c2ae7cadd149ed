// Package viz renders encounter geometry to static PNG plots and to
// self-contained HTML pages for interactive inspection. Both backends share
// one palette so a flight keeps its color across artifacts.
package viz

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/airside-data/nearmiss.report/internal/trajectory"
)

// PlotTopDown renders the top-down (x/y) geometry of an encounter: one
// polyline per flight path plus a dashed rectangle for each operational
// intent envelope. The plot is saved as a PNG at path.
func PlotTopDown(flights []trajectory.Flight, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "along-track x (m)"
	p.Y.Label.Text = "lateral y (m)"
	p.Legend.Top = true

	colors := flightPalette(len(flights))
	for i, flight := range flights {
		pts := make(plotter.XYs, 0, flight.Path.NumWaypoints())
		for _, wp := range flight.Path.Waypoints() {
			pts = append(pts, plotter.XY{X: wp.X, Y: wp.Y})
		}
		line, err := pathLine(pts, colors[i])
		if err != nil {
			return fmt.Errorf("flight %d path: %w", i+1, err)
		}
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("flight %d", i+1), line)

		box := flight.OpIntent
		rect, err := envelopeRect(box.Lower.X, box.Lower.Y, box.Upper.X, box.Upper.Y, colors[i])
		if err != nil {
			return fmt.Errorf("flight %d envelope: %w", i+1, err)
		}
		p.Add(rect)
	}

	return p.Save(8*vg.Inch, 8*vg.Inch, path)
}

// PlotProfile renders the side (x/z) geometry of an encounter, in the same
// style as PlotTopDown.
func PlotProfile(flights []trajectory.Flight, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "along-track x (m)"
	p.Y.Label.Text = "vertical z (m)"
	p.Legend.Top = true

	colors := flightPalette(len(flights))
	for i, flight := range flights {
		pts := make(plotter.XYs, 0, flight.Path.NumWaypoints())
		for _, wp := range flight.Path.Waypoints() {
			pts = append(pts, plotter.XY{X: wp.X, Y: wp.Z})
		}
		line, err := pathLine(pts, colors[i])
		if err != nil {
			return fmt.Errorf("flight %d path: %w", i+1, err)
		}
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("flight %d", i+1), line)

		box := flight.OpIntent
		rect, err := envelopeRect(box.Lower.X, box.Lower.Z, box.Upper.X, box.Upper.Z, colors[i])
		if err != nil {
			return fmt.Errorf("flight %d envelope: %w", i+1, err)
		}
		p.Add(rect)
	}

	return p.Save(8*vg.Inch, 8*vg.Inch, path)
}

// PlotDeviations renders the lateral (y) and vertical (z) waypoint
// coordinates of each flight against time on a shared axis. Lateral series
// are solid, vertical series dashed.
func PlotDeviations(flights []trajectory.Flight, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "deviation (m)"
	p.Legend.Top = true

	colors := flightPalette(len(flights))
	for i, flight := range flights {
		lateral := make(plotter.XYs, 0, flight.Path.NumWaypoints())
		vertical := make(plotter.XYs, 0, flight.Path.NumWaypoints())
		for _, wp := range flight.Path.Waypoints() {
			lateral = append(lateral, plotter.XY{X: wp.T, Y: wp.Y})
			vertical = append(vertical, plotter.XY{X: wp.T, Y: wp.Z})
		}

		yLine, err := pathLine(lateral, colors[i])
		if err != nil {
			return fmt.Errorf("flight %d lateral: %w", i+1, err)
		}
		p.Add(yLine)
		p.Legend.Add(fmt.Sprintf("flight %d y", i+1), yLine)

		zLine, err := pathLine(vertical, colors[i])
		if err != nil {
			return fmt.Errorf("flight %d vertical: %w", i+1, err)
		}
		zLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(zLine)
		p.Legend.Add(fmt.Sprintf("flight %d z", i+1), zLine)
	}

	return p.Save(14*vg.Inch, 6*vg.Inch, path)
}

func pathLine(pts plotter.XYs, c color.Color) (*plotter.Line, error) {
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = c
	line.Width = vg.Points(1.5)
	return line, nil
}

// envelopeRect builds a dashed closed rectangle over the given projection of
// an operational intent box.
func envelopeRect(x0, y0, x1, y1 float64, c color.Color) (*plotter.Line, error) {
	pts := plotter.XYs{
		{X: x0, Y: y0},
		{X: x1, Y: y0},
		{X: x1, Y: y1},
		{X: x0, Y: y1},
		{X: x0, Y: y0},
	}
	rect, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	rect.Color = c
	rect.Width = vg.Points(1)
	rect.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	return rect, nil
}
