// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Static plot generation for run reports.

package geomap

import (
	"fmt"
	"image/color"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"camsync/internal/report"
)

var (
	defaultPlotWidth  = vg.Centimeter * 24
	defaultPlotHeight = vg.Centimeter * 10
)

// A small palette: track in red, quality series in blue.
var plotPalette = []color.RGBA{
	{R: 230, G: 57, B: 70, A: 255},
	{R: 63, G: 55, B: 201, A: 255},
}

// CreateTrackPlot creates a lon/lat path plot of the drive.
func CreateTrackPlot(samples []report.Record) (*plot.Plot, error) {
	p := plot.New()
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"

	xys := make(plotter.XYs, 0, len(samples))
	for _, s := range samples {
		if s.NoGps {
			continue
		}
		xys = append(xys, plotter.XY{X: s.Lon, Y: s.Lat})
	}
	if len(xys) == 0 {
		return p, fmt.Errorf("CreateTrackPlot() no samples with coordinates")
	}

	track, err := plotter.NewLine(xys)
	if err != nil {
		return p, fmt.Errorf("CreateTrackPlot() creating new Line: %w", err)
	}
	track.Color = plotPalette[0]

	p.Add(track)
	p.Add(plotter.NewGrid())

	return p, nil
}

// CreateMatchDeltaPlot plots the per-sample frame-to-fix time difference.
func CreateMatchDeltaPlot(samples []report.Record) (*plot.Plot, error) {
	p := plot.New()
	p.X.Label.Text = "Sample #"
	p.Y.Label.Text = "Match delta (s)"

	xys := make(plotter.XYs, len(samples))
	for i, s := range samples {
		xys[i].X = float64(s.SampleIndex)
		xys[i].Y = s.MatchDelta
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return p, fmt.Errorf("CreateMatchDeltaPlot() creating new Line: %w", err)
	}
	line.Color = plotPalette[1]

	p.Add(line)
	p.Add(plotter.NewGrid())

	return p, nil
}

// MultiPlotRun will create the combined track and match-quality plot for a
// run report and save it to a PNG file.
func MultiPlotRun(rep *report.Report, title, outFile string) (err error) {
	// gonum's API wants subplots as a 2D slice.
	const rows, cols = 2, 1
	plots := make([][]*plot.Plot, rows)
	for i := range plots {
		plots[i] = make([]*plot.Plot, cols)
	}

	plots[0][0], err = CreateTrackPlot(rep.Samples)
	if err != nil {
		return err
	}
	plots[1][0], err = CreateMatchDeltaPlot(rep.Samples)
	if err != nil {
		return err
	}

	plots[0][0].Title.Text = title + "\n\nGPS track"
	plots[1][0].Title.Text = "Frame/GPS match delta"

	img := vgimg.New(defaultPlotWidth, defaultPlotHeight*rows)
	dc := draw.New(img)

	t := draw.Tiles{
		Rows: rows,
		Cols: cols,
		PadY: vg.Points(10),
	}

	canvases := plot.Align(plots, t, dc)
	for j := 0; j < rows; j++ {
		for i := 0; i < cols; i++ {
			if plots[j][i] != nil {
				plots[j][i].Draw(canvases[j][i])
			}
		}
	}

	w, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("MultiPlotRun() creating file: %w", err)
	}
	defer w.Close()
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("MultiPlotRun() writing PNG: %w", err)
	}

	return nil
}
