// Package report renders run diagnostics to PNG files: a per-generation
// convergence line plot and a Pareto-front scatter plot.
package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	plotH = 4 * vg.Inch
	plotW = 6 * vg.Inch
)

var (
	bestColor   = color.RGBA{R: 37, G: 150, B: 190, A: 255}
	medianColor = color.RGBA{R: 214, G: 93, B: 37, A: 255}
	frontShape  = draw.CircleGlyph{}
)

// GenerationStat is one row of the convergence history a driver's
// report callback accumulates: the best and median first-objective
// fitness observed in a generation.
type GenerationStat struct {
	Generation int
	Best       float64
	Median     float64
}

// WriteConvergencePlot draws best and median fitness against generation
// number, one line each, and saves it as a PNG at path.
func WriteConvergencePlot(stats []GenerationStat, path string) error {
	if len(stats) == 0 {
		return fmt.Errorf("report: no generations to plot")
	}
	p := plot.New()
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Fitness"
	p.X.Min = 0
	p.X.Max = float64(stats[len(stats)-1].Generation)

	best := make(plotter.XYs, len(stats))
	median := make(plotter.XYs, len(stats))
	for i, s := range stats {
		best[i] = plotter.XY{X: float64(s.Generation), Y: s.Best}
		median[i] = plotter.XY{X: float64(s.Generation), Y: s.Median}
	}

	bestLine, bestPoints, err := plotter.NewLinePoints(best)
	if err != nil {
		return err
	}
	bestLine.Color = bestColor
	bestPoints.Color = bestColor
	bestPoints.Radius = vg.Points(2)

	medianLine, medianPoints, err := plotter.NewLinePoints(median)
	if err != nil {
		return err
	}
	medianLine.Color = medianColor
	medianLine.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
	medianPoints.Color = medianColor
	medianPoints.Radius = vg.Points(2)

	p.Add(bestLine, bestPoints, medianLine, medianPoints)
	return p.Save(plotW, plotH, path)
}

// WriteParetoPlot scatters every individual's first two objectives.
// Runs with more than two objectives are projected onto the first two;
// the remaining objectives are not represented. Points are plotted with
// no connecting line, reusing plotter.NewLinePoints' scatter half and
// hiding its line half.
func WriteParetoPlot(fitness [][]float64, path string) error {
	if len(fitness) == 0 {
		return fmt.Errorf("report: no individuals to plot")
	}
	if len(fitness[0]) < 2 {
		return fmt.Errorf("report: need at least 2 objectives, got %d", len(fitness[0]))
	}
	p := plot.New()
	p.X.Label.Text = "objective 1"
	p.Y.Label.Text = "objective 2"

	pts := make(plotter.XYs, len(fitness))
	for i, f := range fitness {
		pts[i] = plotter.XY{X: f[0], Y: f[1]}
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{} // transparent: no connecting line for a scatter plot
	points.Color = bestColor
	points.Shape = frontShape
	points.Radius = vg.Points(3)
	p.Add(points)
	return p.Save(plotW, plotH, path)
}
