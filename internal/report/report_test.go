package report

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteConvergencePlot(t *testing.T) {
	stats := []GenerationStat{
		{Generation: 0, Best: 1.0, Median: 2.0},
		{Generation: 1, Best: 0.8, Median: 1.5},
		{Generation: 2, Best: 0.5, Median: 1.1},
	}
	path := filepath.Join(t.TempDir(), "convergence.png")
	if err := WriteConvergencePlot(stats, path); err != nil {
		t.Fatalf("WriteConvergencePlot: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("expected a non-empty PNG at %s", path)
	}
}

func TestWriteConvergencePlotRejectsEmpty(t *testing.T) {
	if err := WriteConvergencePlot(nil, filepath.Join(t.TempDir(), "x.png")); err == nil {
		t.Fatal("expected an error for an empty history")
	}
}

func TestWriteParetoPlot(t *testing.T) {
	fitness := [][]float64{
		{1, 5}, {2, 3}, {3, 1}, {2.5, 2},
	}
	path := filepath.Join(t.TempDir(), "pareto.png")
	if err := WriteParetoPlot(fitness, path); err != nil {
		t.Fatalf("WriteParetoPlot: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("expected a non-empty PNG at %s", path)
	}
}

func TestWriteParetoPlotRejectsTooFewObjectives(t *testing.T) {
	fitness := [][]float64{{1}, {2}}
	if err := WriteParetoPlot(fitness, filepath.Join(t.TempDir(), "x.png")); err == nil {
		t.Fatal("expected an error for single-objective fitness")
	}
}
