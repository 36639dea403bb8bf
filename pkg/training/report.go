package training

import (
	"encoding/csv"
	"os"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	xe "github.com/leadscore/leadscore/pkg/errors"
)

// confusionGrid adapts a 2x2 confusion matrix to the heatmap plotter.
// Row 0 (actual negative) is drawn at the top, matching how the
// matrix is usually read.
type confusionGrid struct {
	m [2][2]int
}

func (g confusionGrid) Dims() (int, int) { return 2, 2 }
func (g confusionGrid) X(c int) float64  { return float64(c) }
func (g confusionGrid) Y(r int) float64  { return float64(r) }
func (g confusionGrid) Z(c, r int) float64 {
	return float64(g.m[1-r][c])
}

func writeConfusionMatrixPlot(path string, confusion [2][2]int) error {
	p := plot.New()
	p.Title.Text = "Confusion Matrix"
	p.X.Label.Text = "predicted"
	p.Y.Label.Text = "actual"

	grid := confusionGrid{m: confusion}
	p.Add(plotter.NewHeatMap(grid, palette.Heat(12, 1)))

	p.X.Tick.Marker = plot.ConstantTicks([]plot.Tick{
		{Value: 0, Label: "no"}, {Value: 1, Label: "yes"},
	})
	p.Y.Tick.Marker = plot.ConstantTicks([]plot.Tick{
		{Value: 0, Label: "yes"}, {Value: 1, Label: "no"},
	})

	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs: []plotter.XY{
			{X: 0, Y: 1}, {X: 1, Y: 1},
			{X: 0, Y: 0}, {X: 1, Y: 0},
		},
		Labels: []string{
			strconv.Itoa(confusion[0][0]), strconv.Itoa(confusion[0][1]),
			strconv.Itoa(confusion[1][0]), strconv.Itoa(confusion[1][1]),
		},
	})
	if err != nil {
		return xe.Wrap(err)
	}
	p.Add(labels)

	return xe.Wrap(p.Save(4*vg.Inch, 4*vg.Inch, path))
}

// writeEvaluationReport records the held-out split row by row: the
// true label, the thresholded prediction and the raw probability.
// Row ids index into the held-out split in its evaluation order.
func writeEvaluationReport(path string, yTrue []float64, proba []float64, threshold float64) error {
	out, err := os.Create(path)
	if err != nil {
		return xe.Wrap(err)
	}
	defer out.Close()

	records := [][]string{{"row", "actual", "prediction", "probability"}}
	for i, p := range proba {
		predicted := 0
		if p >= threshold {
			predicted = 1
		}
		records = append(records, []string{
			strconv.Itoa(i),
			strconv.Itoa(int(yTrue[i])),
			strconv.Itoa(predicted),
			strconv.FormatFloat(p, 'g', -1, 64),
		})
	}

	w := csv.NewWriter(out)
	if err := w.WriteAll(records); err != nil {
		return xe.Wrap(err)
	}
	return xe.Wrap(out.Sync())
}
