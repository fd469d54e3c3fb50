package experiment

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/samuelfneumann/griddqn/rlerror"
)

// MovingAverage returns the mean of each window of returns ending at
// each episode. Early episodes average over the episodes seen so far.
func MovingAverage(returns []float64, window int) []float64 {
	avg := make([]float64, len(returns))
	for i := range returns {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		avg[i] = stat.Mean(returns[start:i+1], nil)
	}
	return avg
}

// PlotReturns saves a learning curve of episodic returns, with their
// moving average over window episodes, as an image at path. The image
// format is taken from the extension of path.
func PlotReturns(returns []float64, window int, path string) error {
	if len(returns) == 0 {
		return rlerror.Newf("plotReturns", rlerror.ErrInsufficientData,
			"no returns to plot")
	}
	if window <= 0 {
		return rlerror.Newf("plotReturns", rlerror.ErrInvalidConfiguration,
			"window must be > 0, have(%v)", window)
	}

	p := plot.New()
	p.Title.Text = "Learning Curve"
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = "Return"

	series := [][]float64{returns, MovingAverage(returns, window)}
	names := []string{"Return", "Moving Average"}
	for i, data := range series {
		points := make(plotter.XYs, len(data))
		for j, v := range data {
			points[j] = plotter.XY{X: float64(j + 1), Y: v}
		}

		line, err := plotter.NewLine(points)
		if err != nil {
			return errors.Wrap(err, "plotReturns")
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(names[i], line)
	}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return errors.Wrap(err, "plotReturns")
	}
	return nil
}
