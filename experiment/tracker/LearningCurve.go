package tracker

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// LearningCurve tracks the average reward per episode for each epoch and
// renders it as a line plot for human monitoring.
type LearningCurve struct {
	points   plotter.XYs
	filename string
}

// NewLearningCurve creates and returns a new *LearningCurve Tracker that
// renders to filename. The image format is chosen from the file
// extension (e.g. .png, .pdf, .svg).
func NewLearningCurve(filename string) Tracker {
	return &LearningCurve{filename: filename}
}

// Track caches the average reward of one epoch.
func (l *LearningCurve) Track(stats EpochStats) {
	l.points = append(l.points, plotter.XY{
		X: float64(stats.Epoch),
		Y: stats.AverageReward,
	})
}

// Save renders the learning curve to disk.
func (l *LearningCurve) Save() error {
	p := plot.New()
	p.Title.Text = "Learning curve"
	p.X.Label.Text = "Epoch"
	p.Y.Label.Text = "Avg reward per episode"

	line, err := plotter.NewLine(l.points)
	if err != nil {
		return fmt.Errorf("save: could not plot learning curve: %w", err)
	}
	line.Color = plotutil.Color(0)
	p.Add(line)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, l.filename); err != nil {
		return fmt.Errorf("save: could not save plot to %v: %w",
			l.filename, err)
	}
	return nil
}
