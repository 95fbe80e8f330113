// Package visualize draws fitted curves, residuals and Q-Q plots with gonum/plot.
package visualize

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/YuminosukeSato/fitrank/diagnostics"
	"github.com/YuminosukeSato/fitrank/fitting"
	"github.com/YuminosukeSato/fitrank/pkg/errors"
	"github.com/YuminosukeSato/fitrank/pkg/log"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// File names written by SaveAll.
const (
	FitsFile          = "fit_results.png"
	residualsPattern  = "residuals_%s.png"
	qqPlotFilePattern = "qqplot_%s.png"
)

// Visualizer renders fit results to image files.
type Visualizer struct {
	width  vg.Length
	height vg.Length
	logger log.Logger
}

// Option configures a Visualizer.
type Option func(*Visualizer)

// WithSize sets the image size. The extension passed to Save picks the format.
func WithSize(width, height vg.Length) Option {
	return func(v *Visualizer) {
		if width > 0 && height > 0 {
			v.width, v.height = width, height
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(v *Visualizer) {
		if l != nil {
			v.logger = l
		}
	}
}

// NewVisualizer creates a Visualizer producing 10x6 inch images by default.
func NewVisualizer(opts ...Option) *Visualizer {
	v := &Visualizer{
		width:  10 * vg.Inch,
		height: 6 * vg.Inch,
		logger: log.GetLoggerWithName("visualize"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// PlotFits draws the data points and every fitted curve, labelled with R².
// Results whose predictions are not finite are left out.
func (v *Visualizer) PlotFits(x, y []float64, results []*fitting.FitResult) (*plot.Plot, error) {
	if len(x) != len(y) {
		return nil, errors.NewDimensionError("plot fits", len(x), len(y))
	}

	p := plot.New()
	p.Title.Text = "Curve fitting results"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())

	data, err := plotter.NewScatter(xyPoints(x, y))
	if err != nil {
		return nil, errors.Wrap(err, "plot fits: data")
	}
	data.GlyphStyle.Radius = vg.Points(3)
	p.Add(data)
	p.Legend.Add("data", data)

	order := sortedIndex(x)
	for i, r := range results {
		yPred := r.YPred()
		if len(yPred) != len(x) {
			return nil, errors.NewDimensionError("plot fits: "+r.Form(), len(x), len(yPred))
		}
		if !errors.IsFinite(yPred) {
			v.logger.Warn("skipping non-finite curve", log.FormKey, r.Form(), log.OperationKey, log.OperationPlot)
			continue
		}

		pts := make(plotter.XYs, len(order))
		for j, k := range order {
			pts[j].X, pts[j].Y = x[k], yPred[k]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, errors.Wrapf(err, "plot fits: %s", r.Form())
		}
		line.LineStyle.Color = plotutil.Color(i + 1)
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("%s (R²=%.4f)", r.Form(), r.RSquared()), line)
	}
	p.Legend.Top = true
	p.Legend.Left = true
	return p, nil
}

// PlotResiduals draws y - ŷ against x with a zero reference line.
func (v *Visualizer) PlotResiduals(x, y []float64, r *fitting.FitResult) (*plot.Plot, error) {
	res, err := diagnostics.Residuals(y, r.YPred())
	if err != nil {
		return nil, err
	}
	if len(x) != len(res) {
		return nil, errors.NewDimensionError("plot residuals", len(x), len(res))
	}

	p := plot.New()
	p.Title.Text = "Residuals: " + r.Form()
	p.X.Label.Text = "x"
	p.Y.Label.Text = "residual"
	p.Add(plotter.NewGrid())

	pts, err := plotter.NewScatter(xyPoints(x, res))
	if err != nil {
		return nil, errors.Wrapf(err, "plot residuals: %s", r.Form())
	}
	pts.GlyphStyle.Color = plotutil.Color(1)
	pts.GlyphStyle.Radius = vg.Points(3)

	zero := plotter.NewFunction(func(float64) float64 { return 0 })
	zero.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(pts, zero)
	return p, nil
}

// PlotQQ draws the normal Q-Q plot of the residuals of r.
func (v *Visualizer) PlotQQ(y []float64, r *fitting.FitResult) (*plot.Plot, error) {
	res, err := diagnostics.Residuals(y, r.YPred())
	if err != nil {
		return nil, err
	}
	qq, err := diagnostics.QQ(res)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = "Q-Q plot: " + r.Form()
	p.X.Label.Text = "theoretical quantiles"
	p.Y.Label.Text = "ordered residuals"
	p.Add(plotter.NewGrid())

	pts, err := plotter.NewScatter(xyPoints(qq.Theoretical, qq.Ordered))
	if err != nil {
		return nil, errors.Wrapf(err, "plot qq: %s", r.Form())
	}
	pts.GlyphStyle.Radius = vg.Points(3)
	p.Add(pts)

	if !math.IsNaN(qq.Slope) && !math.IsNaN(qq.Intercept) {
		ref := plotter.NewFunction(func(q float64) float64 { return qq.Intercept + qq.Slope*q })
		ref.LineStyle.Color = plotutil.Color(1)
		p.Add(ref)
		p.Legend.Add(fmt.Sprintf("r=%.4f", qq.R), ref)
	}
	return p, nil
}

// Save writes p to path.
func (v *Visualizer) Save(p *plot.Plot, path string) error {
	if err := p.Save(v.width, v.height, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}

// SaveAll writes the fits plot and a residual and Q-Q plot per result into
// dir, creating it if needed, and returns the written paths.
func (v *Visualizer) SaveAll(dir string, x, y []float64, results []*fitting.FitResult) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create output directory %s", dir)
	}

	var written []string
	save := func(p *plot.Plot, name string) error {
		path := filepath.Join(dir, name)
		if err := v.Save(p, path); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	fits, err := v.PlotFits(x, y, results)
	if err != nil {
		return written, err
	}
	if err := save(fits, FitsFile); err != nil {
		return written, err
	}

	for _, r := range results {
		if !errors.IsFinite(r.YPred()) {
			continue
		}
		name := fileSafe(r.Form())

		rp, err := v.PlotResiduals(x, y, r)
		if err != nil {
			return written, err
		}
		if err := save(rp, fmt.Sprintf(residualsPattern, name)); err != nil {
			return written, err
		}

		qp, err := v.PlotQQ(y, r)
		if err != nil {
			return written, err
		}
		if err := save(qp, fmt.Sprintf(qqPlotFilePattern, name)); err != nil {
			return written, err
		}
	}

	v.logger.Info("plots saved",
		log.OperationKey, log.OperationPlot,
		"dir", dir,
		"files", len(written),
	)
	return written, nil
}

func xyPoints(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X, pts[i].Y = x[i], y[i]
	}
	return pts
}

// sortedIndex returns the indexes of x in ascending order of x.
func sortedIndex(x []float64) []int {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		switch {
		case x[a] < x[b]:
			return -1
		case x[a] > x[b]:
			return 1
		}
		return 0
	})
	return idx
}

func fileSafe(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
