// Package diagnostics analyses the residuals of a fitted curve.
//
// Summarize reports descriptive statistics of the residuals and QQ compares
// their ordered values with normal quantiles, which is what the residual and
// Q-Q plots in package visualize draw.
package diagnostics

import (
	"math"
	"slices"

	"github.com/YuminosukeSato/fitrank/pkg/errors"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Summary holds descriptive statistics of a residual sample.
type Summary struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	Median float64
	Q1     float64
	Q3     float64
}

// IQR returns the interquartile range.
func (s *Summary) IQR() float64 { return s.Q3 - s.Q1 }

// QQResult pairs ordered residuals with the normal quantiles they are
// plotted against, plus the least-squares line through the points.
type QQResult struct {
	// Theoretical are standard normal quantiles of the Filliben order statistic medians.
	Theoretical []float64
	// Ordered are the residuals sorted ascending.
	Ordered []float64
	// Slope and Intercept describe Ordered ≈ Intercept + Slope·Theoretical.
	Slope     float64
	Intercept float64
	// R is the correlation between Theoretical and Ordered; values near 1
	// indicate normally distributed residuals.
	R float64
}

// Report bundles everything computed for one fit.
type Report struct {
	Residuals []float64
	Summary   *Summary
	QQ        *QQResult
}

// Residuals returns y - yPred.
func Residuals(y, yPred []float64) ([]float64, error) {
	if len(y) == 0 {
		return nil, errors.NewValueError("residuals", "empty data")
	}
	if len(y) != len(yPred) {
		return nil, errors.NewDimensionError("residuals", len(y), len(yPred))
	}
	out := make([]float64, len(y))
	for i := range y {
		out[i] = y[i] - yPred[i]
	}
	return out, nil
}

// Summarize computes descriptive statistics of residuals.
func Summarize(residuals []float64) (*Summary, error) {
	if len(residuals) == 0 {
		return nil, errors.NewValueError("summarize", "empty residuals")
	}
	if err := errors.CheckFinite("summarize", residuals); err != nil {
		return nil, err
	}

	data := stats.Float64Data(residuals)
	s := &Summary{Count: len(residuals)}
	var err error

	if s.Mean, err = data.Mean(); err != nil {
		return nil, errors.Wrap(err, "summarize: mean")
	}
	if s.StdDev, err = data.StandardDeviation(); err != nil {
		return nil, errors.Wrap(err, "summarize: stddev")
	}
	if s.Min, err = data.Min(); err != nil {
		return nil, errors.Wrap(err, "summarize: min")
	}
	if s.Max, err = data.Max(); err != nil {
		return nil, errors.Wrap(err, "summarize: max")
	}
	if s.Median, err = data.Median(); err != nil {
		return nil, errors.Wrap(err, "summarize: median")
	}
	// nearest rank is defined for any sample size
	if s.Q1, err = stats.PercentileNearestRank(data, 25); err != nil {
		return nil, errors.Wrap(err, "summarize: q1")
	}
	if s.Q3, err = stats.PercentileNearestRank(data, 75); err != nil {
		return nil, errors.Wrap(err, "summarize: q3")
	}
	return s, nil
}

// QQ computes normal probability plot coordinates for residuals.
func QQ(residuals []float64) (*QQResult, error) {
	n := len(residuals)
	if n < 2 {
		return nil, errors.NewValueError("qq", "need at least two residuals")
	}
	if err := errors.CheckFinite("qq", residuals); err != nil {
		return nil, err
	}

	ordered := slices.Clone(residuals)
	slices.Sort(ordered)

	theoretical := make([]float64, n)
	for i, m := range fillibenMedians(n) {
		theoretical[i] = distuv.UnitNormal.Quantile(m)
	}

	intercept, slope := stat.LinearRegression(theoretical, ordered, nil, false)
	return &QQResult{
		Theoretical: theoretical,
		Ordered:     ordered,
		Slope:       slope,
		Intercept:   intercept,
		R:           stat.Correlation(theoretical, ordered, nil),
	}, nil
}

// fillibenMedians approximates the medians of uniform order statistics.
func fillibenMedians(n int) []float64 {
	m := make([]float64, n)
	m[n-1] = math.Pow(0.5, 1/float64(n))
	m[0] = 1 - m[n-1]
	for i := 1; i < n-1; i++ {
		m[i] = (float64(i+1) - 0.3175) / (float64(n) + 0.365)
	}
	return m
}

// Analyze computes residuals, their summary and Q-Q coordinates.
func Analyze(y, yPred []float64) (*Report, error) {
	res, err := Residuals(y, yPred)
	if err != nil {
		return nil, err
	}
	summary, err := Summarize(res)
	if err != nil {
		return nil, err
	}
	qq, err := QQ(res)
	if err != nil {
		return nil, err
	}
	return &Report{Residuals: res, Summary: summary, QQ: qq}, nil
}
