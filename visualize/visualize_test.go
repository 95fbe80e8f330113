package visualize

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/YuminosukeSato/fitrank/fitting"
	"github.com/YuminosukeSato/fitrank/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
)

func searchResults(t *testing.T) ([]float64, []float64, []*fitting.FitResult) {
	t.Helper()
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = math.Exp(0.3*v) + 1 + 0.05*math.Sin(3*v)
	}
	results, err := fitting.NewTool().SearchAndEvaluate(x, y)
	require.NoError(t, err)
	return x, y, results
}

func TestPlotFits(t *testing.T) {
	x, y, results := searchResults(t)

	p, err := NewVisualizer().PlotFits(x, y, results)
	require.NoError(t, err)
	assert.Equal(t, "Curve fitting results", p.Title.Text)
}

func TestPlotFits_DimensionMismatch(t *testing.T) {
	_, err := NewVisualizer().PlotFits([]float64{1, 2}, []float64{1}, nil)
	assert.Error(t, err)
}

func TestPlotResidualsAndQQ(t *testing.T) {
	x, y, results := searchResults(t)
	v := NewVisualizer()

	p, err := v.PlotResiduals(x, y, results[0])
	require.NoError(t, err)
	assert.Contains(t, p.Title.Text, results[0].Form())

	p, err = v.PlotQQ(y, results[0])
	require.NoError(t, err)
	assert.Contains(t, p.Title.Text, results[0].Form())
}

func TestSaveAll(t *testing.T) {
	x, y, results := searchResults(t)
	dir := filepath.Join(t.TempDir(), "plots")
	logger, _ := log.NewTestLogger(log.LevelInfo)

	written, err := NewVisualizer(WithSize(4*vg.Inch, 3*vg.Inch), WithLogger(logger)).SaveAll(dir, x, y, results)
	require.NoError(t, err)
	assert.Len(t, written, 1+2*len(results))

	expected := []string{FitsFile}
	for _, r := range results {
		expected = append(expected, "residuals_"+r.Form()+".png", "qqplot_"+r.Form()+".png")
	}
	for _, name := range expected {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0))
	}
	assert.True(t, logger.ContainsMessage("plots saved"))
}

func TestFileSafe(t *testing.T) {
	assert.Equal(t, "exponential", fileSafe("exponential"))
	assert.Equal(t, "a_b_c", fileSafe("a/b c"))
}

func TestSortedIndex(t *testing.T) {
	assert.Equal(t, []int{1, 2, 0}, sortedIndex([]float64{3, 1, 2}))
}
