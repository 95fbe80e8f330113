package forms

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/fitrank/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinEvaluate(t *testing.T) {
	x := []float64{1.0, 2.0, 3.0}

	tests := []struct {
		name   string
		form   Form
		params []float64
		want   []float64
		guess  []float64
	}{
		{
			name:   "linear",
			form:   Linear{},
			params: []float64{1.0, 2.0},
			want:   []float64{3.0, 5.0, 7.0},
			guess:  []float64{1, 1},
		},
		{
			name:   "exponential",
			form:   Exponential{},
			params: []float64{1.0, 2.0, 1.0},
			want:   []float64{8.3890561, 55.59815003, 404.42879349},
			guess:  []float64{1, 1, 1},
		},
		{
			name:   "logarithmic",
			form:   Logarithmic{},
			params: []float64{1.0, 2.0},
			want:   []float64{1.0, 2.38629436, 3.19722458},
			guess:  []float64{1, 1},
		},
		{
			name:   "quadratic",
			form:   Quadratic{},
			params: []float64{1.0, 0.0, 1.0},
			want:   []float64{2.0, 5.0, 10.0},
			guess:  []float64{1, 1, 1},
		},
		{
			name:   "power",
			form:   Power{},
			params: []float64{2.0, 2.0},
			want:   []float64{2.0, 8.0, 18.0},
			guess:  []float64{1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.form.Evaluate(x, tt.params)
			require.Len(t, got, len(x))
			assert.InDeltaSlice(t, tt.want, got, 1e-7)

			guess := tt.form.InitialGuess(x, x)
			assert.Equal(t, tt.guess, guess)
			assert.NoError(t, CheckArity(tt.name, tt.form, guess))
		})
	}
}

func TestLogarithmicOutsideDomain(t *testing.T) {
	got := Logarithmic{}.Evaluate([]float64{0, -1}, []float64{1, 1})
	assert.True(t, math.IsInf(got[0], -1))
	assert.True(t, math.IsNaN(got[1]))
}

func TestEvaluateLargeInputIsElementWise(t *testing.T) {
	x := make([]float64, parallelThreshold*3+7)
	for i := range x {
		x[i] = float64(i)
	}
	got := Linear{}.Evaluate(x, []float64{1, 2})
	require.Len(t, got, len(x))
	for i, v := range got {
		if v != 1+2*x[i] {
			t.Fatalf("index %d: got %v", i, v)
		}
	}
}

func TestCheckArity(t *testing.T) {
	bad := Func{
		Params: 3,
		Fn:     func(x float64, p []float64) float64 { return p[0] },
		Guess:  func(_, _ []float64) []float64 { return []float64{1, 1} },
	}

	err := CheckArity("broken", bad, bad.InitialGuess(nil, nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrArityMismatch))

	var arityErr *errors.ArityMismatchError
	require.True(t, errors.As(err, &arityErr))
	assert.Equal(t, 3, arityErr.Expected)
	assert.Equal(t, 2, arityErr.Got)
}

func TestPredict(t *testing.T) {
	got, err := Predict(LinearName, Linear{}, []float64{0, 1}, []float64{2, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5}, got)

	_, err = Predict(LinearName, Linear{}, []float64{0, 1}, []float64{2})
	assert.True(t, errors.Is(err, errors.ErrArityMismatch))
}

func TestFuncDefaultGuess(t *testing.T) {
	f := Func{Params: 2, Fn: func(x float64, p []float64) float64 { return p[0] + p[1]*math.Sqrt(x) }}
	assert.Equal(t, []float64{1, 1}, f.InitialGuess(nil, nil))
	assert.InDeltaSlice(t, []float64{1, 3}, f.Evaluate([]float64{0, 4}, []float64{1, 1}), 1e-12)
}

func TestDefaultRegistry(t *testing.T) {
	reg := NewDefaultRegistry()
	assert.Equal(t, []string{LinearName, ExponentialName, LogarithmicName}, reg.Names())

	f, err := reg.Get(ExponentialName)
	require.NoError(t, err)
	assert.Equal(t, 3, f.NumParams())

	_, err = reg.Get(QuadraticName)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.Equal(t, 3, reg.Len())

	ext := NewExtendedRegistry()
	assert.Equal(t, []string{LinearName, ExponentialName, LogarithmicName, QuadraticName, PowerName}, ext.Names())

	// 独立したインスタンス
	require.NoError(t, reg.Register("custom", Linear{}))
	assert.False(t, NewDefaultRegistry().Has("custom"))
}
