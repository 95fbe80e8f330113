package errors

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelMatching(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"not found", NewNotFoundError("form", "cubic"), ErrNotFound},
		{"arity mismatch", NewArityMismatchError("linear", 2, 3), ErrArityMismatch},
		{"convergence", NewConvergenceError("levenberg-marquardt", 100, 1.5, "iteration limit"), ErrConvergence},
		{"domain", NewDomainError("logarithmic", "log of non-positive x", []float64{-1}), ErrDomain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, Is(tt.err, tt.sentinel))
			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", tt.err)
			assert.Contains(t, formatted, "errors_test.go")

			wrapped := Wrap(tt.err, "search")
			assert.True(t, Is(wrapped, tt.sentinel))
		})
	}

	assert.False(t, Is(NewNotFoundError("form", "x"), ErrDomain))
}

func TestMark(t *testing.T) {
	err := Mark(NewConvergenceError("levenberg-marquardt", 3, 1.5, "singular"), ErrSingularMatrix)

	assert.True(t, Is(err, ErrSingularMatrix))
	assert.True(t, Is(err, ErrConvergence))
	assert.True(t, Is(Wrap(err, "fitting form"), ErrSingularMatrix))
	assert.False(t, Is(err, ErrDomain))

	var ce *ConvergenceError
	require.True(t, As(err, &ce))
	assert.Equal(t, 3, ce.Iterations)
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "not found",
			err:  NewNotFoundError("criterion", "hqic"),
			want: "fitrank: criterion 'hqic' not found",
		},
		{
			name: "arity mismatch",
			err:  NewArityMismatchError("exponential", 3, 2),
			want: "fitrank: form 'exponential' declares 3 parameters but its initial guess has 2",
		},
		{
			name: "dimension",
			err:  NewDimensionError("SSE", 3, 2),
			want: "fitrank: SSE: length mismatch. Expected 3, got 2",
		},
		{
			name: "domain without values",
			err:  NewDomainError("solve", "initial guess undefined", nil),
			want: "fitrank: solve: initial guess undefined",
		},
		{
			name: "value",
			err:  NewValueError("AIC", "empty vector"),
			want: "fitrank: AIC: empty vector",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestDomainErrorTruncatesValues(t *testing.T) {
	err := NewDomainError("eval", "bad", []float64{1, 2, 3, 4, 5, 6, 7})
	assert.True(t, strings.HasSuffix(err.Error(), "...]"))
}

func TestAsStructuredTypes(t *testing.T) {
	var convErr *ConvergenceError
	err := Wrap(NewConvergenceError("nelder-mead", 42, 0.5, "iteration limit"), "fit exponential")
	require.True(t, As(err, &convErr))
	assert.Equal(t, 42, convErr.Iterations)
	assert.Equal(t, "nelder-mead", convErr.Solver)
}

func TestMarshalZerologObject(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	logger.Error().EmbedObject(&NotFoundError{Kind: "form", Name: "cubic"}).Msg("lookup failed")
	assert.Contains(t, buf.String(), `"type":"NotFoundError"`)
	assert.Contains(t, buf.String(), `"name":"cubic"`)
}

func TestCheckFinite(t *testing.T) {
	assert.NoError(t, CheckFinite("eval", []float64{1, 2, 3}))
	assert.NoError(t, CheckFinite("eval", nil))

	err := CheckFinite("eval", []float64{1, math.NaN(), math.Inf(-1)})
	require.Error(t, err)
	assert.True(t, Is(err, ErrDomain))

	var domErr *DomainError
	require.True(t, As(err, &domErr))
	assert.Len(t, domErr.Values, 2)

	assert.True(t, IsFinite([]float64{0, -1}))
	assert.False(t, IsFinite([]float64{math.Inf(1)}))
	assert.Error(t, CheckScalar("x", math.NaN()))
}

func TestWarn(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(func(w error) {})

	Warn(NewUndefinedMetricWarning("r_squared", "zero total sum of squares", math.NaN()))
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Error(), "r_squared")

	var routed []error
	SetZerologWarnFunc(func(w error) { routed = append(routed, w) })
	defer SetZerologWarnFunc(nil)

	Warn(NewConvergenceWarning("levenberg-marquardt", 10, ""))
	assert.Len(t, got, 1)
	assert.Len(t, routed, 1)
}
