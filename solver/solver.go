// Package solver provides nonlinear least-squares solvers used to fit
// functional forms to data.
//
// The fitting engine only depends on the Solver interface: given a model
// function, data and an initial parameter guess it returns fitted parameters
// or fails with a ConvergenceError or DomainError from pkg/errors.
package solver

import (
	"strings"

	"github.com/YuminosukeSato/fitrank/pkg/errors"
)

// ModelFunc evaluates a model at every x for the given parameters and returns
// a slice of the same length as x.
type ModelFunc func(x, params []float64) []float64

// Method selects a solver implementation.
type Method string

// Supported methods.
const (
	MethodLevenbergMarquardt Method = "lm"
	MethodNelderMead         Method = "nelder-mead"
	MethodLBFGS              Method = "lbfgs"
)

// Default option values. The tolerances match MINPACK's lmdif defaults.
const (
	DefaultMaxIterations  = 1000
	DefaultFTol           = 1.49012e-8
	DefaultXTol           = 1.49012e-8
	DefaultInitialDamping = 1e-3
)

// Options configures a solve. Zero fields take the package defaults.
type Options struct {
	// Method is used by New; a concrete Solver ignores it.
	Method Method
	// MaxIterations bounds the number of outer iterations.
	MaxIterations int
	// FTol is the cost tolerance. Levenberg-Marquardt stops once the residual
	// sum of squares is at most FTol²; the minimizers use it as the relative
	// reduction of the cost below which the fit has converged.
	FTol float64
	// XTol is the relative step size below which the fit has converged.
	XTol float64
	// GTol is the gradient max-norm below which the fit has converged; 0 disables it.
	GTol float64
	// InitialDamping is the starting Levenberg-Marquardt damping factor.
	InitialDamping float64
}

// DefaultOptions returns Options populated with the package defaults.
func DefaultOptions() Options {
	return Options{
		Method:         MethodLevenbergMarquardt,
		MaxIterations:  DefaultMaxIterations,
		FTol:           DefaultFTol,
		XTol:           DefaultXTol,
		InitialDamping: DefaultInitialDamping,
	}
}

// WithDefaults fills zero fields from DefaultOptions.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.Method == "" {
		o.Method = d.Method
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.FTol <= 0 {
		o.FTol = d.FTol
	}
	if o.XTol <= 0 {
		o.XTol = d.XTol
	}
	if o.InitialDamping <= 0 {
		o.InitialDamping = d.InitialDamping
	}
	return o
}

// Result is the outcome of a successful solve.
type Result struct {
	// Params are the fitted parameters.
	Params []float64
	// Iterations is the number of outer iterations performed.
	Iterations int
	// Cost is the residual sum of squares at Params.
	Cost float64
	// Converged is false when the solver stopped on a convergence test without
	// lowering the cost of the initial guess. A ConvergenceWarning is emitted then.
	Converged bool
	// Message describes which convergence test stopped the solver.
	Message string
}

// Solver fits model parameters to (x, y) starting from p0.
type Solver interface {
	// Name identifies the solver in logs and errors.
	Name() string
	// Solve returns fitted parameters, or fails with ConvergenceError / DomainError.
	Solve(f ModelFunc, x, y, p0 []float64, opts Options) (*Result, error)
}

// ParseMethod converts a method name into a Method.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case MethodLevenbergMarquardt, "levenberg-marquardt", "":
		return MethodLevenbergMarquardt, nil
	case MethodNelderMead:
		return MethodNelderMead, nil
	case MethodLBFGS:
		return MethodLBFGS, nil
	default:
		return "", errors.NewValidationError("method", "must be one of lm, nelder-mead, lbfgs", s)
	}
}

// New returns the Solver for method.
func New(method Method) (Solver, error) {
	switch method {
	case MethodLevenbergMarquardt, "":
		return NewLevenbergMarquardt(), nil
	case MethodNelderMead, MethodLBFGS:
		return NewMinimizer(method), nil
	default:
		return nil, errors.NewValidationError("method", "unknown solver method", string(method))
	}
}

// validateProblem checks the shape of a least-squares problem.
func validateProblem(op string, x, y, p0 []float64) error {
	if len(p0) == 0 {
		return errors.NewValidationError("p0", "initial guess must not be empty", p0)
	}
	if len(y) == 0 {
		return errors.NewValueError(op, "empty data")
	}
	if len(x) != len(y) {
		return errors.NewDimensionError(op, len(y), len(x))
	}
	if len(y) < len(p0) {
		return errors.NewValidationError("data", "fewer observations than parameters", len(y))
	}
	return nil
}

// residualFunc returns r(p) = f(x, p) - y written into dst.
func residualFunc(f ModelFunc, x, y []float64) func(dst, p []float64) {
	return func(dst, p []float64) {
		pred := f(x, p)
		for i := range dst {
			dst[i] = pred[i] - y[i]
		}
	}
}

func sumSquares(r []float64) float64 {
	var s float64
	for _, v := range r {
		s += v * v
	}
	return s
}
