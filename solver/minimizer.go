package solver

import (
	"math"

	"github.com/YuminosukeSato/fitrank/pkg/errors"
	"github.com/YuminosukeSato/fitrank/pkg/log"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
)

// defaultGradientThreshold stops LBFGS once the numeric gradient is this small.
const defaultGradientThreshold = 1e-8

// Minimizer fits parameters by minimising the residual sum of squares with a
// general-purpose optimizer from gonum/optimize.
type Minimizer struct {
	method Method
	logger log.Logger
}

// NewMinimizer returns a Minimizer using Nelder-Mead or LBFGS.
// Any other method falls back to Nelder-Mead.
func NewMinimizer(method Method) *Minimizer {
	if method != MethodLBFGS {
		method = MethodNelderMead
	}
	return &Minimizer{method: method, logger: log.GetLoggerWithName("solver")}
}

// Name implements Solver.
func (s *Minimizer) Name() string { return string(s.method) }

// Solve implements Solver.
func (s *Minimizer) Solve(f ModelFunc, x, y, p0 []float64, opts Options) (*Result, error) {
	if err := validateProblem(s.Name(), x, y, p0); err != nil {
		return nil, err
	}
	opts = opts.WithDefaults()

	residual := residualFunc(f, x, y)
	r := make([]float64, len(y))
	residual(r, p0)
	if err := errors.CheckFinite(s.Name()+": initial guess", r); err != nil {
		return nil, err
	}
	cost0 := sumSquares(r)

	// Non-finite trial points are pushed away with +Inf.
	objective := func(p []float64) float64 {
		buf := make([]float64, len(y))
		residual(buf, p)
		c := sumSquares(buf)
		if math.IsNaN(c) {
			return math.Inf(1)
		}
		return c
	}

	problem := optimize.Problem{Func: objective}
	settings := &optimize.Settings{
		MajorIterations: opts.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   opts.FTol * opts.FTol,
			Relative:   opts.FTol,
			Iterations: 50,
		},
	}

	var method optimize.Method
	switch s.method {
	case MethodLBFGS:
		problem.Grad = func(grad, p []float64) {
			fd.Gradient(grad, objective, p, &fd.Settings{Formula: fd.Central})
		}
		settings.GradientThreshold = opts.GTol
		if settings.GradientThreshold <= 0 {
			settings.GradientThreshold = defaultGradientThreshold
		}
		method = &optimize.LBFGS{}
	default:
		method = &optimize.NelderMead{}
	}

	res, err := optimize.Minimize(problem, append([]float64(nil), p0...), settings, method)
	if err != nil {
		iters, cost := 0, math.NaN()
		if res != nil {
			iters, cost = res.Stats.MajorIterations, res.F
		}
		return nil, errors.NewConvergenceError(s.Name(), iters, cost, err.Error())
	}

	switch res.Status {
	case optimize.IterationLimit, optimize.FunctionEvaluationLimit,
		optimize.GradientEvaluationLimit, optimize.RuntimeLimit, optimize.Failure:
		return nil, errors.NewConvergenceError(s.Name(), res.Stats.MajorIterations, res.F, res.Status.String())
	}
	if math.IsInf(res.F, 1) {
		return nil, errors.NewDomainError(s.Name(), "objective is not finite at the optimum", res.X)
	}

	converged := res.F == 0 || res.F < cost0
	if !converged {
		errors.Warn(errors.NewConvergenceWarning(s.Name(), res.Stats.MajorIterations, "stopped without reducing the cost"))
	}

	s.logger.Debug("minimizer finished",
		log.SolverKey, s.Name(),
		log.IterationKey, res.Stats.MajorIterations,
		log.CostKey, res.F,
		"status", res.Status.String(),
	)

	return &Result{
		Params:     res.X,
		Iterations: res.Stats.MajorIterations,
		Cost:       res.F,
		Converged:  converged,
		Message:    res.Status.String(),
	}, nil
}
