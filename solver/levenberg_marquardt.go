package solver

import (
	"math"
	"sync"

	"github.com/YuminosukeSato/fitrank/pkg/errors"
	"github.com/YuminosukeSato/fitrank/pkg/log"
	"github.com/maorshutman/lm"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

const lmName = "levenberg-marquardt"

// LevenbergMarquardt is a damped Gauss-Newton least-squares solver backed by
// github.com/maorshutman/lm with a central-difference Jacobian.
//
// Options map onto the backend as follows: InitialDamping scales the first
// damping factor (Tau), GTol bounds the gradient max-norm (Eps1), XTol bounds
// the relative step size (Eps2), and the solve stops once the residual sum of
// squares falls to FTol².
type LevenbergMarquardt struct {
	logger log.Logger
}

// NewLevenbergMarquardt creates the default solver.
func NewLevenbergMarquardt() *LevenbergMarquardt {
	return &LevenbergMarquardt{logger: log.GetLoggerWithName("solver")}
}

// Name implements Solver.
func (s *LevenbergMarquardt) Name() string { return lmName }

// Solve implements Solver.
//
// Result.Iterations counts accepted steps. A solve that stops on the step or
// gradient test without lowering the cost returns Converged=false and emits a
// ConvergenceWarning.
func (s *LevenbergMarquardt) Solve(f ModelFunc, x, y, p0 []float64, opts Options) (*Result, error) {
	if err := validateProblem(lmName, x, y, p0); err != nil {
		return nil, err
	}
	opts = opts.WithDefaults()

	guard := &panicGuard{}
	residual := guard.wrap(residualFunc(f, x, y))

	r0 := make([]float64, len(y))
	residual(r0, p0)
	if err := guard.Err(); err != nil {
		return nil, err
	}
	if err := errors.CheckFinite(lmName+": initial guess", r0); err != nil {
		return nil, err
	}
	cost0 := sumSquares(r0)

	numJac := lm.NumJac{Func: residual}
	jacEvals := 0
	problem := lm.LMProblem{
		Dim:  len(p0),
		Size: len(y),
		Func: residual,
		Jac: func(dst *mat.Dense, p []float64) {
			jacEvals++
			numJac.Jac(dst, p)
		},
		InitParams: append([]float64(nil), p0...),
		Tau:        opts.InitialDamping,
		Eps1:       opts.GTol,
		Eps2:       opts.XTol,
	}
	// the backend compares 0.5·‖r‖² against ObjectiveTol
	settings := &lm.Settings{
		Iterations:   opts.MaxIterations,
		ObjectiveTol: 0.5 * opts.FTol * opts.FTol,
	}

	out, err := runLM(problem, settings)
	accepted := max(jacEvals-1, 0)
	if perr := guard.Err(); perr != nil {
		return nil, perr
	}
	if err != nil {
		return nil, errors.Mark(
			errors.NewConvergenceError(lmName, accepted, math.NaN(), "damped normal equations are singular"),
			errors.ErrSingularMatrix,
		)
	}

	r := make([]float64, len(y))
	residual(r, out.X)
	cost := sumSquares(r)

	if out.Status == optimize.IterationLimit {
		return nil, errors.NewConvergenceError(lmName, opts.MaxIterations, cost, "iteration limit reached")
	}
	if !errors.IsFinite(out.X) {
		return nil, errors.NewDomainError(lmName, "parameters are not finite", out.X)
	}
	if err := errors.CheckScalar(lmName+": final cost", cost); err != nil {
		return nil, err
	}

	converged := cost == 0 || cost < cost0
	if !converged {
		errors.Warn(errors.NewConvergenceWarning(lmName, accepted, "stopped without reducing the cost"))
	}

	s.logger.Debug("lm finished",
		log.SolverKey, lmName,
		log.IterationKey, accepted,
		log.CostKey, cost,
		"status", out.Status.String(),
	)

	return &Result{
		Params:     out.X,
		Iterations: accepted,
		Cost:       cost,
		Converged:  converged,
		Message:    out.Status.String(),
	}, nil
}

// runLM turns a backend panic, raised on a singular damped system, into an error.
func runLM(problem lm.LMProblem, settings *lm.Settings) (res *lm.Result, err error) {
	defer errors.Recover(&err, lmName)
	return lm.LM(problem, settings)
}

// panicGuard records the first panic raised by a model evaluation. The
// Jacobian is evaluated on several goroutines, so a panic there would
// otherwise escape the caller's recover.
type panicGuard struct {
	mu  sync.Mutex
	err error
}

func (g *panicGuard) wrap(fn func(dst, p []float64)) func(dst, p []float64) {
	return func(dst, p []float64) {
		defer func() {
			if r := recover(); r != nil {
				g.mu.Lock()
				if g.err == nil {
					g.err = errors.NewPanicError("evaluate model", r)
				}
				g.mu.Unlock()
				for i := range dst {
					dst[i] = math.NaN()
				}
			}
		}()
		fn(dst, p)
	}
}

// Err returns the recorded panic as a PanicError, or nil.
func (g *panicGuard) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}
