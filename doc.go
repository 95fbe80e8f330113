// Package fitrank fits single-predictor data to several parametric functional
// forms, scores each fit with model-selection criteria and ranks the forms.
//
// # Features
//
// - Form registry: linear, exponential and logarithmic built in, with quadratic
// and power available, plus user-defined forms through forms.Func
// - Criterion registry: AIC, BIC and R² built in, with AICc, adjusted R², RMSE and MAE available
// - Levenberg-Marquardt least squares, or Nelder-Mead / LBFGS through gonum/optimize
// - Ranking by R², optionally fitting forms concurrently
// - Residual diagnostics and plots
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/fitrank/fitting"
//	)
//
//	func main() {
//	    x := []float64{1, 2, 3, 4, 5, 6}
//	    y := []float64{2.35, 2.82, 3.46, 4.32, 5.48, 7.05}
//
//	    results, err := fitting.NewTool().SearchAndEvaluate(x, y)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    for _, r := range results {
//	        fmt.Println(r)
//	    }
//	}
//
// Fitting a single form without going through the registry:
//
//	res, err := tool.FitAndEvaluate(x, y, forms.LinearName, forms.Linear{},
//	    fitting.WithCriteria(criteria.AIC))
//
// # Packages
//
//   - fitting: Tool, FitAndEvaluate, Search / SearchAndEvaluate
//   - forms: functional forms and their registry
//   - criteria: model-selection criteria and their registry
//   - solver: nonlinear least-squares solvers
//   - metrics: sums of squares and error metrics
//   - diagnostics: residual statistics and Q-Q coordinates
//   - visualize: fit, residual and Q-Q plots
//   - config: FITRANK_* environment configuration
//   - core/registry: insertion-ordered generic registry
//   - core/parallel: parallel processing utilities
//   - pkg/errors, pkg/log: error types and structured logging
//
// # Errors
//
// Unknown form or criterion names fail with errors.ErrNotFound, a form whose
// initial guess has the wrong length with errors.ErrArityMismatch, and solver
// failures with errors.ErrConvergence or errors.ErrDomain. By default a failing
// form aborts the whole search; fitting.SkipFailures records it instead.
//
// Degenerate scores are not errors: a perfect fit gives AIC = BIC = -Inf and
// constant y gives a NaN or -Inf R².
package fitrank
