// Package log defines standard attribute keys for fitting operations.
//
// Using these keys across the fitting engine, the solvers and the registries
// keeps the structured output greppable: every record about a single form fit
// carries fit.form, every record about data carries data.samples, and so on.

package log

// Operation context.
const (
	// ComponentKey identifies which package emitted the record.
	// Examples: "fitting", "solver", "visualize"
	ComponentKey = "fit.component"

	// OperationKey names the operation being performed.
	// Standard values: OperationFit, OperationSearch, OperationSolve, OperationPlot
	OperationKey = "fit.operation"

	// FormKey is the registry name of the functional form being fitted.
	FormKey = "fit.form"

	// CriterionKey is the registry name of a selection criterion.
	CriterionKey = "fit.criterion"

	// SolverKey names the nonlinear solver in use.
	SolverKey = "fit.solver"
)

// Data shape.
const (
	// SamplesKey is the number of (x, y) pairs in the dataset.
	SamplesKey = "data.samples"

	// ParamsKey is the number of parameters of a functional form.
	ParamsKey = "fit.num_params"

	// CandidatesKey is the number of forms taking part in a search.
	CandidatesKey = "search.candidates"
)

// Fit outcome.
const (
	// IterationKey is the solver iteration count.
	IterationKey = "solver.iterations"

	// CostKey is the residual sum of squares reported by the solver.
	CostKey = "solver.cost"

	// R2ScoreKey is the coefficient of determination used for ranking.
	R2ScoreKey = "metrics.r2_score"

	// DurationMsKey is the wall time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// WorkerIDKey identifies the worker goroutine that evaluated a form.
	WorkerIDKey = "infra.worker_id"
)

// Error context.
const (
	// ErrorKey carries the error value itself.
	ErrorKey = "error"

	// ErrorTypeKey is the Go type of the error.
	ErrorTypeKey = "error.type"

	// StacktraceKey carries the stack recorded by cockroachdb/errors.
	StacktraceKey = "error.stacktrace"
)

// Standard operation values.
const (
	OperationFit    = "fit"
	OperationSearch = "search"
	OperationSolve  = "solve"
	OperationPlot   = "plot"
)
