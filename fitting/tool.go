// Package fitting は関数形のフィット・評価とランキングを行う
//
// Tool は関数形レジストリ、選択基準レジストリ、ソルバーを束ね、
// FitAndEvaluate（1つの関数形）と Search / SearchAndEvaluate（全候補を R² の降順に並べる）
// を提供する。レジストリは呼び出しによって変更されない。
package fitting

import (
	"context"
	"slices"
	"time"

	"github.com/YuminosukeSato/fitrank/config"
	"github.com/YuminosukeSato/fitrank/core/parallel"
	"github.com/YuminosukeSato/fitrank/criteria"
	"github.com/YuminosukeSato/fitrank/forms"
	"github.com/YuminosukeSato/fitrank/pkg/errors"
	"github.com/YuminosukeSato/fitrank/pkg/log"
	"github.com/YuminosukeSato/fitrank/solver"
)

// Tool は曲線フィッティングとモデル選択のエントリポイント
type Tool struct {
	forms      *forms.Registry
	criteria   *criteria.Registry
	solver     solver.Solver
	solverOpts solver.Options
	workers    int
	skip       bool
	logger     log.Logger
}

// NewTool は既定のレジストリと Levenberg-Marquardt ソルバーで Tool を作成する
func NewTool(opts ...Option) *Tool {
	t := &Tool{
		forms:      forms.NewDefaultRegistry(),
		criteria:   criteria.NewDefaultRegistry(),
		solver:     solver.NewLevenbergMarquardt(),
		solverOpts: solver.DefaultOptions(),
		workers:    1,
		logger:     log.GetLoggerWithName("fitting"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewToolFromConfig は設定から Tool を作成する
// 追加の opts は設定より優先される
func NewToolFromConfig(cfg *config.Config, opts ...Option) (*Tool, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s, err := solver.New(cfg.SolverOptions().Method)
	if err != nil {
		return nil, err
	}

	fr, cr := forms.NewDefaultRegistry(), criteria.NewDefaultRegistry()
	if cfg.ExtendedForms {
		fr = forms.NewExtendedRegistry()
	}
	if cfg.ExtendedCriteria {
		cr = criteria.NewExtendedRegistry()
	}

	base := []Option{
		WithFormRegistry(fr),
		WithCriterionRegistry(cr),
		WithSolver(s),
		WithSolverOptions(cfg.SolverOptions()),
		WithWorkers(cfg.Workers),
		WithSkipFailures(cfg.SkipFailures),
	}
	return NewTool(append(base, opts...)...), nil
}

// Forms は関数形レジストリを返す
func (t *Tool) Forms() *forms.Registry { return t.forms }

// Criteria は選択基準レジストリを返す
func (t *Tool) Criteria() *criteria.Registry { return t.criteria }

func (t *Tool) newCallConfig(opts []CallOption) *callConfig {
	c := &callConfig{skipFailures: t.skip}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (t *Tool) solverOptions(c *callConfig) solver.Options {
	if c.solverOpts != nil {
		return *c.solverOpts
	}
	return t.solverOpts
}

// FitAndEvaluate は関数形 form をデータにフィットし、選択基準で評価する
//
// 手順:
//  1. データを検証（同じ長さ、空でない、有限、パラメータ数以上の点数）
//  2. 初期値を取得し、パラメータ数と一致するか検証
//  3. ソルバーでパラメータを推定
//  4. 推定パラメータから予測値を再計算
//  5. 要求された基準（既定は全て）とランキング用の R² を計算
//
// ソルバーの失敗（ConvergenceError, DomainError）はそのまま返される。
func (t *Tool) FitAndEvaluate(x, y []float64, name string, form forms.Form, opts ...CallOption) (*FitResult, error) {
	c := t.newCallConfig(opts)

	selected, err := t.resolveCriteria(c.criteria)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, errors.NewValidationError("form", "must not be nil", name)
	}
	if err := validateData(x, y, form.NumParams()); err != nil {
		return nil, err
	}

	return t.fit(slices.Clone(x), slices.Clone(y), name, form, selected, t.solverOptions(c))
}

// SearchAndEvaluate は全候補をフィットし、R² の降順に並べた結果を返す
// SkipFailures 指定時に失敗した関数形は結果から除かれる（詳細は Search を参照）
func (t *Tool) SearchAndEvaluate(x, y []float64, opts ...CallOption) ([]*FitResult, error) {
	report, err := t.Search(x, y, opts...)
	if err != nil {
		return nil, err
	}
	return report.Results, nil
}

// Search は候補の関数形をレジストリ順にフィットし、R² の降順に安定ソートする
//
// 未登録の関数形名・基準名はフィット開始前に NotFoundError となる。
// 既定ではいずれかの関数形の失敗で探索全体を中断する。
// SkipFailures 指定時は失敗を SearchReport.Failures に記録して続行する。
func (t *Tool) Search(x, y []float64, opts ...CallOption) (*SearchReport, error) {
	c := t.newCallConfig(opts)
	start := time.Now()

	candidates, err := t.resolveForms(c.forms)
	if err != nil {
		return nil, err
	}
	selected, err := t.resolveCriteria(c.criteria)
	if err != nil {
		return nil, err
	}

	// 点数とパラメータ数の整合は関数形ごとにソルバーが検証する
	if err := validateData(x, y, 0); err != nil {
		return nil, err
	}

	xs, ys := slices.Clone(x), slices.Clone(y)
	solverOpts := t.solverOptions(c)
	logger := t.logger.With(log.OperationKey, log.OperationSearch)
	logger.Debug("search started",
		log.CandidatesKey, len(candidates),
		log.SamplesKey, len(ys),
	)

	results := make([]*FitResult, len(candidates))
	failures := make([]error, len(candidates))

	err = parallel.ForEach(context.Background(), len(candidates), t.workers, func(_ context.Context, i int) error {
		cand := candidates[i]
		res, err := t.fit(xs, ys, cand.name, cand.form, selected, solverOpts)
		if err != nil {
			err = errors.Wrapf(err, "fitting form %q", cand.name)
			if c.skipFailures {
				logger.Warn("form skipped", err, log.FormKey, cand.name)
				failures[i] = err
				return nil
			}
			return err
		}
		results[i] = res
		return nil
	})
	if err != nil {
		logger.Error("search aborted", err)
		return nil, err
	}

	report := &SearchReport{}
	for i, res := range results {
		if res != nil {
			report.Results = append(report.Results, res)
			continue
		}
		if failures[i] != nil {
			report.Failures = append(report.Failures, FormFailure{Form: candidates[i].name, Err: failures[i]})
		}
	}
	sortResults(report.Results)

	if best, ok := report.Best(); ok {
		logger.Info("search finished",
			log.CandidatesKey, len(candidates),
			log.FormKey, best.Form(),
			log.R2ScoreKey, best.RSquared(),
			"failures", len(report.Failures),
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	} else {
		logger.Warn("search finished without results",
			log.CandidatesKey, len(candidates),
			"failures", len(report.Failures),
		)
	}
	return report, nil
}

type candidate struct {
	name string
	form forms.Form
}

// resolveForms はフィルタ名を検証し、レジストリ順の候補を返す
// nil は全ての関数形、空のフィルタは候補なし（空のランキング）を意味する
func (t *Tool) resolveForms(filter []string) ([]candidate, error) {
	if filter != nil {
		for _, name := range filter {
			if !t.forms.Has(name) {
				return nil, errors.NewNotFoundError(t.forms.Kind(), name)
			}
		}
	}

	var out []candidate
	for name, f := range t.forms.All() {
		if filter == nil || slices.Contains(filter, name) {
			out = append(out, candidate{name: name, form: f})
		}
	}
	return out, nil
}

type namedCriterion struct {
	name string
	crit criteria.Criterion
}

// resolveCriteria は要求された基準をレジストリ順で返す。nil は全ての基準
func (t *Tool) resolveCriteria(names []string) ([]namedCriterion, error) {
	for _, name := range names {
		if !t.criteria.Has(name) {
			return nil, errors.NewNotFoundError(t.criteria.Kind(), name)
		}
	}

	out := []namedCriterion{}
	for name, c := range t.criteria.All() {
		if names == nil || slices.Contains(names, name) {
			out = append(out, namedCriterion{name: name, crit: c})
		}
	}
	return out, nil
}

// fit は検証済みの入力に対してフィットと評価を行う
func (t *Tool) fit(x, y []float64, name string, form forms.Form, selected []namedCriterion, opts solver.Options) (result *FitResult, err error) {
	start := time.Now()
	logger := t.logger.With(
		log.OperationKey, log.OperationFit,
		log.FormKey, name,
		log.SolverKey, t.solver.Name(),
	)

	// ユーザー定義の関数形が panic した場合は PanicError に変換する
	err = errors.SafeExecute("fit "+name, func() error {
		guess := form.InitialGuess(x, y)
		if err := forms.CheckArity(name, form, guess); err != nil {
			return err
		}

		sol, err := t.solver.Solve(form.Evaluate, x, y, guess, opts)
		if err != nil {
			return err
		}

		yPred, err := forms.Predict(name, form, x, sol.Params)
		if err != nil {
			return err
		}
		if len(yPred) != len(y) {
			return errors.NewDimensionError("evaluate "+name, len(y), len(yPred))
		}

		result, err = score(name, form.NumParams(), y, yPred, selected)
		if err != nil {
			return err
		}
		result.params = slices.Clone(sol.Params)
		result.iterations = sol.Iterations
		result.cost = sol.Cost
		return nil
	})
	if err != nil {
		logger.Debug("fit failed", err)
		return nil, err
	}

	logger.Debug("fit finished",
		log.ParamsKey, form.NumParams(),
		log.IterationKey, result.iterations,
		log.R2ScoreKey, result.rSquared,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return result, nil
}

// score は選択基準とランキング用の R² を計算する
func score(name string, k int, y, yPred []float64, selected []namedCriterion) (*FitResult, error) {
	res := &FitResult{
		form:     name,
		yPred:    yPred,
		scores:   make(map[string]float64, len(selected)),
		criteria: make([]string, 0, len(selected)),
	}

	haveR2 := false
	for _, sc := range selected {
		v, err := sc.crit.Evaluate(y, yPred, k)
		if err != nil {
			return nil, errors.Wrapf(err, "criterion %q", sc.name)
		}
		res.scores[sc.name] = v
		res.criteria = append(res.criteria, sc.name)
		if _, builtin := sc.crit.(criteria.RSquaredCriterion); builtin {
			res.rSquared, haveR2 = v, true
		}
	}

	if !haveR2 {
		v, err := criteria.RSquaredCriterion{}.Evaluate(y, yPred, k)
		if err != nil {
			return nil, err
		}
		res.rSquared = v
	}
	return res, nil
}

// validateData は x, y が同じ長さで、空でなく、有限で、minPoints 点以上あることを検証する
func validateData(x, y []float64, minPoints int) error {
	if len(x) == 0 || len(y) == 0 {
		return errors.Wrap(errors.ErrEmptyData, "fitting")
	}
	if len(x) != len(y) {
		return errors.NewDimensionError("fitting", len(x), len(y))
	}
	if err := errors.CheckFinite("fitting: x", x); err != nil {
		return err
	}
	if err := errors.CheckFinite("fitting: y", y); err != nil {
		return err
	}
	if len(y) < minPoints {
		return errors.NewValidationError("data", "fewer observations than parameters", len(y))
	}
	return nil
}
