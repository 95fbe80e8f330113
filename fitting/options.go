package fitting

import (
	"github.com/YuminosukeSato/fitrank/criteria"
	"github.com/YuminosukeSato/fitrank/forms"
	"github.com/YuminosukeSato/fitrank/pkg/log"
	"github.com/YuminosukeSato/fitrank/solver"
)

// Option は Tool の設定を変更する関数
type Option func(*Tool)

// WithFormRegistry は探索対象の関数形レジストリを指定する
func WithFormRegistry(r *forms.Registry) Option {
	return func(t *Tool) {
		if r != nil {
			t.forms = r
		}
	}
}

// WithCriterionRegistry は選択基準のレジストリを指定する
func WithCriterionRegistry(r *criteria.Registry) Option {
	return func(t *Tool) {
		if r != nil {
			t.criteria = r
		}
	}
}

// WithSolver はソルバーを指定する
func WithSolver(s solver.Solver) Option {
	return func(t *Tool) {
		if s != nil {
			t.solver = s
		}
	}
}

// WithSolverOptions はソルバーにそのまま渡すオプションを指定する
func WithSolverOptions(o solver.Options) Option {
	return func(t *Tool) {
		t.solverOpts = o
	}
}

// WithWorkers は探索時に同時にフィットする関数形の数を指定する
// 1 は逐次実行、0 以下は CPU コア数
func WithWorkers(n int) Option {
	return func(t *Tool) {
		t.workers = n
	}
}

// WithSkipFailures は Search の既定の失敗方針を指定する
// true の場合、全ての呼び出しが SkipFailures を指定したものとして扱われる
func WithSkipFailures(skip bool) Option {
	return func(t *Tool) {
		t.skip = skip
	}
}

// WithLogger はロガーを指定する
func WithLogger(l log.Logger) Option {
	return func(t *Tool) {
		if l != nil {
			t.logger = l
		}
	}
}

// CallOption は FitAndEvaluate / Search の呼び出し単位の設定
type CallOption func(*callConfig)

type callConfig struct {
	forms        []string
	criteria     []string
	solverOpts   *solver.Options
	skipFailures bool
}

// WithForms は探索する関数形を名前で絞り込む
// 結果の評価順はレジストリ順のまま。空のリストを渡すと結果は空になる
func WithForms(names ...string) CallOption {
	return func(c *callConfig) {
		c.forms = append([]string{}, names...)
	}
}

// WithCriteria は計算・報告する基準を名前で絞り込む
// 空のリストを渡すと基準は計算されない（ランキング用の R² は常に計算される）
func WithCriteria(names ...string) CallOption {
	return func(c *callConfig) {
		c.criteria = append([]string{}, names...)
	}
}

// OverrideSolverOptions はこの呼び出しに限りソルバーオプションを差し替える
func OverrideSolverOptions(o solver.Options) CallOption {
	return func(c *callConfig) {
		c.solverOpts = &o
	}
}

// SkipFailures は探索中に失敗した関数形を FormFailure として記録し、探索を続ける
// 指定しない場合は最初の失敗で探索全体が中断される
func SkipFailures() CallOption {
	return func(c *callConfig) {
		c.skipFailures = true
	}
}
