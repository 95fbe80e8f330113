package fitting

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/YuminosukeSato/fitrank/criteria"
)

// FitResult は1つの関数形に対するフィット結果
// 生成後は変更されず、アクセサはコピーを返す
type FitResult struct {
	form       string
	params     []float64
	yPred      []float64
	scores     map[string]float64
	criteria   []string
	rSquared   float64
	iterations int
	cost       float64
}

// Form はフィットした関数形の登録名を返す
func (r *FitResult) Form() string { return r.form }

// Params はフィット済みパラメータを返す
func (r *FitResult) Params() []float64 { return slices.Clone(r.params) }

// YPred はフィット済みパラメータから再計算した予測値を返す
func (r *FitResult) YPred() []float64 { return slices.Clone(r.yPred) }

// Scores は要求された基準名から値へのマップを返す
func (r *FitResult) Scores() map[string]float64 { return maps.Clone(r.scores) }

// Score は基準名 name の値を返す。要求されていない基準の場合 ok は false
func (r *FitResult) Score(name string) (float64, bool) {
	v, ok := r.scores[name]
	return v, ok
}

// Criteria は Scores に含まれる基準名をレジストリ順で返す
func (r *FitResult) Criteria() []string { return slices.Clone(r.criteria) }

// RSquared はランキングに使う決定係数を返す
// 要求された基準に r_squared が含まれていなくても常に計算される
func (r *FitResult) RSquared() float64 { return r.rSquared }

// Iterations はソルバーの反復回数を返す
func (r *FitResult) Iterations() int { return r.iterations }

// Cost はフィット済みパラメータでの残差平方和を返す
func (r *FitResult) Cost() float64 { return r.cost }

// String は "form params=[...] r_squared=... aic=..." の形式で結果を表す
func (r *FitResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s params=%.6g r_squared=%.6g", r.form, r.params, r.rSquared)
	for _, name := range r.criteria {
		if name == criteria.RSquared {
			continue
		}
		fmt.Fprintf(&b, " %s=%.6g", name, r.scores[name])
	}
	return b.String()
}

// FormFailure はスキップされた関数形とその失敗理由
type FormFailure struct {
	Form string
	Err  error
}

// SearchReport は Search の結果
type SearchReport struct {
	// Results は R² の降順に並んだフィット結果
	Results []*FitResult
	// Failures は SkipFailures 指定時に失敗した関数形（レジストリ順）
	Failures []FormFailure
}

// Best は R² が最大の結果を返す
func (r *SearchReport) Best() (*FitResult, bool) {
	if r == nil || len(r.Results) == 0 {
		return nil, false
	}
	return r.Results[0], true
}

// sortResults は R² の降順に安定ソートする。同値はレジストリ順を保つ
func sortResults(results []*FitResult) {
	slices.SortStableFunc(results, byRSquaredDesc)
}

// byRSquaredDesc は R² の降順。NaN は最後
func byRSquaredDesc(a, b *FitResult) int {
	aNaN, bNaN := math.IsNaN(a.rSquared), math.IsNaN(b.rSquared)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	}
	return cmp.Compare(b.rSquared, a.rSquared)
}
