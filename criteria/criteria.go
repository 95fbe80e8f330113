// Package criteria はフィット結果を比較するためのモデル選択基準を提供する
//
// 各基準は (観測値, 予測値, パラメータ数) の純関数。SSE = 0 による ln(0) や
// SST = 0 によるゼロ除算はエラーにせず、±Inf / NaN をそのまま返す。
package criteria

import (
	"math"

	"github.com/YuminosukeSato/fitrank/core/registry"
	"github.com/YuminosukeSato/fitrank/metrics"
	"github.com/YuminosukeSato/fitrank/pkg/errors"
)

// 組み込み基準の登録名
const (
	AIC              = "aic"
	BIC              = "bic"
	RSquared         = "r_squared"
	AICc             = "aicc"
	AdjustedRSquared = "adj_r_squared"
	RMSE             = "rmse"
	MAE              = "mae"
)

// Criterion はモデル選択基準のインターフェース
type Criterion interface {
	// Evaluate は基準値を計算する。空入力と長さ不一致のみエラーになる
	Evaluate(y, yPred []float64, numParams int) (float64, error)
}

// Registry は選択基準のレジストリ
type Registry = registry.Registry[Criterion]

// NewRegistry は空のレジストリを作成する
func NewRegistry() *Registry {
	return registry.New[Criterion]("criterion")
}

// NewDefaultRegistry は aic, bic, r_squared をこの順で登録する
func NewDefaultRegistry() *Registry {
	return NewRegistry().
		MustRegister(AIC, AICCriterion{}).
		MustRegister(BIC, BICCriterion{}).
		MustRegister(RSquared, RSquaredCriterion{})
}

// NewExtendedRegistry は組み込み基準に aicc, adj_r_squared, rmse, mae を加える
func NewExtendedRegistry() *Registry {
	return NewDefaultRegistry().
		MustRegister(AICc, AICcCriterion{}).
		MustRegister(AdjustedRSquared, AdjustedRSquaredCriterion{}).
		MustRegister(RMSE, RMSECriterion{}).
		MustRegister(MAE, MAECriterion{})
}

// logLikelihoodTerm は n·ln(SSE/n)
func logLikelihoodTerm(y, yPred []float64) (float64, error) {
	sse, err := metrics.SSE(y, yPred)
	if err != nil {
		return 0, err
	}
	n := float64(len(y))
	return n * math.Log(sse/n), nil
}

// AICCriterion は赤池情報量規準 AIC = 2k + n·ln(SSE/n)
type AICCriterion struct{}

// Evaluate は AIC を計算する
func (AICCriterion) Evaluate(y, yPred []float64, numParams int) (float64, error) {
	ll, err := logLikelihoodTerm(y, yPred)
	if err != nil {
		return 0, err
	}
	return 2*float64(numParams) + ll, nil
}

// BICCriterion はベイズ情報量規準 BIC = k·ln(n) + n·ln(SSE/n)
type BICCriterion struct{}

// Evaluate は BIC を計算する
func (BICCriterion) Evaluate(y, yPred []float64, numParams int) (float64, error) {
	ll, err := logLikelihoodTerm(y, yPred)
	if err != nil {
		return 0, err
	}
	return float64(numParams)*math.Log(float64(len(y))) + ll, nil
}

// RSquaredCriterion は決定係数 R² = 1 - SSE/SST
// パラメータ数は使用しない
type RSquaredCriterion struct{}

// Evaluate は R² を計算する
// SST = 0 の場合は -Inf または NaN をそのまま返し、UndefinedMetricWarning を出す
func (RSquaredCriterion) Evaluate(y, yPred []float64, _ int) (float64, error) {
	return rSquared(RSquared, y, yPred)
}

func rSquared(name string, y, yPred []float64) (float64, error) {
	sse, err := metrics.SSE(y, yPred)
	if err != nil {
		return 0, err
	}
	sst, err := metrics.SST(y)
	if err != nil {
		return 0, err
	}

	r2 := 1 - sse/sst
	if sst == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning(name, "zero total sum of squares (constant y)", r2))
	}
	return r2, nil
}
