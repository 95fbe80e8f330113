package criteria

import (
	"math"

	"github.com/YuminosukeSato/fitrank/metrics"
)

// AICcCriterion は小標本補正付き AIC
// AICc = AIC + 2k(k+1)/(n-k-1)。
// n-k-1 <= 0 では補正項が定義できないため +Inf を返す
type AICcCriterion struct{}

// Evaluate は AICc を計算する
func (AICcCriterion) Evaluate(y, yPred []float64, numParams int) (float64, error) {
	aic, err := AICCriterion{}.Evaluate(y, yPred, numParams)
	if err != nil {
		return 0, err
	}
	k := float64(numParams)
	denom := float64(len(y)) - k - 1
	if denom <= 0 {
		return math.Inf(1), nil
	}
	return aic + 2*k*(k+1)/denom, nil
}

// AdjustedRSquaredCriterion はパラメータ数で罰則を加えた R²
// 1 - (1-R²)(n-1)/(n-k-1)
type AdjustedRSquaredCriterion struct{}

// Evaluate は自由度調整済み R² を計算する。n-k-1 <= 0 では NaN
func (AdjustedRSquaredCriterion) Evaluate(y, yPred []float64, numParams int) (float64, error) {
	r2, err := rSquared(AdjustedRSquared, y, yPred)
	if err != nil {
		return 0, err
	}
	n := float64(len(y))
	denom := n - float64(numParams) - 1
	if denom <= 0 {
		return math.NaN(), nil
	}
	return 1 - (1-r2)*(n-1)/denom, nil
}

// RMSECriterion は二乗平均平方根誤差。パラメータ数は使わない
type RMSECriterion struct{}

// Evaluate は RMSE を計算する
func (RMSECriterion) Evaluate(y, yPred []float64, _ int) (float64, error) {
	return metrics.RMSE(y, yPred)
}

// MAECriterion は平均絶対誤差。パラメータ数は使わない
type MAECriterion struct{}

// Evaluate は MAE を計算する
func (MAECriterion) Evaluate(y, yPred []float64, _ int) (float64, error) {
	return metrics.MAE(y, yPred)
}
