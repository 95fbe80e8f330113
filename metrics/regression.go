package metrics

import (
	"math"

	"github.com/YuminosukeSato/fitrank/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// validatePair は観測値と予測値の長さを検証する
func validatePair(op string, yTrue, yPred []float64) error {
	if len(yTrue) == 0 {
		return errors.NewValueError(op, "empty vector")
	}
	if len(yPred) != len(yTrue) {
		return errors.NewDimensionError(op, len(yTrue), len(yPred))
	}
	return nil
}

// SSE は残差平方和（Sum of Squared Errors）を計算する
// SSE = Σ(yTrue - yPred)²
func SSE(yTrue, yPred []float64) (float64, error) {
	if err := validatePair("SSE", yTrue, yPred); err != nil {
		return 0, err
	}

	var sum float64
	for i := range yTrue {
		diff := yTrue[i] - yPred[i]
		sum += diff * diff
	}
	return sum, nil
}

// SST は全平方和（Total Sum of Squares）を計算する
// SST = Σ(yTrue - mean(yTrue))²
func SST(yTrue []float64) (float64, error) {
	if len(yTrue) == 0 {
		return 0, errors.NewValueError("SST", "empty vector")
	}

	mean := stat.Mean(yTrue, nil)
	var sum float64
	for _, v := range yTrue {
		d := v - mean
		sum += d * d
	}
	return sum, nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred []float64) (float64, error) {
	sse, err := SSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return sse / float64(len(yTrue)), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred []float64) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred []float64) (float64, error) {
	if err := validatePair("MAE", yTrue, yPred); err != nil {
		return 0, err
	}

	// MAE = (1/n) * Σ|yTrue - yPred|
	var sum float64
	for i := range yTrue {
		sum += math.Abs(yTrue[i] - yPred[i])
	}
	return sum / float64(len(yTrue)), nil
}
