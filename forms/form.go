// Package forms は曲線フィッティングの候補となるパラメトリックな関数形を提供する
//
// 各関数形は評価規則（x とパラメータから予測値）と初期値規則（x, y から
// パラメータの初期推定値）を持つ。パラメータ数は NumParams で明示的に宣言し、
// 初期値の長さとの整合は CheckArity で検証する。
package forms

import (
	"github.com/YuminosukeSato/fitrank/core/parallel"
	"github.com/YuminosukeSato/fitrank/core/registry"
	"github.com/YuminosukeSato/fitrank/pkg/errors"
)

// 組み込み関数形の登録名
const (
	LinearName      = "linear"
	ExponentialName = "exponential"
	LogarithmicName = "logarithmic"
	QuadraticName   = "quadratic"
	PowerName       = "power"
)

// parallelThreshold を超える長さの x は要素ごとの評価を並列化する
const parallelThreshold = 10000

// Form はパラメトリックな関数形のインターフェース
// 実装はステートレスであること
type Form interface {
	// NumParams はパラメータ数を返す
	NumParams() int

	// Evaluate は x の各要素に関数形を適用し、同じ長さの予測値を返す
	Evaluate(x, params []float64) []float64

	// InitialGuess はソルバーに渡すパラメータの初期推定値を返す
	InitialGuess(x, y []float64) []float64
}

// Registry は関数形のレジストリ
type Registry = registry.Registry[Form]

// NewRegistry は空のレジストリを作成する
func NewRegistry() *Registry {
	return registry.New[Form]("form")
}

// NewDefaultRegistry は組み込みの3つの関数形を linear, exponential, logarithmic の順で登録する
func NewDefaultRegistry() *Registry {
	return NewRegistry().
		MustRegister(LinearName, Linear{}).
		MustRegister(ExponentialName, Exponential{}).
		MustRegister(LogarithmicName, Logarithmic{})
}

// NewExtendedRegistry は組み込みの関数形に quadratic と power を加える
func NewExtendedRegistry() *Registry {
	return NewDefaultRegistry().
		MustRegister(QuadraticName, Quadratic{}).
		MustRegister(PowerName, Power{})
}

// CheckArity は初期値ベクトルの長さが宣言されたパラメータ数と一致するか検証する
func CheckArity(name string, f Form, guess []float64) error {
	if len(guess) != f.NumParams() {
		return errors.NewArityMismatchError(name, f.NumParams(), len(guess))
	}
	return nil
}

// Predict はパラメータ数を検証してから Evaluate を呼ぶ
func Predict(name string, f Form, x, params []float64) ([]float64, error) {
	if len(params) != f.NumParams() {
		return nil, errors.NewArityMismatchError(name, f.NumParams(), len(params))
	}
	return f.Evaluate(x, params), nil
}

// mapX は fn を x の各要素に適用する
func mapX(x []float64, fn func(float64) float64) []float64 {
	out := make([]float64, len(x))
	parallel.ParallelizeWithThreshold(len(x), parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = fn(x[i])
		}
	})
	return out
}

// ones は長さ n の 1 埋めベクトル
func ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}
