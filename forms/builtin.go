package forms

import "math"

// Linear は y = a + b·x
type Linear struct{}

// NumParams は 2 (a, b)
func (Linear) NumParams() int { return 2 }

// Evaluate は a + b·x を計算する
func (Linear) Evaluate(x, params []float64) []float64 {
	a, b := params[0], params[1]
	return mapX(x, func(v float64) float64 { return a + b*v })
}

// InitialGuess は [1, 1]
func (Linear) InitialGuess(_, _ []float64) []float64 { return ones(2) }

// Exponential は y = a·e^(b·x) + c
type Exponential struct{}

// NumParams は 3 (a, b, c)
func (Exponential) NumParams() int { return 3 }

// Evaluate は a·e^(b·x) + c を計算する
func (Exponential) Evaluate(x, params []float64) []float64 {
	a, b, c := params[0], params[1], params[2]
	return mapX(x, func(v float64) float64 { return a*math.Exp(b*v) + c })
}

// InitialGuess は [1, 1, 1]
func (Exponential) InitialGuess(_, _ []float64) []float64 { return ones(3) }

// Logarithmic は y = a + b·ln(x)
// x <= 0 では NaN または -Inf になり、ここでは捕捉しない（ソルバーが DomainError として扱う）
type Logarithmic struct{}

// NumParams は 2 (a, b)
func (Logarithmic) NumParams() int { return 2 }

// Evaluate は a + b·ln(x) を計算する
func (Logarithmic) Evaluate(x, params []float64) []float64 {
	a, b := params[0], params[1]
	return mapX(x, func(v float64) float64 { return a + b*math.Log(v) })
}

// InitialGuess は [1, 1]
func (Logarithmic) InitialGuess(_, _ []float64) []float64 { return ones(2) }

// Quadratic は y = a + b·x + c·x²
type Quadratic struct{}

// NumParams は 3 (a, b, c)
func (Quadratic) NumParams() int { return 3 }

// Evaluate は a + b·x + c·x² を計算する
func (Quadratic) Evaluate(x, params []float64) []float64 {
	a, b, c := params[0], params[1], params[2]
	return mapX(x, func(v float64) float64 { return a + v*(b+c*v) })
}

// InitialGuess は [1, 1, 1]
func (Quadratic) InitialGuess(_, _ []float64) []float64 { return ones(3) }

// Power は y = a·x^b
// x < 0 で b が整数でない場合は NaN になる
type Power struct{}

// NumParams は 2 (a, b)
func (Power) NumParams() int { return 2 }

// Evaluate は a·x^b を計算する
func (Power) Evaluate(x, params []float64) []float64 {
	a, b := params[0], params[1]
	return mapX(x, func(v float64) float64 { return a * math.Pow(v, b) })
}

// InitialGuess は [1, 1]
func (Power) InitialGuess(_, _ []float64) []float64 { return ones(2) }
