package forms

// Func はスカラー関数から Form を組み立てるアダプタ
// 組み込み以外の関数形を既存エントリに手を加えずにレジストリへ追加するために使う
//
// 使用例:
//
//	reg := forms.NewDefaultRegistry()
//	reg.Register("sqrt", forms.Func{
//	    Params: 2,
//	    Fn:     func(x float64, p []float64) float64 { return p[0] + p[1]*math.Sqrt(x) },
//	})
type Func struct {
	// Params はパラメータ数
	Params int
	// Fn は1点での評価規則
	Fn func(x float64, params []float64) float64
	// Guess は初期値規則。nil の場合は全て 1
	Guess func(x, y []float64) []float64
}

// NumParams は Params を返す
func (f Func) NumParams() int { return f.Params }

// Evaluate は Fn を x の各要素に適用する
func (f Func) Evaluate(x, params []float64) []float64 {
	return mapX(x, func(v float64) float64 { return f.Fn(v, params) })
}

// InitialGuess は Guess の結果、または長さ Params の 1 埋めベクトルを返す
func (f Func) InitialGuess(x, y []float64) []float64 {
	if f.Guess != nil {
		return f.Guess(x, y)
	}
	return ones(f.Params)
}
