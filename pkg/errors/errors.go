// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// 関数形の探索・フィッティング・評価で発生する失敗を構造化されたエラー型として表現します。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("fitrank-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nilを渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// ConvergenceWarning はソルバーが収束判定を満たさずに終了した場合の警告です。
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s stopped after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s stopped after %d iterations. Consider increasing the iteration budget.", w.Algorithm, w.Iterations)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning は新しいConvergenceWarningを作成します。
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// UndefinedMetricWarning は評価指標が数値的に定義できない場合に発生する警告です。
// 例えば、観測値が全て同じ値でSSTが0になる場合のR²など。値自体は置き換えずにそのまま返します。
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64 // この条件で返される値
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is ill-defined and evaluates to %v due to %s.", w.Metric, w.Result, w.Condition)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *UndefinedMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("metric", w.Metric).
		Str("condition", w.Condition).
		Float64("result", w.Result).
		Str("type", "UndefinedMetricWarning")
}

// NewUndefinedMetricWarning は新しいUndefinedMetricWarningを作成します。
func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrNotFound はレジストリに名前が登録されていない場合のエラーです。
	ErrNotFound = New("not found")

	// ErrArityMismatch は初期値ベクトルの長さがパラメータ数と一致しない場合のエラーです。
	ErrArityMismatch = New("arity mismatch")

	// ErrConvergence はソルバーが収束しなかった場合のエラーです。
	ErrConvergence = New("convergence failure")

	// ErrDomain は評価関数がデータに対して定義されない場合のエラーです。
	ErrDomain = New("domain error")

	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix は特異行列の場合のエラーです。
	ErrSingularMatrix = New("singular matrix")
)

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// NotFoundError はレジストリに存在しない関数形や評価基準の名前が要求された場合のエラーです。
type NotFoundError struct {
	Kind string // "form" or "criterion"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("fitrank: %s '%s' not found", e.Kind, e.Name)
}

// Is は errors.Is(err, ErrNotFound) を成立させます。
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFoundError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("kind", e.Kind).
		Str("name", e.Name).
		Str("type", "NotFoundError")
}

// NewNotFoundError は新しいNotFoundErrorを作成し、スタックトレースを付与します。
func NewNotFoundError(kind, name string) error {
	return errors.WithStack(&NotFoundError{Kind: kind, Name: name})
}

// ArityMismatchError は関数形の初期値ベクトルの長さが宣言されたパラメータ数と異なる場合のエラーです。
// 正しく実装された関数形では発生しないプログラミングエラーです。
type ArityMismatchError struct {
	Form     string
	Expected int
	Got      int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("fitrank: form '%s' declares %d parameters but its initial guess has %d", e.Form, e.Expected, e.Got)
}

// Is は errors.Is(err, ErrArityMismatch) を成立させます。
func (e *ArityMismatchError) Is(target error) bool {
	return target == ErrArityMismatch
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ArityMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("form", e.Form).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Str("type", "ArityMismatchError")
}

// NewArityMismatchError は新しいArityMismatchErrorを作成し、スタックトレースを付与します。
func NewArityMismatchError(form string, expected, got int) error {
	return errors.WithStack(&ArityMismatchError{Form: form, Expected: expected, Got: got})
}

// ConvergenceError はソルバーが反復回数の上限内に収束できなかった場合のエラーです。
type ConvergenceError struct {
	Solver     string
	Iterations int
	Cost       float64 // 終了時点の残差平方和
	Reason     string
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("fitrank: %s failed to converge after %d iterations (cost=%.6g): %s",
		e.Solver, e.Iterations, e.Cost, e.Reason)
}

// Is は errors.Is(err, ErrConvergence) を成立させます。
func (e *ConvergenceError) Is(target error) bool {
	return target == ErrConvergence
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ConvergenceError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("solver", e.Solver).
		Int("iterations", e.Iterations).
		Float64("cost", e.Cost).
		Str("reason", e.Reason).
		Str("type", "ConvergenceError")
}

// NewConvergenceError は新しいConvergenceErrorを作成し、スタックトレースを付与します。
func NewConvergenceError(solver string, iterations int, cost float64, reason string) error {
	return errors.WithStack(&ConvergenceError{Solver: solver, Iterations: iterations, Cost: cost, Reason: reason})
}

// DomainError は評価関数が与えられたデータやパラメータで定義されない場合のエラーです。
// 例えば、対数形に0以下のxを与えた場合など。
type DomainError struct {
	Op     string
	Reason string
	Values []float64 // 問題のある値（先頭の数件）
}

func (e *DomainError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	if valStr == "" {
		return fmt.Sprintf("fitrank: %s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("fitrank: %s: %s. Values: [%s]", e.Op, e.Reason, valStr)
}

// Is は errors.Is(err, ErrDomain) を成立させます。
func (e *DomainError) Is(target error) bool {
	return target == ErrDomain
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DomainError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("reason", e.Reason).
		Floats64("values", e.Values).
		Str("type", "DomainError")
}

// NewDomainError は新しいDomainErrorを作成し、スタックトレースを付与します。
func NewDomainError(op, reason string, values []float64) error {
	return errors.WithStack(&DomainError{Op: op, Reason: reason, Values: values})
}

// DimensionError は入力データの長さが期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("fitrank: %s: length mismatch. Expected %d, got %d", e.Op, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got})
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("fitrank: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{ParamName: param, Reason: reason, Value: value})
}

// ValueError は引数の値が不適切な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("fitrank: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Mark は err に reference の同一性を付与します。
// 戻り値は errors.Is(_, reference) でも元のエラーとしても判定できます。
func Mark(err, reference error) error {
	return errors.Mark(err, reference)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}
