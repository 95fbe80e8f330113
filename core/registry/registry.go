// Package registry は名前付きエントリを挿入順で保持する汎用レジストリを提供する
package registry

import (
	"iter"
	"sync"

	"github.com/YuminosukeSato/fitrank/pkg/errors"
)

// Registry は名前からインスタンスへの挿入順マッピング
//
// 登録は初期化時に行い、その後は読み取り専用で使うことを想定している。
// 既存エントリを変更せずに新しい名前を追加できる。
type Registry[T any] struct {
	mu      sync.RWMutex
	kind    string
	names   []string
	entries map[string]T
}

// New は空のレジストリを作成する。kind は NotFoundError に表示される種別名
func New[T any](kind string) *Registry[T] {
	return &Registry[T]{
		kind:    kind,
		entries: make(map[string]T),
	}
}

// Register はエントリを追加する。同名の場合は上書きし、位置は最初の登録位置のまま
func (r *Registry[T]) Register(name string, v T) error {
	if name == "" {
		return errors.NewValidationError("name", "must not be empty", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; !exists {
		r.names = append(r.names, name)
	}
	r.entries[name] = v
	return nil
}

// MustRegister は Register と同じだが失敗時に panic する。組み込みエントリの初期化用
func (r *Registry[T]) MustRegister(name string, v T) *Registry[T] {
	if err := r.Register(name, v); err != nil {
		panic(err)
	}
	return r
}

// Get は名前に対応するインスタンスを返す。存在しない場合は NotFoundError
func (r *Registry[T]) Get(name string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.entries[name]
	if !ok {
		var zero T
		return zero, errors.NewNotFoundError(r.kind, name)
	}
	return v, nil
}

// Has は名前が登録されているかを返す
func (r *Registry[T]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// All は (名前, インスタンス) を挿入順に返すイテレータ
// 何度でも再実行でき、呼び出し時点の名前一覧を走査する
func (r *Registry[T]) All() iter.Seq2[string, T] {
	return func(yield func(string, T) bool) {
		for _, name := range r.Names() {
			v, err := r.Get(name)
			if err != nil {
				continue
			}
			if !yield(name, v) {
				return
			}
		}
	}
}

// Names は登録名を挿入順で返す（コピー）
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Len は登録数を返す
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// Kind はレジストリの種別名を返す
func (r *Registry[T]) Kind() string {
	return r.kind
}
