package registry

import (
	"testing"

	"github.com/YuminosukeSato/fitrank/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect[T any](r *Registry[T]) ([]string, []T) {
	var names []string
	var values []T
	for name, v := range r.All() {
		names = append(names, name)
		values = append(values, v)
	}
	return names, values
}

func TestRegistryInsertionOrder(t *testing.T) {
	r := New[int]("form")
	require.NoError(t, r.Register("linear", 1))
	require.NoError(t, r.Register("exponential", 2))
	require.NoError(t, r.Register("logarithmic", 3))

	names, values := collect(r)
	assert.Equal(t, []string{"linear", "exponential", "logarithmic"}, names)
	assert.Equal(t, []int{1, 2, 3}, values)
	assert.Equal(t, 3, r.Len())

	// 再実行可能
	again, _ := collect(r)
	assert.Equal(t, names, again)
}

func TestRegistryOverwriteKeepsPosition(t *testing.T) {
	r := New[string]("criterion")
	r.MustRegister("aic", "a").MustRegister("bic", "b")
	require.NoError(t, r.Register("aic", "a2"))

	names, values := collect(r)
	assert.Equal(t, []string{"aic", "bic"}, names)
	assert.Equal(t, []string{"a2", "b"}, values)
}

func TestRegistryGet(t *testing.T) {
	r := New[int]("form").MustRegister("linear", 7)

	v, err := r.Get("linear")
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = r.Get("cubic")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	var nf *errors.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "form", nf.Kind)
	assert.Equal(t, "cubic", nf.Name)

	// 失敗した参照はレジストリを変更しない
	assert.Equal(t, 1, r.Len())
	assert.False(t, r.Has("cubic"))
}

func TestRegistryRejectsEmptyName(t *testing.T) {
	r := New[int]("form")
	assert.Error(t, r.Register("", 1))
	assert.Panics(t, func() { r.MustRegister("", 1) })
	assert.Equal(t, 0, r.Len())
}

func TestRegistryEarlyBreak(t *testing.T) {
	r := New[int]("form").MustRegister("a", 1).MustRegister("b", 2).MustRegister("c", 3)

	var seen []string
	for name := range r.All() {
		seen = append(seen, name)
		if name == "b" {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestRegistryNamesIsCopy(t *testing.T) {
	r := New[int]("form").MustRegister("a", 1)
	names := r.Names()
	names[0] = "mutated"
	assert.Equal(t, []string{"a"}, r.Names())
	assert.Equal(t, "form", r.Kind())
}
