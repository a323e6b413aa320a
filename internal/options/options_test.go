package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type target struct {
	value int
}

func TestApply_NoError(t *testing.T) {
	tgt := &target{}
	opt := NoError[*target](func(t *target) { t.value = 5 })

	require.NoError(t, Apply(tgt, opt))
	require.Equal(t, 5, tgt.value)
}

func TestApply_StopsOnFirstError(t *testing.T) {
	tgt := &target{}
	boom := errors.New("boom")

	calls := 0
	first := New[*target](func(t *target) error {
		calls++
		t.value = 1
		return nil
	})
	second := New[*target](func(t *target) error {
		calls++
		return boom
	})
	third := New[*target](func(t *target) error {
		calls++
		t.value = 99
		return nil
	})

	err := Apply(tgt, first, second, third)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 2, calls)
	require.Equal(t, 1, tgt.value)
}
