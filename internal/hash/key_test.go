package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLabel_Deterministic(t *testing.T) {
	var a, b [16]byte
	a[0], b[0] = 1, 1

	require.Equal(t, Label(a), Label(b))

	b[1] = 2
	require.NotEqual(t, Label(a), Label(b))
}

func TestString_Deterministic(t *testing.T) {
	require.Equal(t, String("Preface"), String("Preface"))
	require.NotEqual(t, String("Preface"), String("Identification"))
}
