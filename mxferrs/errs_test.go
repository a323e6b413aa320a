package mxferrs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinelWrapping(t *testing.T) {
	wrapped := fmt.Errorf("%w: offset %d", ErrPartitionNotFound, 1024)
	require.True(t, errors.Is(wrapped, ErrPartitionNotFound))
	require.False(t, errors.Is(wrapped, ErrUnknownSet))
}

func TestStateError_Error(t *testing.T) {
	cases := []struct {
		name string
		err  *StateError
		want string
	}{
		{
			name: "with want and got",
			err:  NewStateError("writeAudio", "videoWritten", "initial"),
			want: "mxf: writeAudio: expected state videoWritten, got initial",
		},
		{
			name: "bare op",
			err:  &StateError{Op: "complete"},
			want: "mxf: complete called in invalid state",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestStateError_NotSentinelComparable(t *testing.T) {
	var err error = NewStateError("seek", "open", "closed")
	var target *StateError
	require.True(t, errors.As(err, &target))
	require.Equal(t, "seek", target.Op)
}
