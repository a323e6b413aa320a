package partition

import (
	"errors"
	"testing"

	"github.com/mxfgo/mxf/mxferrs"
	"github.com/stretchr/testify/require"
)

func TestStatusKindString(t *testing.T) {
	require.Equal(t, "OpenIncomplete", StatusOpenIncomplete.String())
	require.Equal(t, "ClosedComplete", StatusClosedComplete.String())
	require.Equal(t, "Unknown", Status(99).String())

	require.Equal(t, "Header", KindHeader.String())
	require.Equal(t, "Footer", KindFooter.String())
	require.Equal(t, "Unknown", Kind(99).String())
}

func TestValidate_AllTwelveCombinations(t *testing.T) {
	statuses := []Status{StatusOpenIncomplete, StatusOpenComplete, StatusClosedIncomplete, StatusClosedComplete}
	kinds := []Kind{KindHeader, KindBody, KindFooter}

	for _, status := range statuses {
		for _, kind := range kinds {
			require.NoError(t, Validate(status, kind))
		}
	}
}

func TestValidate_Invalid(t *testing.T) {
	err := Validate(Status(0), KindHeader)
	require.Error(t, err)
	require.True(t, errors.Is(err, mxferrs.ErrUnexpectedKey))

	err = Validate(StatusOpenIncomplete, Kind(0))
	require.Error(t, err)
	require.True(t, errors.Is(err, mxferrs.ErrUnexpectedKey))
}

func TestStatus_IsCompleteIsClosed(t *testing.T) {
	require.True(t, StatusOpenComplete.IsComplete())
	require.False(t, StatusOpenIncomplete.IsComplete())
	require.True(t, StatusClosedIncomplete.IsClosed())
	require.False(t, StatusOpenComplete.IsClosed())
}
