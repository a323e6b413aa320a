package datamodel

import (
	"errors"
	"testing"

	"github.com/mxfgo/mxf/mxferrs"
	"github.com/mxfgo/mxf/ulid"
	"github.com/stretchr/testify/require"
)

func TestInstanceUIDTracker_DetectsDuplicate(t *testing.T) {
	tr := NewInstanceUIDTracker()

	var id ulid.UUID
	id[0] = 7

	require.NoError(t, tr.Track(id))
	err := tr.Track(id)
	require.Error(t, err)
	require.True(t, errors.Is(err, mxferrs.ErrDuplicateTag))
}

func TestInstanceUIDTracker_DistinctIDsOK(t *testing.T) {
	tr := NewInstanceUIDTracker()

	var a, b ulid.UUID
	a[0], b[0] = 1, 2

	require.NoError(t, tr.Track(a))
	require.NoError(t, tr.Track(b))
	require.Equal(t, 2, tr.Count())
}
