package ulid

import (
	"errors"
	"testing"

	"github.com/mxfgo/mxf/mxferrs"
	"github.com/stretchr/testify/require"
)

func TestLabel_RoundTrip(t *testing.T) {
	data := make([]byte, LabelSize)
	for i := range data {
		data[i] = byte(i)
	}

	l, err := ParseLabel(data)
	require.NoError(t, err)
	require.Equal(t, data, l.Bytes())
}

func TestParseLabel_ShortRead(t *testing.T) {
	_, err := ParseLabel([]byte{1, 2, 3})
	require.Error(t, err)
	require.True(t, errors.Is(err, mxferrs.ErrShortRead))
}

func TestLabel_WriteToSlice(t *testing.T) {
	var l Label
	for i := range l {
		l[i] = byte(i + 1)
	}

	buf := make([]byte, 20)
	next := l.WriteToSlice(buf, 2)
	require.Equal(t, 2+LabelSize, next)
	require.Equal(t, l.Bytes(), buf[2:2+LabelSize])
}

func TestUUID_String(t *testing.T) {
	var u UUID
	for i := range u {
		u[i] = byte(i)
	}

	require.Equal(t, "00010203-0405-0607-0809-0a0b0c0d0e0f", u.String())
}

func TestUUID_IsZero(t *testing.T) {
	var u UUID
	require.True(t, u.IsZero())

	u[0] = 1
	require.False(t, u.IsZero())
}

func TestParseUMID_ShortRead(t *testing.T) {
	_, err := ParseUMID(make([]byte, 31))
	require.Error(t, err)
	require.True(t, errors.Is(err, mxferrs.ErrShortRead))
}

func TestRational_RoundTrip(t *testing.T) {
	cases := []Rational{
		{Numerator: 25, Denominator: 1},
		{Numerator: 30000, Denominator: 1001},
		{Numerator: -1, Denominator: 2},
	}

	for _, want := range cases {
		got, err := ParseRational(want.Bytes())
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestRational_Float64(t *testing.T) {
	r := Rational{Numerator: 30000, Denominator: 1001}
	require.InDelta(t, 29.97002997, r.Float64(), 1e-6)

	zero := Rational{Numerator: 1, Denominator: 0}
	require.Equal(t, float64(0), zero.Float64())
}

func TestTimestamp_RoundTrip(t *testing.T) {
	want := Timestamp{Year: 2024, Month: 3, Day: 15, Hour: 12, Minute: 30, Second: 45, Qmsec: 100}

	got, err := ParseTimestamp(want.Bytes())
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestTimestamp_WriteToSlice(t *testing.T) {
	ts := Timestamp{Year: 1999, Month: 12, Day: 31, Hour: 23, Minute: 59, Second: 59, Qmsec: 3}
	buf := make([]byte, 10)
	next := ts.WriteToSlice(buf, 1)
	require.Equal(t, 1+TimestampSize, next)

	got, err := ParseTimestamp(buf[1 : 1+TimestampSize])
	require.NoError(t, err)
	require.Equal(t, ts, got)
}
