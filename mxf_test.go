package mxf

import (
	"testing"

	"github.com/mxfgo/mxf/partition"
	"github.com/mxfgo/mxf/ulid"
	"github.com/stretchr/testify/require"
)

func TestConvertEditRate_RoundTrip(t *testing.T) {
	video := ulid.Rational{Numerator: 25, Denominator: 1}
	audio := ulid.Rational{Numerator: 48000, Denominator: 1}

	const n = 125 // exactly representable: 125 video frames is a whole number of audio samples' worth of time

	converted := ConvertEditRate(n, video, audio)
	back := ConvertEditRate(converted, audio, video)
	require.Equal(t, int64(n), back)
}

func TestConvertEditRate_HalfUpRounding(t *testing.T) {
	from := ulid.Rational{Numerator: 2, Denominator: 1}
	to := ulid.Rational{Numerator: 1, Denominator: 1}

	// position=1 at rate 2/1 -> 0.5 at rate 1/1, rounds away from zero to 1.
	require.Equal(t, int64(1), ConvertEditRate(1, from, to))
}

func TestConvertEditRate_Identity(t *testing.T) {
	rate := ulid.Rational{Numerator: 25, Denominator: 1}
	require.Equal(t, int64(42), ConvertEditRate(42, rate, rate))
}

func TestEnvelope_FinalizeUpdatesPartitionsAndBuildsRIP(t *testing.T) {
	e := NewEnvelope()

	header := &partition.Pack{Status: partition.StatusClosedComplete, Kind: partition.KindHeader}
	body := &partition.Pack{Status: partition.StatusClosedComplete, Kind: partition.KindBody}
	footer := &partition.Pack{Status: partition.StatusClosedComplete, Kind: partition.KindFooter}

	e.RecordPartition(header, 0, 0)
	e.RecordPartition(body, 1024, 1)
	e.RecordPartition(footer, 8192, 0)

	ripPack, err := e.Finalize()
	require.NoError(t, err)

	require.Equal(t, uint64(8192), header.FooterPartition)
	require.Equal(t, uint64(1024), body.ThisPartition)
	require.Equal(t, uint64(0), body.PreviousPartition)
	require.Equal(t, uint64(1024), footer.PreviousPartition)

	require.Len(t, ripPack.Entries, 3)
	require.Equal(t, uint32(1), ripPack.Entries[1].BodySID)
	require.Equal(t, uint64(8192), ripPack.Entries[2].PartitionOffset)
}
