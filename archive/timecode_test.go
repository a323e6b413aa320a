package archive

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTimecode_SMPTE12MRoundTrip(t *testing.T) {
	for _, df := range []bool{false, true} {
		for hour := 0; hour <= 23; hour += 7 {
			for min := 0; min <= 59; min += 11 {
				for sec := 0; sec <= 59; sec += 13 {
					for frame := 0; frame <= 39; frame += 3 {
						tc := Timecode{Hour: hour, Min: min, Sec: sec, Frame: frame, DropFrame: df}
						encoded := encode12M(tc)
						decoded := decode12M(encoded[:])
						require.Equal(t, tc, decoded, "round trip %+v", tc)
					}
				}
			}
		}
	}
}

func TestNextTimecode_CarriesAcrossUnits(t *testing.T) {
	require.Equal(t, Timecode{Sec: 1}, NextTimecode(Timecode{Frame: 24}))
	require.Equal(t, Timecode{Min: 1}, NextTimecode(Timecode{Sec: 59, Frame: 24}))
	require.Equal(t, Timecode{Hour: 1}, NextTimecode(Timecode{Min: 59, Sec: 59, Frame: 24}))
	require.Equal(t, Timecode{}, NextTimecode(Timecode{Hour: 23, Min: 59, Sec: 59, Frame: 24}))
}

func TestTimecode_IsValid(t *testing.T) {
	require.False(t, Timecode{}.IsValid())
	require.True(t, Timecode{Frame: 1}.IsValid())
}
