package klvendian

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetLittleEndianEngine(t *testing.T) {
	engine := GetLittleEndianEngine()

	require.Implements(t, (*EndianEngine)(nil), engine)
	require.Equal(t, binary.LittleEndian, engine)

	var testValue uint16 = 0x0102
	bytes := make([]byte, 2)
	engine.PutUint16(bytes, testValue)
	require.Equal(t, byte(0x02), bytes[0], "little endian should put LSB first")
	require.Equal(t, byte(0x01), bytes[1], "little endian should put MSB second")
	require.Equal(t, testValue, engine.Uint16(bytes))
}

func TestGetBigEndianEngine(t *testing.T) {
	engine := GetBigEndianEngine()

	require.Implements(t, (*EndianEngine)(nil), engine)
	require.Equal(t, binary.BigEndian, engine)

	var testValue uint16 = 0x0102
	bytes := make([]byte, 2)
	engine.PutUint16(bytes, testValue)
	require.Equal(t, byte(0x01), bytes[0], "big endian should put MSB first")
	require.Equal(t, byte(0x02), bytes[1], "big endian should put LSB second")
	require.Equal(t, testValue, engine.Uint16(bytes))
}

func TestEngineForMarker(t *testing.T) {
	big, ok := EngineForMarker(IndirectMarkerBig)
	require.True(t, ok)
	require.Equal(t, GetBigEndianEngine(), big)

	little, ok := EngineForMarker(IndirectMarkerLittle)
	require.True(t, ok)
	require.Equal(t, GetLittleEndianEngine(), little)

	_, ok = EngineForMarker(0x00)
	require.False(t, ok)
}

func TestMarkerForEngine(t *testing.T) {
	require.Equal(t, byte(IndirectMarkerBig), MarkerForEngine(GetBigEndianEngine()))
	require.Equal(t, byte(IndirectMarkerLittle), MarkerForEngine(GetLittleEndianEngine()))
}

func TestMarkerRoundTrip(t *testing.T) {
	for _, engine := range []EndianEngine{GetBigEndianEngine(), GetLittleEndianEngine()} {
		marker := MarkerForEngine(engine)
		got, ok := EngineForMarker(marker)
		require.True(t, ok)
		require.Equal(t, engine, got)
	}
}
