package sharedinfo

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeWithoutUKM(t *testing.T) {
	der, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "3019300f060b2a862402010101010101050500a206040400000100", hex.EncodeToString(der))
}

func TestEncodeWithUKM(t *testing.T) {
	ukm := make([]byte, 32)
	for i := range ukm {
		ukm[i] = byte(i + 1)
	}

	der, err := Encode(ukm)
	require.NoError(t, err)
	assert.Equal(t,
		"303d300f060b2a862402010101010101050500"+
			"a0220420"+hex.EncodeToString(ukm)+
			"a206040400000100",
		hex.EncodeToString(der))
}

func TestDecodeRoundTrip(t *testing.T) {
	for _, ukm := range [][]byte{nil, {0x42}, bytes.Repeat([]byte{0xA5}, 64)} {
		der, err := Encode(ukm)
		require.NoError(t, err)

		info, err := Decode(der)
		require.NoError(t, err)
		assert.True(t, info.Algorithm.Equal(OIDGost28147CFBWrap))
		assert.Equal(t, SuppPubInfo, info.SuppPubInfo)
		if len(ukm) == 0 {
			assert.Nil(t, info.EntityUInfo)
		} else {
			assert.Equal(t, ukm, info.EntityUInfo)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	valid, err := Encode(nil)
	require.NoError(t, err)

	for name, der := range map[string][]byte{
		"empty":     nil,
		"truncated": valid[:len(valid)-2],
		"trailing":  append(append([]byte(nil), valid...), 0x00),
		"not a seq": {0x04, 0x00},
	} {
		_, err := Decode(der)
		assert.Error(t, err, name)
	}
}
