package shared

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString(t *testing.T) {
	a, err := MakeRandHexString(20)
	require.NoError(t, err)
	require.Len(t, a, 40)
	_, err = hex.DecodeString(a)
	require.NoError(t, err)

	b, err := MakeRandHexString(20)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestWipeByteArray(t *testing.T) {
	b := []byte("s3cret")
	WipeByteArray(b)
	require.Equal(t, make([]byte, 6), b)

	WipeByteArray(nil)
}
