package keys

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"nsigner.lol/signer"
)

const g = "79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"

func TestParseSecretHex(t *testing.T) {
	sec := make([]byte, 32)
	require.NoError(t, ParseSecretHex(strings.Repeat("01", 32), sec))
	require.Equal(t, byte(1), sec[31])
	require.NoError(t, ParseSecretHex(" "+strings.Repeat("AB", 32)+"\n", sec))
	require.Equal(t, byte(0xab), sec[0])

	for in, want := range map[string]error{
		strings.Repeat("0", 64): signer.ErrInvalidSecretKey,
		"fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141": signer.ErrInvalidSecretKey,
		strings.Repeat("0", 63):  ErrSecretHex,
		strings.Repeat("zz", 32): ErrSecretHex,
		// decoding stops after writing the valid prefix
		strings.Repeat("ab", 31) + "zz": ErrSecretHex,
	} {
		copy(sec, strings.Repeat("x", 32))
		require.ErrorIs(t, ParseSecretHex(in, sec), want, in)
		require.Equal(t, make([]byte, 32), sec, in)
	}
}

func TestParsePublicHex(t *testing.T) {
	pub, err := ParsePublicHex(strings.ToUpper(g))
	require.NoError(t, err)
	require.Equal(t, g, PublicHex(pub))
	norm, err := NormalizePublicHex(strings.ToUpper(g))
	require.NoError(t, err)
	require.Equal(t, g, norm)
	_, err = ParsePublicHex(strings.Repeat("0", 64))
	require.ErrorIs(t, err, signer.ErrInvalidPublicKey)
	_, err = ParsePublicHex(g[:62])
	require.ErrorIs(t, err, ErrPublicHex)
}

func TestIsValid32ByteHex(t *testing.T) {
	require.True(t, IsValid32ByteHex(g))
	require.False(t, IsValid32ByteHex(strings.ToUpper(g)))
	require.False(t, IsValid32ByteHex(g[:10]))
}
