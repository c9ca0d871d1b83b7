package nip04

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"
)

func TestGoldenZeroPadding(t *testing.T) {
	key := make([]byte, KeyLen)
	iv := make([]byte, IVLen)
	ct, err := Encrypt(key, iv, []byte("hello"))
	require.NoError(t, err)
	// a PKCS7 padded "hello" encrypts to a different block
	require.Equal(t, "6eb480c0f89d18db7455ac38df43f21f", hex.EncodeToString(ct))
	require.Equal(t, "brSAwPidGNt0Vaw430PyHw==", Seal(ct, iv).Ciphertext)
	plain, err := Decrypt(key, iv, ct)
	require.NoError(t, err)
	require.Len(t, plain, IVLen)
	require.Equal(t, "hello", string(Trim(plain)))
}

func TestRoundTrip(t *testing.T) {
	key := frand.Bytes(KeyLen)
	for _, n := range []int{1, 15, 16, 17, 31, 32, 33, 1000} {
		msg := frand.Bytes(n)
		msg[n-1] |= 1
		iv := frand.Bytes(IVLen)
		ct, err := Encrypt(key, iv, msg)
		require.NoError(t, err)
		require.Equal(t, PaddedLen(n), len(ct))
		env, err := ParseEnvelope(Seal(ct, iv).String())
		require.NoError(t, err)
		ct2, iv2, err := env.Decode()
		require.NoError(t, err)
		plain, err := Decrypt(key, iv2, ct2)
		require.NoError(t, err)
		require.True(t, bytes.Equal(msg, Trim(plain)))
	}
}

func TestTrailingZeroIsLost(t *testing.T) {
	key := make([]byte, KeyLen)
	iv := make([]byte, IVLen)
	ct, err := Encrypt(key, iv, []byte{'a', 0})
	require.NoError(t, err)
	plain, err := Decrypt(key, iv, ct)
	require.NoError(t, err)
	require.Equal(t, []byte{'a'}, Trim(plain))
}

func TestPaddedLen(t *testing.T) {
	for n, want := range map[int]int{0: 16, 1: 16, 16: 16, 17: 32, 32: 32} {
		require.Equal(t, want, PaddedLen(n), "n=%d", n)
	}
}

func TestParseEnvelope(t *testing.T) {
	cases := []struct {
		in  string
		err error
	}{
		{"brSAwPidGNt0Vaw430PyHw==?iv=AAAAAAAAAAAAAAAAAAAAAA==", nil},
		{"brSAwPidGNt0Vaw430PyHw==", ErrMalformed},
		{"?iv=AAAAAAAAAAAAAAAAAAAAAA==", ErrMalformed},
		{"brSAwPidGNt0Vaw430PyHw==?iv=", ErrMalformed},
		// never decoded: this is not valid base64 at all
		{"brSAwPidGNt0Vaw430PyHw==?iv=" + strings.Repeat("!", MaxIVEncodedLen+1), ErrIVTooLong},
	}
	for _, c := range cases {
		_, err := ParseEnvelope(c.in)
		if c.err == nil {
			require.NoError(t, err, c.in)
			continue
		}
		require.ErrorIs(t, err, c.err, c.in)
	}
}

func TestDecodeRejectsShortIV(t *testing.T) {
	env := Envelope{Ciphertext: "brSAwPidGNt0Vaw430PyHw==", IV: "AAAAAAAAAAAAAAAAAAAA"}
	_, _, err := env.Decode()
	require.True(t, errors.Is(err, ErrInvalidIV))
}

func TestDecodeRejectsPartialBlock(t *testing.T) {
	env := Seal([]byte{1, 2, 3}, make([]byte, IVLen))
	_, _, err := env.Decode()
	require.ErrorIs(t, err, ErrCiphertext)
}

func TestIdentityHash(t *testing.T) {
	x := frand.Bytes(KeyLen)
	out := make([]byte, KeyLen)
	require.True(t, IdentityHash(out, x, frand.Bytes(KeyLen)))
	require.Equal(t, x, out)
	require.False(t, IdentityHash(make([]byte, 31), x, nil))
}
