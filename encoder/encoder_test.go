package encoder

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"

	"nsigner.lol/random"
)

var cheap = Params{Time: 1, MemoryKB: 64, Threads: 1}

func encoders(t *testing.T) []I {
	sealed, err := NewSealed([]byte("correct horse"), random.Frand{}, cheap)
	require.NoError(t, err)
	return []I{Base64{}, Hex{}, Nsec{}, sealed}
}

func TestRoundTrip(t *testing.T) {
	for _, e := range encoders(t) {
		t.Run(e.Name(), func(t *testing.T) {
			for range 20 {
				sec := frand.Bytes(32)
				enc, err := e.Encode(sec)
				require.NoError(t, err)
				out := make([]byte, e.BufferSize(enc))
				require.GreaterOrEqual(t, len(out), 32)
				n, err := e.Decode(enc, out)
				require.NoError(t, err)
				require.Equal(t, sec, out[:n])
			}
		})
	}
}

func TestBufferTooSmall(t *testing.T) {
	for _, e := range encoders(t) {
		enc, err := e.Encode(frand.Bytes(32))
		require.NoError(t, err)
		_, err = e.Decode(enc, make([]byte, 8))
		require.ErrorIs(t, err, ErrBuffer, e.Name())
	}
}

func TestMalformed(t *testing.T) {
	for _, e := range encoders(t) {
		out := bytes.Repeat([]byte{0xee}, 64)
		_, err := e.Decode([]byte("!!!!not an encoded key!!!!!"), out)
		require.Error(t, err, e.Name())
	}
}

func TestKnownForms(t *testing.T) {
	sec := bytes.Repeat([]byte{1}, 32)
	enc, err := Base64{}.Encode(sec)
	require.NoError(t, err)
	require.Equal(t, "AQEBAQEBAQEBAQEBAQEBAQEBAQEBAQEBAQEBAQEBAQE=", string(enc))
	enc, err = Hex{}.Encode(sec)
	require.NoError(t, err)
	require.Equal(t, string(bytes.Repeat([]byte("01"), 32)), string(enc))
}

func TestSealedWrongPassphrase(t *testing.T) {
	a, err := NewSealed([]byte("one"), random.Frand{}, cheap)
	require.NoError(t, err)
	b, err := NewSealed([]byte("two"), random.Frand{}, cheap)
	require.NoError(t, err)
	enc, err := a.Encode(frand.Bytes(32))
	require.NoError(t, err)
	out := make([]byte, b.BufferSize(enc))
	_, err = b.Decode(enc, out)
	require.ErrorIs(t, err, ErrAuth)
	require.Equal(t, make([]byte, len(out)), out)
	require.NoError(t, a.Close())
}

func TestNew(t *testing.T) {
	for _, name := range []string{"", Base64Name, HexName, NsecName} {
		e, err := New(name, nil, nil)
		require.NoError(t, err)
		require.NotNil(t, e)
	}
	_, err := New(SealedName, nil, nil)
	require.Error(t, err)
	_, err = New("rot13", nil, nil)
	require.ErrorIs(t, err, ErrUnknown)
}
