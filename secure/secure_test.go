package secure

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func fill(b []byte) {
	for i := range b {
		b[i] = byte(i + 1)
	}
}

func TestWithZeroesOnError(t *testing.T) {
	r := &Recorder{}
	boom := errors.New("boom")
	err := With(r, 32, func(b []byte) error {
		fill(b)
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Zero(t, r.Residue())
	a, f := r.Allocated()
	require.Equal(t, 1, a)
	require.Equal(t, 1, f)
}

func TestWithZeroesOnPanic(t *testing.T) {
	r := &Recorder{}
	func() {
		defer func() { _ = recover() }()
		_ = With(r, 64, func(b []byte) error {
			fill(b)
			panic("unwinding")
		})
	}()
	require.Zero(t, r.Residue())
}

func TestReleaseIdempotent(t *testing.T) {
	r := &Recorder{}
	b := New(r, 16)
	fill(b.B)
	b.Release()
	b.Release()
	require.Nil(t, b.B)
	_, f := r.Allocated()
	require.Equal(t, 1, f)
	require.Zero(t, r.Residue())
	var nilBuf *Buffer
	nilBuf.Release()
}

func TestWipe(t *testing.T) {
	a, b := make([]byte, 8), make([]byte, 3)
	fill(a)
	fill(b)
	Wipe(a, b, nil)
	require.Equal(t, make([]byte, 8), a)
	require.Equal(t, make([]byte, 3), b)
}
