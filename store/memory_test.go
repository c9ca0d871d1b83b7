package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckKey(t *testing.T) {
	require.NoError(t, CheckKey("user-1", "2b8e6a1c-0d2f-4c57-9b3e-1f0e7a6b5c4d"))
	for _, k := range [][2]string{{"", "a"}, {"a", ""}, {"a/b", "c"}, {"a", "../c"}, {"a b", "c"}} {
		require.ErrorIs(t, CheckKey(k[0], k[1]), ErrInvalidKey, k)
	}
}

func TestMemoryWipesOnDelete(t *testing.T) {
	s := NewMemory()
	c := context.Background()
	require.NoError(t, s.Set(c, "u", "k", []byte("secret")))
	v, _ := s.m.Load(key{"u", "k"})
	require.NoError(t, s.Delete(c, "u", "k"))
	require.Equal(t, make([]byte, 6), v)
	require.Zero(t, s.Len())
}
