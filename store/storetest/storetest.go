// Package storetest is the behaviour every secret store shares, run from
// each implementation's tests.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"nsigner.lol/store"
)

// Run exercises the behaviour every store.I implementation must share. The
// store must be empty.
func Run(t *testing.T, s store.I) {
	c := context.Background()
	_, err := s.Get(c, "alice", "k1")
	require.ErrorIs(t, err, store.ErrNotFound)

	secret := []byte("c2VjcmV0IGtleSBieXRlcw==")
	require.NoError(t, s.Set(c, "alice", "k1", secret))
	got, err := s.Get(c, "alice", "k1")
	require.NoError(t, err)
	require.Equal(t, secret, got)

	// scopes are separate
	_, err = s.Get(c, "bob", "k1")
	require.ErrorIs(t, err, store.ErrNotFound)

	// the store keeps its own copy
	clear(secret)
	got, err = s.Get(c, "alice", "k1")
	require.NoError(t, err)
	require.Equal(t, []byte("c2VjcmV0IGtleSBieXRlcw=="), got)
	clear(got)
	got, err = s.Get(c, "alice", "k1")
	require.NoError(t, err)
	require.Equal(t, []byte("c2VjcmV0IGtleSBieXRlcw=="), got)

	require.NoError(t, s.Set(c, "alice", "k1", []byte("replaced")))
	got, err = s.Get(c, "alice", "k1")
	require.NoError(t, err)
	require.Equal(t, []byte("replaced"), got)

	require.NoError(t, s.Delete(c, "alice", "k1"))
	_, err = s.Get(c, "alice", "k1")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, s.Delete(c, "alice", "k1"))
	require.NoError(t, s.Delete(c, "nobody", "never"))

	require.ErrorIs(t, s.Set(c, "a/b", "k", []byte("x")), store.ErrInvalidKey)

	if l, ok := s.(store.Lister); ok {
		require.NoError(t, s.Set(c, "carol", "b", []byte("2")))
		require.NoError(t, s.Set(c, "carol", "a", []byte("1")))
		require.NoError(t, s.Set(c, "carola", "c", []byte("3")))
		ids, err := l.List(c, "carol")
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b"}, ids)
		ids, err = l.List(c, "nobody")
		require.NoError(t, err)
		require.Empty(t, ids)
		for _, k := range [][2]string{{"carol", "a"}, {"carol", "b"}, {"carola", "c"}} {
			require.NoError(t, s.Delete(c, k[0], k[1]))
		}
	}
	require.NoError(t, s.Close())
}
