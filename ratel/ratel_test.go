package ratel

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"nsigner.lol/lol"
	"nsigner.lol/ratel/prefixes"
	"nsigner.lol/store"
	"nsigner.lol/store/storetest"
)

func open(t *testing.T, p BackendParams, dir string) (r *T) {
	r = New(p)
	require.NoError(t, r.Init(dir))
	return
}

func TestStore(t *testing.T) {
	storetest.Run(t, open(t, BackendParams{LogLevel: lol.Warn}, t.TempDir()))
}

func TestInMemory(t *testing.T) {
	storetest.Run(t, open(t, BackendParams{LogLevel: lol.Warn, InMemory: true}, ""))
}

func TestEncrypted(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	dir := t.TempDir()
	r := open(t, BackendParams{LogLevel: lol.Warn, EncryptionKey: key}, dir)
	c := context.Background()
	require.NoError(t, r.Set(c, "alice", "k1", []byte("secret")))
	require.NoError(t, r.Close())
	require.Equal(t, make([]byte, 32), r.encryptionKey)

	// reopening with the wrong key fails
	wrong := make([]byte, 32)
	r = New(BackendParams{LogLevel: lol.Off, EncryptionKey: wrong})
	require.Error(t, r.Init(dir))
	require.Nil(t, r.DB)
	require.NoError(t, r.Close())

	r = open(t, BackendParams{LogLevel: lol.Warn, EncryptionKey: key}, dir)
	got, err := r.Get(c, "alice", "k1")
	require.NoError(t, err)
	require.Equal(t, []byte("secret"), got)
	require.NoError(t, r.Close())
}

func TestPersistsAndCreated(t *testing.T) {
	dir := t.TempDir()
	c := context.Background()
	r := open(t, BackendParams{LogLevel: lol.Warn}, dir)
	before := time.Now().Add(-time.Second)
	require.NoError(t, r.Set(c, "alice", "k1", []byte("one")))
	first, err := r.Created(c, "alice", "k1")
	require.NoError(t, err)
	require.False(t, first.Before(before.Truncate(time.Second)))
	require.NoError(t, r.Close())

	r = open(t, BackendParams{LogLevel: lol.Warn}, dir)
	got, err := r.Get(c, "alice", "k1")
	require.NoError(t, err)
	require.Equal(t, []byte("one"), got)
	// replacing keeps the creation time
	require.NoError(t, r.Set(c, "alice", "k1", []byte("two")))
	again, err := r.Created(c, "alice", "k1")
	require.NoError(t, err)
	require.Equal(t, first, again)
	require.NoError(t, r.Delete(c, "alice", "k1"))
	_, err = r.Created(c, "alice", "k1")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, r.Close())
}

func TestNewerVersion(t *testing.T) {
	dir := t.TempDir()
	r := open(t, BackendParams{LogLevel: lol.Warn}, dir)
	require.NoError(t, r.Update(func(txn *badger.Txn) error {
		buf := make([]byte, 2)
		binary.BigEndian.PutUint16(buf, Version+1)
		return txn.Set(prefixes.Version.Key(), buf)
	}))
	require.NoError(t, r.Close())
	r = New(BackendParams{LogLevel: lol.Off})
	require.ErrorIs(t, r.Init(dir), ErrNewerVersion)
}

func TestCancelled(t *testing.T) {
	r := open(t, BackendParams{LogLevel: lol.Warn, InMemory: true}, "")
	defer r.Close()
	c, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, r.Set(c, "alice", "k1", []byte("x")), context.Canceled)
	_, err := r.Get(c, "alice", "k1")
	require.ErrorIs(t, err, context.Canceled)
}
