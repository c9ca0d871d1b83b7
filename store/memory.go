package store

import (
	"bytes"
	"slices"

	"github.com/puzpuzpuz/xsync/v3"

	"nsigner.lol/secure"
)

type key struct{ scope, id st }

// Memory is a process local store. It exists for tests and for running the
// engine without any external secret store; secrets do live in process memory
// for as long as they are stored, and are wiped on Delete and Close.
type Memory struct {
	m *xsync.MapOf[key, by]
}

var (
	_ I      = (*Memory)(nil)
	_ Lister = (*Memory)(nil)
)

func NewMemory() *Memory { return &Memory{m: xsync.NewMapOf[key, by]()} }

func (s *Memory) Get(c cx, scope, id st) (secret by, err er) {
	if err = CheckKey(scope, id); err != nil {
		return
	}
	v, ok := s.m.Load(key{scope, id})
	if !ok {
		err = ErrNotFound
		return
	}
	secret = bytes.Clone(v)
	return
}

func (s *Memory) Set(c cx, scope, id st, secret by) (err er) {
	if err = CheckKey(scope, id); err != nil {
		return
	}
	if old, loaded := s.m.LoadAndStore(key{scope, id}, bytes.Clone(secret)); loaded {
		secure.Zero(old)
	}
	return
}

func (s *Memory) Delete(c cx, scope, id st) (err er) {
	if err = CheckKey(scope, id); err != nil {
		return
	}
	if old, loaded := s.m.LoadAndDelete(key{scope, id}); loaded {
		secure.Zero(old)
	}
	return
}

func (s *Memory) List(c cx, scope st) (ids []st, err er) {
	if err = CheckKey(scope, "-"); err != nil {
		return
	}
	s.m.Range(func(k key, _ by) bool {
		if k.scope == scope {
			ids = append(ids, k.id)
		}
		return true
	})
	slices.Sort(ids)
	return
}

// Len is the number of stored secrets.
func (s *Memory) Len() int { return s.m.Size() }

func (s *Memory) Close() (err er) {
	s.m.Range(func(k key, v by) bool {
		secure.Zero(v)
		return true
	})
	s.m.Clear()
	return
}
