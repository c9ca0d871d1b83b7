// Package store defines the secret store the credential engine keeps encoded
// secret keys in, and an in-memory implementation of it.
//
// Secrets are addressed by a scope, one per user, and an identifier within
// it. Values are opaque bytes; the engine only ever stores the output of a key
// encoder there.
package store

import (
	"errors"
	"io"
	"regexp"
)

var (
	// ErrNotFound is returned by Get when nothing is stored under the key.
	ErrNotFound = errors.New("secret not found")
	// ErrInvalidKey is returned when a scope or id cannot be used as a key.
	ErrInvalidKey = errors.New("invalid secret scope or id")
)

// I is a secret store.
type I interface {
	Getter
	Setter
	Deleter
	// Closer must be called after you're done using the store, to free up
	// resources and so on.
	io.Closer
}

type Getter interface {
	// Get returns a fresh copy of the secret, which the caller wipes once it is
	// done with it, or ErrNotFound.
	Get(c cx, scope, id st) (secret by, err er)
}

type Setter interface {
	// Set stores secret, replacing anything already under the key. The store
	// keeps its own copy; the caller may wipe secret as soon as Set returns.
	Set(c cx, scope, id st, secret by) (err er)
}

type Deleter interface {
	// Delete removes the secret. Deleting a key that does not exist is not an
	// error.
	Delete(c cx, scope, id st) (err er)
}

// Lister is implemented by stores that can enumerate the ids in a scope.
type Lister interface {
	// List returns the ids stored under scope, sorted.
	List(c cx, scope st) (ids []st, err er)
}

var keyPart = regexp.MustCompile(`^[A-Za-z0-9._@+=-]{1,128}$`)

// CheckKey rejects scopes and ids that are empty, too long or contain
// characters that are not safe in a file, Vault or AWS path segment.
func CheckKey(scope, id st) (err er) {
	if !keyPart.MatchString(scope) || !keyPart.MatchString(id) {
		err = errorf.D("%w: scope %q id %q", ErrInvalidKey, scope, id)
	}
	return
}

// Path joins a scope and id into the path used by the remote stores.
func Path(prefix, scope, id st) st {
	if prefix == "" {
		return scope + "/" + id
	}
	return prefix + "/" + scope + "/" + id
}
