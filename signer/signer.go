// Package signer defines the capability every crypto backend supplies to the
// credential engine: BIP-340 signing over secp256k1 with x-only keys, key
// generation and recovery, and the ECDH derived NIP-04 cipher.
//
// All byte slices are fixed size contracts. Passing a slice of the wrong
// length is a programming error and panics; everything a caller is expected to
// branch on (an invalid key, a failed native call) is returned as one of the
// sentinel errors below.
package signer

import (
	"errors"
	"fmt"
	"io"
)

// Fixed sizes of the values passing through a backend.
const (
	SecKeyLen    = 32
	PubKeyLen    = 32
	SignatureLen = 64
	DigestLen    = 32
	IVLen        = 16
	SharedLen    = 32
	SeedLen      = 32
)

var (
	ErrInvalidSecretKey = errors.New("secret key failed curve validation")
	ErrInvalidPublicKey = errors.New("public key is not a valid x-only point")
	ErrSign             = errors.New("signing failed")
	ErrRandomize        = errors.New("context randomization failed")
	ErrECDH             = errors.New("shared secret derivation failed")
	ErrKeygen           = errors.New("key generation failed")
	ErrNotImplemented   = errors.New("operation not implemented by this backend")
	ErrLoad             = errors.New("native library failed to load")
	ErrClosed           = errors.New("backend is closed")
)

// I is the crypto backend capability.
type I interface {
	// Name identifies the backend in logs.
	Name() string
	// SignatureSize is the length of the buffer Sign writes into.
	SignatureSize() int
	// KeySizes are the lengths of the secret and public key buffers.
	KeySizes() (sec, pub int)
	// Sign writes the BIP-340 signature of the 32 byte digest into sig. Fresh
	// auxiliary randomness is drawn for every call.
	Sign(sec, digest, sig []byte) (err error)
	// Verify checks a BIP-340 signature against an x-only public key.
	Verify(pub, digest, sig []byte) (valid bool)
	// Generate fills sec with a new valid secret key and pub with its x-only
	// public key.
	Generate(sec, pub []byte) (err error)
	// RecoverPub writes the x-only public key of sec into pub.
	RecoverPub(sec, pub []byte) (err error)
	// ECDHEncrypt encrypts plain for the holder of the peer x-only key with
	// AES-256-CBC keyed by the raw ECDH x-coordinate, zero padded.
	ECDHEncrypt(sec, peer, iv, plain []byte) (cipher []byte, err error)
	// ECDHDecrypt reverses ECDHEncrypt. The result still carries its zero
	// padding.
	ECDHDecrypt(sec, peer, iv, cipher []byte) (plain []byte, err error)
	// Random fills b from the backend's random source.
	Random(b []byte)
	// Close releases any native handle. Nothing may be called afterwards.
	io.Closer
}

// MustLen panics if b is not exactly n bytes long.
func MustLen(b []byte, n int, name string) {
	if len(b) != n {
		panic(fmt.Sprintf("signer: %s must be %d bytes, got %d", name, n, len(b)))
	}
}

// CheckSizes asserts the caller's buffers match what a backend declares.
func CheckSizes(s I, sec, pub []byte) {
	sl, pl := s.KeySizes()
	MustLen(sec, sl, "secret key")
	MustLen(pub, pl, "public key")
}
