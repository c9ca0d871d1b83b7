package noscrypt

import (
	"nsigner.lol/errorf"
	"nsigner.lol/random"
	"nsigner.lol/secure"
	"nsigner.lol/signer"
)

const Name = "noscrypt"

// MaxKeygenAttempts bounds the generate and validate loop.
const MaxKeygenAttempts = 64

// Signer implements signer.I on a loaded noscrypt.
type Signer struct {
	lib   *Library
	rnd   random.Source
	alloc secure.Allocator
}

var _ signer.I = (*Signer)(nil)

// New loads noscrypt from path and returns a Signer using it.
func New(path string, rnd random.Source, alloc secure.Allocator) (s *Signer, err error) {
	var lib *Library
	if lib, err = Load(path); err != nil {
		return
	}
	s = NewWithLibrary(lib, rnd, alloc)
	return
}

func NewWithLibrary(lib *Library, rnd random.Source, alloc secure.Allocator) *Signer {
	if lib == nil || rnd == nil {
		panic("noscrypt: nil library or random source")
	}
	if alloc == nil {
		alloc = secure.Heap{}
	}
	return &Signer{lib: lib, rnd: rnd, alloc: alloc}
}

func (s *Signer) Name() string             { return Name }
func (s *Signer) SignatureSize() int       { return signer.SignatureLen }
func (s *Signer) KeySizes() (sec, pub int) { return signer.SecKeyLen, signer.PubKeyLen }
func (s *Signer) Random(b []byte)          { s.rnd.Fill(b) }
func (s *Signer) Close() error             { return s.lib.Close() }

func (s *Signer) run(fn func(ctx *byte) error) (err error) {
	s.lib.RLock()
	defer s.lib.RUnlock()
	var c *Context
	if c, err = s.lib.NewContext(s.rnd, s.alloc); err != nil {
		return
	}
	defer c.Destroy()
	return c.Use(fn)
}

func (s *Signer) RecoverPub(sec, pub []byte) (err error) {
	signer.CheckSizes(s, sec, pub)
	return s.run(func(ctx *byte) error {
		if s.lib.validateSecretKey(ctx, &sec[0]) != validSecret {
			return signer.ErrInvalidSecretKey
		}
		if r := s.lib.getPublicKey(ctx, &sec[0], &pub[0]); r != Success {
			return errorf.D("noscrypt: %w: NCGetPublicKey returned %d",
				signer.ErrInvalidSecretKey, r)
		}
		return nil
	})
}

// Generate draws candidate keys and validates each with NCValidateSecretKey,
// giving up after MaxKeygenAttempts.
func (s *Signer) Generate(sec, pub []byte) (err error) {
	signer.CheckSizes(s, sec, pub)
	for range MaxKeygenAttempts {
		s.rnd.Fill(sec)
		if err = s.RecoverPub(sec, pub); err == nil {
			return
		}
	}
	secure.Wipe(sec, pub)
	return errorf.E("noscrypt: %w after %d attempts", signer.ErrKeygen, MaxKeygenAttempts)
}

func (s *Signer) Sign(sec, digest, sig []byte) (err error) {
	signer.MustLen(sec, signer.SecKeyLen, "secret key")
	signer.MustLen(digest, signer.DigestLen, "digest")
	signer.MustLen(sig, signer.SignatureLen, "signature")
	return s.run(func(ctx *byte) (err error) {
		if s.lib.validateSecretKey(ctx, &sec[0]) != validSecret {
			return signer.ErrInvalidSecretKey
		}
		aux := secure.New(s.alloc, 32)
		defer aux.Release()
		s.rnd.Fill(aux.B)
		if r := s.lib.signDigest(ctx, &sec[0], &aux.B[0], &digest[0], &sig[0]); r != Success {
			secure.Zero(sig)
			err = errorf.D("noscrypt: %w: NCSignDigest returned %d", signer.ErrSign, r)
		}
		return
	})
}

func (s *Signer) Verify(pub, digest, sig []byte) (valid bool) {
	signer.MustLen(pub, signer.PubKeyLen, "public key")
	signer.MustLen(digest, signer.DigestLen, "digest")
	signer.MustLen(sig, signer.SignatureLen, "signature")
	_ = s.run(func(ctx *byte) error {
		valid = s.lib.verifyDigest(ctx, &pub[0], &digest[0], &sig[0]) == Success
		return nil
	})
	return
}

// ECDHEncrypt is not available on this backend.
func (s *Signer) ECDHEncrypt(sec, peer, iv, plain []byte) (ct []byte, err error) {
	signer.MustLen(sec, signer.SecKeyLen, "secret key")
	signer.MustLen(peer, signer.PubKeyLen, "peer public key")
	signer.MustLen(iv, signer.IVLen, "iv")
	return nil, signer.ErrNotImplemented
}

// ECDHDecrypt is not available on this backend.
func (s *Signer) ECDHDecrypt(sec, peer, iv, ct []byte) (plain []byte, err error) {
	signer.MustLen(sec, signer.SecKeyLen, "secret key")
	signer.MustLen(peer, signer.PubKeyLen, "peer public key")
	signer.MustLen(iv, signer.IVLen, "iv")
	return nil, signer.ErrNotImplemented
}
