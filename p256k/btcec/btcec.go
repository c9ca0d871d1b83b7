// Package btcec implements signer.I in pure Go with the btcec schnorr
// signer and the decred secp256k1 field arithmetic. It needs no shared library
// and is the default backend.
package btcec

import (
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"nsigner.lol/chk"
	"nsigner.lol/errorf"
	"nsigner.lol/nip04"
	"nsigner.lol/random"
	"nsigner.lol/secure"
	"nsigner.lol/signer"
)

const Name = "btcec"

// MaxKeygenAttempts bounds the generate-validate loop. A uniformly random 32
// byte string fails validation with probability about 2^-128, so running out
// means the random source is broken.
const MaxKeygenAttempts = 64

// Signer is the pure Go backend. It holds no secret state; every call works
// on the buffers it is given.
type Signer struct {
	rnd   random.Source
	alloc secure.Allocator
}

var _ signer.I = (*Signer)(nil)

// New creates a Signer drawing auxiliary randomness and keys from rnd and its
// scratch buffers from alloc (the heap if nil).
func New(rnd random.Source, alloc secure.Allocator) (s *Signer) {
	if rnd == nil {
		panic("btcec: nil random source")
	}
	if alloc == nil {
		alloc = secure.Heap{}
	}
	return &Signer{rnd: rnd, alloc: alloc}
}

func (s *Signer) Name() string             { return Name }
func (s *Signer) SignatureSize() int       { return signer.SignatureLen }
func (s *Signer) KeySizes() (sec, pub int) { return signer.SecKeyLen, signer.PubKeyLen }
func (s *Signer) Random(b []byte)          { s.rnd.Fill(b) }
func (s *Signer) Close() (err error)       { return }

// scalar loads a secret key into k, rejecting zero and anything not below the
// group order. The caller zeroes k.
func scalar(k *secp256k1.ModNScalar, sec []byte) (err error) {
	if overflow := k.SetByteSlice(sec); overflow || k.IsZero() {
		err = signer.ErrInvalidSecretKey
	}
	return
}

// RecoverPub writes the x-only public key of sec into pub.
func (s *Signer) RecoverPub(sec, pub []byte) (err error) {
	signer.CheckSizes(s, sec, pub)
	var k secp256k1.ModNScalar
	defer k.Zero()
	if err = scalar(&k, sec); err != nil {
		return
	}
	priv := secp256k1.NewPrivateKey(&k)
	defer priv.Zero()
	copy(pub, schnorr.SerializePubKey(priv.PubKey()))
	return
}

// Generate draws secret keys from the random source until one validates.
func (s *Signer) Generate(sec, pub []byte) (err error) {
	signer.CheckSizes(s, sec, pub)
	for range MaxKeygenAttempts {
		s.rnd.Fill(sec)
		if err = s.RecoverPub(sec, pub); err == nil {
			return
		}
	}
	secure.Wipe(sec, pub)
	err = errorf.E("btcec: %w after %d attempts", signer.ErrKeygen, MaxKeygenAttempts)
	return
}

// Sign produces a BIP-340 signature over digest with 32 bytes of fresh
// auxiliary randomness.
func (s *Signer) Sign(sec, digest, sig []byte) (err error) {
	signer.MustLen(sec, signer.SecKeyLen, "secret key")
	signer.MustLen(digest, signer.DigestLen, "digest")
	signer.MustLen(sig, signer.SignatureLen, "signature")
	var k secp256k1.ModNScalar
	defer k.Zero()
	if err = scalar(&k, sec); err != nil {
		return
	}
	priv := secp256k1.NewPrivateKey(&k)
	defer priv.Zero()
	// CustomNonce takes aux by value, so only this copy is zeroed here; aux is
	// public randomness in BIP-340 and not key material.
	var aux [32]byte
	defer secure.Zero(aux[:])
	s.rnd.Fill(aux[:])
	var si *schnorr.Signature
	if si, err = schnorr.Sign(priv, digest, schnorr.CustomNonce(aux)); chk.E(err) {
		err = errorf.E("btcec: %w: %w", signer.ErrSign, err)
		return
	}
	copy(sig, si.Serialize())
	return
}

// Verify checks a BIP-340 signature. Malformed keys and signatures are simply
// invalid.
func (s *Signer) Verify(pub, digest, sig []byte) (valid bool) {
	signer.MustLen(pub, signer.PubKeyLen, "public key")
	signer.MustLen(digest, signer.DigestLen, "digest")
	signer.MustLen(sig, signer.SignatureLen, "signature")
	var err error
	var pk *secp256k1.PublicKey
	if pk, err = schnorr.ParsePubKey(pub); err != nil {
		return
	}
	var si *schnorr.Signature
	if si, err = schnorr.ParseSignature(sig); err != nil {
		return
	}
	return si.Verify(digest, pk)
}

// Shared writes the NIP-04 shared secret between sec and the x-only peer key
// into out: the x-coordinate of sec*peer, passed through nip04.IdentityHash.
func (s *Signer) Shared(sec, peer, out []byte) (err error) {
	signer.MustLen(sec, signer.SecKeyLen, "secret key")
	signer.MustLen(peer, signer.PubKeyLen, "peer public key")
	signer.MustLen(out, signer.SharedLen, "shared secret")
	var k secp256k1.ModNScalar
	defer k.Zero()
	if err = scalar(&k, sec); err != nil {
		return
	}
	var compressed [secp256k1.PubKeyBytesLenCompressed]byte
	compressed[0] = secp256k1.PubKeyFormatCompressedEven
	copy(compressed[1:], peer)
	var pk *secp256k1.PublicKey
	if pk, err = secp256k1.ParsePubKey(compressed[:]); err != nil {
		err = errorf.D("btcec: %w: %w", signer.ErrInvalidPublicKey, err)
		return
	}
	var point, result secp256k1.JacobianPoint
	pk.AsJacobian(&point)
	secp256k1.ScalarMultNonConst(&k, &point, &result)
	defer func() {
		result.X.Zero()
		result.Y.Zero()
		result.Z.Zero()
	}()
	result.ToAffine()
	x := secure.New(s.alloc, signer.SharedLen)
	defer x.Release()
	result.X.PutBytesUnchecked(x.B)
	if !nip04.IdentityHash(out, x.B, nil) {
		err = signer.ErrECDH
	}
	return
}

// ECDHEncrypt encrypts plain for peer under the raw ECDH x-coordinate.
func (s *Signer) ECDHEncrypt(sec, peer, iv, plain []byte) (ct []byte, err error) {
	signer.MustLen(iv, signer.IVLen, "iv")
	err = secure.With(s.alloc, signer.SharedLen, func(shared []byte) (err error) {
		if err = s.Shared(sec, peer, shared); err != nil {
			return
		}
		ct, err = nip04.Encrypt(shared, iv, plain)
		return
	})
	return
}

// ECDHDecrypt decrypts a NIP-04 ciphertext from peer. The zero padding is
// left in place.
func (s *Signer) ECDHDecrypt(sec, peer, iv, ct []byte) (plain []byte, err error) {
	signer.MustLen(iv, signer.IVLen, "iv")
	err = secure.With(s.alloc, signer.SharedLen, func(shared []byte) (err error) {
		if err = s.Shared(sec, peer, shared); err != nil {
			return
		}
		plain, err = nip04.Decrypt(shared, iv, ct)
		return
	})
	return
}
